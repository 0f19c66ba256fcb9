/*
Package arbor is a decision-tree chat engine for guided support widgets.

A conversation has two phases. The intake collects a greeting, the user's
name and a phone number. After that the user walks a tree of levels: each
level may show an answer, a question and clickable options, and every option
leads to another level. Back and Main Menu controls are always available.

The engine is stateless: every operation takes the current session state and
returns a new state plus an ordered list of render requests (chat messages
and control groups). Hosts decide how to persist sessions and how to draw.

# Usage

	eng, err := arbor.New(ctx, "./chatbot_data.json")
	if err != nil {
		log.Fatal(err)
	}

	state, actions, _ := eng.Start(ctx, "session-123")
	render(actions)

	state, actions, _ = eng.Submit(ctx, state, "Hi")
	render(actions)

A source may be a JSON or YAML document (local path or http(s) URL) or a
directory of Markdown level documents read through Loam.

# Hosts

  - pkg/runner: terminal chat loop.
  - pkg/adapters/http: REST and websocket API.
  - pkg/adapters/mcp: Model Context Protocol tools.
  - pkg/session: locking session manager over memory or Redis stores.
*/
package arbor
