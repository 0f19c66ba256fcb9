/*
Package runner implements the chat loop and input dispatching for the Arbor engine.

It acts as the bridge between the core engine and the outside world. Commands
(free text, option selection, back, main menu) are parsed once here and
dispatched the same way for every transport: the terminal loop, the HTTP and
websocket server and the MCP server.

# Key Components

  - Runner: The interactive loop driving an IOHandler.
  - Command / Dispatch: Transport-neutral input and its application to a state.
  - TextHandler: A standard implementation for interactive CLI usage.
  - JSONHandler: JSON-Lines mode for headless hosts.

# Usage

	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
		runner.WithStore(store),
	)

	state, err := r.Run(ctx, engine, nil)
*/
package runner
