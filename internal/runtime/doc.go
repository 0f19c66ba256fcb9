// Package runtime implements the conversation engine: the intake gate,
// the input router and the level navigator.
//
// The engine holds no per-session data. Every operation receives a
// *domain.State, works on a clone and returns the new state with the ordered
// render requests, so a single Engine can serve any number of sessions.
package runtime
