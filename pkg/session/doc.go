/*
Package session implements session management and persistence orchestration.

It serializes access to each conversation so that concurrent requests for the
same session (several browser tabs, retries, a websocket and a REST call)
apply their engine steps one after another, integrating local per-session
mutexes with optional distributed locking and the configured session store.
*/
package session
