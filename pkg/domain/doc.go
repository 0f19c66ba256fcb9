/*
Package domain contains the core domain models of the Arbor chat engine.

It defines the static content tree the conversation walks, the per-session
conversation state, and the render requests the engine hands to its host.
This package is kept pure and free of external dependencies like I/O or
persistence, following Hexagonal Architecture principles.

# Key Entities

  - Level: A node of the content tree (answer, question and ordered options).
  - Option: A selectable branch of a Level, with an optional weak reference to the next Level.
  - ContentTree: The immutable, loaded tree with its root and message catalog.
  - State: The runtime snapshot of a session (intake stage, current level, navigation stack).
  - ActionRequest: A structural representation of what the host should render.
*/
package domain
