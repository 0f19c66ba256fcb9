/*
Package ports defines the driven and driving ports (interfaces) for the Arbor engine.

These interfaces decouple the core logic from external implementations, allowing
the engine to work with various tree sources, session stores and lock managers.

# Key Interfaces

  - TreeLoader: Responsible for producing the ContentTree (e.g., from a JSON file, Loam or Memory).
  - SessionStore: Responsible for persisting and loading session State.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
  - ChatEngine: The stateless conversation core consumed by adapters (HTTP, MCP, CLI).
*/
package ports
