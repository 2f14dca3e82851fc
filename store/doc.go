// Package store defines the GraphStore capability the grom resolver
// consumes, together with the adapters implementing it.
//
// A GraphStore reads and writes labeled nodes, directed typed edges and
// their properties. Three adapters ship with grom:
//
//   - store.MemStore: in-memory, for tests and the "memory" adapter
//   - store/bolt: remote graph databases speaking the Bolt protocol
//   - store/lite: an embedded store on a local SQLite file
//
// The Prefixed decorator applies a configured label prefix to every
// label and edge-type string before it reaches the underlying store,
// keeping multiple applications apart inside one database.
package store
