// Package storage implements the persistence backends behind one contract.
//
// Two interchangeable variants: FileStore (pretty-printed JSON documents,
// whole-file rewrite per mutation) and MongoStore (one document per entity).
// Both produce identical externally observable entity shapes; only id
// generation and query syntax differ internally. Read failures degrade to an
// empty result with a logged diagnostic; write failures propagate.
package storage
