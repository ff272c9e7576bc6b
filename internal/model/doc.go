// Package model provides a schema-constrained, immutable tree document model
// for structured rich text.
//
// A document is a tree of Nodes. Every node has a NodeType drawn from a
// Schema, a set of attributes, an ordered set of Marks, and either a Fragment
// of child nodes or, for text nodes, a literal string. Nodes are never
// modified in place: every edit produces a new root, and subtrees that were
// not touched are shared by reference between the old and the new document.
//
// The document is linearized into integer positions:
//   - A text node occupies one position per UTF-16 code unit of its text
//   - A leaf node occupies a single position
//   - Any other node occupies 2 + the size of its content (entry and exit)
//
// Basic usage:
//
//	s := model.MustSchema(spec)
//	doc, err := model.NodeFromJSON(s, data)
//	rp, err := doc.Resolve(4)               // ancestors, depth, offsets
//	slice, err := doc.Slice(1, 5)           // extract a range
//	doc2, err := doc.Replace(1, 5, slice)   // splice it back
//
// # Content Rules
//
// Each NodeType carries a ContentMatch compiled from its content expression
// (for example "paragraph block*" or "(heading | paragraph){1,3}"). The
// expression is compiled once into a deterministic automaton when the schema
// is built. Nodes are validated against it at construction time and every
// replace re-validates each node it rebuilds.
//
// # Node Kinds
//
// Every NodeType has exactly one NodeKind:
//   - KindText: carries text, addressed by offsets inside its parent
//   - KindLeaf: no content, occupies one position
//   - KindAtom: has content, but positions inside it resolve to its parent
//     and cannot bound a cut
//   - KindContainer: has addressable content
//
// # Errors
//
// Operations fail with one of RangeError, ReplaceError, ContentMatchError or
// SchemaValidationError. Each matches its sentinel with errors.Is. A failed
// operation never produces a partial document.
//
// # Concurrency
//
// Schemas and nodes are read-only after construction and may be shared
// across goroutines without locking.
package model
