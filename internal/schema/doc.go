// Package schema provides the schemas treedoc documents are checked against:
// a built-in schema with basic rich text and list nodes, and schemas defined
// in TOML, YAML or JSON files.
//
// A schema file lists node and mark types in order:
//
//	topNode = "doc"
//
//	[[nodes]]
//	name = "doc"
//	content = "block+"
//
//	[[nodes]]
//	name = "paragraph"
//	content = "inline*"
//	group = "block"
//
//	[[nodes]]
//	name = "heading"
//	content = "inline*"
//	group = "block"
//	attrs = { level = { default = 1 } }
//
//	[[nodes]]
//	name = "text"
//	group = "inline"
//
//	[[marks]]
//	name = "link"
//	attrs = { href = {} }
//
// An attribute table without a default makes the attribute required.
// Compiled schemas are cached by a Registry.
package schema
