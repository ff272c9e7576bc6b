// Package transform implements structural steps over documents.
//
// A Step is an atomic, invertible change to a document. Applying a step never
// modifies its input: it returns a StepResult holding either the new document
// or the reason the step could not be applied. Every step also exposes a
// StepMap describing how positions in the old document move in the new one.
//
// # Step Types
//
//   - ReplaceStep replaces a range with a slice.
//   - ReplaceAroundStep replaces a range while keeping a gap inside it, as
//     used to wrap, unwrap or retype blocks.
//   - AddMarkStep and RemoveMarkStep add or remove a mark on the inline
//     content of a range.
//
// # JSON
//
// Steps encode as objects tagged with "stepType":
//
//	{"stepType":"replace","from":1,"to":5,"slice":{"content":[...]}}
//
// FromJSON decodes a single step against a schema and ListFromJSON decodes
// an array. Further step types can be added with Register.
package transform
