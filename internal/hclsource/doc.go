// Package hclsource reads modeling-language documents written in HCL.
//
// A document holds exactly one root block, `module "name" { ... }` or
// `submodule "name" { ... }`. Inside a body:
//
//   - A block `keyword "argument" { ... }` is a statement with children. The
//     label is optional for statements without an argument, such as input.
//   - An attribute `keyword = value` is a statement without children. A list
//     value yields one statement per element, so repeatable statements can
//     be written on one line.
//   - Keywords that are not HCL identifiers, notably prefixed extension
//     keywords, use the generic form `stmt "prefix:keyword" "argument" { ... }`.
//
// Statements keep the order in which they appear in the file, whichever of
// the forms they use. Values are evaluated without variables or functions;
// numbers and booleans are converted to their string form.
package hclsource
