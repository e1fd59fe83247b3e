// Package diag defines the error taxonomy of a build.
//
// Errors fall into two classes. Fatal errors abort the build as soon as they
// are detected and carry full attribution to the offending statement:
//
//   - ArgumentSyntaxError: a raw argument failed its statement's parser.
//   - DuplicateDefinitionError: a namespace key was bound twice in one scope.
//   - UndefinedStatementError: a keyword has no statement support.
//   - InvalidSubstatementError: a statement violates its substatement rules.
//   - StatementError: a statement support rejected a statement.
//   - FetchError: the source provider failed for a reason other than
//     "not found".
//
// UnresolvedObligationError is not fail-fast. The scheduler keeps running
// after an inference action misses its deadline, so the aggregate names every
// independently unresolvable action of the build together with the statements
// excluded from the model because of them.
//
// Callers classify errors with IsFatal and AsUnresolved; both see through
// wrapping.
package diag
