// Package service implements the marketplace's business operations: the
// identity graph (users, follows), the catalog graph (items, favorites,
// slugs), and the discussion graph (comments).
//
// Services receive an already-resolved caller identity from the API layer,
// consult the authorization gate before any mutation, and compose
// multi-statement invariants (favorite membership plus counter, item deletion
// plus comment cascade) inside a single database transaction. Errors are
// normalized into the taxonomy defined in errors.go.
package service
