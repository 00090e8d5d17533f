// Package store defines the persistence interfaces for the marketplace
// entities and the shared error vocabulary implementations must speak.
//
// Implementations map their backend's constraint violations onto the sentinel
// errors defined here so services and handlers can branch with errors.Is
// without knowing the backend. Stores accept either a live connection or a
// transaction through the DBTX interface; multi-statement invariants
// (favorite membership plus counter, item deletion plus comment cascade) are
// composed by the service layer inside RunInTransaction.
package store
