// Package domain contains the core entities of the marketplace: users, items,
// and comments, together with their validation rules, the slug derivation
// policy, and the authorization gate consulted before mutations.
//
// Entities reference each other by ID only. The favorites and follows
// relations are stored as id-to-id sets at the persistence layer, never as
// embedded object graphs.
package domain
