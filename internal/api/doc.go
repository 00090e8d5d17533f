// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting for the marketplace. It adapts external clients to
// the internal services, translating HTTP concerns to business operations
// and service errors to status codes.
package api
