// Package id generates the random tokens used across the admin panel:
// connection ids, request ids, and subscription tokens.
//
// Tokens are short random hex strings, unique in practice within the window
// they are compared in (a pending-request pool, a connection pool). They are
// not globally unique and carry no ordering.
//
// Usage
//
//	token := id.Token()     // 16 hex chars, e.g. "f3a9c1d27e40b856"
//	long := id.TokenN(16)   // 32 hex chars
package id
