// Package resolver maps user-supplied gene and property names onto stable
// knowledge network identifiers.
//
// Gene names are resolved through layered lookups, most specific first:
// (taxon, hint) triplets, taxon-scoped names, hint-scoped names, and finally
// the global unique-name table. Every layer is one batched store call covering
// only the keys the previous layers left unresolved. A stored multi-match
// value marks a key ambiguous without resolving it, so a key that no layer
// resolves ends up UnmappedMany or UnmappedNone.
//
// Keys are trimmed and upper-cased before lookup; records always carry the
// caller's original key.
package resolver
