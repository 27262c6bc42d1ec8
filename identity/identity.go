// Package identity models host-issued row identity tokens.
//
// Tokens are opaque: the only thing crossfilter may do with one is compare it
// for equality. Equality is defined by Key, which the host derives from its own
// encoding (for example a serialized selector).
//
// # Sets
//
// A Set is a deduplicated, order-preserving collection of tokens:
//
//	s := identity.NewSet(identity.Key("A"), identity.Key("B"), identity.Key("A"))
//	s.Len()      // 2
//	s.Slice()    // [A B]
package identity

// Identity is an opaque, equality-comparable row identity issued by the host.
type Identity interface {
	// Key returns the stable string form used for equality and membership.
	Key() string
}

// Key is a plain string identity. It is the identity type used by the CLI,
// dataset files and tests; hosts usually supply their own implementation.
type Key string

// Key implements Identity.
func (k Key) Key() string { return string(k) }

// String implements fmt.Stringer.
func (k Key) String() string { return string(k) }

// Equal reports whether two identities denote the same row.
func Equal(a, b Identity) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Key() == b.Key()
}
