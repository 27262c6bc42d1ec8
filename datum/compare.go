package datum

import "strings"

// Equal reports structural equality of two values.
//
// Numbers compare by numeric value regardless of int/float kind. Maps compare
// key by key, arrays element by element. Invalid values are never equal.
func Equal(a, b Value) bool {
	if a.Kind == KindInvalid || b.Kind == KindInvalid {
		return false
	}
	if a.Kind == KindNull && b.Kind == KindNull {
		return true
	}
	if a.Kind == KindNull || b.Kind == KindNull {
		return false
	}

	if a.IsNumber() && b.IsNumber() {
		// Prefer exact int compare when possible.
		if a.Kind == KindInt && b.Kind == KindInt {
			return a.I64 == b.I64
		}
		af, _ := a.AsFloat64()
		bf, _ := b.AsFloat64()
		return af == bf
	}

	if a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case KindString:
		return a.s == b.s
	case KindBool:
		return a.B == b.B
	case KindTime:
		return a.T.Equal(b.T)
	case KindArray:
		if len(a.A) != len(b.A) {
			return false
		}
		for i := range a.A {
			if !Equal(a.A[i], b.A[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(a.M) != len(b.M) {
			return false
		}
		for k, av := range a.M {
			bv, ok := b.M[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	case KindIdentity:
		return a.ID.Key() == b.ID.Key()
	default:
		return false
	}
}

// Compare orders two values of comparable kinds.
//
// Numbers (int and float), times and strings are comparable. It returns -1, 0
// or +1 and ok=false when the values cannot be ordered.
func Compare(a, b Value) (int, bool) {
	if a.IsNumber() && b.IsNumber() {
		af, _ := a.AsFloat64()
		bf, _ := b.AsFloat64()
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		case af == bf:
			return 0, true
		}
		return 0, false // NaN
	}
	if a.Kind != b.Kind {
		return 0, false
	}
	switch a.Kind {
	case KindTime:
		return a.T.Compare(b.T), true
	case KindString:
		return strings.Compare(a.s.Value(), b.s.Value()), true
	default:
		return 0, false
	}
}

// Matches reports whether every entry of query is structurally equal to the
// corresponding entry of doc. An empty query matches every document.
func Matches(doc, query Document) bool {
	for k, qv := range query {
		dv, ok := doc[k]
		if !ok || !Equal(dv, qv) {
			return false
		}
	}
	return true
}
