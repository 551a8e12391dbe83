package slicest

// ToMap builds a map from a slice, one key/value pair per element. Later
// elements win on key collisions.
func ToMap[E any, K comparable, V any, S ~[]E](in S, fn func(E) (K, V)) map[K]V {
	out := make(map[K]V, len(in))
	for _, e := range in {
		k, v := fn(e)
		out[k] = v
	}
	return out
}

// Map converts every element of a slice through fn.
func Map[E, R any, S ~[]E](in S, fn func(E) R) []R {
	out := make([]R, len(in))
	for i, e := range in {
		out[i] = fn(e)
	}
	return out
}

// MapX converts every element through a fallible fn, stopping at the first
// error.
func MapX[E, R any, S ~[]E](in S, fn func(E) (R, error)) ([]R, error) {
	out := make([]R, len(in))
	for i, e := range in {
		r, err := fn(e)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}
