package model

import "dario.cat/mergo"

// Refine copies every non-empty field of src over dst. Empty fields in src
// never clear a populated field in dst, so refining is additive and
// refining twice with the same source is a no-op.
func Refine[T any](dst, src *T) {
	if dst == nil || src == nil {
		return
	}
	// mergo only fails on mismatched kinds, which the type parameter rules out.
	_ = mergo.Merge(dst, *src, mergo.WithOverride)
}
