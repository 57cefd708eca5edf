package deprules

import "github.com/rpminspect/rpminspect"

// PeerRules pairs before-build and after-build dependency rules of the same
// kind and name, exactly one-to-one, in two passes: before→after first,
// then after→before to pick up any stragglers the first pass missed.
// Grounded in original_source/lib/deprules.c's find_deprule_peers.
func PeerRules(before, after []*rpminspect.DepRule) {
	type key struct {
		kind rpminspect.DepKind
		name string
	}
	byKey := func(rules []*rpminspect.DepRule) map[key][]*rpminspect.DepRule {
		m := make(map[key][]*rpminspect.DepRule, len(rules))
		for _, r := range rules {
			k := key{r.Kind, r.Name}
			m[k] = append(m[k], r)
		}
		return m
	}

	afterByKey := byKey(after)
	usedAfter := make(map[*rpminspect.DepRule]bool)

	// Pass 1: before -> after.
	for _, b := range before {
		if b.Peer != nil {
			continue
		}
		k := key{b.Kind, b.Name}
		for _, a := range afterByKey[k] {
			if usedAfter[a] || a.Peer != nil {
				continue
			}
			b.Peer, a.Peer = a, b
			usedAfter[a] = true
			break
		}
	}

	// Pass 2: after -> before, for stragglers pass 1's before-ordering missed.
	beforeByKey := byKey(before)
	usedBefore := make(map[*rpminspect.DepRule]bool)
	for _, b := range before {
		if b.Peer != nil {
			usedBefore[b] = true
		}
	}
	for _, a := range after {
		if a.Peer != nil {
			continue
		}
		k := key{a.Kind, a.Name}
		for _, b := range beforeByKey[k] {
			if usedBefore[b] || b.Peer != nil {
				continue
			}
			a.Peer, b.Peer = b, a
			usedBefore[b] = true
			break
		}
	}
}
