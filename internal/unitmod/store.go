package unitmod

import (
	"cmp"
	"slices"
)

// store is the sparse per-unit index: tier -> family -> stat -> UnitMod.
//
// Every level is a small slice kept strictly ascending by key with no
// duplicates. A missing leaf means "identity". Leaves are pruned as soon as
// they go idle, and parents are pruned when their child list empties, so the
// store only ever holds non-idle modifiers.
//
// Pointers returned by find and findOrCreate stay valid only until the next
// insert or removal.
type store struct {
	types []typeNode
}

type typeNode struct {
	typ      ModType
	families []familyNode
}

type familyNode struct {
	family Family
	stats  []statNode
}

type statNode struct {
	stat Stat
	mod  UnitMod
}

func searchType(nodes []typeNode, t ModType) (int, bool) {
	return slices.BinarySearchFunc(nodes, t, func(n typeNode, k ModType) int {
		return cmp.Compare(n.typ, k)
	})
}

func searchFamily(nodes []familyNode, f Family) (int, bool) {
	return slices.BinarySearchFunc(nodes, f, func(n familyNode, k Family) int {
		return cmp.Compare(n.family, k)
	})
}

func searchStat(nodes []statNode, s Stat) (int, bool) {
	return slices.BinarySearchFunc(nodes, s, func(n statNode, k Stat) int {
		return cmp.Compare(n.stat, k)
	})
}

// find returns the leaf for (t, stat) or nil. Never allocates.
func (s *store) find(t ModType, stat Stat) *UnitMod {
	ti, ok := searchType(s.types, t)
	if !ok {
		return nil
	}
	tn := &s.types[ti]
	fi, ok := searchFamily(tn.families, mustFamily(stat))
	if !ok {
		return nil
	}
	fn := &tn.families[fi]
	si, ok := searchStat(fn.stats, stat)
	if !ok {
		return nil
	}
	return &fn.stats[si].mod
}

// findOrCreate returns the leaf for (t, stat), inserting missing nodes at
// their sorted position. New leaves start at the tier's identity.
func (s *store) findOrCreate(t ModType, stat Stat) *UnitMod {
	family := mustFamily(stat)

	ti, ok := searchType(s.types, t)
	if !ok {
		s.types = slices.Insert(s.types, ti, typeNode{typ: t})
	}
	tn := &s.types[ti]

	fi, ok := searchFamily(tn.families, family)
	if !ok {
		tn.families = slices.Insert(tn.families, fi, familyNode{family: family})
	}
	fn := &tn.families[fi]

	si, ok := searchStat(fn.stats, stat)
	if !ok {
		fn.stats = slices.Insert(fn.stats, si, statNode{stat: stat, mod: IdentityMod(t)})
	}
	return &fn.stats[si].mod
}

// remove splices out the leaf for (t, stat) and any parent left empty.
func (s *store) remove(t ModType, stat Stat) bool {
	ti, ok := searchType(s.types, t)
	if !ok {
		return false
	}
	tn := &s.types[ti]
	fi, ok := searchFamily(tn.families, mustFamily(stat))
	if !ok {
		return false
	}
	fn := &tn.families[fi]
	si, ok := searchStat(fn.stats, stat)
	if !ok {
		return false
	}

	fn.stats = slices.Delete(fn.stats, si, si+1)
	if len(fn.stats) == 0 {
		tn.families = slices.Delete(tn.families, fi, fi+1)
	}
	if len(tn.families) == 0 {
		s.types = slices.Delete(s.types, ti, ti+1)
	}
	return true
}

// checkForRemove prunes the leaf if it went idle.
func (s *store) checkForRemove(t ModType, stat Stat) {
	if mod := s.find(t, stat); mod != nil && mod.IsIdle() {
		s.remove(t, stat)
	}
}

func (s *store) empty() bool {
	return len(s.types) == 0
}

func (s *store) hasType(t ModType) bool {
	_, ok := searchType(s.types, t)
	return ok
}

func (s *store) hasFamily(t ModType, f Family) bool {
	ti, ok := searchType(s.types, t)
	if !ok {
		return false
	}
	_, ok = searchFamily(s.types[ti].families, f)
	return ok
}

func (s *store) len() int {
	n := 0
	for _, tn := range s.types {
		for _, fn := range tn.families {
			n += len(fn.stats)
		}
	}
	return n
}

// each visits leaves in ascending (tier, family, stat) order.
func (s *store) each(fn func(t ModType, stat Stat, mod UnitMod)) {
	for _, tn := range s.types {
		for _, f := range tn.families {
			for _, sn := range f.stats {
				fn(tn.typ, sn.stat, sn.mod)
			}
		}
	}
}
