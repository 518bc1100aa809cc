package unitmod

// ledgerKind tells which Modify* entry point recorded a value.
type ledgerKind uint8

const (
	kindFlat ledgerKind = iota
	kindMult
	kindFlatMod
	kindMultMod
)

func (k ledgerKind) String() string {
	switch k {
	case kindFlat:
		return "flat"
	case kindMult:
		return "mult"
	case kindFlatMod:
		return "flat_mod"
	case kindMultMod:
		return "mult_mod"
	}
	return "unknown"
}

type ledgerKey struct {
	stat  Stat
	typ   ModType
	kind  ledgerKind
	value [2]float64
}

// ledger is a debug multiset of applied values. Unapplying a value that was
// never applied is counted as a mismatch; the arithmetic is not affected.
type ledger struct {
	applied    map[ledgerKey]int
	mismatches int
}

func newLedger() *ledger {
	return &ledger{applied: make(map[ledgerKey]int)}
}

// record returns false on a mismatched unapply.
func (l *ledger) record(key ledgerKey, apply bool) bool {
	if apply {
		l.applied[key]++
		return true
	}
	n := l.applied[key]
	if n == 0 {
		l.mismatches++
		return false
	}
	if n == 1 {
		delete(l.applied, key)
	} else {
		l.applied[key] = n - 1
	}
	return true
}

// forget drops everything recorded for (stat, t) under the given kinds;
// Set* replaces the stored value, so earlier applications no longer pair.
func (l *ledger) forget(stat Stat, t ModType, kinds ...ledgerKind) {
	for key := range l.applied {
		if key.stat != stat || key.typ != t {
			continue
		}
		for _, k := range kinds {
			if key.kind == k {
				delete(l.applied, key)
				break
			}
		}
	}
}

// outstanding returns how many applications are still unpaired.
func (l *ledger) outstanding() int {
	n := 0
	for _, c := range l.applied {
		n += c
	}
	return n
}
