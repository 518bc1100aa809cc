package skill

import (
	"math"
	"testing"

	"github.com/udisondev/worldsim/internal/data"
	"github.com/udisondev/worldsim/internal/model"
	"github.com/udisondev/worldsim/internal/unitmod"
)

// testEffect is a simple Effect for testing.
type testEffect struct {
	name      string
	instant   bool
	modifiers []StatModifier
	started   bool
	exited    bool
	actions   int
	stopAfter int // OnActionTime returns false on this call (0 = never)
}

func newTestEffect(name string, mods ...StatModifier) *testEffect {
	return &testEffect{name: name, modifiers: mods}
}

func (e *testEffect) Name() string    { return e.name }
func (e *testEffect) IsInstant() bool { return e.instant }

func (e *testEffect) OnStart(uint32, Target) { e.started = true }
func (e *testEffect) OnExit(uint32, Target)  { e.exited = true }
func (e *testEffect) OnActionTime(uint32, Target) bool {
	e.actions++
	return e.stopAfter == 0 || e.actions < e.stopAfter
}
func (e *testEffect) StatModifiers() []StatModifier { return e.modifiers }

// newTestUnit: AP melee 70, armor 90, max HP 220.
func newTestUnit(t *testing.T) *model.Unit {
	t.Helper()
	tmpl, err := data.NewUnitTemplate(100, "Target Dummy", 10, map[unitmod.Stat]float64{
		unitmod.StatStrength: 30,
		unitmod.StatAgility:  20,
		unitmod.StatStamina:  30,
		unitmod.StatHealth:   100,
		unitmod.Armor:        50,
	}, nil)
	if err != nil {
		t.Fatalf("NewUnitTemplate: %v", err)
	}
	return model.NewUnit(2, "Dummy", tmpl, unitmod.WithLedger())
}

func makeActiveEffect(skillID int32, abnormalType string, abnormalLevel int32, remainingMs int32, effect Effect) *ActiveEffect {
	return &ActiveEffect{
		CasterObjID:   1,
		SkillID:       skillID,
		SkillLevel:    1,
		Effect:        effect,
		RemainingMs:   remainingMs,
		AbnormalType:  abnormalType,
		AbnormalLevel: abnormalLevel,
	}
}

func apFlat(v float64) StatModifier {
	return StatModifier{Stat: unitmod.AttackPowerMelee, Type: unitmod.TotalTemporary, Kind: ModFlat, Value: v}
}

func assertNear(t *testing.T, what string, want, got float64) {
	t.Helper()
	if math.Abs(want-got) > 1e-9 {
		t.Errorf("%s: expected %.4f, got %.4f", what, want, got)
	}
}

// assertBalanced checks every applied modifier was unapplied with the same value.
func assertBalanced(t *testing.T, u *model.Unit) {
	t.Helper()
	if n := u.Mods().LedgerMismatches(); n != 0 {
		t.Errorf("expected 0 ledger mismatches, got %d", n)
	}
	if n := u.Mods().LedgerOutstanding(); n != 0 {
		t.Errorf("expected 0 outstanding modifiers, got %d", n)
	}
	if !u.Mods().IsEmpty() {
		t.Errorf("expected empty modifier store, got %d entries", u.Mods().Len())
	}
}

func TestAddBuff_AppliesModifiers(t *testing.T) {
	u := newTestUnit(t)
	m := NewEffectManager(u)

	eff := newTestEffect("might", apFlat(30))
	m.AddBuff(makeActiveEffect(100, "MIGHT", 1, 60000, eff))

	if !eff.started {
		t.Error("OnStart should have been called")
	}
	assertNear(t, "attack power", 100, u.AttackPower(false))

	m.RemoveEffect("MIGHT")
	assertNear(t, "attack power after remove", 70, u.AttackPower(false))
	if !eff.exited {
		t.Error("OnExit should have been called on remove")
	}
	assertBalanced(t, u)
}

func TestAddBuff_Stacking_HigherReplaces(t *testing.T) {
	u := newTestUnit(t)
	m := NewEffectManager(u)

	eff1 := newTestEffect("buff1", apFlat(10))
	m.AddBuff(makeActiveEffect(100, "MIGHT", 1, 60000, eff1))

	eff2 := newTestEffect("buff2", apFlat(20))
	replaced := m.AddBuff(makeActiveEffect(101, "MIGHT", 2, 60000, eff2))

	if !replaced {
		t.Fatal("higher level should replace")
	}
	if m.BuffCount() != 1 {
		t.Fatalf("expected 1 buff after replace, got %d", m.BuffCount())
	}
	if !eff1.exited {
		t.Error("old effect OnExit should have been called")
	}
	if !eff2.started {
		t.Error("new effect OnStart should have been called")
	}
	assertNear(t, "attack power", 90, u.AttackPower(false))
}

func TestAddBuff_Stacking_SameRefreshes(t *testing.T) {
	u := newTestUnit(t)
	m := NewEffectManager(u)

	m.AddBuff(makeActiveEffect(100, "MIGHT", 1, 30000, newTestEffect("buff1", apFlat(10))))
	eff2 := newTestEffect("buff2", apFlat(10))
	m.AddBuff(makeActiveEffect(100, "MIGHT", 1, 60000, eff2))

	if m.BuffCount() != 1 {
		t.Fatalf("expected 1 buff, got %d", m.BuffCount())
	}
	if eff2.started {
		t.Error("refresh must not start the new effect")
	}
	buffs := m.ActiveBuffs()
	if buffs[0].RemainingMs != 60000 {
		t.Errorf("expected refreshed duration 60000, got %d", buffs[0].RemainingMs)
	}
	assertNear(t, "attack power applied once", 80, u.AttackPower(false))
}

func TestAddBuff_Stacking_LowerRejected(t *testing.T) {
	u := newTestUnit(t)
	m := NewEffectManager(u)

	m.AddBuff(makeActiveEffect(100, "MIGHT", 2, 60000, newTestEffect("buff1", apFlat(20))))
	added := m.AddBuff(makeActiveEffect(101, "MIGHT", 1, 60000, newTestEffect("buff2", apFlat(10))))

	if added {
		t.Fatal("lower level should be rejected")
	}
	if m.BuffCount() != 1 {
		t.Fatalf("expected 1 buff, got %d", m.BuffCount())
	}
	assertNear(t, "attack power", 90, u.AttackPower(false))
}

func TestBuffLimit(t *testing.T) {
	u := newTestUnit(t)
	m := NewEffectManager(u)

	var first *testEffect
	for i := range int32(maxBuffs + 1) {
		eff := newTestEffect("buff", apFlat(1))
		if i == 0 {
			first = eff
		}
		m.AddBuff(makeActiveEffect(i, "", 0, 60000, eff))
	}

	if m.BuffCount() != maxBuffs {
		t.Errorf("expected %d buffs after limit, got %d", maxBuffs, m.BuffCount())
	}
	if !first.exited {
		t.Error("oldest buff should have been removed")
	}
	assertNear(t, "attack power", 70+maxBuffs, u.AttackPower(false))
}

func TestDebuffLimit(t *testing.T) {
	u := newTestUnit(t)
	m := NewEffectManager(u)

	for i := range int32(maxDebuffs + 1) {
		m.AddDebuff(makeActiveEffect(i, "", 0, 60000, newTestEffect("debuff", apFlat(-1))))
	}

	if m.DebuffCount() != maxDebuffs {
		t.Errorf("expected %d debuffs after limit, got %d", maxDebuffs, m.DebuffCount())
	}
	assertNear(t, "attack power", 70-maxDebuffs, u.AttackPower(false))
}

func TestTick_ExpiresEffects(t *testing.T) {
	u := newTestUnit(t)
	m := NewEffectManager(u)

	eff1 := newTestEffect("short", apFlat(50))
	m.AddBuff(makeActiveEffect(100, "SHORT", 1, 1000, eff1))

	armor := StatModifier{Stat: unitmod.Armor, Type: unitmod.TotalTemporary, Kind: ModPercent, Value: 10}
	m.AddBuff(makeActiveEffect(101, "LONG", 1, 5000, newTestEffect("long", armor)))

	m.Tick(2000)

	if m.BuffCount() != 1 {
		t.Fatalf("expected 1 buff after tick, got %d", m.BuffCount())
	}
	if !eff1.exited {
		t.Error("expired effect OnExit should have been called")
	}
	assertNear(t, "attack power after expiry", 70, u.AttackPower(false))
	assertNear(t, "armor", 99, u.Resistance(unitmod.Armor))

	m.Tick(3000)
	assertNear(t, "armor after expiry", 90, u.Resistance(unitmod.Armor))
	assertBalanced(t, u)
}

func TestTick_PeriodicAction(t *testing.T) {
	u := newTestUnit(t)
	m := NewEffectManager(u)

	eff := newTestEffect("dot")
	ae := makeActiveEffect(100, "DOT", 1, 10000, eff)
	ae.PeriodMs = 3000
	m.AddDebuff(ae)

	m.Tick(2000)
	if eff.actions != 0 {
		t.Errorf("expected 0 actions before first period, got %d", eff.actions)
	}
	m.Tick(7000) // 9000 elapsed
	if eff.actions != 3 {
		t.Errorf("expected 3 actions, got %d", eff.actions)
	}
	m.Tick(5000) // capped at remaining 1000
	if eff.actions != 3 {
		t.Errorf("expected no action past duration, got %d", eff.actions)
	}
	if m.DebuffCount() != 0 {
		t.Errorf("expected debuff to expire, got %d", m.DebuffCount())
	}
}

func TestTick_PeriodicActionStops(t *testing.T) {
	u := newTestUnit(t)
	m := NewEffectManager(u)

	eff := newTestEffect("dot")
	eff.stopAfter = 2
	ae := makeActiveEffect(100, "DOT", 1, 60000, eff)
	ae.PeriodMs = 1000
	m.AddDebuff(ae)

	m.Tick(5000)
	if eff.actions != 2 {
		t.Errorf("expected 2 actions, got %d", eff.actions)
	}
	if m.DebuffCount() != 0 || !eff.exited {
		t.Error("effect should end when OnActionTime returns false")
	}
}

func TestAddPassive_ReplacesExisting(t *testing.T) {
	u := newTestUnit(t)
	m := NewEffectManager(u)

	armor := func(v float64) StatModifier {
		return StatModifier{Stat: unitmod.Armor, Type: unitmod.TotalPermanent, Kind: ModFlat, Value: v}
	}
	eff1 := newTestEffect("passive1", armor(10))
	m.AddPassive(makeActiveEffect(228, "", 0, 0, eff1))
	m.AddPassive(makeActiveEffect(228, "", 0, 0, newTestEffect("passive2", armor(20))))

	assertNear(t, "armor after passive replace", 110, u.Resistance(unitmod.Armor))
	if !eff1.exited {
		t.Error("old passive OnExit should have been called")
	}
	if m.PassiveCount() != 1 {
		t.Errorf("expected 1 passive, got %d", m.PassiveCount())
	}

	m.Tick(60000)
	if m.PassiveCount() != 1 {
		t.Error("passives must not expire")
	}

	m.RemoveBySkillID(228)
	assertBalanced(t, u)
}

func TestExitAll(t *testing.T) {
	u := newTestUnit(t)
	m := NewEffectManager(u)

	m.AddBuff(makeActiveEffect(1, "A", 1, 60000, newTestEffect("a", apFlat(5))))
	m.AddDebuff(makeActiveEffect(2, "B", 1, 60000, newTestEffect("b", apFlat(-3))))
	m.AddPassive(makeActiveEffect(3, "", 0, 0, newTestEffect("c", apFlat(7))))
	assertNear(t, "attack power", 79, u.AttackPower(false))

	m.ExitAll()

	if m.BuffCount()+m.DebuffCount()+m.PassiveCount() != 0 {
		t.Error("expected no effects after ExitAll")
	}
	assertBalanced(t, u)
}

func TestEffectsSpanningBulkLoad(t *testing.T) {
	u := newTestUnit(t)
	m := NewEffectManager(u)

	u.BeginBulkLoad()
	m.AddBuff(makeActiveEffect(1, "A", 1, 60000, newTestEffect("a", apFlat(30))))
	assertNear(t, "attack power during bulk load", 70, u.AttackPower(false))
	u.EndBulkLoad()

	assertNear(t, "attack power after bulk load", 100, u.AttackPower(false))
}
