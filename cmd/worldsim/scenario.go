package main

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/worldsim/internal/data"
	"github.com/udisondev/worldsim/internal/game/skill"
	"github.com/udisondev/worldsim/internal/model"
	"github.com/udisondev/worldsim/internal/unitmod"
)

// Scenario is a scripted sequence of modifier operations on one unit.
type Scenario struct {
	Template int32        `yaml:"template"`
	Level    int32        `yaml:"level"`  // 0 = template level
	Ledger   bool         `yaml:"ledger"` // report unbalanced apply/unapply pairs
	Show     []string     `yaml:"show"`   // stats to print; empty = every non-zero stat
	Ops      []ScenarioOp `yaml:"ops"`
}

// ScenarioOp is one step of a Scenario.
//
//	modify_flat | modify_mult | modify_percent  stat, type, value, apply
//	set_flat | set_mult                         stat, type, value
//	buff | debuff                               effect, params, duration_ms, skill_id, abnormal_type, abnormal_level
//	remove                                      skill_id
//	tick                                        duration_ms
type ScenarioOp struct {
	Op    string  `yaml:"op"`
	Stat  string  `yaml:"stat"`
	Type  string  `yaml:"type"`
	Value float64 `yaml:"value"`
	Apply *bool   `yaml:"apply"` // nil = true

	Effect        string            `yaml:"effect"`
	Params        map[string]string `yaml:"params"`
	DurationMs    int32             `yaml:"duration_ms"`
	PeriodMs      int32             `yaml:"period_ms"`
	SkillID       int32             `yaml:"skill_id"`
	AbnormalType  string            `yaml:"abnormal_type"`
	AbnormalLevel int32             `yaml:"abnormal_level"`
}

// ParseScenario decodes a YAML scenario.
func ParseScenario(raw []byte) (Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		return sc, fmt.Errorf("parsing scenario: %w", err)
	}
	return sc, nil
}

// ScenarioRun holds the unit a scenario produced.
type ScenarioRun struct {
	Unit    *model.Unit
	Effects *skill.EffectManager
}

// Run builds the unit from the loaded templates and executes every op in order.
func (sc Scenario) Run() (*ScenarioRun, error) {
	tmpl, err := data.GetUnitTemplate(sc.Template)
	if err != nil {
		return nil, err
	}

	var opts []unitmod.Option
	if sc.Ledger {
		opts = append(opts, unitmod.WithLedger())
	}
	u := model.NewUnit(1, tmpl.Name, tmpl, opts...)
	if sc.Level > 0 {
		u.SetLevel(sc.Level)
	}

	run := &ScenarioRun{Unit: u, Effects: skill.NewEffectManager(u)}
	for i, op := range sc.Ops {
		if err := run.exec(op); err != nil {
			return nil, fmt.Errorf("op %d (%s): %w", i, op.Op, err)
		}
	}
	return run, nil
}

func (r *ScenarioRun) exec(op ScenarioOp) error {
	switch op.Op {
	case "modify_flat", "modify_mult", "modify_percent", "set_flat", "set_mult":
		return r.execModify(op)
	case "buff", "debuff":
		return r.execEffect(op)
	case "remove":
		r.Effects.RemoveBySkillID(op.SkillID)
		return nil
	case "tick":
		if op.DurationMs <= 0 {
			return fmt.Errorf("duration_ms must be positive")
		}
		r.Effects.Tick(op.DurationMs)
		return nil
	}
	return fmt.Errorf("unknown op %q", op.Op)
}

func (r *ScenarioRun) execModify(op ScenarioOp) error {
	stat, err := unitmod.ParseStat(op.Stat)
	if err != nil {
		return err
	}
	typeName := op.Type
	if typeName == "" {
		typeName = unitmod.TotalPermanent.String()
	}
	modType, err := unitmod.ParseModType(typeName)
	if err != nil {
		return err
	}
	apply := op.Apply == nil || *op.Apply

	mods := r.Unit.Mods()
	switch op.Op {
	case "modify_flat":
		mods.ModifyFlat(stat, modType, op.Value, apply)
	case "modify_mult":
		if op.Value <= 0 {
			return fmt.Errorf("multiplier must be positive, got %g", op.Value)
		}
		mods.ModifyMult(stat, modType, op.Value, apply)
	case "modify_percent":
		if op.Value <= -100 {
			return fmt.Errorf("percent must be above -100, got %g", op.Value)
		}
		mods.ModifyPercent(stat, modType, op.Value, apply)
	case "set_flat":
		mods.SetFlat(stat, modType, unitmod.FlatFromValue(op.Value))
	case "set_mult":
		if op.Value <= 0 {
			return fmt.Errorf("multiplier must be positive, got %g", op.Value)
		}
		mods.SetMult(stat, modType, unitmod.MultFromValue(op.Value))
	}
	return nil
}

func (r *ScenarioRun) execEffect(op ScenarioOp) error {
	eff, err := skill.CreateEffect(op.Effect, op.Params)
	if err != nil {
		return err
	}
	if op.DurationMs <= 0 {
		return fmt.Errorf("duration_ms must be positive")
	}

	abnormal := op.AbnormalType
	if abnormal == "" {
		abnormal = fmt.Sprintf("SKILL_%d", op.SkillID)
	}
	ae := &skill.ActiveEffect{
		SkillID:       op.SkillID,
		SkillLevel:    max(op.AbnormalLevel, 1),
		Effect:        eff,
		RemainingMs:   op.DurationMs,
		PeriodMs:      op.PeriodMs,
		AbnormalType:  abnormal,
		AbnormalLevel: op.AbnormalLevel,
	}

	var added bool
	if op.Op == "debuff" {
		added = r.Effects.AddDebuff(ae)
	} else {
		added = r.Effects.AddBuff(ae)
	}
	if !added {
		return fmt.Errorf("effect %s rejected by %s", op.Effect, abnormal)
	}
	return nil
}

// shownStats resolves the Show list, or every stat with a non-zero value or modifiers.
func (sc Scenario) shownStats(u *model.Unit) ([]unitmod.Stat, error) {
	if len(sc.Show) > 0 {
		out := make([]unitmod.Stat, 0, len(sc.Show))
		for _, name := range sc.Show {
			stat, err := unitmod.ParseStat(name)
			if err != nil {
				return nil, err
			}
			out = append(out, stat)
		}
		return out, nil
	}

	touched := make(map[unitmod.Stat]bool)
	u.Mods().Each(func(e unitmod.Entry) {
		touched[e.Stat] = true
	})

	var out []unitmod.Stat
	for _, stat := range unitmod.Stats() {
		if touched[stat] || math.Abs(u.Value(stat)) > 1e-9 {
			out = append(out, stat)
		}
	}
	return out, nil
}

// WriteReport prints the stat breakdown of the scenario's unit.
func (r *ScenarioRun) WriteReport(w io.Writer, stats []unitmod.Stat) error {
	u := r.Unit
	fmt.Fprintf(w, "%s (level %d)  health %d/%d  buffs %d  debuffs %d\n",
		u.Name(), u.Level(), u.CurrentHealth(), u.MaxHealth(),
		r.Effects.BuffCount(), r.Effects.DebuffCount())

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "stat\tnaked\tbonus\tpenalty\ttotal\tvalue\t")
	for _, stat := range stats {
		res := u.StatResult(stat, false)
		fmt.Fprintf(tw, "%s\t%.2f\t%+.2f\t%+.2f\t%.2f\t%.2f\t\n",
			stat, res.NakedValue(), res.ModPos, res.ModNeg, res.TotalValue, u.Value(stat))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if n := u.Mods().LedgerMismatches(); n > 0 {
		fmt.Fprintf(w, "ledger: %d mismatched unapply, %d outstanding\n", n, u.Mods().LedgerOutstanding())
	}
	return nil
}
