package db_test

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/udisondev/worldsim/internal/data"
	"github.com/udisondev/worldsim/internal/db"
	"github.com/udisondev/worldsim/internal/model"
	"github.com/udisondev/worldsim/internal/testutil"
	"github.com/udisondev/worldsim/internal/unitmod"
)

type ModifierRepositorySuite struct {
	suite.Suite
	pool *pgxpool.Pool
	repo *db.ModifierRepository
}

func TestModifierRepositorySuite(t *testing.T) {
	suite.Run(t, new(ModifierRepositorySuite))
}

func (s *ModifierRepositorySuite) SetupSuite() {
	s.pool = testutil.SetupTestDB(s.T())
	s.repo = db.NewModifierRepository(s.pool)
}

func entry(t unitmod.ModType, stat unitmod.Stat, flat unitmod.FlatModifier, mult unitmod.MultModifier) unitmod.Entry {
	return unitmod.Entry{Type: t, Stat: stat, Mod: unitmod.UnitMod{Type: t, Flat: flat, Mult: mult}}
}

func (s *ModifierRepositorySuite) TestSaveLoad_RoundTrip() {
	ctx := testutil.ContextWithTimeout(s.T(), 30*time.Second)

	entries := []unitmod.Entry{
		entry(unitmod.BasePermanent, unitmod.StatStrength, unitmod.NewFlat(12, -4), unitmod.IdentityMult()),
		entry(unitmod.TotalPermanent, unitmod.Armor, unitmod.FlatModifier{}, unitmod.NewMult(1.2, 0.9)),
		entry(unitmod.TotalTemporary, unitmod.AttackPowerMelee, unitmod.FlatFromValue(30), unitmod.IdentityMult()),
	}
	s.Require().NoError(s.repo.Save(ctx, 1, entries))

	loaded, err := s.repo.Load(ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(loaded, 2, "temporary tiers are not persisted")

	byStat := make(map[unitmod.Stat]unitmod.Entry, len(loaded))
	for _, e := range loaded {
		byStat[e.Stat] = e
	}
	str := byStat[unitmod.StatStrength]
	s.Equal(unitmod.BasePermanent, str.Type)
	s.InDelta(12, str.Mod.Flat.Positive(), 1e-9)
	s.InDelta(-4, str.Mod.Flat.Negative(), 1e-9)

	armor := byStat[unitmod.Armor]
	s.Equal(unitmod.TotalPermanent, armor.Type)
	s.InDelta(1.2, armor.Mod.Mult.Positive(), 1e-9)
	s.InDelta(0.9, armor.Mod.Mult.Negative(), 1e-9)
}

func (s *ModifierRepositorySuite) TestSave_Replaces() {
	ctx := testutil.ContextWithTimeout(s.T(), 30*time.Second)

	s.Require().NoError(s.repo.Save(ctx, 2, []unitmod.Entry{
		entry(unitmod.BasePermanent, unitmod.StatStamina, unitmod.FlatFromValue(5), unitmod.IdentityMult()),
		entry(unitmod.BasePermanent, unitmod.StatAgility, unitmod.FlatFromValue(3), unitmod.IdentityMult()),
	}))
	s.Require().NoError(s.repo.Save(ctx, 2, []unitmod.Entry{
		entry(unitmod.BasePermanent, unitmod.StatStamina, unitmod.FlatFromValue(9), unitmod.IdentityMult()),
	}))

	loaded, err := s.repo.Load(ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(loaded, 1)
	s.Equal(unitmod.StatStamina, loaded[0].Stat)
	s.InDelta(9, loaded[0].Mod.Flat.TotalValue(), 1e-9)

	s.Require().NoError(s.repo.Save(ctx, 2, nil))
	loaded, err = s.repo.Load(ctx, 2)
	s.Require().NoError(err)
	s.Empty(loaded)
}

func (s *ModifierRepositorySuite) TestDelete() {
	ctx := testutil.ContextWithTimeout(s.T(), 30*time.Second)

	s.Require().NoError(s.repo.Save(ctx, 3, []unitmod.Entry{
		entry(unitmod.BasePermanent, unitmod.StatSpirit, unitmod.FlatFromValue(1), unitmod.IdentityMult()),
	}))
	s.Require().NoError(s.repo.Delete(ctx, 3))

	loaded, err := s.repo.Load(ctx, 3)
	s.Require().NoError(err)
	s.Empty(loaded)
}

func (s *ModifierRepositorySuite) TestUnitRestore() {
	ctx := testutil.ContextWithTimeout(s.T(), 30*time.Second)
	t := s.T()

	tmpl, err := data.NewUnitTemplate(1, "Dummy", 10, map[unitmod.Stat]float64{
		unitmod.StatStrength: 30,
		unitmod.StatHealth:   100,
	}, nil)
	require.NoError(t, err)

	original := model.NewUnit(4, "Dummy", tmpl)
	original.Mods().ModifyFlat(unitmod.StatStrength, unitmod.BasePermanent, 7, true)
	original.Mods().ModifyPercent(unitmod.AttackPowerMelee, unitmod.TotalPermanent, 10, true)
	original.Mods().ModifyFlat(unitmod.StatStrength, unitmod.TotalTemporary, 100, true)
	require.NoError(t, s.repo.Save(ctx, int64(original.ObjectID()), original.PermanentModifiers()))

	loaded, err := s.repo.Load(ctx, int64(original.ObjectID()))
	require.NoError(t, err)

	restored := model.NewUnit(4, "Dummy", tmpl)
	require.NoError(t, restored.RestoreModifiers(loaded))

	// AP = (10*3 + 37*2 - 20) * 1.1
	assert.InDelta(t, 92.4, restored.AttackPower(false), 1e-9)
	assert.InDelta(t, 37, restored.Stat(unitmod.StatStrength), 1e-9)
}

func (s *ModifierRepositorySuite) TestMigrationsIdempotent() {
	ctx := testutil.ContextWithTimeout(s.T(), 30*time.Second)
	s.Require().NoError(db.MigratePool(ctx, s.pool))
}
