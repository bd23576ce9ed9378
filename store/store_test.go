package store

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"vle"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveAndLoadSweep(t *testing.T) {
	db := openTestDB(t)

	nan := math.NaN()
	results := []vle.SweepResult{
		{
			T:           390,
			Fixed:       []float64{0.4, 0.6},
			Pressure:    1.13e6,
			Composition: []float64{0.52, 0.48},
			VaporFlag:   vle.FlagVapor,
			LiquidFlag:  vle.FlagLiquid,
			Objective:   3.2e-7,
		},
		{
			T:           560,
			Fixed:       []float64{0.4, 0.6},
			Pressure:    nan,
			Composition: []float64{nan, nan},
			VaporFlag:   vle.FlagNoFluid,
			LiquidFlag:  vle.FlagNoFluid,
			Objective:   nan,
			Err:         vle.ErrNoPhysicalRoot,
		},
	}

	runID, err := db.SaveSweep("bubble", "van-der-waals", []string{"pentane", "hexane"}, results)
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	loaded, err := db.LoadSweep(runID)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	ok := loaded[0]
	require.Equal(t, 390.0, ok.T)
	require.InEpsilon(t, 1.13e6, ok.Pressure, 1e-12)
	require.Equal(t, []float64{0.4, 0.6}, ok.Fixed)
	require.Equal(t, []float64{0.52, 0.48}, ok.Composition)
	require.Equal(t, vle.FlagVapor, ok.VaporFlag)
	require.Equal(t, vle.FlagLiquid, ok.LiquidFlag)
	require.Nil(t, ok.Err)

	// The failed row round-trips its NaNs through SQL NULL and keeps the
	// error text.
	bad := loaded[1]
	require.True(t, math.IsNaN(bad.Pressure))
	require.True(t, math.IsNaN(bad.Objective))
	for _, v := range bad.Composition {
		require.True(t, math.IsNaN(v))
	}
	require.Equal(t, vle.FlagNoFluid, bad.VaporFlag)
	require.EqualError(t, bad.Err, vle.ErrNoPhysicalRoot.Error())
}

func TestRunsListing(t *testing.T) {
	db := openTestDB(t)

	result := []vle.SweepResult{{
		T: 390, Fixed: []float64{1, 0}, Pressure: 1.49e6,
		Composition: []float64{1, 0},
		VaporFlag:   vle.FlagVapor, LiquidFlag: vle.FlagLiquid,
	}}

	first, err := db.SaveSweep("bubble", "van-der-waals", []string{"pentane", "hexane"}, result)
	require.NoError(t, err)
	second, err := db.SaveSweep("dew", "van-der-waals", []string{"pentane", "hexane"}, result)
	require.NoError(t, err)

	runs, err := db.Runs(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	ids := []string{runs[0].ID, runs[1].ID}
	require.Contains(t, ids, first)
	require.Contains(t, ids, second)
	for _, r := range runs {
		require.Contains(t, []string{"bubble", "dew"}, r.Kind)
		require.Equal(t, "van-der-waals", r.EOS)
		require.False(t, r.CreatedAt.IsZero())
	}
}

func TestLoadUnknownRun(t *testing.T) {
	db := openTestDB(t)

	loaded, err := db.LoadSweep("no-such-run")
	require.NoError(t, err)
	require.Empty(t, loaded)
}
