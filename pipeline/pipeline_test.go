package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kasuganosora/contentbackport/game/trade"
	"github.com/kasuganosora/contentbackport/model"
	"github.com/kasuganosora/contentbackport/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func nop() *zap.Logger { l, _ := zap.NewDevelopment(); return l }

func defaultOptions() Options {
	return Options{
		Locales:        testutil.Locales,
		CategorySets:   testutil.CategorySets,
		RefSellsGPCoin: true,
		GPCoinPrice:    trade.DefaultGPCoinPrice,
	}
}

func TestRun_FullScenario(t *testing.T) {
	ctx := context.Background()
	host := testutil.NewHost(t)
	c := testutil.SetupTestCache(t)

	res, err := New(testutil.NewPack(t), host, defaultOptions(), Deps{Cache: c, Logger: nop()}).Run(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, res.RunID)

	ids := make([]string, 0, len(res.Details))
	for _, d := range res.Details {
		ids = append(ids, d.ItemID())
	}
	assert.ElementsMatch(t, []string{testutil.ItemX, testutil.ItemZ, testutil.ItemBarter}, ids)
	assert.NotContains(t, ids, testutil.ItemFood)

	require.Len(t, res.Errors, 1)
	var mp *model.MissingPriceError
	require.True(t, errors.As(res.Errors[0], &mp))
	assert.Equal(t, testutil.ItemNoPrice, mp.ItemID)

	// GP coin first, then the cash offer and the barter
	require.Len(t, res.Assort, 3)
	assert.Equal(t, trade.GPCoinTpl, res.Assort[0].Item.Tpl)

	require.NotNil(t, res.Report)
	assert.Empty(t, res.Report.Failures)
	assert.Equal(t, 3, res.Report.ItemsCreated)
	assert.Equal(t, 1, res.Report.PresetsAdded)
	assert.Equal(t, 1, res.Report.ConflictsAdded)
	assert.Equal(t, 1, res.Report.SlotFiltersAdded)
	assert.Equal(t, 3, res.Report.AssortAdded)

	y, _ := host.Item(testutil.ItemY)
	assert.Equal(t, []string{testutil.ItemZ}, y.ConflictingItems())
	assert.Equal(t, []string{testutil.ScopeOld, testutil.ItemX}, y.SlotByName("mod_scope").FilterIDs())
	assert.True(t, host.TraderHasTemplate(testutil.TraderID, testutil.ItemX))
	assert.True(t, host.TraderHasTemplate(trade.RefTraderID, trade.GPCoinTpl))

	// lock released, marker stored
	_, err = c.Get(ctx, LockKey)
	assert.Error(t, err)
	s, err := LastSummary(ctx, c)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, res.RunID, s.RunID)
	assert.Len(t, s.Errors, 1)
	assert.Equal(t, 3, s.Report.ItemsCreated)
}

func TestRun_SecondRunAddsNothing(t *testing.T) {
	ctx := context.Background()
	host := testutil.NewHost(t)
	deps := Deps{Cache: testutil.SetupTestCache(t), Logger: nop()}

	_, err := New(testutil.NewPack(t), host, defaultOptions(), deps).Run(ctx)
	require.NoError(t, err)
	res, err := New(testutil.NewPack(t), host, defaultOptions(), deps).Run(ctx)
	require.NoError(t, err)

	// everything is present now: no new items, no GP coin, nothing to stock
	assert.Empty(t, res.Details)
	assert.Empty(t, res.Assort)
	assert.Zero(t, res.Report.ItemsCreated)
	assert.Zero(t, res.Report.ConflictsAdded+res.Report.SlotFiltersAdded)
	assert.Equal(t, 1, res.Report.PresetsSkipped)

	y, _ := host.Item(testutil.ItemY)
	assert.Equal(t, []string{testutil.ItemZ}, y.ConflictingItems())
}

func TestRun_LockHeld(t *testing.T) {
	ctx := context.Background()
	c := testutil.SetupTestCache(t)
	ok, err := c.SetNX(ctx, LockKey, "other", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	host := testutil.NewHost(t)
	_, err = New(testutil.NewPack(t), host, defaultOptions(), Deps{Cache: c, Logger: nop()}).Run(ctx)
	assert.ErrorIs(t, err, ErrRunInProgress)
	assert.False(t, host.HasItem(testutil.ItemX))

	// the other holder keeps its lock
	v, err := c.Get(ctx, LockKey)
	require.NoError(t, err)
	assert.Equal(t, "other", v)
}

func TestRun_DryRun(t *testing.T) {
	ctx := context.Background()
	host := testutil.NewHost(t)
	opts := defaultOptions()
	opts.DryRun = true

	res, err := New(testutil.NewPack(t), host, opts, Deps{Cache: testutil.SetupTestCache(t), Logger: nop()}).Run(ctx)
	require.NoError(t, err)

	assert.Nil(t, res.Report)
	assert.Len(t, res.Details, 3)
	assert.NotEmpty(t, res.Deltas)
	assert.False(t, host.HasItem(testutil.ItemX))
	y, _ := host.Item(testutil.ItemY)
	assert.Empty(t, y.ConflictingItems())
}

func TestRun_ConfigurationErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Options)
		source string
	}{
		{"no locales", func(o *Options) { o.Locales = nil }, "backport.locales"},
		{"unknown category sets", func(o *Options) { o.CategorySets = []string{"ghostCategories"} }, "backport.category_sets"},
		{"one unknown category set", func(o *Options) { o.CategorySets = []string{"moduleCategories", "ghostCategories"} }, "backport.category_sets"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			host := testutil.NewHost(t)
			c := testutil.SetupTestCache(t)
			opts := defaultOptions()
			tc.mutate(&opts)

			_, err := New(testutil.NewPack(t), host, opts, Deps{Cache: c, Logger: nop()}).Run(context.Background())
			var ce *model.ConfigurationError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tc.source, ce.Source)
			assert.False(t, host.HasItem(testutil.ItemX))

			s, err := LastSummary(context.Background(), c)
			require.NoError(t, err)
			assert.Nil(t, s)
		})
	}
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(testutil.NewPack(t), testutil.NewHost(t), defaultOptions(), Deps{Cache: testutil.SetupTestCache(t)}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
