package merge

import (
	"sync"
	"testing"

	"github.com/kasuganosora/contentbackport/audit"
	"github.com/kasuganosora/contentbackport/catalog"
	"github.com/kasuganosora/contentbackport/model"
	"github.com/kasuganosora/contentbackport/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func nop() *zap.Logger { l, _ := zap.NewDevelopment(); return l }

type memRecorder struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (r *memRecorder) Log(e audit.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *memRecorder) outcomes(stage string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.entries {
		if e.Stage == stage {
			out = append(out, e.Outcome)
		}
	}
	return out
}

func detail(id string) *model.ItemDetail {
	return &model.ItemDetail{
		NewItem:              &model.TemplateItem{ID: id, Name: id, Parent: testutil.CatScope},
		FleaPriceRoubles:     15000,
		HandbookPriceRoubles: 15000,
		HandbookParentID:     testutil.HandbookSights,
		Locales:              map[string]model.LocaleDetails{"en": {Name: "Scope"}, "ru": {Name: "Прицел"}},
	}
}

func cashEntry(instanceID, tpl, trader string) *model.AssortEntry {
	limit, zero := 5, 0
	return &model.AssortEntry{
		TraderID: trader,
		Item: &model.Item{ID: instanceID, Tpl: tpl, ParentID: model.AssortParentID, SlotID: model.AssortSlotID,
			Upd: &model.Upd{UnlimitedCount: true, StackObjectsCount: model.UnboundedStack, BuyRestrictionMax: &limit, BuyRestrictionCurrent: &zero}},
		SubItems:     []*model.Item{},
		BarterScheme: []model.BarterScheme{{Count: 500, Tpl: testutil.Roubles}},
		LoyaltyLevel: 2,
	}
}

func fullInput() Input {
	return Input{
		Details: []*model.ItemDetail{detail(testutil.ItemX), detail(testutil.ItemZ)},
		Presets: []*model.Preset{{ID: testutil.PresetID, Items: []*model.Item{{ID: "root", Tpl: testutil.ItemX}}}},
		Deltas: []*model.CompatibilityDelta{
			{ID: testutil.ItemY, ConflictingItems: []string{testutil.ItemZ}, CompatibleItems: map[string][]string{"mod_scope": {testutil.ItemX}}},
			{ID: testutil.ItemX, IsNew: true, ConflictingItems: []string{}, CompatibleItems: map[string][]string{}},
		},
		Assort: []*model.AssortEntry{cashEntry("inst_1", testutil.ItemX, testutil.TraderID)},
	}
}

func TestApply_AllStages(t *testing.T) {
	host := testutil.NewHost(t)
	rec := &memRecorder{}
	rep := NewApplier(host, rec, nop()).Apply("run-1", fullInput())

	assert.Empty(t, rep.Failures)
	assert.Equal(t, 2, rep.ItemsCreated)
	assert.Equal(t, 1, rep.PresetsAdded)
	assert.Equal(t, 1, rep.DeltasApplied)
	assert.Equal(t, 1, rep.ConflictsAdded)
	assert.Equal(t, 1, rep.SlotFiltersAdded)
	assert.Equal(t, 1, rep.AssortAdded)

	y, _ := host.Item(testutil.ItemY)
	assert.Equal(t, []string{testutil.ItemZ}, y.ConflictingItems())
	assert.Equal(t, []string{testutil.ScopeOld, testutil.ItemX}, y.SlotByName("mod_scope").FilterIDs())

	tr, _ := host.TraderAssort(testutil.TraderID)
	assert.Equal(t, []string{"inst_1"}, tr.Base.ItemsSell["2"].IDList)
	assert.Equal(t, []string{model.OutcomeApplied, model.OutcomeApplied}, rec.outcomes(StageItem))
}

func TestApply_Idempotent(t *testing.T) {
	host := testutil.NewHost(t)
	a := NewApplier(host, nil, nop())
	a.Apply("run-1", fullInput())
	rep := a.Apply("run-2", fullInput())

	assert.Empty(t, rep.Failures)
	assert.Zero(t, rep.ItemsCreated)
	assert.Equal(t, 2, rep.ItemsSkipped)
	assert.Equal(t, 1, rep.PresetsSkipped)
	assert.Zero(t, rep.DeltasApplied)
	assert.Zero(t, rep.ConflictsAdded+rep.SlotFiltersAdded)
	assert.Zero(t, rep.AssortAdded)
	assert.Equal(t, 1, rep.AssortSkipped)

	y, _ := host.Item(testutil.ItemY)
	assert.Equal(t, []string{testutil.ItemZ}, y.ConflictingItems())
	assert.Equal(t, []string{testutil.ScopeOld, testutil.ItemX}, y.SlotByName("mod_scope").FilterIDs())
	tr, _ := host.TraderAssort(testutil.TraderID)
	assert.Len(t, tr.Assort.Items, 1)
	assert.Equal(t, []string{"inst_1"}, tr.Base.ItemsSell["2"].IDList)
}

func TestApply_MissingSlotIsolated(t *testing.T) {
	host := testutil.NewHost(t)
	in := fullInput()
	in.Deltas = append([]*model.CompatibilityDelta{{
		ID:               testutil.ItemY,
		ConflictingItems: []string{"item_other"},
		CompatibleItems:  map[string][]string{"mod_muzzle": {testutil.ItemX}},
	}}, in.Deltas...)

	rec := &memRecorder{}
	rep := NewApplier(host, rec, nop()).Apply("run-1", in)

	require.Len(t, rep.Failures, 1)
	assert.Equal(t, StageCompat, rep.Failures[0].Stage)
	assert.Equal(t, testutil.ItemY, rep.Failures[0].EntityID)
	assert.Contains(t, rep.Failures[0].Error, "mod_muzzle")

	// the failed delta left nothing behind; the later one still applied
	y, _ := host.Item(testutil.ItemY)
	assert.NotContains(t, y.ConflictingItems(), "item_other")
	assert.Equal(t, []string{testutil.ItemZ}, y.ConflictingItems())
	assert.Equal(t, 1, rep.AssortAdded)
	assert.Contains(t, rec.outcomes(StageCompat), model.OutcomeFailed)
}

func TestApply_MissingTraderAndItemIsolated(t *testing.T) {
	host := testutil.NewHost(t)
	in := fullInput()
	in.Deltas = append(in.Deltas, &model.CompatibilityDelta{ID: "ghost", ConflictingItems: []string{testutil.ItemZ}})
	in.Assort = []*model.AssortEntry{
		cashEntry("inst_1", testutil.ItemX, "ghost_trader"),
		cashEntry("inst_2", testutil.ItemX, testutil.TraderID),
	}

	rep := NewApplier(host, nil, nop()).Apply("run-1", in)

	require.Len(t, rep.Failures, 2)
	assert.Equal(t, "ghost", rep.Failures[0].EntityID)
	assert.Equal(t, "inst_1", rep.Failures[1].EntityID)
	assert.Equal(t, 1, rep.AssortAdded)
	assert.Equal(t, 2, rep.ItemsCreated)
}

func TestApply_PresetWithUnknownTemplate(t *testing.T) {
	host := catalog.NewTables()
	in := Input{Presets: []*model.Preset{{ID: "p", Items: []*model.Item{{ID: "root", Tpl: "ghost"}}}}}

	rep := NewApplier(host, nil, nop()).Apply("run-1", in)
	require.Len(t, rep.Failures, 1)
	assert.Equal(t, StagePreset, rep.Failures[0].Stage)
}

type countingHost struct {
	*catalog.Tables
	assortCalls int
}

func (h *countingHost) AddAssortEntry(e *model.AssortEntry) (bool, error) {
	h.assortCalls++
	return h.Tables.AddAssortEntry(e)
}

func TestApply_UnknownTraderRejectedBeforeWrite(t *testing.T) {
	host := &countingHost{Tables: testutil.NewHost(t)}
	rec := &memRecorder{}
	in := Input{Assort: []*model.AssortEntry{
		cashEntry("inst_1", testutil.Roubles, "ghost_trader"),
		cashEntry("inst_2", testutil.Roubles, testutil.TraderID),
	}}

	rep := NewApplier(host, rec, nop()).Apply("run-1", in)

	require.Len(t, rep.Failures, 1)
	assert.Equal(t, "inst_1", rep.Failures[0].EntityID)
	assert.Contains(t, rep.Failures[0].Error, "ghost_trader")
	assert.Equal(t, 1, host.assortCalls)
	assert.Equal(t, 1, rep.AssortAdded)
	assert.Equal(t, []string{model.OutcomeFailed, model.OutcomeApplied}, rec.outcomes(StageAssort))
}
