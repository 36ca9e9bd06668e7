package generator

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/kasuganosora/contentbackport/model"
	"github.com/kasuganosora/contentbackport/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func withPrefab(id, path string) *model.ItemDetail {
	it := &model.TemplateItem{ID: id, Name: id}
	if path != "" {
		it.Props = &model.ItemProps{Prefab: &model.Prefab{Path: path}}
	}
	return &model.ItemDetail{NewItem: it, FleaPriceRoubles: 100, HandbookPriceRoubles: 100}
}

func readList(t *testing.T, dir, name string) []map[string]interface{} {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	res := &pipeline.Result{
		Details: []*model.ItemDetail{withPrefab("item_X", "assets/x.bundle"), withPrefab("item_W", "")},
		Deltas: []*model.CompatibilityDelta{{
			ID: "item_Y", Name: "rail", ConflictingItems: []string{"item_Z"},
			CompatibleItems: map[string][]string{"mod_scope": {"item_X"}},
		}},
		Assort: []*model.AssortEntry{{
			TraderID:     "trader_1",
			Item:         &model.Item{ID: "inst_1", Tpl: "item_X", ParentID: model.AssortParentID, SlotID: model.AssortSlotID},
			BarterScheme: []model.BarterScheme{{Count: 500, Tpl: "money_roubles"}},
			LoyaltyLevel: 2,
		}},
	}
	require.NoError(t, New(dir, zap.NewNop()).Write(res))

	details := readList(t, dir, ItemDetailsFile)
	require.Len(t, details, 2)
	assert.EqualValues(t, 100, details[0]["fleaPriceRoubles"])

	deltas := readList(t, dir, ItemsConfigFile)
	require.Len(t, deltas, 1)
	assert.Equal(t, "item_Y", deltas[0]["id"])
	assert.Equal(t, false, deltas[0]["is_new"])

	assort := readList(t, dir, TraderAssortFile)
	require.Len(t, assort, 1)
	assert.Equal(t, "trader_1", assort[0]["traderId"])
	assert.EqualValues(t, 2, assort[0]["loyaltyLevel"])

	data, err := os.ReadFile(filepath.Join(dir, AssetPathsFile))
	require.NoError(t, err)
	var paths []string
	require.NoError(t, json.Unmarshal(data, &paths))
	assert.Equal(t, []string{"assets/x.bundle"}, paths)

	_, err = os.Stat(filepath.Join(dir, AssetPathsFile+".tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestWrite_EmptyResultWritesEmptyLists(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, New(dir, zap.NewNop()).Write(&pipeline.Result{}))

	for _, name := range []string{ItemDetailsFile, ItemsConfigFile, TraderAssortFile, AssetPathsFile} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.JSONEq(t, "[]", string(data), name)
	}
}

func TestWrite_UnwritableDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	err := New(filepath.Join(file, "out"), zap.NewNop()).Write(&pipeline.Result{})
	assert.Error(t, err)
}

func TestAssetPaths_Dedupes(t *testing.T) {
	got := AssetPaths([]*model.ItemDetail{
		withPrefab("a", "assets/shared.bundle"),
		withPrefab("b", "assets/shared.bundle"),
		{},
	})
	assert.Equal(t, []string{"assets/shared.bundle"}, got)
}
