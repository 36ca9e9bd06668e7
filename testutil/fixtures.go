package testutil

import (
	"testing"

	"github.com/kasuganosora/contentbackport/catalog"
	"github.com/kasuganosora/contentbackport/game/trade"
	"github.com/kasuganosora/contentbackport/model"
	"github.com/kasuganosora/contentbackport/resource"
	"github.com/stretchr/testify/require"
)

// Fixture IDs shared by the pack and host builders.
const (
	ItemX       = "item_X"                   // new scope, cash offer at trader_1
	ItemY       = "item_Y"                   // host rail the pack extends
	ItemZ       = "item_Z"                   // new grip, conflicts with item_Y
	ItemBarter  = "66a0b1c2d3e4f5a6b7c8d9e0" // new muzzle, barter at trader_1
	ItemFood    = "item_food"                // outside the whitelist
	ItemNoPrice = "item_noprice"             // whitelisted, no price
	ScopeOld    = "scope_old"
	ProtoScope  = "proto_scope"
	Roubles     = "money_roubles"
	Bolts       = "bolts"
	TraderID    = "trader_1"
	PresetID    = "preset_1"

	CatScope = "cat_scope"
	CatMount = "cat_mount"
	CatRifle = "cat_rifle"
	CatFood  = "cat_food"

	HandbookSights = "hb_sights"
)

// Locales and CategorySets match the fixture pack.
var (
	Locales      = []string{"en", "ru"}
	CategorySets = []string{"moduleCategories", "weaponCategories"}
)

func scopeSlot(ids ...string) *model.Slot {
	return &model.Slot{
		Name:  "mod_scope",
		ID:    "slot_mod_scope",
		Props: model.SlotProps{Filters: []*model.SlotFilter{{Filter: ids}}},
	}
}

func text(id, en, ru string) (*model.ItemLocale, *model.ItemLocale) {
	return &model.ItemLocale{ID: id, Name: en, ShortName: en, Description: en + " description"},
		&model.ItemLocale{ID: id, Name: ru, ShortName: ru, Description: ru + " описание"}
}

// NewPackData returns the raw fixture pack so tests can tweak it before
// building a ReferenceDataSet.
func NewPackData() resource.Data {
	enX, ruX := text(ItemX, "Scope", "Прицел")
	enZ, ruZ := text(ItemZ, "Grip", "Рукоятка")
	enB, ruB := text(ItemBarter, "Muzzle", "Дульник")
	enN, ruN := text(ItemNoPrice, "Nothing", "Ничего")

	return resource.Data{
		Items: map[string]*model.TemplateItem{
			ItemX: {ID: ItemX, Name: "new_scope", Parent: CatScope, Type: "Item", Prototype: ProtoScope,
				Props: &model.ItemProps{Prefab: &model.Prefab{Path: "assets/content/items/mods/scopes/new_scope.bundle"}}},
			ItemY: {ID: ItemY, Name: "rail", Parent: CatMount, Type: "Item",
				Props: &model.ItemProps{ConflictingItems: []string{ItemZ}, Slots: []*model.Slot{scopeSlot(ScopeOld, ItemX)}}},
			ItemZ: {ID: ItemZ, Name: "grip", Parent: CatMount, Type: "Item",
				Props: &model.ItemProps{Prefab: &model.Prefab{Path: "assets/content/items/mods/grips/grip.bundle"}}},
			ItemBarter: {ID: ItemBarter, Name: "muzzle", Parent: CatScope, Type: "Item"},
			ItemFood:    {ID: ItemFood, Name: "food", Parent: CatFood, Type: "Item"},
			ItemNoPrice: {ID: ItemNoPrice, Name: "nothing", Parent: CatScope, Type: "Item"},
		},
		Prices: map[string]int{ItemX: 15000, ItemZ: 900, ItemBarter: 3000, ItemFood: 10},
		Categories: []resource.CategorySet{
			{Name: "moduleCategories", IDs: []string{CatScope, CatMount}},
			{Name: "weaponCategories", IDs: []string{CatRifle}},
		},
		Locales: map[string]map[string]*model.ItemLocale{
			"en": {ItemX: enX, ItemZ: enZ, ItemBarter: enB, ItemNoPrice: enN},
			"ru": {ItemX: ruX, ItemZ: ruZ, ItemBarter: ruB, ItemNoPrice: ruN},
		},
		Traders: []*model.TraderConfig{{
			ID:             TraderID,
			NormalizedName: "mechanic",
			CashOffers: []model.CashOffer{{
				BuyLimit: 5, Level: 2, Price: 500,
				CurrencyItem: model.IDRef{ID: Roubles}, Item: model.IDRef{ID: ItemX},
			}},
			Barters: []model.Barter{{
				BuyLimit: 3, Level: 1,
				RequiredItems: []model.BarterItem{{Count: 2.5, Item: model.IDRef{ID: Bolts}}},
				RewardItems:   []model.BarterItem{{Count: 1, Item: model.IDRef{ID: ItemBarter}}},
			}},
		}},
		Presets: map[string]*model.Preset{
			PresetID: {ID: PresetID, Type: "Preset", Name: "new_scope_default", Parent: "preset_root",
				Items: []*model.Item{{ID: "preset_root", Tpl: ItemX}}},
		},
	}
}

// NewPack builds the fixture ReferenceDataSet.
func NewPack(t *testing.T) *resource.ReferenceDataSet {
	t.Helper()
	rds, err := resource.NewReferenceDataSet(NewPackData())
	require.NoError(t, err)
	return rds
}

// NewHost builds a fresh fixture host catalog.
func NewHost(t *testing.T) *catalog.Tables {
	t.Helper()
	h := catalog.NewTables()
	h.PutItem(&model.TemplateItem{ID: ItemY, Name: "rail", Parent: CatMount, Type: "Item",
		Props: &model.ItemProps{ConflictingItems: []string{}, Slots: []*model.Slot{scopeSlot(ScopeOld)}}})
	for _, id := range []string{ScopeOld, ProtoScope, Roubles, Bolts, trade.GPCoinTpl, trade.RoublesTpl} {
		h.PutItem(&model.TemplateItem{ID: id, Name: id, Type: "Item"})
	}
	h.PutHandbookItem(&catalog.HandbookItem{ID: ProtoScope, ParentID: HandbookSights, Price: 9000})
	h.PutLocale("en", map[string]string{ItemY + " Name": "Rail"})
	h.PutLocale("ru", map[string]string{ItemY + " Name": "Планка"})
	h.PutTrader(&catalog.Trader{Base: &catalog.TraderBase{ID: TraderID, Nickname: "Mechanic"}})
	h.PutTrader(&catalog.Trader{Base: &catalog.TraderBase{ID: trade.RefTraderID, Nickname: "Ref"}})
	return h
}
