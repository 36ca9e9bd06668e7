package catalog

import (
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/kasuganosora/contentbackport/model"
	"github.com/samber/lo"
)

// FallbackLocale supplies text for host languages a new item has no entry for.
const FallbackLocale = "en"

// Tables is the in-memory host catalog.
type Tables struct {
	mu       sync.RWMutex
	items    map[string]*model.TemplateItem
	handbook *Handbook
	prices   map[string]int
	locales  map[string]map[string]string // lang → "<id> Name" → text
	traders  map[string]*Trader
	presets  map[string]*model.Preset
}

// NewTables returns an empty catalog.
func NewTables() *Tables {
	return &Tables{
		items:    map[string]*model.TemplateItem{},
		handbook: &Handbook{},
		prices:   map[string]int{},
		locales:  map[string]map[string]string{},
		traders:  map[string]*Trader{},
		presets:  map[string]*model.Preset{},
	}
}

// PutItem registers a template as-is. It is used to seed a catalog.
func (t *Tables) PutItem(it *model.TemplateItem) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items[it.ID] = it
}

// PutHandbookItem appends a handbook entry.
func (t *Tables) PutHandbookItem(hi *HandbookItem) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.handbook.Items = append(t.handbook.Items, hi)
}

// PutTrader registers a trader. A nil assort is replaced by an empty one.
func (t *Tables) PutTrader(tr *Trader) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tr.Assort == nil {
		tr.Assort = newAssort()
	}
	if tr.Base.ItemsSell == nil {
		tr.Base.ItemsSell = map[string]*SellList{}
	}
	t.traders[tr.Base.ID] = tr
}

// PutLocale registers an (empty) global locale table for lang.
func (t *Tables) PutLocale(lang string, table map[string]string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if table == nil {
		table = map[string]string{}
	}
	t.locales[lang] = table
}

func (t *Tables) HasItem(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.items[id]
	return ok
}

func (t *Tables) Item(id string) (*model.TemplateItem, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	it, ok := t.items[id]
	return it, ok
}

// ItemIDs returns every registered template ID, sorted.
func (t *Tables) ItemIDs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := lo.Keys(t.items)
	slices.Sort(ids)
	return ids
}

func (t *Tables) HandbookParent(id string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if hi := t.handbookItem(id); hi != nil {
		return hi.ParentID
	}
	return ""
}

func (t *Tables) handbookItem(id string) *HandbookItem {
	hi, ok := lo.Find(t.handbook.Items, func(hi *HandbookItem) bool { return hi.ID == id })
	if !ok {
		return nil
	}
	return hi
}

// HandbookItem returns a copy of the handbook entry for id.
func (t *Tables) HandbookItem(id string) (HandbookItem, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	hi := t.handbookItem(id)
	if hi == nil {
		return HandbookItem{}, false
	}
	return *hi, true
}

// Price returns the flea price of id.
func (t *Tables) Price(id string) (int, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.prices[id]
	return p, ok
}

// LocaleText returns the name, short name and description of id in lang.
func (t *Tables) LocaleText(lang, id string) (model.LocaleDetails, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	table, ok := t.locales[lang]
	if !ok {
		return model.LocaleDetails{}, false
	}
	name, ok := table[id+" Name"]
	if !ok {
		return model.LocaleDetails{}, false
	}
	return model.LocaleDetails{
		Name:        name,
		ShortName:   table[id+" ShortName"],
		Description: table[id+" Description"],
	}, true
}

// Languages returns the host locale codes, sorted.
func (t *Tables) Languages() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	langs := lo.Keys(t.locales)
	slices.Sort(langs)
	return langs
}

func (t *Tables) HasTrader(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.traders[id]
	return ok
}

// TraderAssort returns a copy of the trader's assort and sell lists.
func (t *Tables) TraderAssort(id string) (*Trader, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	tr, ok := t.traders[id]
	if !ok {
		return nil, false
	}
	base := &TraderBase{ID: tr.Base.ID, Nickname: tr.Base.Nickname, ItemsSell: map[string]*SellList{}}
	for lvl, sl := range tr.Base.ItemsSell {
		base.ItemsSell[lvl] = &SellList{IDList: slices.Clone(sl.IDList)}
	}
	assort := newAssort()
	assort.Items = slices.Clone(tr.Assort.Items)
	for k, v := range tr.Assort.BarterScheme {
		assort.BarterScheme[k] = v
	}
	for k, v := range tr.Assort.LoyalLevelItems {
		assort.LoyalLevelItems[k] = v
	}
	return &Trader{Base: base, Assort: assort}, true
}

func (t *Tables) TraderHasTemplate(traderID, tpl string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	tr, ok := t.traders[traderID]
	if !ok {
		return false
	}
	return lo.ContainsBy(tr.Assort.Items, func(it *model.Item) bool {
		return it.Tpl == tpl && it.ParentID == model.AssortParentID
	})
}

// Preset returns the global preset with the given ID.
func (t *Tables) Preset(id string) (*model.Preset, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.presets[id]
	return p, ok
}

func (t *Tables) CreateItem(detail *model.ItemDetail) error {
	if detail == nil || detail.NewItem == nil {
		return fmt.Errorf("catalog: create item: empty detail")
	}
	item, err := detail.NewItem.Clone()
	if err != nil {
		return fmt.Errorf("catalog: clone %s: %w", detail.ItemID(), err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.items[item.ID]; ok {
		return model.ErrItemExists
	}
	t.items[item.ID] = item
	if t.handbookItem(item.ID) == nil {
		t.handbook.Items = append(t.handbook.Items, &HandbookItem{
			ID:       item.ID,
			ParentID: detail.HandbookParentID,
			Price:    detail.HandbookPriceRoubles,
		})
	}
	t.prices[item.ID] = detail.FleaPriceRoubles

	for lang, table := range t.locales {
		text, ok := detail.Locales[lang]
		if !ok {
			text, ok = detail.Locales[FallbackLocale]
		}
		if !ok {
			continue
		}
		table[item.ID+" Name"] = text.Name
		table[item.ID+" ShortName"] = text.ShortName
		table[item.ID+" Description"] = text.Description
	}
	return nil
}

func (t *Tables) AppendConflictingItems(itemID string, ids []string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	it, ok := t.items[itemID]
	if !ok {
		return 0, &model.DanglingReferenceError{Kind: model.RefItem, OwnerID: "conflicting items", RefID: itemID}
	}
	if it.Props == nil {
		it.Props = &model.ItemProps{}
	}
	added := missingFrom(it.Props.ConflictingItems, ids)
	it.Props.ConflictingItems = append(it.Props.ConflictingItems, added...)
	return len(added), nil
}

func (t *Tables) AppendSlotFilter(itemID, slot string, ids []string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	it, ok := t.items[itemID]
	if !ok {
		return 0, &model.DanglingReferenceError{Kind: model.RefItem, OwnerID: "slot " + slot, RefID: itemID}
	}
	s := it.SlotByName(slot)
	if s == nil {
		return 0, &model.DanglingReferenceError{Kind: model.RefSlot, OwnerID: itemID, RefID: slot}
	}
	added := missingFrom(s.FilterIDs(), ids)
	if len(added) > 0 {
		s.AppendFilterIDs(added...)
	}
	return len(added), nil
}

func (t *Tables) AddAssortEntry(entry *model.AssortEntry) (bool, error) {
	if entry == nil || entry.Item == nil {
		return false, fmt.Errorf("catalog: add assort: empty entry")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	tr, ok := t.traders[entry.TraderID]
	if !ok {
		return false, &model.DanglingReferenceError{Kind: model.RefTrader, OwnerID: entry.Item.ID, RefID: entry.TraderID}
	}
	if _, ok := t.items[entry.Item.Tpl]; !ok {
		return false, &model.DanglingReferenceError{Kind: model.RefItem, OwnerID: entry.Item.ID, RefID: entry.Item.Tpl}
	}
	for _, bs := range entry.BarterScheme {
		if _, ok := t.items[bs.Tpl]; !ok {
			return false, &model.DanglingReferenceError{Kind: model.RefRequired, OwnerID: entry.Item.ID, RefID: bs.Tpl}
		}
	}

	id := entry.Item.ID
	if lo.ContainsBy(tr.Assort.Items, func(it *model.Item) bool { return it.ID == id }) {
		return false, nil
	}
	tr.Assort.Items = append(tr.Assort.Items, entry.Item)
	tr.Assort.Items = append(tr.Assort.Items, entry.SubItems...)
	tr.Assort.LoyalLevelItems[id] = entry.LoyaltyLevel
	tr.Assort.BarterScheme[id] = [][]model.BarterScheme{slices.Clone(entry.BarterScheme)}

	lvl := strconv.Itoa(entry.LoyaltyLevel)
	sl, ok := tr.Base.ItemsSell[lvl]
	if !ok {
		sl = &SellList{}
		tr.Base.ItemsSell[lvl] = sl
	}
	if !lo.Contains(sl.IDList, id) {
		sl.IDList = append(sl.IDList, id)
	}
	return true, nil
}

func (t *Tables) AddPreset(p *model.Preset) (bool, error) {
	if p == nil {
		return false, fmt.Errorf("catalog: add preset: nil preset")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.presets[p.ID]; ok {
		return false, nil
	}
	for _, it := range p.Items {
		if _, ok := t.items[it.Tpl]; !ok {
			return false, &model.DanglingReferenceError{Kind: model.RefPreset, OwnerID: p.ID, RefID: it.Tpl}
		}
	}
	t.presets[p.ID] = p
	return true, nil
}

// missingFrom returns the ids not already in list, deduplicated, in input order.
func missingFrom(list, ids []string) []string {
	return lo.Uniq(lo.Without(ids, list...))
}

var _ Catalog = (*Tables)(nil)
