package resource

import (
	"fmt"
	"slices"

	"github.com/kasuganosora/contentbackport/model"
	"github.com/samber/lo"
)

// CategorySet is one named category whitelist file.
type CategorySet struct {
	Name string
	IDs  []string
}

// Data is the already-parsed content of a pack. Callers that do their own file
// handling build a ReferenceDataSet from it directly.
type Data struct {
	Items      map[string]*model.TemplateItem
	Prices     map[string]int
	Categories []CategorySet
	Locales    map[string]map[string]*model.ItemLocale // lang → id → text
	Traders    []*model.TraderConfig
	Presets    map[string]*model.Preset
}

// ReferenceDataSet is the read-only snapshot of a supplemental pack for one run.
// Returned pointers must not be modified.
type ReferenceDataSet struct {
	items      map[string]*model.TemplateItem
	itemIDs    []string
	prices     map[string]int
	categories []CategorySet
	locales    map[string]map[string]*model.ItemLocale
	traders    []*model.TraderConfig
	presets    map[string]*model.Preset
}

// NewReferenceDataSet validates d and wraps it. Map keys of Items must match the
// item's _id; an empty _id is filled from the key.
func NewReferenceDataSet(d Data) (*ReferenceDataSet, error) {
	items := make(map[string]*model.TemplateItem, len(d.Items))
	for key, it := range d.Items {
		if it == nil {
			continue
		}
		if it.ID == "" {
			it.ID = key
		}
		if it.ID != key {
			return nil, &model.ConfigurationError{
				Source: ItemsFile,
				Err:    fmt.Errorf("resource: key %s holds item %s", key, it.ID),
			}
		}
		items[key] = it
	}
	ids := lo.Keys(items)
	slices.Sort(ids)

	rds := &ReferenceDataSet{
		items:      items,
		itemIDs:    ids,
		prices:     d.Prices,
		categories: d.Categories,
		locales:    d.Locales,
		traders:    lo.Filter(d.Traders, func(tc *model.TraderConfig, _ int) bool { return tc != nil }),
		presets:    d.Presets,
	}
	if rds.prices == nil {
		rds.prices = map[string]int{}
	}
	if rds.locales == nil {
		rds.locales = map[string]map[string]*model.ItemLocale{}
	}
	if rds.presets == nil {
		rds.presets = map[string]*model.Preset{}
	}
	return rds, nil
}

// CandidateIDs returns every pack item ID in sorted order.
func (r *ReferenceDataSet) CandidateIDs() []string {
	return slices.Clone(r.itemIDs)
}

// Candidates returns every pack item, ordered by ID.
func (r *ReferenceDataSet) Candidates() []*model.TemplateItem {
	out := make([]*model.TemplateItem, 0, len(r.itemIDs))
	for _, id := range r.itemIDs {
		out = append(out, r.items[id])
	}
	return out
}

// Item returns the pack item with the given ID.
func (r *ReferenceDataSet) Item(id string) (*model.TemplateItem, bool) {
	it, ok := r.items[id]
	return it, ok
}

// HasItem reports whether id is a pack item.
func (r *ReferenceDataSet) HasItem(id string) bool {
	_, ok := r.items[id]
	return ok
}

// Price returns the rouble price of id.
func (r *ReferenceDataSet) Price(id string) (int, bool) {
	p, ok := r.prices[id]
	return p, ok
}

// Locale returns the localized text of id in lang.
func (r *ReferenceDataSet) Locale(lang, id string) (*model.ItemLocale, bool) {
	table, ok := r.locales[lang]
	if !ok {
		return nil, false
	}
	loc, ok := table[id]
	if !ok || loc == nil {
		return nil, false
	}
	return loc, true
}

// CategorySet returns the IDs of the named whitelist and whether it was loaded.
func (r *ReferenceDataSet) CategorySet(name string) ([]string, bool) {
	for _, cs := range r.categories {
		if cs.Name == name {
			return slices.Clone(cs.IDs), true
		}
	}
	return nil, false
}

// Whitelist returns the ordered union of the named sets, or of every loaded set
// when no names are given.
func (r *ReferenceDataSet) Whitelist(names ...string) []string {
	var out []string
	for _, cs := range r.categories {
		if len(names) > 0 && !lo.Contains(names, cs.Name) {
			continue
		}
		out = append(out, cs.IDs...)
	}
	return lo.Uniq(out)
}

// Traders returns the trader trade definitions in file order.
func (r *ReferenceDataSet) Traders() []*model.TraderConfig {
	return r.traders
}

// Presets returns the pack presets ordered by ID.
func (r *ReferenceDataSet) Presets() []*model.Preset {
	ids := lo.Keys(r.presets)
	slices.Sort(ids)
	out := make([]*model.Preset, 0, len(ids))
	for _, id := range ids {
		if p := r.presets[id]; p != nil {
			out = append(out, p)
		}
	}
	return out
}
