// Package catalog is the host side of a backport: the narrow interface the
// merge applier writes through, and an in-memory implementation loaded from a
// host database directory.
package catalog

import "github.com/kasuganosora/contentbackport/model"

// Catalog is the mutable host catalog. Implementations serialize their own state.
type Catalog interface {
	// HasItem reports whether a template with this ID is registered.
	HasItem(id string) bool
	// Item returns the registered template. The result must not be modified.
	Item(id string) (*model.TemplateItem, bool)
	// HandbookParent returns the ParentId of the first handbook entry for id,
	// or "" when the handbook has none.
	HandbookParent(id string) string
	HasTrader(id string) bool
	// TraderHasTemplate reports whether the trader's assort already stocks tpl.
	TraderHasTemplate(traderID, tpl string) bool

	// CreateItem registers a new template with its handbook entry, flea price
	// and localized text. It returns model.ErrItemExists if the ID is taken.
	CreateItem(detail *model.ItemDetail) error
	// AppendConflictingItems adds ids missing from the item's conflict list and
	// returns how many were added.
	AppendConflictingItems(itemID string, ids []string) (int, error)
	// AppendSlotFilter adds ids missing from the named slot's filter and returns
	// how many were added.
	AppendSlotFilter(itemID, slot string, ids []string) (int, error)
	// AddAssortEntry inserts the entry into its trader's assort. It returns false
	// if an entry with the same instance ID is already there.
	AddAssortEntry(entry *model.AssortEntry) (bool, error)
	// AddPreset registers a global preset. It returns false if the ID is taken.
	AddPreset(p *model.Preset) (bool, error)
}

// HandbookItem places a template in the handbook tree.
type HandbookItem struct {
	ID       string `json:"Id"`
	ParentID string `json:"ParentId"`
	Price    int    `json:"Price"`
}

// HandbookCategory is a handbook tree node.
type HandbookCategory struct {
	ID       string `json:"Id"`
	ParentID string `json:"ParentId"`
	Icon     string `json:"Icon,omitempty"`
	Color    string `json:"Color,omitempty"`
	Order    string `json:"Order,omitempty"`
}

type Handbook struct {
	Categories []*HandbookCategory `json:"Categories"`
	Items      []*HandbookItem     `json:"Items"`
}

// SellList is the set of templates a trader buys or sells at one loyalty level.
type SellList struct {
	IDList []string `json:"id_list"`
}

// TraderBase is the subset of a trader's base.json the backport touches.
type TraderBase struct {
	ID        string               `json:"_id"`
	Nickname  string               `json:"nickname"`
	ItemsSell map[string]*SellList `json:"items_sell,omitempty"` // keyed by loyalty level
}

// Assort is a trader's stock.
type Assort struct {
	Items           []*model.Item                     `json:"items"`
	BarterScheme    map[string][][]model.BarterScheme `json:"barter_scheme"`
	LoyalLevelItems map[string]int                    `json:"loyal_level_items"`
}

func newAssort() *Assort {
	return &Assort{
		Items:           []*model.Item{},
		BarterScheme:    map[string][][]model.BarterScheme{},
		LoyalLevelItems: map[string]int{},
	}
}

type Trader struct {
	Base   *TraderBase `json:"base"`
	Assort *Assort     `json:"assort"`
}
