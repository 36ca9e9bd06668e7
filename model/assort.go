package model

const (
	// AssortParentID and AssortSlotID are the root container of every trader assort item.
	AssortParentID = "hideout"
	AssortSlotID   = "hideout"

	// UnboundedStack is the stack size given to unlimited assort entries.
	UnboundedStack = 9999999
)

// BarterScheme is one cost line: Count units of template Tpl.
type BarterScheme struct {
	Count float64 `json:"count"`
	Tpl   string  `json:"_tpl"`
}

// AssortEntry is a sellable instance ready to be inserted into a trader assort.
type AssortEntry struct {
	TraderID     string         `json:"traderId"`
	Item         *Item          `json:"item"`
	SubItems     []*Item        `json:"subItems"`
	BarterScheme []BarterScheme `json:"barterScheme"`
	LoyaltyLevel int            `json:"loyaltyLevel"`
}
