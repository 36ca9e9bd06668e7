package model

// IDRef wraps a template ID the way trader_config.json nests them.
type IDRef struct {
	ID string `json:"id"`
}

// CashOffer sells Item for Price units of CurrencyItem.
type CashOffer struct {
	BuyLimit     int   `json:"buyLimit"`
	Level        int   `json:"level"`
	Price        int   `json:"price"`
	CurrencyItem IDRef `json:"currencyItem"`
	Item         IDRef `json:"item"`
}

// BarterItem is one line of a barter. Count may be fractional in the source data.
type BarterItem struct {
	Count float64 `json:"count"`
	Item  IDRef   `json:"item"`
}

// Barter trades RequiredItems for RewardItems. Only RewardItems[0] is stocked.
type Barter struct {
	BuyLimit      int          `json:"buyLimit"`
	Level         int          `json:"level"`
	RequiredItems []BarterItem `json:"requiredItems"`
	RewardItems   []BarterItem `json:"rewardItems"`
}

// TraderConfig lists the trades one trader should offer for pack items.
type TraderConfig struct {
	ID             string      `json:"id"`
	NormalizedName string      `json:"normalizedName"`
	CashOffers     []CashOffer `json:"cashOffers"`
	Barters        []Barter    `json:"barters"`
}
