package model

// ItemDetail is everything needed to register one new item in the host catalog.
type ItemDetail struct {
	NewItem              *TemplateItem            `json:"newItem"`
	FleaPriceRoubles     int                      `json:"fleaPriceRoubles"`
	HandbookPriceRoubles int                      `json:"handbookPriceRoubles"`
	HandbookParentID     string                   `json:"handbookParentId"`
	Locales              map[string]LocaleDetails `json:"locales"`
}

// ItemID returns the template ID of the new item.
func (d *ItemDetail) ItemID() string {
	if d.NewItem == nil {
		return ""
	}
	return d.NewItem.ID
}
