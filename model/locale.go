package model

// ItemLocale is one entry of a pack locale table (locales/<lang>.json).
type ItemLocale struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ShortName   string `json:"shortName"`
	Description string `json:"description"`
}

// LocaleDetails is the localized text attached to a new item for one language.
type LocaleDetails struct {
	Name        string `json:"name"`
	ShortName   string `json:"shortName"`
	Description string `json:"description"`
}

// Details drops the ID, which is implied by the owning record.
func (l *ItemLocale) Details() LocaleDetails {
	return LocaleDetails{Name: l.Name, ShortName: l.ShortName, Description: l.Description}
}
