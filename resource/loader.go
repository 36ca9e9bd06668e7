package resource

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kasuganosora/contentbackport/model"
)

// Pack file layout, relative to the pack directory.
const (
	ItemsFile      = "items.json"
	PricesFile     = "items-prices.json"
	TraderFile     = "trader_config.json"
	PresetsFile    = "itemPresets.json"
	CategoriesDir  = "categories"
	LocalesDir     = "locales"
	jsonFileSuffix = ".json"
)

// Loader reads a supplemental content pack from disk.
type Loader struct {
	PackPath     string
	Locales      []string // e.g. "en", "ru"; one locales/<lang>.json each
	CategorySets []string // e.g. "moduleCategories"; one categories/<set>.json each

	data Data
}

// NewLoader creates a Loader for the given pack directory.
func NewLoader(packPath string, locales, categorySets []string) *Loader {
	return &Loader{
		PackPath:     packPath,
		Locales:      locales,
		CategorySets: categorySets,
	}
}

// Load reads every pack file and returns the immutable snapshot. Any missing or
// malformed required file is a *model.ConfigurationError.
func (l *Loader) Load() (*ReferenceDataSet, error) {
	l.data = Data{}
	loaders := []func() error{
		l.loadItems,
		l.loadPrices,
		l.loadCategories,
		l.loadLocales,
		l.loadTraders,
		l.loadPresets,
	}
	for _, fn := range loaders {
		if err := fn(); err != nil {
			return nil, err
		}
	}
	return NewReferenceDataSet(l.data)
}

func (l *Loader) path(parts ...string) string {
	return filepath.Join(append([]string{l.PackPath}, parts...)...)
}

func loadJSONObject[T any](path string, out *T) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &model.ConfigurationError{Source: path, Err: fmt.Errorf("resource: read: %w", err)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &model.ConfigurationError{Source: path, Err: fmt.Errorf("resource: parse: %w", err)}
	}
	return nil
}

func (l *Loader) loadItems() error {
	return loadJSONObject(l.path(ItemsFile), &l.data.Items)
}

func (l *Loader) loadPrices() error {
	return loadJSONObject(l.path(PricesFile), &l.data.Prices)
}

func (l *Loader) loadCategories() error {
	if len(l.CategorySets) == 0 {
		return &model.ConfigurationError{Source: CategoriesDir, Err: errors.New("no category sets configured")}
	}
	for _, name := range l.CategorySets {
		var ids []string
		if err := loadJSONObject(l.path(CategoriesDir, name+jsonFileSuffix), &ids); err != nil {
			return err
		}
		l.data.Categories = append(l.data.Categories, CategorySet{Name: name, IDs: ids})
	}
	return nil
}

func (l *Loader) loadLocales() error {
	if len(l.Locales) == 0 {
		return &model.ConfigurationError{Source: LocalesDir, Err: errors.New("no locales configured")}
	}
	l.data.Locales = make(map[string]map[string]*model.ItemLocale, len(l.Locales))
	for _, lang := range l.Locales {
		table := make(map[string]*model.ItemLocale)
		if err := loadJSONObject(l.path(LocalesDir, lang+jsonFileSuffix), &table); err != nil {
			return err
		}
		l.data.Locales[lang] = table
	}
	return nil
}

func (l *Loader) loadTraders() error {
	return loadJSONObject(l.path(TraderFile), &l.data.Traders)
}

// loadPresets is optional: packs without presets simply omit the file.
func (l *Loader) loadPresets() error {
	p := l.path(PresetsFile)
	if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return loadJSONObject(p, &l.data.Presets)
}
