package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kasuganosora/contentbackport/model"
)

// Host database layout, relative to the host directory.
const (
	ItemsFile    = "templates/items.json"
	HandbookFile = "templates/handbook.json"
	PricesFile   = "templates/prices.json"
	LocalesDir   = "locales/global"
	TradersDir   = "traders"
	PresetsFile  = "globals/itemPresets.json"

	traderBaseFile   = "base.json"
	traderAssortFile = "assort.json"
)

// Load reads a host database directory into a new Tables. Items and handbook
// are required; prices, locales, traders and presets may be absent.
func Load(dir string) (*Tables, error) {
	t := NewTables()
	l := &hostLoader{dir: dir, t: t}
	loaders := []func() error{
		l.loadItems,
		l.loadHandbook,
		l.loadPrices,
		l.loadLocales,
		l.loadTraders,
		l.loadPresets,
	}
	for _, fn := range loaders {
		if err := fn(); err != nil {
			return nil, err
		}
	}
	return t, nil
}

type hostLoader struct {
	dir string
	t   *Tables
}

func (l *hostLoader) path(parts ...string) string {
	return filepath.Join(append([]string{l.dir}, parts...)...)
}

func readJSON[T any](path string, out *T) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &model.ConfigurationError{Source: path, Err: fmt.Errorf("catalog: read: %w", err)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &model.ConfigurationError{Source: path, Err: fmt.Errorf("catalog: parse: %w", err)}
	}
	return nil
}

// readOptionalJSON leaves out untouched when path does not exist.
func readOptionalJSON[T any](path string, out *T) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return readJSON(path, out)
}

func (l *hostLoader) loadItems() error {
	items := map[string]*model.TemplateItem{}
	if err := readJSON(l.path(ItemsFile), &items); err != nil {
		return err
	}
	for id, it := range items {
		if it == nil {
			continue
		}
		if it.ID == "" {
			it.ID = id
		}
		l.t.items[id] = it
	}
	return nil
}

func (l *hostLoader) loadHandbook() error {
	hb := &Handbook{}
	if err := readJSON(l.path(HandbookFile), hb); err != nil {
		return err
	}
	l.t.handbook = hb
	return nil
}

func (l *hostLoader) loadPrices() error {
	return readOptionalJSON(l.path(PricesFile), &l.t.prices)
}

func (l *hostLoader) loadLocales() error {
	entries, err := os.ReadDir(l.path(LocalesDir))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return &model.ConfigurationError{Source: l.path(LocalesDir), Err: fmt.Errorf("catalog: list: %w", err)}
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		table := map[string]string{}
		if err := readJSON(l.path(LocalesDir, e.Name()), &table); err != nil {
			return err
		}
		l.t.locales[strings.TrimSuffix(e.Name(), ".json")] = table
	}
	return nil
}

func (l *hostLoader) loadTraders() error {
	entries, err := os.ReadDir(l.path(TradersDir))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return &model.ConfigurationError{Source: l.path(TradersDir), Err: fmt.Errorf("catalog: list: %w", err)}
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		base := &TraderBase{}
		if err := readJSON(l.path(TradersDir, e.Name(), traderBaseFile), base); err != nil {
			return err
		}
		if base.ID == "" {
			base.ID = e.Name()
		}
		if base.ItemsSell == nil {
			base.ItemsSell = map[string]*SellList{}
		}
		assort := newAssort()
		if err := readOptionalJSON(l.path(TradersDir, e.Name(), traderAssortFile), assort); err != nil {
			return err
		}
		if assort.BarterScheme == nil {
			assort.BarterScheme = map[string][][]model.BarterScheme{}
		}
		if assort.LoyalLevelItems == nil {
			assort.LoyalLevelItems = map[string]int{}
		}
		l.t.traders[base.ID] = &Trader{Base: base, Assort: assort}
	}
	return nil
}

func (l *hostLoader) loadPresets() error {
	return readOptionalJSON(l.path(PresetsFile), &l.t.presets)
}
