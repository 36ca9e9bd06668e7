// Package generator writes the products of a backport run as JSON files so a
// later load can consume them without recomputing.
package generator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kasuganosora/contentbackport/model"
	"github.com/kasuganosora/contentbackport/pipeline"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Output file names, relative to the output directory.
const (
	ItemDetailsFile  = "newItemDetails.json"
	ItemsConfigFile  = "itemsConfig.json"
	TraderAssortFile = "traderAssortItems.json"
	AssetPathsFile   = "assets_paths.json"
)

// Generator writes pipeline results into one directory.
type Generator struct {
	dir    string
	logger *zap.Logger
}

func New(dir string, logger *zap.Logger) *Generator {
	return &Generator{dir: dir, logger: logger}
}

// Write saves every output of res. Existing files are replaced.
func (g *Generator) Write(res *pipeline.Result) error {
	if err := os.MkdirAll(g.dir, 0755); err != nil {
		return fmt.Errorf("generator: mkdir %s: %w", g.dir, err)
	}
	outputs := []struct {
		name string
		v    interface{}
	}{
		{ItemDetailsFile, nonNil(res.Details)},
		{ItemsConfigFile, nonNil(res.Deltas)},
		{TraderAssortFile, nonNil(res.Assort)},
		{AssetPathsFile, AssetPaths(res.Details)},
	}
	for _, o := range outputs {
		if err := g.writeJSON(o.name, o.v); err != nil {
			return err
		}
	}
	g.logger.Info("outputs written",
		zap.String("dir", g.dir),
		zap.Int("details", len(res.Details)),
		zap.Int("deltas", len(res.Deltas)),
		zap.Int("assort", len(res.Assort)))
	return nil
}

// AssetPaths returns the prefab path of every new item that declares one.
func AssetPaths(details []*model.ItemDetail) []string {
	return lo.Uniq(lo.FilterMap(details, func(d *model.ItemDetail, _ int) (string, bool) {
		if d.NewItem == nil {
			return "", false
		}
		p := d.NewItem.PrefabPath()
		return p, p != ""
	}))
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// writeJSON replaces name through a temp file so a reader never sees half a
// document.
func (g *Generator) writeJSON(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("generator: encode %s: %w", name, err)
	}
	path := filepath.Join(g.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("generator: write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("generator: rename %s: %w", name, err)
	}
	return nil
}
