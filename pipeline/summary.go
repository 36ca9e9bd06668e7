package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kasuganosora/contentbackport/cache"
	"github.com/kasuganosora/contentbackport/game/merge"
	"github.com/samber/lo"
)

// Summary is the persisted outline of a finished run.
type Summary struct {
	RunID      string        `json:"runId"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
	DryRun     bool          `json:"dryRun"`
	NewItems   []string      `json:"newItems"`
	Deltas     int           `json:"deltas"`
	Assort     int           `json:"assort"`
	Presets    int           `json:"presets"`
	Errors     []string      `json:"errors"`
	Report     *merge.Report `json:"report,omitempty"`
}

func NewSummary(res *Result, started time.Time, dryRun bool) *Summary {
	newItems := make([]string, 0, len(res.Details))
	for _, d := range res.Details {
		newItems = append(newItems, d.ItemID())
	}
	return &Summary{
		RunID:      res.RunID,
		StartedAt:  started,
		FinishedAt: time.Now(),
		DryRun:     dryRun,
		NewItems:   newItems,
		Deltas:     len(res.Deltas),
		Assort:     len(res.Assort),
		Presets:    len(res.Presets),
		Errors:     lo.Map(res.Errors, func(err error, _ int) string { return err.Error() }),
		Report:     res.Report,
	}
}

// LastSummary reads the latest run summary. It returns (nil, nil) when no run
// has finished yet.
func LastSummary(ctx context.Context, c cache.Cache) (*Summary, error) {
	raw, err := c.Get(ctx, LastRunKey)
	if cache.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pipeline: read last run: %w", err)
	}
	s := &Summary{}
	if err := json.Unmarshal([]byte(raw), s); err != nil {
		return nil, fmt.Errorf("pipeline: parse last run: %w", err)
	}
	return s, nil
}
