package model_test

import (
	"testing"

	"github.com/kasuganosora/contentbackport/model"
	"github.com/kasuganosora/contentbackport/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestAutoMigrate_InsertAndQuery(t *testing.T) {
	db := testutil.SetupTestDB(t)

	ml := &model.MergeLog{
		RunID:    "run-001",
		Stage:    "create_item",
		EntityID: "5449016a4bdc2d6f028b456f",
		Outcome:  model.OutcomeApplied,
		Detail:   datatypes.JSON(`{"price":15000}`),
	}
	require.NoError(t, db.Create(ml).Error)
	assert.Greater(t, ml.ID, int64(0))

	var found model.MergeLog
	require.NoError(t, db.First(&found, ml.ID).Error)
	assert.Equal(t, "run-001", found.RunID)
	assert.Equal(t, model.OutcomeApplied, found.Outcome)
	assert.False(t, found.CreatedAt.IsZero())
}
