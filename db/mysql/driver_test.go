package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDSN(t *testing.T) {
	dsn, err := NormalizeDSN("user:pass@tcp(127.0.0.1:3306)/backport")
	require.NoError(t, err)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestNormalizeDSN_KeepsCharset(t *testing.T) {
	dsn, err := NormalizeDSN("user:pass@tcp(127.0.0.1:3306)/backport?charset=latin1")
	require.NoError(t, err)
	assert.Contains(t, dsn, "charset=latin1")
	assert.NotContains(t, dsn, "utf8mb4")
}

func TestNormalizeDSN_Invalid(t *testing.T) {
	_, err := NormalizeDSN("")
	assert.Error(t, err)
	_, err = NormalizeDSN("no-slash-here")
	assert.Error(t, err)
}
