package infra

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_ProductionEmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("production", &buf)
	logger.Info().Str("code", "SAL-2026-000042").Msg("transaction completed")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line), "production logs must be JSON: %s", buf.String())
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "SAL-2026-000042", line["code"])
}

func TestNewLogger_DevelopmentIsHumanReadable(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("development", &buf)
	logger.Info().Msg("transaction completed")

	var line map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &line)
	assert.Error(t, err, "console output is not a JSON document")
	assert.Contains(t, buf.String(), "transaction completed")
}
