package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithRunID_TagsEntries(t *testing.T) {
	var buf bytes.Buffer
	InitializeWriter(&buf, "info", "json")

	ctx := WithRunID(context.Background(), "run-1")
	ctx = WithRegion(ctx, "alps", "2m_temperature")
	FromContext(ctx).Info().Msg("hello")

	out := buf.String()
	assert.Contains(t, out, `"run_id":"run-1"`)
	assert.Contains(t, out, `"region":"alps"`)
	assert.Contains(t, out, `"variable":"2m_temperature"`)
	assert.Contains(t, out, `"message":"hello"`)
}

func TestFromContext_FallsBackToGlobal(t *testing.T) {
	assert.Same(t, Get(), FromContext(context.Background()))
}

func TestInitialize_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	InitializeWriter(&buf, "warn", "json")
	defer InitializeWriter(&buf, "info", "json")

	Get().Info().Msg("dropped")
	Get().Warn().Msg("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}
