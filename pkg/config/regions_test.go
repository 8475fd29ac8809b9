package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRegions_JSON(t *testing.T) {
	path := writeFile(t, "regions.json", `{
		"pyrenees": {"variables": ["total_precipitation"], "area": [43.5, -2, 42, 3.5], "path": "/data/era5", "start": "2019-06"},
		"alps": {"variables": ["2m_temperature", "10m_u_component_of_wind"], "area": [48, 5, 45, 11], "path": "/data/era5", "start": 2020}
	}`)

	regions, err := LoadRegions(path)
	require.NoError(t, err)
	require.Len(t, regions, 2)

	alps := regions[0]
	assert.Equal(t, "alps", alps.Name)
	assert.Equal(t, []string{"2m_temperature", "10m_u_component_of_wind"}, alps.Variables)
	assert.Equal(t, [4]float64{48, 5, 45, 11}, alps.Area)
	assert.Equal(t, "/data/era5", alps.Path)
	assert.Equal(t, time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC), alps.Start)

	assert.Equal(t, "pyrenees", regions[1].Name)
	assert.Equal(t, time.Date(2019, time.June, 1, 0, 0, 0, 0, time.UTC), regions[1].Start)
}

func TestLoadRegions_YAML(t *testing.T) {
	path := writeFile(t, "regions.yaml", `
alps:
  variables: [2m_temperature]
  area: [48, 5, 45, 11]
  path: /data/era5
  start: 2020-03-15
`)

	regions, err := LoadRegions(path)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.Equal(t, time.Date(2020, time.March, 15, 0, 0, 0, 0, time.UTC), regions[0].Start)
	assert.Equal(t, []string{"2m_temperature"}, regions[0].Variables)
}

func TestLoadRegions_MissingFields(t *testing.T) {
	path := writeFile(t, "regions.json", `{"alps": {"variables": ["2m_temperature"]}}`)

	_, err := LoadRegions(path)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Problems, "alps: area is required")
	assert.Contains(t, vErr.Problems, "alps: path is required")
	assert.Contains(t, vErr.Problems, "alps: start is required")
	assert.Len(t, vErr.Problems, 3)
}

func TestLoadRegions_BadArea(t *testing.T) {
	path := writeFile(t, "regions.json", `{
		"short": {"variables": ["v"], "area": [1, 2, 3], "path": "/p", "start": 2020},
		"flipped": {"variables": ["v"], "area": [40, 0, 45, 5], "path": "/p", "start": 2020}
	}`)

	_, err := LoadRegions(path)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Len(t, vErr.Problems, 2)
	assert.Contains(t, err.Error(), "short: area must be [north, west, south, east], got 3 values")
	assert.Contains(t, err.Error(), "flipped: area north 40.00 is below south 45.00")
}

func TestLoadRegions_EmptyVariables(t *testing.T) {
	path := writeFile(t, "regions.json", `{"alps": {"variables": [], "area": [48, 5, 45, 11], "path": "/p", "start": 2020}}`)

	_, err := LoadRegions(path)
	assert.ErrorContains(t, err, "alps: variables is required")
}

func TestLoadRegions_NoRegions(t *testing.T) {
	path := writeFile(t, "regions.json", `{}`)

	_, err := LoadRegions(path)
	assert.ErrorContains(t, err, "no regions defined")
}

func TestLoadRegions_BadStart(t *testing.T) {
	path := writeFile(t, "regions.json", `{"alps": {"variables": ["v"], "area": [48, 5, 45, 11], "path": "/p", "start": "last year"}}`)

	_, err := LoadRegions(path)
	assert.ErrorContains(t, err, "invalid start")
}

func TestLoadRegions_UnknownExtension(t *testing.T) {
	path := writeFile(t, "regions.toml", `alps = {}`)

	_, err := LoadRegions(path)
	assert.ErrorContains(t, err, "unsupported config format")
}

func TestParseStart(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2020", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"1979-02", time.Date(1979, 2, 1, 0, 0, 0, 0, time.UTC)},
		{"2001-09-30", time.Date(2001, 9, 30, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseStart(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := parseStart("0")
	assert.Error(t, err)
}

func TestLoadRegions_ExampleFilesAgree(t *testing.T) {
	fromJSON, err := LoadRegions(filepath.Join("..", "..", "examples", "regions.json"))
	require.NoError(t, err)
	fromYAML, err := LoadRegions(filepath.Join("..", "..", "examples", "regions.yaml"))
	require.NoError(t, err)

	require.Len(t, fromJSON, 2)
	assert.Equal(t, fromJSON, fromYAML)
	assert.Equal(t, "alps", fromJSON[0].Name)
	assert.Equal(t, time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC), fromJSON[1].Start)
}
