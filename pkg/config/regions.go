package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Region is one named bounding box whose variables are synchronized into
// {Path}/{Name}
type Region struct {
	Name      string
	Variables []string
	// north, west, south, east
	Area  [4]float64
	Path  string
	Start time.Time
}

// StartDate is the earliest date of interest. It accepts a year number or
// a "YYYY", "YYYY-MM" or "YYYY-MM-DD" string.
type StartDate struct {
	time.Time
}

func (s *StartDate) UnmarshalJSON(data []byte) error {
	text := strings.Trim(strings.TrimSpace(string(data)), `"`)
	t, err := parseStart(text)
	if err != nil {
		return err
	}
	s.Time = t
	return nil
}

func (s *StartDate) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: start must be a year or date", value.Line)
	}
	t, err := parseStart(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	s.Time = t
	return nil
}

func parseStart(text string) (time.Time, error) {
	if year, err := strconv.Atoi(text); err == nil {
		if year < 1 || year > 9999 {
			return time.Time{}, fmt.Errorf("invalid start year %d", year)
		}
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), nil
	}
	for _, layout := range []string{"2006-01-02", "2006-01"} {
		if t, err := time.Parse(layout, text); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid start %q (want YYYY, YYYY-MM or YYYY-MM-DD)", text)
}

// regionEntry is one region as written in the file. Pointers tell a
// missing field from an empty one.
type regionEntry struct {
	Variables *[]string  `json:"variables" yaml:"variables"`
	Area      *[]float64 `json:"area" yaml:"area"`
	Path      *string    `json:"path" yaml:"path"`
	Start     *StartDate `json:"start" yaml:"start"`
}

// ValidationError lists every problem found in a region file
type ValidationError struct {
	File     string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid region config %s: %s", e.File, strings.Join(e.Problems, "; "))
}

// LoadRegions reads a region file. The format follows the extension: .json
// or .yaml/.yml. Regions are returned sorted by name.
func LoadRegions(path string) ([]Region, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	entries := make(map[string]regionEntry)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &entries)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &entries)
	default:
		return nil, fmt.Errorf("unsupported config format %q (want .json, .yaml or .yml)", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return buildRegions(path, entries)
}

func buildRegions(file string, entries map[string]regionEntry) ([]Region, error) {
	vErr := &ValidationError{File: file}
	if len(entries) == 0 {
		vErr.Problems = append(vErr.Problems, "no regions defined")
		return nil, vErr
	}

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	regions := make([]Region, 0, len(names))
	for _, name := range names {
		region, problems := buildRegion(name, entries[name])
		vErr.Problems = append(vErr.Problems, problems...)
		regions = append(regions, region)
	}

	if len(vErr.Problems) > 0 {
		return nil, vErr
	}
	return regions, nil
}

func buildRegion(name string, e regionEntry) (Region, []string) {
	region := Region{Name: name}
	var problems []string
	fail := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf("%s: ", name)+fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, `/\`) {
		fail("region name must be a single path element")
	}

	if e.Variables == nil || len(*e.Variables) == 0 {
		fail("variables is required")
	} else {
		for _, v := range *e.Variables {
			if strings.TrimSpace(v) == "" {
				fail("variables contains an empty name")
			}
		}
		region.Variables = *e.Variables
	}

	if e.Area == nil {
		fail("area is required")
	} else if len(*e.Area) != 4 {
		fail("area must be [north, west, south, east], got %d values", len(*e.Area))
	} else {
		copy(region.Area[:], *e.Area)
		north, south := region.Area[0], region.Area[2]
		if north < south {
			fail("area north %.2f is below south %.2f", north, south)
		}
		if north > 90 || south < -90 {
			fail("area latitude outside [-90, 90]")
		}
	}

	if e.Path == nil || strings.TrimSpace(*e.Path) == "" {
		fail("path is required")
	} else {
		region.Path = *e.Path
	}

	if e.Start == nil {
		fail("start is required")
	} else {
		region.Start = e.Start.Time
	}

	return region, problems
}
