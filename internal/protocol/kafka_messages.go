package protocol

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// EventType identifies an archive event
type EventType string

const (
	EventArchiveUpdated EventType = "ARCHIVE_UPDATED"
)

// ArchiveUpdated is published after a month file lands in the archive
type ArchiveUpdated struct {
	Type      EventType  `json:"type"`
	RunID     string     `json:"run_id"`
	Region    string     `json:"region"`
	Variable  string     `json:"variable"`
	Year      int        `json:"year"`
	Month     int        `json:"month"`
	Area      [4]float64 `json:"area"`
	Path      string     `json:"path"`
	FetchedAt time.Time  `json:"fetched_at"`
}

// Key partitions events by series so one region and variable stay ordered
func (e *ArchiveUpdated) Key() string {
	return e.Region + "/" + e.Variable
}

// EncodeArchiveUpdated encodes an ArchiveUpdated event to JSON
func EncodeArchiveUpdated(event *ArchiveUpdated) ([]byte, error) {
	return json.Marshal(event)
}

// DecodeArchiveUpdated decodes JSON to an ArchiveUpdated event
func DecodeArchiveUpdated(data []byte) (*ArchiveUpdated, error) {
	var event ArchiveUpdated
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	if event.Type != EventArchiveUpdated {
		return nil, fmt.Errorf("unexpected event type %q", event.Type)
	}
	return &event, nil
}
