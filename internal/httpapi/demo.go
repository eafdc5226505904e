package httpapi

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// DemoService serves a canned response for the promotional demo file,
// bypassing the analysis pipeline entirely.
type DemoService struct {
	enabled  bool
	filename string
	path     string
	delay    time.Duration
}

// NewDemoService configures demo mode. When disabled, Matches always
// reports false.
func NewDemoService(enabled bool, filename, path string, delay time.Duration) *DemoService {
	return &DemoService{
		enabled:  enabled,
		filename: filename,
		path:     path,
		delay:    delay,
	}
}

// Matches reports whether the uploaded filename triggers demo mode.
// The comparison is case sensitive.
func (d *DemoService) Matches(filename string) bool {
	if !d.enabled || filename == "" {
		return false
	}
	return filename == d.filename
}

// Response loads the canned response after an artificial delay that
// imitates a real analysis pass.
func (d *DemoService) Response() (json.RawMessage, error) {
	time.Sleep(d.delay)

	data, err := os.ReadFile(d.path)
	if err != nil {
		return nil, fmt.Errorf("load demo response: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("demo response %s is not valid JSON", d.path)
	}
	return data, nil
}
