package feed

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileSource reads home sections from a local YAML or JSON fixture.
// JSON is valid YAML, so one decoder serves both.
type FileSource struct {
	filePath string
}

// NewFileSource creates a source for the file at filePath
func NewFileSource(filePath string) *FileSource {
	return &FileSource{
		filePath: filePath,
	}
}

// Name identifies the source in logs
func (s *FileSource) Name() string {
	return "file://" + s.filePath
}

// Fetch reads and parses the file on every call, so edits are picked up on
// the next reload.
func (s *FileSource) Fetch(_ context.Context) ([]HomeSection, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return nil, &APIError{Kind: KindInvalidURL, Err: fmt.Errorf("failed to read feed file: %w", err)}
	}
	if len(data) == 0 {
		return nil, &APIError{Kind: KindNoData}
	}

	var sections []HomeSection
	if err := yaml.Unmarshal(data, &sections); err != nil {
		return nil, &APIError{Kind: KindDecoding, Err: fmt.Errorf("failed to parse feed yaml: %w", err)}
	}

	return sections, nil
}
