// Package loader reads weekly snapshot files from disk and watches a
// directory of them for changes.
package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/okian/workmap/internal/domain/model"
)

// Format names a snapshot file encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// WeekFile is the decoded content of one snapshot file.
type WeekFile struct {
	Week  string               `json:"week" yaml:"week" toml:"week"`
	Items []model.SnapshotItem `json:"items" yaml:"items" toml:"items"`

	Path string `json:"-" yaml:"-" toml:"-"`
}

// Batch turns the file into a submission with a fresh id.
func (f *WeekFile) Batch(source string) model.Batch {
	return model.Batch{
		SubmissionID: uuid.NewString(),
		Week:         f.Week,
		Items:        f.Items,
		Source:       source,
		ReceivedAt:   time.Now().UTC(),
	}
}

// FormatOf returns the format implied by the file extension.
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".toml":
		return FormatTOML, true
	default:
		return "", false
	}
}

// WeekFromPath derives the default week label from a file name,
// e.g. snapshots/2025-W14.yaml -> 2025-W14.
func WeekFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DecodeFile reads and validates one snapshot file. The week defaults to
// the file's base name.
func DecodeFile(path string) (WeekFile, error) {
	format, ok := FormatOf(path)
	if !ok {
		return WeekFile{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return WeekFile{}, err
	}
	wf, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return WeekFile{}, fmt.Errorf("%s: %w", path, err)
	}
	if wf.Week == "" {
		wf.Week = WeekFromPath(path)
	}
	wf.Path = path

	b := model.Batch{Week: wf.Week, Items: wf.Items}
	if err := b.Validate(); err != nil {
		return WeekFile{}, fmt.Errorf("%s: %w", path, err)
	}
	return wf, nil
}

// Decode parses r in the given format. JSON and YAML also accept a bare
// list of items, which leaves Week empty.
func Decode(r io.Reader, format Format) (WeekFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return WeekFile{}, err
	}

	var wf WeekFile
	switch format {
	case FormatJSON:
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			err = json.Unmarshal(trimmed, &wf.Items)
		} else {
			err = json.Unmarshal(trimmed, &wf)
		}
	case FormatYAML:
		var doc yaml.Node
		if err = yaml.Unmarshal(data, &doc); err == nil && len(doc.Content) > 0 {
			if doc.Content[0].Kind == yaml.SequenceNode {
				err = doc.Content[0].Decode(&wf.Items)
			} else {
				err = doc.Content[0].Decode(&wf)
			}
		}
	case FormatTOML:
		_, err = toml.NewDecoder(bytes.NewReader(data)).Decode(&wf)
	default:
		return WeekFile{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return WeekFile{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if wf.Items == nil {
		wf.Items = []model.SnapshotItem{}
	}
	return wf, nil
}
