// Package rules loads the extension-to-category mapping that drives
// the organizer. The mapping is read once before a run and shared
// read-only afterwards.
package rules

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultCategory     = "Others"
	defaultWorkers      = 4
	defaultDrainSeconds = 60
)

// Rules is the immutable configuration for one run.
type Rules struct {
	Default      string
	Workers      int
	DrainTimeout time.Duration

	byExt map[string]string
}

type fileSchema struct {
	DefaultCategory     string              `yaml:"default_category"`
	Workers             int                 `yaml:"workers"`
	DrainTimeoutSeconds int                 `yaml:"drain_timeout_seconds"`
	Categories          map[string][]string `yaml:"categories"`
}

const defaultFileTemplate = `# tidy category rules.
#
# Files are moved into the category folder matching their extension;
# anything unmatched goes to default_category.

default_category: Others
workers: 4
drain_timeout_seconds: 60

categories:
  Documents: [pdf, doc, docx, txt, odt, rtf]
  Images: [jpg, jpeg, png, gif, bmp, svg, webp]
  Videos: [mp4, avi, mkv, mov, wmv, flv]
  Audio: [mp3, wav, flac, aac, ogg]
  Archives: [zip, rar, 7z, tar, gz]
  Code: [go, java, py, js, html, css, cpp, c]
  Spreadsheets: [xls, xlsx, csv]
  Presentations: [ppt, pptx]
`

// stockCategories mirrors the starter file, for configs that parse but
// map nothing.
var stockCategories = map[string][]string{
	"Documents":     {"pdf", "doc", "docx", "txt", "odt", "rtf"},
	"Images":        {"jpg", "jpeg", "png", "gif", "bmp", "svg", "webp"},
	"Videos":        {"mp4", "avi", "mkv", "mov", "wmv", "flv"},
	"Audio":         {"mp3", "wav", "flac", "aac", "ogg"},
	"Archives":      {"zip", "rar", "7z", "tar", "gz"},
	"Code":          {"go", "java", "py", "js", "html", "css", "cpp", "c"},
	"Spreadsheets":  {"xls", "xlsx", "csv"},
	"Presentations": {"ppt", "pptx"},
}

// Load reads the rules file at path. When the file does not exist a
// commented starter file is written there first, so users always have
// something to edit.
func Load(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if writeErr := os.WriteFile(path, []byte(defaultFileTemplate), 0o644); writeErr != nil {
			return nil, fmt.Errorf("create default rules file %s: %w", path, writeErr)
		}
		data = []byte(defaultFileTemplate)
	} else if err != nil {
		return nil, fmt.Errorf("read rules file %s: %w", path, err)
	}

	var schema fileSchema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	return fromSchema(schema), nil
}

// Default returns the stock rules without touching the filesystem.
func Default() *Rules {
	return fromSchema(fileSchema{})
}

func fromSchema(schema fileSchema) *Rules {
	r := &Rules{
		Default:      schema.DefaultCategory,
		Workers:      schema.Workers,
		DrainTimeout: time.Duration(schema.DrainTimeoutSeconds) * time.Second,
		byExt:        make(map[string]string),
	}
	if r.Default == "" {
		r.Default = defaultCategory
	}
	if r.Workers <= 0 {
		r.Workers = defaultWorkers
	}
	if r.DrainTimeout <= 0 {
		r.DrainTimeout = defaultDrainSeconds * time.Second
	}

	fill(r.byExt, schema.Categories)
	if len(r.byExt) == 0 {
		fill(r.byExt, stockCategories)
	}
	return r
}

func fill(byExt map[string]string, categories map[string][]string) {
	for category, exts := range categories {
		if category == "" {
			continue
		}
		for _, ext := range exts {
			ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
			if ext == "" {
				continue
			}
			byExt[ext] = category
		}
	}
}

// Lookup returns the category configured for ext, case-insensitively.
func (r *Rules) Lookup(ext string) (string, bool) {
	category, ok := r.byExt[strings.ToLower(ext)]
	return category, ok
}

// Category returns the configured category for ext, or the default
// category when ext is unknown or empty.
func (r *Rules) Category(ext string) string {
	if category, ok := r.Lookup(ext); ok {
		return category
	}
	return r.Default
}

// Count reports the number of configured extension mappings.
func (r *Rules) Count() int {
	return len(r.byExt)
}
