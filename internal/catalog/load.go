package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Paths locates the reference documents. Empty paths are skipped.
type Paths struct {
	Templates    string
	Exercises    string
	Progressions string
	WarmUps      string
}

// Load reads the reference documents. It never fails: a missing or malformed
// template document yields the built-in fallback blocks with no templates, and
// the other documents are simply left empty. Problems are logged.
func Load(p Paths, log *slog.Logger) *Catalog {
	var exercises *ExerciseDocument
	if p.Exercises != "" {
		var doc ExerciseDocument
		if err := decodeFile(p.Exercises, &doc); err != nil {
			logLoadError(log, "exercises", p.Exercises, err)
		} else {
			exercises = &doc
		}
	}

	var c *Catalog
	if p.Templates == "" {
		log.Info("no template catalog configured, using built-in blocks")
		c = Builtin()
		c.exercises = exercises
	} else {
		var doc TemplateDocument
		if err := decodeFile(p.Templates, &doc); err != nil {
			logLoadError(log, "templates", p.Templates, err)
			c = Builtin()
			c.exercises = exercises
		} else {
			c = New(doc, exercises)
			log.Info("catalog loaded", "blocks", len(c.blocks), "templates", len(c.templates))
		}
	}

	if p.Progressions != "" {
		var doc ProgressionDocument
		if err := decodeFile(p.Progressions, &doc); err != nil {
			logLoadError(log, "progressions", p.Progressions, err)
		} else {
			c.progressions = &doc
		}
	}
	if p.WarmUps != "" {
		var doc any
		if err := decodeFile(p.WarmUps, &doc); err != nil {
			logLoadError(log, "warm-ups", p.WarmUps, err)
		} else {
			c.warmUps = doc
		}
	}
	return c
}

func logLoadError(log *slog.Logger, doc, path string, err error) {
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn("catalog document missing", "document", doc, "path", path)
		return
	}
	log.Error("catalog document unreadable", "document", doc, "path", path, "error", err)
}

// decodeFile decodes a JSON or YAML file, chosen by extension.
func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return Decode(data, filepath.Ext(path), v)
}

// Decode parses data as YAML for ".yaml"/".yml" and as JSON otherwise.
func Decode(data []byte, ext string, v any) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parsing yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parsing json: %w", err)
		}
	}
	return nil
}
