package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/mrinfinityjs/pyrewall/internal/domain"
)

// FileReporter writes the run summary to a file. The format follows the
// extension: .yaml/.yml for YAML, anything else for indented JSON.
type FileReporter struct {
	path string
}

func NewFileReporter(path string) *FileReporter {
	return &FileReporter{path: path}
}

func (r *FileReporter) Format() string {
	switch strings.ToLower(filepath.Ext(r.path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// Report creates or truncates the file with 0600 permissions.
func (r *FileReporter) Report(summary domain.ScanSummary) error {
	file, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("opening report %s: %w", r.path, err)
	}
	defer file.Close()

	w := bufio.NewWriterSize(file, 64*1024)
	if r.Format() == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(summary); err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
	} else {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing report %s: %w", r.path, err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("syncing report %s: %w", r.path, err)
	}

	log.Info().Str("path", r.path).Str("format", r.Format()).Msg("Report written")
	return nil
}
