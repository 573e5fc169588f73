package files

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"oracle/domain/simulation"
	"oracle/internal/errors"
)

// ResultWriter persists run output under a single directory:
//
//	<domain>_<category>_results.json   one file per category, written as the
//	                                   category finishes
//	<domain>_all_results.json          the full flattened run
//	<domain>_summary.md                the rendered summary report
type ResultWriter struct {
	dir string
}

// NewResultWriter creates the output directory if needed
func NewResultWriter(dir string) (*ResultWriter, error) {
	if dir == "" {
		return nil, errors.InvalidInput("output directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.ConfigInvalid(fmt.Sprintf("cannot create output directory %s", dir), err)
	}
	return &ResultWriter{dir: dir}, nil
}

// Dir returns the output directory
func (w *ResultWriter) Dir() string { return w.dir }

// WriteCategory implements ports.ResultSink
func (w *ResultWriter) WriteCategory(domain, category string, results []simulation.Result) error {
	name := fmt.Sprintf("%s_%s_results.json", sanitize(domain), sanitize(category))
	if err := w.writeJSON(name, results); err != nil {
		return err
	}
	log.Printf("[ResultWriter] Wrote %d results to %s", len(results), name)
	return nil
}

// WriteAll persists the flattened run in category order
func (w *ResultWriter) WriteAll(domain string, results []simulation.Result) error {
	name := fmt.Sprintf("%s_all_results.json", sanitize(domain))
	if err := w.writeJSON(name, results); err != nil {
		return err
	}
	log.Printf("[ResultWriter] Wrote %d results to %s", len(results), name)
	return nil
}

// WriteSummaryMarkdown writes the rendered summary report
func (w *ResultWriter) WriteSummaryMarkdown(domain string, markdown []byte) error {
	name := fmt.Sprintf("%s_summary.md", sanitize(domain))
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, markdown, 0o644); err != nil {
		return errors.Wrap(err, "write summary markdown")
	}
	log.Printf("[ResultWriter] Wrote summary to %s", name)
	return nil
}

// WriteFile writes an arbitrary artifact (HTML report, workbook) into the
// output directory.
func (w *ResultWriter) WriteFile(name string, data []byte) error {
	path := filepath.Join(w.dir, sanitize(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "write artifact "+name)
	}
	return nil
}

func (w *ResultWriter) writeJSON(name string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal "+name)
	}
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return errors.Wrap(err, "write "+name)
	}
	return nil
}

// sanitize keeps file names shell-friendly: spaces and path separators become
// underscores.
func sanitize(s string) string {
	s = strings.TrimSpace(s)
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_")
	return replacer.Replace(s)
}
