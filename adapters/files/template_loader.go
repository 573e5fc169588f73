// Package files provides flat-file persistence: template loading from JSON
// and result/summary output. All paths are plain OS paths; there is no
// database behind any of this.
package files

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"oracle/domain/template"
	"oracle/internal/errors"
)

// LoadTemplate reads <dir>/<domain>.json and validates it. A missing or
// malformed file, or one that fails validation, returns CONFIG_INVALID.
func LoadTemplate(dir, domain string) (*template.Template, error) {
	if domain == "" {
		return nil, errors.InvalidInput("domain is required")
	}
	return LoadTemplateFile(filepath.Join(dir, domain+".json"))
}

// LoadTemplateFile reads and validates a single template file
func LoadTemplateFile(path string) (*template.Template, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ConfigInvalid(fmt.Sprintf("template file %s not readable", path), err)
	}

	var tpl template.Template
	if err := json.Unmarshal(raw, &tpl); err != nil {
		return nil, errors.ConfigInvalid(fmt.Sprintf("template file %s is not valid JSON", path), err)
	}

	if err := tpl.Validate(); err != nil {
		return nil, errors.ConfigInvalid(fmt.Sprintf("template file %s failed validation", path), err)
	}

	log.Printf("[TemplateLoader] Loaded template %q (%d categories)", tpl.Name, len(tpl.Categories))
	return &tpl, nil
}
