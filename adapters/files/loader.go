package files

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"oracle/domain/simulation"
	"oracle/internal/errors"
)

// LoadResults reads a domain's flattened run back from the output directory
func LoadResults(dir, domain string) ([]simulation.Result, error) {
	path := filepath.Join(dir, fmt.Sprintf("%s_all_results.json", sanitize(domain)))
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ConfigInvalid(fmt.Sprintf("no persisted results for domain %q", domain), err)
	}

	var results []simulation.Result
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, errors.ConfigInvalid(fmt.Sprintf("results file %s is corrupt", path), err)
	}
	return results, nil
}

// GroupByCategory splits a flattened run back into per-category slices,
// preserving result order within each category.
func GroupByCategory(results []simulation.Result) map[string][]simulation.Result {
	grouped := make(map[string][]simulation.Result)
	for _, r := range results {
		grouped[r.Category] = append(grouped[r.Category], r)
	}
	return grouped
}
