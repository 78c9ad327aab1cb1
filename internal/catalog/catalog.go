// Package catalog loads the tracked game list from a YAML file. Rows are
// independent: a malformed row is skipped and reported without failing the
// rest of the load.
package catalog

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/gametrack/gametrack/internal/models"
)

type entityRow struct {
	DisplayName        string `yaml:"display_name"`
	MatchToken         string `yaml:"match_token"`
	AllowInBrowserHost bool   `yaml:"allow_in_browser_host"`
	AllowSharedSession bool   `yaml:"allow_shared_session"`
}

type catalogFile struct {
	Entities []entityRow `yaml:"entities"`
}

// Load reads the catalog file and returns the valid entities plus one error
// per skipped row. The returned error is non-nil only when the file itself
// cannot be read or parsed.
func Load(path string) ([]*models.TrackedEntity, []error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to read catalog file")
	}
	return Parse(data)
}

// Parse decodes catalog YAML. See Load for the error contract.
func Parse(data []byte) ([]*models.TrackedEntity, []error, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, errors.Wrap(err, "failed to parse catalog file")
	}

	var entities []*models.TrackedEntity
	var rowErrs []error
	seen := make(map[string]bool)

	for i, row := range file.Entities {
		if row.DisplayName == "" {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: missing display_name", i+1))
			continue
		}
		if row.MatchToken == "" {
			rowErrs = append(rowErrs, fmt.Errorf("row %d (%s): missing match_token", i+1, row.DisplayName))
			continue
		}
		if seen[row.DisplayName] {
			rowErrs = append(rowErrs, fmt.Errorf("row %d: duplicate display_name %q", i+1, row.DisplayName))
			continue
		}
		seen[row.DisplayName] = true

		entities = append(entities, &models.TrackedEntity{
			DisplayName:        row.DisplayName,
			MatchToken:         row.MatchToken,
			AllowInBrowserHost: row.AllowInBrowserHost,
			AllowSharedSession: row.AllowSharedSession,
		})
	}

	return entities, rowErrs, nil
}
