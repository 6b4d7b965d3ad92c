package report

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"github.com/panbanda/phprune/pkg/models"
)

// WriteUnreachable writes the paths of units, newline-separated, to path.
func WriteUnreachable(fs afero.Fs, path string, units []*models.Unit) error {
	paths := make([]string, len(units))
	for i, u := range units {
		paths[i] = u.Path
	}
	if err := afero.WriteFile(fs, path, []byte(strings.Join(paths, "\n")), 0o644); err != nil {
		return fmt.Errorf("writing unreachable list: %w", err)
	}
	return nil
}
