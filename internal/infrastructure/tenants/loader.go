// Package tenants loads tenant branding from YAML, bundled or from disk.
package tenants

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fintree/backoffice/internal/core/domain"
)

//go:embed tenants.yaml
var bundled []byte

// Load reads tenants from path, or the bundled list when path is empty.
func Load(path string) ([]domain.Tenant, error) {
	data := bundled
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read tenants file: %w", err)
		}
		data = b
	}
	return Parse(data)
}

// Parse decodes a YAML list of tenants, skipping entries without an id.
func Parse(data []byte) ([]domain.Tenant, error) {
	var raw []domain.Tenant
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode tenants: %w", err)
	}

	out := make([]domain.Tenant, 0, len(raw))
	for _, t := range raw {
		if t.ID == "" {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}
