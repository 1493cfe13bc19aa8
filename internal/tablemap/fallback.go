package tablemap

import (
	_ "embed"
	"fmt"
	"os"

	"hikari/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed fallback_tables.yaml
var bundledTables []byte

// LoadFallback parses the bundled layout.
func LoadFallback() ([]models.Table, error) {
	return parseLayout(bundledTables)
}

// LoadLayoutFile reads a layout from disk in the bundled format.
func LoadLayoutFile(path string) ([]models.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	return parseLayout(data)
}

func parseLayout(data []byte) ([]models.Table, error) {
	var layout struct {
		Tables []models.Table `yaml:"tables"`
	}
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	if len(layout.Tables) == 0 {
		return nil, fmt.Errorf("layout has no tables")
	}

	for i := range layout.Tables {
		t := &layout.Tables[i]
		if t.Capacity <= 0 {
			t.Capacity = models.DefaultCapacity
		}
		if t.Type == "" {
			t.Type = models.IconTypeByCapacity(t.Capacity)
		}
		if t.Name == "" {
			t.Name = fmt.Sprintf("T-%d", t.ID)
		}
		t.X = models.ScalePercent(t.X)
		t.Y = models.ScalePercent(t.Y)
		t.PhotoInactiveURL = models.NormalizeNA(t.PhotoInactiveURL)
	}

	if err := models.ValidateTables(layout.Tables); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}
	return layout.Tables, nil
}
