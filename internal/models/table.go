package models

import (
	"fmt"
	"regexp"
	"strconv"
)

// IconType selects the table icon on the map.
type IconType string

const (
	IconOne     IconType = "1"
	IconTwoHorz IconType = "2_horiz"
	IconTwoVert IconType = "2_vert"
	IconFour    IconType = "4"
	IconSix     IconType = "6"
)

// Valid reports whether t belongs to the closed icon set.
func (t IconType) Valid() bool {
	switch t {
	case IconOne, IconTwoHorz, IconTwoVert, IconFour, IconSix:
		return true
	}
	return false
}

// IconTypeByCapacity derives the icon for records that do not carry one.
func IconTypeByCapacity(capacity int) IconType {
	if capacity == 2 {
		return IconTwoHorz
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return IconType(strconv.Itoa(capacity))
}

// Table is a normalized table record. X and Y are percentages (0-100) of the map container.
type Table struct {
	ID               int64    `json:"id" yaml:"id"`
	Name             string   `json:"name" yaml:"name"`
	Type             IconType `json:"type" yaml:"type"`
	Capacity         int      `json:"capacity" yaml:"capacity"`
	X                float64 `json:"x" yaml:"x"`
	Y                float64 `json:"y" yaml:"y"`
	IsActive         bool     `json:"is_active" yaml:"is_active"`
	AreaName         string   `json:"area_name,omitempty" yaml:"area_name"`
	PhotoURL         string   `json:"photo_url,omitempty" yaml:"photo_url"`
	PhotoInactiveURL string   `json:"photo_inactive_url,omitempty" yaml:"photo_inactive_url"`
}

// RawTable is the table record as the backend sends it; every field but id is optional.
type RawTable struct {
	ID               int64   `json:"id"`
	Name             *string `json:"name"`
	Type             *string `json:"type"`
	Capacity         *int    `json:"capacity"`
	X                Number  `json:"x"`
	Y                Number  `json:"y"`
	IsActive         *bool   `json:"is_active"`
	AreaName         *string `json:"area_name"`
	PhotoURL         *string `json:"photo_url"`
	PhotoInactiveURL *string `json:"photo_inactive_url"`
}

var naSuffix = regexp.MustCompile(`(?i)_na(\.(svg|png|jpg|jpeg|webp))$`)

// NormalizeNA rewrites a lowercase "_na" asset suffix to the "_NA" form the assets use.
func NormalizeNA(path string) string {
	if path == "" {
		return path
	}
	return naSuffix.ReplaceAllString(path, "_NA$1")
}

// ScalePercent treats values <= 1 as fractions and scales them to percent.
func ScalePercent(v float64) float64 {
	if v <= 1 {
		return v * 100
	}
	return v
}

// NormalizeTable fills defaults and converts a backend record into a Table.
func NormalizeTable(raw RawTable) Table {
	capacity := DefaultCapacity
	if raw.Capacity != nil && *raw.Capacity > 0 {
		capacity = *raw.Capacity
	}

	t := Table{
		ID:       raw.ID,
		Name:     deref(raw.Name),
		Type:     IconType(deref(raw.Type)),
		Capacity: capacity,
		X:        ScalePercent(float64(raw.X)),
		Y:        ScalePercent(float64(raw.Y)),
		AreaName: deref(raw.AreaName),
		PhotoURL: deref(raw.PhotoURL),
	}
	if t.Name == "" {
		t.Name = fmt.Sprintf("T-%d", raw.ID)
	}
	if t.Type == "" {
		t.Type = IconTypeByCapacity(capacity)
	}
	if raw.IsActive != nil {
		t.IsActive = *raw.IsActive
	}
	t.PhotoInactiveURL = NormalizeNA(deref(raw.PhotoInactiveURL))
	return t
}

// ValidateTables rejects datasets with zero or duplicate ids.
func ValidateTables(tables []Table) error {
	seen := make(map[int64]bool, len(tables))
	for _, t := range tables {
		if t.ID == 0 {
			return fmt.Errorf("table %q has invalid ID 0", t.Name)
		}
		if seen[t.ID] {
			return fmt.Errorf("duplicate table ID found: %d", t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
