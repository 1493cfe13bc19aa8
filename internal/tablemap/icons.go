package tablemap

import "hikari/internal/models"

const iconDir = "/static/booking/img/tables/"

var icons = map[models.IconType]string{
	models.IconOne:     iconDir + "table_type_1.svg",
	models.IconTwoHorz: iconDir + "table_type_2_horiz.svg",
	models.IconTwoVert: iconDir + "table_type_2_vert.svg",
	models.IconFour:    iconDir + "table_type_4.svg",
	models.IconSix:     iconDir + "table_type_6.svg",
}

var iconsNA = map[models.IconType]string{
	models.IconOne:     iconDir + "table_type_1_NA.svg",
	models.IconTwoHorz: iconDir + "table_type_2_horiz_NA.svg",
	models.IconTwoVert: iconDir + "table_type_2_vert_NA.svg",
	models.IconFour:    iconDir + "table_type_4_NA.svg",
	models.IconSix:     iconDir + "table_type_6_NA.svg",
}

// icon widths as a percentage of the map width
var sizes = map[models.IconType]float64{
	models.IconOne:     60,
	models.IconTwoHorz: 60,
	models.IconTwoVert: 60,
	models.IconFour:    60,
	models.IconSix:     60,
}

const defaultSize = 6

// Hit-region geometry relative to the rendered icon.
const (
	HitScaleX  = 0.92
	HitScaleY  = 0.92
	HitOffsetX = -0.32
	HitOffsetY = 0.0
)

// NormalIcon is the asset for a usable table: custom photo, then type icon, then the four-seat icon.
func NormalIcon(t models.Table) string {
	if t.PhotoURL != "" {
		return t.PhotoURL
	}
	if src, ok := icons[t.Type]; ok {
		return src
	}
	return icons[models.IconFour]
}

// UnavailableIcon is the asset for a table that cannot be used. When neither a custom
// inactive photo nor a type icon exists it falls back to NormalIcon.
func UnavailableIcon(t models.Table) string {
	if src := models.NormalizeNA(t.PhotoInactiveURL); src != "" {
		return src
	}
	if src, ok := iconsNA[t.Type]; ok {
		return src
	}
	return NormalIcon(t)
}

// initialIcon picks the first-render asset from is_active. Unknown types render
// the four-seat icon in both states.
func initialIcon(t models.Table) string {
	if t.IsActive {
		return NormalIcon(t)
	}
	if src := models.NormalizeNA(t.PhotoInactiveURL); src != "" {
		return src
	}
	if src, ok := iconsNA[t.Type]; ok {
		return src
	}
	return icons[models.IconFour]
}

func iconWidth(t models.IconType) float64 {
	if w, ok := sizes[t]; ok {
		return w
	}
	return defaultSize
}

// HitBox returns the hit-region size and offset in pixels for an icon of the given size.
func HitBox(iconW, iconH float64) (w, h, dx, dy float64) {
	return iconW * HitScaleX, iconH * HitScaleY, iconW * HitOffsetX, iconH * HitOffsetY
}
