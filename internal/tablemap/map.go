// Package tablemap keeps the clickable table layout and its single selection.
//
// A Map is owned by one event loop and is not safe for concurrent use. Every
// update recomputes node state from the table data instead of patching it.
package tablemap

import (
	"errors"
	"fmt"

	"hikari/internal/models"
)

var (
	ErrUnknownTable  = errors.New("unknown table")
	ErrTableDisabled = errors.New("table is not available for this search")
)

// Node is the rendered state of one table.
type Node struct {
	Table   models.Table
	Left    float64 // percent
	Top     float64 // percent
	Width   float64 // icon width, percent
	Icon    string
	Title   string
	Enabled bool
	// Selected mirrors the map selection for convenience when rendering.
	Selected bool
}

// Map is the table layout with at most one selected table.
type Map struct {
	nodes    []*Node
	byID     map[int64]*Node
	selected int64
}

func New() *Map {
	return &Map{byID: make(map[int64]*Node)}
}

// Render replaces the layout. Prior nodes and the selection are discarded.
// Duplicate ids are rejected and leave the previous layout in place.
func (m *Map) Render(tables []models.Table) error {
	if err := models.ValidateTables(tables); err != nil {
		return fmt.Errorf("render tables: %w", err)
	}

	nodes := make([]*Node, 0, len(tables))
	byID := make(map[int64]*Node, len(tables))
	for _, t := range tables {
		n := &Node{
			Table:   t,
			Left:    t.X,
			Top:     t.Y,
			Width:   iconWidth(t.Type),
			Icon:    initialIcon(t),
			Title:   fmt.Sprintf("%s • %d", t.Name, t.Capacity),
			Enabled: true,
		}
		nodes = append(nodes, n)
		byID[t.ID] = n
	}

	m.nodes = nodes
	m.byID = byID
	m.selected = 0
	return nil
}

// Nodes returns the nodes in render order.
func (m *Map) Nodes() []Node {
	out := make([]Node, 0, len(m.nodes))
	for _, n := range m.nodes {
		cp := *n
		cp.Selected = n.Table.ID == m.selected
		out = append(out, cp)
	}
	return out
}

// Node returns the node for id.
func (m *Map) Node(id int64) (Node, bool) {
	n, ok := m.byID[id]
	if !ok {
		return Node{}, false
	}
	cp := *n
	cp.Selected = id == m.selected
	return cp, true
}

// Len returns the number of rendered tables.
func (m *Map) Len() int {
	return len(m.nodes)
}

// Selected returns the selected table id.
func (m *Map) Selected() (int64, bool) {
	return m.selected, m.selected != 0
}

// ClearSelection drops the selection.
func (m *Map) ClearSelection() {
	m.selected = 0
}

// Toggle handles a click on a table's hit-region. Selecting a table replaces any
// previous selection; clicking the selected table again deselects it.
// It reports whether id is selected afterwards.
func (m *Map) Toggle(id int64) (bool, error) {
	n, ok := m.byID[id]
	if !ok {
		return false, ErrUnknownTable
	}
	if !n.Enabled {
		return false, ErrTableDisabled
	}
	if m.selected == id {
		m.selected = 0
		return false, nil
	}
	m.selected = id
	return true, nil
}

// Usability is the outcome of applying one availability response.
type Usability struct {
	Enabled       int
	Disabled      int
	SelectionLost bool
}

// ApplyAvailability enables each table that seats the party and is not reported
// unavailable. Tables missing from avail count as available.
func (m *Map) ApplyAvailability(guests int, avail models.AvailabilityResult) Usability {
	var u Usability
	for _, n := range m.nodes {
		canUse := CanUse(n.Table, guests, avail)
		if canUse {
			n.Icon = NormalIcon(n.Table)
			u.Enabled++
		} else {
			n.Icon = UnavailableIcon(n.Table)
			u.Disabled++
		}
		n.Enabled = canUse

		if !canUse && m.selected == n.Table.ID {
			m.selected = 0
			u.SelectionLost = true
		}
	}
	return u
}

// CanUse reports whether the table fits the party and is available.
func CanUse(t models.Table, guests int, avail models.AvailabilityResult) bool {
	return t.Capacity >= guests && avail.Available(t.ID)
}
