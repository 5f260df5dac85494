package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Standard overlay IDs.
const (
	OverlayTrails          OverlayID = "trails"
	OverlayLayerLabels     OverlayID = "layer_labels"
	OverlayHistograms      OverlayID = "histograms"
	OverlayWeightColors    OverlayID = "weight_colors"
	OverlayDirectionColors OverlayID = "direction_colors"
	OverlayBatchPaths      OverlayID = "batch_paths"
	OverlayPerf            OverlayID = "perf"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID          OverlayID   // Unique identifier
	Name        string      // Display name
	Description string      // What this overlay shows
	Key         int32       // Keyboard key to toggle (0 = no key)
	KeyLabel    string      // Key label for display (e.g., "T", "H")
	Category    string      // Grouping (e.g., "visual", "panels")
	Exclusive   []OverlayID // Other overlays to disable when this is enabled
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
	order       []OverlayID // Maintains insertion order for display
}

// NewOverlayRegistry creates a registry with default overlays.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds standard overlays.
func (r *OverlayRegistry) registerDefaults() {
	// Visual overlays
	r.Register(OverlayDescriptor{
		ID:          OverlayTrails,
		Name:        "Photon Trails",
		Description: "Trace recent photon positions",
		Key:         rl.KeyT,
		KeyLabel:    "T",
		Category:    "visual",
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayLayerLabels,
		Name:        "Layer Labels",
		Description: "Show layer properties and depth ticks",
		Key:         rl.KeyL,
		KeyLabel:    "L",
		Category:    "visual",
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayWeightColors,
		Name:        "Weight Colors",
		Description: "Dim photons as their weight decays",
		Key:         rl.KeyW,
		KeyLabel:    "W",
		Category:    "visual",
		Exclusive:   []OverlayID{OverlayDirectionColors},
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayDirectionColors,
		Name:        "Direction Colors",
		Description: "Color photons by travel direction",
		Key:         rl.KeyD,
		KeyLabel:    "D",
		Category:    "visual",
		Exclusive:   []OverlayID{OverlayWeightColors},
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayBatchPaths,
		Name:        "Batch Paths",
		Description: "Draw sample paths from the last batch run",
		Key:         rl.KeyB,
		KeyLabel:    "B",
		Category:    "visual",
	})

	// Panel overlays
	r.Register(OverlayDescriptor{
		ID:          OverlayHistograms,
		Name:        "Depth Profiles",
		Description: "Absorption and scattering histograms by depth",
		Key:         rl.KeyH,
		KeyLabel:    "H",
		Category:    "panels",
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayPerf,
		Name:        "Performance",
		Description: "Frame phase timings",
		Key:         rl.KeyP,
		KeyLabel:    "P",
		Category:    "panels",
	})

	// On by default: the standard viewing setup
	r.SetEnabled(OverlayTrails, true)
	r.SetEnabled(OverlayLayerLabels, true)
	r.SetEnabled(OverlayHistograms, true)
}

// Register adds an overlay to the registry.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.order = append(r.order, desc.ID)
	r.enabled[desc.ID] = false
}

// Toggle switches an overlay on/off and handles exclusivity.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	desc, ok := r.byID[id]
	if !ok {
		return false
	}

	newState := !r.enabled[id]
	r.enabled[id] = newState

	// If enabling, disable exclusive overlays
	if newState {
		for _, excl := range desc.Exclusive {
			r.enabled[excl] = false
		}
	}

	return newState
}

// SetEnabled explicitly sets an overlay's state.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	desc, ok := r.byID[id]
	if !ok {
		return
	}

	r.enabled[id] = enabled

	// If enabling, disable exclusive overlays
	if enabled {
		for _, excl := range desc.Exclusive {
			r.enabled[excl] = false
		}
	}
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// Get returns an overlay descriptor by ID.
func (r *OverlayRegistry) Get(id OverlayID) (OverlayDescriptor, bool) {
	desc, ok := r.byID[id]
	return desc, ok
}

// All returns all registered overlays in registration order.
func (r *OverlayRegistry) All() []OverlayDescriptor {
	return r.descriptors
}

// ByCategory returns overlays filtered by category.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var result []OverlayDescriptor
	for _, desc := range r.descriptors {
		if desc.Category == category {
			result = append(result, desc)
		}
	}
	return result
}

// Categories returns all unique categories in order.
func (r *OverlayRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, desc := range r.descriptors {
		if !seen[desc.Category] {
			seen[desc.Category] = true
			cats = append(cats, desc.Category)
		}
	}
	return cats
}

// HandleKeyPress checks if a key corresponds to an overlay toggle.
// Returns the overlay ID and new state if a toggle occurred.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool, bool) {
	for _, desc := range r.descriptors {
		if desc.Key == key {
			newState := r.Toggle(desc.ID)
			return desc.ID, newState, true
		}
	}
	return "", false, false
}

// EnabledOverlays returns a list of currently enabled overlay IDs.
func (r *OverlayRegistry) EnabledOverlays() []OverlayID {
	var result []OverlayID
	for _, id := range r.order {
		if r.enabled[id] {
			result = append(result, id)
		}
	}
	return result
}

// OverlayPanel renders the overlay toggle list, shown with F1.
type OverlayPanel struct {
	x, y    int32
	width   int32
	visible bool
}

// NewOverlayPanel creates the overlay toggle panel.
func NewOverlayPanel(x, y, width int32) *OverlayPanel {
	return &OverlayPanel{x: x, y: y, width: width}
}

// Toggle switches panel visibility.
func (p *OverlayPanel) Toggle() bool {
	p.visible = !p.visible
	return p.visible
}

// IsVisible returns whether the panel is shown.
func (p *OverlayPanel) IsVisible() bool {
	return p.visible
}

// Draw renders the overlay panel.
func (p *OverlayPanel) Draw(r *Renderer, overlays *OverlayRegistry) int32 {
	if !p.visible {
		return p.y
	}

	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	categories := overlays.Categories()
	totalItems := 0
	for _, cat := range categories {
		totalItems += len(overlays.ByCategory(cat)) + 1 // +1 for category header
	}
	panelHeight := int32(totalItems)*lineHeight + padding*3 + lineHeight

	r.DrawPanel(p.x, p.y, p.width, panelHeight)

	y := p.y + padding
	rl.DrawText("Overlays", p.x+padding, y, 16, rl.White)
	y += lineHeight + 4

	for _, category := range categories {
		rl.DrawText(categoryLabel(category), p.x+padding, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lineHeight

		for _, desc := range overlays.ByCategory(category) {
			enabled := overlays.IsEnabled(desc.ID)
			p.drawToggle(r, p.x+padding, y, desc, enabled, p.width-padding*2)
			y += lineHeight
		}

		y += 4 // Gap between categories
	}

	return y
}

// drawToggle draws a single overlay toggle line.
func (p *OverlayPanel) drawToggle(r *Renderer, x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	// Status indicator
	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)

	// Name
	nameColor := r.Theme.LabelColor
	if enabled {
		nameColor = rl.White
	}
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	// Key binding (right aligned)
	if desc.KeyLabel != "" {
		keyText := "[" + desc.KeyLabel + "]"
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "visual":
		return "Visual"
	case "panels":
		return "Panels"
	default:
		return cat
	}
}
