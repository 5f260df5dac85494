package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/mcsky/twostream/renderer"
	"github.com/mcsky/twostream/transport"
)

// InspectorData holds everything the inspector shows about one photon.
type InspectorData struct {
	ID              uint32
	Tau             float64
	Weight          float64
	Scatters        int
	SurfaceBounces  int
	Direction       transport.Direction
	State           transport.State
	NextInteraction float64
	DeepestTau      float64
	AgeFrames       int32
}

// Inspector renders the hover card for a single photon. Fields are
// descriptor-driven so the card layout lives in one table.
type Inspector struct {
	layout   renderer.Layout
	sections []SectionDescriptor
}

// NewInspector creates the photon inspector panel.
func NewInspector(layout renderer.Layout) *Inspector {
	return &Inspector{
		layout:   layout,
		sections: inspectorSections(),
	}
}

// SetLayout updates the layout after a window resize.
func (ins *Inspector) SetLayout(layout renderer.Layout) {
	ins.layout = layout
}

// inspectorSections builds the field tables for the card.
func inspectorSections() []SectionDescriptor {
	return []SectionDescriptor{
		{
			ID:    "photon",
			Title: "Photon",
			Fields: []FieldDescriptor{
				{
					ID: "id", Label: "ID", Widget: WidgetText,
					TextGetter: func(d any) string { return fmt.Sprintf("#%d", d.(InspectorData).ID) },
				},
				{
					ID: "state", Label: "State", Widget: WidgetText,
					TextGetter: func(d any) string { return d.(InspectorData).State.String() },
				},
				{
					ID: "dir", Label: "Dir", Widget: WidgetText,
					TextGetter: func(d any) string { return d.(InspectorData).Direction.String() },
				},
				{
					ID: "age", Label: "Age", Widget: WidgetText,
					TextGetter: func(d any) string { return fmt.Sprintf("%d frames", d.(InspectorData).AgeFrames) },
				},
			},
		},
		{
			ID:    "packet",
			Title: "Packet",
			Fields: []FieldDescriptor{
				{
					ID: "weight", Label: "Weight", Widget: WidgetBar, Range: DefaultRange(),
					Getter: func(d any) float32 { return float32(d.(InspectorData).Weight) },
				},
				{
					ID: "scatters", Label: "Scatter", Widget: WidgetText, Format: "%.0f",
					Getter: func(d any) float32 { return float32(d.(InspectorData).Scatters) },
				},
				{
					ID: "bounces", Label: "Bounce", Widget: WidgetText, Format: "%.0f",
					Getter: func(d any) float32 { return float32(d.(InspectorData).SurfaceBounces) },
					Visible: func(d any) bool { return d.(InspectorData).SurfaceBounces > 0 },
				},
			},
		},
		{
			ID:    "position",
			Title: "Depth",
			Fields: []FieldDescriptor{
				{
					ID: "tau", Label: "Tau", Widget: WidgetText, Format: "%.3f",
					Getter: func(d any) float32 { return float32(d.(InspectorData).Tau) },
				},
				{
					ID: "next", Label: "Next", Widget: WidgetText, Format: "%.3f",
					Getter: func(d any) float32 { return float32(d.(InspectorData).NextInteraction) },
				},
				{
					ID: "deepest", Label: "Deepest", Widget: WidgetText, Format: "%.3f",
					Getter: func(d any) float32 { return float32(d.(InspectorData).DeepestTau) },
				},
			},
		},
	}
}

// Draw renders the inspector card in the lower-left of the scene.
func (ins *Inspector) Draw(r *Renderer, data InspectorData) {
	pad := r.Theme.Padding
	w := int32(216)
	h := int32(232)
	x := int32(10)
	y := int32(ins.layout.ScreenH) - h - 34

	r.DrawPanel(x, y, w, h)

	// Marker dot matching the hovered photon
	rl.DrawCircle(x+w-16, y+14, 5, rl.Color{R: 255, G: 235, B: 140, A: 255})

	rowY := y + pad
	for _, sd := range ins.sections {
		rowY = r.DrawSection(x+pad, rowY, sd, data, w-pad*2)
	}
}
