package chart

import (
	"time"

	"github.com/matzehuels/districtviz/pkg/chart/scale"
)

// Layer names the element groups, in paint order.
type Layer string

const (
	LayerBars  Layer = "bars"
	LayerCurr  Layer = "curr"
	LayerMoEs  Layer = "moes"
	LayerMasks Layer = "masks"
)

// Layers lists every layer in paint order.
var Layers = []Layer{LayerBars, LayerCurr, LayerMoEs, LayerMasks}

// Rect is one rendered element. Coordinates are relative to the drawable
// area; sinks translate by the margin.
type Rect struct {
	Key     string  `json:"key"`
	Index   int     `json:"index"`
	Class   string  `json:"class"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Fill    string  `json:"fill,omitempty"`
	Opacity float64 `json:"opacity"`

	// Bars only: the fill to return to when the pointer leaves.
	RestFill string `json:"rest_fill,omitempty"`

	// Transition is the fill transition applied by the last state change.
	Transition time.Duration `json:"transition,omitempty"`
	// Passive elements ignore pointer events.
	Passive bool `json:"passive,omitempty"`

	// Masks only: the tooltip shown while the pointer is over this band.
	Tooltip     string  `json:"tooltip,omitempty"`
	TooltipLeft float64 `json:"tooltip_left,omitempty"`
}

// Tooltip is the floating label shown above the chart.
type Tooltip struct {
	HTML    string  `json:"html"`
	Left    float64 `json:"left"`
	Width   float64 `json:"width"`
	Key     string  `json:"key,omitempty"` // district the tooltip describes
	Visible bool    `json:"visible"`
}

// Scene is a snapshot of everything a sink needs to draw the chart.
type Scene struct {
	Width           float64       `json:"width"`
	Height          float64       `json:"height"`
	Margin          scale.Margin  `json:"margin"`
	Column          string        `json:"column"`
	Selected        string        `json:"selected,omitempty"`
	Hovered         string        `json:"hovered,omitempty"`
	Palette         Palette       `json:"palette"`
	HoverTransition time.Duration `json:"hover_transition"`

	Bars  []Rect `json:"bars"`
	Curr  []Rect `json:"curr,omitempty"`
	MoEs  []Rect `json:"moes,omitempty"`
	Masks []Rect `json:"masks"`

	Tooltip Tooltip `json:"tooltip"`
}

// Layer returns the elements of l.
func (s Scene) Layer(l Layer) []Rect {
	switch l {
	case LayerBars:
		return s.Bars
	case LayerCurr:
		return s.Curr
	case LayerMoEs:
		return s.MoEs
	case LayerMasks:
		return s.Masks
	}
	return nil
}

// Empty reports whether nothing has been rendered.
func (s Scene) Empty() bool {
	return len(s.Bars) == 0 && len(s.Masks) == 0
}

// ElementCount is the number of elements across all layers.
func (s Scene) ElementCount() int {
	return len(s.Bars) + len(s.Curr) + len(s.MoEs) + len(s.Masks)
}
