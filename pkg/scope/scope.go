package scope

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/goeeg/pkg/config"
	"github.com/itohio/goeeg/pkg/monitor"
	"github.com/itohio/goeeg/pkg/sample"
)

// ScopeWidget is a custom Fyne widget that displays the electrode signal as
// an oscilloscope-style trace.
type ScopeWidget struct {
	widget.BaseWidget

	cfg *config.Config

	// Data (protected by mu)
	mu      sync.RWMutex
	samples []sample.Sample
	stats   monitor.Stats

	// Display buffer (reused for downsampling)
	displaySamples []sample.Sample

	// Auto-scaling
	yMin, yMax float64
	xMin, xMax time.Time

	// Display settings
	maxDisplayPoints int
}

// New creates a new ScopeWidget instance.
func New(cfg *config.Config) *ScopeWidget {
	maxPoints := cfg.Display.MaxPoints
	if maxPoints <= 0 {
		maxPoints = 1000
	}

	s := &ScopeWidget{
		cfg:              cfg,
		samples:          make([]sample.Sample, 0),
		displaySamples:   make([]sample.Sample, 0, maxPoints),
		maxDisplayPoints: maxPoints,
	}
	s.ExtendBaseWidget(s)
	// Trigger initial refresh to display empty scope
	s.Refresh()
	return s
}

// UpdateData updates the widget with a new signal window.
// This should be called from the monitor callback using fyne.Do().
func (s *ScopeWidget) UpdateData(samples []sample.Sample, stats monitor.Stats) {
	s.mu.Lock()

	// Downsample for display (reuse buffer)
	s.displaySamples = sample.DownsampleSamples(s.displaySamples, samples, s.maxDisplayPoints)

	s.samples = samples
	s.stats = stats

	s.updateAutoScale()

	s.mu.Unlock()

	// Refresh the widget (must be outside lock to avoid potential deadlock)
	s.Refresh()
}

// updateAutoScale calculates the axis ranges from current data.
func (s *ScopeWidget) updateAutoScale() {
	if len(s.displaySamples) == 0 {
		s.yMin = -1.0
		s.yMax = 1.0
		s.xMin = time.Now()
		s.xMax = time.Now().Add(time.Duration(s.cfg.Display.WindowSeconds * float64(time.Second)))
		return
	}

	s.yMin = s.displaySamples[0].Voltage
	s.yMax = s.displaySamples[0].Voltage
	for _, smp := range s.displaySamples {
		if smp.Voltage < s.yMin {
			s.yMin = smp.Voltage
		}
		if smp.Voltage > s.yMax {
			s.yMax = smp.Voltage
		}
	}

	// Add 10% margin
	range_ := s.yMax - s.yMin
	if range_ == 0 {
		range_ = 1.0
	}
	margin := range_ * 0.1
	s.yMin -= margin
	s.yMax += margin

	// Time range
	s.xMin = s.displaySamples[0].Timestamp
	s.xMax = s.displaySamples[len(s.displaySamples)-1].Timestamp
	// Ensure minimum window
	window := time.Duration(s.cfg.Display.WindowSeconds * float64(time.Second))
	if s.xMax.Sub(s.xMin) < window {
		s.xMax = s.xMin.Add(window)
	}
}

// CreateRenderer creates the widget renderer.
func (s *ScopeWidget) CreateRenderer() fyne.WidgetRenderer {
	grid := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255}) // Dark background
	return &scopeRenderer{
		scope:    s,
		grid:     grid,
		objects:  []fyne.CanvasObject{grid},
		lastSize: fyne.Size{Width: 0, Height: 0},
	}
}
