package monitor

import (
	"sync"
	"time"

	"github.com/itohio/goeeg/pkg/config"
	"github.com/itohio/goeeg/pkg/sample"
)

var _ SignalMonitor = (*Monitor)(nil)

// Stats summarizes the signal inside the current window.
type Stats struct {
	Min        float64 // lowest voltage in window (V)
	Max        float64 // highest voltage in window (V)
	Mean       float64 // mean voltage in window (V)
	PeakToPeak float64 // Max - Min (V)
	Rate       float64 // measured sample rate over the window (Hz)
}

// SignalMonitor maintains a sliding time window of samples and running
// signal statistics.
type SignalMonitor interface {
	ProcessSamples(input <-chan sample.Sample)
	Samples() []sample.Sample // Current window (FIFO, ordered first to last)
	Stats() Stats
	OnUpdate(func(samples []sample.Sample, stats Stats)) // Register callback for updates
}

// Monitor implements SignalMonitor.
// Internally uses a FIFO buffer; externally exposes an ordered slice
// (oldest sample first, latest last). Removal is based on timestamp
// (time window), not number of samples.
//
// The measured Rate makes cadence problems visible at a glance: if
// the device's scheduler keeps its contract, Rate converges to the
// configured sampling frequency; a persistently low Rate means the wire
// or the firmware loop is dropping samples.
type Monitor struct {
	cfg *config.Config

	samples []sample.Sample

	// Thread safety
	mu sync.RWMutex

	// Update callbacks receive the current window and stats directly
	callbacks []func(samples []sample.Sample, stats Stats)
	cbMu      sync.RWMutex

	windowDuration time.Duration

	// Shutdown control
	shutdown bool // Set to true when input channel closes, prevents further callbacks
}

// New creates a new Monitor instance.
func New(cfg *config.Config) *Monitor {
	return &Monitor{
		cfg:            cfg,
		samples:        make([]sample.Sample, 0),
		callbacks:      make([]func(samples []sample.Sample, stats Stats), 0),
		windowDuration: time.Duration(cfg.Display.WindowSeconds * float64(time.Second)),
	}
}

// ProcessSamples processes samples from the input channel.
// When the input channel closes, it sets the shutdown flag to prevent
// further callbacks.
func (m *Monitor) ProcessSamples(input <-chan sample.Sample) {
	for s := range input {
		m.processSample(s)
	}
	// Channel closed - mark as shutdown to prevent further callbacks
	m.mu.Lock()
	m.shutdown = true
	m.mu.Unlock()
}

// processSample adds a sample to the window and evicts expired ones.
func (m *Monitor) processSample(s sample.Sample) {
	m.mu.Lock()

	m.samples = append(m.samples, s)

	// Remove samples outside the time window (based on timestamp, not count)
	cutoffTime := s.Timestamp.Add(-m.windowDuration)
	cutoffIndex := 0
	for i, smp := range m.samples {
		if smp.Timestamp.After(cutoffTime) {
			cutoffIndex = i
			break
		}
	}
	if cutoffIndex > 0 {
		m.samples = m.samples[cutoffIndex:]
	}

	shouldNotify := !m.shutdown
	m.mu.Unlock()

	if shouldNotify {
		m.notifyCallbacks()
	}
}

// computeStats derives the window statistics. Caller must hold at least a
// read lock.
func (m *Monitor) computeStats() Stats {
	if len(m.samples) == 0 {
		return Stats{}
	}

	stats := Stats{
		Min: m.samples[0].Voltage,
		Max: m.samples[0].Voltage,
	}

	var sum float64
	for _, s := range m.samples {
		if s.Voltage < stats.Min {
			stats.Min = s.Voltage
		}
		if s.Voltage > stats.Max {
			stats.Max = s.Voltage
		}
		sum += s.Voltage
	}
	stats.Mean = sum / float64(len(m.samples))
	stats.PeakToPeak = stats.Max - stats.Min

	if n := len(m.samples); n >= 2 {
		span := m.samples[n-1].Timestamp.Sub(m.samples[0].Timestamp).Seconds()
		if span > 0 {
			stats.Rate = float64(n-1) / span
		}
	}

	return stats
}

// Samples returns a copy of the current window.
func (m *Monitor) Samples() []sample.Sample {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]sample.Sample, len(m.samples))
	copy(result, m.samples)
	return result
}

// Stats returns the statistics of the current window.
func (m *Monitor) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.computeStats()
}

// OnUpdate registers a callback function that will be called when samples
// are updated. The callback receives the current window and stats directly.
// The callback should copy data quickly and return as fast as possible.
func (m *Monitor) OnUpdate(callback func(samples []sample.Sample, stats Stats)) {
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

// ResetShutdown resets the shutdown flag, allowing callbacks to be sent again.
// This should be called before starting a new measurement chain.
func (m *Monitor) ResetShutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdown = false
}

// notifyCallbacks invokes all registered callbacks with the current data.
// Makes copies of data while holding the read lock, then calls callbacks
// without any lock held.
func (m *Monitor) notifyCallbacks() {
	m.mu.RLock()
	samplesCopy := make([]sample.Sample, len(m.samples))
	copy(samplesCopy, m.samples)
	stats := m.computeStats()
	m.mu.RUnlock()

	m.cbMu.RLock()
	callbacks := make([]func(samples []sample.Sample, stats Stats), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(samplesCopy, stats)
		}
	}
}
