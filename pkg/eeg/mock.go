package eeg

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/itohio/goeeg/pkg/config"
	"github.com/itohio/goeeg/pkg/stream"
)

// Mock ADC characteristics, matching the default electrode board
// (12-bit converter, 5V reference, signal biased to Vcc/2).
const (
	mockADCMax = 4095
	mockVRef   = 5.0
	mockBias   = 2.5
)

// mainsFrequency is the simulated power-line interference.
const mainsFrequency = 50.0

// Mock simulates an electrode device for testing and development.
//
// The mock does not fabricate samples on a timer of its own: it runs the
// same deadline scheduler and frame encoder the firmware runs, against the
// host's monotonic clock, and feeds the emitted frames back through the
// regular parse path. A pipeline developed against the mock therefore sees
// the exact wire behavior of a real device.
type Mock struct {
	cfg *config.MockConfig

	sched   *stream.Scheduler
	samples chan RawSample

	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
	done      chan struct{}

	start time.Time
}

// NewMock creates a new mocked device instance.
func NewMock(cfg *config.MockConfig) *Mock {
	if cfg == nil {
		cfg = &config.MockConfig{
			FrequencyHz:    250,
			AlphaFrequency: 10.0,
			AlphaAmplitude: 0.2,
			MainsAmplitude: 0.05,
			NoiseLevel:     0.02,
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Mock{
		cfg:     cfg,
		samples: make(chan RawSample, DefaultBufferSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Connect starts the simulated sampling loop.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}

	sched, err := stream.New(stream.Config{
		FrequencyHz: m.cfg.FrequencyHz,
		Encoding:    stream.ModeTextTimestamp,
	}, stream.SourceFunc(m.synthesize), &frameSink{mock: m})
	if err != nil {
		return fmt.Errorf("failed to create mock scheduler: %w", err)
	}

	m.sched = sched
	m.start = time.Now()
	m.connected = true
	m.done = make(chan struct{})

	go m.run()

	return nil
}

// Close stops the mocked device.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	m.cancel()
	// Wait for the sampling loop to stop before closing the channel it
	// writes to.
	<-m.done
	m.connected = false
	close(m.samples)

	return nil
}

// Samples returns the channel for reading samples.
func (m *Mock) Samples() <-chan RawSample {
	return m.samples
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// run polls the scheduler the same way the firmware main loop does: tick
// with the current microsecond clock, then yield briefly.
func (m *Mock) run() {
	defer close(m.done)
	for {
		select {
		case <-m.ctx.Done():
			return
		default:
			m.sched.Tick(m.micros())
			time.Sleep(200 * time.Microsecond)
		}
	}
}

// micros returns the elapsed microseconds since Connect as a free-running
// modular clock value.
func (m *Mock) micros() uint32 {
	return uint32(time.Since(m.start).Microseconds())
}

// synthesize produces one ADC reading of an EEG-like signal: a dominant
// alpha-band sine, mains hum, and deterministic pseudo-noise around the
// bias midpoint.
func (m *Mock) synthesize() uint16 {
	t := time.Since(m.start).Seconds()

	v := mockBias
	v += m.cfg.AlphaAmplitude * math.Sin(2*math.Pi*m.cfg.AlphaFrequency*t)
	v += m.cfg.MainsAmplitude * math.Sin(2*math.Pi*mainsFrequency*t)
	v += (math.Sin(t*917.3) + math.Cos(t*1321.7)) * m.cfg.NoiseLevel * 0.5

	adc := (v / mockVRef) * mockADCMax
	if adc < 0 {
		adc = 0
	} else if adc > mockADCMax {
		adc = mockADCMax
	}

	return uint16(adc)
}

// frameSink receives encoded frames from the mock scheduler and feeds them
// back through the text parse path into the samples channel.
type frameSink struct {
	mock *Mock
}

// Write implements io.Writer. The scheduler writes exactly one frame per
// call.
func (s *frameSink) Write(p []byte) (int, error) {
	line := string(p)
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
	}

	sample, err := parseLine(line, stream.ModeTextTimestamp)
	if err != nil {
		return 0, err
	}

	select {
	case s.mock.samples <- sample:
	case <-s.mock.ctx.Done():
	default:
		// Channel full, skip
		log.Printf("Samples channel full, dropping sample")
	}

	return len(p), nil
}
