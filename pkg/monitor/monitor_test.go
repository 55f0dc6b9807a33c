package monitor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/goeeg/pkg/config"
	"github.com/itohio/goeeg/pkg/sample"
)

func testConfig(windowSeconds float64) *config.Config {
	cfg := config.Default()
	cfg.Display.WindowSeconds = windowSeconds
	return cfg
}

func TestMonitor_CollectsSamples(t *testing.T) {
	m := New(testConfig(10))

	now := time.Now()
	for i := 0; i < 5; i++ {
		m.processSample(sample.Sample{
			Timestamp: now.Add(time.Duration(i) * time.Millisecond),
			Voltage:   float64(i) * 0.1,
		})
	}

	samples := m.Samples()
	require.Len(t, samples, 5)
	for i := 1; i < len(samples); i++ {
		assert.True(t, samples[i].Timestamp.After(samples[i-1].Timestamp), "window stays ordered")
	}
}

func TestMonitor_WindowEviction(t *testing.T) {
	m := New(testConfig(1)) // 1 second window

	now := time.Now()
	// Two old samples followed by two fresh ones 2 seconds later
	m.processSample(sample.Sample{Timestamp: now, Voltage: 1.0})
	m.processSample(sample.Sample{Timestamp: now.Add(10 * time.Millisecond), Voltage: 1.0})
	m.processSample(sample.Sample{Timestamp: now.Add(2 * time.Second), Voltage: 2.0})
	m.processSample(sample.Sample{Timestamp: now.Add(2*time.Second + 10*time.Millisecond), Voltage: 2.0})

	samples := m.Samples()
	require.Len(t, samples, 2, "samples older than the window are evicted")
	for _, s := range samples {
		assert.Equal(t, 2.0, s.Voltage)
	}
}

func TestMonitor_Stats(t *testing.T) {
	m := New(testConfig(10))

	now := time.Now()
	voltages := []float64{-0.5, 0.0, 0.5, 0.25, -0.25}
	for i, v := range voltages {
		m.processSample(sample.Sample{
			Timestamp: now.Add(time.Duration(i) * 100 * time.Millisecond),
			Voltage:   v,
		})
	}

	stats := m.Stats()
	assert.InDelta(t, -0.5, stats.Min, 0.0001)
	assert.InDelta(t, 0.5, stats.Max, 0.0001)
	assert.InDelta(t, 0.0, stats.Mean, 0.0001)
	assert.InDelta(t, 1.0, stats.PeakToPeak, 0.0001)
	// 4 intervals of 100ms -> 10 Hz measured rate
	assert.InDelta(t, 10.0, stats.Rate, 0.1)
}

func TestMonitor_StatsEmpty(t *testing.T) {
	m := New(testConfig(10))
	assert.Equal(t, Stats{}, m.Stats())
}

func TestMonitor_OnUpdate(t *testing.T) {
	m := New(testConfig(10))

	var mu sync.Mutex
	var gotSamples int
	var gotStats Stats
	m.OnUpdate(func(samples []sample.Sample, stats Stats) {
		mu.Lock()
		defer mu.Unlock()
		gotSamples = len(samples)
		gotStats = stats
	})

	now := time.Now()
	m.processSample(sample.Sample{Timestamp: now, Voltage: 0.1})
	m.processSample(sample.Sample{Timestamp: now.Add(time.Millisecond), Voltage: 0.3})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, gotSamples)
	assert.InDelta(t, 0.2, gotStats.Mean, 0.0001)
}

func TestMonitor_ProcessSamplesShutdown(t *testing.T) {
	m := New(testConfig(10))

	calls := 0
	var mu sync.Mutex
	m.OnUpdate(func(samples []sample.Sample, stats Stats) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	in := make(chan sample.Sample, 4)
	now := time.Now()
	for i := 0; i < 3; i++ {
		in <- sample.Sample{Timestamp: now.Add(time.Duration(i) * time.Millisecond), Voltage: 0.1}
	}
	close(in)

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.ProcessSamples(in)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ProcessSamples did not return after input closed")
	}

	mu.Lock()
	assert.Equal(t, 3, calls)
	mu.Unlock()

	// After shutdown, further direct samples must not fire callbacks
	m.processSample(sample.Sample{Timestamp: now.Add(time.Second), Voltage: 0.2})
	mu.Lock()
	assert.Equal(t, 3, calls)
	mu.Unlock()

	// ResetShutdown re-arms the callbacks for a new chain
	m.ResetShutdown()
	m.processSample(sample.Sample{Timestamp: now.Add(2 * time.Second), Voltage: 0.2})
	mu.Lock()
	assert.Equal(t, 4, calls)
	mu.Unlock()
}
