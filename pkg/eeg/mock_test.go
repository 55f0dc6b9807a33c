package eeg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/goeeg/pkg/config"
)

func TestNewMock_NilConfigUsesDefaults(t *testing.T) {
	m := NewMock(nil)
	require.NotNil(t, m)
	assert.Equal(t, 250, m.cfg.FrequencyHz)
	assert.False(t, m.IsConnected())
}

func TestMock_ConnectAndClose(t *testing.T) {
	m := NewMock(&config.MockConfig{
		FrequencyHz:    500,
		AlphaFrequency: 10.0,
		AlphaAmplitude: 0.2,
		MainsAmplitude: 0.05,
		NoiseLevel:     0.02,
	})

	require.NoError(t, m.Connect())
	assert.True(t, m.IsConnected())

	// Connecting twice is an error
	assert.Error(t, m.Connect())

	require.NoError(t, m.Close())
	assert.False(t, m.IsConnected())

	// Closing twice is fine
	assert.NoError(t, m.Close())
}

func TestMock_ProducesSamples(t *testing.T) {
	m := NewMock(&config.MockConfig{
		FrequencyHz:    1000,
		AlphaFrequency: 10.0,
		AlphaAmplitude: 0.2,
		MainsAmplitude: 0.05,
		NoiseLevel:     0.02,
	})

	require.NoError(t, m.Connect())
	defer m.Close()

	var samples []RawSample
	timeout := time.After(2 * time.Second)
	for len(samples) < 50 {
		select {
		case s, ok := <-m.Samples():
			require.True(t, ok, "samples channel closed unexpectedly")
			samples = append(samples, s)
		case <-timeout:
			t.Fatalf("timed out waiting for mock samples, got %d", len(samples))
		}
	}

	for _, s := range samples {
		assert.LessOrEqual(t, s.Value, uint16(mockADCMax), "values stay within ADC range")
		assert.False(t, s.Timestamp.IsZero())
	}

	// The device millisecond clock is non-decreasing over a short run.
	for i := 1; i < len(samples); i++ {
		assert.GreaterOrEqual(t, samples[i].Millis, samples[i-1].Millis)
	}

	// A synthesized waveform moves; a flatlined mock would hide pipeline bugs.
	minV, maxV := samples[0].Value, samples[0].Value
	for _, s := range samples {
		if s.Value < minV {
			minV = s.Value
		}
		if s.Value > maxV {
			maxV = s.Value
		}
	}
	assert.Greater(t, maxV-minV, uint16(10), "waveform should have visible amplitude")
}

func TestMock_GracefulShutdown(t *testing.T) {
	m := NewMock(nil)
	require.NoError(t, m.Connect())

	// Let it emit a few samples, then close while the loop is running.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, m.Close())

	// The channel must drain and then report closed.
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-m.Samples():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("samples channel was not closed on shutdown")
		}
	}
}

func TestMock_SynthesizeCentersOnBias(t *testing.T) {
	m := NewMock(&config.MockConfig{
		FrequencyHz:    250,
		AlphaFrequency: 10.0,
		AlphaAmplitude: 0.1,
		MainsAmplitude: 0.0,
		NoiseLevel:     0.0,
	})
	m.start = time.Now()

	// With small amplitudes every reading stays near the bias midpoint.
	midF := float64(mockADCMax) * mockBias / mockVRef
	spanF := float64(mockADCMax) * 0.15 / mockVRef
	mid := uint16(midF)
	span := uint16(spanF)
	for i := 0; i < 100; i++ {
		v := m.synthesize()
		assert.InDelta(t, mid, v, float64(span))
	}
}
