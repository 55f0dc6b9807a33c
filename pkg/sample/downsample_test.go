package sample

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func makeSamples(n int) []Sample {
	start := time.Now()
	samples := make([]Sample, n)
	for i := range samples {
		samples[i] = Sample{
			Timestamp: start.Add(time.Duration(i) * time.Millisecond),
			Voltage:   float64(i),
		}
	}
	return samples
}

func TestDownsampleSamples_FewerThanMax(t *testing.T) {
	samples := makeSamples(10)
	got := DownsampleSamples(nil, samples, 100)
	assert.Equal(t, samples, got)
}

func TestDownsampleSamples_Decimates(t *testing.T) {
	samples := makeSamples(1000)
	got := DownsampleSamples(nil, samples, 100)

	assert.Len(t, got, 100)
	// Decimation preserves order and endpoints-ish spacing
	assert.Equal(t, samples[0], got[0])
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i].Timestamp.After(got[i-1].Timestamp))
	}
}

func TestDownsampleSamples_ReusesDst(t *testing.T) {
	samples := makeSamples(1000)
	dst := make([]Sample, 0, 100)

	got := DownsampleSamples(dst, samples, 100)
	assert.Len(t, got, 100)
	assert.Equal(t, 100, cap(got), "dst with sufficient capacity is reused")

	// Small input also reuses the destination
	small := makeSamples(5)
	got = DownsampleSamples(dst, small, 100)
	assert.Equal(t, small, got)
}

func TestDownsampleSamples_Empty(t *testing.T) {
	got := DownsampleSamples(nil, nil, 100)
	assert.Empty(t, got)
}
