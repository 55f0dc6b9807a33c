package sample

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/itohio/goeeg/pkg/config"
	"github.com/itohio/goeeg/pkg/eeg"
)

// TestConverter_GracefulShutdown tests that converter closes output channel
// when input channel is closed.
func TestConverter_GracefulShutdown(t *testing.T) {
	cfg := config.Default()

	converter := NewConverter(cfg, 10)
	input := make(chan eeg.RawSample, 10)
	output := converter(input)

	// Read samples in background
	received := make(chan int, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		count := 0
		for range output {
			count++
		}
		received <- count
	}()

	// Send some samples
	now := time.Now()
	numSamples := 3
	for i := 0; i < numSamples; i++ {
		input <- eeg.RawSample{
			Timestamp: now.Add(time.Duration(i) * time.Millisecond),
			Millis:    uint32(i),
			Value:     2048,
		}
	}

	close(input)

	// The reader goroutine must observe the output channel closing
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("output channel was not closed after input closed")
	}

	assert.Equal(t, numSamples, <-received)
}
