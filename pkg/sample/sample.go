package sample

import (
	"log"
	"time"

	"github.com/itohio/goeeg/pkg/config"
	"github.com/itohio/goeeg/pkg/eeg"
)

// Sample represents a processed electrode sample with physical values.
type Sample struct {
	Timestamp time.Time
	Millis    uint32  // device millisecond clock, 0 when the wire omits it
	Voltage   float64 // electrode voltage centered around 0V
}

// Converter is a function type that converts RawSample channel to Sample channel.
type Converter func(in <-chan eeg.RawSample) <-chan Sample

// NewConverter creates a converter function that transforms RawSample to Sample.
func NewConverter(cfg *config.Config, bufSize int) Converter {
	if bufSize <= 0 {
		bufSize = 100
	}

	return func(in <-chan eeg.RawSample) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			for raw := range in {
				select {
				case out <- convertSample(raw, &cfg.ADC):
				case <-time.After(time.Second):
					log.Printf("Converter output channel full, dropping sample")
				}
			}
		}()

		return out
	}
}

// convertSample converts a RawSample to Sample using the ADC configuration.
func convertSample(raw eeg.RawSample, adc *config.ADCConfig) Sample {
	return Sample{
		Timestamp: raw.Timestamp,
		Millis:    raw.Millis,
		Voltage:   center(adcToVoltage(raw.Value, adc.Max, adc.VRef), adc.Bias),
	}
}

// adcToVoltage converts an ADC reading to voltage.
func adcToVoltage(adc uint16, max int, vref float64) float64 {
	if max <= 0 {
		return 0
	}
	return (float64(adc) / float64(max)) * vref
}

// center removes the electrode bias so the signal swings around 0V.
// The analog front end biases the electrode to Vcc/2 to fit the bipolar
// signal into the ADC's unipolar range.
func center(voltage, bias float64) float64 {
	return voltage - bias
}
