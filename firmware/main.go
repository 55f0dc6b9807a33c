//go:build tinygo || baremetal

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"time"

	"github.com/itohio/goeeg/pkg/stream"
)

var (
	adc  machine.ADC
	uart = machine.UART0

	// Timing
	startTime time.Time
)

func main() {
	// Configure ADC pin and set up ADC with highest resolution
	PIN_EEG.Configure(machine.PinConfig{Mode: machine.PinInput})

	adc = machine.ADC{Pin: PIN_EEG}
	adc.Configure(machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	})

	// Configure UART for sample output
	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	scheduler, err := stream.New(stream.Config{
		FrequencyHz: SAMPLE_FREQUENCY_HZ,
		Encoding:    stream.ModeTextTimestamp,
	}, stream.SourceFunc(readElectrode), uart)
	if err != nil {
		// Frequency constants are validated at startup; halt on misconfiguration
		for {
			println("invalid sampling configuration:", err.Error())
			time.Sleep(time.Second)
		}
	}

	// Initialize timing
	startTime = time.Now()

	// Main loop
	for {
		scheduler.Tick(micros())

		// Small delay to prevent tight loop (but still allow precise timing)
		time.Sleep(100 * time.Microsecond)
	}
}

// micros returns the free-running microsecond clock. The value wraps
// modulo 2^32 roughly every 71.6 minutes; the scheduler handles the wrap.
func micros() uint32 {
	return uint32(time.Since(startTime).Microseconds())
}

func readElectrode() uint16 {
	return adc.Get()
}
