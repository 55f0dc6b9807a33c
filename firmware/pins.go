//go:build tinygo || baremetal

package main

import "machine"

const (
	// Sampling configuration
	SAMPLE_FREQUENCY_HZ = 1000 // Electrode sampling rate in Hz

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)

	// Electrode ADC pin
	PIN_EEG = machine.A1

	// Serial configuration
	// Baud rate calculation: Format "<millis>,<value>\n"
	// Example: "4294967295,4095\n" = 17 bytes max per line
	// 1000 samples/sec * 17 bytes/line = 17,000 bytes/sec
	// UART 8N1: 10 bits/byte = 170,000 baud minimum for worst-case lines.
	// Typical lines are ~10 bytes (100,000 baud), so 115200 carries the
	// stream with margin; switch to binary encoding for full headroom
	// (2 bytes/sample = 20,000 baud minimum, ~5.7x headroom at 115200).
	UART_BAUD_RATE = 115200
)
