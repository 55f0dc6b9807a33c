//go:build tinygo || baremetal

package main

import "machine"

const PIN_EEG = machine.A1

var adc machine.ADC

func configureADC() {
	PIN_EEG.Configure(machine.PinConfig{Mode: machine.PinInput})

	adc = machine.ADC{Pin: PIN_EEG}
	adc.Configure(machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	})
}

func readElectrode() uint16 {
	return adc.Get()
}
