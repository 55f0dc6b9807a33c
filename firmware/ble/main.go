//go:build tinygo || baremetal

//go:generate tinygo flash -target=xiao-ble

package main

import (
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/itohio/goeeg/pkg/stream"
)

const (
	// BLE notifications carry ~20 byte payloads at connection-interval
	// cadence, so stream at a reduced rate compared to the wired build.
	SAMPLE_FREQUENCY_HZ = 250

	// ADC configuration
	ADC_REFERENCE_MV = 3300
	ADC_RESOLUTION   = 12

	DEVICE_NAME = "EEG Electrode"
)

var (
	adapter = bluetooth.DefaultAdapter

	// Notify characteristic carrying sample frames (Nordic UART TX)
	txChar bluetooth.Characteristic

	connected bool

	startTime time.Time
)

// bleTransport forwards frames to the notify characteristic. Frames
// produced before a central subscribes are dropped.
type bleTransport struct{}

func (bleTransport) Write(p []byte) (int, error) {
	if !connected {
		return len(p), nil
	}
	txChar.Write(p)
	return len(p), nil
}

func main() {
	time.Sleep(3 * time.Second)

	if err := adapter.Enable(); err != nil {
		fail("Failed to enable BLE adapter:", err)
	}

	adapter.SetConnectHandler(func(device bluetooth.Device, c bool) {
		connected = c
		if c {
			println("Central connected")
		} else {
			println("Central disconnected")
		}
	})

	if err := adapter.AddService(&bluetooth.Service{
		UUID: bluetooth.ServiceUUIDNordicUART,
		Characteristics: []bluetooth.CharacteristicConfig{
			{
				Handle: &txChar,
				UUID:   bluetooth.CharacteristicUUIDUARTTX,
				Flags:  bluetooth.CharacteristicNotifyPermission | bluetooth.CharacteristicReadPermission,
			},
		},
	}); err != nil {
		fail("Failed to add service:", err)
	}

	adv := adapter.DefaultAdvertisement()
	if err := adv.Configure(bluetooth.AdvertisementOptions{
		LocalName:    DEVICE_NAME,
		ServiceUUIDs: []bluetooth.UUID{bluetooth.ServiceUUIDNordicUART},
	}); err != nil {
		fail("Failed to configure advertisement:", err)
	}
	if err := adv.Start(); err != nil {
		fail("Failed to start advertising:", err)
	}
	println("Advertising as", DEVICE_NAME)

	scheduler, err := stream.New(stream.Config{
		FrequencyHz: SAMPLE_FREQUENCY_HZ,
		Encoding:    stream.ModeText,
	}, stream.SourceFunc(readElectrode), bleTransport{})
	if err != nil {
		fail("Invalid sampling configuration:", err)
	}

	configureADC()
	startTime = time.Now()

	for {
		scheduler.Tick(micros())
		time.Sleep(100 * time.Microsecond)
	}
}

func micros() uint32 {
	return uint32(time.Since(startTime).Microseconds())
}

func fail(msg string, err error) {
	for {
		println(msg, err.Error())
		time.Sleep(time.Second)
	}
}
