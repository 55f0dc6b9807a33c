package main

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/goeeg/pkg/eeg"
	"github.com/itohio/goeeg/pkg/stream"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	// Create tabs
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createSamplingTab(state),
		createADCTab(state),
		createDisplayTab(state),
		createMockTab(state),
	)

	// Create dialog with tabs as content
	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 500))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 500))
	d.Show()
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	// Get available serial ports
	ports, err := eeg.Ports()
	portOptions := []string{}

	if err == nil {
		for _, port := range ports {
			portOptions = append(portOptions, port.Name)
		}
	}

	// Add current port if not in list
	currentPort := state.cfg.Serial.Port
	found := false
	for _, opt := range portOptions {
		if opt == currentPort {
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
	}

	portSelect := widget.NewSelect(portOptions, func(selected string) {
		// Selection handler - applied on submit
	})
	if currentPort != "" {
		portSelect.SetSelected(currentPort)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 {
				state.cfg.Serial.BaudRate = baud
			}
			if portSelect.Selected != "" {
				selectedPort := portSelect.Selected

				// Check if port changed and device is connected
				portChanged := state.cfg.Serial.Port != selectedPort
				wasConnected := state.device != nil && state.device.IsConnected()

				state.cfg.Serial.Port = selectedPort
				if err := state.cfg.Save("config.yaml"); err != nil {
					dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
					return
				}

				// If port changed and device was connected, restart the measurement chain
				if portChanged && wasConnected {
					// Gracefully close old chain
					closeMeasurementChain(state.chain)
					state.chain = nil

					// Close old device
					if state.device != nil {
						state.device.Close()
						state.device = nil
					}

					// Reconnect with new port
					handleConnect(state)
				}
			}
		},
	}

	return container.NewTabItem("Serial", form)
}

// createSamplingTab creates the Sampling configuration tab. Frequency and
// encoding describe what the firmware was built with; changing them here
// only changes how the host decodes the stream.
func createSamplingTab(state *appState) *container.TabItem {
	frequencyEntry := widget.NewEntry()
	frequencyEntry.SetText(strconv.Itoa(state.cfg.Sampling.FrequencyHz))

	encodingSelect := widget.NewSelect([]string{
		stream.ModeText.String(),
		stream.ModeTextTimestamp.String(),
		stream.ModeBinary.String(),
	}, func(selected string) {})
	encodingSelect.SetSelected(state.cfg.Sampling.Encoding)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Frequency (Hz)", Widget: frequencyEntry},
			{Text: "Wire Encoding", Widget: encodingSelect},
		},
		OnSubmit: func() {
			if freq, err := strconv.Atoi(frequencyEntry.Text); err == nil && freq > 0 && freq <= stream.MaxFrequencyHz {
				state.cfg.Sampling.FrequencyHz = freq
			}
			if encodingSelect.Selected != "" {
				state.cfg.Sampling.Encoding = encodingSelect.Selected
			}
			if err := state.cfg.Save("config.yaml"); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
			}
		},
	}

	return container.NewTabItem("Sampling", form)
}

// createADCTab creates the ADC configuration tab.
func createADCTab(state *appState) *container.TabItem {
	maxEntry := widget.NewEntry()
	maxEntry.SetText(strconv.Itoa(state.cfg.ADC.Max))

	vrefEntry := widget.NewEntry()
	vrefEntry.SetText(fmt.Sprintf("%.2f", state.cfg.ADC.VRef))

	biasEntry := widget.NewEntry()
	biasEntry.SetText(fmt.Sprintf("%.2f", state.cfg.ADC.Bias))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Full Scale", Widget: maxEntry},
			{Text: "VRef (V)", Widget: vrefEntry},
			{Text: "Bias (V)", Widget: biasEntry},
		},
		OnSubmit: func() {
			if max, err := strconv.Atoi(maxEntry.Text); err == nil && max > 0 {
				state.cfg.ADC.Max = max
			}
			if vref, err := strconv.ParseFloat(vrefEntry.Text, 64); err == nil {
				state.cfg.ADC.VRef = vref
			}
			if bias, err := strconv.ParseFloat(biasEntry.Text, 64); err == nil {
				state.cfg.ADC.Bias = bias
			}
			if err := state.cfg.Save("config.yaml"); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
			}
		},
	}

	return container.NewTabItem("ADC", form)
}

// createDisplayTab creates the Display configuration tab.
func createDisplayTab(state *appState) *container.TabItem {
	windowEntry := widget.NewEntry()
	windowEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Display.WindowSeconds))

	maxPointsEntry := widget.NewEntry()
	maxPointsEntry.SetText(strconv.Itoa(state.cfg.Display.MaxPoints))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Window (s)", Widget: windowEntry},
			{Text: "Max Points", Widget: maxPointsEntry},
		},
		OnSubmit: func() {
			if window, err := strconv.ParseFloat(windowEntry.Text, 64); err == nil && window > 0 {
				state.cfg.Display.WindowSeconds = window
			}
			if points, err := strconv.Atoi(maxPointsEntry.Text); err == nil && points > 0 {
				state.cfg.Display.MaxPoints = points
			}
			if err := state.cfg.Save("config.yaml"); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
			}
		},
	}

	return container.NewTabItem("Display", form)
}

// createMockTab creates the Mock device configuration tab.
func createMockTab(state *appState) *container.TabItem {
	frequencyEntry := widget.NewEntry()
	frequencyEntry.SetText(strconv.Itoa(state.cfg.Mock.FrequencyHz))

	alphaFreqEntry := widget.NewEntry()
	alphaFreqEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Mock.AlphaFrequency))

	alphaAmpEntry := widget.NewEntry()
	alphaAmpEntry.SetText(fmt.Sprintf("%.3f", state.cfg.Mock.AlphaAmplitude))

	mainsAmpEntry := widget.NewEntry()
	mainsAmpEntry.SetText(fmt.Sprintf("%.3f", state.cfg.Mock.MainsAmplitude))

	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(fmt.Sprintf("%.3f", state.cfg.Mock.NoiseLevel))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Sample Rate (Hz)", Widget: frequencyEntry},
			{Text: "Alpha Frequency (Hz)", Widget: alphaFreqEntry},
			{Text: "Alpha Amplitude (V)", Widget: alphaAmpEntry},
			{Text: "Mains Amplitude (V)", Widget: mainsAmpEntry},
			{Text: "Noise Level (V)", Widget: noiseEntry},
		},
		OnSubmit: func() {
			if freq, err := strconv.Atoi(frequencyEntry.Text); err == nil && freq > 0 {
				state.cfg.Mock.FrequencyHz = freq
			}
			if f, err := strconv.ParseFloat(alphaFreqEntry.Text, 64); err == nil {
				state.cfg.Mock.AlphaFrequency = f
			}
			if a, err := strconv.ParseFloat(alphaAmpEntry.Text, 64); err == nil {
				state.cfg.Mock.AlphaAmplitude = a
			}
			if a, err := strconv.ParseFloat(mainsAmpEntry.Text, 64); err == nil {
				state.cfg.Mock.MainsAmplitude = a
			}
			if n, err := strconv.ParseFloat(noiseEntry.Text, 64); err == nil {
				state.cfg.Mock.NoiseLevel = n
			}
			if err := state.cfg.Save("config.yaml"); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
			}
		},
	}

	return container.NewTabItem("Mock", form)
}
