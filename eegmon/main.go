package main

import (
	"flag"
	"fmt"
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/goeeg/pkg/config"
	"github.com/itohio/goeeg/pkg/eeg"
	"github.com/itohio/goeeg/pkg/monitor"
	"github.com/itohio/goeeg/pkg/sample"
	"github.com/itohio/goeeg/pkg/scope"
)

func main() {
	var (
		portFlag      = flag.String("p", "", "Serial port override (e.g., COM12 or /dev/ttyACM0)")
		configFlag    = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag      = flag.Bool("mock", false, "Use mocked device instead of serial port")
		frequencyFlag = flag.Int("frequency", 0, "Sampling frequency override in Hz (must match firmware)")
		encodingFlag  = flag.String("encoding", "", "Wire encoding override: text, text-timestamp or binary (must match firmware)")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Command line overrides
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *frequencyFlag != 0 {
		cfg.Sampling.FrequencyHz = *frequencyFlag
	}
	if *encodingFlag != "" {
		cfg.Sampling.Encoding = *encodingFlag
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Create Fyne application
	application := app.NewWithID("com.itohio.goeeg")

	// Create main window
	window := application.NewWindow("EEG Monitor")
	window.Resize(fyne.NewSize(1200, 800))
	window.CenterOnScreen()

	// Create signal monitor
	signalMonitor := monitor.New(cfg)

	// Create application state
	appState := &appState{
		cfg:     cfg,
		device:  nil,
		monitor: signalMonitor,
		window:  window,
		useMock: *mockFlag,
	}

	// Create toolbar
	toolbar := createToolbar(appState)

	// Create scope widget for the signal trace
	scopeWidget := scope.New(cfg)
	appState.scopeWidget = scopeWidget

	// Create border layout with toolbar at top and scope widget as content
	content := container.NewBorder(
		toolbar,
		nil,
		nil,
		nil,
		scopeWidget,
	)

	window.SetContent(content)
	window.ShowAndRun()
}

// measurementChain tracks the components of the measurement chain for graceful shutdown.
type measurementChain struct {
	device           eeg.Device
	rawSamples       <-chan eeg.RawSample
	samplesStream    <-chan sample.Sample
	monitorGoroutine chan struct{} // Closed when monitor goroutine exits
}

// appState holds the application state.
type appState struct {
	cfg         *config.Config
	device      eeg.Device
	monitor     *monitor.Monitor
	scopeWidget *scope.ScopeWidget
	window      fyne.Window
	connectBtn  *widget.Button
	useMock     bool
	chain       *measurementChain // Current measurement chain (nil if not connected)

	// Throttling for scope updates
	lastUpdateTime time.Time
	updateMu       sync.Mutex
}

// createToolbar creates the application toolbar with Connect and Settings buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	// Connect button with icon
	connectBtn := widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	// Settings button with icon
	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	return container.NewBorder(
		nil, // top
		nil, // bottom
		container.NewHBox(connectBtn, settingsBtn), // left
		nil, // right
		nil, // center (spacer)
	)
}

// closeMeasurementChain gracefully closes the measurement chain.
// Waits for all goroutines to finish and channels to drain.
func closeMeasurementChain(chain *measurementChain) {
	if chain == nil {
		return
	}

	// Close device - this will close the rawSamples channel
	if chain.device != nil {
		chain.device.Close()
	}

	// Wait for the monitor goroutine to finish. It exits when samplesStream
	// closes, which happens when the converter finishes draining.
	if chain.monitorGoroutine != nil {
		<-chain.monitorGoroutine
	}
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.device != nil && state.device.IsConnected() {
		// Disconnect - gracefully close measurement chain
		closeMeasurementChain(state.chain)
		state.chain = nil
		state.device = nil
		if state.useMock {
			fmt.Println("Disconnected from mocked device")
		} else {
			fmt.Println("Disconnected from serial port")
		}
		return
	}

	// Connect
	var device eeg.Device
	if state.useMock {
		device = eeg.NewMock(&state.cfg.Mock)
		fmt.Println("Using mocked device")
	} else {
		device = eeg.New(state.cfg.Serial.Port, state.cfg.Serial.BaudRate, eeg.DefaultBufferSize, state.cfg.Mode())
	}

	if err := device.Connect(); err != nil {
		if state.useMock {
			dialog.ShowError(fmt.Errorf("failed to connect to mocked device: %w", err), state.window)
		} else {
			dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
		}
		return
	}
	state.device = device
	if state.useMock {
		fmt.Printf("Connected to mocked device\n")
	} else {
		fmt.Printf("Connected to serial port: %s\n", state.cfg.Serial.Port)
	}

	// Reset monitor shutdown flag for new chain
	state.monitor.ResetShutdown()

	// Register callback to update the scope widget, throttled so the UI
	// refresh rate stays bounded regardless of the sampling frequency.
	state.monitor.OnUpdate(func(samples []sample.Sample, stats monitor.Stats) {
		state.updateMu.Lock()
		if time.Since(state.lastUpdateTime) < 50*time.Millisecond {
			state.updateMu.Unlock()
			return
		}
		state.lastUpdateTime = time.Now()
		state.updateMu.Unlock()

		fyne.Do(func() {
			state.scopeWidget.UpdateData(samples, stats)
		})
	})

	// Build the measurement chain: device -> converter -> monitor
	rawSamples := device.Samples()
	converter := sample.NewConverter(state.cfg, eeg.DefaultBufferSize)
	samplesStream := converter(rawSamples)

	monitorDone := make(chan struct{})
	go func() {
		defer close(monitorDone)
		state.monitor.ProcessSamples(samplesStream)
	}()

	state.chain = &measurementChain{
		device:           device,
		rawSamples:       rawSamples,
		samplesStream:    samplesStream,
		monitorGoroutine: monitorDone,
	}
}
