package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/itohio/goeeg/pkg/stream"
)

// Config represents the application configuration.
type Config struct {
	Serial   SerialConfig   `yaml:"serial"`
	Sampling SamplingConfig `yaml:"sampling"`
	ADC      ADCConfig      `yaml:"adc"`
	Display  DisplayConfig  `yaml:"display"`
	Mock     MockConfig     `yaml:"mock"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// SamplingConfig contains the electrode sampling parameters. The values must
// match the firmware build flashed on the device: the host cannot negotiate
// them over the wire.
type SamplingConfig struct {
	FrequencyHz int    `yaml:"frequency_hz"`
	Encoding    string `yaml:"encoding"` // text, text-timestamp or binary
}

// ADCConfig describes the converter on the electrode board.
type ADCConfig struct {
	Max  int     `yaml:"max"`  // full-scale reading (4095 for 12-bit)
	VRef float64 `yaml:"vref"` // reference voltage (V)
	Bias float64 `yaml:"bias"` // electrode bias voltage (V), typically VRef/2
}

// DisplayConfig contains oscillogram display parameters.
type DisplayConfig struct {
	WindowSeconds float64 `yaml:"window_seconds"`
	MaxPoints     int     `yaml:"max_points"`
}

// MockConfig contains mock device configuration. The mock synthesizes an
// amplified EEG-like signal around the bias point.
type MockConfig struct {
	FrequencyHz    int     `yaml:"frequency_hz"`    // mock sampling rate
	AlphaFrequency float64 `yaml:"alpha_frequency"` // dominant rhythm (Hz)
	AlphaAmplitude float64 `yaml:"alpha_amplitude"` // rhythm amplitude (V)
	MainsAmplitude float64 `yaml:"mains_amplitude"` // 50 Hz hum amplitude (V)
	NoiseLevel     float64 `yaml:"noise_level"`     // broadband noise (V)
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port:     "COM12", // Default for Windows, should be "/dev/ttyACM0" on Linux/Mac
			BaudRate: 115200,
		},
		Sampling: SamplingConfig{
			FrequencyHz: 1000,
			Encoding:    stream.ModeTextTimestamp.String(),
		},
		ADC: ADCConfig{
			Max:  4095,
			VRef: 5.0,
			Bias: 2.5,
		},
		Display: DisplayConfig{
			WindowSeconds: 5,
			MaxPoints:     1000,
		},
		Mock: MockConfig{
			FrequencyHz:    250,
			AlphaFrequency: 10.0,
			AlphaAmplitude: 0.2,
			MainsAmplitude: 0.05,
			NoiseLevel:     0.02,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Ensure minimum required fields are set (use defaults if missing)
	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the fields that have no usable fallback. These are fatal
// at startup: a zero sampling interval or an unknown encoding cannot be
// papered over with a default without silently changing the wire contract.
func (c *Config) Validate() error {
	if c.Sampling.FrequencyHz <= 0 || c.Sampling.FrequencyHz > stream.MaxFrequencyHz {
		return fmt.Errorf("sampling frequency %d Hz: %w", c.Sampling.FrequencyHz, stream.ErrInvalidFrequency)
	}
	if _, err := stream.ParseMode(c.Sampling.Encoding); err != nil {
		return fmt.Errorf("sampling encoding: %w", err)
	}
	if c.Serial.BaudRate <= 0 {
		return fmt.Errorf("baud rate must be positive, got %d", c.Serial.BaudRate)
	}
	if c.ADC.Max <= 0 {
		return fmt.Errorf("ADC full-scale must be positive, got %d", c.ADC.Max)
	}
	return nil
}

// Mode returns the parsed encoding mode. Call Validate first.
func (c *Config) Mode() stream.Mode {
	m, err := stream.ParseMode(c.Sampling.Encoding)
	if err != nil {
		return stream.ModeText
	}
	return m
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Sampling.FrequencyHz == 0 {
		c.Sampling.FrequencyHz = def.Sampling.FrequencyHz
	}
	if c.Sampling.Encoding == "" {
		c.Sampling.Encoding = def.Sampling.Encoding
	}

	if c.ADC.Max == 0 {
		c.ADC.Max = def.ADC.Max
	}
	if c.ADC.VRef == 0 {
		c.ADC.VRef = def.ADC.VRef
	}
	if c.ADC.Bias == 0 {
		c.ADC.Bias = def.ADC.Bias
	}

	if c.Display.WindowSeconds == 0 {
		c.Display.WindowSeconds = def.Display.WindowSeconds
	}
	if c.Display.MaxPoints == 0 {
		c.Display.MaxPoints = def.Display.MaxPoints
	}

	if c.Mock.FrequencyHz == 0 {
		c.Mock.FrequencyHz = def.Mock.FrequencyHz
	}
	if c.Mock.AlphaFrequency == 0 {
		c.Mock.AlphaFrequency = def.Mock.AlphaFrequency
	}
	if c.Mock.AlphaAmplitude == 0 {
		c.Mock.AlphaAmplitude = def.Mock.AlphaAmplitude
	}
	if c.Mock.NoiseLevel == 0 {
		c.Mock.NoiseLevel = def.Mock.NoiseLevel
	}
}
