package eeg

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/itohio/goeeg/pkg/stream"
)

const (
	// DefaultBaudRate is the standard baud rate for the electrode firmware.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the samples channel buffer.
	DefaultBufferSize = 256
)

// RawSample represents one electrode reading received from the MCU.
type RawSample struct {
	Timestamp time.Time // host receive time
	Millis    uint32    // device millisecond clock; 0 when the framing mode omits it
	Value     uint16    // raw ADC reading
}

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial represents a connection to the electrode MCU.
type Serial struct {
	port     string
	baudRate int
	bufSize  int
	mode     stream.Mode

	conn      serial.Port
	samples   chan RawSample
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
}

// New creates a new Serial device for the given port. mode must match the
// framing the firmware was built with; there is no negotiation on the wire.
func New(port string, baudRate int, bufSize int, mode stream.Mode) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:      port,
		baudRate:  baudRate,
		bufSize:   bufSize,
		mode:      mode,
		samples:   make(chan RawSample, bufSize),
		ctx:       ctx,
		cancel:    cancel,
		connected: false,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Connect connects to the serial port and starts reading samples.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}

	mode := &serial.Mode{
		BaudRate: d.baudRate,
	}

	port, err := serial.Open(d.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.conn = port
	d.connected = true

	// Start reading samples in a goroutine
	go d.readSamples()

	return nil
}

// Close closes the connection and stops reading samples.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	// Cancel context to stop reading goroutine
	d.cancel()

	// Close serial port
	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		d.conn = nil
	}

	d.connected = false

	// Close samples channel
	close(d.samples)

	return nil
}

// Samples returns the channel for reading samples.
func (d *Serial) Samples() <-chan RawSample {
	return d.samples
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// readSamples decodes the incoming byte stream into RawSamples according to
// the configured framing mode.
func (d *Serial) readSamples() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in readSamples: %v", r)
		}
	}()

	if d.mode == stream.ModeBinary {
		d.readBinaryFrames(d.conn)
		return
	}
	d.readLines(d.conn)
}

// readLines reads newline-terminated text frames. Lines are
// self-synchronizing: a malformed line is logged and discarded and the next
// line is independent of it.
func (d *Serial) readLines(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for {
		select {
		case <-d.ctx.Done():
			return
		default:
			if !scanner.Scan() {
				// Scanner stopped (EOF or error)
				if err := scanner.Err(); err != nil {
					if err != io.EOF {
						log.Printf("Error reading from serial port: %v", err)
					}
				}
				return
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			sample, err := parseLine(line, d.mode)
			if err != nil {
				log.Printf("Failed to parse line '%s': %v", line, err)
				continue
			}

			d.push(sample)
		}
	}
}

// readBinaryFrames reads fixed 2-byte little-endian frames. The stream has
// no resynchronization marker: framing is purely by byte count, so a byte
// lost on the channel permanently shifts every following frame. That is the
// documented wire contract, not something to paper over here.
func (d *Serial) readBinaryFrames(r io.Reader) {
	br := bufio.NewReader(r)
	frame := make([]byte, stream.BinaryFrameSize)
	for {
		select {
		case <-d.ctx.Done():
			return
		default:
			if _, err := io.ReadFull(br, frame); err != nil {
				if err != io.EOF && err != io.ErrUnexpectedEOF {
					log.Printf("Error reading from serial port: %v", err)
				}
				return
			}

			value, err := stream.DecodeBinary(frame)
			if err != nil {
				log.Printf("Failed to decode frame: %v", err)
				continue
			}

			d.push(RawSample{
				Timestamp: time.Now(),
				Value:     value,
			})
		}
	}
}

// push sends a sample to the channel without blocking the reader.
func (d *Serial) push(sample RawSample) {
	select {
	case d.samples <- sample:
	case <-d.ctx.Done():
	default:
		// Channel full, log and skip
		log.Printf("Samples channel full, dropping sample")
	}
}

// parseLine parses one text frame from the MCU into a RawSample.
// ModeText carries a bare decimal value ("512"), ModeTextTimestamp prefixes
// it with the device millisecond clock ("1500,512").
func parseLine(line string, mode stream.Mode) (RawSample, error) {
	sample := RawSample{Timestamp: time.Now()}

	valueStr := line
	if mode == stream.ModeTextTimestamp {
		parts := strings.Split(line, ",")
		if len(parts) != 2 {
			return RawSample{}, fmt.Errorf("invalid line format: expected 2 comma-separated values, got %d", len(parts))
		}

		millis, err := strconv.ParseUint(parts[0], 10, 32)
		if err != nil {
			return RawSample{}, fmt.Errorf("invalid timestamp: %w", err)
		}
		sample.Millis = uint32(millis)
		valueStr = parts[1]
	} else if strings.ContainsRune(line, ',') {
		return RawSample{}, fmt.Errorf("unexpected field separator in %q", line)
	}

	value, err := strconv.ParseUint(valueStr, 10, 16)
	if err != nil {
		return RawSample{}, fmt.Errorf("invalid reading: %w", err)
	}
	sample.Value = uint16(value)

	return sample, nil
}
