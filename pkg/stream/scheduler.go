package stream

import (
	"fmt"
	"io"
)

const (
	// MicrosPerSecond is the resolution of the scheduler clock.
	MicrosPerSecond = 1_000_000
	// MaxFrequencyHz is the highest sampling frequency that still yields a
	// nonzero interval on the microsecond clock.
	MaxFrequencyHz = MicrosPerSecond
)

// ErrInvalidFrequency is returned by New when the configured sampling
// frequency does not yield a positive sampling interval.
var ErrInvalidFrequency = fmt.Errorf("sampling frequency must be in (0, %d] Hz", MaxFrequencyHz)

// Source produces one signal sample on demand. Read must be synchronous and
// is assumed to return in a time negligible compared to the sampling
// interval; a slow Read steals from the sampling budget and is absorbed by
// the scheduler's overrun recovery.
type Source interface {
	Read() uint16
}

// SourceFunc adapts a plain function to the Source interface.
type SourceFunc func() uint16

// Read calls f.
func (f SourceFunc) Read() uint16 { return f() }

// Config holds the scheduler configuration.
type Config struct {
	// FrequencyHz is the target sampling frequency. Must be in (0, 1e6].
	FrequencyHz int
	// Encoding selects the wire framing for emitted samples.
	Encoding Mode
}

// Scheduler emits samples at a fixed cadence on a free-running microsecond
// clock supplied by the caller. It owns the next-sample deadline and keeps
// the long-run emission rate equal to the configured frequency even when
// individual iterations take variable time.
//
// The clock is modular: instants wrap around after 2^32 microseconds
// (about 71.6 minutes) and all comparisons are performed in that modular
// arithmetic, so a wrap between two ticks is not a timing event.
//
// Scheduler is not safe for concurrent use; it is meant to be driven from a
// single polling loop.
type Scheduler struct {
	interval uint32
	next     uint32
	started  bool

	mode Mode
	src  Source
	out  io.Writer
	buf  []byte

	emitted uint32
	dropped uint32
}

// New creates a Scheduler that reads from src and writes encoded frames to
// out. Writes are fire-and-forget: a short or failed write skips that
// emission and the scheduler proceeds to the next deadline.
func New(cfg Config, src Source, out io.Writer) (*Scheduler, error) {
	if cfg.FrequencyHz <= 0 || cfg.FrequencyHz > MaxFrequencyHz {
		return nil, fmt.Errorf("frequency %d Hz: %w", cfg.FrequencyHz, ErrInvalidFrequency)
	}

	return &Scheduler{
		interval: uint32(MicrosPerSecond / cfg.FrequencyHz),
		mode:     cfg.Encoding,
		src:      src,
		out:      out,
		buf:      make([]byte, 0, maxFrameSize),
	}, nil
}

// Interval returns the sampling interval in microseconds.
func (s *Scheduler) Interval() uint32 { return s.interval }

// Deadline returns the current next-sample deadline on the modular
// microsecond clock. Before the first Tick the deadline is not established
// and the returned value is meaningless.
func (s *Scheduler) Deadline() uint32 { return s.next }

// Emitted returns the number of frames emitted so far.
func (s *Scheduler) Emitted() uint32 { return s.emitted }

// Dropped returns the number of deadlines skipped by overrun recovery.
func (s *Scheduler) Dropped() uint32 { return s.dropped }

// Tick checks the deadline against now, a free-running microsecond clock
// value, and emits at most one sample. It never blocks and returns
// immediately whether or not a sample was due; callers poll it in a loop.
//
// The very first Tick establishes the deadline at now, so the first sample
// is emitted immediately.
func (s *Scheduler) Tick(now uint32) bool {
	if !s.started {
		s.next = now
		s.started = true
	}

	// Wraparound-safe "now >= next": the unsigned difference read as a
	// signed value is non-negative iff now has reached the deadline, as
	// long as the two instants are within half the clock range.
	if int32(now-s.next) < 0 {
		return false
	}

	s.emit(now)
	s.next += s.interval

	// Overrun recovery: if the deadline just advanced is already at least
	// one full interval in the past, the loop body outran the sampling
	// period. Resynchronize to now instead of emitting a catch-up burst,
	// trading a momentary gap for bounded long-run phase error.
	if behind := now - s.next; int32(behind) >= 0 && behind >= s.interval {
		s.dropped += behind/s.interval + 1
		s.next = now + s.interval
	}

	return true
}

// emit reads one sample, encodes it and writes the frame. Transport errors
// are deliberately discarded: the wire contract has no acknowledgement and
// the scheduler has no buffering or retry of its own.
func (s *Scheduler) emit(now uint32) {
	value := s.src.Read()
	s.buf = s.mode.AppendFrame(s.buf[:0], now/1000, value)
	s.out.Write(s.buf)
	s.emitted++
}
