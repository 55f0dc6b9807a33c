package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMode_AppendFrame(t *testing.T) {
	tests := []struct {
		name   string
		mode   Mode
		millis uint32
		value  uint16
		want   []byte
	}{
		{
			name:  "text - zero",
			mode:  ModeText,
			value: 0,
			want:  []byte("0\n"),
		},
		{
			name:  "text - mid range",
			mode:  ModeText,
			value: 2048,
			want:  []byte("2048\n"),
		},
		{
			name:   "text ignores timestamp",
			mode:   ModeText,
			millis: 123456,
			value:  512,
			want:   []byte("512\n"),
		},
		{
			name:   "text-timestamp",
			mode:   ModeTextTimestamp,
			millis: 1500,
			value:  4095,
			want:   []byte("1500,4095\n"),
		},
		{
			name:   "text-timestamp - clock wrapped to zero",
			mode:   ModeTextTimestamp,
			millis: 0,
			value:  1,
			want:   []byte("0,1\n"),
		},
		{
			name:   "text-timestamp - max clock",
			mode:   ModeTextTimestamp,
			millis: 4294967295,
			value:  65535,
			want:   []byte("4294967295,65535\n"),
		},
		{
			name:  "binary - low byte first",
			mode:  ModeBinary,
			value: 0x1234,
			want:  []byte{0x34, 0x12},
		},
		{
			name:  "binary - zero",
			mode:  ModeBinary,
			value: 0,
			want:  []byte{0x00, 0x00},
		},
		{
			name:  "binary - max value",
			mode:  ModeBinary,
			value: 0xFFFF,
			want:  []byte{0xFF, 0xFF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.mode.AppendFrame(nil, tt.millis, tt.value)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMode_AppendFrame_Deterministic(t *testing.T) {
	for _, mode := range []Mode{ModeText, ModeTextTimestamp, ModeBinary} {
		a := mode.AppendFrame(nil, 98765, 3301)
		b := mode.AppendFrame(nil, 98765, 3301)
		assert.Equal(t, a, b, "mode %s must be a pure function of its input", mode)
	}
}

func TestMode_AppendFrame_ReusesBuffer(t *testing.T) {
	buf := make([]byte, 0, maxFrameSize)
	got := ModeTextTimestamp.AppendFrame(buf, 4294967295, 65535)
	assert.Equal(t, "4294967295,65535\n", string(got))
	assert.LessOrEqual(t, len(got), maxFrameSize)
	assert.Equal(t, maxFrameSize, cap(got), "the longest frame must fit without reallocation")
}

func TestBinary_RoundTrip(t *testing.T) {
	// decode(encode(v)) == v over the full 16-bit range.
	for v := 0; v <= 0xFFFF; v++ {
		frame := ModeBinary.AppendFrame(nil, 0, uint16(v))
		require.Len(t, frame, BinaryFrameSize)
		got, err := DecodeBinary(frame)
		require.NoError(t, err)
		if uint16(v) != got {
			t.Fatalf("round trip failed for %d: got %d", v, got)
		}
	}
}

func TestDecodeBinary_WrongLength(t *testing.T) {
	_, err := DecodeBinary([]byte{0x01})
	assert.Error(t, err)
	_, err = DecodeBinary([]byte{0x01, 0x02, 0x03})
	assert.Error(t, err)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "text", want: ModeText},
		{in: "text-timestamp", want: ModeTextTimestamp},
		{in: "binary", want: ModeBinary},
		{in: "", wantErr: true},
		{in: "csv", wantErr: true},
		{in: "Binary", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestMode_FrameSize(t *testing.T) {
	assert.Equal(t, 0, ModeText.FrameSize())
	assert.Equal(t, 0, ModeTextTimestamp.FrameSize())
	assert.Equal(t, BinaryFrameSize, ModeBinary.FrameSize())
}
