// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/audplayer/plugin"
)

// fakeMP3Stream simulates gomp3.Decoder: a seekable stream of 16-bit
// stereo PCM where sample i of the left channel carries the value i.
type fakeMP3Stream struct {
	sampleRate int
	frames     int64
	pos        int64 // byte offset
}

func (s *fakeMP3Stream) SampleRate() int { return s.sampleRate }
func (s *fakeMP3Stream) Length() int64   { return s.frames * frameBytes }

func (s *fakeMP3Stream) Read(buf []byte) (int, error) {
	total := s.frames * frameBytes
	if s.pos >= total {
		return 0, io.EOF
	}

	n := int64(len(buf))
	if n > total-s.pos {
		n = total - s.pos
	}
	n -= n % frameBytes

	for i := int64(0); i < n; i += frameBytes {
		frame := (s.pos + i) / frameBytes
		binary.LittleEndian.PutUint16(buf[i:], uint16(frame))   // left
		binary.LittleEndian.PutUint16(buf[i+2:], uint16(frame)) // right
	}

	s.pos += n
	return int(n), nil
}

func (s *fakeMP3Stream) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		s.pos = offset
	case io.SeekCurrent:
		s.pos += offset
	case io.SeekEnd:
		s.pos = s.frames*frameBytes + offset
	}
	return s.pos, nil
}

func newFakeDecoder(frames int64) *Decoder {
	stream := &fakeMP3Stream{sampleRate: 44100, frames: frames}
	return &Decoder{
		dec:        stream,
		sampleRate: stream.SampleRate(),
		unitCount:  uint64(frames),
		durationMs: uint64(frames) * 1000 / 44100,
	}
}

func TestDecoder_Metadata(t *testing.T) {
	t.Parallel()

	d := newFakeDecoder(44100)

	if d.SampleRate() != 44100 {
		t.Errorf("SampleRate() = %d, want 44100", d.SampleRate())
	}
	if d.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", d.Channels())
	}
	if d.BitsPerSample() != 16 {
		t.Errorf("BitsPerSample() = %d, want 16", d.BitsPerSample())
	}
	if d.UnitCount() != 44100 {
		t.Errorf("UnitCount() = %d, want 44100", d.UnitCount())
	}
	if d.Duration() != 1000 {
		t.Errorf("Duration() = %d, want 1000", d.Duration())
	}
	if d.AudioMode() != plugin.AudioModeStereo {
		t.Errorf("AudioMode() = %v, want stereo", d.AudioMode())
	}
}

func TestDecoder_DecodeAdvancesUnits(t *testing.T) {
	t.Parallel()

	d := newFakeDecoder(10000)
	buf := make([]byte, d.MaxBytesPerUnit())

	used, units, err := d.DecodeUnit(buf)
	if err != nil {
		t.Fatalf("DecodeUnit() error = %v", err)
	}
	if units != unitsPerRead {
		t.Errorf("DecodeUnit() units = %d, want %d", units, unitsPerRead)
	}
	if used != units*frameBytes {
		t.Errorf("DecodeUnit() used = %d, want %d", used, units*frameBytes)
	}
	if d.UnitIndex() != uint64(units) {
		t.Errorf("UnitIndex() = %d, want %d", d.UnitIndex(), units)
	}
}

func TestDecoder_DecodeToEnd(t *testing.T) {
	t.Parallel()

	d := newFakeDecoder(5000)
	buf := make([]byte, d.MaxBytesPerUnit())

	var total int
	for {
		_, units, err := d.DecodeUnit(buf)
		if units == 0 {
			if !errors.Is(err, io.EOF) {
				t.Fatalf("DecodeUnit() at end: err = %v, want io.EOF", err)
			}
			break
		}
		total += units
	}

	if total != 5000 {
		t.Errorf("decoded %d units, want 5000", total)
	}
}

func TestDecoder_SeekIsFrameExact(t *testing.T) {
	t.Parallel()

	d := newFakeDecoder(10000)
	d.SetUnitIndex(1234)

	if d.UnitIndex() != 1234 {
		t.Fatalf("UnitIndex() = %d, want 1234", d.UnitIndex())
	}

	buf := make([]byte, d.MaxBytesPerUnit())
	_, units, err := d.DecodeUnit(buf)
	if err != nil || units == 0 {
		t.Fatalf("DecodeUnit() after seek: units=%d err=%v", units, err)
	}

	if frame := binary.LittleEndian.Uint16(buf); frame != 1234 {
		t.Errorf("first frame after seek = %d, want 1234", frame)
	}
}

func TestDecoder_SeekClampsToEnd(t *testing.T) {
	t.Parallel()

	d := newFakeDecoder(100)
	d.SetUnitIndex(1 << 30)

	if d.UnitIndex() != 100 {
		t.Errorf("UnitIndex() = %d, want clamp to 100", d.UnitIndex())
	}
}

func TestDecoder_OpenInvalidFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bogus.mp3")
	if err := os.WriteFile(path, []byte("This is not MP3 data"), 0o644); err != nil {
		t.Fatal(err)
	}

	var d Decoder
	if err := d.Open(path); err == nil {
		d.Close()
		t.Fatal("Open() error = nil, want error for invalid data")
	}
}

func TestDecoder_NotOpen(t *testing.T) {
	t.Parallel()

	var d Decoder
	if _, _, err := d.DecodeUnit(make([]byte, 16)); !errors.Is(err, ErrNotOpen) {
		t.Errorf("DecodeUnit() err = %v, want ErrNotOpen", err)
	}
}

func TestAgent(t *testing.T) {
	t.Parallel()

	agent := Agent{}
	if agent.Type() != plugin.TypeDecoder {
		t.Errorf("Type() = %v, want decoder", agent.Type())
	}

	obj := agent.CreateObject()
	if _, ok := obj.(plugin.Decoder); !ok {
		t.Fatalf("CreateObject() = %T, want plugin.Decoder", obj)
	}
	agent.FreeObject(obj)
}
