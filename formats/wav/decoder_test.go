// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/audplayer/internal/audiotest"
	"github.com/ik5/audplayer/plugin"
)

func writeTempWAV(t *testing.T, sampleRate, channels int, samples []int16) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating fixture: %v", err)
	}
	defer f.Close()

	if err := audiotest.WriteWAV16(f, sampleRate, channels, samples); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func rampSamples(n int) []int16 {
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(i)
	}
	return samples
}

func TestDecoder_OpenMono(t *testing.T) {
	t.Parallel()

	path := writeTempWAV(t, 8000, 1, rampSamples(8000))

	var d Decoder
	if err := d.Open(path); err != nil {
		t.Fatalf("Open() error = %v, want nil", err)
	}
	defer d.Close()

	if d.SampleRate() != 8000 {
		t.Errorf("SampleRate() = %d, want 8000", d.SampleRate())
	}
	if d.Channels() != 1 {
		t.Errorf("Channels() = %d, want 1", d.Channels())
	}
	if d.BitsPerSample() != 16 {
		t.Errorf("BitsPerSample() = %d, want 16", d.BitsPerSample())
	}
	if d.UnitCount() != 8000 {
		t.Errorf("UnitCount() = %d, want 8000", d.UnitCount())
	}
	if d.Duration() != 1000 {
		t.Errorf("Duration() = %d, want 1000", d.Duration())
	}
	if d.MaxBytesPerUnit() <= 0 {
		t.Errorf("MaxBytesPerUnit() = %d, want > 0", d.MaxBytesPerUnit())
	}
	if d.AudioMode() != plugin.AudioModeMono {
		t.Errorf("AudioMode() = %v, want mono", d.AudioMode())
	}
}

func TestDecoder_OpenStereo(t *testing.T) {
	t.Parallel()

	// 100 frames of stereo audio.
	path := writeTempWAV(t, 44100, 2, rampSamples(200))

	var d Decoder
	if err := d.Open(path); err != nil {
		t.Fatalf("Open() error = %v, want nil", err)
	}
	defer d.Close()

	if d.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", d.Channels())
	}
	if d.UnitCount() != 100 {
		t.Errorf("UnitCount() = %d, want 100", d.UnitCount())
	}
	if d.AudioMode() != plugin.AudioModeStereo {
		t.Errorf("AudioMode() = %v, want stereo", d.AudioMode())
	}
}

func TestDecoder_DecodeAll(t *testing.T) {
	t.Parallel()

	samples := rampSamples(10000)
	path := writeTempWAV(t, 8000, 1, samples)

	var d Decoder
	if err := d.Open(path); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer d.Close()

	buf := make([]byte, d.MaxBytesPerUnit())
	var got []byte
	var units uint64

	for {
		used, unitCount, err := d.DecodeUnit(buf)
		if unitCount == 0 {
			if !errors.Is(err, io.EOF) {
				t.Fatalf("DecodeUnit() at end: err = %v, want io.EOF", err)
			}
			break
		}
		got = append(got, buf[:used]...)
		units += uint64(unitCount)
	}

	if units != 10000 {
		t.Fatalf("decoded %d units, want 10000", units)
	}
	for i, s := range samples {
		v := int16(binary.LittleEndian.Uint16(got[2*i:]))
		if v != s {
			t.Fatalf("sample %d = %d, want %d", i, v, s)
		}
	}
}

func TestDecoder_SeekToFrame(t *testing.T) {
	t.Parallel()

	path := writeTempWAV(t, 8000, 1, rampSamples(8000))

	var d Decoder
	if err := d.Open(path); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer d.Close()

	d.SetUnitIndex(4000)
	if d.UnitIndex() != 4000 {
		t.Fatalf("UnitIndex() = %d, want 4000", d.UnitIndex())
	}

	buf := make([]byte, d.MaxBytesPerUnit())
	used, units, err := d.DecodeUnit(buf)
	if err != nil || units == 0 {
		t.Fatalf("DecodeUnit() after seek: used=%d units=%d err=%v", used, units, err)
	}

	if v := int16(binary.LittleEndian.Uint16(buf)); v != 4000 {
		t.Errorf("first sample after seek = %d, want 4000", v)
	}
}

func TestDecoder_SeekClampsToEnd(t *testing.T) {
	t.Parallel()

	path := writeTempWAV(t, 8000, 1, rampSamples(100))

	var d Decoder
	if err := d.Open(path); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer d.Close()

	d.SetUnitIndex(1 << 20)
	if d.UnitIndex() != 100 {
		t.Errorf("UnitIndex() = %d, want clamp to 100", d.UnitIndex())
	}

	_, units, err := d.DecodeUnit(make([]byte, d.MaxBytesPerUnit()))
	if units != 0 || err == nil {
		t.Errorf("DecodeUnit() past end: units=%d err=%v, want 0 units and error", units, err)
	}
}

func TestDecoder_InvalidFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bogus.wav")
	if err := os.WriteFile(path, []byte("This is not WAV data"), 0o644); err != nil {
		t.Fatal(err)
	}

	var d Decoder
	if err := d.Open(path); err == nil {
		d.Close()
		t.Fatal("Open() error = nil, want error for invalid data")
	}
}

func TestDecoder_MissingFile(t *testing.T) {
	t.Parallel()

	var d Decoder
	if err := d.Open(filepath.Join(t.TempDir(), "nope.wav")); err == nil {
		t.Fatal("Open() error = nil, want error for missing file")
	}
}

func TestAgent(t *testing.T) {
	t.Parallel()

	agent := Agent{}
	if agent.Type() != plugin.TypeDecoder {
		t.Errorf("Type() = %v, want decoder", agent.Type())
	}

	obj := agent.CreateObject()
	d, ok := obj.(plugin.Decoder)
	if !ok {
		t.Fatalf("CreateObject() = %T, want plugin.Decoder", obj)
	}
	if got := d.FileSuffix(); len(got) != 1 || got[0] != "wav" {
		t.Errorf("FileSuffix() = %v, want [wav]", got)
	}
	agent.FreeObject(obj)
}
