// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"fmt"
	"io"
	"os"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/audplayer/plugin"
)

// go-mp3 always emits 16-bit stereo PCM, so one audio unit (one output
// frame) is four bytes.
const (
	frameBytes   = 4
	unitsPerRead = 4096
)

// mp3Stream is the slice of gomp3.Decoder the plugin uses, split out so
// tests can substitute a fake.
type mp3Stream interface {
	io.ReadSeeker
	Length() int64
	SampleRate() int
}

// Decoder streams MP3 files as audio units, one unit per decoded PCM
// frame.
type Decoder struct {
	f   *os.File
	dec mp3Stream

	sampleRate int

	unitIndex uint64
	unitCount uint64

	durationMs uint64
	bitRate    int
}

func (d *Decoder) FileSuffix() []string { return []string{"mp3"} }

func (d *Decoder) Open(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening mp3 file: %w", err)
	}

	dec, err := gomp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("decoding mp3 stream: %w", err)
	}

	length := dec.Length()
	if length <= 0 {
		f.Close()
		return ErrUnknownStreamLength
	}

	d.f = f
	d.dec = dec
	d.sampleRate = dec.SampleRate()
	d.unitCount = uint64(length / frameBytes)
	d.unitIndex = 0
	d.durationMs = d.unitCount * 1000 / uint64(d.sampleRate)

	d.bitRate = -1
	if fi, err := f.Stat(); err == nil && d.durationMs > 0 {
		// Average over the whole file; MP3 frames may be VBR.
		d.bitRate = int(fi.Size() * 8 / int64(d.durationMs))
	}

	return nil
}

func (d *Decoder) Close() {
	if d.f != nil {
		d.f.Close()
		d.f = nil
	}
	d.dec = nil
}

func (d *Decoder) DecodeUnit(buf []byte) (int, int, error) {
	if d.dec == nil {
		return 0, 0, ErrNotOpen
	}

	remaining := int64(d.unitCount) - int64(d.unitIndex)
	if remaining <= 0 {
		return 0, 0, io.EOF
	}

	units := unitsPerRead
	if int64(units) > remaining {
		units = int(remaining)
	}
	if limit := len(buf) / frameBytes; units > limit {
		units = limit
	}

	n, err := io.ReadFull(d.dec, buf[:units*frameBytes])
	n -= n % frameBytes
	units = n / frameBytes
	if units == 0 {
		if err == nil || err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return 0, 0, err
	}

	d.unitIndex += uint64(units)
	return n, units, nil
}

func (d *Decoder) SetUnitIndex(index uint64) {
	if d.dec == nil {
		return
	}
	if index > d.unitCount {
		index = d.unitCount
	}

	if _, err := d.dec.Seek(int64(index)*frameBytes, io.SeekStart); err != nil {
		return
	}
	d.unitIndex = index
}

func (d *Decoder) UnitIndex() uint64 { return d.unitIndex }
func (d *Decoder) UnitCount() uint64 { return d.unitCount }
func (d *Decoder) MaxBytesPerUnit() int { return unitsPerRead * frameBytes }
func (d *Decoder) Duration() uint64 { return d.durationMs }
func (d *Decoder) BitRate() int { return d.bitRate }
func (d *Decoder) SampleRate() int { return d.sampleRate }
func (d *Decoder) BitsPerSample() int { return 16 }
func (d *Decoder) Channels() int { return 2 }

func (d *Decoder) AudioMode() plugin.AudioMode { return plugin.AudioModeStereo }

func (d *Decoder) Options() []plugin.Option { return nil }

// Agent is the mp3 plugin's factory handle.
type Agent struct{}

func (Agent) Type() plugin.Type { return plugin.TypeDecoder }

func (Agent) Info() plugin.Info {
	return plugin.Info{Name: "mp3", Description: "MP3 decoder", Version: "1.0.0"}
}

func (Agent) CreateObject() any { return &Decoder{} }

func (Agent) FreeObject(obj any) {
	if d, ok := obj.(*Decoder); ok {
		d.Close()
	}
}
