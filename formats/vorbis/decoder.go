// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"
	"os"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/audplayer/plugin"
	"github.com/ik5/audplayer/utils"
)

const unitsPerRead = 4096

// oggStream is the slice of oggvorbis.Reader the plugin uses, split out
// so tests can substitute a fake.
type oggStream interface {
	Read(p []float32) (int, error)
	SetPosition(pos int64) error
	Length() int64
	SampleRate() int
	Channels() int
}

// Decoder streams Ogg Vorbis files as audio units, one unit per frame.
// The float32 output of the vorbis decoder is rendered to 16-bit PCM.
type Decoder struct {
	f   *os.File
	dec oggStream

	sampleRate int
	channels   int

	unitIndex uint64
	unitCount uint64

	durationMs uint64
	bitRate    int

	pcm []float32 // scratch between the vorbis reader and the PCM buffer
}

func (d *Decoder) FileSuffix() []string { return []string{"ogg", "oga"} }

func (d *Decoder) Open(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening vorbis file: %w", err)
	}

	dec, err := oggvorbis.NewReader(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("reading vorbis stream: %w", err)
	}

	length := dec.Length()
	if length <= 0 {
		f.Close()
		return ErrUnknownStreamLength
	}

	d.f = f
	d.dec = dec
	d.sampleRate = dec.SampleRate()
	d.channels = dec.Channels()
	d.unitIndex = 0
	d.unitCount = uint64(length)
	d.durationMs = d.unitCount * 1000 / uint64(d.sampleRate)

	d.bitRate = -1
	if fi, err := f.Stat(); err == nil && d.durationMs > 0 {
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
	d.pcm = nil
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
	if limit := len(buf) / (d.channels * 2); units > limit {
		units = limit
	}

	need := units * d.channels
	if cap(d.pcm) < need {
		d.pcm = make([]float32, need)
	}
	d.pcm = d.pcm[:need]

	filled := 0
	var readErr error
	for filled < need {
		n, err := d.dec.Read(d.pcm[filled:need])
		filled += n
		if err != nil {
			readErr = err
			break
		}
		if n == 0 {
			break
		}
	}

	filled -= filled % d.channels
	units = filled / d.channels
	if units == 0 {
		if readErr == nil {
			readErr = io.EOF
		}
		return 0, 0, readErr
	}

	used := utils.Float32ToPCM16(buf, d.pcm[:filled])
	d.unitIndex += uint64(units)

	return used, units, nil
}

func (d *Decoder) SetUnitIndex(index uint64) {
	if d.dec == nil {
		return
	}
	if index > d.unitCount {
		index = d.unitCount
	}

	if err := d.dec.SetPosition(int64(index)); err != nil {
		return
	}
	d.unitIndex = index
}

func (d *Decoder) UnitIndex() uint64 { return d.unitIndex }
func (d *Decoder) UnitCount() uint64 { return d.unitCount }
func (d *Decoder) MaxBytesPerUnit() int { return unitsPerRead * d.channels * 2 }
func (d *Decoder) Duration() uint64 { return d.durationMs }
func (d *Decoder) BitRate() int { return d.bitRate }
func (d *Decoder) SampleRate() int { return d.sampleRate }
func (d *Decoder) BitsPerSample() int { return 16 }
func (d *Decoder) Channels() int { return d.channels }

func (d *Decoder) AudioMode() plugin.AudioMode {
	if d.channels == 1 {
		return plugin.AudioModeMono
	}
	return plugin.AudioModeStereo
}

func (d *Decoder) Options() []plugin.Option { return nil }

// Agent is the vorbis plugin's factory handle.
type Agent struct{}

func (Agent) Type() plugin.Type { return plugin.TypeDecoder }

func (Agent) Info() plugin.Info {
	return plugin.Info{Name: "vorbis", Description: "Ogg Vorbis decoder", Version: "1.0.0"}
}

func (Agent) CreateObject() any { return &Decoder{} }

func (Agent) FreeObject(obj any) {
	if d, ok := obj.(*Decoder); ok {
		d.Close()
	}
}
