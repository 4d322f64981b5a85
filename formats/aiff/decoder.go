// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audplayer/plugin"
	"github.com/ik5/audplayer/utils"
)

const unitsPerRead = 4096

// aiffReader is the slice of aiff.Decoder the plugin uses, split out so
// tests can substitute a fake.
type aiffReader interface {
	Format() *goaudio.Format
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Decoder plays AIFF files as audio units, one unit per PCM frame. The
// go-audio AIFF decoder cannot seek, so the whole PCM payload is decoded
// into memory at Open and units are served from there.
type Decoder struct {
	opened bool

	pcm []int16 // interleaved

	sampleRate int
	channels   int

	unitIndex uint64
	unitCount uint64

	durationMs uint64
	bitRate    int
}

func (d *Decoder) FileSuffix() []string { return []string{"aiff", "aif"} }

func (d *Decoder) Open(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening aiff file: %w", err)
	}
	defer f.Close()

	dec := aiff.NewDecoder(f)
	if !dec.IsValidFile() {
		return ErrNotAiffFile
	}

	dec.ReadInfo()
	if dec.BitDepth != 16 {
		return ErrOnlyPCM16bitSupported
	}

	format := dec.Format()
	if format == nil || format.NumChannels == 0 || format.SampleRate == 0 {
		return ErrUnsupportedAiffLayout
	}

	pcm, err := readAllPCM(dec, format)
	if err != nil {
		return fmt.Errorf("decoding aiff data: %w", err)
	}

	d.opened = true
	d.pcm = pcm
	d.channels = format.NumChannels
	d.sampleRate = format.SampleRate
	d.unitIndex = 0
	d.unitCount = uint64(len(pcm) / d.channels)
	d.durationMs = d.unitCount * 1000 / uint64(d.sampleRate)
	d.bitRate = d.sampleRate * d.channels * 16 / 1000

	return nil
}

func readAllPCM(r aiffReader, format *goaudio.Format) ([]int16, error) {
	buf := &goaudio.IntBuffer{
		Data:   make([]int, unitsPerRead*format.NumChannels),
		Format: format,
	}

	var pcm []int16
	for {
		n, err := r.PCMBuffer(buf)
		if n > 0 {
			for _, v := range buf.Data[:n] {
				pcm = append(pcm, int16(v))
			}
		}
		if err == io.EOF || n == 0 {
			return pcm, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func (d *Decoder) Close() {
	d.opened = false
	d.pcm = nil
}

func (d *Decoder) DecodeUnit(buf []byte) (int, int, error) {
	if !d.opened {
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

	start := int(d.unitIndex) * d.channels
	used := utils.Int16ToPCM16(buf, d.pcm[start:start+units*d.channels])
	d.unitIndex += uint64(units)

	return used, units, nil
}

func (d *Decoder) SetUnitIndex(index uint64) {
	if index > d.unitCount {
		index = d.unitCount
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

// Agent is the aiff plugin's factory handle.
type Agent struct{}

func (Agent) Type() plugin.Type { return plugin.TypeDecoder }

func (Agent) Info() plugin.Info {
	return plugin.Info{Name: "aiff", Description: "AIFF decoder", Version: "1.0.0"}
}

func (Agent) CreateObject() any { return &Decoder{} }

func (Agent) FreeObject(obj any) {
	if d, ok := obj.(*Decoder); ok {
		d.Close()
	}
}
