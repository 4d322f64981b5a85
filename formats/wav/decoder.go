// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"
	"os"

	gowav "github.com/go-audio/wav"

	"github.com/ik5/audplayer/plugin"
)

// unitsPerRead is how many PCM frames one DecodeUnit call produces at
// most.
const unitsPerRead = 4096

// Decoder streams 16-bit PCM WAV files as audio units, one unit per PCM
// frame. The header is parsed with go-audio/wav; payload frames are read
// straight from the file so seeks land on exact frame boundaries.
type Decoder struct {
	f         *os.File
	dataStart int64

	blockAlign    int
	channels      int
	sampleRate    int
	bitsPerSample int

	unitIndex uint64
	unitCount uint64

	durationMs uint64
	bitRate    int
}

func (d *Decoder) FileSuffix() []string { return []string{"wav"} }

func (d *Decoder) Open(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening wav file: %w", err)
	}

	dec := gowav.NewDecoder(f)
	dec.ReadInfo()
	if dec.Err() != nil || dec.NumChans == 0 || dec.SampleRate == 0 {
		f.Close()
		return ErrNotWavFile
	}

	if dec.WavAudioFormat != 1 || dec.BitDepth != 16 {
		f.Close()
		return ErrOnlyPCM16bitSupported
	}

	if err := dec.FwdToPCM(); err != nil {
		f.Close()
		return fmt.Errorf("locating wav data chunk: %w", err)
	}

	dataStart, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		f.Close()
		return fmt.Errorf("locating wav data chunk: %w", err)
	}

	d.f = f
	d.dataStart = dataStart
	d.channels = int(dec.NumChans)
	d.sampleRate = int(dec.SampleRate)
	d.bitsPerSample = int(dec.BitDepth)
	d.blockAlign = d.channels * d.bitsPerSample / 8

	d.unitCount = uint64(dec.PCMLen() / int64(d.blockAlign))
	d.unitIndex = 0

	d.durationMs = d.unitCount * 1000 / uint64(d.sampleRate)
	d.bitRate = d.sampleRate * d.channels * d.bitsPerSample / 1000

	return nil
}

func (d *Decoder) Close() {
	if d.f != nil {
		d.f.Close()
		d.f = nil
	}
}

func (d *Decoder) DecodeUnit(buf []byte) (int, int, error) {
	if d.f == nil {
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
	if limit := len(buf) / d.blockAlign; units > limit {
		units = limit
	}

	n, err := io.ReadFull(d.f, buf[:units*d.blockAlign])
	n -= n % d.blockAlign
	units = n / d.blockAlign
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
	if d.f == nil {
		return
	}
	if index > d.unitCount {
		index = d.unitCount
	}

	if _, err := d.f.Seek(d.dataStart+int64(index)*int64(d.blockAlign), io.SeekStart); err != nil {
		return
	}
	d.unitIndex = index
}

func (d *Decoder) UnitIndex() uint64 { return d.unitIndex }
func (d *Decoder) UnitCount() uint64 { return d.unitCount }
func (d *Decoder) MaxBytesPerUnit() int { return unitsPerRead * d.blockAlign }
func (d *Decoder) Duration() uint64 { return d.durationMs }
func (d *Decoder) BitRate() int { return d.bitRate }
func (d *Decoder) SampleRate() int { return d.sampleRate }
func (d *Decoder) BitsPerSample() int { return d.bitsPerSample }
func (d *Decoder) Channels() int { return d.channels }

func (d *Decoder) AudioMode() plugin.AudioMode {
	if d.channels == 1 {
		return plugin.AudioModeMono
	}
	return plugin.AudioModeStereo
}

func (d *Decoder) Options() []plugin.Option { return nil }

// Agent is the wav plugin's factory handle. Use the same value for
// register and unregister calls.
type Agent struct{}

func (Agent) Type() plugin.Type { return plugin.TypeDecoder }

func (Agent) Info() plugin.Info {
	return plugin.Info{Name: "wav", Description: "16-bit PCM WAV decoder", Version: "1.0.0"}
}

func (Agent) CreateObject() any { return &Decoder{} }

func (Agent) FreeObject(obj any) {
	if d, ok := obj.(*Decoder); ok {
		d.Close()
	}
}
