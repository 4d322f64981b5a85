// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"sync"
	"sync/atomic"

	"github.com/ik5/audplayer/plugin"
)

// SynthConfig shapes a synthetic decoder. Zero fields take the defaults
// noted per field.
type SynthConfig struct {
	Suffixes     []string // default {"syn"}
	TotalUnits   uint64   // default 1000
	DurationMs   uint64   // default 1000
	UnitsPerRead int      // units produced per DecodeUnit call, default 100
	MaxBytes     int      // MaxBytesPerUnit, default 256
	SampleRate   int      // default 8000
	Channels     int      // default 1
	OpenErr      error    // injected Open failure
	Options      []plugin.Option
}

func (c SynthConfig) withDefaults() SynthConfig {
	if len(c.Suffixes) == 0 {
		c.Suffixes = []string{"syn"}
	}
	if c.TotalUnits == 0 {
		c.TotalUnits = 1000
	}
	if c.DurationMs == 0 {
		c.DurationMs = 1000
	}
	if c.UnitsPerRead == 0 {
		c.UnitsPerRead = 100
	}
	if c.MaxBytes == 0 {
		c.MaxBytes = 256
	}
	if c.SampleRate == 0 {
		c.SampleRate = 8000
	}
	if c.Channels == 0 {
		c.Channels = 1
	}
	return c
}

// SynthAgent is a decoder plugin agent producing SynthDecoders. It counts
// created and freed instances so tests can assert plugin lifetimes.
type SynthAgent struct {
	cfg     SynthConfig
	Created atomic.Int32
	Freed   atomic.Int32
}

// NewSynthAgent builds an agent for the given config.
func NewSynthAgent(cfg SynthConfig) *SynthAgent {
	return &SynthAgent{cfg: cfg.withDefaults()}
}

func (a *SynthAgent) Type() plugin.Type { return plugin.TypeDecoder }

func (a *SynthAgent) Info() plugin.Info {
	return plugin.Info{Name: "synth", Description: "synthetic test decoder", Version: "1.0.0"}
}

func (a *SynthAgent) CreateObject() any {
	a.Created.Add(1)
	return &SynthDecoder{cfg: a.cfg}
}

func (a *SynthAgent) FreeObject(obj any) {
	if d, ok := obj.(*SynthDecoder); ok {
		d.Close()
		a.Freed.Add(1)
	}
}

// SynthDecoder implements plugin.Decoder over generated data: one byte
// per unit, each byte the low 8 bits of its unit index.
type SynthDecoder struct {
	cfg SynthConfig

	mtx      sync.Mutex
	opened   bool
	path     string
	index    uint64
	firstIdx int64 // first unit index decoded after the last seek, -1 when none
}

func (d *SynthDecoder) FileSuffix() []string { return d.cfg.Suffixes }

func (d *SynthDecoder) Open(path string) error {
	if d.cfg.OpenErr != nil {
		return d.cfg.OpenErr
	}

	d.mtx.Lock()
	defer d.mtx.Unlock()

	d.opened = true
	d.path = path
	d.index = 0
	d.firstIdx = -1
	return nil
}

func (d *SynthDecoder) Close() {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	d.opened = false
	d.path = ""
}

func (d *SynthDecoder) DecodeUnit(buf []byte) (int, int, error) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	remaining := int64(d.cfg.TotalUnits) - int64(d.index)
	if remaining <= 0 {
		return 0, 0, errSynthEndOfStream
	}

	units := d.cfg.UnitsPerRead
	if int64(units) > remaining {
		units = int(remaining)
	}
	if units > len(buf) {
		units = len(buf)
	}

	if d.firstIdx < 0 {
		d.firstIdx = int64(d.index)
	}
	for i := 0; i < units; i++ {
		buf[i] = byte(d.index + uint64(i))
	}
	d.index += uint64(units)

	return units, units, nil
}

func (d *SynthDecoder) SetUnitIndex(index uint64) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if index > d.cfg.TotalUnits {
		index = d.cfg.TotalUnits
	}
	d.index = index
	d.firstIdx = -1
}

func (d *SynthDecoder) UnitIndex() uint64 {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	return d.index
}

// FirstDecodedIndex reports the unit index of the first DecodeUnit call
// after the most recent seek, or -1 when nothing was decoded since.
func (d *SynthDecoder) FirstDecodedIndex() int64 {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	return d.firstIdx
}

// Opened reports whether the decoder currently has a source open.
func (d *SynthDecoder) Opened() bool {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	return d.opened
}

// Path returns the path passed to the last Open.
func (d *SynthDecoder) Path() string {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	return d.path
}

func (d *SynthDecoder) UnitCount() uint64 { return d.cfg.TotalUnits }
func (d *SynthDecoder) MaxBytesPerUnit() int { return d.cfg.MaxBytes }
func (d *SynthDecoder) Duration() uint64 { return d.cfg.DurationMs }
func (d *SynthDecoder) BitRate() int { return 128 }
func (d *SynthDecoder) SampleRate() int { return d.cfg.SampleRate }
func (d *SynthDecoder) BitsPerSample() int { return 8 }
func (d *SynthDecoder) Channels() int { return d.cfg.Channels }
func (d *SynthDecoder) AudioMode() plugin.AudioMode { return plugin.AudioModeMono }
func (d *SynthDecoder) Options() []plugin.Option { return d.cfg.Options }
