// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"sync"
	"time"

	"github.com/ik5/audplayer/plugin"
)

var (
	errSynthEndOfStream = errors.New("synth: end of stream")

	// ErrDeviceBusy is the injected write failure of the memory renderer.
	ErrDeviceBusy = errors.New("audiotest: device busy")
)

// MemRenderer implements plugin.Renderer by accumulating everything
// written to it.
type MemRenderer struct {
	mtx sync.Mutex

	opened bool
	data   []byte
	writes int

	channels      int
	sampleRate    int
	bitsPerSample int

	volume int

	failWrites int           // next n writes fail with ErrDeviceBusy
	writeDelay time.Duration // per-write pacing, emulating a real device
}

func NewMemRenderer() *MemRenderer {
	return &MemRenderer{volume: 100}
}

func (r *MemRenderer) Open() error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.opened = true
	return nil
}

func (r *MemRenderer) Close() {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.opened = false
}

func (r *MemRenderer) Setup(channels, sampleRate, bitsPerSample int) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.channels = channels
	r.sampleRate = sampleRate
	r.bitsPerSample = bitsPerSample
	return nil
}

func (r *MemRenderer) Write(data []byte) error {
	r.mtx.Lock()
	delay := r.writeDelay
	r.mtx.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()

	if r.failWrites > 0 {
		r.failWrites--
		return ErrDeviceBusy
	}

	r.data = append(r.data, data...)
	r.writes++
	return nil
}

func (r *MemRenderer) VolumeLevel() int { return r.volume }

func (r *MemRenderer) SetVolumeLevel(level int) { r.volume = level }

func (r *MemRenderer) Options() []plugin.Option {
	return []plugin.Option{{Name: "capacity", Description: "accumulated bytes", Value: "unbounded"}}
}

// SetWriteDelay paces every Write by d, emulating a device draining in
// real time.
func (r *MemRenderer) SetWriteDelay(d time.Duration) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.writeDelay = d
}

// FailNextWrites makes the next n writes return ErrDeviceBusy.
func (r *MemRenderer) FailNextWrites(n int) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.failWrites = n
}

// Bytes returns a copy of everything written so far.
func (r *MemRenderer) Bytes() []byte {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	out := make([]byte, len(r.data))
	copy(out, r.data)
	return out
}

// Len returns the number of bytes written so far.
func (r *MemRenderer) Len() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return len(r.data)
}

// Writes returns the number of successful Write calls.
func (r *MemRenderer) Writes() int {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return r.writes
}

// Opened reports whether the renderer device is open.
func (r *MemRenderer) Opened() bool {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return r.opened
}

// Format returns the channels, sample rate and bit depth from the last
// Setup call.
func (r *MemRenderer) Format() (channels, sampleRate, bitsPerSample int) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	return r.channels, r.sampleRate, r.bitsPerSample
}

// MemRendererAgent is a renderer plugin agent handing out one shared
// MemRenderer, kept accessible for test inspection.
type MemRendererAgent struct {
	R *MemRenderer
}

func NewMemRendererAgent() *MemRendererAgent {
	return &MemRendererAgent{R: NewMemRenderer()}
}

func (a *MemRendererAgent) Type() plugin.Type { return plugin.TypeRenderer }

func (a *MemRendererAgent) Info() plugin.Info {
	return plugin.Info{Name: "mem", Description: "in-memory test renderer", Version: "1.0.0"}
}

func (a *MemRendererAgent) CreateObject() any { return a.R }

func (a *MemRendererAgent) FreeObject(obj any) {}
