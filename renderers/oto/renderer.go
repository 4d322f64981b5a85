// SPDX-License-Identifier: EPL-2.0

package oto

import (
	"fmt"
	"strconv"

	driver "github.com/hajimehoshi/oto"

	"github.com/ik5/audplayer/plugin"
)

// bufferMs is the device buffer length handed to the oto context.
const bufferMs = 100

// Renderer implements plugin.Renderer on top of an oto playback context.
// The device context exists between Setup and Close; Setup rebuilds it
// when the output format changes. Volume is applied in software, scaling
// 16-bit samples before they reach the device.
type Renderer struct {
	ctx    *driver.Context
	player *driver.Player

	channels      int
	sampleRate    int
	bitsPerSample int

	volume  int // 0..100
	scratch []byte
}

func (r *Renderer) Open() error {
	// The oto context needs the output format, which arrives with Setup.
	return nil
}

func (r *Renderer) Close() {
	if r.player != nil {
		r.player.Close()
		r.player = nil
	}
	if r.ctx != nil {
		r.ctx.Close()
		r.ctx = nil
	}
}

func (r *Renderer) Setup(channels, sampleRate, bitsPerSample int) error {
	if r.ctx != nil {
		if channels == r.channels && sampleRate == r.sampleRate && bitsPerSample == r.bitsPerSample {
			return nil
		}
		r.Close()
	}

	bytesPerSample := bitsPerSample / 8
	bufferSize := sampleRate * channels * bytesPerSample * bufferMs / 1000

	ctx, err := driver.NewContext(sampleRate, channels, bytesPerSample, bufferSize)
	if err != nil {
		return fmt.Errorf("opening audio device: %w", err)
	}

	r.ctx = ctx
	r.player = ctx.NewPlayer()
	r.channels = channels
	r.sampleRate = sampleRate
	r.bitsPerSample = bitsPerSample

	return nil
}

func (r *Renderer) Write(data []byte) error {
	if r.player == nil {
		return ErrNotSetUp
	}

	out := data
	if r.volume < 100 && r.bitsPerSample == 16 {
		out = r.applyVolume(data)
	}

	for len(out) > 0 {
		n, err := r.player.Write(out)
		if err != nil {
			return fmt.Errorf("writing to audio device: %w", err)
		}
		out = out[n:]
	}
	return nil
}

func (r *Renderer) applyVolume(data []byte) []byte {
	if cap(r.scratch) < len(data) {
		r.scratch = make([]byte, len(data))
	}
	out := r.scratch[:len(data)]

	for i := 0; i+1 < len(data); i += 2 {
		v := int16(uint16(data[i]) | uint16(data[i+1])<<8)
		v = int16(int(v) * r.volume / 100)
		out[i] = byte(v)
		out[i+1] = byte(uint16(v) >> 8)
	}
	return out
}

func (r *Renderer) VolumeLevel() int { return r.volume }

func (r *Renderer) SetVolumeLevel(level int) {
	if level < 0 {
		level = 0
	} else if level > 100 {
		level = 100
	}
	r.volume = level
}

func (r *Renderer) Options() []plugin.Option {
	return []plugin.Option{
		{Name: "buffer_ms", Description: "device buffer length in milliseconds", Value: strconv.Itoa(bufferMs)},
	}
}

// Agent is the speaker renderer's factory handle.
type Agent struct{}

func (Agent) Type() plugin.Type { return plugin.TypeRenderer }

func (Agent) Info() plugin.Info {
	return plugin.Info{Name: "oto", Description: "speaker output via oto", Version: "1.0.0"}
}

func (Agent) CreateObject() any { return &Renderer{volume: 100} }

func (Agent) FreeObject(obj any) {
	if r, ok := obj.(*Renderer); ok {
		r.Close()
	}
}
