// SPDX-License-Identifier: EPL-2.0

package player

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/ik5/audplayer/plugin"
)

const defaultBufferCount = 5

// PlayToEnd is the sentinel end position for PlayMs meaning "until the
// end of the source".
const PlayToEnd = ^uint64(0)

// writeRetryBackoff is how long the renderer worker sleeps before its
// single retry of a refused device write.
const writeRetryBackoff = 10 * time.Millisecond

type decoderPluginEntry struct {
	agent   plugin.Agent
	decoder plugin.Decoder
}

// Player is the playback engine. Construct with NewPlayer and release
// with Shutdown.
//
// The command surface (Open, Play, Pause, ...) must be driven from one
// goroutine at a time. SigFinished observers run on their own goroutine
// and may issue commands from the callback.
type Player struct {
	logger zerolog.Logger

	status atomic.Int32

	ring *UnitBufferRing

	// suffix (lowercased) -> plugin entry. One decoder instance per
	// registered agent, shared by all of its suffix keys. Mutated only by
	// the command surface.
	decoderPlugins map[string]decoderPluginEntry

	rendererAgent plugin.Agent
	renderer      plugin.Renderer

	decoder    plugin.Decoder
	decodeFile string

	unitBeg   uint64
	unitEnd   atomic.Uint64
	unitPerMs float64

	decoderIndex  atomic.Uint64
	rendererIndex atomic.Uint64

	suspendDecoder  atomic.Bool
	suspendRenderer atomic.Bool
	haltDecoder     atomic.Bool // decoder-only pause for source hot-swap
	stopDecoder     atomic.Bool
	stopRenderer    atomic.Bool

	// cycleActive is set while a playback cycle has been started and not
	// yet paused away. Pause must not wait on the end latches unless a
	// cycle actually posted (or will post) them.
	cycleActive atomic.Bool

	wakeDecoder  *latch
	decoderBegin *latch
	decoderEnd   *latch

	wakeRenderer  *latch
	rendererBegin *latch
	rendererEnd   *latch

	workers sync.WaitGroup

	sigFinished Signal
}

// NewPlayer creates an engine with no plugins registered and starts its
// two worker goroutines.
func NewPlayer() *Player {
	p := &Player{
		logger:         zerolog.Nop(),
		ring:           NewUnitBufferRing(defaultBufferCount),
		decoderPlugins: make(map[string]decoderPluginEntry),
		wakeDecoder:    newLatch(0),
		decoderBegin:   newLatch(0),
		decoderEnd:     newLatch(0),
		wakeRenderer:   newLatch(0),
		rendererBegin:  newLatch(0),
		rendererEnd:    newLatch(0),
	}

	p.workers.Add(2)
	go p.decoderWorker()
	go p.rendererWorker()

	return p
}

// SetLogger attaches a structured logger. The engine logs state
// transitions and plugin lifecycle at debug level; the default logger
// discards everything.
func (p *Player) SetLogger(logger zerolog.Logger) {
	p.logger = logger
}

// Status returns the player's current lifecycle state.
func (p *Player) Status() Status {
	return Status(p.status.Load())
}

func (p *Player) setStatus(s Status) {
	p.status.Store(int32(s))
}

// Shutdown closes the current source, terminates both workers and
// unregisters every plugin. The Player must not be used afterwards.
func (p *Player) Shutdown() {
	p.Close()

	p.stopDecoder.Store(true)
	p.stopRenderer.Store(true)
	p.wakeDecoder.Post()
	p.wakeRenderer.Post()
	p.workers.Wait()

	p.UnregisterAll()
	p.logger.Debug().Msg("player shut down")
}

// ---------------------------------------------------------------------------
// Plugin registry

// RegisterDecoderPlugin creates the agent's decoder instance and indexes
// it under every suffix the decoder declares. Suffixes already claimed by
// another plugin keep their first registration; an agent whose suffixes
// are all taken is released again. Agents of the wrong type are ignored.
func (p *Player) RegisterDecoderPlugin(agent plugin.Agent) {
	if agent == nil || agent.Type() != plugin.TypeDecoder {
		return
	}
	p.addDecoderPlugin(agent)
}

// RegisterDecoderPlugins registers each agent in turn.
func (p *Player) RegisterDecoderPlugins(agents []plugin.Agent) {
	for _, agent := range agents {
		p.RegisterDecoderPlugin(agent)
	}
}

// RegisterRendererPlugin installs the agent into the renderer slot and
// opens its device. A second registration while the slot is occupied is a
// no-op.
func (p *Player) RegisterRendererPlugin(agent plugin.Agent) {
	if agent == nil || agent.Type() != plugin.TypeRenderer {
		return
	}
	p.setRendererPlugin(agent)
}

// UnregisterPlugin removes a previously registered agent of either type.
// Unregistering the decoder that is currently open closes the player
// first. Unknown agents are ignored.
func (p *Player) UnregisterPlugin(agent plugin.Agent) {
	if agent == nil {
		return
	}

	switch agent.Type() {
	case plugin.TypeDecoder:
		p.removeDecoderPlugin(agent)
	case plugin.TypeRenderer:
		p.unsetRendererPlugin(agent)
	}
}

// UnregisterPlugins unregisters each agent in turn.
func (p *Player) UnregisterPlugins(agents []plugin.Agent) {
	for _, agent := range agents {
		p.UnregisterPlugin(agent)
	}
}

// UnregisterAll removes every decoder plugin and the renderer plugin.
// Decoders are removed by repeatedly unregistering the first map entry's
// agent; one removal erases all of that agent's suffix keys, so the loop
// terminates even though agents occupy several entries.
func (p *Player) UnregisterAll() {
	for len(p.decoderPlugins) > 0 {
		for _, entry := range p.decoderPlugins {
			p.removeDecoderPlugin(entry.agent)
			break
		}
	}

	if p.rendererAgent != nil {
		p.unsetRendererPlugin(p.rendererAgent)
	}
}

// SupportedSuffixes returns a sorted snapshot of the registered suffixes.
func (p *Player) SupportedSuffixes() []string {
	list := make([]string, 0, len(p.decoderPlugins))
	for suffix := range p.decoderPlugins {
		list = append(list, suffix)
	}
	sort.Strings(list)
	return list
}

func (p *Player) addDecoderPlugin(agent plugin.Agent) {
	obj := agent.CreateObject()
	decoder, ok := obj.(plugin.Decoder)
	if !ok {
		agent.FreeObject(obj)
		return
	}

	used := false
	for _, item := range decoder.FileSuffix() {
		suffix := strings.ToLower(item)
		if _, exists := p.decoderPlugins[suffix]; exists {
			continue
		}
		p.decoderPlugins[suffix] = decoderPluginEntry{agent: agent, decoder: decoder}
		used = true
		p.logger.Debug().Str("plugin", agent.Info().Name).Str("suffix", suffix).Msg("decoder registered")
	}

	if !used {
		agent.FreeObject(decoder)
	}
}

func (p *Player) removeDecoderPlugin(agent plugin.Agent) {
	// A throwaway instance enumerates the suffixes; the live one might be
	// in use.
	obj := agent.CreateObject()
	probe, ok := obj.(plugin.Decoder)
	if !ok {
		agent.FreeObject(obj)
		return
	}
	suffixes := probe.FileSuffix()
	agent.FreeObject(probe)

	freedOnce := false
	for _, item := range suffixes {
		suffix := strings.ToLower(item)
		entry, exists := p.decoderPlugins[suffix]
		if !exists || entry.agent != agent {
			continue
		}
		if !freedOnce {
			if entry.decoder == p.decoder {
				p.Close()
			}
			agent.FreeObject(entry.decoder)
			freedOnce = true
		}
		delete(p.decoderPlugins, suffix)
		p.logger.Debug().Str("plugin", agent.Info().Name).Str("suffix", suffix).Msg("decoder unregistered")
	}
}

func (p *Player) setRendererPlugin(agent plugin.Agent) {
	if p.rendererAgent != nil {
		return
	}

	obj := agent.CreateObject()
	renderer, ok := obj.(plugin.Renderer)
	if !ok {
		agent.FreeObject(obj)
		return
	}

	if err := renderer.Open(); err != nil {
		p.logger.Warn().Err(err).Str("plugin", agent.Info().Name).Msg("renderer open failed")
	}
	p.rendererAgent = agent
	p.renderer = renderer
	p.logger.Debug().Str("plugin", agent.Info().Name).Msg("renderer registered")
}

func (p *Player) unsetRendererPlugin(agent plugin.Agent) {
	if p.rendererAgent == nil || agent != p.rendererAgent {
		return
	}

	p.renderer.Close()
	p.rendererAgent.FreeObject(p.renderer)
	p.renderer = nil
	p.rendererAgent = nil
	p.logger.Debug().Msg("renderer unregistered")
}

// ---------------------------------------------------------------------------
// Command surface

// Open resolves a decoder by the path's suffix, opens the source, sizes
// the ring for the decoder's payloads and configures the renderer. On
// success the player is StatusStopped and ready to Play. A source that is
// already open is closed first.
func (p *Player) Open(path string) error {
	if p.Status() != StatusClosed {
		p.Close()
	}

	suffix := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	entry, ok := p.decoderPlugins[suffix]
	if !ok {
		return ErrNoDecoder
	}
	if p.renderer == nil {
		return ErrNoRenderer
	}

	if err := entry.decoder.Open(path); err != nil {
		return err
	}
	p.decoder = entry.decoder
	p.decodeFile = path

	p.ring.EnsureCapacity(p.decoder.MaxBytesPerUnit())

	duration := p.decoder.Duration()
	if duration > 0 {
		p.unitPerMs = float64(p.decoder.UnitCount()) / float64(duration)
	} else {
		p.unitPerMs = 0
	}

	channels := p.decoder.Channels()
	sampleRate := p.decoder.SampleRate()
	bitsPerSample := p.decoder.BitsPerSample()
	if err := p.renderer.Setup(channels, sampleRate, bitsPerSample); err != nil {
		p.logger.Error().Err(err).
			Int("channels", channels).
			Int("sample_rate", sampleRate).
			Int("bits_per_sample", bitsPerSample).
			Msg("renderer setup failed")
		p.decoder.Close()
		p.decoder = nil
		p.decodeFile = ""
		return err
	}

	p.setStatus(StatusStopped)
	p.logger.Debug().Str("path", path).Str("suffix", suffix).Msg("source opened")

	return nil
}

// Close stops playback and releases the source. A closed player is a
// no-op.
func (p *Player) Close() {
	if p.Status() == StatusClosed {
		return
	}

	p.Pause()

	p.decoder.Close()
	p.decoder = nil
	p.decodeFile = ""

	p.setStatus(StatusClosed)
	p.logger.Debug().Msg("source closed")
}

// FileName returns the path of the open source, or "" when closed.
func (p *Player) FileName() string {
	return p.decodeFile
}

// Play starts playback of the whole source. Legal only while stopped;
// ignored otherwise.
func (p *Player) Play() {
	if p.Status() != StatusStopped || p.decoder == nil {
		return
	}
	p.playRange(0, p.decoder.UnitCount())
}

// PlayMs starts playback of the time range [msBegin, msEnd). Pass
// PlayToEnd as msEnd to play until the end of the source. Positions
// beyond the source clamp to its length.
func (p *Player) PlayMs(msBegin, msEnd uint64) {
	if p.Status() != StatusStopped || p.decoder == nil {
		return
	}

	total := p.decoder.UnitCount()

	beg := uint64(p.unitPerMs * float64(msBegin))
	if beg > total {
		beg = total
	}

	end := total
	if msEnd != PlayToEnd {
		end = uint64(p.unitPerMs * float64(msEnd))
		if end > total {
			end = total
		}
	}

	p.playRange(beg, end)
}

func (p *Player) playRange(beg, end uint64) {
	p.unitBeg = beg
	p.unitEnd.Store(end)

	p.decoderIndex.Store(beg)
	p.rendererIndex.Store(beg)

	p.decoder.SetUnitIndex(beg)

	p.ring.ResetPV()

	// Playing is set before the workers start, so a cycle that reaches the
	// range end at once is left in StatusStopped by the renderer worker.
	p.setStatus(StatusPlaying)

	p.cycleActive.Store(true)
	p.suspendRenderer.Store(false)
	p.wakeRenderer.Post()
	p.suspendDecoder.Store(false)
	p.wakeDecoder.Post()
	p.rendererBegin.Wait()
	p.decoderBegin.Wait()

	p.logger.Debug().Uint64("unit_beg", beg).Uint64("unit_end", end).Msg("playing")
}

// Pause suspends both workers and freezes the play position. Pausing a
// paused or closed player is a no-op.
func (p *Player) Pause() {
	st := p.Status()
	if st == StatusPaused || st == StatusClosed {
		return
	}

	if p.cycleActive.Load() {
		// Suspend the renderer first; the paired recycle wakes a take
		// that is sleeping on the other side of the ring.
		if !p.suspendRenderer.Load() {
			p.suspendRenderer.Store(true)
			p.ring.RecycleFree()
		}
		p.rendererEnd.Wait()

		if !p.suspendDecoder.Load() {
			p.suspendDecoder.Store(true)
			p.ring.RecycleData()
		}
		p.decoderEnd.Wait()

		p.cycleActive.Store(false)
	}

	p.ring.ResetPV()

	p.setStatus(StatusPaused)
	p.logger.Debug().Uint64("unit", p.rendererIndex.Load()).Msg("paused")
}

// Resume continues playback from the renderer's position. In-flight
// frames from before the pause were discarded, so decoding restarts at
// exactly the unit the device last played. Resuming a player that is not
// paused is a no-op.
func (p *Player) Resume() {
	if p.Status() != StatusPaused {
		return
	}

	index := p.rendererIndex.Load()
	p.decoderIndex.Store(index)
	p.decoder.SetUnitIndex(index)

	p.ring.ResetPV()

	// As in playRange: set before the workers start, so an immediate
	// completion (resuming at the range end) ends in StatusStopped.
	p.setStatus(StatusPlaying)

	p.cycleActive.Store(true)
	p.suspendRenderer.Store(false)
	p.wakeRenderer.Post()
	p.suspendDecoder.Store(false)
	p.wakeDecoder.Post()
	p.rendererBegin.Wait()
	p.decoderBegin.Wait()

	p.logger.Debug().Uint64("unit", index).Msg("resumed")
}

// SeekTime repositions playback to msPos. While playing, the seek is the
// atomic composite pause-seek-resume; while paused or stopped it only
// moves the position. Ignored when closed.
func (p *Player) SeekTime(msPos uint64) {
	switch p.Status() {
	case StatusPlaying:
		p.Pause()
		p.doSeekTime(msPos)
		p.Resume()
	case StatusPaused, StatusStopped:
		p.doSeekTime(msPos)
	}
}

// SeekPercent repositions playback to the given fraction of the current
// play range. See SeekTime for state handling.
func (p *Player) SeekPercent(percent float64) {
	unit := p.unitBeg + uint64(float64(p.unitEnd.Load()-p.unitBeg)*percent)

	switch p.Status() {
	case StatusPlaying:
		p.Pause()
		p.doSeekUnit(unit)
		p.Resume()
	case StatusPaused, StatusStopped:
		p.doSeekUnit(unit)
	}
}

func (p *Player) doSeekTime(msPos uint64) {
	unit := uint64(p.unitPerMs * float64(msPos))
	if total := p.decoder.UnitCount(); unit > total {
		unit = total
	}
	// doSeekUnit clamps again, to the play range this time.
	p.doSeekUnit(unit)
}

func (p *Player) doSeekUnit(unit uint64) {
	if unit < p.unitBeg {
		unit = p.unitBeg
	} else if end := p.unitEnd.Load(); unit > end {
		unit = end
	}

	p.decoder.SetUnitIndex(unit)

	p.decoderIndex.Store(unit)
	p.rendererIndex.Store(unit)
	p.logger.Debug().Uint64("unit", unit).Msg("seek")
}

// haltDecoderWorker parks the decoder worker without touching the
// renderer and closes the source file, keeping the play position. The
// renderer keeps draining the ring, which is what unblocks a decoder
// sleeping in TakeFree.
func (p *Player) haltDecoderWorker() {
	p.haltDecoder.Store(true)
	p.decoderEnd.Wait()

	p.decoder.Close()
}

// restartDecoderWorker reopens the source and resumes decoding at the
// halted position. Pairs with haltDecoderWorker.
func (p *Player) restartDecoderWorker() error {
	if err := p.decoder.Open(p.decodeFile); err != nil {
		return err
	}
	p.decoder.SetUnitIndex(p.decoderIndex.Load())

	p.haltDecoder.Store(false)
	p.wakeDecoder.Post()
	p.decoderBegin.Wait()

	return nil
}

// ---------------------------------------------------------------------------
// Volume and buffers

// Volume returns the renderer's volume level, or -1 when no renderer is
// set. The range is renderer-defined.
func (p *Player) Volume() int {
	if p.renderer == nil {
		return -1
	}
	return p.renderer.VolumeLevel()
}

// SetVolume passes the level to the renderer unchanged.
func (p *Player) SetVolume(level int) {
	if p.renderer != nil {
		p.renderer.SetVolumeLevel(level)
	}
}

// BufferCount returns the number of slots in the unit buffer ring.
func (p *Player) BufferCount() int {
	return p.ring.BufferCount()
}

// SetBufferCount resizes the ring. Legal only while closed; otherwise
// ignored.
func (p *Player) SetBufferCount(count int) {
	if p.Status() != StatusClosed {
		return
	}
	p.ring.SetBufferCount(count)
}

// ---------------------------------------------------------------------------
// Introspection

// BitRate of the open source in kbit/s, or -1 when closed.
func (p *Player) BitRate() int {
	if p.decoder == nil {
		return -1
	}
	return p.decoder.BitRate()
}

// SampleRate of the open source in Hz, or -1 when closed.
func (p *Player) SampleRate() int {
	if p.decoder == nil {
		return -1
	}
	return p.decoder.SampleRate()
}

// Duration of the open source in milliseconds, or 0 when closed.
func (p *Player) Duration() uint64 {
	if p.decoder == nil {
		return 0
	}
	return p.decoder.Duration()
}

func (p *Player) unitsToMs(units uint64) uint64 {
	if p.unitPerMs <= 0 {
		return 0
	}
	return uint64(float64(units) / p.unitPerMs)
}

// RangeBegin returns the start of the play range in milliseconds.
func (p *Player) RangeBegin() uint64 {
	return p.unitsToMs(p.unitBeg)
}

// RangeEnd returns the end of the play range in milliseconds.
func (p *Player) RangeEnd() uint64 {
	return p.unitsToMs(p.unitEnd.Load())
}

// RangeDuration returns the length of the play range in milliseconds.
func (p *Player) RangeDuration() uint64 {
	return p.unitsToMs(p.unitEnd.Load() - p.unitBeg)
}

// CurrentMs returns the play position in milliseconds, measured at the
// renderer side of the pipeline.
func (p *Player) CurrentMs() uint64 {
	return p.unitsToMs(p.rendererIndex.Load())
}

// OffsetMs returns the play position relative to the range begin.
func (p *Player) OffsetMs() uint64 {
	return p.CurrentMs() - p.RangeBegin()
}

// AudioMode of the open source, or AudioModeNone when closed.
func (p *Player) AudioMode() plugin.AudioMode {
	if p.decoder == nil {
		return plugin.AudioModeNone
	}
	return p.decoder.AudioMode()
}

// DecoderPluginOptions reports, per registered decoder plugin, the
// options its decoder exposes. Plugins without options are omitted.
func (p *Player) DecoderPluginOptions() []plugin.PluginOption {
	seen := make(map[plugin.Agent]bool, len(p.decoderPlugins))
	var list []plugin.PluginOption

	for _, entry := range p.decoderPlugins {
		if seen[entry.agent] {
			continue
		}
		seen[entry.agent] = true

		options := entry.decoder.Options()
		if len(options) == 0 {
			continue
		}
		list = append(list, plugin.PluginOption{
			PluginType: entry.agent.Type(),
			Info:       entry.agent.Info(),
			Options:    options,
		})
	}

	return list
}

// RendererPluginOption reports the renderer plugin's identity and
// options, or a zero value when no renderer is set.
func (p *Player) RendererPluginOption() plugin.PluginOption {
	if p.rendererAgent == nil {
		return plugin.PluginOption{}
	}
	return plugin.PluginOption{
		PluginType: p.rendererAgent.Type(),
		Info:       p.rendererAgent.Info(),
		Options:    p.renderer.Options(),
	}
}

// SigFinished is fired once per playback cycle when the renderer reaches
// the end of the play range.
func (p *Player) SigFinished() *Signal {
	return &p.sigFinished
}

// ---------------------------------------------------------------------------
// Workers

func (p *Player) decoderWorker() {
	defer p.workers.Done()

	for {
		p.wakeDecoder.Wait()
		if p.stopDecoder.Load() {
			p.logger.Debug().Msg("decoder worker exiting")
			return
		}

		p.decoderBegin.Clear()
		p.decoderEnd.Clear()

		p.decoderBegin.Post()

		for {
			if p.haltDecoder.Load() {
				break
			}

			buf := p.ring.TakeFree()
			if p.suspendDecoder.Load() || buf == nil {
				break
			}

			used, units, err := p.decoder.DecodeUnit(buf.Data)
			if err != nil && units == 0 {
				p.logger.Debug().Err(err).Uint64("unit", p.decoderIndex.Load()).Msg("decode stopped")
				// Hand the empty frame through anyway: a renderer already
				// sitting at the end of the range needs one more cycle to
				// run its completion check.
				buf.Used = 0
				buf.UnitCount = 0
				p.ring.RecycleFree()
				p.suspendDecoder.Store(true)
				break
			}
			buf.Used = used
			buf.UnitCount = units

			p.decoderIndex.Add(uint64(units))
			p.ring.RecycleFree()

			if p.decoderIndex.Load() >= p.unitEnd.Load() {
				p.suspendDecoder.Store(true)
				break
			}
		}

		p.decoderEnd.Post()
	}
}

func (p *Player) rendererWorker() {
	defer p.workers.Done()

	for {
		p.wakeRenderer.Wait()
		if p.stopRenderer.Load() {
			p.logger.Debug().Msg("renderer worker exiting")
			return
		}

		p.rendererBegin.Clear()
		p.rendererEnd.Clear()

		p.rendererBegin.Post()

		for {
			buf := p.ring.TakeData()
			if p.suspendRenderer.Load() || buf == nil {
				break
			}

			if buf.Used > 0 {
				// One retry after a short backoff; a frame the device
				// still refuses is dropped so the pipeline stays live.
				if err := p.renderer.Write(buf.Data[:buf.Used]); err != nil {
					time.Sleep(writeRetryBackoff)
					if err = p.renderer.Write(buf.Data[:buf.Used]); err != nil {
						p.logger.Debug().Err(err).Msg("frame dropped")
					}
				}
			}

			p.rendererIndex.Add(uint64(buf.UnitCount))
			p.ring.RecycleData()

			if p.rendererIndex.Load() >= p.unitEnd.Load() {
				p.suspendRenderer.Store(true)
				break
			}
		}

		p.rendererEnd.Post()

		// Natural end of range, as opposed to a pause: report completion
		// from a detached goroutine so observers cannot deadlock the
		// worker.
		if p.rendererIndex.Load() >= p.unitEnd.Load() {
			p.setStatus(StatusStopped)
			p.logger.Debug().Msg("playback finished")
			go p.sigFinished.emit()
		}
	}
}
