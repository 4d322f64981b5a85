// SPDX-License-Identifier: EPL-2.0

package audplayer

import (
	"github.com/ik5/audplayer/formats/aiff"
	"github.com/ik5/audplayer/formats/mp3"
	"github.com/ik5/audplayer/formats/vorbis"
	"github.com/ik5/audplayer/formats/wav"
	"github.com/ik5/audplayer/player"
	"github.com/ik5/audplayer/plugin"
	"github.com/ik5/audplayer/renderers/oto"
)

// NewPlayer returns a playback engine with every built-in decoder plugin
// and the speaker renderer registered. Release it with Shutdown.
func NewPlayer() *player.Player {
	p := player.NewPlayer()
	p.RegisterDecoderPlugins([]plugin.Agent{
		wav.Agent{},
		mp3.Agent{},
		vorbis.Agent{},
		aiff.Agent{},
	})
	p.RegisterRendererPlugin(oto.Agent{})
	return p
}

// PlayFile plays one file start to finish through the speaker and blocks
// until playback completes. The format is chosen by the filename suffix.
func PlayFile(path string) error {
	p := NewPlayer()
	defer p.Shutdown()

	if err := p.Open(path); err != nil {
		return err
	}

	done := make(chan struct{})
	p.SigFinished().Connect(func() { close(done) })

	p.Play()
	<-done

	return nil
}
