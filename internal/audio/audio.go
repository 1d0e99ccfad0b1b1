// Package audio owns the audio loop and the reusable playback-source
// pool.
package audio

import (
	"sync"

	"emberline/internal/dispatch"
	"emberline/internal/logging"
	"emberline/internal/platform"
)

// Source is one playback voice. Checked out of the pool, used on the
// audio loop, returned when the sound finishes.
type Source struct {
	id     int
	inUse  bool
	sound  string
	volume float64
}

// ID returns the pool-stable source id.
func (s *Source) ID() int { return s.id }

// Audio mixes sound on its own loop. The source pool has its own lock,
// separate from loop scheduling, since sources get claimed from other
// threads.
type Audio struct {
	loop  *dispatch.EventLoop
	log   *logging.Logger
	music platform.MusicPlayer

	poolMu  sync.Mutex
	sources []*Source

	volume float64
}

// New creates the audio subsystem with a pool of voices.
func New(music platform.MusicPlayer, voices int) *Audio {
	a := &Audio{
		loop:   dispatch.NewEventLoop("audio"),
		log:    logging.For("audio"),
		music:  music,
		volume: 1.0,
	}
	a.sources = make([]*Source, voices)
	for i := range a.sources {
		a.sources[i] = &Source{id: i}
	}
	return a
}

// Loop returns the audio event loop.
func (a *Audio) Loop() *dispatch.EventLoop { return a.loop }

// ClaimSource checks a free voice out of the pool, or nil when all
// voices are busy. Safe from any goroutine.
func (a *Audio) ClaimSource() *Source {
	a.poolMu.Lock()
	defer a.poolMu.Unlock()
	for _, s := range a.sources {
		if !s.inUse {
			s.inUse = true
			return s
		}
	}
	return nil
}

// ReleaseSource returns a voice to the pool.
func (a *Audio) ReleaseSource(s *Source) {
	a.poolMu.Lock()
	defer a.poolMu.Unlock()
	s.inUse = false
	s.sound = ""
}

// ActiveSources counts voices currently checked out.
func (a *Audio) ActiveSources() int {
	a.poolMu.Lock()
	defer a.poolMu.Unlock()
	n := 0
	for _, s := range a.sources {
		if s.inUse {
			n++
		}
	}
	return n
}

// Play schedules a sound on a claimed source. Runs on the audio loop.
func (a *Audio) Play(s *Source, sound string, volume float64) {
	a.loop.PushCall(func() {
		s.sound = sound
		s.volume = volume * a.volume
		a.log.Debug("playing", "sound", sound, "source", s.id)
	})
}

// ApplyAppConfig picks up volume settings.
func (a *Audio) ApplyAppConfig(values map[string]any) {
	vol := 1.0
	if v, ok := values["audio_volume"].(float64); ok {
		vol = v
	}
	musicVol := 1.0
	if v, ok := values["music_volume"].(float64); ok {
		musicVol = v
	}
	a.loop.PushCall(func() {
		a.volume = vol
		a.music.SetVolume(musicVol)
		a.log.Debug("config applied", "volume", vol, "music", musicVol)
	})
}

// OnAppPause quiets playback while backgrounded.
func (a *Audio) OnAppPause() {
	a.loop.Pause()
}

// OnAppResume resumes playback.
func (a *Audio) OnAppResume() {
	a.loop.Resume()
}

// OnAppShutdown stops music and the loop.
func (a *Audio) OnAppShutdown() {
	a.music.Shutdown()
}
