package platform

import (
	"os"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/vorbis"

	"emberline/internal/errs"
	"emberline/internal/logging"
)

// musicSampleRate is the engine mix rate. Tracks at other rates are
// resampled on the fly.
const musicSampleRate = 44100

// beepMusicPlayer streams OGG Vorbis with on-demand decoding: roughly
// a 64KB window instead of a full decoded track in memory. The audio
// subsystem pulls PCM through ReadSamples; a track loops until stopped.
type beepMusicPlayer struct {
	mu sync.Mutex

	streamer  beep.StreamSeekCloser
	resampled beep.Streamer
	format    beep.Format

	volume  float64
	playing bool
	path    string

	// Scratch buffer reused across pulls to keep the mix path
	// allocation-free.
	workBuffer [][2]float64
}

func newBeepMusicPlayer() *beepMusicPlayer {
	return &beepMusicPlayer{
		volume:     1.0,
		workBuffer: make([][2]float64, musicSampleRate/30),
	}
}

// Play starts streaming the OGG track at path, replacing any current
// track.
func (mp *beepMusicPlayer) Play(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return errs.Wrap(errs.KindIO, err, "opening music file")
	}
	streamer, format, err := vorbis.Decode(file)
	if err != nil {
		file.Close()
		return errs.Wrap(errs.KindValue, err, "decoding music file")
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.closeLocked()

	mp.streamer = streamer
	mp.format = format
	mp.path = path
	if int(format.SampleRate) != musicSampleRate {
		mp.resampled = beep.Resample(4, format.SampleRate,
			beep.SampleRate(musicSampleRate), streamer)
	} else {
		mp.resampled = streamer
	}
	mp.playing = true

	logging.For("platform").Info("music playing", "path", path,
		"rate", int(format.SampleRate), "channels", format.NumChannels)
	return nil
}

// Stop halts playback and releases the current track.
func (mp *beepMusicPlayer) Stop() {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.closeLocked()
}

// SetVolume sets playback volume, clamped to [0, 1].
func (mp *beepMusicPlayer) SetVolume(v float64) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	mp.volume = v
}

// Shutdown stops playback for good.
func (mp *beepMusicPlayer) Shutdown() {
	mp.Stop()
}

// ReadSamples fills buffer with interleaved stereo int16 PCM at the
// engine mix rate. Silence when nothing is playing. Tracks loop by
// seeking back to the start when the decoder runs dry.
func (mp *beepMusicPlayer) ReadSamples(buffer []int16) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if !mp.playing || mp.resampled == nil {
		for i := range buffer {
			buffer[i] = 0
		}
		return len(buffer)
	}

	numStereo := len(buffer) / 2
	if numStereo > len(mp.workBuffer) {
		numStereo = len(mp.workBuffer)
	}
	work := mp.workBuffer[:numStereo]

	n, ok := mp.resampled.Stream(work)
	if !ok || n < numStereo {
		if err := mp.streamer.Seek(0); err != nil {
			logging.For("platform").Warn("music loop seek failed", "err", err)
		}
		if n < numStereo {
			mp.resampled.Stream(work[n:])
		}
	}

	vol := mp.volume
	for i := 0; i < numStereo; i++ {
		buffer[i*2] = softClipToInt16(work[i][0] * vol)
		buffer[i*2+1] = softClipToInt16(work[i][1] * vol)
	}
	return numStereo * 2
}

func (mp *beepMusicPlayer) closeLocked() {
	if mp.streamer != nil {
		mp.streamer.Close()
	}
	mp.streamer = nil
	mp.resampled = nil
	mp.playing = false
	mp.path = ""
}

// softClipToInt16 converts a -1..1 float sample to int16 with a soft
// knee above +-30000 to leave mixing headroom.
func softClipToInt16(sample float64) int16 {
	scaled := sample * 32767.0
	if scaled > 30000 {
		scaled = 30000 + (scaled-30000)/4
	} else if scaled < -30000 {
		scaled = -30000 + (scaled+30000)/4
	}
	if scaled > 32767 {
		scaled = 32767
	} else if scaled < -32768 {
		scaled = -32768
	}
	return int16(scaled)
}
