package out

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	hclog "github.com/hashicorp/go-hclog"

	"intervals/internal/modules/playback/domain"
)

const toneSampleRate = beep.SampleRate(44100)

// Pitches per interval type; the cue announces the phase that starts.
var phaseTones = map[string]float64{
	domain.TypeWarmup:        523.25,
	domain.TypeHighIntensity: 880,
	domain.TypeLowIntensity:  659.25,
	domain.TypeCoolDown:      523.25,
}

// ToneNotifier plays short sine tones on the default audio device. When
// the device cannot be opened it logs once and stays silent.
type ToneNotifier struct {
	logger hclog.Logger

	initOnce sync.Once
	ready    bool
	mu       sync.Mutex
}

func NewToneNotifier(logger hclog.Logger) *ToneNotifier {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &ToneNotifier{logger: logger.Named("tone")}
}

func (n *ToneNotifier) PhaseBoundary(next domain.Snapshot) {
	freq, ok := phaseTones[next.Type]
	if !ok {
		freq = 880
	}
	n.play(tone{freq: freq, length: 180 * time.Millisecond})
}

func (n *ToneNotifier) Completed(domain.Snapshot) {
	n.play(
		tone{freq: 880, length: 150 * time.Millisecond},
		tone{length: 80 * time.Millisecond},
		tone{freq: 880, length: 150 * time.Millisecond},
		tone{length: 80 * time.Millisecond},
		tone{freq: 1046.5, length: 400 * time.Millisecond},
	)
}

type tone struct {
	// freq 0 is a pause.
	freq   float64
	length time.Duration
}

func (n *ToneNotifier) play(tones ...tone) {
	n.initOnce.Do(func() {
		if err := speaker.Init(toneSampleRate, toneSampleRate.N(time.Second/10)); err != nil {
			n.logger.Warn("audio disabled", "error", err)
			return
		}
		n.ready = true
	})
	if !n.ready {
		return
	}
	streamers := make([]beep.Streamer, 0, len(tones))
	for _, t := range tones {
		samples := toneSampleRate.N(t.length)
		if t.freq == 0 {
			streamers = append(streamers, beep.Silence(samples))
			continue
		}
		sine, err := generators.SineTone(toneSampleRate, t.freq)
		if err != nil {
			n.logger.Debug("tone skipped", "freq", t.freq, "error", err)
			continue
		}
		streamers = append(streamers, beep.Take(samples, sine))
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	speaker.Play(beep.Seq(streamers...))
}
