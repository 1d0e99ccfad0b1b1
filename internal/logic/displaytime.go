package logic

import (
	"time"
)

// displayTimeSamples is how many recent frame increments feed the
// smoothing window.
const displayTimeSamples = 15

// displayTimeState smooths display time so per-frame jitter in the
// render cadence does not show up as motion jitter. Frame increments go
// through a trimmed moving average; when the recent window is chaotic
// (wildly varying frame times) smoothing is bypassed, and a small trail
// buffer keeps smoothed time from drifting away from actual time.
type displayTimeState struct {
	time      float64 // seconds
	increment float64 // last applied increment, seconds
	actual    float64 // unsmoothed accumulated time, seconds

	samples    []float64
	lastStepAt time.Time
	haveLast   bool
}

// StepDisplayTime advances display time for a new frame and fires due
// display timers. Driven once per frame from the logic loop.
func (lg *Logic) StepDisplayTime(now time.Time) {
	lg.loop.AssertThreadIsCurrent()
	d := &lg.display

	if !d.haveLast {
		d.lastStepAt = now
		d.haveLast = true
		return
	}
	elapsed := now.Sub(d.lastStepAt).Seconds()
	d.lastStepAt = now
	d.actual += elapsed

	d.samples = append(d.samples, elapsed)
	if len(d.samples) > displayTimeSamples {
		d.samples = d.samples[1:]
	}

	avg, min, max := trimmedAvg(d.samples)

	// Highly uneven recent frames mean smoothing would misrepresent
	// motion more than jitter would; pass actual time through instead.
	used := elapsed
	if avg > 0 && (max-min)/avg < 0.5 {
		used = avg
	}
	d.time += used

	// Keep smoothed time trailing actual time within a small buffer so
	// sustained cadence drift cannot accumulate.
	trail := avg * 0.03
	if d.time < d.actual-trail {
		d.time = d.actual - trail
	} else if d.time > d.actual+trail {
		d.time = d.actual + trail
	}
	d.increment = used

	lg.displayTimers.Run(int64(d.time * 1000.0))
}

// DisplayTime returns smoothed display time in seconds.
func (lg *Logic) DisplayTime() float64 {
	lg.loop.AssertThreadIsCurrent()
	return lg.display.time
}

// DisplayTimeIncrement returns the increment applied by the latest
// step, in seconds.
func (lg *Logic) DisplayTimeIncrement() float64 {
	lg.loop.AssertThreadIsCurrent()
	return lg.display.increment
}

// trimmedAvg averages samples with the single min and max excluded
// (when there are enough samples to spare them).
func trimmedAvg(samples []float64) (avg, min, max float64) {
	if len(samples) == 0 {
		return 0, 0, 0
	}
	min, max = samples[0], samples[0]
	sum := 0.0
	for _, s := range samples {
		sum += s
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	if len(samples) > 2 {
		return (sum - min - max) / float64(len(samples)-2), min, max
	}
	return sum / float64(len(samples)), min, max
}
