// ABOUTME: Playback goroutine shared by write-based drivers
// ABOUTME: Mixes one period under the driver lock and hands it to a sink
package driver

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Sink receives each mixed period from a Pump
type Sink interface {
	WritePeriod(samples []int32) error
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc func(samples []int32) error

// WritePeriod calls f(samples)
func (f SinkFunc) WritePeriod(samples []int32) error {
	return f(samples)
}

// PumpConfig configures a Pump
type PumpConfig struct {
	Mixer        Mixer
	Sink         Sink
	BufferFrames int
	Channels     int
	MixRate      int

	// SinkPaced means WritePeriod blocks until the device has room, so the
	// loop does not sleep between active periods
	SinkPaced bool

	// Freewheel disables sleeping entirely while active
	Freewheel bool

	// Lock is held while mixing. Drivers pass a mutex that outlives the
	// pump so Lock and Unlock pair up across Finish and Init. Nil
	// allocates one.
	Lock *sync.Mutex

	Logger *slog.Logger
}

// Pump runs the playback loop: while not stopped, if active it locks,
// calls the mixer for one period, unlocks and writes the period to the
// sink. Otherwise it sleeps one period.
type Pump struct {
	mixer     Mixer
	sink      Sink
	frames    int
	buf       []int32
	period    time.Duration
	sinkPaced bool
	freewheel bool
	logger    *slog.Logger

	mu     *sync.Mutex
	active atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	framesMixed atomic.Int64
	periods     atomic.Int64
	writeErrors atomic.Int64
}

// NewPump allocates the period buffer. Call Run to spawn the goroutine.
func NewPump(cfg PumpConfig) *Pump {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mu := cfg.Lock
	if mu == nil {
		mu = &sync.Mutex{}
	}

	period := time.Duration(float64(cfg.BufferFrames) / float64(cfg.MixRate) * float64(time.Second))

	return &Pump{
		mixer:     cfg.Mixer,
		sink:      cfg.Sink,
		frames:    cfg.BufferFrames,
		buf:       make([]int32, cfg.BufferFrames*cfg.Channels),
		period:    period,
		sinkPaced: cfg.SinkPaced,
		freewheel: cfg.Freewheel,
		logger:    logger,
		mu:        mu,
	}
}

// Period returns the wall-clock duration of one period
func (p *Pump) Period() time.Duration {
	return p.period
}

// Run spawns the playback goroutine
func (p *Pump) Run() {
	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.done = make(chan struct{})
	go p.loop()
}

func (p *Pump) loop() {
	defer close(p.done)

	timer := time.NewTimer(p.period)
	defer timer.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		default:
		}

		if p.active.Load() {
			p.mixPeriod()

			if err := p.sink.WritePeriod(p.buf); err != nil {
				if p.writeErrors.Add(1) == 1 {
					p.logger.Warn("audio write failed", "error", err)
				}
			} else if p.sinkPaced || p.freewheel {
				continue
			}
		}

		timer.Reset(p.period)
		select {
		case <-timer.C:
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Pump) mixPeriod() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.mixer == nil {
		fillSilence(p.buf)
	} else {
		p.mixer.Mix(p.frames, p.buf)
	}
	p.framesMixed.Add(int64(p.frames))
	p.periods.Add(1)
}

// SetActive toggles whether the loop calls the mixer
func (p *Pump) SetActive(active bool) {
	p.active.Store(active)
}

// Lock takes the lock the loop holds while mixing
func (p *Pump) Lock() {
	p.mu.Lock()
}

// Unlock releases the mixing lock
func (p *Pump) Unlock() {
	p.mu.Unlock()
}

// Stop signals the loop to exit and waits for it
func (p *Pump) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
}

// Done is closed once the goroutine has exited
func (p *Pump) Done() <-chan struct{} {
	return p.done
}

// Stats returns counters for the loop
func (p *Pump) Stats() Stats {
	running := false
	if p.done != nil {
		select {
		case <-p.done:
		default:
			running = true
		}
	}

	return Stats{
		BufferFrames: p.frames,
		FramesMixed:  p.framesMixed.Load(),
		Periods:      p.periods.Load(),
		WriteErrors:  p.writeErrors.Load(),
		Active:       p.active.Load(),
		Running:      running,
	}
}
