// Package cycler periodically publishes a random photo from a directory.
package cycler

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"github.com/photo-cycler/backend/internal/storage"
)

const (
	// DefaultInterval is the update rate in seconds used until one is configured.
	DefaultInterval = 5.0

	// DefaultMinPeriod bounds how fast the timer fires when the interval is 0.
	DefaultMinPeriod = 100 * time.Millisecond
)

// ErrInvalidInterval is returned for negative, NaN or infinite intervals.
var ErrInvalidInterval = errors.New("interval must be a finite number >= 0")

// Metrics receives cycle outcomes. Implementations must be safe for concurrent use.
type Metrics interface {
	ObserveCycle(result string, candidates int)
	ObserveCycleError(stage string)
	SetUpdateRate(seconds float64)
}

// Cycle results reported to Metrics.
const (
	ResultPublished = "published"
	ResultEmpty     = "empty"
	ResultError     = "error"

	StageList    = "list"
	StagePublish = "publish"
)

type reconfigureRequest struct {
	seconds float64
	done    chan struct{}
}

// Cycler owns the update interval and the timer that drives publish cycles.
// All timer mutation happens on the goroutine running Run.
type Cycler struct {
	dir       string
	publisher storage.Publisher
	clock     clock.Clock
	logger    *logrus.Logger
	metrics   Metrics
	minPeriod time.Duration

	randMu sync.Mutex
	rand   *rand.Rand

	mu       sync.RWMutex
	interval float64
	running  bool

	reconfigure chan reconfigureRequest
	stopped     chan struct{}
}

// Option configures a Cycler.
type Option func(c *Cycler)

func WithClock(clk clock.Clock) Option {
	return func(c *Cycler) {
		c.clock = clk
	}
}

func WithLogger(logger *logrus.Logger) Option {
	return func(c *Cycler) {
		c.logger = logger
	}
}

func WithRand(r *rand.Rand) Option {
	return func(c *Cycler) {
		c.rand = r
	}
}

func WithMetrics(m Metrics) Option {
	return func(c *Cycler) {
		c.metrics = m
	}
}

// WithInterval sets the initial interval. Invalid values are ignored.
func WithInterval(seconds float64) Option {
	return func(c *Cycler) {
		if validInterval(seconds) {
			c.interval = seconds
		}
	}
}

func WithMinPeriod(d time.Duration) Option {
	return func(c *Cycler) {
		if d > 0 {
			c.minPeriod = d
		}
	}
}

// New creates a Cycler that picks photos from dir and hands them to pub.
func New(dir string, pub storage.Publisher, opts ...Option) *Cycler {
	c := &Cycler{
		dir:         dir,
		publisher:   pub,
		clock:       clock.New(),
		logger:      logrus.StandardLogger(),
		metrics:     nopMetrics{},
		minPeriod:   DefaultMinPeriod,
		rand:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		interval:    DefaultInterval,
		reconfigure: make(chan reconfigureRequest),
	}

	for _, fn := range opts {
		fn(c)
	}
	c.metrics.SetUpdateRate(c.interval)

	return c
}

// Interval returns the last applied interval in seconds.
func (c *Cycler) Interval() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.interval
}

// Run drives publish cycles until ctx is done. Only one Run may be active.
func (c *Cycler) Run(ctx context.Context) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		c.logger.Warn("cycler already running")
		return
	}
	interval := c.interval
	ticker := c.clock.Ticker(c.period(interval))
	c.running = true
	c.stopped = make(chan struct{})
	c.mu.Unlock()

	c.metrics.SetUpdateRate(interval)
	c.logger.WithFields(logrus.Fields{
		"dir":        c.dir,
		"updateRate": interval,
	}).Info("cycler started")

	defer func() {
		ticker.Stop()
		c.mu.Lock()
		c.running = false
		close(c.stopped)
		c.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-c.reconfigure:
			ticker.Stop()
			c.mu.Lock()
			c.interval = req.seconds
			ticker = c.clock.Ticker(c.period(req.seconds))
			c.mu.Unlock()
			close(req.done)

			c.metrics.SetUpdateRate(req.seconds)
			c.logger.WithField("updateRate", req.seconds).Info("update rate changed")
		case <-ticker.C:
			c.Cycle()
		}
	}
}

// Running reports whether Run is active and its timer is armed.
func (c *Cycler) Running() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.running
}

// ConfigureInterval replaces the timer with one firing every seconds. While
// Run is active it returns only after the old timer is stopped, so no tick of
// the previous period is delivered after a nil return. Otherwise the value is
// stored and used when Run starts.
func (c *Cycler) ConfigureInterval(ctx context.Context, seconds float64) error {
	if !validInterval(seconds) {
		return ErrInvalidInterval
	}

	c.mu.Lock()
	if !c.running {
		c.interval = seconds
		c.mu.Unlock()
		c.metrics.SetUpdateRate(seconds)
		return nil
	}
	stopped := c.stopped
	c.mu.Unlock()

	req := reconfigureRequest{seconds: seconds, done: make(chan struct{})}
	select {
	case c.reconfigure <- req:
	case <-stopped:
		return c.ConfigureInterval(ctx, seconds)
	case <-ctx.Done():
		return ctx.Err()
	}

	<-req.done
	return nil
}

// maxIntervalSeconds is the longest interval a time.Duration can hold.
var maxIntervalSeconds = float64(math.MaxInt64) / float64(time.Second)

// period converts an interval to a ticker period. Intervals shorter than the
// minimum period, zero included, fire at the minimum period.
func (c *Cycler) period(seconds float64) time.Duration {
	if seconds >= maxIntervalSeconds {
		return time.Duration(math.MaxInt64)
	}
	d := time.Duration(seconds * float64(time.Second))
	if d < c.minPeriod {
		return c.minPeriod
	}
	return d
}

func validInterval(seconds float64) bool {
	return !math.IsNaN(seconds) && !math.IsInf(seconds, 0) && seconds >= 0
}

type nopMetrics struct{}

func (nopMetrics) ObserveCycle(string, int) {}
func (nopMetrics) ObserveCycleError(string) {}
func (nopMetrics) SetUpdateRate(float64) {}
