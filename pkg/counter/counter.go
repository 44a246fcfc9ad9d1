// Package counter runs a periodic background counter.
//
// A single goroutine owns the count. It publishes the current value, moves it
// one step in the current direction and waits for the next tick. Observers
// receive values through a callback and a channel; direction changes and stop
// requests reach the goroutine as messages, never as shared writes.
package counter

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ib-77/gridsum/internal/logging"
	"github.com/ib-77/gridsum/internal/metrics"
	"github.com/ib-77/gridsum/pkg/types"
)

// DefaultInterval is the pause between ticks when none is configured.
const DefaultInterval = 100 * time.Millisecond

type Direction int

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Down {
		return "down"
	}
	return "up"
}

func (d Direction) step() int64 {
	if d == Down {
		return -1
	}
	return 1
}

type config struct {
	start   int64
	dir     Direction
	onTick  func(int64)
	logger  types.Logger
	metrics types.MetricsCollector
}

type Option func(*config)

// WithOnTick registers fn to be called on the counter goroutine with every
// published value. fn must return quickly; the next tick waits for it.
// Stop, Up and Down wait on the counter goroutine, so fn must not call them
// directly. Call them from another goroutine instead, e.g. go c.Stop().
func WithOnTick(fn func(value int64)) Option {
	return func(c *config) {
		c.onTick = fn
	}
}

// WithStart sets the first published value.
func WithStart(v int64) Option {
	return func(c *config) {
		c.start = v
	}
}

// WithDirection sets the initial direction. The default is Up.
func WithDirection(d Direction) Option {
	return func(c *config) {
		c.dir = d
	}
}

func WithLogger(l types.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithMetrics(m types.MetricsCollector) Option {
	return func(c *config) {
		if m != nil {
			c.metrics = m
		}
	}
}

// Counter is a handle to a running counter.
type Counter struct {
	interval time.Duration
	cfg      config

	values   chan int64
	commands chan Direction
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	last atomic.Int64
}

// Start launches a counter that ticks every interval until Stop is called or
// ctx ends.
func Start(ctx context.Context, interval time.Duration, opts ...Option) (*Counter, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: counter interval must be positive, got %v", types.ErrInvalidArgument, interval)
	}

	cfg := config{logger: logging.NewNop(), metrics: metrics.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Counter{
		interval: interval,
		cfg:      cfg,
		values:   make(chan int64, 1),
		commands: make(chan Direction),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	c.last.Store(cfg.start)

	go c.run(ctx)

	return c, nil
}

func (c *Counter) run(ctx context.Context) {
	defer close(c.done)
	defer close(c.values)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	value := c.cfg.start
	dir := c.cfg.dir
	c.cfg.logger.Debug("counter started", "interval", c.interval, "start", value)

	for {
		c.publish(value)
		value += dir.step()

		for waiting := true; waiting; {
			select {
			case <-ticker.C:
				waiting = false
			case d := <-c.commands:
				dir = d
				c.cfg.logger.Debug("counter direction changed", "direction", d)
			case <-c.stop:
				c.cfg.logger.Debug("counter stopped", "value", c.last.Load())
				return
			case <-ctx.Done():
				c.cfg.logger.Debug("counter cancelled", "value", c.last.Load(), "err", ctx.Err())
				return
			}
		}
	}
}

// publish hands value to the observers. A value nobody has read yet is
// replaced so the channel always holds the latest one.
func (c *Counter) publish(value int64) {
	c.last.Store(value)
	c.cfg.metrics.RecordCounterTick()

	if c.cfg.onTick != nil {
		c.cfg.onTick(value)
	}

	select {
	case c.values <- value:
	default:
		select {
		case <-c.values:
		default:
		}
		c.values <- value
	}
}

// Values returns a channel carrying the latest published value. It is closed
// after the counter stops.
func (c *Counter) Values() <-chan int64 {
	return c.values
}

// Value returns the last published value.
func (c *Counter) Value() int64 {
	return c.last.Load()
}

// Up makes the counter count upwards from the next tick on.
func (c *Counter) Up() {
	c.send(Up)
}

// Down makes the counter count downwards from the next tick on.
func (c *Counter) Down() {
	c.send(Down)
}

func (c *Counter) send(d Direction) {
	select {
	case c.commands <- d:
	case <-c.done:
	}
}

// Stop ends the counter and waits for its goroutine to exit. It is safe to
// call more than once and from several goroutines.
func (c *Counter) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
	<-c.done
}

// Done is closed once the counter goroutine has exited.
func (c *Counter) Done() <-chan struct{} {
	return c.done
}
