package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/dtroode/authkeeper-server/internal/logger"
	"github.com/dtroode/authkeeper-server/internal/model"
)

// ErrDispatcherClosed is returned by Enqueue after Close.
var ErrDispatcherClosed = errors.New("dispatcher is closed")

// ErrQueueFull is returned by Enqueue when the queue has no free slot.
var ErrQueueFull = errors.New("notification queue is full")

// DispatcherConfig tunes the delivery workers.
type DispatcherConfig struct {
	Workers         int
	QueueSize       int
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	AttemptTimeout  time.Duration
}

// Dispatcher delivers mail in the background. Each message is retried with
// exponential backoff; every attempt goes through the breaker. Failures are
// logged and dropped.
type Dispatcher struct {
	deliverer model.Deliverer
	breaker   *Breaker
	cfg       DispatcherConfig
	logger    *logger.Logger

	queue  chan model.Mail
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(deliverer model.Deliverer, breaker *Breaker, cfg DispatcherConfig, logger *logger.Logger) *Dispatcher {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		deliverer: deliverer,
		breaker:   breaker,
		cfg:       cfg,
		logger:    logger,
		queue:     make(chan model.Mail, cfg.QueueSize),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start launches the workers.
func (d *Dispatcher) Start() {
	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for mail := range d.queue {
				d.deliver(mail)
			}
		}()
	}
}

// Enqueue schedules mail without blocking.
func (d *Dispatcher) Enqueue(mail model.Mail) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherClosed
	}

	select {
	case d.queue <- mail:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting mail and waits for queued messages to be delivered.
// When ctx ends first, in-flight deliveries are cancelled.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return ctx.Err()
	}
}

func (d *Dispatcher) deliver(mail model.Mail) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = d.cfg.InitialInterval
	policy.MaxInterval = d.cfg.MaxInterval
	policy.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(policy, d.cfg.MaxRetries), d.ctx)

	attempt := 0
	op := func() error {
		attempt++
		if err := d.breaker.Allow(); err != nil {
			return backoff.Permanent(err)
		}

		ctx := d.ctx
		if d.cfg.AttemptTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(d.ctx, d.cfg.AttemptTimeout)
			defer cancel()
		}

		if err := d.deliverer.Deliver(ctx, mail); err != nil {
			d.breaker.Failure()
			return err
		}
		d.breaker.Success()
		return nil
	}

	err := backoff.RetryNotify(op, b, func(err error, wait time.Duration) {
		d.logger.Debug("Notification dispatcher: delivery failed, retrying",
			"subject", mail.Subject,
			"attempt", attempt,
			"wait", wait,
			"error", err.Error())
	})
	if err != nil {
		if errors.Is(err, ErrBreakerOpen) {
			d.logger.Warn("Notification dispatcher: circuit open, message dropped",
				"subject", mail.Subject)
			return
		}
		d.logger.Error("Notification dispatcher: delivery failed, message dropped",
			"subject", mail.Subject,
			"attempts", attempt,
			"error", err.Error())
		return
	}

	d.logger.Debug("Notification dispatcher: message delivered",
		"subject", mail.Subject,
		"attempts", attempt)
}
