package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/authkeeper-server/internal/mocks"
	"github.com/dtroode/authkeeper-server/internal/model"
	"github.com/dtroode/authkeeper-server/internal/testutil"
)

var testMail = model.Mail{To: "user@example.com", Subject: "Hello", HTML: "<p>hi</p>"}

func testDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		Workers:         1,
		QueueSize:       4,
		MaxRetries:      3,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		AttemptTimeout:  time.Second,
	}
}

func closeDispatcher(t *testing.T, d *Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))
}

func TestDispatcher_Delivers(t *testing.T) {
	deliverer := mocks.NewDeliverer(t)
	deliverer.On("Deliver", mock.Anything, testMail).Return(nil).Once()

	breaker := NewBreaker(5, time.Minute)
	d := NewDispatcher(deliverer, breaker, testDispatcherConfig(), testutil.MakeNoopLogger())
	d.Start()

	require.NoError(t, d.Enqueue(testMail))
	closeDispatcher(t, d)

	assert.Equal(t, StateClosed, breaker.State())
}

func TestDispatcher_RetriesUntilSuccess(t *testing.T) {
	deliverer := mocks.NewDeliverer(t)
	deliverer.On("Deliver", mock.Anything, testMail).Return(errors.New("smtp unavailable")).Twice()
	deliverer.On("Deliver", mock.Anything, testMail).Return(nil).Once()

	breaker := NewBreaker(5, time.Minute)
	d := NewDispatcher(deliverer, breaker, testDispatcherConfig(), testutil.MakeNoopLogger())
	d.Start()

	require.NoError(t, d.Enqueue(testMail))
	closeDispatcher(t, d)

	assert.Equal(t, StateClosed, breaker.State())
}

func TestDispatcher_GivesUpAfterMaxRetries(t *testing.T) {
	deliverer := mocks.NewDeliverer(t)
	deliverer.On("Deliver", mock.Anything, testMail).Return(errors.New("smtp unavailable")).Times(3)

	cfg := testDispatcherConfig()
	cfg.MaxRetries = 2
	d := NewDispatcher(deliverer, NewBreaker(10, time.Minute), cfg, testutil.MakeNoopLogger())
	d.Start()

	require.NoError(t, d.Enqueue(testMail))
	closeDispatcher(t, d)
}

func TestDispatcher_BreakerStopsRetries(t *testing.T) {
	deliverer := mocks.NewDeliverer(t)
	deliverer.On("Deliver", mock.Anything, testMail).Return(errors.New("smtp unavailable")).Times(2)

	cfg := testDispatcherConfig()
	cfg.MaxRetries = 5
	breaker := NewBreaker(2, time.Hour)
	d := NewDispatcher(deliverer, breaker, cfg, testutil.MakeNoopLogger())
	d.Start()

	require.NoError(t, d.Enqueue(testMail))
	require.NoError(t, d.Enqueue(testMail))
	closeDispatcher(t, d)

	assert.Equal(t, StateOpen, breaker.State())
}

func TestDispatcher_Enqueue(t *testing.T) {
	t.Run("queue full", func(t *testing.T) {
		cfg := testDispatcherConfig()
		cfg.QueueSize = 1
		d := NewDispatcher(mocks.NewDeliverer(t), NewBreaker(1, time.Minute), cfg, testutil.MakeNoopLogger())

		require.NoError(t, d.Enqueue(testMail))
		assert.ErrorIs(t, d.Enqueue(testMail), ErrQueueFull)
	})

	t.Run("after close", func(t *testing.T) {
		d := NewDispatcher(mocks.NewDeliverer(t), NewBreaker(1, time.Minute), testDispatcherConfig(), testutil.MakeNoopLogger())
		d.Start()
		closeDispatcher(t, d)

		assert.ErrorIs(t, d.Enqueue(testMail), ErrDispatcherClosed)
		// second close is a no-op
		closeDispatcher(t, d)
	})
}

func TestDispatcher_CloseDeadlineCancelsDelivery(t *testing.T) {
	deliverer := mocks.NewDeliverer(t)
	deliverer.On("Deliver", mock.Anything, testMail).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(context.Canceled).
		Once()

	cfg := testDispatcherConfig()
	cfg.MaxRetries = 0
	cfg.AttemptTimeout = 0
	d := NewDispatcher(deliverer, NewBreaker(5, time.Minute), cfg, testutil.MakeNoopLogger())
	d.Start()
	require.NoError(t, d.Enqueue(testMail))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := d.Close(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
