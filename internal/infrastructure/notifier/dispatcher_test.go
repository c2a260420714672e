package notifier

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softec-apps/PUI-POS-sub002/internal/domain/entity"
)

type funcNotifier func(ctx context.Context, s *entity.Sale) error

func (f funcNotifier) NotifySaleCommitted(ctx context.Context, s *entity.Sale) error { return f(ctx, s) }

func TestDispatcher_AllSinksCalled(t *testing.T) {
	var calls atomic.Int32
	ok := funcNotifier(func(context.Context, *entity.Sale) error {
		calls.Add(1)
		return nil
	})
	d := NewDispatcher(Sink{"kafka", ok}, Sink{"einvoice", ok}, Sink{"vacío", nil})
	assert.Equal(t, 2, d.Len())

	require.NoError(t, d.NotifySaleCommitted(context.Background(), &entity.Sale{ID: "s1"}))
	assert.Equal(t, int32(2), calls.Load())
}

func TestDispatcher_FailureDoesNotStopOthers(t *testing.T) {
	var slowDone atomic.Bool
	errBroker := errors.New("broker caído")
	failing := funcNotifier(func(context.Context, *entity.Sale) error { return errBroker })
	slow := funcNotifier(func(ctx context.Context, _ *entity.Sale) error {
		select {
		case <-time.After(20 * time.Millisecond):
			slowDone.Store(true)
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	err := NewDispatcher(Sink{"kafka", failing}, Sink{"einvoice", slow}).
		NotifySaleCommitted(context.Background(), &entity.Sale{ID: "s1"})
	require.Error(t, err)
	var de *DispatchError
	require.ErrorAs(t, err, &de)
	require.Len(t, de.Errs, 1)
	assert.EqualError(t, de.Errs[0], "kafka: broker caído")
	assert.ErrorIs(t, err, errBroker)
	assert.True(t, slowDone.Load())
}

func TestDispatcher_CollectsEveryFailure(t *testing.T) {
	errKafka := errors.New("broker caído")
	errWebhook := errors.New("webhook 503")
	d := NewDispatcher(
		Sink{"kafka", funcNotifier(func(context.Context, *entity.Sale) error { return errKafka })},
		Sink{"einvoice", funcNotifier(func(context.Context, *entity.Sale) error { return errWebhook })},
		Sink{"auditoría", funcNotifier(func(context.Context, *entity.Sale) error { return nil })},
	)

	err := d.NotifySaleCommitted(context.Background(), &entity.Sale{ID: "s1"})
	var de *DispatchError
	require.ErrorAs(t, err, &de)
	assert.Len(t, de.Errs, 2)
	assert.ErrorIs(t, err, errKafka)
	assert.ErrorIs(t, err, errWebhook)
	assert.Contains(t, err.Error(), "2 destino(s)")
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.NotifySaleCommitted(context.Background(), &entity.Sale{}))
	assert.NoError(t, NewDispatcher().NotifySaleCommitted(context.Background(), &entity.Sale{}))
}
