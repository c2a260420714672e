package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softec-apps/PUI-POS-sub002/internal/domain/entity"
	"github.com/softec-apps/PUI-POS-sub002/pkg/logger"
)

func committedSale() *entity.Sale {
	return &entity.Sale{
		ID:        "sale-1",
		RequestID: "pos-1-000001",
		UserID:    "user-1",
		Subtotal:  decimal.RequireFromString("35"),
		TaxAmount: decimal.RequireFromString("4.5"),
		Total:     decimal.RequireFromString("39.5"),
		Status:    entity.SaleStatusCommitted,
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Items: []entity.SaleItem{
			{ProductID: "p1", Quantity: 2, UnitPrice: decimal.RequireFromString("10"), Total: decimal.RequireFromString("23"), MovementID: "m1"},
			{Description: "Servicio", Quantity: 1, UnitPrice: decimal.RequireFromString("15"), Total: decimal.RequireFromString("16.5")},
		},
	}
}

func TestSalePublisher_NotifySaleCommitted(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		assert.Equal(t, "pos.sales.committed", msg.Topic)
		key, err := msg.Key.Encode()
		require.NoError(t, err)
		assert.Equal(t, "sale-1", string(key))

		raw, err := msg.Value.Encode()
		require.NoError(t, err)
		var ev SaleCommittedEvent
		require.NoError(t, json.Unmarshal(raw, &ev))
		assert.Equal(t, EventTypeSaleCommitted, ev.EventType)
		assert.Equal(t, "pos-1-000001", ev.RequestID)
		assert.True(t, decimal.RequireFromString("39.5").Equal(ev.Total))
		require.Len(t, ev.Items, 2)
		assert.Equal(t, "m1", ev.Items[0].MovementID)
		assert.Empty(t, ev.Items[1].ProductID)
		return nil
	})

	pub := NewSalePublisherWithProducer(producer, "pos.sales.committed", logger.NewNop())
	require.NoError(t, pub.NotifySaleCommitted(context.Background(), committedSale()))
	require.NoError(t, pub.Close())
}

func TestSalePublisher_SendError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := NewSalePublisherWithProducer(producer, "pos.sales.committed", logger.NewNop())
	err := pub.NotifySaleCommitted(context.Background(), committedSale())
	require.Error(t, err)
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, pub.Close())
}

func TestSalePublisher_ExpiredContextSkipsSend(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	pub := NewSalePublisherWithProducer(producer, "pos.sales.committed", logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := pub.NotifySaleCommitted(ctx, committedSale())
	assert.ErrorIs(t, err, context.Canceled)
	require.NoError(t, pub.Close())
}
