package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/softec-apps/PUI-POS-sub002/internal/domain/entity"
	"github.com/softec-apps/PUI-POS-sub002/pkg/logger"
)

// EventTypeSaleCommitted tipo del evento publicado tras el Commit de una venta.
const EventTypeSaleCommitted = "sale.committed"

// SaleCommittedEvent cuerpo JSON del mensaje. La clave del mensaje es el ID de la venta.
type SaleCommittedEvent struct {
	EventType  string          `json:"event_type"`
	SaleID     string          `json:"sale_id"`
	RequestID  string          `json:"request_id"`
	UserID     string          `json:"user_id"`
	CustomerID string          `json:"customer_id,omitempty"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxAmount  decimal.Decimal `json:"tax_amount"`
	Total      decimal.Decimal `json:"total"`
	Items      []SaleEventItem `json:"items"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// SaleEventItem línea de la venta en el evento.
type SaleEventItem struct {
	ProductID  string          `json:"product_id,omitempty"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Total      decimal.Decimal `json:"total"`
	MovementID string          `json:"movement_id,omitempty"`
}

// SalePublisher publica ventas confirmadas en Kafka con un SyncProducer.
type SalePublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

// NewSalePublisher conecta con los brokers. RequiredAcks=WaitForAll e idempotencia activada:
// un reintento del productor no duplica el evento en la partición.
func NewSalePublisher(brokers []string, topic string, log *logger.Logger) (*SalePublisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Return.Successes = true
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "kafka: crear productor")
	}
	return NewSalePublisherWithProducer(producer, topic, log), nil
}

// NewSalePublisherWithProducer usa un productor ya construido (tests con sarama/mocks).
func NewSalePublisherWithProducer(producer sarama.SyncProducer, topic string, log *logger.Logger) *SalePublisher {
	return &SalePublisher{producer: producer, topic: topic, log: log.Component("kafka-sale-publisher")}
}

// NotifySaleCommitted serializa la venta y la envía. SendMessage de sarama no acepta contexto;
// si ctx ya venció no se intenta el envío.
func (p *SalePublisher) NotifySaleCommitted(ctx context.Context, sale *entity.Sale) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "kafka: publicar venta")
	}
	payload, err := json.Marshal(NewSaleCommittedEvent(sale))
	if err != nil {
		return errors.Wrap(err, "kafka: serializar evento")
	}

	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(sale.ID),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: time.Now().UTC(),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(EventTypeSaleCommitted)},
		},
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.log.Error().Err(err).Str("topic", p.topic).Str("sale_id", sale.ID).Msg("envío a kafka fallido")
		return errors.Wrap(err, "kafka: enviar mensaje")
	}
	p.log.Debug().
		Str("topic", p.topic).
		Str("sale_id", sale.ID).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("venta publicada")
	return nil
}

// Close cierra el productor.
func (p *SalePublisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return errors.Wrap(err, "kafka: cerrar productor")
	}
	return nil
}

// NewSaleCommittedEvent arma el evento a partir de la venta persistida.
func NewSaleCommittedEvent(sale *entity.Sale) SaleCommittedEvent {
	items := make([]SaleEventItem, 0, len(sale.Items))
	for _, it := range sale.Items {
		items = append(items, SaleEventItem{
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			Total:      it.Total,
			MovementID: it.MovementID,
		})
	}
	return SaleCommittedEvent{
		EventType:  EventTypeSaleCommitted,
		SaleID:     sale.ID,
		RequestID:  sale.RequestID,
		UserID:     sale.UserID,
		CustomerID: sale.CustomerID,
		Subtotal:   sale.Subtotal,
		TaxAmount:  sale.TaxAmount,
		Total:      sale.Total,
		Items:      items,
		OccurredAt: sale.CreatedAt,
	}
}
