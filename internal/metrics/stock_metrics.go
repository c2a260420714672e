package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StockMetrics métricas del ledger de inventario y del flujo de venta.
// Todos los métodos aceptan receptor nil (métricas deshabilitadas).
type StockMetrics struct {
	movements         *prometheus.CounterVec
	insufficientStock *prometheus.CounterVec
	bulkBatches       *prometheus.CounterVec
	saleTransitions   *prometheus.CounterVec
	saleDuration      prometheus.Histogram
	notifications     *prometheus.CounterVec
}

// NewStockMetrics registra las métricas en el registerer global.
func NewStockMetrics() *StockMetrics {
	return NewStockMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewStockMetricsWithRegisterer permite un registry aislado (tests).
func NewStockMetricsWithRegisterer(registerer prometheus.Registerer) *StockMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &StockMetrics{
		movements: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "pos_stock_movements_total",
			Help: "Movimientos escritos en el ledger por tipo",
		}, []string{"movement_type"}),
		insufficientStock: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "pos_stock_insufficient_total",
			Help: "Rechazos por stock insuficiente según la fase en que se detectaron",
		}, []string{"phase"}),
		bulkBatches: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "pos_stock_bulk_batches_total",
			Help: "Lotes de descuento masivo por resultado",
		}, []string{"result"}),
		saleTransitions: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "pos_sale_state_transitions_total",
			Help: "Transiciones de la máquina de estados de la venta",
		}, []string{"state"}),
		saleDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "pos_sale_duration_seconds",
			Help:    "Duración de la creación de ventas (incluye la transacción)",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		notifications: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "pos_sale_notifications_total",
			Help: "Notificaciones post-commit de ventas por resultado",
		}, []string{"result"}),
	}
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordMovement cuenta un movimiento confirmado.
func (m *StockMetrics) RecordMovement(movementType string) {
	if m == nil {
		return
	}
	m.movements.WithLabelValues(movementType).Inc()
}

// RecordInsufficientStock cuenta un rechazo; phase = precheck | mutation.
func (m *StockMetrics) RecordInsufficientStock(phase string) {
	if m == nil {
		return
	}
	m.insufficientStock.WithLabelValues(phase).Inc()
}

// RecordBulkBatch cuenta un lote masivo; result = committed | rejected | aborted.
func (m *StockMetrics) RecordBulkBatch(result string) {
	if m == nil {
		return
	}
	m.bulkBatches.WithLabelValues(result).Inc()
}

// RecordSaleState cuenta la llegada de una venta a un estado.
func (m *StockMetrics) RecordSaleState(state string) {
	if m == nil {
		return
	}
	m.saleTransitions.WithLabelValues(state).Inc()
}

// RecordSaleDuration registra la duración total de CreateSale.
func (m *StockMetrics) RecordSaleDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.saleDuration.Observe(d.Seconds())
}

// RecordNotification cuenta el resultado de una notificación post-commit.
func (m *StockMetrics) RecordNotification(result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(result).Inc()
}
