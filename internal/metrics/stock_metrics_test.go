package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestStockMetrics_Contadores(t *testing.T) {
	m := NewStockMetricsWithRegisterer(prometheus.NewRegistry())

	m.RecordMovement("sale")
	m.RecordMovement("sale")
	m.RecordMovement("purchase")
	m.RecordInsufficientStock("precheck")
	m.RecordBulkBatch("aborted")
	m.RecordSaleState("committed")
	m.RecordNotification("error")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.movements.WithLabelValues("sale")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.movements.WithLabelValues("purchase")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.insufficientStock.WithLabelValues("precheck")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bulkBatches.WithLabelValues("aborted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.saleTransitions.WithLabelValues("committed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("error")))
}

func TestStockMetrics_RegistroRepetidoReutilizaColectores(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewStockMetricsWithRegisterer(reg)
	second := NewStockMetricsWithRegisterer(reg)

	first.RecordMovement("damaged")
	second.RecordMovement("damaged")

	assert.Equal(t, 2.0, testutil.ToFloat64(first.movements.WithLabelValues("damaged")))
	second.RecordSaleDuration(150 * time.Millisecond)
	assert.Equal(t, 1, testutil.CollectAndCount(first.saleDuration))
}

func TestStockMetrics_ReceptorNil(t *testing.T) {
	var m *StockMetrics
	assert.NotPanics(t, func() {
		m.RecordMovement("sale")
		m.RecordInsufficientStock("mutation")
		m.RecordBulkBatch("committed")
		m.RecordSaleState("aborted")
		m.RecordSaleDuration(time.Second)
		m.RecordNotification("ok")
	})
}
