package sale

import (
	"time"

	"github.com/softec-apps/PUI-POS-sub002/internal/metrics"
	"github.com/softec-apps/PUI-POS-sub002/pkg/logger"
)

// State estado de la creación de una venta.
type State string

// pending → stock_validated → stock_reserved → persisted → committed; cualquier fallo → aborted.
const (
	StatePending        State = "pending"
	StateStockValidated State = "stock_validated"
	StateStockReserved  State = "stock_reserved"
	StatePersisted      State = "persisted"
	StateCommitted      State = "committed"
	StateAborted        State = "aborted"
)

var nextState = map[State]State{
	StatePending:        StateStockValidated,
	StateStockValidated: StateStockReserved,
	StateStockReserved:  StatePersisted,
	StatePersisted:      StateCommitted,
}

// CanTransition indica si from → to es válido.
func CanTransition(from, to State) bool {
	if to == StateAborted {
		return from != StateCommitted && from != StateAborted
	}
	return nextState[from] == to
}

// tracker registra las transiciones de una venta en logs y métricas.
type tracker struct {
	requestID string
	state     State
	started   time.Time
	log       *logger.Logger
	metrics   *metrics.StockMetrics
}

func newTracker(requestID string, log *logger.Logger, m *metrics.StockMetrics) *tracker {
	t := &tracker{requestID: requestID, state: StatePending, started: time.Now(), log: log, metrics: m}
	m.RecordSaleState(string(StatePending))
	return t
}

func (t *tracker) advance(to State) {
	if !CanTransition(t.state, to) {
		t.log.Error().Str("request_id", t.requestID).Str("from", string(t.state)).Str("to", string(to)).Msg("transición de venta inválida")
		return
	}
	t.log.Debug().Str("request_id", t.requestID).Str("from", string(t.state)).Str("to", string(to)).Msg("venta")
	t.state = to
	t.metrics.RecordSaleState(string(to))
	if to == StateCommitted || to == StateAborted {
		t.metrics.RecordSaleDuration(time.Since(t.started))
	}
}

func (t *tracker) abort(err error) error {
	if t.state != StateAborted {
		t.log.Warn().Err(err).Str("request_id", t.requestID).Str("from", string(t.state)).Msg("venta abortada")
		t.advance(StateAborted)
	}
	return err
}
