// Package notifier reparte la venta confirmada entre los destinos configurados
// (Kafka, facturación electrónica).
package notifier

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/softec-apps/PUI-POS-sub002/internal/application/sale"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain/entity"
)

var (
	_ sale.InvoiceNotifier = (*Dispatcher)(nil)
	_ sale.InvoiceNotifier = Nop{}
)

// Sink destino con nombre, para identificar el que falló.
type Sink struct {
	Name     string
	Notifier sale.InvoiceNotifier
}

// Dispatcher notifica a todos los sinks en paralelo. Un sink que falla no cancela a los demás;
// el error devuelto agrupa los fallos.
type Dispatcher struct {
	sinks []Sink
}

// NewDispatcher ignora los sinks con Notifier nil.
func NewDispatcher(sinks ...Sink) *Dispatcher {
	d := &Dispatcher{}
	for _, s := range sinks {
		if s.Notifier != nil {
			d.sinks = append(d.sinks, s)
		}
	}
	return d
}

// Len número de sinks activos.
func (d *Dispatcher) Len() int { return len(d.sinks) }

func (d *Dispatcher) NotifySaleCommitted(ctx context.Context, s *entity.Sale) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	for _, sink := range d.sinks {
		g.Go(func() error {
			err := sink.Notifier.NotifySaleCommitted(ctx, s)
			if err == nil {
				return nil
			}
			err = fmt.Errorf("%s: %w", sink.Name, err)
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			return err
		})
	}
	// Wait devuelve solo el primer fallo; el resto queda en errs
	if err := g.Wait(); err != nil {
		return &DispatchError{Errs: errs}
	}
	return nil
}

// DispatchError fallos de uno o más sinks, cada uno prefijado con el nombre del sink.
type DispatchError struct {
	Errs []error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("notificación fallida en %d destino(s): %v", len(e.Errs), errors.Join(e.Errs...))
}

// Unwrap permite errors.Is/As sobre el error de cada sink.
func (e *DispatchError) Unwrap() []error { return e.Errs }

// Nop no hace nada; se usa cuando no hay destinos configurados.
type Nop struct{}

func (Nop) NotifySaleCommitted(context.Context, *entity.Sale) error { return nil }
