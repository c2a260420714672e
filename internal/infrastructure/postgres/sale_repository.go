package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/softec-apps/PUI-POS-sub002/internal/domain"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain/entity"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleRequestIDConstraint = "sales_request_id_key"

// SaleRepo persistencia de ventas (cabecera + líneas) sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta la cabecera y las líneas con la misma tx que escribió los movimientos.
// request_id repetido devuelve domain.ErrDuplicate.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sales (id, request_id, customer_id, user_id, subtotal, tax_amount, total, status, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		s.ID, s.RequestID, nullString(s.CustomerID), s.UserID, s.Subtotal, s.TaxAmount, s.Total, s.Status, nullString(s.Notes), s.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, saleRequestIDConstraint) {
			return fmt.Errorf("insert sale %s: %w", s.RequestID, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert sale: %w", err)
	}

	batch := &pgx.Batch{}
	for i, it := range s.Items {
		batch.Queue(`
			INSERT INTO sale_items (id, sale_id, line_no, product_id, description, quantity, unit_price, tax_rate, subtotal, tax_amount, total, movement_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			it.ID, s.ID, i+1, nullString(it.ProductID), it.Description, it.Quantity, it.UnitPrice, it.TaxRate,
			it.Subtotal, it.TaxAmount, it.Total, nullString(it.MovementID),
		)
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := r.q.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert sale items: %w", err)
	}
	return nil
}

// GetByID obtiene la venta con sus líneas.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	s, err := r.getOne(ctx, `WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, &domain.NotFoundError{Entity: "venta", ID: id}
	}
	return s, nil
}

// GetByRequestID devuelve nil, nil si no hay venta con esa clave.
func (r *SaleRepo) GetByRequestID(ctx context.Context, requestID string) (*entity.Sale, error) {
	return r.getOne(ctx, `WHERE request_id = $1`, requestID)
}

func (r *SaleRepo) getOne(ctx context.Context, where string, arg string) (*entity.Sale, error) {
	var s entity.Sale
	var customerID, notes *string
	err := r.q.QueryRow(ctx, `
		SELECT id, request_id, customer_id, user_id, subtotal, tax_amount, total, status, notes, created_at
		FROM sales `+where, arg).Scan(
		&s.ID, &s.RequestID, &customerID, &s.UserID, &s.Subtotal, &s.TaxAmount, &s.Total, &s.Status, &notes, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	s.CustomerID = fromNullString(customerID)
	s.Notes = fromNullString(notes)

	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, product_id, description, quantity, unit_price, tax_rate, subtotal, tax_amount, total, movement_id
		FROM sale_items WHERE sale_id = $1 ORDER BY line_no`, s.ID)
	if err != nil {
		return nil, fmt.Errorf("get sale items: %w", err)
	}
	s.Items, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.SaleItem, error) {
		var it entity.SaleItem
		var productID, movementID *string
		err := row.Scan(&it.ID, &it.SaleID, &productID, &it.Description, &it.Quantity, &it.UnitPrice, &it.TaxRate,
			&it.Subtotal, &it.TaxAmount, &it.Total, &movementID)
		it.ProductID = fromNullString(productID)
		it.MovementID = fromNullString(movementID)
		return it, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan sale items: %w", err)
	}
	return &s, nil
}
