package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/softec-apps/PUI-POS-sub002/internal/domain"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain/entity"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, product_id, movement_type, quantity, unit_cost, subtotal, tax_rate, tax_amount, total,
	stock_before, stock_after, reason, user_id, reference_id, created_at, updated_at`

// sortColumns lista blanca de columnas de orden; nunca se interpola texto del cliente.
var sortColumns = map[string]string{
	repository.SortByCreatedAt:    "created_at",
	repository.SortByQuantity:     "quantity",
	repository.SortByTotal:        "total",
	repository.SortByMovementType: "movement_type",
}

// StockMovementRepo ledger append-only sobre PostgreSQL (usable con pool o tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var reason, reference *string
	err := row.Scan(
		&m.ID, &m.ProductID, &m.MovementType, &m.Quantity, &m.UnitCost, &m.Subtotal, &m.TaxRate, &m.TaxAmount, &m.Total,
		&m.StockBefore, &m.StockAfter, &reason, &m.UserID, &reference, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Reason = fromNullString(reason)
	m.ReferenceID = fromNullString(reference)
	return &m, nil
}

func collectMovements(rows pgx.Rows) ([]*entity.StockMovement, error) {
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// Create persiste un movimiento. Los montos ya vienen calculados por el servicio.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, string(m.MovementType), m.Quantity, m.UnitCost, m.Subtotal, m.TaxRate, m.TaxAmount, m.Total,
		m.StockBefore, m.StockAfter, nullString(m.Reason), m.UserID, nullString(m.ReferenceID), m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return fmt.Errorf("create stock movement %s: %w", m.ID, domain.ErrDuplicate)
		}
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID (también de productos dados de baja).
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: "movimiento", ID: id}
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return m, nil
}

// GetByIDs obtiene los movimientos de la lista.
func (r *StockMovementRepo) GetByIDs(ctx context.Context, ids []string) ([]*entity.StockMovement, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.q.Query(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE id = ANY($1) ORDER BY seq`, ids)
	if err != nil {
		return nil, fmt.Errorf("get stock movements: %w", err)
	}
	return collectMovements(rows)
}

// List filtra, ordena y pagina el ledger. Devuelve también el total sin paginar.
func (r *StockMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, int, error) {
	where, args := buildMovementWhere(f)

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM stock_movements`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock movements: %w", err)
	}

	column, ok := sortColumns[f.SortBy]
	if !ok {
		column = "created_at"
	}
	dir := "ASC"
	if f.SortDesc {
		dir = "DESC"
	}
	query := fmt.Sprintf(`SELECT %s FROM stock_movements%s ORDER BY %s %s, seq %s LIMIT $%d OFFSET $%d`,
		movementColumns, where, column, dir, dir, len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list stock movements: %w", err)
	}
	list, err := collectMovements(rows)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListByProductAsc ledger completo del producto en orden de escritura (seq).
func (r *StockMovementRepo) ListByProductAsc(ctx context.Context, productID string) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, `SELECT `+movementColumns+` FROM stock_movements WHERE product_id = $1 ORDER BY seq`, productID)
	if err != nil {
		return nil, fmt.Errorf("list product ledger: %w", err)
	}
	return collectMovements(rows)
}

// buildMovementWhere arma el WHERE con placeholders numerados en el orden de args.
func buildMovementWhere(f repository.MovementFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.ProductID != "" {
		add("product_id = $%d", f.ProductID)
	}
	if f.MovementType != "" {
		add("movement_type = $%d", string(f.MovementType))
	}
	if f.UserID != "" {
		add("user_id = $%d", f.UserID)
	}
	if f.DateFrom != nil {
		add("created_at >= $%d", *f.DateFrom)
	}
	if f.DateTo != nil {
		add("created_at <= $%d", *f.DateTo)
	}
	if f.Search != "" {
		add("reason ILIKE $%d", "%"+escapeLike(f.Search)+"%")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// escapeLike escapa los comodines de LIKE para buscar el texto literal.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
