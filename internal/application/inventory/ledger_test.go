package inventory_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softec-apps/PUI-POS-sub002/internal/application/dto"
	"github.com/softec-apps/PUI-POS-sub002/internal/application/inventory"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain/entity"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain/repository"
)

func TestRegisterMovement_EntradasYSalidas(t *testing.T) {
	f := newFixture(t, product("p1", 0))
	ctx := context.Background()

	steps := []struct {
		movementType string
		qty          int
		wantAfter    int
	}{
		{"purchase", 20, 20},
		{"sale", 5, 15},
		{"return_in", 1, 16},
		{"damaged", 2, 14},
		{"adjustment_in", 3, 17},
		{"expired", 7, 10},
		{"transfer_out", 10, 0},
	}
	for _, s := range steps {
		resp, err := f.register.RegisterMovementFromRequest(ctx, cashierID, dto.RegisterMovementRequest{
			ProductID: "p1", MovementType: s.movementType, Quantity: s.qty, Reason: "conteo " + s.movementType,
		})
		require.NoError(t, err, s.movementType)
		assert.Equal(t, s.wantAfter, resp.StockAfter, s.movementType)
	}
	assert.Equal(t, 0, stockOf(t, f, "p1"))

	// sin stock, una salida más falla sin escribir
	_, err := f.register.RegisterMovementFromRequest(ctx, cashierID, dto.RegisterMovementRequest{
		ProductID: "p1", MovementType: "adjustment_out", Quantity: 1,
	})
	var insufficient *domain.InsufficientStockError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 0, insufficient.Available)
	assert.Equal(t, len(steps), f.store.MovementCount())

	v, err := f.ledger.VerifyProduct(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, v.Consistent, "issues: %v", v.Issues)
	assert.Equal(t, 0, v.LedgerStock)
	assert.Equal(t, len(steps), v.Movements)
}

func TestRegisterMovement_UsaCostoYTasaDelProducto(t *testing.T) {
	p := product("p1", 0)
	p.Cost = decimal.RequireFromString("1.333333")
	p.TaxRate = decimal.RequireFromString("12")
	f := newFixture(t, p)

	resp, err := f.register.RegisterMovementFromRequest(context.Background(), cashierID, dto.RegisterMovementRequest{
		ProductID: "p1", MovementType: "purchase", Quantity: 3,
	})
	require.NoError(t, err)
	assert.True(t, resp.UnitCost.Equal(p.Cost))
	assert.True(t, resp.TaxRate.Equal(p.TaxRate))
	assert.Equal(t, "3.999999", resp.Subtotal.String())
	assert.Equal(t, "0.48", resp.TaxAmount.String())
	assert.Equal(t, "4.479999", resp.Total.String())
}

func TestRegisterMovement_Validacion(t *testing.T) {
	f := newFixture(t, product("p1", 5))

	tests := []struct {
		name  string
		req   dto.RegisterMovementRequest
		field string
	}{
		{"tipo desconocido", dto.RegisterMovementRequest{ProductID: "p1", MovementType: "gift", Quantity: 1}, "movement_type"},
		{"cantidad negativa", dto.RegisterMovementRequest{ProductID: "p1", MovementType: "purchase", Quantity: -1}, "quantity"},
		{"sin producto", dto.RegisterMovementRequest{MovementType: "purchase", Quantity: 1}, "product_id"},
		{"motivo largo", dto.RegisterMovementRequest{ProductID: "p1", MovementType: "purchase", Quantity: 1, Reason: strings.Repeat("x", 256)}, "reason"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.register.RegisterMovementFromRequest(context.Background(), cashierID, tt.req)
			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr), "error %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
	assert.Equal(t, 0, f.store.MovementCount())
}

func TestLedger_ListFiltraYPagina(t *testing.T) {
	f := newFixture(t, product("a", 0), product("b", 0))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := f.register.RegisterMovementFromRequest(ctx, cashierID, dto.RegisterMovementRequest{
			ProductID: "a", MovementType: "purchase", Quantity: i + 1, Reason: "Factura proveedor",
		})
		require.NoError(t, err)
	}
	_, err := f.register.RegisterMovementFromRequest(ctx, cashierID, dto.RegisterMovementRequest{
		ProductID: "b", MovementType: "adjustment_in", Quantity: 9, Reason: "inventario inicial",
	})
	require.NoError(t, err)

	page, err := f.ledger.List(ctx, dto.MovementListQuery{ProductID: "a", SortBy: "quantity", SortDir: "asc", PageRequest: dto.PageRequest{Limit: 2, Offset: 1}})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Page.Total)
	assert.True(t, page.Page.HasMore)
	require.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.Items[0].Quantity)
	assert.Equal(t, 3, page.Items[1].Quantity)

	page, err = f.ledger.List(ctx, dto.MovementListQuery{Search: "PROVEEDOR"})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Page.Total)
	assert.Equal(t, inventory.DefaultPageLimit, page.Page.Limit)
	assert.False(t, page.Page.HasMore)

	page, err = f.ledger.List(ctx, dto.MovementListQuery{MovementType: "adjustment_in", UserID: cashierID})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "b", page.Items[0].ProductID)

	_, err = f.ledger.GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestBuildMovementFilter(t *testing.T) {
	tests := []struct {
		name  string
		q     dto.MovementListQuery
		field string
		check func(t *testing.T, f repository.MovementFilter)
	}{
		{name: "valores por defecto", check: func(t *testing.T, f repository.MovementFilter) {
			assert.Equal(t, repository.SortByCreatedAt, f.SortBy)
			assert.True(t, f.SortDesc)
			assert.Equal(t, 20, f.Limit)
		}},
		{name: "fecha sola cubre el día", q: dto.MovementListQuery{DateFrom: "2024-03-01", DateTo: "2024-03-01"}, check: func(t *testing.T, f repository.MovementFilter) {
			require.NotNil(t, f.DateFrom)
			require.NotNil(t, f.DateTo)
			assert.Equal(t, 23, f.DateTo.Hour())
			assert.True(t, f.DateTo.After(*f.DateFrom))
		}},
		{name: "rfc3339", q: dto.MovementListQuery{DateFrom: "2024-03-01T10:00:00Z"}, check: func(t *testing.T, f repository.MovementFilter) {
			assert.Equal(t, 10, f.DateFrom.Hour())
		}},
		{name: "tipo válido", q: dto.MovementListQuery{MovementType: "sale"}, check: func(t *testing.T, f repository.MovementFilter) {
			assert.Equal(t, entity.MovementSale, f.MovementType)
		}},
		{name: "tipo inválido", q: dto.MovementListQuery{MovementType: "x"}, field: "movement_type"},
		{name: "orden no permitido", q: dto.MovementListQuery{SortBy: "reason; DROP TABLE"}, field: "sort_by"},
		{name: "dirección inválida", q: dto.MovementListQuery{SortDir: "up"}, field: "sort_dir"},
		{name: "límite alto", q: dto.MovementListQuery{PageRequest: dto.PageRequest{Limit: 101}}, field: "limit"},
		{name: "offset negativo", q: dto.MovementListQuery{PageRequest: dto.PageRequest{Offset: -1}}, field: "offset"},
		{name: "fecha inválida", q: dto.MovementListQuery{DateTo: "ayer"}, field: "date_to"},
		{name: "rango invertido", q: dto.MovementListQuery{DateFrom: "2024-03-02", DateTo: "2024-03-01"}, field: "date_to"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := inventory.BuildMovementFilter(tt.q)
			if tt.field != "" {
				var verr *domain.ValidationError
				require.True(t, errors.As(err, &verr), "error %v", err)
				assert.Equal(t, tt.field, verr.Field)
				return
			}
			require.NoError(t, err)
			tt.check(t, f)
		})
	}
}

func TestLedger_GetByIDs(t *testing.T) {
	f := newFixture(t, product("a", 0), product("b", 0))
	ctx := context.Background()

	var ids []string
	for _, pid := range []string{"a", "b", "a"} {
		m, err := f.register.RegisterMovementFromRequest(ctx, cashierID, dto.RegisterMovementRequest{
			ProductID: pid, MovementType: "purchase", Quantity: 2, Reason: "compra",
		})
		require.NoError(t, err)
		ids = append(ids, m.ID)
	}

	// baja lógica del producto b: sus movimientos siguen consultables
	gone := product("b", 2)
	now := time.Now()
	gone.DeletedAt = &now
	f.store.SeedProduct(gone)

	got, err := f.ledger.GetByIDs(ctx, []string{ids[2], "missing", ids[1], ids[0], ids[2]})
	require.NoError(t, err)
	require.Len(t, got.Items, 3)
	assert.Equal(t, ids[2], got.Items[0].ID)
	assert.Equal(t, ids[1], got.Items[1].ID)
	assert.Equal(t, "b", got.Items[1].ProductID)
	assert.Equal(t, ids[0], got.Items[2].ID)
	assert.Equal(t, []string{"missing"}, got.Missing)

	tests := []struct {
		name string
		ids  []string
	}{
		{"sin ids", nil},
		{"id vacío", []string{ids[0], ""}},
		{"demasiados ids", make([]string, inventory.MaxLookupIDs+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.GetByIDs(ctx, tt.ids)
			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr), "error %v", err)
			assert.Equal(t, "ids", verr.Field)
		})
	}
}

func TestReplayLedger_DetectaInconsistencias(t *testing.T) {
	good := &entity.StockMovement{
		ID: "m1", MovementType: entity.MovementPurchase, Quantity: 10,
		UnitCost: decimal.RequireFromString("2"), TaxRate: decimal.RequireFromString("15"),
		Subtotal: decimal.RequireFromString("20"), TaxAmount: decimal.RequireFromString("3"), Total: decimal.RequireFromString("23"),
		StockBefore: 0, StockAfter: 10,
	}
	v := inventory.ReplayLedger([]*entity.StockMovement{good})
	assert.True(t, v.Consistent)
	assert.Equal(t, 10, v.LedgerStock)

	gap := *good
	gap.ID = "m2"
	gap.StockBefore = 12
	gap.StockAfter = 22
	badTotals := *good
	badTotals.ID = "m3"
	badTotals.StockBefore = 22
	badTotals.StockAfter = 32
	badTotals.Total = decimal.RequireFromString("24")
	wrongDirection := *good
	wrongDirection.ID = "m4"
	wrongDirection.MovementType = entity.MovementSale
	wrongDirection.StockBefore = 32
	wrongDirection.StockAfter = 42

	v = inventory.ReplayLedger([]*entity.StockMovement{good, &gap, &badTotals, &wrongDirection})
	assert.False(t, v.Consistent)
	require.Len(t, v.Issues, 3)
	assert.Contains(t, v.Issues[0], "m2")
	assert.Contains(t, v.Issues[1], "m3")
	assert.Contains(t, v.Issues[2], "m4")
	assert.Equal(t, 42, v.LedgerStock)
}

func TestVerifyProduct_ProductoSinMovimientos(t *testing.T) {
	f := newFixture(t, product("p1", 0), product("p2", 7))

	v, err := f.ledger.VerifyProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, v.Consistent)
	assert.Equal(t, 0, v.Movements)

	// stock cargado fuera del ledger: el replay no lo reproduce
	v, err = f.ledger.VerifyProduct(context.Background(), "p2")
	require.NoError(t, err)
	assert.False(t, v.Consistent)
	assert.Equal(t, 7, v.ProductStock)
	assert.Equal(t, 0, v.LedgerStock)

	_, err = f.ledger.VerifyProduct(context.Background(), "nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
