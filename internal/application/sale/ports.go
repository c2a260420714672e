package sale

import (
	"context"

	"github.com/softec-apps/PUI-POS-sub002/internal/domain/entity"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain/repository"
)

// TxRunner abre una transacción con los repos de inventario y de ventas (misma tx).
type TxRunner interface {
	RunSale(ctx context.Context, fn func(
		ctx context.Context,
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error) error
}

// InvoiceNotifier recibe la venta confirmada (facturación electrónica, eventos).
// Se invoca solo después del Commit y en segundo plano: un fallo aquí nunca revierte la venta.
type InvoiceNotifier interface {
	NotifySaleCommitted(ctx context.Context, sale *entity.Sale) error
}
