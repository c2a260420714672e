package inventory

import (
	"strconv"

	"github.com/softec-apps/PUI-POS-sub002/internal/application/dto"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain/entity"
)

// ToMovementResponse convierte la entidad al DTO de respuesta.
func ToMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:           m.ID,
		ProductID:    m.ProductID,
		MovementType: string(m.MovementType),
		Quantity:     m.Quantity,
		UnitCost:     m.UnitCost,
		Subtotal:     m.Subtotal,
		TaxRate:      m.TaxRate,
		TaxAmount:    m.TaxAmount,
		Total:        m.Total,
		StockBefore:  m.StockBefore,
		StockAfter:   m.StockAfter,
		Reason:       m.Reason,
		UserID:       m.UserID,
		ReferenceID:  m.ReferenceID,
		CreatedAt:    m.CreatedAt,
	}
}

func itoa(n int) string { return strconv.Itoa(n) }
