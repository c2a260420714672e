package inventory

import (
	"context"

	"github.com/softec-apps/PUI-POS-sub002/internal/application/dto"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain/entity"
)

// RegisterMovementFromRequest adapta el request HTTP al caso de uso RegisterMovement.
func (uc *RegisterMovementUseCase) RegisterMovementFromRequest(ctx context.Context, userID string, in dto.RegisterMovementRequest) (*dto.MovementResponse, error) {
	t, ok := entity.ParseMovementType(in.MovementType)
	if !ok {
		return nil, domain.NewValidationError("movement_type", "tipo de movimiento desconocido: "+in.MovementType)
	}
	m, err := uc.RegisterMovement(ctx, AppendMovementInput{
		ProductID:    in.ProductID,
		MovementType: t,
		Quantity:     in.Quantity,
		UnitCost:     in.UnitCost,
		TaxRate:      in.TaxRate,
		Reason:       in.Reason,
		UserID:       userID,
		ReferenceID:  in.ReferenceID,
	})
	if err != nil {
		return nil, err
	}
	resp := ToMovementResponse(m)
	return &resp, nil
}
