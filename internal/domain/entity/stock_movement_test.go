package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/softec-apps/PUI-POS-sub002/internal/domain/entity"
)

func TestMovementTypes_TablaDeSentido(t *testing.T) {
	inbound := []entity.MovementType{
		entity.MovementPurchase, entity.MovementReturnIn,
		entity.MovementTransferIn, entity.MovementAdjustmentIn,
	}
	outbound := []entity.MovementType{
		entity.MovementSale, entity.MovementReturnOut, entity.MovementTransferOut,
		entity.MovementAdjustmentOut, entity.MovementDamaged, entity.MovementExpired,
	}

	for _, mt := range inbound {
		assert.True(t, mt.IsInbound(), mt)
		assert.False(t, mt.IsOutbound(), mt)
		assert.Equal(t, 13, mt.Apply(10, 3), mt)
	}
	for _, mt := range outbound {
		assert.True(t, mt.IsOutbound(), mt)
		assert.False(t, mt.IsInbound(), mt)
		assert.Equal(t, 7, mt.Apply(10, 3), mt)
	}
	assert.Len(t, entity.MovementTypes(), len(inbound)+len(outbound))
}

// Todo tipo listado debe tener sentido asignado (exhaustividad de la tabla).
func TestMovementTypes_Exhaustivo(t *testing.T) {
	seen := map[entity.MovementType]bool{}
	for _, mt := range entity.MovementTypes() {
		assert.True(t, mt.Valid(), mt)
		assert.NotZero(t, mt.Direction(), mt)
		assert.False(t, seen[mt], "tipo duplicado %s", mt)
		seen[mt] = true
	}
}

func TestParseMovementType(t *testing.T) {
	mt, ok := entity.ParseMovementType("adjustment_out")
	assert.True(t, ok)
	assert.Equal(t, entity.MovementAdjustmentOut, mt)

	for _, s := range []string{"", "SALE", "out", "transfer"} {
		_, ok := entity.ParseMovementType(s)
		assert.False(t, ok, s)
	}
	assert.Zero(t, entity.MovementType("unknown").Direction())
}

func TestMovementTypes_DevuelveCopia(t *testing.T) {
	list := entity.MovementTypes()
	list[0] = "mutado"
	assert.Equal(t, entity.MovementPurchase, entity.MovementTypes()[0])
}
