package memory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/softec-apps/PUI-POS-sub002/internal/domain/entity"
)

// DemoUserID cajero sembrado por SeedDemo.
const DemoUserID = "00000000-0000-0000-0000-000000000d00"

// SeedDemo carga un cajero y un catálogo pequeño para levantar la API sin PostgreSQL.
// El stock inicial queda en cero; las entradas se registran por el ledger.
func SeedDemo(s *Store, products int) {
	s.SeedUser(entity.User{ID: DemoUserID, Name: "Caja demo", Email: "caja@demo.local", Active: true})
	for i := 1; i <= products; i++ {
		s.SeedProduct(entity.Product{
			ID:      fmt.Sprintf("00000000-0000-0000-0000-%012d", i),
			SKU:     fmt.Sprintf("DEMO-%03d", i),
			Name:    fmt.Sprintf("Producto demo %d", i),
			Cost:    decimal.NewFromInt(int64(i)),
			TaxRate: decimal.NewFromInt(15),
		})
	}
}
