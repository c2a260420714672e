package einvoice

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softec-apps/PUI-POS-sub002/internal/domain/entity"
	"github.com/softec-apps/PUI-POS-sub002/pkg/logger"
)

func sampleSale() *entity.Sale {
	d := decimal.RequireFromString
	return &entity.Sale{
		ID:        "sale-9",
		RequestID: "pos-2-000045",
		UserID:    "user-1",
		Subtotal:  d("35"),
		TaxAmount: d("4.5"),
		Total:     d("39.5"),
		CreatedAt: time.Date(2026, 5, 2, 15, 4, 5, 0, time.UTC),
		Items: []entity.SaleItem{
			{ProductID: "p1", Description: "Café", Quantity: 2, UnitPrice: d("10"), TaxRate: d("15"), Subtotal: d("20"), TaxAmount: d("3"), Total: d("23")},
			{Description: "Servicio", Quantity: 1, UnitPrice: d("15"), TaxRate: d("10"), Subtotal: d("15"), TaxAmount: d("1.5"), Total: d("16.5")},
		},
	}
}

func TestBuildSaleDocument(t *testing.T) {
	raw, err := BuildSaleDocument(sampleSale())
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(raw))
	root := doc.SelectElement("Sale")
	require.NotNil(t, root)
	assert.Equal(t, "sale-9", root.SelectAttrValue("id", ""))
	assert.Equal(t, "pos-2-000045", root.SelectAttrValue("requestId", ""))
	assert.Nil(t, root.SelectElement("Customer"))
	assert.Equal(t, "2026-05-02T15:04:05Z", root.SelectElement("IssuedAt").Text())

	lines := root.FindElements("./Lines/Line")
	require.Len(t, lines, 2)
	assert.Equal(t, "1", lines[0].SelectAttrValue("number", ""))
	assert.Equal(t, "p1", lines[0].SelectElement("ProductID").Text())
	assert.Equal(t, "20.000000", lines[0].SelectElement("Subtotal").Text())
	assert.Nil(t, lines[1].SelectElement("ProductID"))
	assert.Equal(t, "10.00", lines[1].SelectElement("TaxRate").Text())

	assert.Equal(t, "39.500000", root.FindElement("./Totals/Total").Text())
}

func TestWebhookClient_NotifySaleCommitted(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"aceptado", http.StatusAccepted, false},
		{"rechazado", http.StatusUnprocessableEntity, true},
		{"caído", http.StatusServiceUnavailable, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotBody []byte
			var gotAuth, gotKey, gotType string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				gotKey = r.Header.Get("Idempotency-Key")
				gotType = r.Header.Get("Content-Type")
				gotBody, _ = io.ReadAll(r.Body)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("detalle"))
			}))
			defer srv.Close()

			c := NewWebhookClient(srv.URL, "tok-123", 2*time.Second, logger.NewNop())
			err := c.NotifySaleCommitted(context.Background(), sampleSale())
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "detalle")
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, "Bearer tok-123", gotAuth)
			assert.Equal(t, "sale-9", gotKey)
			assert.Contains(t, gotType, "application/xml")
			assert.Contains(t, string(gotBody), `<Sale xmlns="urn:pui-pos:sale:1.0"`)
		})
	}
}

func TestWebhookClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewWebhookClient(srv.URL, "", time.Second, logger.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := c.NotifySaleCommitted(ctx, sampleSale())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
