package einvoice

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/go-faster/errors"

	"github.com/softec-apps/PUI-POS-sub002/internal/domain/entity"
	"github.com/softec-apps/PUI-POS-sub002/pkg/logger"
)

const (
	documentNamespace = "urn:pui-pos:sale:1.0"
	maxResponseBody   = 64 << 10
)

// WebhookClient envía la venta confirmada al servicio de facturación electrónica como XML.
type WebhookClient struct {
	url        string
	token      string
	httpClient *http.Client
	log        *logger.Logger
}

// NewWebhookClient construye el cliente. timeout <= 0 usa 30 s.
func NewWebhookClient(url, token string, timeout time.Duration, log *logger.Logger) *WebhookClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &WebhookClient{
		url:        url,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.Component("einvoice-webhook"),
	}
}

// NotifySaleCommitted hace POST del documento. Cualquier respuesta fuera de 2xx es error.
func (c *WebhookClient) NotifySaleCommitted(ctx context.Context, sale *entity.Sale) error {
	payload, err := BuildSaleDocument(sale)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "einvoice: crear request")
	}
	req.Header.Set("Content-Type", "application/xml; charset=utf-8")
	req.Header.Set("Idempotency-Key", sale.ID)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return errors.Wrap(ctx.Err(), "einvoice: timeout o cancelación")
		}
		return errors.Wrap(err, "einvoice: llamada HTTP fallida")
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("einvoice: respuesta %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	c.log.Info().Str("sale_id", sale.ID).Int("status", resp.StatusCode).Msg("venta enviada a facturación")
	return nil
}

// BuildSaleDocument arma el XML de la venta:
//
//	<Sale xmlns="urn:pui-pos:sale:1.0" id=".." requestId="..">
//	  <Cashier>..</Cashier> <Customer>..</Customer> <IssuedAt>..</IssuedAt>
//	  <Lines><Line number="1">..</Line></Lines>
//	  <Totals>..</Totals>
//	</Sale>
func BuildSaleDocument(sale *entity.Sale) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("Sale")
	root.CreateAttr("xmlns", documentNamespace)
	root.CreateAttr("id", sale.ID)
	root.CreateAttr("requestId", sale.RequestID)

	root.CreateElement("Cashier").SetText(sale.UserID)
	if sale.CustomerID != "" {
		root.CreateElement("Customer").SetText(sale.CustomerID)
	}
	root.CreateElement("IssuedAt").SetText(sale.CreatedAt.UTC().Format(time.RFC3339))
	if sale.Notes != "" {
		root.CreateElement("Notes").SetText(sale.Notes)
	}

	lines := root.CreateElement("Lines")
	for i, it := range sale.Items {
		line := lines.CreateElement("Line")
		line.CreateAttr("number", strconv.Itoa(i+1))
		if it.ProductID != "" {
			line.CreateElement("ProductID").SetText(it.ProductID)
		}
		line.CreateElement("Description").SetText(it.Description)
		line.CreateElement("Quantity").SetText(strconv.Itoa(it.Quantity))
		line.CreateElement("UnitPrice").SetText(it.UnitPrice.StringFixed(6))
		line.CreateElement("TaxRate").SetText(it.TaxRate.StringFixed(2))
		line.CreateElement("Subtotal").SetText(it.Subtotal.StringFixed(6))
		line.CreateElement("TaxAmount").SetText(it.TaxAmount.StringFixed(6))
		line.CreateElement("Total").SetText(it.Total.StringFixed(6))
	}

	totals := root.CreateElement("Totals")
	totals.CreateElement("Subtotal").SetText(sale.Subtotal.StringFixed(6))
	totals.CreateElement("TaxAmount").SetText(sale.TaxAmount.StringFixed(6))
	totals.CreateElement("Total").SetText(sale.Total.StringFixed(6))

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, errors.Wrap(err, "einvoice: serializar XML")
	}
	return out, nil
}
