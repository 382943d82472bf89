package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agency-billing/internal/application/billing"
	"github.com/jhoicas/agency-billing/internal/application/dto"
	"github.com/jhoicas/agency-billing/internal/domain/entity"
	"github.com/jhoicas/agency-billing/internal/infrastructure/memory"
	"github.com/jhoicas/agency-billing/internal/infrastructure/notify"
	"github.com/jhoicas/agency-billing/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/agency-billing/internal/interfaces/http"
	"github.com/jhoicas/agency-billing/pkg/logger"
)

const (
	adminID  = "admin-1"
	empID    = "emp-1"
	clientID = "client-1"
)

func newAPI(t *testing.T) *fiber.App {
	t.Helper()
	log := logger.Nop()
	now := func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }
	invoices := memory.NewInvoiceRepository()
	templates := memory.NewTemplateRepository()
	locker := memory.NewLocker()
	settings := billing.NewSettingsUseCase(memory.NewSettingsRepository(), entity.InvoiceSettings{
		DefaultDueDays: 30,
		Reminders:      entity.ReminderSettings{Enabled: true, DaysBeforeDue: []int{3}},
		Numbering:      entity.NumberingSettings{Prefix: "INV", Padding: 3},
		Tax:            entity.TaxPolicy{Mode: entity.TaxModePerItem, DefaultRate: decimal.NewFromInt(15)},
		Currency:       "USD",
		Company:        entity.CompanyInfo{Name: "Agencia Norte"},
	}, log)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Invoices:    billing.NewInvoiceUseCase(invoices, templates, settings, locker, log, now),
		PDF:         billing.NewPDFUseCase(invoices, templates, settings, pdf.NewMarotoPDFGenerator()),
		Reminders:   billing.NewReminderUseCase(invoices, settings, notify.NewLogNotifier(log), locker, log, now),
		Sweep:       billing.NewOverdueSweepUseCase(invoices, locker, log, now),
		Settings:    settings,
		Templates:   billing.NewTemplateUseCase(templates, log, now),
		JWTSecret:   testJWTSecret,
		ServiceName: "agency-billing-test",
	})
	return app
}

type call struct {
	method  string
	path    string
	user    string
	role    string
	body    any
	ifMatch string
}

func do(t *testing.T, app *fiber.App, c call) (*http.Response, []byte) {
	t.Helper()
	var body io.Reader
	if c.body != nil {
		raw, err := json.Marshal(c.body)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(c.method, c.path, body)
	if c.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.user != "" {
		req.Header.Set("Authorization", tokenFor(t, c.user, c.role))
	}
	if c.ifMatch != "" {
		req.Header.Set("If-Match", c.ifMatch)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func decodeInvoice(t *testing.T, raw []byte) dto.InvoiceResponse {
	t.Helper()
	var inv dto.InvoiceResponse
	require.NoError(t, json.Unmarshal(raw, &inv), string(raw))
	return inv
}

func decodeError(t *testing.T, raw []byte) dto.ErrorResponse {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &e), string(raw))
	return e
}

func createBody() map[string]any {
	return map[string]any{
		"client_id": clientID,
		"client":    map[string]any{"name": "Acme", "email": "billing@acme.test"},
		"items": []map[string]any{
			{"description": "Diseño de identidad de marca", "quantity": 1, "unit_price": "50000"},
			{"description": "Publicaciones en redes sociales", "quantity": 100, "unit_price": "800"},
		},
		"shared_with": []string{empID},
	}
}

func createInvoice(t *testing.T, app *fiber.App) dto.InvoiceResponse {
	t.Helper()
	resp, raw := do(t, app, call{method: http.MethodPost, path: "/api/invoices", user: adminID, role: "admin", body: createBody()})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	return decodeInvoice(t, raw)
}

func TestHealth(t *testing.T) {
	resp, raw := do(t, newAPI(t), call{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "ok")
}

func TestInvoiceAPI_CrearYConsultar(t *testing.T) {
	app := newAPI(t)

	resp, raw := do(t, app, call{method: http.MethodPost, path: "/api/invoices", user: adminID, role: "admin", body: createBody()})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	assert.Equal(t, `"1"`, resp.Header.Get("ETag"))
	inv := decodeInvoice(t, raw)
	assert.Equal(t, "INV-2024-001", inv.InvoiceNumber)
	assert.Equal(t, "draft", inv.Status)
	assert.Equal(t, "149500", inv.TotalAmount.String())

	resp, _ = do(t, app, call{method: http.MethodPost, path: "/api/invoices", user: empID, role: "employee", body: createBody()})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "solo admin crea")

	resp, raw = do(t, app, call{method: http.MethodGet, path: "/api/invoices/" + inv.ID, user: empID, role: "employee"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"view", "download"}, decodeInvoice(t, raw).Actions)

	resp, raw = do(t, app, call{method: http.MethodGet, path: "/api/invoices/" + inv.ID, user: clientID, role: "client"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "el cliente no ve borradores")
	assert.Equal(t, "FORBIDDEN", decodeError(t, raw).Code)

	resp, raw = do(t, app, call{method: http.MethodGet, path: "/api/invoices/no-existe", user: adminID, role: "admin"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, raw).Code)
}

func TestInvoiceAPI_ListaPorRol(t *testing.T) {
	app := newAPI(t)
	createInvoice(t, app)
	createInvoice(t, app)

	var list dto.InvoiceListResponse
	_, raw := do(t, app, call{method: http.MethodGet, path: "/api/invoices?limit=1", user: adminID, role: "admin"})
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.Equal(t, 2, list.Page.Total)
	assert.Len(t, list.Items, 1)

	_, raw = do(t, app, call{method: http.MethodGet, path: "/api/invoices", user: "emp-2", role: "employee"})
	list = dto.InvoiceListResponse{}
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.Zero(t, list.Page.Total, "un empleado sin facturas compartidas recibe vacío, no 403")
}

func TestInvoiceAPI_IfMatch(t *testing.T) {
	app := newAPI(t)
	inv := createInvoice(t, app)
	item := map[string]any{"description": "Hosting", "quantity": 1, "unit_price": "1000", "tax_rate": "0"}

	resp, raw := do(t, app, call{method: http.MethodPost, path: "/api/invoices/" + inv.ID + "/items", user: adminID, role: "admin", body: item, ifMatch: `"1"`})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	updated := decodeInvoice(t, raw)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, "150500", updated.TotalAmount.String())

	resp, raw = do(t, app, call{method: http.MethodPost, path: "/api/invoices/" + inv.ID + "/items", user: adminID, role: "admin", body: item, ifMatch: "1"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", decodeError(t, raw).Code)

	resp, _ = do(t, app, call{method: http.MethodPost, path: "/api/invoices/" + inv.ID + "/items", user: adminID, role: "admin", body: item, ifMatch: "abc"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	itemID := updated.Items[len(updated.Items)-1].ID
	resp, raw = do(t, app, call{method: http.MethodDelete, path: "/api/invoices/" + inv.ID + "/items/" + itemID, user: adminID, role: "admin", ifMatch: `W/"2"`})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Equal(t, "149500", decodeInvoice(t, raw).TotalAmount.String())
}

func TestInvoiceAPI_CicloDePago(t *testing.T) {
	app := newAPI(t)
	inv := createInvoice(t, app)
	base := "/api/invoices/" + inv.ID

	resp, raw := do(t, app, call{method: http.MethodPost, path: base + "/transitions", user: adminID, role: "admin", body: map[string]any{"status": "sent"}})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	resp, raw = do(t, app, call{method: http.MethodPatch, path: base, user: adminID, role: "admin", body: map[string]any{"notes": "x"}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "NOT_DRAFT", decodeError(t, raw).Code)

	resp, raw = do(t, app, call{method: http.MethodGet, path: base, user: clientID, role: "client"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "viewed", decodeInvoice(t, raw).Status)

	resp, raw = do(t, app, call{method: http.MethodPost, path: base + "/reminders", user: empID, role: "employee"})
	assert.Equal(t, http.StatusAccepted, resp.StatusCode, string(raw))

	pay := map[string]any{"amount": "149500", "payment_method": "card", "transaction_id": "tx-1"}
	resp, raw = do(t, app, call{method: http.MethodPost, path: base + "/payments", user: clientID, role: "client", body: pay})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	paid := decodeInvoice(t, raw)
	assert.Equal(t, "paid", paid.Status)
	assert.NotEmpty(t, paid.PaidDate)

	resp, raw = do(t, app, call{method: http.MethodPost, path: base + "/payments", user: clientID, role: "client", body: pay})
	require.Equal(t, http.StatusOK, resp.StatusCode, "reintento idempotente: %s", raw)
	assert.Len(t, decodeInvoice(t, raw).PaymentHistory, 1)

	resp, raw = do(t, app, call{method: http.MethodPost, path: base + "/transitions", user: adminID, role: "admin", body: map[string]any{"status": "cancelled"}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "TERMINAL_STATE", decodeError(t, raw).Code)

	resp, raw = do(t, app, call{method: http.MethodGet, path: base + "/pdf", user: clientID, role: "client"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "INV-2024-001.pdf")
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

func TestInvoiceAPI_Delete(t *testing.T) {
	app := newAPI(t)
	inv := createInvoice(t, app)

	resp, _ := do(t, app, call{method: http.MethodDelete, path: "/api/invoices/" + inv.ID, user: empID, role: "employee"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = do(t, app, call{method: http.MethodDelete, path: "/api/invoices/" + inv.ID, user: adminID, role: "admin"})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, app, call{method: http.MethodGet, path: "/api/invoices/" + inv.ID, user: adminID, role: "admin"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSettingsAPI(t *testing.T) {
	app := newAPI(t)

	resp, _ := do(t, app, call{method: http.MethodGet, path: "/api/settings", user: clientID, role: "client"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw := do(t, app, call{method: http.MethodGet, path: "/api/settings", user: adminID, role: "admin"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var s dto.SettingsDTO
	require.NoError(t, json.Unmarshal(raw, &s))
	assert.Equal(t, "INV", s.NumberPrefix)

	s.NumberPrefix = "agc"
	resp, raw = do(t, app, call{method: http.MethodPut, path: "/api/settings", user: adminID, role: "admin", body: s})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	assert.Equal(t, "AGC-2024-001", createInvoice(t, app).InvoiceNumber)

	s.NumberPrefix = "A-B"
	resp, raw = do(t, app, call{method: http.MethodPut, path: "/api/settings", user: adminID, role: "admin", body: s})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decodeError(t, raw).Code)

	resp, raw = do(t, app, call{method: http.MethodPost, path: "/api/templates", user: adminID, role: "admin", body: map[string]any{"name": "Retainer"}})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	resp, raw = do(t, app, call{method: http.MethodGet, path: "/api/templates", user: adminID, role: "admin"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "Retainer")
}

func TestOverdueSweepAPI_SoloAdmin(t *testing.T) {
	app := newAPI(t)
	resp, _ := do(t, app, call{method: http.MethodPost, path: "/api/invoices/overdue-sweep", user: empID, role: "employee"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw := do(t, app, call{method: http.MethodPost, path: "/api/invoices/overdue-sweep", user: adminID, role: "admin"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "marked_ids")
}
