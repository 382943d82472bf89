package billing_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agency-billing/internal/application/billing"
	"github.com/jhoicas/agency-billing/internal/application/dto"
	"github.com/jhoicas/agency-billing/internal/domain/entity"
	"github.com/jhoicas/agency-billing/internal/infrastructure/memory"
	"github.com/jhoicas/agency-billing/pkg/logger"
)

var (
	admin    = entity.Actor{ID: "admin-1", Role: entity.RoleAdmin}
	employee = entity.Actor{ID: "emp-1", Role: entity.RoleEmployee}
	outsider = entity.Actor{ID: "emp-2", Role: entity.RoleEmployee}
	client   = entity.Actor{ID: "client-1", Role: entity.RoleClient}
	stranger = entity.Actor{ID: "client-2", Role: entity.RoleClient}
)

// clock reloj manual compartido por los casos de uso del harness.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []billing.ReminderMessage
	err  error
}

func (f *fakeNotifier) SendReminder(_ context.Context, msg billing.ReminderMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakePDF struct {
	got     *entity.Invoice
	company entity.CompanyInfo
}

func (f *fakePDF) GenerateInvoicePDF(_ context.Context, inv *entity.Invoice, company entity.CompanyInfo) ([]byte, error) {
	f.got = inv
	f.company = company
	return []byte("%PDF-fake"), nil
}

type harness struct {
	clock     *clock
	invoices  *memory.InvoiceRepo
	templates *memory.TemplateRepo
	settings  *billing.SettingsUseCase
	uc        *billing.InvoiceUseCase
	tpl       *billing.TemplateUseCase
	sweep     *billing.OverdueSweepUseCase
	reminders *billing.ReminderUseCase
	pdf       *billing.PDFUseCase
	notifier  *fakeNotifier
	renderer  *fakePDF
}

func defaultSettings() entity.InvoiceSettings {
	return entity.InvoiceSettings{
		DefaultDueDays: 30,
		Reminders:      entity.ReminderSettings{Enabled: true, DaysBeforeDue: []int{3}, DaysAfterDue: []int{1, 7}},
		Numbering:      entity.NumberingSettings{Prefix: "INV", Padding: 3},
		Tax:            entity.TaxPolicy{Mode: entity.TaxModePerItem, DefaultRate: decimal.NewFromInt(15)},
		Currency:       "USD",
		Company:        entity.CompanyInfo{Name: "Agencia Norte"},
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		clock:     &clock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		invoices:  memory.NewInvoiceRepository(),
		templates: memory.NewTemplateRepository(),
		notifier:  &fakeNotifier{},
		renderer:  &fakePDF{},
	}
	log := logger.Nop()
	locker := memory.NewLocker()
	h.settings = billing.NewSettingsUseCase(memory.NewSettingsRepository(), defaultSettings(), log)
	h.uc = billing.NewInvoiceUseCase(h.invoices, h.templates, h.settings, locker, log, h.clock.Now)
	h.tpl = billing.NewTemplateUseCase(h.templates, log, h.clock.Now)
	h.sweep = billing.NewOverdueSweepUseCase(h.invoices, locker, log, h.clock.Now)
	h.reminders = billing.NewReminderUseCase(h.invoices, h.settings, h.notifier, locker, log, h.clock.Now)
	h.pdf = billing.NewPDFUseCase(h.invoices, h.templates, h.settings, h.renderer)
	return h
}

func fixtureRequest() dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		ClientID: client.ID,
		Client:   dto.ClientInfoDTO{Name: "Acme", Email: "billing@acme.test"},
		Items: []dto.InvoiceItemRequest{
			{Description: "Diseño de identidad de marca", Quantity: 1, UnitPrice: decimal.NewFromInt(50000)},
			{Description: "Publicaciones en redes sociales", Quantity: 100, UnitPrice: decimal.NewFromInt(800)},
		},
		SharedWith: []string{employee.ID},
	}
}

func (h *harness) createDraft(t *testing.T) *dto.InvoiceResponse {
	t.Helper()
	resp, err := h.uc.Create(context.Background(), admin, fixtureRequest())
	require.NoError(t, err)
	return resp
}

func (h *harness) createSent(t *testing.T) *dto.InvoiceResponse {
	t.Helper()
	draft := h.createDraft(t)
	resp, err := h.uc.Transition(context.Background(), admin, draft.ID, 0, dto.TransitionRequest{Status: "sent"})
	require.NoError(t, err)
	return resp
}
