package billing_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agency-billing/internal/application/billing"
	"github.com/jhoicas/agency-billing/internal/application/dto"
	"github.com/jhoicas/agency-billing/internal/domain"
	"github.com/jhoicas/agency-billing/internal/domain/entity"
	"github.com/jhoicas/agency-billing/internal/domain/repository"
	"github.com/jhoicas/agency-billing/internal/infrastructure/memory"
	"github.com/jhoicas/agency-billing/pkg/logger"
)

func TestOverdueSweep_MarcaVencidasUnaSolaVez(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sent := h.createSent(t)
	draft := h.createDraft(t)

	res, err := h.sweep.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Checked)
	assert.Empty(t, res.MarkedIDs, "todavía no vence")

	h.clock.Advance(31 * 24 * time.Hour)
	res, err = h.sweep.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{sent.ID}, res.MarkedIDs)

	again, err := h.sweep.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, again.MarkedIDs)
	assert.Zero(t, again.Checked)

	got, err := h.uc.Get(ctx, admin, sent.ID)
	require.NoError(t, err)
	assert.Equal(t, "overdue", got.Status)

	d, err := h.uc.Get(ctx, admin, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, "draft", d.Status)
}

func TestOverdueSweep_ElDiaDelVencimientoNoMarca(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	req := fixtureRequest()
	req.DueDate = "2024-03-10"
	draft, err := h.uc.Create(ctx, admin, req)
	require.NoError(t, err)
	sent, err := h.uc.Transition(ctx, admin, draft.ID, 0, dto.TransitionRequest{Status: "sent"})
	require.NoError(t, err)

	h.clock.Advance(9*24*time.Hour - time.Hour) // 2024-03-10 09:00
	res, err := h.sweep.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, res.MarkedIDs)

	h.clock.Advance(15 * time.Hour) // 2024-03-11 00:00
	res, err = h.sweep.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{sent.ID}, res.MarkedIDs)
}

func TestOverdue_PagoTrasVencimiento(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sent := h.createSent(t)
	h.clock.Advance(40 * 24 * time.Hour)
	_, err := h.sweep.Run(ctx)
	require.NoError(t, err)

	paid, err := h.uc.Transition(ctx, admin, sent.ID, 0, dto.TransitionRequest{Status: "paid"})
	require.NoError(t, err)
	assert.Equal(t, "paid", paid.Status)
	assert.Equal(t, "manual", paid.PaymentMethod)
}

func TestReminder_EmpleadoCompartidoEnvia(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sent := h.createSent(t)

	res, err := h.reminders.Send(ctx, employee, sent.ID)
	require.NoError(t, err)
	assert.Equal(t, "billing@acme.test", res.Recipient)
	require.Len(t, h.notifier.sent, 1)
	msg := h.notifier.sent[0]
	assert.Equal(t, "149500.00", msg.Balance.StringFixed(2))
	assert.False(t, msg.Overdue)

	_, err = h.reminders.Send(ctx, outsider, sent.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = h.reminders.Send(ctx, client, sent.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	draft := h.createDraft(t)
	_, err = h.reminders.Send(ctx, admin, draft.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestReminder_FalloDeEntregaNoRegistra(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sent := h.createSent(t)
	h.notifier.err = errors.New("smtp caído")

	_, err := h.reminders.Send(ctx, admin, sent.ID)
	require.Error(t, err)

	got, err := h.uc.Get(ctx, admin, sent.ID)
	require.NoError(t, err)
	assert.Equal(t, sent.Version, got.Version)
}

// failingUpdateRepo simula una caída del almacenamiento al guardar.
type failingUpdateRepo struct {
	repository.InvoiceRepository
}

func (failingUpdateRepo) Update(context.Context, *entity.Invoice, int) error {
	return errors.New("conexión perdida")
}

func TestReminder_EnviadoSinRegistrarSeReporta(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sent := h.createSent(t)

	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "info", Out: &buf})
	uc := billing.NewReminderUseCase(failingUpdateRepo{h.invoices}, h.settings, h.notifier, memory.NewLocker(), log, h.clock.Now)

	_, err := uc.Send(ctx, admin, sent.ID)
	require.Error(t, err)
	assert.Len(t, h.notifier.sent, 1, "el correo ya salió")
	assert.Contains(t, buf.String(), "recordatorio enviado pero no registrado")
	assert.Contains(t, buf.String(), sent.ID)
}

func TestReminder_CorridaProgramada(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.createSent(t) // vence 2024-03-31

	n, err := h.reminders.RunScheduled(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	h.clock.Advance(27 * 24 * time.Hour) // 2024-03-28: faltan 3 días
	n, err = h.reminders.RunScheduled(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = h.reminders.RunScheduled(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "como máximo uno por día")

	h.clock.Advance(4 * 24 * time.Hour) // 2024-04-01: un día vencida
	_, err = h.sweep.Run(ctx)
	require.NoError(t, err)
	n, err = h.reminders.RunScheduled(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, h.notifier.sent[len(h.notifier.sent)-1].Overdue)
}

func TestPDF_DescargaSnapshot(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	sent := h.createSent(t)

	data, name, err := h.pdf.Download(ctx, client, sent.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake", string(data))
	assert.Equal(t, sent.InvoiceNumber+".pdf", name)
	assert.Equal(t, "Agencia Norte", h.renderer.company.Name)

	h.renderer.got.Items = nil
	stored, err := h.uc.Get(ctx, admin, sent.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 2, "el renderer recibe una copia")

	_, _, err = h.pdf.Download(ctx, stranger, sent.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, _, err = h.pdf.Download(ctx, admin, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTemplates_SoloAdmin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.tpl.Create(ctx, employee, dto.TemplateRequest{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = h.tpl.Create(ctx, admin, dto.TemplateRequest{Name: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = h.tpl.Create(ctx, admin, dto.TemplateRequest{
		Name:  "Malo",
		Items: []dto.InvoiceItemRequest{{Description: "x", Quantity: 0}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = h.tpl.Create(ctx, admin, dto.TemplateRequest{Name: "Vacía", TaxPolicy: &dto.TaxPolicyDTO{Mode: "flat"}})
	require.NoError(t, err)
	list, err := h.tpl.List(ctx, admin)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "flat", list[0].TaxPolicy.Mode)
}
