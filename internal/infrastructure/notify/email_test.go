package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/agency-billing/internal/application/billing"
	"github.com/jhoicas/agency-billing/pkg/logger"
)

type fakeSender struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	f.sent = append(f.sent, m...)
	return f.err
}

func reminder(overdue bool) billing.ReminderMessage {
	return billing.ReminderMessage{
		InvoiceID:     "inv-1",
		InvoiceNumber: "INV-2024-001",
		To:            "pagos@acme.test",
		ClientName:    "Acme <S.A.>",
		Balance:       decimal.RequireFromString("142000"),
		Currency:      "USD",
		DueDate:       time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Overdue:       overdue,
	}
}

func TestEmailNotifier_SendReminder(t *testing.T) {
	fs := &fakeSender{}
	n := &EmailNotifier{dialer: fs, from: "facturacion@agency.test"}

	require.NoError(t, n.SendReminder(context.Background(), reminder(false)))
	require.Len(t, fs.sent, 1)

	m := fs.sent[0]
	assert.Equal(t, []string{"Recordatorio de pago: factura INV-2024-001"}, m.GetHeader("Subject"))
	assert.Equal(t, []string{"facturacion@agency.test"}, m.GetHeader("From"))

	body := reminderBody(reminder(false))
	assert.Contains(t, body, "142000.00 USD")
	assert.Contains(t, body, "Acme &lt;S.A.&gt;")
	assert.Contains(t, body, "vence el 2024-03-31")
}

func TestEmailNotifier_Vencida(t *testing.T) {
	m := BuildReminder("x@agency.test", reminder(true))
	assert.Equal(t, []string{"Factura INV-2024-001 vencida"}, m.GetHeader("Subject"))
}

func TestEmailNotifier_ErrorSMTP(t *testing.T) {
	n := &EmailNotifier{dialer: &fakeSender{err: errors.New("conexión rechazada")}, from: "x@agency.test"}
	err := n.SendReminder(context.Background(), reminder(false))
	assert.ErrorContains(t, err, "smtp")
}

func TestLogNotifier(t *testing.T) {
	assert.NoError(t, NewLogNotifier(logger.Nop()).SendReminder(context.Background(), reminder(false)))
}
