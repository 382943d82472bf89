package invoice_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/agency-billing/internal/domain/entity"
	"github.com/jhoicas/agency-billing/internal/domain/invoice"
)

func TestReminderDue(t *testing.T) {
	sent := sendInvoice(t, newDraft(t))
	schedule := entity.ReminderSettings{Enabled: true, DaysBeforeDue: []int{3, 0}, DaysAfterDue: []int{7}}
	due := sent.DueDate

	assert.True(t, invoice.ReminderDue(sent, schedule, due.AddDate(0, 0, -3)))
	assert.True(t, invoice.ReminderDue(sent, schedule, due))
	assert.False(t, invoice.ReminderDue(sent, schedule, due.AddDate(0, 0, -2)))
	assert.True(t, invoice.ReminderDue(sent, schedule, due.AddDate(0, 0, 7)))

	reminded := sent.Clone()
	at := due.Add(-time.Hour)
	reminded.LastReminderAt = &at
	assert.False(t, invoice.ReminderDue(reminded, schedule, due), "como máximo un recordatorio por día")

	assert.False(t, invoice.ReminderDue(newDraft(t), schedule, newDraft(t).DueDate), "borradores no reciben recordatorio")
	assert.False(t, invoice.ReminderDue(sent, entity.ReminderSettings{DaysBeforeDue: []int{0}}, due), "deshabilitado")
}
