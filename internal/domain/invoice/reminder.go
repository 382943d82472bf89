package invoice

import (
	"time"

	"github.com/jhoicas/agency-billing/internal/domain/entity"
)

// ReminderDue indica si hoy toca enviar un recordatorio según el calendario configurado.
// Los días se cuentan por fecha calendario (UTC) respecto a DueDate; como máximo uno por día.
func ReminderDue(inv *entity.Invoice, schedule entity.ReminderSettings, now time.Time) bool {
	if !schedule.Enabled || !IsOutstanding(inv.Status) {
		return false
	}
	today := truncateDay(now)
	if inv.LastReminderAt != nil && truncateDay(*inv.LastReminderAt).Equal(today) {
		return false
	}
	diff := int(truncateDay(inv.DueDate).Sub(today).Hours() / 24)
	if diff >= 0 {
		return containsInt(schedule.DaysBeforeDue, diff)
	}
	return containsInt(schedule.DaysAfterDue, -diff)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
