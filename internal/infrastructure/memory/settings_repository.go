package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/agency-billing/internal/domain/entity"
	"github.com/jhoicas/agency-billing/internal/domain/repository"
)

var _ repository.SettingsRepository = (*SettingsRepo)(nil)

// SettingsRepo guarda una única configuración.
type SettingsRepo struct {
	mu       sync.RWMutex
	settings *entity.InvoiceSettings
}

func NewSettingsRepository() *SettingsRepo {
	return &SettingsRepo{}
}

func (r *SettingsRepo) Get(_ context.Context) (*entity.InvoiceSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.settings == nil {
		return nil, nil
	}
	s := copySettings(*r.settings)
	return &s, nil
}

func (r *SettingsRepo) Save(_ context.Context, s *entity.InvoiceSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := copySettings(*s)
	r.settings = &c
	return nil
}

func copySettings(s entity.InvoiceSettings) entity.InvoiceSettings {
	s.Reminders.DaysBeforeDue = append([]int(nil), s.Reminders.DaysBeforeDue...)
	s.Reminders.DaysAfterDue = append([]int(nil), s.Reminders.DaysAfterDue...)
	return s
}
