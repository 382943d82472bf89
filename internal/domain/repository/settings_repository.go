package repository

import (
	"context"

	"github.com/jhoicas/agency-billing/internal/domain/entity"
)

// SettingsRepository persiste la configuración global de facturación (un único registro).
type SettingsRepository interface {
	// Get devuelve (nil, nil) si todavía no se guardó configuración.
	Get(ctx context.Context) (*entity.InvoiceSettings, error)
	Save(ctx context.Context, settings *entity.InvoiceSettings) error
}
