// Package bootstrap arma repositorios, lock, notificador y casos de uso a partir de la configuración.
// Lo comparten el servidor HTTP y la CLI.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/agency-billing/internal/application/billing"
	"github.com/jhoicas/agency-billing/internal/domain/entity"
	"github.com/jhoicas/agency-billing/internal/domain/repository"
	"github.com/jhoicas/agency-billing/internal/infrastructure/memory"
	"github.com/jhoicas/agency-billing/internal/infrastructure/notify"
	infrapdf "github.com/jhoicas/agency-billing/internal/infrastructure/pdf"
	"github.com/jhoicas/agency-billing/internal/infrastructure/postgres"
	"github.com/jhoicas/agency-billing/internal/infrastructure/redislock"
	"github.com/jhoicas/agency-billing/pkg/config"
	"github.com/jhoicas/agency-billing/pkg/logger"
)

// Services casos de uso listos para usar.
type Services struct {
	Invoices  *billing.InvoiceUseCase
	PDF       *billing.PDFUseCase
	Reminders *billing.ReminderUseCase
	Sweep     *billing.OverdueSweepUseCase
	Settings  *billing.SettingsUseCase
	Templates *billing.TemplateUseCase

	closers []func()
}

// Close libera pool y cliente Redis, en orden inverso de apertura.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// DefaultSettings configuración de facturación usada mientras no haya una guardada.
func DefaultSettings(cfg config.BillingConfig) (entity.InvoiceSettings, error) {
	s := entity.InvoiceSettings{
		DefaultDueDays: cfg.DueDays,
		Reminders: entity.ReminderSettings{
			Enabled:       true,
			DaysBeforeDue: []int{3},
			DaysAfterDue:  []int{1, 7, 14},
		},
		Numbering: entity.NumberingSettings{Prefix: cfg.Prefix},
		Tax:       entity.TaxPolicy{Mode: entity.TaxMode(cfg.TaxMode), DefaultRate: cfg.TaxRate},
		Currency:  cfg.Currency,
		Company:   entity.CompanyInfo{Name: cfg.Company},
	}
	if err := billing.ValidateSettings(&s); err != nil {
		return entity.InvoiceSettings{}, fmt.Errorf("configuración de facturación: %w", err)
	}
	return s, nil
}

// Build conecta la infraestructura indicada por cfg y construye los casos de uso.
// Con STORAGE_DRIVER=postgres aplica las migraciones al arrancar.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Services, error) {
	defaults, err := DefaultSettings(cfg.Billing)
	if err != nil {
		return nil, err
	}
	svc := &Services{}
	now := time.Now

	var (
		invoiceRepo  repository.InvoiceRepository
		templateRepo repository.TemplateRepository
		settingsRepo repository.SettingsRepository
	)
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		svc.closers = append(svc.closers, pool.Close)
		if err := postgres.Migrate(ctx, pool); err != nil {
			svc.Close()
			return nil, err
		}
		invoiceRepo = postgres.NewInvoiceRepository(pool)
		templateRepo = postgres.NewTemplateRepository(pool)
		settingsRepo = postgres.NewSettingsRepository(pool)
	default:
		invoices := memory.NewInvoiceRepository()
		templates := memory.NewTemplateRepository()
		if cfg.Storage.Seed {
			if err := memory.Seed(ctx, invoices, templates, defaults, now()); err != nil {
				return nil, err
			}
			log.Info().Msg("datos de ejemplo cargados en memoria")
		}
		invoiceRepo, templateRepo, settingsRepo = invoices, templates, memory.NewSettingsRepository()
	}

	var locker billing.Locker = memory.NewLocker()
	if cfg.Redis.Addr != "" {
		client, err := redislock.NewClient(ctx, cfg.Redis)
		if err != nil {
			svc.Close()
			return nil, err
		}
		svc.closers = append(svc.closers, func() { _ = client.Close() })
		locker = redislock.New(client, cfg.Redis.LockTTL, cfg.Redis.LockTTL, log)
	}

	var notifier billing.Notifier = notify.NewLogNotifier(log)
	if cfg.SMTP.Host != "" {
		notifier = notify.NewEmailNotifier(cfg.SMTP)
	}

	log.Info().
		Str("storage", cfg.Storage.Driver).
		Bool("redis_lock", cfg.Redis.Addr != "").
		Bool("smtp", cfg.SMTP.Host != "").
		Msg("infraestructura lista")

	svc.Settings = billing.NewSettingsUseCase(settingsRepo, defaults, log)
	svc.Invoices = billing.NewInvoiceUseCase(invoiceRepo, templateRepo, svc.Settings, locker, log, now)
	svc.PDF = billing.NewPDFUseCase(invoiceRepo, templateRepo, svc.Settings, infrapdf.NewMarotoPDFGenerator())
	svc.Reminders = billing.NewReminderUseCase(invoiceRepo, svc.Settings, notifier, locker, log, now)
	svc.Sweep = billing.NewOverdueSweepUseCase(invoiceRepo, locker, log, now)
	svc.Templates = billing.NewTemplateUseCase(templateRepo, log, now)
	return svc, nil
}
