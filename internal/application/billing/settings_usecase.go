package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/agency-billing/internal/application/dto"
	"github.com/jhoicas/agency-billing/internal/domain"
	"github.com/jhoicas/agency-billing/internal/domain/entity"
	"github.com/jhoicas/agency-billing/internal/domain/invoice"
	"github.com/jhoicas/agency-billing/internal/domain/repository"
	"github.com/jhoicas/agency-billing/pkg/logger"
)

// SettingsUseCase lee y guarda la configuración global de facturación.
// Sin configuración almacenada se usan los valores por defecto del proceso.
type SettingsUseCase struct {
	repo     repository.SettingsRepository
	defaults entity.InvoiceSettings
	log      *logger.Logger
}

// NewSettingsUseCase construye el caso de uso.
func NewSettingsUseCase(repo repository.SettingsRepository, defaults entity.InvoiceSettings, log *logger.Logger) *SettingsUseCase {
	return &SettingsUseCase{repo: repo, defaults: defaults, log: log}
}

// Current configuración vigente (almacenada o por defecto).
func (uc *SettingsUseCase) Current(ctx context.Context) (entity.InvoiceSettings, error) {
	s, err := uc.repo.Get(ctx)
	if err != nil {
		return entity.InvoiceSettings{}, fmt.Errorf("leer configuración: %w", err)
	}
	if s == nil {
		return uc.defaults, nil
	}
	return *s, nil
}

// Get devuelve la configuración. Solo administradores.
func (uc *SettingsUseCase) Get(ctx context.Context, actor entity.Actor) (*dto.SettingsDTO, error) {
	if !invoice.CanCreate(actor) {
		return nil, domain.ErrForbidden
	}
	s, err := uc.Current(ctx)
	if err != nil {
		return nil, err
	}
	return toSettingsDTO(s), nil
}

// Update reemplaza la configuración. Las facturas existentes no cambian.
func (uc *SettingsUseCase) Update(ctx context.Context, actor entity.Actor, in dto.SettingsDTO) (*dto.SettingsDTO, error) {
	if !invoice.CanCreate(actor) {
		return nil, domain.ErrForbidden
	}
	s := fromSettingsDTO(in)
	if err := ValidateSettings(&s); err != nil {
		return nil, err
	}
	if err := uc.repo.Save(ctx, &s); err != nil {
		return nil, fmt.Errorf("guardar configuración: %w", err)
	}
	uc.log.Info().Str("actor", actor.ID).Str("prefix", s.Numbering.Prefix).Msg("configuración de facturación actualizada")
	return toSettingsDTO(s), nil
}

// ValidateSettings normaliza moneda y prefijo y rechaza valores negativos.
func ValidateSettings(s *entity.InvoiceSettings) error {
	if s.DefaultDueDays < 0 {
		return fmt.Errorf("%w: default_due_days negativo", domain.ErrInvalidInput)
	}
	if s.AutoGenerate.Recurring && s.AutoGenerate.RecurringDays <= 0 {
		return fmt.Errorf("%w: recurring_days debe ser positivo", domain.ErrInvalidInput)
	}
	for _, d := range append(append([]int{}, s.Reminders.DaysBeforeDue...), s.Reminders.DaysAfterDue...) {
		if d < 0 {
			return fmt.Errorf("%w: días de recordatorio negativos", domain.ErrInvalidInput)
		}
	}
	if s.Numbering.Padding <= 0 {
		s.Numbering.Padding = invoice.DefaultPadding
	}
	s.Numbering.Prefix = strings.ToUpper(strings.TrimSpace(s.Numbering.Prefix))
	if _, err := invoice.FormatNumber(s.Numbering.Prefix, 2000, 1, s.Numbering.Padding); err != nil {
		return err
	}
	if s.Tax.Mode == "" {
		s.Tax.Mode = entity.TaxModePerItem
	}
	if err := invoice.ValidatePolicy(s.Tax); err != nil {
		return err
	}
	cur, err := invoice.NormalizeCurrency(s.Currency)
	if err != nil {
		return err
	}
	s.Currency = cur
	return nil
}

func toSettingsDTO(s entity.InvoiceSettings) *dto.SettingsDTO {
	return &dto.SettingsDTO{
		AutoGenerateOnProjectCompletion: s.AutoGenerate.OnProjectCompletion,
		AutoGenerateRecurring:           s.AutoGenerate.Recurring,
		RecurringDays:                   s.AutoGenerate.RecurringDays,
		DefaultDueDays:                  s.DefaultDueDays,
		RemindersEnabled:                s.Reminders.Enabled,
		ReminderDaysBeforeDue:           s.Reminders.DaysBeforeDue,
		ReminderDaysAfterDue:            s.Reminders.DaysAfterDue,
		NumberPrefix:                    s.Numbering.Prefix,
		NumberPadding:                   s.Numbering.Padding,
		Tax:                             toPolicyDTO(s.Tax),
		Currency:                        s.Currency,
		Company:                         toCompanyDTO(s.Company),
	}
}

func fromSettingsDTO(in dto.SettingsDTO) entity.InvoiceSettings {
	return entity.InvoiceSettings{
		AutoGenerate: entity.AutoGenerateSettings{
			OnProjectCompletion: in.AutoGenerateOnProjectCompletion,
			Recurring:           in.AutoGenerateRecurring,
			RecurringDays:       in.RecurringDays,
		},
		DefaultDueDays: in.DefaultDueDays,
		Reminders: entity.ReminderSettings{
			Enabled:       in.RemindersEnabled,
			DaysBeforeDue: in.ReminderDaysBeforeDue,
			DaysAfterDue:  in.ReminderDaysAfterDue,
		},
		Numbering: entity.NumberingSettings{Prefix: in.NumberPrefix, Padding: in.NumberPadding},
		Tax:       toPolicy(in.Tax),
		Currency:  in.Currency,
		Company:   toCompany(in.Company),
	}
}
