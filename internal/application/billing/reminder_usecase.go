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

// ReminderUseCase envía recordatorios de pago al cliente.
type ReminderUseCase struct {
	repo     repository.InvoiceRepository
	settings *SettingsUseCase
	notifier Notifier
	locker   Locker
	log      *logger.Logger
	now      Clock
}

// NewReminderUseCase construye el caso de uso.
func NewReminderUseCase(
	repo repository.InvoiceRepository,
	settings *SettingsUseCase,
	notifier Notifier,
	locker Locker,
	log *logger.Logger,
	now Clock,
) *ReminderUseCase {
	return &ReminderUseCase{repo: repo, settings: settings, notifier: notifier, locker: locker, log: log, now: now}
}

// Send envía un recordatorio manual (admin o empleado con la factura compartida).
func (uc *ReminderUseCase) Send(ctx context.Context, actor entity.Actor, id string) (*dto.ReminderResponse, error) {
	unlock, err := uc.locker.Lock(ctx, lockKey(id))
	if err != nil {
		return nil, err
	}
	defer unlock()

	inv, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		if actor.Role == entity.RoleAdmin {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrForbidden
	}
	access := invoice.Evaluate(actor, inv)
	if !access.Can(invoice.ActionSendReminder) {
		if access.Visible && actor.Role != entity.RoleClient {
			return nil, fmt.Errorf("%w: la factura %s no espera pago", domain.ErrInvalidTransition, inv.Status)
		}
		return nil, domain.ErrForbidden
	}
	return uc.deliver(ctx, inv, actor.ID)
}

// RunScheduled envía los recordatorios que tocan hoy según la configuración.
// Devuelve cuántos se enviaron; un fallo de entrega se registra y no corta la corrida.
func (uc *ReminderUseCase) RunScheduled(ctx context.Context) (int, error) {
	settings, err := uc.settings.Current(ctx)
	if err != nil {
		return 0, err
	}
	if !settings.Reminders.Enabled {
		return 0, nil
	}
	list, err := uc.repo.List(ctx, repository.InvoiceFilter{
		Statuses: []entity.InvoiceStatus{entity.InvoiceStatusSent, entity.InvoiceStatusViewed, entity.InvoiceStatusOverdue},
	})
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, inv := range list {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		if !invoice.ReminderDue(inv, settings.Reminders, uc.now()) {
			continue
		}
		if err := uc.scheduledOne(ctx, inv.ID, settings.Reminders); err != nil {
			uc.log.Warn().Err(err).Str("invoice_id", inv.ID).Msg("recordatorio no enviado")
			continue
		}
		sent++
	}
	uc.log.Info().Int("sent", sent).Int("checked", len(list)).Msg("corrida de recordatorios")
	return sent, nil
}

func (uc *ReminderUseCase) scheduledOne(ctx context.Context, id string, schedule entity.ReminderSettings) error {
	unlock, err := uc.locker.Lock(ctx, lockKey(id))
	if err != nil {
		return err
	}
	defer unlock()
	inv, err := uc.repo.GetByID(ctx, id)
	if err != nil || inv == nil {
		return err
	}
	if !invoice.ReminderDue(inv, schedule, uc.now()) {
		return nil
	}
	_, err = uc.deliver(ctx, inv, "scheduler")
	return err
}

// deliver envía el mensaje y registra LastReminderAt. Se llama con el lock tomado.
func (uc *ReminderUseCase) deliver(ctx context.Context, inv *entity.Invoice, by string) (*dto.ReminderResponse, error) {
	to := strings.TrimSpace(inv.ClientInfo.Email)
	if to == "" {
		return nil, fmt.Errorf("%w: el cliente no tiene correo", domain.ErrInvalidInput)
	}
	snapshot := inv.Clone()
	if err := invoice.VerifyTotals(snapshot); err != nil {
		if err := invoice.Recompute(snapshot); err != nil {
			return nil, err
		}
	}
	msg := ReminderMessage{
		InvoiceID:     snapshot.ID,
		InvoiceNumber: snapshot.InvoiceNumber,
		To:            to,
		ClientName:    snapshot.ClientInfo.Name,
		Balance:       invoice.Balance(snapshot),
		Currency:      snapshot.Currency,
		DueDate:       snapshot.DueDate,
		Overdue:       snapshot.Status == entity.InvoiceStatusOverdue,
	}
	if err := uc.notifier.SendReminder(ctx, msg); err != nil {
		return nil, fmt.Errorf("enviar recordatorio: %w", err)
	}
	now := uc.now()
	snapshot.LastReminderAt = &now
	snapshot.UpdatedAt = now
	if err := uc.repo.Update(ctx, snapshot, inv.Version); err != nil {
		// El correo ya salió: sin LastReminderAt la próxima corrida lo repetirá.
		uc.log.Error().
			Err(err).
			Str("invoice_id", snapshot.ID).
			Str("to", to).
			Str("by", by).
			Msg("recordatorio enviado pero no registrado")
		return nil, fmt.Errorf("registrar recordatorio enviado: %w", err)
	}
	uc.log.Info().
		Str("invoice_id", snapshot.ID).
		Str("to", to).
		Str("by", by).
		Msg("recordatorio enviado")
	return &dto.ReminderResponse{InvoiceID: snapshot.ID, Recipient: to, SentAt: formatStamp(&now)}, nil
}
