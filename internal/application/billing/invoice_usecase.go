package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/agency-billing/internal/application/dto"
	"github.com/jhoicas/agency-billing/internal/domain"
	"github.com/jhoicas/agency-billing/internal/domain/entity"
	"github.com/jhoicas/agency-billing/internal/domain/invoice"
	"github.com/jhoicas/agency-billing/internal/domain/repository"
	"github.com/jhoicas/agency-billing/pkg/logger"
)

// InvoiceUseCase orquesta el motor de facturación sobre el repositorio.
// Cada operación que modifica una factura toma el lock de la factura, la relee,
// valida acceso, aplica el motor y persiste con chequeo de versión.
type InvoiceUseCase struct {
	invoiceRepo  repository.InvoiceRepository
	templateRepo repository.TemplateRepository
	settings     *SettingsUseCase
	locker       Locker
	log          *logger.Logger
	now          Clock
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(
	invoiceRepo repository.InvoiceRepository,
	templateRepo repository.TemplateRepository,
	settings *SettingsUseCase,
	locker Locker,
	log *logger.Logger,
	now Clock,
) *InvoiceUseCase {
	return &InvoiceUseCase{
		invoiceRepo:  invoiceRepo,
		templateRepo: templateRepo,
		settings:     settings,
		locker:       locker,
		log:          log,
		now:          now,
	}
}

// Create crea una factura en borrador. Solo administradores.
func (uc *InvoiceUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if !invoice.CanCreate(actor) {
		return nil, domain.ErrForbidden
	}
	settings, err := uc.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	var tpl *entity.InvoiceTemplate
	if in.TemplateID != "" {
		tpl, err = uc.templateRepo.GetByID(ctx, in.TemplateID)
		if err != nil {
			return nil, fmt.Errorf("obtener plantilla: %w", err)
		}
		if tpl == nil {
			return nil, fmt.Errorf("%w: plantilla %s", domain.ErrNotFound, in.TemplateID)
		}
	}
	issue, err := parseDate(in.IssueDate)
	if err != nil {
		return nil, err
	}
	due, err := parseDate(in.DueDate)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	prefix := strings.ToUpper(strings.TrimSpace(settings.Numbering.Prefix))
	// Se valida con un número provisional; el consecutivo se reserva solo si la factura es válida.
	draftNumber, err := invoice.FormatNumber(prefix, now.Year(), 1, settings.Numbering.Padding)
	if err != nil {
		return nil, err
	}

	var project *entity.ProjectInfo
	if in.Project != nil {
		project = &entity.ProjectInfo{ID: in.Project.ID, Name: in.Project.Name, Description: in.Project.Description}
	}
	inv, err := invoice.NewInvoice(invoice.CreateParams{
		Number:   draftNumber,
		ClientID: strings.TrimSpace(in.ClientID),
		Client: entity.ClientInfo{
			Name:    strings.TrimSpace(in.Client.Name),
			Email:   in.Client.Email,
			Phone:   in.Client.Phone,
			Company: in.Client.Company,
			Address: in.Client.Address,
			TaxID:   in.Client.TaxID,
		},
		Project:    project,
		Template:   tpl,
		Settings:   settings,
		Items:      toItems(in.Items),
		Currency:   in.Currency,
		IssueDate:  issue,
		DueDate:    due,
		Notes:      in.Notes,
		Terms:      in.Terms,
		CreatedBy:  actor.ID,
		SharedWith: in.SharedWith,
		Now:        now,
	})
	if err != nil {
		return nil, err
	}
	seq, err := uc.invoiceRepo.NextSequence(ctx, prefix, now.Year())
	if err != nil {
		return nil, fmt.Errorf("reservar consecutivo: %w", err)
	}
	if inv.InvoiceNumber, err = invoice.FormatNumber(prefix, now.Year(), seq, settings.Numbering.Padding); err != nil {
		return nil, err
	}
	if err := uc.invoiceRepo.Create(ctx, inv); err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("invoice_id", inv.ID).
		Str("number", inv.InvoiceNumber).
		Str("actor", actor.ID).
		Msg("factura creada")
	return toInvoiceResponse(inv, invoice.Evaluate(actor, inv)), nil
}

// Get devuelve una factura visible para el actor.
// Cuando el cliente dueño abre una factura sent, pasa a viewed.
func (uc *InvoiceUseCase) Get(ctx context.Context, actor entity.Actor, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.loadVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == entity.RoleClient && inv.Status == entity.InvoiceStatusSent {
		viewed, err := uc.mutate(ctx, actor, id, 0, clientRead, func(cur *entity.Invoice) (*entity.Invoice, error) {
			if cur.Status != entity.InvoiceStatusSent {
				return cur, nil
			}
			return invoice.Transition(cur, entity.InvoiceStatusViewed, invoice.TransitionContext{Now: uc.now()})
		})
		if err != nil {
			uc.log.Warn().Err(err).Str("invoice_id", id).Msg("no se pudo registrar la lectura del cliente")
		} else {
			inv = viewed
		}
	}
	return toInvoiceResponse(inv, invoice.Evaluate(actor, inv)), nil
}

// List devuelve las facturas visibles para el actor.
func (uc *InvoiceUseCase) List(ctx context.Context, actor entity.Actor, page dto.PageRequest) (*dto.InvoiceListResponse, error) {
	page.DefaultPage()
	filter := repository.InvoiceFilter{}
	switch actor.Role {
	case entity.RoleAdmin:
	case entity.RoleEmployee:
		filter.SharedID = actor.ID
	case entity.RoleClient:
		filter.ClientID = actor.ID
	default:
		return nil, domain.ErrForbidden
	}
	all, err := uc.invoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	visible := invoice.VisibleInvoices(actor, all)

	resp := &dto.InvoiceListResponse{
		Items: make([]dto.InvoiceResponse, 0, page.Limit),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(visible)},
	}
	for i := page.Offset; i < len(visible) && i < page.Offset+page.Limit; i++ {
		inv := visible[i]
		if err := uc.reconcile(inv); err != nil {
			return nil, err
		}
		resp.Items = append(resp.Items, *toInvoiceResponse(inv, invoice.Evaluate(actor, inv)))
	}
	return resp, nil
}

// AddItem agrega una línea a un borrador.
func (uc *InvoiceUseCase) AddItem(ctx context.Context, actor entity.Actor, id string, expectedVersion int, in dto.InvoiceItemRequest) (*dto.InvoiceResponse, error) {
	inv, err := uc.mutate(ctx, actor, id, expectedVersion, can(invoice.ActionEdit), func(cur *entity.Invoice) (*entity.Invoice, error) {
		return invoice.AddItem(cur, toItem(in))
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, invoice.Evaluate(actor, inv)), nil
}

// RemoveItem quita una línea de un borrador.
func (uc *InvoiceUseCase) RemoveItem(ctx context.Context, actor entity.Actor, id string, expectedVersion int, itemID string) (*dto.InvoiceResponse, error) {
	inv, err := uc.mutate(ctx, actor, id, expectedVersion, can(invoice.ActionEdit), func(cur *entity.Invoice) (*entity.Invoice, error) {
		return invoice.RemoveItem(cur, itemID)
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, invoice.Evaluate(actor, inv)), nil
}

// UpdateDetails edita fechas, notas, términos o política de impuestos de un borrador.
func (uc *InvoiceUseCase) UpdateDetails(ctx context.Context, actor entity.Actor, id string, expectedVersion int, in dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	patch := invoice.DetailsPatch{Notes: in.Notes, Terms: in.Terms}
	var err error
	if in.IssueDate != nil {
		if patch.IssueDate, err = parseDate(*in.IssueDate); err != nil {
			return nil, err
		}
	}
	if in.DueDate != nil {
		if patch.DueDate, err = parseDate(*in.DueDate); err != nil {
			return nil, err
		}
	}
	inv, err := uc.mutate(ctx, actor, id, expectedVersion, can(invoice.ActionEdit), func(cur *entity.Invoice) (*entity.Invoice, error) {
		if in.TaxMode != nil || in.TaxRate != nil {
			policy := cur.TaxPolicy
			if in.TaxMode != nil {
				policy.Mode = entity.TaxMode(*in.TaxMode)
			}
			if in.TaxRate != nil {
				policy.DefaultRate = *in.TaxRate
			}
			patch.TaxPolicy = &policy
		}
		return invoice.UpdateDetails(cur, patch)
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, invoice.Evaluate(actor, inv)), nil
}

// Transition mueve la factura al estado pedido.
func (uc *InvoiceUseCase) Transition(ctx context.Context, actor entity.Actor, id string, expectedVersion int, in dto.TransitionRequest) (*dto.InvoiceResponse, error) {
	to := entity.InvoiceStatus(strings.ToLower(strings.TrimSpace(in.Status)))
	var authz authorizer = clientRead
	if to != entity.InvoiceStatusViewed {
		action, ok := transitionActions[to]
		if !ok {
			return nil, fmt.Errorf("%w: estado destino %q", domain.ErrInvalidInput, in.Status)
		}
		authz = can(action)
	}
	inv, err := uc.mutate(ctx, actor, id, expectedVersion, authz, func(cur *entity.Invoice) (*entity.Invoice, error) {
		if cur.Status == to {
			return cur, nil
		}
		return invoice.Transition(cur, to, invoice.TransitionContext{
			Now:           uc.now(),
			PaymentMethod: in.PaymentMethod,
			TransactionID: in.TransactionID,
		})
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("invoice_id", inv.ID).
		Str("status", string(inv.Status)).
		Str("actor", actor.ID).
		Msg("transición de factura")
	return toInvoiceResponse(inv, invoice.Evaluate(actor, inv)), nil
}

var transitionActions = map[entity.InvoiceStatus]invoice.Action{
	entity.InvoiceStatusSent:      invoice.ActionSend,
	entity.InvoiceStatusOverdue:   invoice.ActionMarkOverdue,
	entity.InvoiceStatusPaid:      invoice.ActionRecordPayment,
	entity.InvoiceStatusCancelled: invoice.ActionCancel,
}

// RecordPayment registra un pago. Admin (record_payment) o cliente dueño (pay).
// Repetir el mismo pago devuelve la factura sin cambios, aunque ya esté pagada.
func (uc *InvoiceUseCase) RecordPayment(ctx context.Context, actor entity.Actor, id string, in dto.PaymentRequest) (*dto.InvoiceResponse, error) {
	action := invoice.ActionRecordPayment
	if actor.Role == entity.RoleClient {
		action = invoice.ActionPay
	}
	payDate, err := parseDate(in.PaymentDate)
	if err != nil {
		return nil, err
	}
	p := entity.PaymentRecord{
		ID:            strings.TrimSpace(in.ID),
		Amount:        in.Amount,
		PaymentMethod: strings.TrimSpace(in.PaymentMethod),
		TransactionID: strings.TrimSpace(in.TransactionID),
		Status:        entity.PaymentStatus(strings.ToLower(strings.TrimSpace(in.Status))),
		Notes:         in.Notes,
	}

	allowed := can(action)
	authz := func(actor entity.Actor, cur *entity.Invoice) error {
		err := allowed(actor, cur)
		if err != nil && invoice.Evaluate(actor, cur).Visible && invoice.IsDuplicatePayment(cur, p) {
			return nil
		}
		return err
	}

	var applied bool
	inv, err := uc.mutate(ctx, actor, id, 0, authz, func(cur *entity.Invoice) (*entity.Invoice, error) {
		rec := p
		rec.InvoiceID = cur.ID
		if payDate != nil {
			rec.PaymentDate = *payDate
		} else {
			rec.PaymentDate = uc.now()
		}
		out, ok, err := invoice.RecordPayment(cur, rec)
		if err != nil {
			return nil, err
		}
		if applied = ok; !ok {
			return cur, nil
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("invoice_id", inv.ID).
		Bool("applied", applied).
		Str("status", string(inv.Status)).
		Msg("pago registrado")
	return toInvoiceResponse(inv, invoice.Evaluate(actor, inv)), nil
}

// Share concede lectura a empleados.
func (uc *InvoiceUseCase) Share(ctx context.Context, actor entity.Actor, id string, in dto.ShareRequest) (*dto.InvoiceResponse, error) {
	if len(in.EmployeeIDs) == 0 {
		return nil, fmt.Errorf("%w: employee_ids requerido", domain.ErrInvalidInput)
	}
	inv, err := uc.mutate(ctx, actor, id, 0, can(invoice.ActionShare), func(cur *entity.Invoice) (*entity.Invoice, error) {
		return invoice.Share(cur, in.EmployeeIDs)
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv, invoice.Evaluate(actor, inv)), nil
}

// Delete elimina un borrador o una factura cancelada.
func (uc *InvoiceUseCase) Delete(ctx context.Context, actor entity.Actor, id string) error {
	unlock, err := uc.locker.Lock(ctx, lockKey(id))
	if err != nil {
		return err
	}
	defer unlock()
	inv, err := uc.loadVisible(ctx, actor, id)
	if err != nil {
		return err
	}
	if !invoice.Evaluate(actor, inv).Can(invoice.ActionDelete) {
		if actor.Role == entity.RoleAdmin {
			return fmt.Errorf("%w: solo se eliminan borradores o facturas canceladas", domain.ErrConflict)
		}
		return domain.ErrForbidden
	}
	if err := uc.invoiceRepo.Delete(ctx, id); err != nil {
		return err
	}
	uc.log.Info().Str("invoice_id", id).Str("actor", actor.ID).Msg("factura eliminada")
	return nil
}

// mutate ejecuta fn bajo el lock de la factura y persiste el resultado si cambió.
// expectedVersion > 0 exige que la versión leída coincida (If-Match).
func (uc *InvoiceUseCase) mutate(
	ctx context.Context,
	actor entity.Actor,
	id string,
	expectedVersion int,
	authz authorizer,
	fn func(cur *entity.Invoice) (*entity.Invoice, error),
) (*entity.Invoice, error) {
	unlock, err := uc.locker.Lock(ctx, lockKey(id))
	if err != nil {
		return nil, err
	}
	defer unlock()

	cur, err := uc.loadVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := authz(actor, cur); err != nil {
		return nil, err
	}
	if expectedVersion > 0 && cur.Version != expectedVersion {
		return nil, fmt.Errorf("%w: versión %d, esperada %d", domain.ErrConflict, cur.Version, expectedVersion)
	}
	out, err := fn(cur)
	if err != nil {
		return nil, err
	}
	if out == cur {
		return cur, nil
	}
	out.UpdatedAt = uc.now()
	if err := uc.invoiceRepo.Update(ctx, out, cur.Version); err != nil {
		return nil, err
	}
	return out, nil
}

// authorizer decide si el actor puede aplicar la operación sobre la factura ya cargada.
type authorizer func(actor entity.Actor, cur *entity.Invoice) error

// can exige la acción. Los administradores pasan siempre: si la acción no está
// disponible por el estado, el motor devuelve el error de validación correspondiente.
func can(action invoice.Action) authorizer {
	return func(actor entity.Actor, cur *entity.Invoice) error {
		access := invoice.Evaluate(actor, cur)
		if access.Can(action) {
			return nil
		}
		if access.Visible && actor.Role == entity.RoleAdmin {
			return nil
		}
		return domain.ErrForbidden
	}
}

// clientRead solo el cliente dueño marca la factura como leída.
func clientRead(actor entity.Actor, cur *entity.Invoice) error {
	if actor.Role != entity.RoleClient || !invoice.Evaluate(actor, cur).Visible {
		return domain.ErrForbidden
	}
	return nil
}

// loadVisible carga la factura y verifica visibilidad.
// Para no administradores, inexistente y no visible son el mismo resultado: ErrForbidden.
func (uc *InvoiceUseCase) loadVisible(ctx context.Context, actor entity.Actor, id string) (*entity.Invoice, error) {
	inv, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		if actor.Role == entity.RoleAdmin {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrForbidden
	}
	if !invoice.Evaluate(actor, inv).Visible {
		return nil, domain.ErrForbidden
	}
	if err := uc.reconcile(inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// reconcile recalcula los totales si los almacenados no cuadran; nunca se confía en ellos.
func (uc *InvoiceUseCase) reconcile(inv *entity.Invoice) error {
	err := invoice.VerifyTotals(inv)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrIntegrity) {
		return err
	}
	uc.log.Warn().Err(err).Str("invoice_id", inv.ID).Msg("totales inconsistentes, se recalculan")
	return invoice.Recompute(inv)
}
