package billing

import (
	"context"
	"errors"

	"github.com/jhoicas/agency-billing/internal/application/dto"
	"github.com/jhoicas/agency-billing/internal/domain"
	"github.com/jhoicas/agency-billing/internal/domain/entity"
	"github.com/jhoicas/agency-billing/internal/domain/invoice"
	"github.com/jhoicas/agency-billing/internal/domain/repository"
	"github.com/jhoicas/agency-billing/pkg/logger"
)

// OverdueSweepUseCase chequeo programado que marca overdue las facturas vencidas.
type OverdueSweepUseCase struct {
	repo   repository.InvoiceRepository
	locker Locker
	log    *logger.Logger
	now    Clock
}

// NewOverdueSweepUseCase construye el caso de uso.
func NewOverdueSweepUseCase(repo repository.InvoiceRepository, locker Locker, log *logger.Logger, now Clock) *OverdueSweepUseCase {
	return &OverdueSweepUseCase{repo: repo, locker: locker, log: log, now: now}
}

// Run recorre las facturas sent/viewed y marca las vencidas.
// Puede ejecutarse varias veces: una factura ya marcada no se vuelve a tocar.
// Las que cambiaron en paralelo (lock ocupado o versión distinta) se cuentan en Conflicted.
func (uc *OverdueSweepUseCase) Run(ctx context.Context) (*dto.OverdueSweepResponse, error) {
	candidates, err := uc.repo.List(ctx, repository.InvoiceFilter{
		Statuses: []entity.InvoiceStatus{entity.InvoiceStatusSent, entity.InvoiceStatusViewed},
	})
	if err != nil {
		return nil, err
	}
	now := uc.now()
	resp := &dto.OverdueSweepResponse{MarkedIDs: []string{}}
	for _, c := range candidates {
		if ctx.Err() != nil {
			return resp, ctx.Err()
		}
		resp.Checked++
		if _, due := invoice.MarkOverdue(c, now); !due {
			continue
		}
		marked, err := uc.markOne(ctx, c.ID)
		switch {
		case err == nil && marked:
			resp.MarkedIDs = append(resp.MarkedIDs, c.ID)
		case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrLocked):
			resp.Conflicted++
		case err != nil:
			return resp, err
		}
	}
	uc.log.Info().
		Int("checked", resp.Checked).
		Int("marked", len(resp.MarkedIDs)).
		Int("conflicted", resp.Conflicted).
		Msg("chequeo de vencimientos")
	return resp, nil
}

func (uc *OverdueSweepUseCase) markOne(ctx context.Context, id string) (bool, error) {
	unlock, err := uc.locker.Lock(ctx, lockKey(id))
	if err != nil {
		return false, err
	}
	defer unlock()
	cur, err := uc.repo.GetByID(ctx, id)
	if err != nil || cur == nil {
		return false, err
	}
	out, changed := invoice.MarkOverdue(cur, uc.now())
	if !changed {
		return false, nil
	}
	if err := uc.repo.Update(ctx, out, cur.Version); err != nil {
		return false, err
	}
	return true, nil
}
