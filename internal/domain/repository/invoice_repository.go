package repository

import (
	"context"

	"github.com/jhoicas/agency-billing/internal/domain/entity"
)

// InvoiceFilter criterios de listado. Los campos vacíos no filtran.
type InvoiceFilter struct {
	Statuses []entity.InvoiceStatus
	ClientID string
	SharedID string // empleado presente en shared_with
	Limit    int
	Offset   int
}

// InvoiceRepository define el puerto de persistencia para Invoice (líneas e historial de pagos incluidos).
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	// Update reemplaza la factura si su versión almacenada es expectedVersion.
	// Devuelve domain.ErrConflict si otra escritura ganó; al éxito invoice.Version = expectedVersion+1.
	Update(ctx context.Context, invoice *entity.Invoice, expectedVersion int) error
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	List(ctx context.Context, filter InvoiceFilter) ([]*entity.Invoice, error)
	Delete(ctx context.Context, id string) error
	// NextSequence reserva el siguiente consecutivo para (prefix, year), empezando en 1.
	NextSequence(ctx context.Context, prefix string, year int) (int, error)
}
