package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrNotDraft          = errors.New("la factura no está en borrador")
	ErrInvalidTransition = errors.New("transición de estado no permitida")
	ErrTerminalState     = errors.New("la factura está en un estado terminal")
	ErrIntegrity         = errors.New("totales almacenados inconsistentes")
	ErrLocked            = errors.New("la factura está siendo modificada")
)
