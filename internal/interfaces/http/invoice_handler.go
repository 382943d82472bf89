package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/agency-billing/internal/application/billing"
	"github.com/jhoicas/agency-billing/internal/application/dto"
)

// InvoiceHandler maneja las peticiones HTTP de facturación (protegido).
type InvoiceHandler struct {
	uc        *billing.InvoiceUseCase
	pdf       *billing.PDFUseCase
	reminders *billing.ReminderUseCase
	sweep     *billing.OverdueSweepUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *billing.InvoiceUseCase, pdf *billing.PDFUseCase, reminders *billing.ReminderUseCase, sweep *billing.OverdueSweepUseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc, pdf: pdf, reminders: reminders, sweep: sweep}
}

// Create godoc
// @Summary      Crear factura en borrador
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInvoiceRequest  true  "Datos de la factura"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), actor, in)
	if err != nil {
		return writeError(c, err)
	}
	return respondInvoice(c, fiber.StatusCreated, out)
}

// List godoc
// @Summary      Listar facturas visibles para el actor
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {object}  dto.InvoiceListResponse
// @Router       /api/invoices [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros de paginación inválidos"})
	}
	out, err := h.uc.List(c.UserContext(), actor, page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener factura
// @Tags         invoices
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.uc.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return respondInvoice(c, fiber.StatusOK, out)
}

// Update godoc
// @Summary      Editar fechas, notas, términos o política de impuestos (solo borrador)
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id        path    string  true   "ID de la factura"
// @Param        If-Match  header  string  false  "Versión esperada"
// @Param        body      body    dto.UpdateInvoiceRequest  true  "Cambios"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [patch]
func (h *InvoiceHandler) Update(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	version, err := expectedVersion(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.UpdateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.UpdateDetails(c.UserContext(), actor, c.Params("id"), version, in)
	if err != nil {
		return writeError(c, err)
	}
	return respondInvoice(c, fiber.StatusOK, out)
}

// Delete elimina un borrador o una factura cancelada.
// DELETE /api/invoices/:id
func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.uc.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddItem godoc
// @Summary      Agregar línea (solo borrador)
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la factura"
// @Param        body  body  dto.InvoiceItemRequest  true  "Línea"
// @Success      200  {object}  dto.InvoiceResponse
// @Router       /api/invoices/{id}/items [post]
func (h *InvoiceHandler) AddItem(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	version, err := expectedVersion(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.InvoiceItemRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.AddItem(c.UserContext(), actor, c.Params("id"), version, in)
	if err != nil {
		return writeError(c, err)
	}
	return respondInvoice(c, fiber.StatusOK, out)
}

// RemoveItem quita una línea del borrador.
// DELETE /api/invoices/:id/items/:itemId
func (h *InvoiceHandler) RemoveItem(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	version, err := expectedVersion(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.RemoveItem(c.UserContext(), actor, c.Params("id"), version, c.Params("itemId"))
	if err != nil {
		return writeError(c, err)
	}
	return respondInvoice(c, fiber.StatusOK, out)
}

// Transition godoc
// @Summary      Cambiar estado de la factura
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la factura"
// @Param        body  body  dto.TransitionRequest  true  "Estado destino"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/transitions [post]
func (h *InvoiceHandler) Transition(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	version, err := expectedVersion(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.TransitionRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Transition(c.UserContext(), actor, c.Params("id"), version, in)
	if err != nil {
		return writeError(c, err)
	}
	return respondInvoice(c, fiber.StatusOK, out)
}

// RecordPayment godoc
// @Summary      Registrar pago (idempotente por id o transaction_id)
// @Tags         invoices
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la factura"
// @Param        body  body  dto.PaymentRequest  true  "Pago"
// @Success      200  {object}  dto.InvoiceResponse
// @Router       /api/invoices/{id}/payments [post]
func (h *InvoiceHandler) RecordPayment(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.PaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.RecordPayment(c.UserContext(), actor, c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return respondInvoice(c, fiber.StatusOK, out)
}

// Share comparte la factura con empleados.
// POST /api/invoices/:id/share
func (h *InvoiceHandler) Share(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.ShareRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Share(c.UserContext(), actor, c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return respondInvoice(c, fiber.StatusOK, out)
}

// SendReminder envía un recordatorio de pago al cliente.
// POST /api/invoices/:id/reminders
func (h *InvoiceHandler) SendReminder(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.reminders.Send(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(out)
}

// DownloadPDF godoc
// @Summary      Descargar PDF de la factura
// @Tags         invoices
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la factura"
// @Success      200  {file}  binary
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/pdf [get]
func (h *InvoiceHandler) DownloadPDF(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	data, filename, err := h.pdf.Download(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

// OverdueSweep ejecuta el chequeo de vencimientos a demanda.
// POST /api/invoices/overdue-sweep
func (h *InvoiceHandler) OverdueSweep(c *fiber.Ctx) error {
	out, err := h.sweep.Run(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
