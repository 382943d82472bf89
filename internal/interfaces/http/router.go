package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/agency-billing/internal/application/billing"
	"github.com/jhoicas/agency-billing/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Invoices    *billing.InvoiceUseCase
	PDF         *billing.PDFUseCase
	Reminders   *billing.ReminderUseCase
	Sweep       *billing.OverdueSweepUseCase
	Settings    *billing.SettingsUseCase
	Templates   *billing.TemplateUseCase
	JWTSecret   string
	ServiceName string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(entity.RoleAdmin)

	invoiceHandler := NewInvoiceHandler(deps.Invoices, deps.PDF, deps.Reminders, deps.Sweep)
	invoices := api.Group("/invoices")
	invoices.Post("/overdue-sweep", adminOnly, invoiceHandler.OverdueSweep)
	invoices.Post("/", adminOnly, invoiceHandler.Create)
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Patch("/:id", invoiceHandler.Update)
	invoices.Delete("/:id", invoiceHandler.Delete)
	invoices.Post("/:id/items", invoiceHandler.AddItem)
	invoices.Delete("/:id/items/:itemId", invoiceHandler.RemoveItem)
	invoices.Post("/:id/transitions", invoiceHandler.Transition)
	invoices.Post("/:id/payments", invoiceHandler.RecordPayment)
	invoices.Post("/:id/share", invoiceHandler.Share)
	invoices.Post("/:id/reminders", invoiceHandler.SendReminder)
	invoices.Get("/:id/pdf", invoiceHandler.DownloadPDF)

	settingsHandler := NewSettingsHandler(deps.Settings, deps.Templates)
	api.Get("/settings", adminOnly, settingsHandler.GetSettings)
	api.Put("/settings", adminOnly, settingsHandler.UpdateSettings)
	api.Get("/templates", adminOnly, settingsHandler.ListTemplates)
	api.Post("/templates", adminOnly, settingsHandler.CreateTemplate)
}
