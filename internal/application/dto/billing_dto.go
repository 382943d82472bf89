package dto

import "github.com/shopspring/decimal"

// Las fechas de calendario viajan como "2006-01-02"; las marcas de tiempo como RFC 3339.

// ClientInfoDTO datos del cliente copiados en la factura.
type ClientInfoDTO struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
	Address string `json:"address,omitempty"`
	TaxID   string `json:"tax_id,omitempty"`
}

// ProjectInfoDTO proyecto facturado (opcional).
type ProjectInfoDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// InvoiceItemRequest línea de factura.
type InvoiceItemRequest struct {
	ID          string           `json:"id,omitempty"`
	Description string           `json:"description"`
	Quantity    int64            `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	ServiceType string           `json:"service_type,omitempty"`
	TaxRate     *decimal.Decimal `json:"tax_rate,omitempty"`
}

// CreateInvoiceRequest body para POST /api/invoices.
type CreateInvoiceRequest struct {
	TemplateID string               `json:"template_id,omitempty"`
	ClientID   string               `json:"client_id"`
	Client     ClientInfoDTO        `json:"client"`
	Project    *ProjectInfoDTO      `json:"project,omitempty"`
	Items      []InvoiceItemRequest `json:"items"`
	Currency   string               `json:"currency,omitempty"`
	IssueDate  string               `json:"issue_date,omitempty"`
	DueDate    string               `json:"due_date,omitempty"`
	Notes      string               `json:"notes,omitempty"`
	Terms      string               `json:"terms,omitempty"`
	SharedWith []string             `json:"shared_with,omitempty"`
}

// UpdateInvoiceRequest body para PATCH /api/invoices/:id (solo borradores).
type UpdateInvoiceRequest struct {
	IssueDate *string          `json:"issue_date,omitempty"`
	DueDate   *string          `json:"due_date,omitempty"`
	Notes     *string          `json:"notes,omitempty"`
	Terms     *string          `json:"terms,omitempty"`
	TaxMode   *string          `json:"tax_mode,omitempty"`
	TaxRate   *decimal.Decimal `json:"tax_rate,omitempty"`
}

// TransitionRequest body para POST /api/invoices/:id/transitions.
type TransitionRequest struct {
	Status        string `json:"status"`
	PaymentMethod string `json:"payment_method,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
}

// PaymentRequest body para POST /api/invoices/:id/payments.
type PaymentRequest struct {
	ID            string          `json:"id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   string          `json:"payment_date,omitempty"` // vacío = ahora
	PaymentMethod string          `json:"payment_method"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Status        string          `json:"status,omitempty"` // pending|completed|failed; vacío = completed
	Notes         string          `json:"notes,omitempty"`
}

// ShareRequest body para POST /api/invoices/:id/share.
type ShareRequest struct {
	EmployeeIDs []string `json:"employee_ids"`
}

// InvoiceItemResponse línea con su total derivado.
type InvoiceItemResponse struct {
	ID          string           `json:"id"`
	Description string           `json:"description"`
	Quantity    int64            `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	ServiceType string           `json:"service_type,omitempty"`
	TaxRate     *decimal.Decimal `json:"tax_rate,omitempty"`
	Total       decimal.Decimal  `json:"total"`
}

// PaymentResponse entrada del historial de pagos.
type PaymentResponse struct {
	ID            string          `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   string          `json:"payment_date"`
	PaymentMethod string          `json:"payment_method"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Status        string          `json:"status"`
	Notes         string          `json:"notes,omitempty"`
}

// InvoiceResponse factura completa junto con las acciones permitidas al actor.
type InvoiceResponse struct {
	ID             string                `json:"id"`
	InvoiceNumber  string                `json:"invoice_number"`
	ClientID       string                `json:"client_id"`
	Client         ClientInfoDTO         `json:"client"`
	Project        *ProjectInfoDTO       `json:"project,omitempty"`
	Items          []InvoiceItemResponse `json:"items"`
	TaxMode        string                `json:"tax_mode"`
	DefaultTaxRate decimal.Decimal       `json:"default_tax_rate"`
	Subtotal       decimal.Decimal       `json:"subtotal"`
	TaxAmount      decimal.Decimal       `json:"tax_amount"`
	TotalAmount    decimal.Decimal       `json:"total_amount"`
	Balance        decimal.Decimal       `json:"balance"`
	Currency       string                `json:"currency"`
	Status         string                `json:"status"`
	IssueDate      string                `json:"issue_date,omitempty"`
	DueDate        string                `json:"due_date"`
	ViewedAt       string                `json:"viewed_at,omitempty"`
	PaidDate       string                `json:"paid_date,omitempty"`
	PaymentMethod  string                `json:"payment_method,omitempty"`
	Notes          string                `json:"notes,omitempty"`
	Terms          string                `json:"terms,omitempty"`
	CreatedBy      string                `json:"created_by"`
	SharedWith     []string              `json:"shared_with,omitempty"`
	PaymentHistory []PaymentResponse     `json:"payment_history,omitempty"`
	Actions        []string              `json:"actions"`
	Version        int                   `json:"version"`
	CreatedAt      string                `json:"created_at"`
	UpdatedAt      string                `json:"updated_at"`
}

// InvoiceListResponse listado paginado.
type InvoiceListResponse struct {
	Items []InvoiceResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// OverdueSweepResponse resultado del chequeo programado de vencimientos.
type OverdueSweepResponse struct {
	Checked    int      `json:"checked"`
	MarkedIDs  []string `json:"marked_ids"`
	Conflicted int      `json:"conflicted"`
}

// ReminderResponse resultado de un envío de recordatorio.
type ReminderResponse struct {
	InvoiceID string `json:"invoice_id"`
	Recipient string `json:"recipient"`
	SentAt    string `json:"sent_at"`
}

// TaxPolicyDTO política de impuestos.
type TaxPolicyDTO struct {
	Mode        string          `json:"mode"`
	DefaultRate decimal.Decimal `json:"default_rate"`
}

// CompanyInfoDTO datos de la agencia emisora.
type CompanyInfoDTO struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	TaxID   string `json:"tax_id,omitempty"`
}

// TemplateRequest body para POST /api/templates.
type TemplateRequest struct {
	Name      string               `json:"name"`
	Items     []InvoiceItemRequest `json:"items"`
	Terms     string               `json:"terms,omitempty"`
	Notes     string               `json:"notes,omitempty"`
	TaxPolicy *TaxPolicyDTO        `json:"tax_policy,omitempty"`
	Currency  string               `json:"currency,omitempty"`
	Company   CompanyInfoDTO       `json:"company"`
}

// TemplateResponse plantilla almacenada.
type TemplateResponse struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Items     []InvoiceItemResponse `json:"items"`
	Terms     string                `json:"terms,omitempty"`
	Notes     string                `json:"notes,omitempty"`
	TaxPolicy *TaxPolicyDTO         `json:"tax_policy,omitempty"`
	Currency  string                `json:"currency,omitempty"`
	Company   CompanyInfoDTO        `json:"company"`
	CreatedAt string                `json:"created_at"`
}

// SettingsDTO configuración global (GET/PUT /api/settings).
type SettingsDTO struct {
	AutoGenerateOnProjectCompletion bool           `json:"auto_generate_on_project_completion"`
	AutoGenerateRecurring           bool           `json:"auto_generate_recurring"`
	RecurringDays                   int            `json:"recurring_days"`
	DefaultDueDays                  int            `json:"default_due_days"`
	RemindersEnabled                bool           `json:"reminders_enabled"`
	ReminderDaysBeforeDue           []int          `json:"reminder_days_before_due"`
	ReminderDaysAfterDue            []int          `json:"reminder_days_after_due"`
	NumberPrefix                    string         `json:"number_prefix"`
	NumberPadding                   int            `json:"number_padding"`
	Tax                             TaxPolicyDTO   `json:"tax"`
	Currency                        string         `json:"currency"`
	Company                         CompanyInfoDTO `json:"company"`
}
