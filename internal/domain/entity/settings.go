package entity

// AutoGenerateSettings disparadores de generación automática de facturas.
type AutoGenerateSettings struct {
	OnProjectCompletion bool
	Recurring           bool
	RecurringDays       int
}

// ReminderSettings calendario de recordatorios relativo a la fecha de vencimiento.
type ReminderSettings struct {
	Enabled       bool
	DaysBeforeDue []int
	DaysAfterDue  []int
}

// NumberingSettings esquema de numeración <PREFIX>-<YEAR>-<SEQ>.
type NumberingSettings struct {
	Prefix  string
	Padding int // dígitos mínimos de SEQ
}

// InvoiceSettings configuración global de facturación.
// Solo la lee el flujo de creación; no afecta retroactivamente facturas existentes.
type InvoiceSettings struct {
	AutoGenerate   AutoGenerateSettings
	DefaultDueDays int
	Reminders      ReminderSettings
	Numbering      NumberingSettings
	Tax            TaxPolicy
	Currency       string
	Company        CompanyInfo
}
