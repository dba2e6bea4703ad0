package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldOperation = "operation"
	FieldUser      = "user"
	FieldMonth     = "month"
	FieldYear      = "year"
	FieldTxID      = "transaction_id"
	FieldTxType    = "transaction_type"
	FieldAmount    = "amount"
	FieldCategory  = "category"
	FieldSheetsRef = "sheets_ref"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentAPI     = "api"
	ComponentShell   = "shell"
	ComponentSession = "session"
	ComponentBudget  = "budget"
	ComponentStorage = "storage"
	ComponentExport  = "export"
	ComponentSheets  = "sheets"
)
