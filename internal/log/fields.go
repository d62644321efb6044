package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldSheet      = "sheet"
	FieldClient     = "client"
	FieldService    = "service"
	FieldCategory   = "category"
	FieldAmount     = "amount_paise"
	FieldInvoiceID  = "invoice_id"
	FieldCustomer   = "customer_code"
	FieldToken      = "idempotency_token"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentLedger   = "ledger"
	ComponentInvoice  = "invoice"
	ComponentStore    = "store"
	ComponentArchive  = "archive"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentRender   = "render"
	ComponentTemplate = "template"
)

// Operations defines standard operation names
const (
	OpLoad     = "load"
	OpAppend   = "append"
	OpRegister = "register"
	OpGenerate = "generate"
	OpExport   = "export"
	OpRender   = "render"
	OpArchive  = "archive"
	OpBackfill = "backfill"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeSchema        = "schema_error"
	ErrorTypeStoreRead     = "store_read_error"
	ErrorTypeStoreWrite    = "store_write_error"
	ErrorTypeRender        = "render_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeInternal      = "internal_error"
)
