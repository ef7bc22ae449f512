package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldEndpoint    = "endpoint"
	FieldPage        = "page"
	FieldRecords     = "records"
	FieldHasCursor   = "has_cursor"
	FieldStart       = "start"
	FieldEnd         = "end"
	FieldGranularity = "granularity"
	FieldByCategory  = "by_category"
	FieldSkipped     = "skipped"
	FieldExcluded    = "excluded"
	FieldRunID       = "run_id"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentLoyverse = "loyverse"
	ComponentAuth     = "auth"
	ComponentReport   = "report"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentSheets   = "sheets"
)

// Operations defines standard operation names
const (
	OpFetch    = "fetch"
	OpPaginate = "paginate"
	OpJoin     = "join"
	OpSummary  = "summarize"
	OpArchive  = "archive"
	OpPublish  = "publish"
	OpExport   = "export"
	OpRender   = "render"
	OpExchange = "exchange"
)
