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
	FieldUserID     = "user_id"
	FieldEmail      = "email"
	FieldCategory   = "category"
	FieldAmount     = "amount_cents"
	FieldLimit      = "limit_cents"
	FieldMonth      = "month"
	FieldYear       = "year"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentAuth      = "auth"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentMailer    = "mailer"
	ComponentAnalytics = "analytics"
	ComponentBudget    = "budget"
	ComponentWorker    = "worker"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpList     = "list"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpUpsert   = "upsert"
	OpRegister = "register"
	OpLogin    = "login"
	OpReport   = "report"
	OpNotify   = "notify"
)
