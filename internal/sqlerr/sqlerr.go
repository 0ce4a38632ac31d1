// Package sqlerr normalizes Postgres driver errors.
//
// pgx surfaces server errors as *pgconn.PgError with a raw SQLSTATE code.
// This package maps those into a small Code enum and, via HandleError,
// into the *errs.HTTPError values the API returns: constraint violations
// become 400s with derived codes and messages, missing rows become 404s,
// and everything else collapses to a sanitized 500.
package sqlerr

// Code classifies a database error by its SQLSTATE.
type Code int

const (
	Other Code = iota
	UniqueViolation
	ForeignKeyViolation
	NotNullViolation
	CheckViolation
)

// Severity mirrors the Postgres error severity field.
type Severity int

const (
	SeverityError Severity = iota
	SeverityFatal
	SeverityPanic
	SeverityWarning
	SeverityNotice
	SeverityDebug
	SeverityInfo
	SeverityLog
)

// Error is a normalized Postgres error. It keeps the original SQLSTATE
// in DatabaseCode and the driver error for Unwrap.
type Error struct {
	Code           Code
	Severity       Severity
	DatabaseCode   string
	Message        string
	SchemaName     string
	TableName      string
	ColumnName     string
	DataTypeName   string
	ConstraintName string

	driverErr error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.driverErr != nil {
		return e.driverErr.Error()
	}

	return "database error"
}

func (e *Error) Unwrap() error {
	return e.driverErr
}

// MapCode maps a SQLSTATE code to a Code. Only the integrity constraint
// class (23xxx) gets distinct values; the rest map to Other.
func MapCode(sqlstate string) Code {
	switch sqlstate {
	case "23505":
		return UniqueViolation
	case "23503":
		return ForeignKeyViolation
	case "23502":
		return NotNullViolation
	case "23514":
		return CheckViolation
	default:
		return Other
	}
}

// MapSeverity maps the severity string reported by the server.
func MapSeverity(severity string) Severity {
	switch severity {
	case "FATAL":
		return SeverityFatal
	case "PANIC":
		return SeverityPanic
	case "WARNING":
		return SeverityWarning
	case "NOTICE":
		return SeverityNotice
	case "DEBUG":
		return SeverityDebug
	case "INFO":
		return SeverityInfo
	case "LOG":
		return SeverityLog
	default:
		return SeverityError
	}
}
