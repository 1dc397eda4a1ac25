package postgres

// PostgreSQL error codes mapped onto domain errors
const (
	// PgErrorCodeInvalidAuthorization is raised for a rejected role
	PgErrorCodeInvalidAuthorization = "28000"
	// PgErrorCodeInvalidPassword is raised for bad credentials
	PgErrorCodeInvalidPassword = "28P01"
	// PgErrorCodeInsufficientPrivilege is raised by row-level security and grants
	PgErrorCodeInsufficientPrivilege = "42501"
	// PgErrorClassIntegrity prefixes constraint violations (23505 unique, 23503 fk, ...)
	PgErrorClassIntegrity = "23"
	// PgErrorClassDataException prefixes bad input values
	PgErrorClassDataException = "22"
)

// Error Messages
const (
	ErrMsgFailedToBeginTransaction = "failed to begin transaction"
	ErrMsgFailedToCommit           = "failed to commit transaction"
	ErrMsgUnknownResource          = "unknown resource"
	ErrMsgEncodeRecord             = "failed to encode record"
	ErrMsgDecodeRecord             = "failed to decode record"
	ErrMsgNoColumns                = "record has no writable columns"
	ErrMsgOpenMigrationDB          = "failed to open database for migrations"
	ErrMsgMigrate                  = "failed to apply remote migrations"
)

// Log Messages
const (
	LogMsgMigrationsApplied = "Remote schema migrations applied"
	LogMsgRollbackFailed    = "Failed to rollback transaction"
)
