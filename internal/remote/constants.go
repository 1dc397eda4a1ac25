package remote

import "time"

// Routes on the backend gateway
const (
	restPrefix        = "/rest/v1/"
	completeSaleRoute = "/functions/v1/complete-sale"
)

// Headers
const (
	headerAPIKey    = "apikey"
	headerAuth      = "Authorization"
	headerUserToken = "X-User-Token"
	headerPrefer    = "Prefer"
	headerContent   = "Content-Type"

	preferRepresentation = "return=representation"
	contentTypeJSON      = "application/json"
)

// DefaultTimeout bounds one HTTP round trip
const DefaultTimeout = 15 * time.Second

// Log messages
const (
	LogMsgRequestFailed = "Remote request failed"
	LogMsgNoSession     = "No user session, using gateway key"
)

// Error messages
const (
	ErrMsgEncodeBody     = "failed to encode request body"
	ErrMsgBuildRequest   = "failed to build request"
	ErrMsgDecodeResponse = "failed to decode response"
	ErrMsgUnexpected     = "unexpected status"
)
