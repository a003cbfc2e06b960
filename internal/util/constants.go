package util

const (
	RequestIDKey    = "request_id"
	RequestIDHeader = "X-Request-ID"
)
