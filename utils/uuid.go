package utils

import (
	"github.com/google/uuid"
)

// NewRequestID returns a random UUID string. RequestIDMiddleware assigns it to
// requests that arrive without an X-Request-ID header, and request logs carry it.
func NewRequestID() string {
	return uuid.New().String()
}
