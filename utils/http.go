// utils/http.go
package utils

import (
	"net/http"
	"time"
)

// HTTPClient is the shared client for outbound service calls. The long
// timeout covers avatar image downloads.
var HTTPClient = &http.Client{
	Timeout: 300 * time.Second,
}
