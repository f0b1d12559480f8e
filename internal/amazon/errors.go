package amazon

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrAuthentication marks credentials that the token endpoint rejected.
// Fatal for the affected account's run only.
var ErrAuthentication = errors.New("ads api authentication failed")

// APIError is a non-2xx response from the ads API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ads api: status %d: %s", e.StatusCode, e.Message)
}

// IsRateLimit reports whether the response carried a rate-limit signal.
func (e *APIError) IsRateLimit() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsRateLimited reports whether err carries a rate-limit signal anywhere
// in its chain. Only such errors are worth retrying with backoff.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsRateLimit()
}

// IsAuthFailure reports whether err means the account's credentials are bad.
func IsAuthFailure(err error) bool {
	if errors.Is(err, ErrAuthentication) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		(apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden)
}
