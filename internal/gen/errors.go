package gen

import (
	"context"
	"errors"
	"fmt"
	"net"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// UpstreamError reports a non-success response from a generation provider.
// Status and Body are kept for diagnostics.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream returned status %d", e.Status)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.Status, e.Body)
}

// IsValidation reports whether err came from request validation, i.e. no
// upstream call was attempted.
func IsValidation(err error) bool {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return true
	}
	var vobj validation.ErrorObject
	return errors.As(err, &vobj)
}

// IsUpstream reports whether err carries an upstream provider status.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// IsTimeout reports whether err is timeout-shaped (deadline exceeded or a
// net error that timed out). The proxy handler maps these to 504.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
