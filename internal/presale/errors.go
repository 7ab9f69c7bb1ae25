package presale

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// errNoCoinMetadata signals a captured order whose metadata carries no
// usable coin amount; the purchase cannot be priced.
var errNoCoinMetadata = errors.New("captured order metadata carries no coin amount")

// errCaptureStatus builds the non-success capture status error.
func errCaptureStatus(got, want string) error {
	return fmt.Errorf("capture status %q is not the success status %q", got, want)
}

// ValidationError carries every violated rule, not just the first, so
// callers see all problems at once. Client error, HTTP 400-equivalent.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Reasons, "; ")
}

// LimitExceededError reports that the purchase would breach the daily
// cap. Capacity error; includes the committed same-day total and the cap.
type LimitExceededError struct {
	DailyTotal decimal.Decimal
	Limit      decimal.Decimal
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("daily purchase limit exceeded: %s of %s already committed today",
		e.DailyTotal, e.Limit)
}

// GatewayError wraps a payment adapter failure or a non-success capture
// status. Opaque upstream failure; never retried automatically.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway: %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// StorageError wraps a persistence failure. Fatal for the request.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
