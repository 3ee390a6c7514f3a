package pkg

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewTrackingID generates the merchant-chosen correlation key for a checkout,
// e.g. TRK-9F3A21BC. Uniqueness is enforced by the transactions table.
func NewTrackingID() string {
	head := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("TRK-%s", strings.ToUpper(head))
}
