package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const idTimestampLayout = "20060102150405"

// NewID formats an order id as ORD-<stamp>-<random>: a 14-digit UTC second
// stamp plus the first 8 hex chars of a fresh uuid, uppercased.
func NewID(now time.Time) string {
	suffix := strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format(idTimestampLayout), suffix)
}
