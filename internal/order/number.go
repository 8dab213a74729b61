package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewNumber returns a human readable order number, VNB-YYYYMMDD-XXXXXXXXXX.
// Uniqueness is enforced by the order_number unique index.
func NewNumber(at time.Time) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "VNB-" + at.UTC().Format("20060102") + "-" + strings.ToUpper(hex[:10])
}
