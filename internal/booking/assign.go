// internal/booking/assign.go
package booking

import (
	"encoding/base32"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// NewReference generates a display reference: "BK", a UTC timestamp, and six
// uppercase hex characters of random entropy. The random tail makes a
// collision within one second negligible; the store still detects the rare
// duplicate and the service retries with a fresh reference.
func NewReference(now time.Time) string {
	entropy := strings.ToUpper(uuid.NewString()[:6])
	return "BK" + now.UTC().Format("20060102150405") + entropy
}

// DeriveAccessCode produces the opaque unlock code handed to the rider. It is
// keyed on the vehicle's access-code template and the booking reference, so
// each booking gets a distinct code without storing extra secrets.
func DeriveAccessCode(template, reference string) string {
	sum := blake2b.Sum256([]byte(template + ":" + reference))
	return base32.StdEncoding.EncodeToString(sum[:])[:6]
}

// Cost computes the booking price in cents: hourly rate times exact
// fractional hours, rounded to the nearest cent. Duration is never rounded up
// to whole hours.
func Cost(hourlyRateCents int64, w TimeWindow) int64 {
	minutes := int64(w.DurationMinutes())
	return (hourlyRateCents*minutes + 30) / 60
}
