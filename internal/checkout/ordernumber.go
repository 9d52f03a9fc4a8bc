package checkout

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// NewOrderNumber returns a 12-character uppercase hex order number. The
// orders table enforces uniqueness; at this length collisions are not a
// practical concern for a storefront's order volume.
func NewOrderNumber() string {
	id := uuid.New()
	return strings.ToUpper(hex.EncodeToString(id[:]))[:12]
}
