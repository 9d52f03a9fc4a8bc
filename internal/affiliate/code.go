package affiliate

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// NewAffiliateCode returns a referral code of the form AFF followed by 8
// uppercase hex characters. Uniqueness is enforced by the profiles table;
// callers retry on collision.
func NewAffiliateCode() string {
	id := uuid.New()
	return "AFF" + strings.ToUpper(hex.EncodeToString(id[:]))[:8]
}
