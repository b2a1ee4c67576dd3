package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccountClaims is the payload embedded in every bearer token. The subject
// is the account id (not the username, so tokens survive renames) and the
// privilege level is a snapshot taken at issuance.
type AccountClaims struct {
	jwt.RegisteredClaims
	PrivilegeLevel int `json:"plv"`
}

// AccountID parses the subject into the repository's identifier shape.
func (c *AccountClaims) AccountID() (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(c.RegisteredClaims.Subject)
}

// CanReview reports whether the snapshot privilege clears the reviewer
// tier. Testers (tier 5) cannot review; admins (tier 6) can.
func (c *AccountClaims) CanReview() bool {
	return c.PrivilegeLevel > PrivilegeTester
}

// IsAtLeast reports whether the snapshot privilege meets the given tier.
func (c *AccountClaims) IsAtLeast(level int) bool {
	return c.PrivilegeLevel >= level
}

// Expires returns the absolute expiry timestamp.
func (c *AccountClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}
