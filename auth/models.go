package auth

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the human-readable tag stored next to the privilege level.
type Role = string

const (
	// RoleStandard is a regular player account.
	RoleStandard Role = "user"
	// RoleTester may contribute game properties.
	RoleTester Role = "tester"
	// RoleAdmin may additionally review account applications.
	RoleAdmin Role = "admin"
)

// Privilege tiers. Higher values grant more authority.
const (
	PrivilegeStandard = 0
	PrivilegeTester   = 5
	PrivilegeAdmin    = 6
)

// PrivilegeForRole maps a role tag to its privilege tier.
func PrivilegeForRole(role Role) int {
	switch role {
	case RoleTester:
		return PrivilegeTester
	case RoleAdmin:
		return PrivilegeAdmin
	default:
		return PrivilegeStandard
	}
}

// AccountType pairs the privilege level with its role tag, stored as a
// sub-document on every record.
type AccountType struct {
	PrivilegeLevel int  `bson:"privilege_level" json:"privilege_level"`
	Role           Role `bson:"role" json:"role"`
}

// Account is the record shape shared by the three partitions. Pending
// variants carry ApplicationContent; active records created through the
// legacy sign-up path may omit Email and carry DisplayName instead.
type Account struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Username           string             `bson:"username" json:"username"`
	Email              string             `bson:"email,omitempty" json:"email,omitempty"`
	DisplayName        string             `bson:"display_name,omitempty" json:"display_name,omitempty"`
	PasswordHash       string             `bson:"password_hash" json:"-"`
	AccountType        AccountType        `bson:"account_type" json:"account_type"`
	ApplicationContent string             `bson:"application_content,omitempty" json:"-"`
	CreatedAt          time.Time          `bson:"created_at" json:"created_at"`
}

// PrivilegeLevel returns the stored tier.
func (a *Account) PrivilegeLevel() int {
	return a.AccountType.PrivilegeLevel
}

// Profile is the public projection of an account. It never carries the
// password hash or the application content.
type Profile struct {
	Username       string `json:"username"`
	Email          string `json:"email,omitempty"`
	DisplayName    string `json:"display_name,omitempty"`
	Role           Role   `json:"role"`
	PrivilegeLevel int    `json:"privilege_level"`
}

// Public builds the client-safe projection of the account.
func (a *Account) Public() *Profile {
	return &Profile{
		Username:       a.Username,
		Email:          a.Email,
		DisplayName:    a.DisplayName,
		Role:           a.AccountType.Role,
		PrivilegeLevel: a.AccountType.PrivilegeLevel,
	}
}

// Identity is the authoritative view of a token holder, re-read from the
// active partition rather than trusted from the token payload.
type Identity struct {
	ID             primitive.ObjectID `json:"id"`
	Username       string             `json:"username"`
	PrivilegeLevel int                `json:"privilege_level"`
}
