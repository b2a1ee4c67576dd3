package auth

import (
	"context"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// DefaultTokenTTL is the token lifetime used when none is configured.
const DefaultTokenTTL = 120 * time.Minute

// secretsCollection holds the signing key and the legacy admission key.
const secretsCollection = "secrets"

// Secrets is the immutable configuration snapshot taken at process start.
// It is constructed once and passed to the token service and the lifecycle
// controller; nothing mutates it afterwards.
type Secrets struct {
	signingKey   []byte
	adminKeyHash string
	tokenTTL     time.Duration
}

// NewSecrets builds a Secrets value. The signing key is mandatory.
func NewSecrets(signingKey []byte, adminKeyHash string, tokenTTL time.Duration) (*Secrets, error) {
	if len(signingKey) == 0 {
		return nil, goerrors.New("signing key must not be empty", goerrors.CategoryInternal).
			WithCode(goerrors.CodeInternal)
	}

	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}

	return &Secrets{
		signingKey:   signingKey,
		adminKeyHash: adminKeyHash,
		tokenTTL:     tokenTTL,
	}, nil
}

// SigningKey returns the HMAC key used to sign and verify tokens.
func (s *Secrets) SigningKey() []byte {
	return s.signingKey
}

// SigningMethod names the only supported algorithm.
func (s *Secrets) SigningMethod() string {
	return "HS256"
}

// TokenTTL is the lifetime of issued tokens.
func (s *Secrets) TokenTTL() time.Duration {
	return s.tokenTTL
}

// AdminAdmissionKeyHash is the bcrypt hash of the legacy sign-up admission
// key. Empty when no key is provisioned, which disables elevation.
func (s *Secrets) AdminAdmissionKeyHash() string {
	return s.adminKeyHash
}

// LoadSecrets reads the signing key and the admission key from the secrets
// collection. A missing signing key is fatal; the caller must not start the
// process without one. A missing admission key only disables the legacy
// elevated sign-up path.
func LoadSecrets(ctx context.Context, db *mongo.Database, tokenTTL time.Duration) (*Secrets, error) {
	col := db.Collection(secretsCollection)

	var keyDoc struct {
		Key string `bson:"jwt_encryption_key"`
	}
	err := col.FindOne(ctx, bson.M{"jwt_encryption_key": bson.M{"$exists": true}}).Decode(&keyDoc)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "signing key not provisioned in secrets collection").
			WithCode(goerrors.CodeInternal)
	}

	var adminDoc struct {
		Key string `bson:"admin_account_creation_key"`
	}
	err = col.FindOne(ctx, bson.M{"admin_account_creation_key": bson.M{"$exists": true}}).Decode(&adminDoc)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read admission key").
			WithCode(goerrors.CodeInternal)
	}

	return NewSecrets([]byte(keyDoc.Key), adminDoc.Key, tokenTTL)
}
