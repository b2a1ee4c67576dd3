package auth

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Partition names one of the three collections sharing the account
// keyspace.
type Partition string

const (
	// PartitionPendingTesters holds unreviewed tester applications.
	PartitionPendingTesters Partition = "pending_testers"
	// PartitionPendingAdmins holds unreviewed admin applications.
	PartitionPendingAdmins Partition = "pending_admins"
	// PartitionActive holds approved, login-capable accounts.
	PartitionActive Partition = "users"
)

// allPartitions is the scan order for cross-partition uniqueness checks.
var allPartitions = []Partition{PartitionActive, PartitionPendingTesters, PartitionPendingAdmins}

// PendingPartitionFor returns the pending partition matching the role.
func PendingPartitionFor(role Role) Partition {
	if role == RoleAdmin {
		return PartitionPendingAdmins
	}
	return PartitionPendingTesters
}

// AccountStore abstracts the document store holding the three account
// partitions. Find operations return (nil, nil) when no record matches;
// errors mean the store itself failed. Uniqueness checks scan every
// partition and are not protected by a lock: two concurrent inserts of the
// same username can both pass the check. That window is a documented
// limitation of the baseline design.
type AccountStore interface {
	FindByUsername(ctx context.Context, p Partition, username string) (*Account, error)
	FindByEmail(ctx context.Context, p Partition, email string) (*Account, error)
	FindByID(ctx context.Context, p Partition, id primitive.ObjectID) (*Account, error)
	Insert(ctx context.Context, p Partition, account *Account) (primitive.ObjectID, error)
	Delete(ctx context.Context, p Partition, id primitive.ObjectID) error

	// UsernameAvailable reports false if any partition holds the username.
	UsernameAvailable(ctx context.Context, username string) (bool, error)
	// EmailAvailable reports false if any partition holds the email.
	EmailAvailable(ctx context.Context, email string) (bool, error)

	// Ping is the named health diagnostic, run at startup and from the
	// health endpoint instead of implicitly inside every read.
	Ping(ctx context.Context) error
}
