package auth

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoAccountStore implements AccountStore over a single pooled client
// owned by the process. Partitions map to collections in the configured
// database.
type MongoAccountStore struct {
	db *mongo.Database
}

var _ AccountStore = (*MongoAccountStore)(nil)

// NewMongoAccountStore wraps the database handle.
func NewMongoAccountStore(db *mongo.Database) *MongoAccountStore {
	return &MongoAccountStore{db: db}
}

func (s *MongoAccountStore) collection(p Partition) *mongo.Collection {
	return s.db.Collection(string(p))
}

func (s *MongoAccountStore) findOne(ctx context.Context, p Partition, filter bson.M) (*Account, error) {
	var account Account
	err := s.collection(p).FindOne(ctx, filter).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, wrapStoreError(err, "account lookup failed")
	}
	return &account, nil
}

// FindByUsername returns the record holding the username, or nil.
func (s *MongoAccountStore) FindByUsername(ctx context.Context, p Partition, username string) (*Account, error) {
	return s.findOne(ctx, p, bson.M{"username": username})
}

// FindByEmail returns the record holding the email, or nil.
func (s *MongoAccountStore) FindByEmail(ctx context.Context, p Partition, email string) (*Account, error) {
	return s.findOne(ctx, p, bson.M{"email": email})
}

// FindByID returns the record with the given id, or nil.
func (s *MongoAccountStore) FindByID(ctx context.Context, p Partition, id primitive.ObjectID) (*Account, error) {
	return s.findOne(ctx, p, bson.M{"_id": id})
}

// Insert stores the record and returns the identifier the store assigned.
func (s *MongoAccountStore) Insert(ctx context.Context, p Partition, account *Account) (primitive.ObjectID, error) {
	res, err := s.collection(p).InsertOne(ctx, account)
	if err != nil {
		return primitive.NilObjectID, wrapStoreError(err, "account insert failed")
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, wrapStoreError(errors.New("unexpected inserted id type"), "account insert failed")
	}

	return id, nil
}

// Delete removes the record. Deleting an absent record is an error so the
// caller can detect a half-finished move.
func (s *MongoAccountStore) Delete(ctx context.Context, p Partition, id primitive.ObjectID) error {
	res, err := s.collection(p).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrapStoreError(err, "account delete failed")
	}
	if res.DeletedCount == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

// UsernameAvailable scans all three partitions.
func (s *MongoAccountStore) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	return s.available(ctx, bson.M{"username": username})
}

// EmailAvailable scans all three partitions.
func (s *MongoAccountStore) EmailAvailable(ctx context.Context, email string) (bool, error) {
	return s.available(ctx, bson.M{"email": email})
}

func (s *MongoAccountStore) available(ctx context.Context, filter bson.M) (bool, error) {
	for _, p := range allPartitions {
		n, err := s.collection(p).CountDocuments(ctx, filter)
		if err != nil {
			return false, wrapStoreError(err, "availability check failed")
		}
		if n > 0 {
			return false, nil
		}
	}
	return true, nil
}

// Ping verifies the store is reachable.
func (s *MongoAccountStore) Ping(ctx context.Context) error {
	if err := s.db.Client().Ping(ctx, readpref.Primary()); err != nil {
		return wrapStoreError(err, "document store unreachable")
	}
	return nil
}
