package properties

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names for the four property kinds.
const (
	CollectionAttributes    = "game_properties_attributes"
	CollectionSkills        = "game_properties_skills"
	CollectionAdvantages    = "game_properties_advantages"
	CollectionDisadvantages = "game_properties_disadvantages"
)

// Store performs keyed upsert and read against the property collections.
type Store struct {
	db *mongo.Database
}

// NewStore wraps the database handle.
func NewStore(db *mongo.Database) *Store {
	return &Store{db: db}
}

// Upsert inserts the document or replaces the one sharing its id.
func (s *Store) Upsert(ctx context.Context, collection, id string, doc any) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, doc, opts)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "property upsert failed").
			WithCode(goerrors.CodeInternal)
	}
	return nil
}

// Get returns the document with the given id, or nil when absent.
func (s *Store) Get(ctx context.Context, collection, id string) (bson.M, error) {
	var doc bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "property lookup failed").
			WithCode(goerrors.CodeInternal)
	}
	return doc, nil
}

// List returns every document in the collection.
func (s *Store) List(ctx context.Context, collection string) ([]bson.M, error) {
	cursor, err := s.db.Collection(collection).Find(ctx, bson.M{})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "property listing failed").
			WithCode(goerrors.CodeInternal)
	}
	defer cursor.Close(ctx)

	docs := []bson.M{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "property listing failed").
			WithCode(goerrors.CodeInternal)
	}
	return docs, nil
}
