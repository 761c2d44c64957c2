package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/exobase-inc/exo-api/internal/domain"
)

// Store is the thin document persistence façade: insert, find and
// whole-document replace. Every failure is surfaced as a
// domain.StoreError; nothing is retried here.
type Store struct {
	db *DB
}

// NewStore creates a store over a connected DB.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// InsertOne writes a new document.
func (s *Store) InsertOne(ctx context.Context, collection string, doc bson.M) error {
	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return &domain.StoreError{Op: fmt.Sprintf("insertOne %s", collection), Err: err}
	}
	return nil
}

// FindOne returns the first document matching filter, or nil when no
// document matches.
func (s *Store) FindOne(ctx context.Context, collection string, filter bson.M) (bson.M, error) {
	var doc bson.M
	err := s.db.Collection(collection).FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, &domain.StoreError{Op: fmt.Sprintf("findOne %s", collection), Err: err}
	}
	return doc, nil
}

// Find returns all documents matching filter.
func (s *Store) Find(ctx context.Context, collection string, filter bson.M, opts ...*options.FindOptions) ([]bson.M, error) {
	cursor, err := s.db.Collection(collection).Find(ctx, filter, opts...)
	if err != nil {
		return nil, &domain.StoreError{Op: fmt.Sprintf("find %s", collection), Err: err}
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, &domain.StoreError{Op: fmt.Sprintf("find %s", collection), Err: err}
	}
	return docs, nil
}

// ReplaceOne swaps the document matching filter for doc and returns
// how many documents matched. Zero matches is not an error at this
// layer; callers decide whether that means a missing document or a
// lost revision race.
func (s *Store) ReplaceOne(ctx context.Context, collection string, filter bson.M, doc bson.M) (int64, error) {
	res, err := s.db.Collection(collection).ReplaceOne(ctx, filter, doc)
	if err != nil {
		return 0, &domain.StoreError{Op: fmt.Sprintf("replaceOne %s", collection), Err: err}
	}
	return res.MatchedCount, nil
}
