// Package mongostore implements the store interfaces on MongoDB.
//
// Each record type lives in its own collection and keeps the application's
// string IDs in _id, so documents look the same in every backend:
// papers, paperAnswers, universities, users, extractionJobs.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Shimizu-Technology/paperhub-api/internal/apperrors"
	"github.com/Shimizu-Technology/paperhub-api/internal/store"
)

const (
	papersCollection       = "papers"
	answersCollection      = "paperAnswers"
	universitiesCollection = "universities"
	usersCollection        = "users"
	jobsCollection         = "extractionJobs"
)

// Store is a MongoDB-backed store.Store.
type Store struct {
	client       *mongo.Client
	papers       *mongo.Collection
	answers      *mongo.Collection
	universities *mongo.Collection
	users        *mongo.Collection
	jobs         *mongo.Collection
	log          zerolog.Logger
}

var _ store.Store = (*Store)(nil)

// Connect dials MongoDB, verifies the connection and ensures indexes.
func Connect(ctx context.Context, uri, database string, log zerolog.Logger) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(database)
	s := &Store{
		client:       client,
		papers:       db.Collection(papersCollection),
		answers:      db.Collection(answersCollection),
		universities: db.Collection(universitiesCollection),
		users:        db.Collection(usersCollection),
		jobs:         db.Collection(jobsCollection),
		log:          log,
	}

	if err := s.ensureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := map[*mongo.Collection][]mongo.IndexModel{
		s.papers: {
			{Keys: bson.D{{Key: "ownerUid", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		s.answers: {
			{Keys: bson.D{{Key: "ownerUid", Value: 1}, {Key: "paperId", Value: 1}}},
			{Keys: bson.D{{Key: "ownerUid", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		s.users: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		s.jobs: {
			{Keys: bson.D{{Key: "ownerUid", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}

	for coll, idx := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll.Name(), err)
		}
	}
	s.log.Debug().Msg("MongoDB indexes ensured")
	return nil
}

// HealthCheck pings the primary.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// --- helpers ---

func newID() string {
	return uuid.NewString()
}

func now() time.Time {
	// BSON dates carry millisecond precision
	return time.Now().UTC().Truncate(time.Millisecond)
}

func byID(id string) bson.M {
	return bson.M{"_id": id}
}

func newestFirst(limit int) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}

// prefixRegex matches values starting with term, ignoring case.
func prefixRegex(term string) bson.M {
	return bson.M{"$regex": "^" + regexp.QuoteMeta(term), "$options": "i"}
}

func mapNotFound(kind string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperrors.NewNotFoundError(kind + " not found")
	}
	return fmt.Errorf("failed to load %s: %w", kind, err)
}

// findAll runs a query and decodes every document; never returns nil.
func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts *options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query on %s failed: %w", coll.Name(), err)
	}
	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode from %s failed: %w", coll.Name(), err)
	}
	return out, nil
}

// updateOne applies $set to one document and decodes the result into out.
func updateOne(ctx context.Context, coll *mongo.Collection, kind, id string, set bson.M, out any) error {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := coll.FindOneAndUpdate(ctx, byID(id), bson.M{"$set": set}, opts).Decode(out)
	if err != nil {
		return mapNotFound(kind, err)
	}
	return nil
}

// deleteOne removes one document, reporting not-found when nothing matched.
func deleteOne(ctx context.Context, coll *mongo.Collection, kind, id string) error {
	res, err := coll.DeleteOne(ctx, byID(id))
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}
	if res.DeletedCount == 0 {
		return apperrors.NewNotFoundError(kind + " not found")
	}
	return nil
}
