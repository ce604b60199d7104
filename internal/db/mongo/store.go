// Package mongo implements db.DocumentStore on MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/kailas-cloud/gamesearch/internal/db"
)

// Compile-time check: Store implements db.DocumentStore.
var _ db.DocumentStore = (*Store)(nil)

// Config holds connection parameters for a MongoDB store.
type Config struct {
	URI        string
	User       string
	Password   string
	Database   string
	Collection string
}

// Store implements db.DocumentStore over a single collection.
type Store struct {
	client *mongo.Client
	coll   collection
}

// collection is the subset of *mongo.Collection the store uses.
type collection interface {
	Find(ctx context.Context, filter any, opts ...*options.FindOptions) (*mongo.Cursor, error)
	Aggregate(ctx context.Context, pipeline any, opts ...*options.AggregateOptions) (*mongo.Cursor, error)
	Distinct(ctx context.Context, field string, filter any, opts ...*options.DistinctOptions) ([]any, error)
}

// NewStore connects to MongoDB. The connection is lazy; use WaitForReady to
// block until the cluster answers.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, errors.New("uri is required")
	}
	if cfg.Database == "" || cfg.Collection == "" {
		return nil, errors.New("database and collection are required")
	}

	uri, err := BuildURI(cfg.URI, cfg.User, cfg.Password)
	if err != nil {
		return nil, err
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// BuildURI injects URL-escaped credentials into base. A base that already
// carries user info, or empty credentials, is returned unchanged.
func BuildURI(base, user, password string) (string, error) {
	if user == "" {
		return base, nil
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse mongo uri: %w", err)
	}
	if u.User != nil {
		return base, nil
	}
	u.User = url.UserPassword(user, password)
	return u.String(), nil
}

// Ping checks connectivity against the primary.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}
	return nil
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return db.WaitForReady(ctx, s, timeout)
}

// Find runs a filtered read with projection, skip and limit.
func (s *Store) Find(ctx context.Context, q db.FindQuery) ([]db.Document, error) {
	opts := options.Find()
	if len(q.Project) > 0 {
		opts.SetProjection(projection(q.Project))
	}
	if q.Skip > 0 {
		opts.SetSkip(q.Skip)
	}
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}

	filter := q.Filter
	if filter == nil {
		filter = map[string]any{}
	}

	cur, err := s.coll.Find(ctx, bson.M(filter), opts)
	if err != nil {
		return nil, &db.Error{Op: db.OpFind, Err: err}
	}
	return drain(ctx, cur, db.OpFind)
}

// Aggregate runs a pipeline as given.
func (s *Store) Aggregate(ctx context.Context, pipeline []db.Stage) ([]db.Document, error) {
	stages := make(mongo.Pipeline, 0, len(pipeline))
	for _, st := range pipeline {
		stages = append(stages, toD(st))
	}

	cur, err := s.coll.Aggregate(ctx, stages)
	if err != nil {
		return nil, &db.Error{Op: db.OpAggregate, Err: err}
	}
	return drain(ctx, cur, db.OpAggregate)
}

// Distinct returns the distinct values of field among documents matching filter.
func (s *Store) Distinct(ctx context.Context, field string, filter map[string]any) ([]any, error) {
	if filter == nil {
		filter = map[string]any{}
	}
	values, err := s.coll.Distinct(ctx, field, bson.M(filter))
	if err != nil {
		return nil, &db.Error{Op: db.OpDistinct, Err: err}
	}
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, normalize(v))
	}
	return out, nil
}

func drain(ctx context.Context, cur *mongo.Cursor, op string) ([]db.Document, error) {
	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, &db.Error{Op: op, Err: err}
	}
	docs := make([]db.Document, len(raw))
	for i, m := range raw {
		docs[i] = normalizeMap(m)
	}
	return docs, nil
}

func projection(p map[string]int) bson.D {
	keys := sortedKeys(p)
	d := make(bson.D, 0, len(keys))
	for _, k := range keys {
		d = append(d, bson.E{Key: k, Value: p[k]})
	}
	return d
}

// toD renders a stage with deterministic key order.
func toD(st db.Stage) bson.D {
	keys := sortedKeys(st)
	d := make(bson.D, 0, len(keys))
	for _, k := range keys {
		d = append(d, bson.E{Key: k, Value: st[k]})
	}
	return d
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
