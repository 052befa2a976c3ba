package database

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/newrelic/go-agent/v3/integrations/nrmongo"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/deppfellow/portfolio-api/internal/config"
	loggerConfig "github.com/deppfellow/portfolio-api/internal/logger"
	"github.com/deppfellow/portfolio-api/internal/store"
)

type mongoBackend struct {
	client *mongo.Client
	db     *mongo.Database
}

func dialMongo(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (store.Backend, error) {
	dbName := cfg.Database.Name
	if cs, err := connstring.ParseAndValidate(cfg.Database.URI); err == nil && cs.Database != "" {
		dbName = cs.Database
	}

	opts := options.Client().
		ApplyURI(cfg.Database.URI).
		SetServerSelectionTimeout(cfg.Database.ServerSelectionTimeout).
		SetTimeout(cfg.Database.SocketTimeout).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	if loggerService.GetApplication() != nil {
		opts.SetMonitor(nrmongo.NewCommandMonitor(nil))
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	logger.Debug().Str("database", dbName).Msg("mongo client ready")

	return &mongoBackend{client: client, db: client.Database(dbName)}, nil
}

func (b *mongoBackend) Collection(name string) store.Collection {
	return &mongoCollection{coll: b.db.Collection(name)}
}

func (b *mongoBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx, readpref.Primary())
}

func (b *mongoBackend) Close(ctx context.Context) error {
	return b.client.Disconnect(ctx)
}

func (b *mongoBackend) Name() string { return "mongo" }

type mongoCollection struct {
	coll *mongo.Collection
}

// mongoFilter converts a store filter. ok is false when the filter can
// match nothing, which happens for unparsable identifiers.
func mongoFilter(filter store.Filter) (bson.M, bool) {
	var clauses []bson.M

	for _, m := range filter {
		if m.Field == store.IDField {
			id, ok := store.ObjectID(m.Value)
			if !ok {
				continue
			}
			clauses = append(clauses, bson.M{store.IDField: id})
			continue
		}
		clauses = append(clauses, bson.M{m.Field: m.Value})
	}

	switch {
	case len(filter) == 0:
		return bson.M{}, true
	case len(clauses) == 0:
		return nil, false
	case len(clauses) == 1:
		return clauses[0], true
	}

	alts := make(bson.A, 0, len(clauses))
	for _, c := range clauses {
		alts = append(alts, c)
	}
	return bson.M{"$or": alts}, true
}

func mongoSort(sorts []store.Sort) bson.D {
	d := make(bson.D, 0, len(sorts))
	for _, s := range sorts {
		dir := 1
		if s.Desc {
			dir = -1
		}
		d = append(d, bson.E{Key: s.Field, Value: dir})
	}
	return d
}

func mongoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %w", store.ErrDuplicate, err)
	}
	return err
}

func (c *mongoCollection) Find(ctx context.Context, filter store.Filter, sorts []store.Sort, out any) error {
	f, ok := mongoFilter(filter)
	if !ok {
		return store.DecodeAll(nil, out)
	}

	opts := options.Find()
	if len(sorts) > 0 {
		opts.SetSort(mongoSort(sorts))
	}

	cursor, err := c.coll.Find(ctx, f, opts)
	if err != nil {
		return mongoErr(err)
	}
	if err := cursor.All(ctx, out); err != nil {
		return mongoErr(err)
	}

	// cursor.All leaves a nil slice untouched on empty results.
	return ensureSlice(out)
}

func (c *mongoCollection) FindOne(ctx context.Context, filter store.Filter, out any) error {
	f, ok := mongoFilter(filter)
	if !ok {
		return store.ErrNotFound
	}
	return mongoErr(c.coll.FindOne(ctx, f).Decode(out))
}

func (c *mongoCollection) Insert(ctx context.Context, doc any) error {
	_, err := c.coll.InsertOne(ctx, doc)
	return mongoErr(err)
}

func (c *mongoCollection) Replace(ctx context.Context, filter store.Filter, doc any) error {
	f, ok := mongoFilter(filter)
	if !ok {
		return store.ErrNotFound
	}

	res, err := c.coll.ReplaceOne(ctx, f, doc)
	if err != nil {
		return mongoErr(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (c *mongoCollection) Upsert(ctx context.Context, filter store.Filter, doc any) error {
	f, ok := mongoFilter(filter)
	if !ok {
		return c.Insert(ctx, doc)
	}

	_, err := c.coll.ReplaceOne(ctx, f, doc, options.Replace().SetUpsert(true))
	return mongoErr(err)
}

func (c *mongoCollection) Delete(ctx context.Context, filter store.Filter) error {
	f, ok := mongoFilter(filter)
	if !ok {
		return store.ErrNotFound
	}

	res, err := c.coll.DeleteOne(ctx, f)
	if err != nil {
		return mongoErr(err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (c *mongoCollection) Count(ctx context.Context, filter store.Filter) (int64, error) {
	f, ok := mongoFilter(filter)
	if !ok {
		return 0, nil
	}
	n, err := c.coll.CountDocuments(ctx, f)
	return n, mongoErr(err)
}

func (c *mongoCollection) EnsureUnique(ctx context.Context, field string) error {
	_, err := c.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetUnique(true).SetSparse(true),
	})
	return mongoErr(err)
}

func ensureSlice(out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("find: out must be a pointer to a slice, got %T", out)
	}
	if rv.Elem().IsNil() {
		rv.Elem().Set(reflect.MakeSlice(rv.Elem().Type(), 0, 0))
	}
	return nil
}
