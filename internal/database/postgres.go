package database

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"

	"github.com/deppfellow/portfolio-api/internal/config"
	loggerConfig "github.com/deppfellow/portfolio-api/internal/logger"
	"github.com/deppfellow/portfolio-api/internal/sqlerr"
	"github.com/deppfellow/portfolio-api/internal/store"
)

// The Postgres backend keeps every collection in one `documents` table.
// Each row holds the relaxed extended JSON of the bson-encoded document,
// so the stored shape matches the MongoDB one.

// multiTracer fans pgx query traces out to several tracers (New Relic and
// the local query logger).
type multiTracer struct {
	tracers []pgx.QueryTracer
}

func (mt *multiTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	for _, t := range mt.tracers {
		ctx = t.TraceQueryStart(ctx, conn, data)
	}
	return ctx
}

func (mt *multiTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	for _, t := range mt.tracers {
		t.TraceQueryEnd(ctx, conn, data)
	}
}

// PostgresDSN builds the connection string from configuration.
func PostgresDSN(cfg *config.Config) string {
	pg := cfg.Database.Postgres
	hostPort := net.JoinHostPort(pg.Host, strconv.Itoa(pg.Port))

	// URL-encode the password: special characters would break the DSN.
	encodedPassword := url.QueryEscape(pg.Password)

	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		pg.User,
		encodedPassword,
		hostPort,
		pg.Name,
		pg.SSLMode,
	)
}

func dialPostgres(ctx context.Context, cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (store.Backend, error) {
	pgxPoolConfig, err := pgxpool.ParseConfig(PostgresDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx pool config: %w", err)
	}

	pg := cfg.Database.Postgres
	pgxPoolConfig.MaxConns = int32(pg.MaxOpenConns)
	pgxPoolConfig.MinConns = int32(pg.MaxIdleConns)
	pgxPoolConfig.MaxConnLifetime = time.Duration(pg.ConnMaxLifetime) * time.Second
	pgxPoolConfig.MaxConnIdleTime = time.Duration(pg.ConnMaxIdleTime) * time.Second

	var tracers []pgx.QueryTracer
	if loggerService.GetApplication() != nil {
		tracers = append(tracers, nrpgx5.NewTracer())
	}

	// Local development also gets every query in the console.
	if cfg.Primary.Env == "local" {
		globalLevel := logger.GetLevel()
		tracers = append(tracers, &tracelog.TraceLog{
			Logger:   loggerConfig.NewPgxTraceLogger(loggerConfig.NewPgxLogger(globalLevel)),
			LogLevel: loggerConfig.GetPgxTraceLogLevel(globalLevel),
		})
	}

	switch len(tracers) {
	case 0:
	case 1:
		pgxPoolConfig.ConnConfig.Tracer = tracers[0]
	default:
		pgxPoolConfig.ConnConfig.Tracer = &multiTracer{tracers: tracers}
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxPoolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migratePool(ctx, pool, logger); err != nil {
		pool.Close()
		return nil, err
	}

	return &postgresBackend{pool: pool}, nil
}

type postgresBackend struct {
	pool *pgxpool.Pool
}

func (b *postgresBackend) Collection(name string) store.Collection {
	return &postgresCollection{pool: b.pool, name: name}
}

func (b *postgresBackend) Ping(ctx context.Context) error {
	return b.pool.Ping(ctx)
}

func (b *postgresBackend) Close(context.Context) error {
	b.pool.Close()
	return nil
}

func (b *postgresBackend) Name() string { return "postgres" }

type postgresCollection struct {
	pool *pgxpool.Pool
	name string
}

// where renders the filter as SQL. args starts with the collection name.
// ok is false when the filter can match nothing.
func (c *postgresCollection) where(filter store.Filter) (string, []any, bool) {
	args := []any{c.name}
	clause := "collection = $1"

	if len(filter) == 0 {
		return clause, args, true
	}

	var alts []string
	for _, m := range filter {
		if m.Field == store.IDField {
			id, ok := store.ObjectID(m.Value)
			if !ok {
				continue
			}
			args = append(args, id.Hex())
			alts = append(alts, fmt.Sprintf("id = $%d", len(args)))
			continue
		}

		args = append(args, m.Field, fmt.Sprint(m.Value))
		alts = append(alts, fmt.Sprintf("data->>$%d = $%d", len(args)-1, len(args)))
	}

	if len(alts) == 0 {
		return "", nil, false
	}
	return clause + " AND (" + strings.Join(alts, " OR ") + ")", args, true
}

func orderBy(sorts []store.Sort, args []any) (string, []any) {
	parts := make([]string, 0, len(sorts)+2)
	for _, s := range sorts {
		dir := "ASC"
		if s.Desc {
			dir = "DESC"
		}

		switch s.Field {
		case "createdAt":
			parts = append(parts, "created_at "+dir)
		case "updatedAt":
			parts = append(parts, "updated_at "+dir)
		default:
			args = append(args, s.Field)
			parts = append(parts, fmt.Sprintf("data->$%d %s", len(args), dir))
		}
	}
	parts = append(parts, "created_at ASC", "id ASC")
	return " ORDER BY " + strings.Join(parts, ", "), args
}

func (c *postgresCollection) Find(ctx context.Context, filter store.Filter, sorts []store.Sort, out any) error {
	where, args, ok := c.where(filter)
	if !ok {
		return store.DecodeAll(nil, out)
	}

	order, args := orderBy(sorts, args)
	rows, err := c.pool.Query(ctx, "SELECT data FROM documents WHERE "+where+order, args...)
	if err != nil {
		return sqlerr.Translate(err)
	}

	raws, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (bson.Raw, error) {
		var data []byte
		if err := row.Scan(&data); err != nil {
			return nil, err
		}
		return fromExtJSON(data)
	})
	if err != nil {
		return sqlerr.Translate(err)
	}

	return store.DecodeAll(raws, out)
}

func (c *postgresCollection) FindOne(ctx context.Context, filter store.Filter, out any) error {
	where, args, ok := c.where(filter)
	if !ok {
		return store.ErrNotFound
	}

	var data []byte
	err := c.pool.QueryRow(ctx, "SELECT data FROM documents WHERE "+where+" ORDER BY created_at ASC, id ASC LIMIT 1", args...).Scan(&data)
	if err != nil {
		return sqlerr.Translate(err)
	}

	raw, err := fromExtJSON(data)
	if err != nil {
		return err
	}
	return store.Decode(raw, out)
}

// row is a document prepared for the documents table.
type row struct {
	id        string
	data      []byte
	createdAt time.Time
	updatedAt time.Time
}

func toRow(doc any) (*row, error) {
	raw, err := store.Encode(doc)
	if err != nil {
		return nil, err
	}

	idVal, err := raw.LookupErr(store.IDField)
	if err != nil || idVal.Type != bsontype.ObjectID {
		return nil, fmt.Errorf("encode document: missing %s", store.IDField)
	}

	data, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	r := &row{id: idVal.ObjectID().Hex(), data: data, createdAt: time.Now().UTC()}
	if v, err := raw.LookupErr("createdAt"); err == nil && v.Type == bsontype.DateTime {
		r.createdAt = v.Time()
	}
	r.updatedAt = r.createdAt
	if v, err := raw.LookupErr("updatedAt"); err == nil && v.Type == bsontype.DateTime {
		r.updatedAt = v.Time()
	}
	return r, nil
}

func fromExtJSON(data []byte) (bson.Raw, error) {
	var raw bson.Raw
	if err := bson.UnmarshalExtJSON(data, false, &raw); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return raw, nil
}

func (c *postgresCollection) Insert(ctx context.Context, doc any) error {
	r, err := toRow(doc)
	if err != nil {
		return err
	}

	_, err = c.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, data, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		c.name, r.id, r.data, r.createdAt, r.updatedAt)
	return sqlerr.Translate(err)
}

func (c *postgresCollection) Replace(ctx context.Context, filter store.Filter, doc any) error {
	where, args, ok := c.where(filter)
	if !ok {
		return store.ErrNotFound
	}

	r, err := toRow(doc)
	if err != nil {
		return err
	}

	n := len(args)
	args = append(args, r.id, r.data, r.updatedAt)
	query := fmt.Sprintf(
		`UPDATE documents SET id = $%d, data = $%d, updated_at = $%d
		 WHERE collection = $1 AND id = (SELECT id FROM documents WHERE %s ORDER BY created_at ASC, id ASC LIMIT 1)`,
		n+1, n+2, n+3, where)

	tag, err := c.pool.Exec(ctx, query, args...)
	if err != nil {
		return sqlerr.Translate(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (c *postgresCollection) Upsert(ctx context.Context, filter store.Filter, doc any) error {
	err := c.Replace(ctx, filter, doc)
	if err == nil || !isNotFound(err) {
		return err
	}
	return c.Insert(ctx, doc)
}

func (c *postgresCollection) Delete(ctx context.Context, filter store.Filter) error {
	where, args, ok := c.where(filter)
	if !ok {
		return store.ErrNotFound
	}

	tag, err := c.pool.Exec(ctx,
		"DELETE FROM documents WHERE collection = $1 AND id = (SELECT id FROM documents WHERE "+where+" ORDER BY created_at ASC, id ASC LIMIT 1)",
		args...)
	if err != nil {
		return sqlerr.Translate(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (c *postgresCollection) Count(ctx context.Context, filter store.Filter) (int64, error) {
	where, args, ok := c.where(filter)
	if !ok {
		return 0, nil
	}

	var n int64
	err := c.pool.QueryRow(ctx, "SELECT count(*) FROM documents WHERE "+where, args...).Scan(&n)
	return n, sqlerr.Translate(err)
}

func (c *postgresCollection) EnsureUnique(ctx context.Context, field string) error {
	index := pgx.Identifier{fmt.Sprintf("documents_%s_%s_key", c.name, field)}.Sanitize()
	query := fmt.Sprintf(
		`CREATE UNIQUE INDEX IF NOT EXISTS %s ON documents ((data->>%s)) WHERE collection = %s AND data ? %s`,
		index, quoteLiteral(field), quoteLiteral(c.name), quoteLiteral(field))

	_, err := c.pool.Exec(ctx, query)
	return sqlerr.Translate(err)
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
