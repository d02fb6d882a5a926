package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PostgresStore persists documents in a single JSONB-backed table and fans
// out change notifications over a Redis channel per collection. Each write
// publishes after commit; each subscription re-queries on notification and
// delivers the full result set, so snapshots are always authoritative.
type PostgresStore struct {
	pool   *pgxpool.Pool
	rdb    *redis.Client
	logger *zap.Logger
}

// NewPostgresStore builds a store over an established pool and redis client.
func NewPostgresStore(pool *pgxpool.Pool, rdb *redis.Client, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{pool: pool, rdb: rdb, logger: logger}
}

func changeChannel(collection string) string {
	return "directory:changes:" + collection
}

// FindOne fetches a document by id, or ErrNoDocument.
func (s *PostgresStore) FindOne(ctx context.Context, collection, id string) (*Document, error) {
	const query = `
        SELECT id, fields, created_at, updated_at
        FROM documents WHERE collection=$1 AND id=$2`

	doc, err := scanDocument(s.pool.QueryRow(ctx, query, collection, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoDocument
		}
		return nil, err
	}
	return doc, nil
}

// FindMany runs a filtered, ordered query. Ordering always appends the id as
// a tie-break so equal-timestamp documents have a stable relative order.
func (s *PostgresStore) FindMany(ctx context.Context, collection string, filters []Filter, order OrderBy) ([]Document, error) {
	query, args, err := buildSelect(collection, filters, order)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// Subscribe opens a live query. The initial snapshot and every subsequent
// one are delivered on a dedicated goroutine, in change order. A terminal
// failure is surfaced once through onError and the subscription stops.
func (s *PostgresStore) Subscribe(ctx context.Context, collection string, filters []Filter, order OrderBy, onSnapshot SnapshotFunc, onError ErrorFunc) (UnsubscribeFunc, error) {
	if s.rdb == nil {
		return nil, errors.New("directory: change feed requires redis")
	}

	subCtx, cancel := context.WithCancel(ctx)
	pubsub := s.rdb.Subscribe(subCtx, changeChannel(collection))

	go s.pump(subCtx, pubsub, collection, filters, order, onSnapshot, onError)

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			_ = pubsub.Close()
		})
	}, nil
}

func (s *PostgresStore) pump(ctx context.Context, pubsub *redis.PubSub, collection string, filters []Filter, order OrderBy, onSnapshot SnapshotFunc, onError ErrorFunc) {
	deliver := func() error {
		docs, err := s.FindMany(ctx, collection, filters, order)
		if err != nil {
			return err
		}
		onSnapshot(docs)
		return nil
	}

	if err := deliver(); err != nil {
		if ctx.Err() == nil {
			onError(err)
		}
		return
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				if ctx.Err() == nil {
					onError(errors.New("directory: change feed closed"))
				}
				return
			}
			if err := deliver(); err != nil {
				if ctx.Err() == nil {
					onError(err)
				}
				return
			}
		}
	}
}

// Insert stores a new document with a generated id and server timestamp.
func (s *PostgresStore) Insert(ctx context.Context, collection string, fields map[string]any) (string, error) {
	payload, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	const query = `
        INSERT INTO documents (collection, id, fields)
        VALUES ($1, $2, $3)`

	if _, err := s.pool.Exec(ctx, query, collection, id, payload); err != nil {
		return "", err
	}
	s.publishChange(ctx, collection, id)
	return id, nil
}

// Update merges the given fields into an existing document.
func (s *PostgresStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	payload, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	const query = `
        UPDATE documents SET fields = fields || $1::jsonb, updated_at = NOW()
        WHERE collection=$2 AND id=$3`

	cmd, err := s.pool.Exec(ctx, query, payload, collection, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNoDocument
	}
	s.publishChange(ctx, collection, id)
	return nil
}

// Remove permanently deletes a document.
func (s *PostgresStore) Remove(ctx context.Context, collection, id string) error {
	const query = `DELETE FROM documents WHERE collection=$1 AND id=$2`

	cmd, err := s.pool.Exec(ctx, query, collection, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNoDocument
	}
	s.publishChange(ctx, collection, id)
	return nil
}

func (s *PostgresStore) publishChange(ctx context.Context, collection, id string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Publish(ctx, changeChannel(collection), id).Err(); err != nil {
		s.logger.Warn("failed to publish directory change",
			zap.String("collection", collection),
			zap.Error(err))
	}
}

func scanDocument(row pgx.Row) (*Document, error) {
	var doc Document
	var payload []byte
	if err := row.Scan(&doc.ID, &payload, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &doc.Fields); err != nil {
		return nil, err
	}
	return &doc, nil
}

// buildSelect renders filters and ordering into SQL. Field predicates run
// server-side against the JSONB column; createdAt/updatedAt map to the
// dedicated timestamp columns.
func buildSelect(collection string, filters []Filter, order OrderBy) (string, []any, error) {
	query := `SELECT id, fields, created_at, updated_at FROM documents WHERE collection=$1`
	args := []any{collection}

	for _, f := range filters {
		switch f.Op {
		case OpEqual:
			args = append(args, f.Field, textValue(f.Value))
			query += fmt.Sprintf(" AND fields->>$%d = $%d", len(args)-1, len(args))
		case OpIn:
			args = append(args, f.Field, f.Values)
			query += fmt.Sprintf(" AND fields->>$%d = ANY($%d)", len(args)-1, len(args))
		case OpGte:
			if f.Field != "createdAt" {
				return "", nil, fmt.Errorf("directory: %q predicate only supported on createdAt", OpGte)
			}
			args = append(args, f.Value)
			query += fmt.Sprintf(" AND created_at >= $%d", len(args))
		default:
			return "", nil, fmt.Errorf("directory: unsupported filter op %q", f.Op)
		}
	}

	query += " ORDER BY " + orderColumn(order.Field)
	if order.Desc {
		query += " DESC"
	}
	query += ", id ASC"
	return query, args, nil
}

func orderColumn(field string) string {
	switch field {
	case "", "createdAt":
		return "created_at"
	case "updatedAt":
		return "updated_at"
	default:
		return fmt.Sprintf("(fields->>'%s')", field)
	}
}

func textValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
