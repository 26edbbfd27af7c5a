package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/zeromicro/go-zero/core/logx"
	gocache "github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	cachekeys "github.com/socialsmoker223/quants-lab/internal/cache"
)

// Metric tables are created on demand, so table names are interpolated into
// SQL text. Only lowercase snake_case identifiers are accepted.
var tablePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ErrInvalidTable reports a table name that cannot be interpolated safely.
var ErrInvalidTable = errors.New("store: invalid table name")

const pgUndefinedTable = "42P01"

// Store persists metric time series into per-table Timescale hypertables and
// keeps watermark hints in Redis.
type Store struct {
	conn  sqlx.SqlConn
	cache gocache.Cache
	ttl   cachekeys.TTLSet
}

// Config enumerates dependencies required to persist metric data.
type Config struct {
	SQLConn sqlx.SqlConn
	Cache   gocache.Cache
	TTL     cachekeys.TTLSet
}

// New wires a metric store. Returns nil when the SQL connection is missing.
func New(cfg Config) *Store {
	if cfg.SQLConn == nil {
		return nil
	}
	return &Store{
		conn:  cfg.SQLConn,
		cache: cfg.Cache,
		ttl:   cfg.TTL,
	}
}

// ValidateTable rejects table names that are unsafe to interpolate.
func ValidateTable(table string) error {
	if !tablePattern.MatchString(table) {
		return fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	return nil
}

// LastTimestamp returns the newest persisted timestamp of a table. A missing
// or empty table yields (0, false, nil): the caller starts a backfill. The
// Redis hint is consulted first; a miss or stale entry only costs the
// MAX(timestamp) scan because inserts are idempotent.
func (s *Store) LastTimestamp(ctx context.Context, table string) (int64, bool, error) {
	if err := ValidateTable(table); err != nil {
		return 0, false, err
	}
	if ts, ok := s.cachedWatermark(ctx, table); ok {
		return ts, true, nil
	}
	var max sql.NullInt64
	query := fmt.Sprintf(`SELECT MAX(timestamp) FROM %s`, table)
	if err := s.conn.QueryRowCtx(ctx, &max, query); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable {
			return 0, false, nil
		}
		if errors.Is(err, sqlx.ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("store: last timestamp %s: %w", table, err)
	}
	if !max.Valid {
		return 0, false, nil
	}
	s.cacheWatermark(ctx, table, max.Int64)
	return max.Int64, true, nil
}

// cachedWatermark reads the Redis watermark hint. Any cache failure degrades
// to the SQL scan.
func (s *Store) cachedWatermark(ctx context.Context, table string) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	var ts int64
	key := cachekeys.WatermarkKey(table)
	if err := s.cache.GetCtx(ctx, key, &ts); err != nil {
		if !s.cache.IsNotFound(err) {
			logx.WithContext(ctx).Errorf("store: read watermark key=%s err=%v", key, err)
		}
		return 0, false
	}
	return ts, ts > 0
}

// PruneBefore deletes rows with timestamp older than cutoff and returns the
// number of rows removed.
func (s *Store) PruneBefore(ctx context.Context, table string, cutoff int64) (int64, error) {
	if err := ValidateTable(table); err != nil {
		return 0, err
	}
	stmt := fmt.Sprintf(`DELETE FROM %s WHERE timestamp < $1`, table)
	res, err := s.conn.ExecCtx(ctx, stmt, cutoff)
	if err != nil {
		return 0, fmt.Errorf("store: prune %s: %w", table, err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("store: prune %s: %w", table, err)
	}
	return removed, nil
}

func (s *Store) ensureTable(ctx context.Context, table, schema string) error {
	if err := ValidateTable(table); err != nil {
		return err
	}
	if _, err := s.conn.ExecCtx(ctx, fmt.Sprintf(schema, table)); err != nil {
		return fmt.Errorf("store: ensure %s: %w", table, err)
	}
	return nil
}

// cacheWatermark refreshes the Redis watermark hint after a batch insert.
// Failures are logged only; the DB remains the source of truth.
func (s *Store) cacheWatermark(ctx context.Context, table string, ts int64) {
	if s.cache == nil || ts <= 0 {
		return
	}
	ttl := cachekeys.WatermarkTTL(s.ttl)
	if ttl <= 0 {
		return
	}
	key := cachekeys.WatermarkKey(table)
	if err := s.cache.SetWithExpireCtx(ctx, key, ts, ttl); err != nil {
		logx.WithContext(ctx).Errorf("store: cache watermark key=%s err=%v", key, err)
	}
}
