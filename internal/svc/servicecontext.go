package svc

import (
	"database/sql"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	"github.com/zeromicro/go-zero/core/logx"
	gocache "github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/core/stores/sqlx"
	"github.com/zeromicro/go-zero/core/syncx"

	cachekeys "github.com/socialsmoker223/quants-lab/internal/cache"
	"github.com/socialsmoker223/quants-lab/internal/config"
	"github.com/socialsmoker223/quants-lab/internal/store"
	"github.com/socialsmoker223/quants-lab/internal/tasks"
	"github.com/socialsmoker223/quants-lab/pkg/coinglass"
	"github.com/socialsmoker223/quants-lab/pkg/glassnode"
)

type ServiceContext struct {
	Config config.Config

	DBConn sqlx.SqlConn
	Cache  gocache.Cache
	TTL    cachekeys.TTLSet

	CoinGlass *coinglass.Client
	Glassnode *glassnode.Client

	Store *store.Store

	// Tasks is the downloader fleet built from the configured tasks file.
	Tasks []tasks.Entry
}

func NewServiceContext(c config.Config) *ServiceContext {
	svc := &ServiceContext{
		Config: c,
		TTL:    cachekeys.NewTTLSet(c.TTL),
	}

	if c.Postgres.DSN != "" {
		db, err := openPostgres(c.Postgres)
		if err != nil {
			logx.Must(err)
		}
		svc.DBConn = sqlx.NewSqlConnFromDB(db)
	}

	if c.Redis.Host != "" {
		rds := redis.MustNewRedis(c.Redis)
		svc.Cache = gocache.NewNode(rds, syncx.NewSingleFlight(), gocache.NewStat(cachekeys.Namespace), sql.ErrNoRows)
	}

	if c.Sources.Value != nil {
		svc.CoinGlass = newCoinGlass(c.Sources.Value.CoinGlass)
		svc.Glassnode = newGlassnode(c.Sources.Value.Glassnode)
	}

	svc.Store = store.New(store.Config{
		SQLConn: svc.DBConn,
		Cache:   svc.Cache,
		TTL:     svc.TTL,
	})

	if path := c.TasksPath(); path != "" {
		fleet, err := tasks.LoadFleet(path)
		if err != nil {
			logx.Must(err)
		}
		deps := tasks.Deps{
			CoinGlass: svc.CoinGlass,
			Glassnode: svc.Glassnode,
			PairDelay: time.Duration(c.PairDelayMs) * time.Millisecond,
		}
		// A typed nil store must not satisfy the interface.
		if svc.Store != nil {
			deps.Store = svc.Store
		}
		entries, err := tasks.BuildTasks(*fleet, deps)
		if err != nil {
			logx.Must(err)
		}
		svc.Tasks = entries
	}

	return svc
}

// openPostgres opens the pgx pool with the configured connection limits.
// sql.Open does not dial, so wiring stays lazy until the first query.
func openPostgres(pg config.PostgresConf) (*sql.DB, error) {
	db, err := sql.Open("pgx", pg.DSN)
	if err != nil {
		return nil, err
	}
	if pg.MaxOpen > 0 {
		db.SetMaxOpenConns(pg.MaxOpen)
	}
	if pg.MaxIdle > 0 {
		db.SetMaxIdleConns(pg.MaxIdle)
	}
	return db, nil
}

func newCoinGlass(src config.SourceConf) *coinglass.Client {
	if !src.Enabled() {
		return nil
	}
	opts := []coinglass.Option{
		coinglass.WithHTTPClient(&http.Client{Timeout: time.Duration(src.TimeoutSec) * time.Second}),
	}
	if src.BaseURL != "" {
		opts = append(opts, coinglass.WithBaseURL(src.BaseURL))
	}
	return coinglass.NewClient(src.APIKey, opts...)
}

func newGlassnode(src config.SourceConf) *glassnode.Client {
	if !src.Enabled() {
		return nil
	}
	opts := []glassnode.Option{
		glassnode.WithHTTPClient(&http.Client{Timeout: time.Duration(src.TimeoutSec) * time.Second}),
	}
	if src.BaseURL != "" {
		opts = append(opts, glassnode.WithBaseURL(src.BaseURL))
	}
	return glassnode.NewClient(src.APIKey, opts...)
}
