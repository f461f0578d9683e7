package storage

import (
	"context"

	"autoru-seeder/internal/storage/zapadapter"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
)

// Session is the set of operations available inside one transactional unit of work
type Session interface {
	InsertMakes(ctx context.Context, makes []Make) ([]int64, error)
	InsertUsers(ctx context.Context, users []User) ([]int64, error)
	InsertUserAddresses(ctx context.Context, addresses []UserAddress) ([]int64, error)
	InsertAutos(ctx context.Context, autos []Auto) ([]int64, error)
	InsertAds(ctx context.Context, ads []Ad) ([]int64, error)
	InsertAdInfos(ctx context.Context, infos []AdInfo) ([]int64, error)
	InsertReviews(ctx context.Context, reviews []Review) ([]int64, error)
	InsertMessages(ctx context.Context, messages []Message) ([]int64, error)

	// InsertUserChats stores membership edges silently dropping already stored pairs
	// and returns the number of persisted rows
	InsertUserChats(ctx context.Context, edges []UserChat) (int64, error)

	// CreateChat inserts an identity-only chat and returns its id
	CreateChat(ctx context.Context) (int64, error)

	// AutoYears returns model year of every stored vehicle keyed by vehicle id
	AutoYears(ctx context.Context) (map[int64]int, error)

	// ChatIDs returns distinct ids of chats having at least one member
	ChatIDs(ctx context.Context) ([]int64, error)

	// ChatRoster returns ids of users belonging to the chat
	ChatRoster(ctx context.Context, chat int64) ([]int64, error)
}

// Store defines fields used in db interaction processes
type Store struct {
	logger *zap.SugaredLogger
	db     *pgxpool.Pool
}

// NewStore sets provided zap.Logger via zapadapter to pgxpool.Pool limited to a single connection
// and returns instance of Store struct
func NewStore(ctx context.Context, logger *zap.SugaredLogger, cfg Config, opts ...Option) (*Store, error) {
	config, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, err
	}
	config.MaxConns = 1
	config.ConnConfig.Logger = zapadapter.NewLogger(logger.Desugar())
	config.ConnConfig.LogLevel = pgx.LogLevelWarn

	for _, opt := range opts {
		opt.apply(config)
	}

	pool, err := pgxpool.ConnectConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	return &Store{
		logger: logger,
		db:     pool,
	}, nil
}

// Close releases the underlying connection
func (s *Store) Close() {
	s.db.Close()
}

// InTx runs fn inside a transaction named after the pipeline stage.
// The transaction is committed when fn succeeds and rolled back otherwise.
func (s *Store) InTx(ctx context.Context, stage string, fn func(context.Context, Session) error) error {
	ctx = zapadapter.NewContextWithStage(ctx, stage)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	// error handling can be omitted for rollback according docs
	// see https://pkg.go.dev/github.com/jackc/pgx/v4?tab=doc#hdr-Transactions or any source comment on Rollback
	defer tx.Rollback(context.Background())

	session := &txSession{
		logger: s.logger.With("stage", stage),
		tx:     tx,
	}
	if err := fn(ctx, session); err != nil {
		s.logger.Debugf("Rolling back stage %s: %v", stage, err)
		return err
	}

	return tx.Commit(ctx)
}

// txSession implements Session on top of a single pgx.Tx
type txSession struct {
	logger *zap.SugaredLogger
	tx     pgx.Tx
}

// CreateChat inserts chat record with default values and returns its id
func (s *txSession) CreateChat(ctx context.Context) (int64, error) {
	var id int64
	sql := "insert into chat default values returning chat_id"
	if err := s.tx.QueryRow(ctx, sql).Scan(&id); err != nil {
		return 0, mapError(err)
	}

	s.logger.Debugf("Created chat with id %d", id)

	return id, nil
}

func (s *txSession) AutoYears(ctx context.Context) (map[int64]int, error) {
	rows, err := s.tx.Query(ctx, "select auto_id, year from auto")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	years := make(map[int64]int)
	for rows.Next() {
		var (
			id   int64
			year int32
		)
		if err := rows.Scan(&id, &year); err != nil {
			return nil, err
		}
		years[id] = int(year)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	s.logger.Debugf("Retrieved years of %d autos", len(years))

	return years, nil
}

func (s *txSession) ChatIDs(ctx context.Context) ([]int64, error) {
	return s.queryIDs(ctx, "select distinct chat_id from userchat order by chat_id")
}

func (s *txSession) ChatRoster(ctx context.Context, chat int64) ([]int64, error) {
	return s.queryIDs(ctx, "select user_id from userchat where chat_id = $1", chat)
}

// queryIDs collects the single bigint column returned by sql
func (s *txSession) queryIDs(ctx context.Context, sql string, args ...interface{}) ([]int64, error) {
	rows, err := s.tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return ids, nil
}
