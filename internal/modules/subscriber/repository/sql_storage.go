package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/jmoiron/sqlx"
	pushDomain "github.com/reshetovitsme/trend-digest-bot/internal/modules/push/domain"
	"github.com/reshetovitsme/trend-digest-bot/internal/modules/subscriber/domain"
	"github.com/reshetovitsme/trend-digest-bot/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// SQLStorage implements Repository on SQLite or PostgreSQL. List fields are
// stored as JSON text so both dialects share one row shape.
type SQLStorage struct {
	db     *sqlx.DB
	driver string
	closed atomic.Bool
}

type subscriberRow struct {
	ID            string    `db:"subscriber_id"`
	Keywords      string    `db:"keywords"`
	Sources       string    `db:"sources"`
	DeliveryTimes string    `db:"delivery_times"`
	Timezone      string    `db:"timezone"`
	ReportMode    string    `db:"report_mode"`
	Enabled       bool      `db:"enabled"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type pushLogRow struct {
	ID           string    `db:"id"`
	SubscriberID string    `db:"subscriber_id"`
	PushedAt     time.Time `db:"pushed_at"`
	ItemCount    int       `db:"item_count"`
	Status       string    `db:"status"`
	Error        string    `db:"error"`
}

type deliveredRow struct {
	SubscriberID string    `db:"subscriber_id"`
	Keyword      string    `db:"keyword"`
	Title        string    `db:"title"`
	URL          string    `db:"url"`
	SourceName   string    `db:"source_name"`
	IsNew        bool      `db:"is_new"`
	DeliveredAt  time.Time `db:"delivered_at"`
}

// NewSQLStorage opens dsn with driver ("sqlite" or "pgx") and applies
// pending migrations.
func NewSQLStorage(driver, dsn string) (*SQLStorage, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, oops.With("driver", driver, "context", "failed to open database").Wrap(err)
	}

	if driver == DriverSQLite {
		// one connection keeps ":memory:" databases alive and writes serialized
		db.SetMaxOpenConns(1)
		for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
			if _, err := db.Exec(pragma); err != nil {
				db.Close()
				return nil, oops.With("pragma", pragma, "context", "failed to configure sqlite").Wrap(err)
			}
		}
	}

	s := &SQLStorage{db: db, driver: driver}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, oops.With("driver", driver, "context", "failed to run migrations").Wrap(err)
	}

	return s, nil
}

func (s *SQLStorage) runMigrations() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return oops.With("context", "creating schema_version").Wrap(err)
	}

	var current int
	if err := s.db.Get(&current, `SELECT COALESCE(MAX(version), 0) FROM schema_version`); err != nil {
		return oops.With("context", "reading schema version").Wrap(err)
	}

	migrations := sqliteMigrations
	if s.driver == DriverPostgres {
		migrations = postgresMigrations
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := s.db.Beginx()
		if err != nil {
			return oops.With("version", m.version).Wrap(err)
		}
		for _, stmt := range m.statements {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return oops.With("version", m.version, "context", "applying migration").Wrap(err)
			}
		}
		if _, err := tx.Exec(s.db.Rebind(`INSERT INTO schema_version (version) VALUES (?)`), m.version); err != nil {
			tx.Rollback()
			return oops.With("version", m.version, "context", "recording migration").Wrap(err)
		}
		if err := tx.Commit(); err != nil {
			return oops.With("version", m.version).Wrap(err)
		}
	}

	return nil
}

func (s *SQLStorage) GetSubscriber(ctx context.Context, subscriberID string) (*domain.Subscriber, error) {
	if s.closed.Load() {
		return nil, errors.ErrStorageClosed
	}
	var row subscriberRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`SELECT * FROM subscribers WHERE subscriber_id = ?`), subscriberID)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.ErrSubscriberNotFound
		}
		return nil, oops.With("subscriber_id", subscriberID, "context", "failed to query subscriber").Wrap(err)
	}

	subscriber, err := row.toDomain()
	if err != nil {
		return nil, oops.With("subscriber_id", subscriberID, "context", "failed to decode subscriber").Wrap(err)
	}
	return subscriber, nil
}

func (s *SQLStorage) SaveSubscriber(ctx context.Context, subscriber *domain.Subscriber) error {
	if s.closed.Load() {
		return errors.ErrStorageClosed
	}
	row, err := newSubscriberRow(subscriber)
	if err != nil {
		return oops.With("subscriber_id", subscriber.ID, "context", "failed to encode subscriber").Wrap(err)
	}

	const query = `
		INSERT INTO subscribers (
			subscriber_id, keywords, sources, delivery_times,
			timezone, report_mode, enabled, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (subscriber_id) DO UPDATE SET
			keywords = excluded.keywords,
			sources = excluded.sources,
			delivery_times = excluded.delivery_times,
			timezone = excluded.timezone,
			report_mode = excluded.report_mode,
			enabled = excluded.enabled,
			updated_at = excluded.updated_at`

	_, err = s.db.ExecContext(ctx, s.db.Rebind(query),
		row.ID, row.Keywords, row.Sources, row.DeliveryTimes,
		row.Timezone, row.ReportMode, row.Enabled, row.CreatedAt, row.UpdatedAt,
	)
	if err != nil {
		return oops.With("subscriber_id", subscriber.ID, "context", "failed to upsert subscriber").Wrap(err)
	}
	return nil
}

func (s *SQLStorage) ListEnabled(ctx context.Context) ([]*domain.Subscriber, error) {
	if s.closed.Load() {
		return nil, errors.ErrStorageClosed
	}
	var rows []subscriberRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(`SELECT * FROM subscribers WHERE enabled = ? ORDER BY subscriber_id`), true); err != nil {
		return nil, oops.With("context", "failed to list enabled subscribers").Wrap(err)
	}

	return lo.FilterMap(rows, func(row subscriberRow, _ int) (*domain.Subscriber, bool) {
		subscriber, err := row.toDomain()
		return subscriber, err == nil
	}), nil
}

func (s *SQLStorage) AppendPushLog(ctx context.Context, entry *pushDomain.LogEntry) error {
	if s.closed.Load() {
		return errors.ErrStorageClosed
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx,
		s.db.Rebind(`INSERT INTO push_logs (id, subscriber_id, pushed_at, item_count, status, error) VALUES (?, ?, ?, ?, ?, ?)`),
		entry.ID, entry.SubscriberID, entry.PushedAt.UTC(), entry.ItemCount, entry.Status.String(), entry.Error,
	)
	if err != nil {
		return oops.With("subscriber_id", entry.SubscriberID, "context", "failed to insert push log").Wrap(err)
	}
	return nil
}

func (s *SQLStorage) RecentPushLogs(ctx context.Context, subscriberID string, limit int) ([]*pushDomain.LogEntry, error) {
	if s.closed.Load() {
		return nil, errors.ErrStorageClosed
	}
	var rows []pushLogRow
	err := s.db.SelectContext(ctx, &rows,
		s.db.Rebind(`SELECT * FROM push_logs WHERE subscriber_id = ? ORDER BY pushed_at DESC, id DESC LIMIT ?`),
		subscriberID, limit,
	)
	if err != nil {
		return nil, oops.With("subscriber_id", subscriberID, "context", "failed to query push logs").Wrap(err)
	}

	return lo.Map(rows, func(row pushLogRow, _ int) *pushDomain.LogEntry {
		return &pushDomain.LogEntry{
			ID:           row.ID,
			SubscriberID: row.SubscriberID,
			PushedAt:     row.PushedAt,
			ItemCount:    row.ItemCount,
			Status:       pushDomain.Status(row.Status),
			Error:        row.Error,
		}
	}), nil
}

func (s *SQLStorage) SaveDelivered(ctx context.Context, subscriberID string, items []pushDomain.DeliveredItem) error {
	if s.closed.Load() {
		return errors.ErrStorageClosed
	}
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return oops.With("subscriber_id", subscriberID).Wrap(err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, s.db.Rebind(`
		INSERT INTO delivered_items (subscriber_id, keyword, title, url, source_name, is_new, delivered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return oops.With("subscriber_id", subscriberID, "context", "failed to prepare archive insert").Wrap(err)
	}
	defer stmt.Close()

	for _, d := range items {
		if _, err := stmt.ExecContext(ctx, subscriberID, d.Keyword, d.Item.Title, d.Item.URL, d.Item.SourceName, d.Item.IsNew, d.DeliveredAt.UTC()); err != nil {
			return oops.With("subscriber_id", subscriberID, "context", "failed to archive item").Wrap(err)
		}
	}

	return tx.Commit()
}

func (s *SQLStorage) RecentDelivered(ctx context.Context, subscriberID string, limit int) ([]*pushDomain.DeliveredItem, error) {
	if s.closed.Load() {
		return nil, errors.ErrStorageClosed
	}
	var rows []deliveredRow
	err := s.db.SelectContext(ctx, &rows,
		s.db.Rebind(`
			SELECT subscriber_id, keyword, title, url, source_name, is_new, delivered_at
			FROM delivered_items WHERE subscriber_id = ?
			ORDER BY delivered_at DESC, id DESC LIMIT ?`),
		subscriberID, limit,
	)
	if err != nil {
		return nil, oops.With("subscriber_id", subscriberID, "context", "failed to query delivered items").Wrap(err)
	}

	return lo.Map(rows, func(row deliveredRow, _ int) *pushDomain.DeliveredItem {
		return &pushDomain.DeliveredItem{
			SubscriberID: row.SubscriberID,
			Keyword:      row.Keyword,
			Item: pushDomain.Item{
				Title:      row.Title,
				URL:        row.URL,
				SourceName: row.SourceName,
				IsNew:      row.IsNew,
			},
			DeliveredAt: row.DeliveredAt,
		}
	}), nil
}

func (s *SQLStorage) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}

func newSubscriberRow(s *domain.Subscriber) (*subscriberRow, error) {
	keywords, err := json.Marshal(lo.Ternary(s.Keywords == nil, []string{}, s.Keywords))
	if err != nil {
		return nil, err
	}
	sources, err := json.Marshal(lo.Ternary(s.Sources == nil, []string{}, s.Sources))
	if err != nil {
		return nil, err
	}
	times, err := json.Marshal(lo.Ternary(s.DeliveryTimes == nil, []string{}, s.DeliveryTimes))
	if err != nil {
		return nil, err
	}

	return &subscriberRow{
		ID:            s.ID,
		Keywords:      string(keywords),
		Sources:       string(sources),
		DeliveryTimes: string(times),
		Timezone:      s.Timezone,
		ReportMode:    s.ReportMode.String(),
		Enabled:       s.Enabled,
		CreatedAt:     s.CreatedAt.UTC(),
		UpdatedAt:     s.UpdatedAt.UTC(),
	}, nil
}

func (r subscriberRow) toDomain() (*domain.Subscriber, error) {
	s := &domain.Subscriber{
		ID:         r.ID,
		Timezone:   r.Timezone,
		ReportMode: domain.ReportMode(r.ReportMode),
		Enabled:    r.Enabled,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if err := json.Unmarshal([]byte(r.Keywords), &s.Keywords); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(r.Sources), &s.Sources); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(r.DeliveryTimes), &s.DeliveryTimes); err != nil {
		return nil, err
	}
	return s, nil
}
