package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
)

// SQLiteRepository 是基于本地 SQLite 文件的 Repository（modernc.org/sqlite，无 CGo）。
// path 为 ":memory:" 时使用内存库，只保留一个连接。
type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

// OpenSQLite 打开数据库并执行迁移。
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// SQLite 只允许单写者；内存库每个连接是独立的库
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	r := &SQLiteRepository{db: db}
	if err := r.runMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

type migration struct {
	version int
	name    string
	stmts   []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "initial_schema",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS dishes (
				id         TEXT PRIMARY KEY,
				name       TEXT NOT NULL,
				category   TEXT NOT NULL DEFAULT '',
				price      REAL NOT NULL DEFAULT 0,
				calories   INTEGER NOT NULL DEFAULT 0,
				tags       TEXT NOT NULL DEFAULT '[]',
				popularity REAL
			)`,
			`CREATE TABLE IF NOT EXISTS logs_behavior (
				seq     INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id TEXT NOT NULL,
				dish_id TEXT NOT NULL,
				action  TEXT NOT NULL,
				ts      INTEGER NOT NULL
			)`,
		},
	},
	{
		version: 2,
		name:    "behavior_indexes",
		stmts: []string{
			`CREATE INDEX IF NOT EXISTS idx_behavior_user_ts ON logs_behavior (user_id, ts)`,
			`CREATE INDEX IF NOT EXISTS idx_behavior_action_ts ON logs_behavior (action, ts)`,
		},
	},
}

func (r *SQLiteRepository) runMigrations(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := r.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		log.Debug().Int("version", m.version).Str("name", m.name).Msg("sqlite: running migration")
		if err := r.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("migration %d failed: %w", m.version, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) applyMigration(ctx context.Context, m migration) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range m.stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.version, m.name); err != nil {
		return err
	}
	return tx.Commit()
}

// SchemaVersion 返回已应用的最高迁移版本。
func (r *SQLiteRepository) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := r.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&v)
	return v, err
}

func (r *SQLiteRepository) ListDishes(ctx context.Context) ([]core.Dish, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, category, price, calories, tags, popularity FROM dishes ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query dishes: %w", err)
	}
	defer rows.Close()

	var dishes []core.Dish
	for rows.Next() {
		var (
			d          core.Dish
			tags       string
			popularity sql.NullFloat64
		)
		if err := rows.Scan(&d.ID, &d.Name, &d.Category, &d.Price, &d.Calories, &tags, &popularity); err != nil {
			return nil, fmt.Errorf("scan dish: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &d.Tags); err != nil {
			return nil, fmt.Errorf("decode tags of %s: %w", d.ID, err)
		}
		if popularity.Valid {
			p := popularity.Float64
			d.Popularity = &p
		}
		dishes = append(dishes, d)
	}
	return dishes, rows.Err()
}

func (r *SQLiteRepository) AddDish(ctx context.Context, dish core.Dish) error {
	if dish.ID == "" {
		return core.NewInputError(core.ModuleStore, "dish id is empty")
	}
	tags := dish.Tags
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	var popularity sql.NullFloat64
	if dish.Popularity != nil {
		popularity = sql.NullFloat64{Float64: *dish.Popularity, Valid: true}
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO dishes (id, name, category, price, calories, tags, popularity)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, category = excluded.category, price = excluded.price,
			calories = excluded.calories, tags = excluded.tags, popularity = excluded.popularity`,
		dish.ID, dish.Name, dish.Category, dish.Price, dish.Calories, string(b), popularity)
	if err != nil {
		return fmt.Errorf("upsert dish %s: %w", dish.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) AppendOrder(ctx context.Context, event core.OrderEvent) error {
	if event.UserID == "" {
		return core.ErrEmptyUserID
	}
	if event.Action == "" {
		event.Action = core.ActionOrder
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO logs_behavior (user_id, dish_id, action, ts) VALUES (?, ?, ?, ?)",
		event.UserID, event.DishID, event.Action, event.Timestamp.UnixNano())
	if err != nil {
		return fmt.Errorf("insert behavior: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) RecentOrders(ctx context.Context, userID string, limit int) ([]core.OrderEvent, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, dish_id, action, ts FROM logs_behavior
		WHERE user_id = ? AND action = ?
		ORDER BY ts DESC, seq DESC
		LIMIT ?`, userID, core.ActionOrder, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent orders: %w", err)
	}
	return scanEvents(rows)
}

func (r *SQLiteRepository) AllPeerOrders(ctx context.Context) ([]core.OrderEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, dish_id, action, ts FROM logs_behavior
		WHERE action = ?
		ORDER BY ts, seq`, core.ActionOrder)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]core.OrderEvent, error) {
	defer rows.Close()
	var events []core.OrderEvent
	for rows.Next() {
		var (
			e  core.OrderEvent
			ts int64
		)
		if err := rows.Scan(&e.UserID, &e.DishID, &e.Action, &ts); err != nil {
			return nil, fmt.Errorf("scan behavior: %w", err)
		}
		e.Timestamp = time.Unix(0, ts).UTC()
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *SQLiteRepository) ResetHistory(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM logs_behavior WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("delete behavior of %s: %w", userID, err)
	}
	return nil
}

func (r *SQLiteRepository) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("close sqlite: %w", err)
	}
	return nil
}
