// Package mysql implements the domain repositories as thin calls to MySQL
// stored procedures. Every operation is a single CALL with positional
// arguments; the schema and procedures live in the embedded migrations.
package mysql

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/msomdec/outreach/internal/domain"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// errDuplicateKey is the MySQL server error for a unique index violation.
const errDuplicateKey = 1062

// Options describe how to reach the MySQL server.
type Options struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	MaxOpenConns int
}

// DriverConfig builds the driver configuration. ClientFoundRows makes
// ROW_COUNT() count matched rows, not changed ones.
func (o Options) DriverConfig() *mysql.Config {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(o.Host, o.Port)
	cfg.User = o.User
	cfg.Passwd = o.Password
	cfg.DBName = o.Name
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.ClientFoundRows = true
	return cfg
}

// DB wraps a pooled MySQL connection and vends repositories bound to it.
type DB struct {
	SqlDB *sql.DB
}

// Open builds a connection pool. It does not contact the server; callers
// check reachability with Ping.
func Open(opts Options) (*DB, error) {
	connector, err := mysql.NewConnector(opts.DriverConfig())
	if err != nil {
		return nil, fmt.Errorf("mysql connector: %w", err)
	}

	db := sql.OpenDB(connector)
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
		db.SetMaxIdleConns(opts.MaxOpenConns)
	}
	db.SetConnMaxLifetime(5 * time.Minute)

	return &DB{SqlDB: db}, nil
}

// NewFromSQL wraps an existing handle.
func NewFromSQL(db *sql.DB) *DB {
	return &DB{SqlDB: db}
}

// Ping checks that the server answers.
func (db *DB) Ping(ctx context.Context) error {
	return db.SqlDB.PingContext(ctx)
}

// Close releases the pool.
func (db *DB) Close() error {
	return db.SqlDB.Close()
}

// Migrate applies the embedded schema and stored procedures.
func (db *DB) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("mysql"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db.SqlDB, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (db *DB) Users() domain.UserRepository       { return &UserRepository{db: db.SqlDB} }
func (db *DB) Contacts() domain.ContactRepository { return &ContactRepository{db: db.SqlDB} }
func (db *DB) Messages() domain.MessageRepository { return &MessageRepository{db: db.SqlDB} }
func (db *DB) AICalls() domain.AICallRepository   { return &AICallRepository{db: db.SqlDB} }

// call renders "CALL Proc(?, ?, ...)" for n positional arguments.
func call(proc string, n int) string {
	return "CALL " + proc + "(" + strings.TrimSuffix(strings.Repeat("?, ", n), ", ") + ")"
}

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == errDuplicateKey
}

// affected runs a procedure that reports ROW_COUNT() and maps zero rows to
// ErrNotFound.
func affected(ctx context.Context, db *sql.DB, proc string, args ...any) error {
	var n int64
	if err := db.QueryRowContext(ctx, call(proc, len(args)), args...).Scan(&n); err != nil {
		return fmt.Errorf("call %s: %w", proc, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
