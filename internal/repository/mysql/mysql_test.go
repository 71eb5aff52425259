package mysql_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/msomdec/outreach/internal/domain"
	"github.com/msomdec/outreach/internal/repository/mysql"
)

func newTestDB(t *testing.T) (*mysql.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual),
		sqlmock.MonitorPingsOption(true),
	)
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		sqlDB.Close()
	})
	return mysql.NewFromSQL(sqlDB), mock
}

var (
	userColumns    = []string{"id", "email", "name", "password_hash", "created_at"}
	contactColumns = []string{"id", "user_id", "name", "email", "linkedin", "created_at", "updated_at"}
	messageColumns = []string{"id", "user_id", "contact_id", "content", "tone", "objective", "generated_by", "created_at", "updated_at"}
)

func TestUserRepository_Create(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectExec("CALL CreateUser(?, ?, ?, ?)").
		WithArgs(sqlmock.AnyArg(), "alice@example.com", "hash", "Alice").
		WillReturnResult(sqlmock.NewResult(0, 1))

	u := &domain.User{Email: "Alice@Example.com", Name: "Alice", PasswordHash: "hash"}
	if err := db.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(u.ID) != 36 {
		t.Fatalf("expected a UUID id, got %q", u.ID)
	}
	if u.Email != "alice@example.com" {
		t.Fatalf("expected lowercased email, got %q", u.Email)
	}
}

func TestUserRepository_Create_Duplicate(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectExec("CALL CreateUser(?, ?, ?, ?)").
		WithArgs(sqlmock.AnyArg(), "dup@example.com", "hash", "").
		WillReturnError(&gomysql.MySQLError{Number: 1062, Message: "Duplicate entry 'dup@example.com' for key 'uq_users_email'"})

	err := db.Users().Create(context.Background(), &domain.User{Email: "dup@example.com", PasswordHash: "hash"})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestUserRepository_Create_OtherError(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectExec("CALL CreateUser(?, ?, ?, ?)").
		WillReturnError(errors.New("connection refused"))

	err := db.Users().Create(context.Background(), &domain.User{Email: "x@example.com", PasswordHash: "hash"})
	if err == nil || errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected wrapped driver error, got %v", err)
	}
}

func TestUserRepository_GetByEmail_LowercasesArgument(t *testing.T) {
	db, mock := newTestDB(t)
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("CALL FindUserByEmail(?)").
		WithArgs("a@b.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow("u-1", "a@b.com", "A", "hash", created))

	u, err := db.Users().GetByEmail(context.Background(), "A@B.COM")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if u.ID != "u-1" || !u.CreatedAt.Equal(created) {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectQuery("CALL FindUserById(?)").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := db.Users().GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestContactRepository_CreateAndList(t *testing.T) {
	db, mock := newTestDB(t)
	now := time.Now().UTC()

	mock.ExpectExec("CALL CreateContact(?, ?, ?, ?, ?)").
		WithArgs(sqlmock.AnyArg(), "u-1", "Bob", "bob@corp.io", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("CALL FindContactsByUser(?)").
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(contactColumns).
			AddRow("c-2", "u-1", "Carol", nil, "https://linkedin.com/in/carol", now, now).
			AddRow("c-1", "u-1", "Bob", "bob@corp.io", nil, now, now))

	contacts := db.Contacts()
	c := &domain.Contact{UserID: "u-1", Name: "Bob", Email: "BOB@corp.io"}
	if err := contacts.Create(context.Background(), c); err != nil {
		t.Fatalf("Create: %v", err)
	}

	list, err := contacts.ListByUser(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 contacts, got %d", len(list))
	}
	if list[0].Email != "" || list[0].LinkedIn == "" {
		t.Fatalf("unexpected null handling: %+v", list[0])
	}
}

func TestContactRepository_UpdateAndDelete_NotFound(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectQuery("CALL UpdateContact(?, ?, ?, ?)").
		WithArgs("c-9", "Name", nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"affected"}).AddRow(0))
	mock.ExpectQuery("CALL DeleteContact(?)").
		WithArgs("c-9").
		WillReturnRows(sqlmock.NewRows([]string{"affected"}).AddRow(0))

	contacts := db.Contacts()
	if err := contacts.Update(context.Background(), &domain.Contact{ID: "c-9", Name: "Name"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Update: expected ErrNotFound, got %v", err)
	}
	if err := contacts.Delete(context.Background(), "c-9"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Delete: expected ErrNotFound, got %v", err)
	}
}

func TestMessageRepository_CreateListStats(t *testing.T) {
	db, mock := newTestDB(t)
	now := time.Now().UTC()

	mock.ExpectExec("CALL CreateMessage(?, ?, ?, ?, ?, ?, ?)").
		WithArgs(sqlmock.AnyArg(), "u-1", nil, "Hello", "friendly", "demo", domain.GeneratedByAI).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("CALL GetMessagesByUser(?, ?, ?)").
		WithArgs("u-1", 20, 0).
		WillReturnRows(sqlmock.NewRows(messageColumns).
			AddRow("m-1", "u-1", nil, "Hello", "friendly", "demo", "ai", now, now))
	mock.ExpectQuery("CALL GetMessageStats(?)").
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"total", "ai_count", "template_count"}).AddRow(3, 2, 1))

	messages := db.Messages()
	m := &domain.Message{UserID: "u-1", Content: "Hello", Tone: "friendly", Objective: "demo", GeneratedBy: domain.GeneratedByAI}
	if err := messages.Create(context.Background(), m); err != nil {
		t.Fatalf("Create: %v", err)
	}

	list, err := messages.ListByUser(context.Background(), "u-1", 20, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 1 || list[0].ContactID != "" || list[0].GeneratedBy != domain.GeneratedByAI {
		t.Fatalf("unexpected list: %+v", list)
	}

	stats, err := messages.Stats(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 3 || stats.AI != 2 || stats.Template != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestMessageRepository_SearchAndDelete(t *testing.T) {
	db, mock := newTestDB(t)
	now := time.Now().UTC()

	mock.ExpectQuery("CALL SearchMessages(?, ?, ?)").
		WithArgs("u-1", "acme", 10).
		WillReturnRows(sqlmock.NewRows(messageColumns).
			AddRow("m-1", "u-1", "c-1", "Hi Acme", nil, nil, "template", now, now))
	mock.ExpectQuery("CALL DeleteMessage(?, ?)").
		WithArgs("m-1", "u-1").
		WillReturnRows(sqlmock.NewRows([]string{"affected"}).AddRow(1))

	messages := db.Messages()
	found, err := messages.Search(context.Background(), "u-1", "acme", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(found) != 1 || found[0].ContactID != "c-1" {
		t.Fatalf("unexpected search result: %+v", found)
	}

	if err := messages.Delete(context.Background(), "m-1", "u-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestMessageRepository_GetByID_DriverError(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectQuery("CALL GetMessageById(?)").
		WithArgs("m-1").
		WillReturnError(errors.New("lost connection"))

	_, err := db.Messages().GetByID(context.Background(), "m-1")
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected propagated driver error, got %v", err)
	}
}

func TestAICallRepository_Log(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectExec("CALL LogAICall(?, ?, ?, ?, ?, ?)").
		WithArgs(sqlmock.AnyArg(), "u-1", "m-1", domain.AICallSuccess, nil, 120).
		WillReturnResult(sqlmock.NewResult(0, 1))

	call := &domain.AICall{UserID: "u-1", MessageID: "m-1", Status: domain.AICallSuccess, TokensUsed: 120}
	if err := db.AICalls().Log(context.Background(), call); err != nil {
		t.Fatalf("Log: %v", err)
	}
	if call.ID == "" {
		t.Fatal("expected ID to be assigned")
	}
}

func TestDB_Ping(t *testing.T) {
	db, mock := newTestDB(t)

	mock.ExpectPing().WillReturnError(errors.New("dial tcp: connection refused"))

	if err := db.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error")
	}
}

func TestOptions_DriverConfig(t *testing.T) {
	cfg := mysql.Options{Host: "db", Port: "3306", User: "app", Password: "pw", Name: "outreach"}.DriverConfig()

	if !cfg.ClientFoundRows {
		t.Fatal("ClientFoundRows must be set so unchanged updates still report a matched row")
	}
	if !cfg.ParseTime || cfg.Loc != time.UTC {
		t.Fatal("expected parseTime with UTC location")
	}
	if cfg.Addr != "db:3306" || cfg.DBName != "outreach" {
		t.Fatalf("unexpected address or database: %s %s", cfg.Addr, cfg.DBName)
	}
	if dsn := cfg.FormatDSN(); !strings.Contains(dsn, "clientFoundRows=true") {
		t.Fatalf("expected clientFoundRows in DSN, got %s", dsn)
	}
}
