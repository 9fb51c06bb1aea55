package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JaimeStill/intake/pkg/repository"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("duplicate")
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func scanName(s repository.Scanner) (string, error) {
	var name string
	err := s.Scan(&name)
	return name, err
}

func TestMapError(t *testing.T) {
	other := errors.New("some other error")
	fk := &pgconn.PgError{Code: "23503"}

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, errNotFound},
		{"wrapped no rows", fmt.Errorf("find: %w", sql.ErrNoRows), errNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, errDuplicate},
		{"wrapped unique violation", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), errDuplicate},
		{"foreign key passes through", fk, fk},
		{"other passes through", other, other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repository.MapError(tt.in, errNotFound, errDuplicate)
			if got != tt.want {
				t.Errorf("MapError(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsDuplicate(t *testing.T) {
	if !repository.IsDuplicate(&pgconn.PgError{Code: "23505"}) {
		t.Error("23505 should be a duplicate")
	}
	if repository.IsDuplicate(errors.New("23505")) {
		t.Error("plain error should not be a duplicate")
	}
}

func TestWithTxCommits(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO parties").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	got, err := repository.WithTx(context.Background(), db, func(tx *sql.Tx) (int, error) {
		if _, err := tx.ExecContext(context.Background(), "INSERT INTO parties(id) VALUES ($1)", "p1"); err != nil {
			return 0, err
		}
		return 7, nil
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
	if got != 7 {
		t.Errorf("result = %d, want 7", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db, mock := newMock(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := repository.WithTx(context.Background(), db, func(tx *sql.Tx) (int, error) {
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestQueryOne(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("SELECT display_name FROM parties").
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"display_name"}).AddRow("Acme Corp"))

	got, err := repository.QueryOne(context.Background(), db,
		"SELECT display_name FROM parties WHERE id = $1", []any{"p1"}, scanName)
	if err != nil {
		t.Fatalf("QueryOne: %v", err)
	}
	if got != "Acme Corp" {
		t.Errorf("got %q, want Acme Corp", got)
	}
}

func TestQueryOneNoRows(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("SELECT display_name FROM parties").
		WillReturnRows(sqlmock.NewRows([]string{"display_name"}))

	_, err := repository.QueryOne(context.Background(), db,
		"SELECT display_name FROM parties WHERE id = $1", []any{"missing"}, scanName)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestQueryMany(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("SELECT display_name FROM parties").
		WillReturnRows(sqlmock.NewRows([]string{"display_name"}).
			AddRow("Acme Corp").
			AddRow("Clipboard Health"))

	got, err := repository.QueryMany(context.Background(), db,
		"SELECT display_name FROM parties", nil, scanName)
	if err != nil {
		t.Fatalf("QueryMany: %v", err)
	}
	if len(got) != 2 || got[1] != "Clipboard Health" {
		t.Errorf("got %v", got)
	}
}

func TestQueryManyEmpty(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("SELECT display_name FROM parties").
		WillReturnRows(sqlmock.NewRows([]string{"display_name"}))

	got, err := repository.QueryMany(context.Background(), db,
		"SELECT display_name FROM parties", nil, scanName)
	if err != nil {
		t.Fatalf("QueryMany: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty non-nil slice", got)
	}
}

func TestExecExpectOne(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{"one row", 1, nil},
		{"no rows", 0, sql.ErrNoRows},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMock(t)
			mock.ExpectExec("UPDATE signals").WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err := repository.ExecExpectOne(context.Background(), db,
				"UPDATE signals SET status = 'error' WHERE id = $1", "s1")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
