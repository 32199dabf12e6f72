package executor

import (
	"context"
	"errors"
	"testing"
)

func TestOpenSQL_UnknownDriver(t *testing.T) {
	if _, err := OpenSQL("oracle", ""); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestSQL_Apply_Sqlite(t *testing.T) {
	e, err := OpenSQL(SQLDriverSqlite, ":memory:")
	if err != nil {
		t.Fatalf("OpenSQL: %v", err)
	}
	defer func() { _ = e.Close() }()

	ctx := context.Background()
	if err := e.Apply(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);"); err != nil {
		t.Fatalf("Apply create: %v", err)
	}
	if err := e.Apply(ctx, "INSERT INTO users(name) VALUES ('alice');"); err != nil {
		t.Fatalf("Apply insert: %v", err)
	}

	var count int
	if err := e.DB().QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row, got %d", count)
	}
}

func TestSQL_Apply_FailureIsExecError(t *testing.T) {
	e, err := OpenSQL(SQLDriverSqlite, ":memory:")
	if err != nil {
		t.Fatalf("OpenSQL: %v", err)
	}
	defer func() { _ = e.Close() }()

	err = e.Apply(context.Background(), "CREATE TABL broken;")
	if err == nil {
		t.Fatal("expected error for invalid SQL")
	}
	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected *ExecError, got %T: %v", err, err)
	}
	if execErr.ExitCode != -1 {
		t.Fatalf("native driver failures use exit code -1, got %d", execErr.ExitCode)
	}
	if execErr.Diagnostic == "" {
		t.Fatal("expected diagnostic text")
	}
}
