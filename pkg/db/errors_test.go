package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestIsUniqueViolationPgx(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: "ux_accounts_email"}

	if !IsUniqueViolation(err, "ux_accounts_email") {
		t.Fatal("expected match on constraint name")
	}
	if !IsUniqueViolation(err, "") {
		t.Fatal("expected match with empty constraint filter")
	}
	if IsUniqueViolation(err, "ux_redemptions_code") {
		t.Fatal("expected mismatch for a different constraint")
	}
}

func TestIsUniqueViolationWrappedChain(t *testing.T) {
	cause := &pgconn.PgError{Code: "23505", ConstraintName: "ux_redemptions_code"}
	wrapped := fmt.Errorf("create redemption: %w", fmt.Errorf("insert: %w", cause))

	if !IsUniqueViolation(wrapped, "ux_redemptions_code") {
		t.Fatal("expected wrapped pg error to be detected")
	}
}

func TestIsUniqueViolationPq(t *testing.T) {
	err := &pq.Error{Code: "23505", Constraint: "ux_category_purchase"}

	if !IsUniqueViolation(err, "ux_category_purchase") {
		t.Fatal("expected match on pq constraint")
	}
	if IsUniqueViolation(&pq.Error{Code: "23503"}, "") {
		t.Fatal("foreign key violation must not match")
	}
}

func TestIsUniqueViolationSQLiteMessage(t *testing.T) {
	err := fmt.Errorf("save account: %w", errors.New("UNIQUE constraint failed: accounts.email"))

	if !IsUniqueViolation(err, "ux_accounts_email") {
		t.Fatal("expected sqlite unique violation to match regardless of constraint name")
	}
}

func TestIsUniqueViolationOtherErrors(t *testing.T) {
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil must not match")
	}
	if IsUniqueViolation(errors.New("connection refused"), "") {
		t.Fatal("unrelated error must not match")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}, "") {
		t.Fatal("foreign key violation must not match")
	}
}
