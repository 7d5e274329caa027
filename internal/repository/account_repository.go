package repository

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"

	"github.com/roadprice/valuation/internal/model"
)

// AccountRepo provides access to the `accounts` table. Write methods
// log what they changed; the entity structs stay free of side effects.
type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

const accountColumns = "id,email,password_record,role,created_at,updated_at"

// Create inserts an account and returns its generated id. The password
// record must already be hashed by the caller.
func (r *AccountRepo) Create(ctx context.Context, email, passwordRecord string, role model.Role) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO accounts (email, password_record, role) VALUES (?,?,?)",
		email, passwordRecord, string(role))
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	log.Printf("accounts: created id=%d email=%s role=%s", id, email, role)
	return uint64(id), nil
}

// FindByEmail fetches an account by normalized email. A missing row is
// (nil, nil), not an error.
func (r *AccountRepo) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.findOne(ctx, "SELECT "+accountColumns+" FROM accounts WHERE email=? LIMIT 1", email)
}

// FindByID fetches an account by id. A missing row is (nil, nil); this
// is what the access-policy engine relies on to reject tokens of
// deleted accounts.
func (r *AccountRepo) FindByID(ctx context.Context, id uint64) (*model.Account, error) {
	return r.findOne(ctx, "SELECT "+accountColumns+" FROM accounts WHERE id=? LIMIT 1", id)
}

func (r *AccountRepo) findOne(ctx context.Context, query string, arg any) (*model.Account, error) {
	var a model.Account
	var role string
	err := r.DB.QueryRowContext(ctx, query, arg).
		Scan(&a.ID, &a.Email, &a.Password, &role, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.Role = model.Role(role)
	return &a, nil
}

// Save persists email, password record and role of an existing account.
func (r *AccountRepo) Save(ctx context.Context, a *model.Account) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE accounts SET email=?, password_record=?, role=? WHERE id=?",
		strings.ToLower(strings.TrimSpace(a.Email)), a.Password, string(a.Role), a.ID)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return ErrEmailExists
		}
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if existing, ferr := r.FindByID(ctx, a.ID); ferr == nil && existing == nil {
			return ErrAccountNotFound
		}
	}
	log.Printf("accounts: updated id=%d", a.ID)
	return nil
}

// Delete removes an account together with its reports in one
// transaction. Already-issued tokens stay valid cryptographically; the
// per-request identity lookup is what shuts them out afterwards.
func (r *AccountRepo) Delete(ctx context.Context, a *model.Account) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM reports WHERE owner_id=?", a.ID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM accounts WHERE id=?", a.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAccountNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Printf("accounts: removed id=%d email=%s (reports cascaded)", a.ID, a.Email)
	return nil
}
