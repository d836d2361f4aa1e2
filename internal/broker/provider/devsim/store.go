package devsim

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/keybridge-labs/keybridge/internal/broker/domain"
)

// ErrNoRecord is returned by store lookups when no row matches.
var ErrNoRecord = errors.New("devsim: record not found")

// AccountRecord is a directory entry together with the credentials the
// simulator verifies during interactive sign-in. Only the identity fields
// ever leave the simulator; hashes and secrets stay behind the store.
type AccountRecord struct {
	ID           string
	Username     string
	DisplayName  string
	PasswordHash string
	TOTPSecret   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SessionRecord marks an account as signed in at the authority until
// ExpiresAt. Fingerprint is a digest of the session token, never the token
// itself.
type SessionRecord struct {
	ID          string
	AccountID   string
	Fingerprint string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Store persists the simulated identity authority: accounts, their
// per-application associations and their sign-in sessions.
type Store struct {
	db  *sql.DB
	dsn string
}

// NewStore opens the sqlite database at dsn and enables foreign keys.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &Store{db: db, dsn: dsn}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateAccount inserts a new directory entry.
func (s *Store) CreateAccount(ctx context.Context, rec AccountRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, username, display_name, password_hash, totp_secret, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Username, rec.DisplayName, rec.PasswordHash,
		stringPtrToNull(rec.TOTPSecret), rec.CreatedAt, rec.UpdatedAt,
	)
	return err
}

// GetAccountByID fetches a single directory entry by its identifier.
func (s *Store) GetAccountByID(ctx context.Context, id string) (AccountRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, display_name, password_hash, totp_secret, created_at, updated_at
		FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

// GetAccountByUsername fetches a single directory entry by username.
func (s *Store) GetAccountByUsername(ctx context.Context, username string) (AccountRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, display_name, password_hash, totp_secret, created_at, updated_at
		FROM accounts WHERE username = ?`, username)
	return scanAccount(row)
}

// ListAccounts returns every directory entry ordered by username.
func (s *Store) ListAccounts(ctx context.Context) ([]AccountRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, display_name, password_hash, totp_secret, created_at, updated_at
		FROM accounts ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []AccountRecord
	for rows.Next() {
		rec, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// CountAccounts reports how many directory entries exist.
func (s *Store) CountAccounts(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n)
	return n, err
}

// UpsertAssociation records the association status between an account and an
// application, replacing any previous status.
func (s *Store) UpsertAssociation(ctx context.Context, accountID, appID string, status domain.AssociationStatus) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO associations (account_id, app_id, status, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (account_id, app_id) DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at`,
		accountID, appID, string(status), time.Now().UTC(),
	)
	return err
}

// GetAssociation returns the stored status between an account and an
// application, or ErrNoRecord when none has ever been recorded.
func (s *Store) GetAssociation(ctx context.Context, accountID, appID string) (domain.AssociationStatus, error) {
	var status string
	err := s.db.QueryRowContext(ctx, `
		SELECT status FROM associations WHERE account_id = ? AND app_id = ?`,
		accountID, appID).Scan(&status)
	if err != nil {
		return "", mapNotFound(err)
	}
	return domain.AssociationStatus(status), nil
}

// AssociationsForAccount returns the stored statuses for one account keyed
// by application identity.
func (s *Store) AssociationsForAccount(ctx context.Context, accountID string) (map[string]domain.AssociationStatus, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT app_id, status FROM associations WHERE account_id = ?`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]domain.AssociationStatus)
	for rows.Next() {
		var appID, status string
		if err := rows.Scan(&appID, &status); err != nil {
			return nil, err
		}
		out[appID] = domain.AssociationStatus(status)
	}
	return out, rows.Err()
}

// ListAssociations returns every stored association keyed by account
// identifier.
func (s *Store) ListAssociations(ctx context.Context) (map[string]map[string]domain.AssociationStatus, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT account_id, app_id, status FROM associations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]map[string]domain.AssociationStatus)
	for rows.Next() {
		var accountID, appID, status string
		if err := rows.Scan(&accountID, &appID, &status); err != nil {
			return nil, err
		}
		if out[accountID] == nil {
			out[accountID] = make(map[string]domain.AssociationStatus)
		}
		out[accountID][appID] = domain.AssociationStatus(status)
	}
	return out, rows.Err()
}

// CreateSession inserts a sign-in session row.
func (s *Store) CreateSession(ctx context.Context, rec SessionRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, account_id, fingerprint, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.AccountID, rec.Fingerprint, rec.CreatedAt, rec.ExpiresAt,
	)
	return err
}

// LiveSessionForAccount returns the freshest unexpired session for the
// account, or ErrNoRecord when the account is not signed in.
func (s *Store) LiveSessionForAccount(ctx context.Context, accountID string, now time.Time) (SessionRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, account_id, fingerprint, created_at, expires_at
		FROM sessions WHERE account_id = ? AND expires_at > ?
		ORDER BY expires_at DESC LIMIT 1`,
		accountID, now)
	var rec SessionRecord
	err := row.Scan(&rec.ID, &rec.AccountID, &rec.Fingerprint, &rec.CreatedAt, &rec.ExpiresAt)
	if err != nil {
		return SessionRecord{}, mapNotFound(err)
	}
	return rec, nil
}

// LiveAssociatedAccountIDs returns the identifiers of accounts that hold an
// unexpired session and are associated with appID.
func (s *Store) LiveAssociatedAccountIDs(ctx context.Context, appID string, now time.Time) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT s.account_id
		FROM sessions s
		JOIN associations a ON a.account_id = s.account_id
		WHERE s.expires_at > ? AND a.app_id = ? AND a.status = ?
		ORDER BY s.account_id`,
		now, appID, string(domain.Associated))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteExpiredSessions removes sessions that expired at or before now and
// reports how many rows were removed.
func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteSessionsForAccount removes every session held by the account.
func (s *Store) DeleteSessionsForAccount(ctx context.Context, accountID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE account_id = ?`, accountID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (AccountRecord, error) {
	var (
		rec        AccountRecord
		totpSecret sql.NullString
	)
	err := row.Scan(&rec.ID, &rec.Username, &rec.DisplayName, &rec.PasswordHash,
		&totpSecret, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return AccountRecord{}, mapNotFound(err)
	}
	rec.TOTPSecret = mapNullString(totpSecret)
	return rec, nil
}

// mapNotFound converts sql.ErrNoRows into the store's ErrNoRecord sentinel.
func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNoRecord
	}
	return err
}

// mapNullString converts a sql.NullString to *string.
func mapNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

// stringPtrToNull converts a *string to sql.NullString.
func stringPtrToNull(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
