package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "carelink/pkg/domain"
	"carelink/pkg/platform/sentinel"
)

// PostgresAccountStore persists accounts in PostgreSQL.
type PostgresAccountStore struct {
	db *sql.DB
}

func NewPostgresAccountStore(db *sql.DB) *PostgresAccountStore {
	return &PostgresAccountStore{db: db}
}

func (s *PostgresAccountStore) CreateAccount(ctx context.Context, account Account) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, username, email, password_hash, phone, role, remembered_tokens, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, uuid.UUID(account.ID), account.Username, account.Email, account.PasswordHash,
		account.Phone, account.Role.String(), pq.Array(account.RememberedTokens), account.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (s *PostgresAccountStore) FindAccountByID(ctx context.Context, accountID id.AccountID) (Account, error) {
	return s.findAccount(ctx, `WHERE id = $1`, uuid.UUID(accountID))
}

func (s *PostgresAccountStore) FindAccountByUsername(ctx context.Context, username string) (Account, error) {
	return s.findAccount(ctx, `WHERE username = $1`, username)
}

func (s *PostgresAccountStore) findAccount(ctx context.Context, where string, arg any) (Account, error) {
	var (
		account Account
		rawID   uuid.UUID
		role    string
		tokens  []string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, phone, role, remembered_tokens, created_at
		FROM accounts `+where, arg,
	).Scan(&rawID, &account.Username, &account.Email, &account.PasswordHash,
		&account.Phone, &role, pq.Array(&tokens), &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, sentinel.ErrNotFound
		}
		return Account{}, fmt.Errorf("find account: %w", err)
	}
	account.ID = id.AccountID(rawID)
	account.Role = id.Role(role)
	account.RememberedTokens = tokens
	return account, nil
}

// AppendRememberedToken appends and trims in one statement. The FOR UPDATE
// read and the UPDATE share the statement's implicit transaction, so two
// concurrent remembered logins serialize on the row lock and neither append
// is lost.
func (s *PostgresAccountStore) AppendRememberedToken(ctx context.Context, accountID id.AccountID, digest string, cap int) (int, error) {
	var evicted int
	err := s.db.QueryRowContext(ctx, `
		WITH current AS (
			SELECT cardinality(remembered_tokens) AS n
			FROM accounts WHERE id = $1
			FOR UPDATE
		), updated AS (
			UPDATE accounts
			SET remembered_tokens = (array_append(remembered_tokens, $2))
				[greatest(1, (SELECT n FROM current) + 2 - $3):((SELECT n FROM current) + 1)]
			WHERE id = $1
			RETURNING 1
		)
		SELECT greatest(0, (SELECT n FROM current) + 1 - $3) FROM updated
	`, uuid.UUID(accountID), digest, cap).Scan(&evicted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, sentinel.ErrNotFound
		}
		return 0, fmt.Errorf("append remembered token: %w", err)
	}
	return evicted, nil
}

func (s *PostgresAccountStore) RemoveRememberedToken(ctx context.Context, accountID id.AccountID, digest string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE accounts SET remembered_tokens = array_remove(remembered_tokens, $2)
		WHERE id = $1
	`, uuid.UUID(accountID), digest)
	if err != nil {
		return fmt.Errorf("remove remembered token: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// PostgresAdultStore persists adults in PostgreSQL.
type PostgresAdultStore struct {
	db *sql.DB
}

func NewPostgresAdultStore(db *sql.DB) *PostgresAdultStore {
	return &PostgresAdultStore{db: db}
}

func (s *PostgresAdultStore) CreateAdult(ctx context.Context, adult Adult) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO adults (id, name, age, blood_pressure_limit, room_time_limit, account_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.UUID(adult.ID), adult.Name, adult.Age, adult.BloodPressureLimit,
		adult.RoomTimeLimit, uuid.UUID(adult.AccountID), adult.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create adult: %w", err)
	}
	return nil
}

func (s *PostgresAdultStore) FindAdultByID(ctx context.Context, adultID id.AdultID) (Adult, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, age, blood_pressure_limit, room_time_limit, account_id, created_at
		FROM adults WHERE id = $1
	`, uuid.UUID(adultID))
	adult, err := scanAdult(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Adult{}, sentinel.ErrNotFound
		}
		return Adult{}, fmt.Errorf("find adult: %w", err)
	}
	return adult, nil
}

func (s *PostgresAdultStore) FindAdultsByIDs(ctx context.Context, adultIDs []id.AdultID) ([]Adult, error) {
	raw := make([]uuid.UUID, len(adultIDs))
	for i, adultID := range adultIDs {
		raw[i] = uuid.UUID(adultID)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, age, blood_pressure_limit, room_time_limit, account_id, created_at
		FROM adults WHERE id = ANY($1)
	`, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("find adults: %w", err)
	}
	defer rows.Close()
	return collectAdults(rows)
}

func (s *PostgresAdultStore) ListAdultsByAccount(ctx context.Context, accountID id.AccountID) ([]Adult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, age, blood_pressure_limit, room_time_limit, account_id, created_at
		FROM adults WHERE account_id = $1
		ORDER BY created_at
	`, uuid.UUID(accountID))
	if err != nil {
		return nil, fmt.Errorf("list adults: %w", err)
	}
	defer rows.Close()
	return collectAdults(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAdult(row rowScanner) (Adult, error) {
	var (
		adult     Adult
		rawID     uuid.UUID
		accountID uuid.UUID
	)
	err := row.Scan(&rawID, &adult.Name, &adult.Age, &adult.BloodPressureLimit,
		&adult.RoomTimeLimit, &accountID, &adult.CreatedAt)
	if err != nil {
		return Adult{}, err
	}
	adult.ID = id.AdultID(rawID)
	adult.AccountID = id.AccountID(accountID)
	return adult, nil
}

func collectAdults(rows *sql.Rows) ([]Adult, error) {
	var out []Adult
	for rows.Next() {
		adult, err := scanAdult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan adult: %w", err)
		}
		out = append(out, adult)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
