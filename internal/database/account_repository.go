package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/AshishRam7/deploy-test-insta-bot/internal/crypto"
	"github.com/AshishRam7/deploy-test-insta-bot/internal/domain"
)

// Account is one Instagram business account the bot replies for.
type Account struct {
	InstagramAccountID string
	Username           string
	AccessToken        string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// AccountRepo persists accounts with tokens encrypted at rest. It satisfies
// domain.TokenResolver for the send pipeline.
type AccountRepo struct {
	db     *DB
	crypto crypto.Service
}

var _ domain.TokenResolver = (*AccountRepo)(nil)

func NewAccountRepo(db *DB, cryptoService crypto.Service) *AccountRepo {
	return &AccountRepo{db: db, crypto: cryptoService}
}

// Upsert inserts or refreshes an account and its access token.
func (r *AccountRepo) Upsert(ctx context.Context, accountID, username, accessToken string) (*Account, error) {
	encToken, err := r.crypto.Encrypt(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}

	var account Account
	err = r.db.Pool.QueryRow(ctx, `
		INSERT INTO accounts (instagram_account_id, username, access_token, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (instagram_account_id) DO UPDATE SET
			username = EXCLUDED.username,
			access_token = EXCLUDED.access_token,
			updated_at = NOW()
		RETURNING instagram_account_id, username, access_token, created_at, updated_at
	`, accountID, username, encToken).Scan(
		&account.InstagramAccountID, &account.Username, &account.AccessToken,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert account: %w", err)
	}

	account.AccessToken = accessToken
	return &account, nil
}

// AccessToken returns the decrypted token for an account.
func (r *AccountRepo) AccessToken(ctx context.Context, accountID string) (string, error) {
	var encToken string
	err := r.db.Pool.QueryRow(ctx, `
		SELECT access_token FROM accounts WHERE instagram_account_id = $1
	`, accountID).Scan(&encToken)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load access token: %w", err)
	}

	token, err := r.crypto.Decrypt(encToken)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt access token: %w", err)
	}
	return token, nil
}

// Delete removes an account. Missing accounts are not an error.
func (r *AccountRepo) Delete(ctx context.Context, accountID string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM accounts WHERE instagram_account_id = $1`, accountID)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

// List returns all configured accounts, tokens decrypted.
func (r *AccountRepo) List(ctx context.Context) ([]Account, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT instagram_account_id, username, access_token, created_at, updated_at
		FROM accounts ORDER BY instagram_account_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		var account Account
		if err := rows.Scan(&account.InstagramAccountID, &account.Username, &account.AccessToken,
			&account.CreatedAt, &account.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		account.AccessToken, err = r.crypto.Decrypt(account.AccessToken)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt access token: %w", err)
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}
