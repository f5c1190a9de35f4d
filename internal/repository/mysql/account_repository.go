package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/CameronXie/pos-order-relay/internal/domain"
	"github.com/CameronXie/pos-order-relay/internal/repository"
)

const (
	AccountResource = "account"
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// FindActiveByLogin retrieves the single active, approved account whose username or
// email matches login.
func (r *AccountRepository) FindActiveByLogin(ctx context.Context, login string) (*domain.Account, error) {
	if login == "" {
		return nil, fmt.Errorf("login cannot be empty")
	}

	const query = `
SELECT
  id,
  COALESCE(username, ''),
  COALESCE(email, ''),
  password_hash,
  restaurant_id,
  COALESCE(app_restaurant_uid, ''),
  COALESCE(name, ''),
  COALESCE(phone, ''),
  COALESCE(role, 'manager')
FROM restaurant_accounts
WHERE (username = ? OR email = ?)
  AND is_active = 1
  AND approval_status = 'approved'
LIMIT 2
`
	rows, err := r.db.QueryContext(ctx, query, login, login)
	if err != nil {
		return nil, fmt.Errorf("query account by login %s: %w", login, err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(
			&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.RestaurantID,
			&a.AppRestaurantUID, &a.Name, &a.Phone, &a.Role,
		); err != nil {
			return nil, fmt.Errorf("scan account by login %s: %w", login, err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate account by login %s: %w", login, err)
	}

	if len(accounts) != 1 {
		return nil, &repository.NotFoundError{
			Resource: AccountResource,
			Key:      "login",
			Value:    login,
		}
	}

	return &accounts[0], nil
}
