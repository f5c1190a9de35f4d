package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CameronXie/pos-order-relay/internal/domain"
	"github.com/CameronXie/pos-order-relay/internal/repository"
)

const (
	AccountResource = "account"
)

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
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
  COALESCE(username, '')           AS username,
  COALESCE(email, '')              AS email,
  password_hash,
  restaurant_id,
  COALESCE(app_restaurant_uid, '') AS app_restaurant_uid,
  COALESCE(name, '')               AS name,
  COALESCE(phone, '')              AS phone,
  COALESCE(role, 'manager')        AS role
FROM restaurant_accounts
WHERE (username = $1 OR email = $1)
  AND is_active
  AND approval_status = 'approved'
LIMIT 2
`
	type row struct {
		ID               int64  `db:"id"`
		Username         string `db:"username"`
		Email            string `db:"email"`
		PasswordHash     string `db:"password_hash"`
		RestaurantID     int64  `db:"restaurant_id"`
		AppRestaurantUID string `db:"app_restaurant_uid"`
		Name             string `db:"name"`
		Phone            string `db:"phone"`
		Role             string `db:"role"`
	}

	rows, err := r.pool.Query(ctx, query, login)
	if err != nil {
		return nil, fmt.Errorf("query account by login %s: %w", login, err)
	}
	defer rows.Close()

	rec, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[row])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, pgx.ErrTooManyRows) {
			return nil, &repository.NotFoundError{
				Resource: AccountResource,
				Key:      "login",
				Value:    login,
			}
		}
		return nil, fmt.Errorf("scan account by login %s: %w", login, err)
	}

	return &domain.Account{
		ID:               rec.ID,
		Username:         rec.Username,
		Email:            rec.Email,
		PasswordHash:     rec.PasswordHash,
		RestaurantID:     rec.RestaurantID,
		AppRestaurantUID: rec.AppRestaurantUID,
		Name:             rec.Name,
		Phone:            rec.Phone,
		Role:             rec.Role,
	}, nil
}
