package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/CameronXie/pos-order-relay/internal/domain"
	"github.com/CameronXie/pos-order-relay/internal/repository"
)

var ErrAccountNotFound = errors.New("account not found")

// AccountFinder looks up the active, approved account for a login.
type AccountFinder interface {
	FindActiveByLogin(ctx context.Context, login string) (*domain.Account, error)
}

// Authenticator resolves credentials to an account.
type Authenticator struct {
	accounts AccountFinder
	verifier *PasswordVerifier
}

// NewAuthenticator creates a new Authenticator
func NewAuthenticator(accounts AccountFinder, verifier *PasswordVerifier) *Authenticator {
	return &Authenticator{
		accounts: accounts,
		verifier: verifier,
	}
}

// Authenticate returns the account for login when password matches. It fails with
// ErrAccountNotFound, ErrPasswordMismatch or a wrapped store error.
func (a *Authenticator) Authenticate(ctx context.Context, login, password string) (*domain.Account, error) {
	account, err := a.accounts.FindActiveByLogin(ctx, login)
	if err != nil {
		var notFound *repository.NotFoundError
		if errors.As(err, &notFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	if err := a.verifier.Verify(password, account.PasswordHash); err != nil {
		return nil, err
	}

	return account, nil
}

// ClaimsFor builds the session token claims of an account.
func ClaimsFor(account *domain.Account) Claims {
	claims := Claims{
		UserID:           account.ID,
		RestaurantID:     account.RestaurantID,
		AppRestaurantUID: account.AppRestaurantUID,
	}
	claims.Subject = account.Login()

	return claims
}
