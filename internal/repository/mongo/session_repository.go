package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/CameronXie/pos-order-relay/internal/domain"
)

// SessionRepository appends login audit records.
type SessionRepository struct {
	collection *mongo.Collection
}

func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{collection: db.Collection(SessionsCollection)}
}

// Insert records a successful login.
func (r *SessionRepository) Insert(ctx context.Context, session *domain.Session) error {
	if _, err := r.collection.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("insert session %s: %w", session.ID, err)
	}

	return nil
}
