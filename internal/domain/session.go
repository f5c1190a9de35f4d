package domain

import "time"

const (
	AuthMethodPassword = "password"
	AuthMethodGoogle   = "google"
)

// Session is an append-only audit record of a successful login.
type Session struct {
	ID           string    `json:"id" bson:"_id"`
	Username     string    `json:"username,omitempty" bson:"username,omitempty"`
	Email        string    `json:"email,omitempty" bson:"email,omitempty"`
	RestaurantID string    `json:"restaurant_id" bson:"restaurant_id"`
	AuthMethod   string    `json:"auth_method" bson:"auth_method"`
	LoggedInAt   time.Time `json:"logged_in_at" bson:"logged_in_at"`
}
