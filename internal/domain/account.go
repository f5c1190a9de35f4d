package domain

// Account is a restaurant staff credential record from the relational store.
type Account struct {
	ID               int64  `json:"id"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	PasswordHash     string `json:"-"`
	RestaurantID     int64  `json:"restaurant_id"`
	AppRestaurantUID string `json:"app_restaurant_uid,omitempty"`
	Name             string `json:"name"`
	Phone            string `json:"phone"`
	Role             string `json:"role"`
}

// Login returns the identifier used as the token subject.
func (a *Account) Login() string {
	if a.Email != "" {
		return a.Email
	}

	return a.Username
}
