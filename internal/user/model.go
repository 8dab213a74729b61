package user

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsStaff      bool      `json:"is_staff"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Username mirrors the email; accounts have no separate handle.
func (u User) Username() string { return u.Email }

type Profile struct {
	UserID               string `json:"-"`
	Title                string `json:"title"`
	Phone                string `json:"phone"`
	AreaCode             string `json:"area_code"`
	BirthDate            string `json:"birth_date,omitempty"` // YYYY-MM-DD
	Company              string `json:"company"`
	Address              string `json:"address"`
	AddressContinued     string `json:"address_continued"`
	City                 string `json:"city"`
	State                string `json:"state"`
	ZipCode              string `json:"zip_code"`
	ZipPlus              string `json:"zip_plus"`
	Location             string `json:"location"`
	NewsletterSubscribed bool   `json:"newsletter_subscribed"`
}

// DefaultProfile is the profile a new account starts with.
func DefaultProfile(userID string) Profile {
	return Profile{UserID: userID, AreaCode: "+1", Location: "United States"}
}
