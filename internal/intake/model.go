// Package intake stores the public forms: newsletter signups, contact
// messages and investment inquiries.
package intake

import "time"

type Subscription struct {
	Email        string    `json:"email"`
	IsActive     bool      `json:"is_active"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type Tier string

const (
	TierSeed      Tier = "seed"
	TierGrowth    Tier = "growth"
	TierStrategic Tier = "strategic"
	TierCustom    Tier = "custom"
)

type InvestmentInquiry struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Tier        Tier      `json:"tier"`
	Message     string    `json:"message,omitempty"`
	IsContacted bool      `json:"is_contacted"`
	CreatedAt   time.Time `json:"created_at"`
}
