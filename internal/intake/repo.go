package intake

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/vnb-store/internal/apperr"
	"github.com/MikeMC777/vnb-store/internal/db"
)

var ErrNotSubscribed = apperr.New(apperr.ErrNotFound, "Subscription not found")

type Repository interface {
	// GetSubscription returns ErrNotSubscribed for unknown emails.
	GetSubscription(ctx context.Context, email string) (*Subscription, error)
	// SaveSubscription inserts or overwrites the row for s.Email.
	SaveSubscription(ctx context.Context, s *Subscription) error
	CreateContact(ctx context.Context, m *ContactMessage) error
	CreateInquiry(ctx context.Context, q *InvestmentInquiry) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(pool *pgxpool.Pool) *PGRepo { return &PGRepo{db: pool} }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *PGRepo) GetSubscription(ctx context.Context, email string) (*Subscription, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var s Subscription
	err := r.db.QueryRow(ctx, `
		SELECT email, is_active, subscribed_at FROM newsletter_subscriptions WHERE email=$1
	`, normalizeEmail(email)).Scan(&s.Email, &s.IsActive, &s.SubscribedAt)
	if db.IsNoRows(err) {
		return nil, ErrNotSubscribed
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PGRepo) SaveSubscription(ctx context.Context, s *Subscription) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	s.Email = normalizeEmail(s.Email)
	return r.db.QueryRow(ctx, `
		INSERT INTO newsletter_subscriptions (email, is_active, subscribed_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (email) DO UPDATE SET is_active = EXCLUDED.is_active, subscribed_at = NOW()
		RETURNING subscribed_at
	`, s.Email, s.IsActive).Scan(&s.SubscribedAt)
}

func (r *PGRepo) CreateContact(ctx context.Context, m *ContactMessage) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO contact_messages (id, name, email, phone, subject, message, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW())
		RETURNING created_at
	`, m.ID, m.Name, m.Email, m.Phone, m.Subject, m.Message).Scan(&m.CreatedAt)
}

func (r *PGRepo) CreateInquiry(ctx context.Context, q *InvestmentInquiry) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO investment_inquiries (id, name, email, phone, tier, message, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW())
		RETURNING created_at
	`, q.ID, q.Name, q.Email, q.Phone, string(q.Tier), q.Message).Scan(&q.CreatedAt)
}
