package memstore

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/MikeMC777/vnb-store/internal/intake"
)

type Intake struct{ s *Store }

func (r *Intake) GetSubscription(_ context.Context, email string) (*intake.Subscription, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sub, ok := r.s.st.subs[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, intake.ErrNotSubscribed
	}
	return &sub, nil
}

func (r *Intake) SaveSubscription(_ context.Context, sub *intake.Subscription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sub.Email = strings.ToLower(strings.TrimSpace(sub.Email))
	sub.SubscribedAt = r.s.now()
	r.s.st.subs[sub.Email] = *sub
	return nil
}

func (r *Intake) CreateContact(_ context.Context, m *intake.ContactMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = r.s.now()
	r.s.st.contacts = append(r.s.st.contacts, *m)
	return nil
}

func (r *Intake) CreateInquiry(_ context.Context, q *intake.InvestmentInquiry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	q.CreatedAt = r.s.now()
	r.s.st.inquiries = append(r.s.st.inquiries, *q)
	return nil
}

// Contacts returns stored contact messages, oldest first.
func (r *Intake) Contacts() []intake.ContactMessage {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return slices.Clone(r.s.st.contacts)
}

func (r *Intake) Inquiries() []intake.InvestmentInquiry {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return slices.Clone(r.s.st.inquiries)
}
