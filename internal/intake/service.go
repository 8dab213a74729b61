package intake

import (
	"context"
	"errors"
	"strings"

	"github.com/MikeMC777/vnb-store/internal/logx"
	"github.com/MikeMC777/vnb-store/internal/notify"
)

const (
	MsgSubscribed   = "Successfully subscribed to newsletter!"
	MsgAlready      = "You are already subscribed!"
	MsgResubscribed = "Successfully resubscribed to newsletter!"
	MsgContact      = "Thank you for your message! We will get back to you soon."
	MsgInvestment   = "Thank you for your interest in investing in VNB! Our team will contact you shortly."
)

// SubscribeResult tells the caller which of the three signup paths was taken.
type SubscribeResult struct {
	Subscription *Subscription
	Created      bool
	Message      string
}

type Service struct {
	repo   Repository
	events *notify.Dispatcher
	log    *logx.Logger
}

func NewService(repo Repository, events *notify.Dispatcher, log *logx.Logger) *Service {
	return &Service{repo: repo, events: events, log: log.With("component", "intake")}
}

// Subscribe creates the subscription, reactivates an inactive one, or
// reports that it is already active.
func (s *Service) Subscribe(ctx context.Context, in NewsletterRequest) (*SubscribeResult, error) {
	cur, err := s.repo.GetSubscription(ctx, in.Email)
	switch {
	case errors.Is(err, ErrNotSubscribed):
		sub := &Subscription{Email: in.Email, IsActive: true}
		if err := s.repo.SaveSubscription(ctx, sub); err != nil {
			return nil, err
		}
		s.send(notify.TypeNewsletter, sub.Email, sub)
		return &SubscribeResult{Subscription: sub, Created: true, Message: MsgSubscribed}, nil
	case err != nil:
		return nil, err
	case cur.IsActive:
		return &SubscribeResult{Subscription: cur, Message: MsgAlready}, nil
	}

	cur.IsActive = true
	if err := s.repo.SaveSubscription(ctx, cur); err != nil {
		return nil, err
	}
	s.send(notify.TypeNewsletter, cur.Email, cur)
	return &SubscribeResult{Subscription: cur, Message: MsgResubscribed}, nil
}

func (s *Service) Contact(ctx context.Context, in ContactRequest) (*ContactMessage, error) {
	m := &ContactMessage{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Phone:   strings.TrimSpace(in.Phone),
		Subject: strings.TrimSpace(in.Subject),
		Message: in.Message,
	}
	if err := s.repo.CreateContact(ctx, m); err != nil {
		return nil, err
	}
	s.log.Info("contact message received", "id", m.ID)
	s.send(notify.TypeContact, m.ID, m)
	return m, nil
}

func (s *Service) Invest(ctx context.Context, in InvestmentRequest) (*InvestmentInquiry, error) {
	q := &InvestmentInquiry{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Phone:   strings.TrimSpace(in.Phone),
		Tier:    in.Tier,
		Message: in.Message,
	}
	if err := s.repo.CreateInquiry(ctx, q); err != nil {
		return nil, err
	}
	s.log.Info("investment inquiry received", "id", q.ID, "tier", q.Tier)
	s.send(notify.TypeInvestment, q.ID, q)
	return q, nil
}

func (s *Service) send(typ, key string, data any) {
	if s.events != nil {
		s.events.Send(typ, key, data)
	}
}
