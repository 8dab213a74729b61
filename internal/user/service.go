package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MikeMC777/vnb-store/internal/apperr"
	"github.com/MikeMC777/vnb-store/internal/logx"
	"github.com/MikeMC777/vnb-store/internal/notify"
)

var (
	ErrInvalidCredentials = apperr.New(apperr.ErrUnauthorized, "Invalid credentials")
	ErrInvalidResetToken  = apperr.New(apperr.ErrValidation, "Invalid or expired token")
	ErrMissingCredentials = apperr.New(apperr.ErrValidation, "Please provide both email and password")
)

// ResetTTL is how long a password reset token stays valid.
const ResetTTL = time.Hour

// ResetTokens stores single-use password reset tokens.
type ResetTokens interface {
	Put(ctx context.Context, token, userID string, ttl time.Duration) error
	// Take returns the user the token was issued for and deletes it.
	Take(ctx context.Context, token string) (userID string, ok bool, err error)
}

// Account is a user together with its profile.
type Account struct {
	User    *User    `json:"user"`
	Profile *Profile `json:"profile"`
}

// Session is what register and login hand back to the client.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Account
}

type Service struct {
	repo   Repository
	tokens *Tokens
	resets ResetTokens
	events *notify.Dispatcher
	log    *logx.Logger
}

func NewService(repo Repository, tokens *Tokens, resets ResetTokens, events *notify.Dispatcher, log *logx.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, resets: resets, events: events, log: log.With("component", "account")}
}

func (s *Service) Register(ctx context.Context, in RegisterRequest) (*Session, error) {
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &User{
		ID:           uuid.NewString(),
		Email:        NormalizeEmail(in.Email),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
	}
	p := DefaultProfile(u.ID)
	if in.Profile != nil {
		in.Profile.Apply(&p)
	}
	if err := s.repo.Create(ctx, u, &p); err != nil {
		return nil, err
	}
	s.log.Info("account registered", "user_id", u.ID)
	return s.session(u, &p)
}

// Login checks the credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	p, err := s.repo.GetProfile(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return s.session(u, p)
}

func (s *Service) session(u *User, p *Profile) (*Session, error) {
	tok, exp, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &Session{Token: tok, ExpiresAt: exp, Account: Account{User: u, Profile: p}}, nil
}

func (s *Service) CheckEmail(ctx context.Context, email string) (bool, error) {
	return s.repo.EmailExists(ctx, email)
}

func (s *Service) Me(ctx context.Context, userID string) (*Account, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.GetProfile(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &Account{User: u, Profile: p}, nil
}

func (s *Service) UpdateMe(ctx context.Context, userID string, in UpdateMeRequest) (*Account, error) {
	acc, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.FirstName != nil || in.LastName != nil {
		if in.FirstName != nil {
			acc.User.FirstName = strings.TrimSpace(*in.FirstName)
		}
		if in.LastName != nil {
			acc.User.LastName = strings.TrimSpace(*in.LastName)
		}
		if err := s.repo.UpdateNames(ctx, userID, acc.User.FirstName, acc.User.LastName); err != nil {
			return nil, err
		}
	}
	if in.Profile != nil {
		in.Profile.Apply(acc.Profile)
		acc.Profile.UserID = userID
		if err := s.repo.SaveProfile(ctx, acc.Profile); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// RequestPasswordReset never reveals whether the email is registered. A
// token is only issued, and handed to the notification sink, when it is.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		s.log.Debug("password reset for unknown email")
		return nil
	}
	if err != nil {
		return err
	}
	token := uuid.NewString()
	if err := s.resets.Put(ctx, token, u.ID, ResetTTL); err != nil {
		return err
	}
	if s.events != nil {
		s.events.Send(notify.TypePasswordReset, u.ID, map[string]string{
			"email":      u.Email,
			"first_name": u.FirstName,
			"token":      token,
		})
	}
	return nil
}

// ResetPassword consumes the token and sets the new password.
func (s *Service) ResetPassword(ctx context.Context, in ResetPasswordRequest) error {
	userID, ok, err := s.resets.Take(ctx, in.Token)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidResetToken
	}
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.Email != NormalizeEmail(in.Email) {
		return ErrInvalidResetToken
	}
	hash, err := HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}
	s.log.Info("password reset", "user_id", u.ID)
	return nil
}

// Exists reports whether id names a registered user.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	_, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}
