package memstore

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/MikeMC777/vnb-store/internal/user"
)

type Users struct{ s *Store }

func (r *Users) Create(_ context.Context, u *user.User, p *user.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = user.NormalizeEmail(u.Email)
	for _, cur := range r.s.st.users {
		if cur.Email == u.Email || cur.ID == u.ID {
			return user.ErrAlreadyExist
		}
	}
	u.CreatedAt = r.s.now()
	u.UpdatedAt = u.CreatedAt
	p.UserID = u.ID
	r.s.st.users[u.ID] = *u
	r.s.st.profiles[u.ID] = *p
	return nil
}

func (r *Users) GetByID(_ context.Context, id string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.st.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return &u, nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email = user.NormalizeEmail(email)
	for _, u := range r.s.st.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *Users) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if errors.Is(err, user.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *Users) UpdateNames(_ context.Context, id, first, last string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.st.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.FirstName, u.LastName = first, last
	u.UpdatedAt = r.s.now()
	r.s.st.users[id] = u
	return nil
}

func (r *Users) UpdatePassword(_ context.Context, id, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.st.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = r.s.now()
	r.s.st.users[id] = u
	return nil
}

func (r *Users) GetProfile(_ context.Context, userID string) (*user.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.st.profiles[userID]
	if !ok {
		p = user.DefaultProfile(userID)
	}
	return &p, nil
}

func (r *Users) SaveProfile(_ context.Context, p *user.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.st.users[p.UserID]; !ok {
		return user.ErrNotFound
	}
	r.s.st.profiles[p.UserID] = *p
	return nil
}
