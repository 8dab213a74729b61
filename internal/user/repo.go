package user

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/vnb-store/internal/apperr"
	"github.com/MikeMC777/vnb-store/internal/db"
)

var (
	ErrNotFound     = apperr.New(apperr.ErrNotFound, "User not found")
	ErrAlreadyExist = apperr.New(apperr.ErrConflict, "A user with this email already exists")
)

type Repository interface {
	// Create stores the user together with its profile.
	Create(ctx context.Context, u *User, p *Profile) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateNames(ctx context.Context, id, first, last string) error
	UpdatePassword(ctx context.Context, id, hash string) error
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	SaveProfile(ctx context.Context, p *Profile) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(pool *pgxpool.Pool) *PGRepo { return &PGRepo{db: pool} }

// NormalizeEmail is applied before every lookup; emails are unique case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *PGRepo) Create(ctx context.Context, u *User, p *Profile) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = NormalizeEmail(u.Email)
	p.UserID = u.ID

	return db.InTx(ctx, r.db, pgx.TxOptions{}, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO users (id, email, password_hash, first_name, last_name, is_staff, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW())
			RETURNING created_at, updated_at
		`, u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.IsStaff).Scan(&u.CreatedAt, &u.UpdatedAt)
		if db.IsUniqueViolation(err) {
			return ErrAlreadyExist
		}
		if err != nil {
			return err
		}
		return saveProfile(ctx, tx, p)
	})
}

const userColumns = `id, email, password_hash, first_name, last_name, is_staff, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.IsStaff, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, NormalizeEmail(email)))
}

func (r *PGRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email=$1)`, NormalizeEmail(email)).Scan(&exists)
	return exists, err
}

func (r *PGRepo) UpdateNames(ctx context.Context, id, first, last string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE users SET first_name=$2, last_name=$3, updated_at=NOW() WHERE id=$1
	`, id, first, last)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `UPDATE users SET password_hash=$2, updated_at=NOW() WHERE id=$1`, id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p := Profile{UserID: userID}
	err := r.db.QueryRow(ctx, `
		SELECT title, phone, area_code, COALESCE(birth_date::text, ''), company, address, address_continued,
		       city, state, zip_code, zip_plus, location, newsletter_subscribed
		FROM user_profiles WHERE user_id=$1
	`, userID).Scan(&p.Title, &p.Phone, &p.AreaCode, &p.BirthDate, &p.Company, &p.Address, &p.AddressContinued,
		&p.City, &p.State, &p.ZipCode, &p.ZipPlus, &p.Location, &p.NewsletterSubscribed)
	if db.IsNoRows(err) {
		d := DefaultProfile(userID)
		return &d, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PGRepo) SaveProfile(ctx context.Context, p *Profile) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return saveProfile(ctx, r.db, p)
}

func saveProfile(ctx context.Context, q db.ReadWrite, p *Profile) error {
	_, err := q.Exec(ctx, `
		INSERT INTO user_profiles (user_id, title, phone, area_code, birth_date, company, address,
		                           address_continued, city, state, zip_code, zip_plus, location,
		                           newsletter_subscribed, created_at, updated_at)
		VALUES ($1,$2,$3,$4,NULLIF($5,'')::date,$6,$7,$8,$9,$10,$11,$12,$13,$14,NOW(),NOW())
		ON CONFLICT (user_id) DO UPDATE SET
		    title=EXCLUDED.title, phone=EXCLUDED.phone, area_code=EXCLUDED.area_code,
		    birth_date=EXCLUDED.birth_date, company=EXCLUDED.company, address=EXCLUDED.address,
		    address_continued=EXCLUDED.address_continued, city=EXCLUDED.city, state=EXCLUDED.state,
		    zip_code=EXCLUDED.zip_code, zip_plus=EXCLUDED.zip_plus, location=EXCLUDED.location,
		    newsletter_subscribed=EXCLUDED.newsletter_subscribed, updated_at=NOW()
	`, p.UserID, p.Title, p.Phone, p.AreaCode, p.BirthDate, p.Company, p.Address, p.AddressContinued,
		p.City, p.State, p.ZipCode, p.ZipPlus, p.Location, p.NewsletterSubscribed)
	return err
}
