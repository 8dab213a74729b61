package user

// ProfileInput carries editable profile fields; nil means unchanged.
// swagger:model ProfileInput
type ProfileInput struct {
	Title                *string `json:"title"              binding:"omitempty,oneof=Mr. Mrs. Ms. Dr."`
	Phone                *string `json:"phone"              binding:"omitempty,max=20"`
	AreaCode             *string `json:"area_code"          binding:"omitempty,max=10"`
	BirthDate            *string `json:"birth_date"         binding:"omitempty,datetime=2006-01-02"`
	Company              *string `json:"company"            binding:"omitempty,max=200"`
	Address              *string `json:"address"            binding:"omitempty,max=255"`
	AddressContinued     *string `json:"address_continued"  binding:"omitempty,max=255"`
	City                 *string `json:"city"               binding:"omitempty,max=100"`
	State                *string `json:"state"              binding:"omitempty,max=100"`
	ZipCode              *string `json:"zip_code"           binding:"omitempty,max=20"`
	ZipPlus              *string `json:"zip_plus"           binding:"omitempty,max=10"`
	Location             *string `json:"location"           binding:"omitempty,max=100"`
	NewsletterSubscribed *bool   `json:"newsletter_subscribed"`
}

// Apply copies the set fields onto p.
func (in ProfileInput) Apply(p *Profile) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.Title, in.Title)
	set(&p.Phone, in.Phone)
	set(&p.AreaCode, in.AreaCode)
	set(&p.BirthDate, in.BirthDate)
	set(&p.Company, in.Company)
	set(&p.Address, in.Address)
	set(&p.AddressContinued, in.AddressContinued)
	set(&p.City, in.City)
	set(&p.State, in.State)
	set(&p.ZipCode, in.ZipCode)
	set(&p.ZipPlus, in.ZipPlus)
	set(&p.Location, in.Location)
	if in.NewsletterSubscribed != nil {
		p.NewsletterSubscribed = *in.NewsletterSubscribed
	}
}

// RegisterRequest payload of account creation.
// swagger:model RegisterRequest
type RegisterRequest struct {
	Email     string        `json:"email"      binding:"required,email,max=254" example:"ana@example.com"`
	Password  string        `json:"password"   binding:"required,min=10"        example:"correct-horse-battery"`
	FirstName string        `json:"first_name" binding:"max=150"`
	LastName  string        `json:"last_name"  binding:"max=150"`
	Profile   *ProfileInput `json:"profile"`
}

// LoginRequest payload of login.
// swagger:model LoginRequest
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateMeRequest payload of account update.
// swagger:model UpdateMeRequest
type UpdateMeRequest struct {
	FirstName *string       `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string       `json:"last_name"  binding:"omitempty,max=150"`
	Profile   *ProfileInput `json:"profile"`
}

// PasswordResetRequest payload of reset request.
// swagger:model PasswordResetRequest
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest payload of reset confirmation.
// swagger:model ResetPasswordRequest
type ResetPasswordRequest struct {
	Email       string `json:"email"        binding:"required,email"`
	Token       string `json:"token"        binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=10"`
}
