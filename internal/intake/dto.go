package intake

// NewsletterRequest payload of newsletter signup.
// swagger:model NewsletterRequest
type NewsletterRequest struct {
	Email string `json:"email" binding:"required,email,max=254" example:"ana@example.com"`
}

// ContactRequest payload of the contact form.
// swagger:model ContactRequest
type ContactRequest struct {
	Name    string `json:"name"    binding:"required,max=100"`
	Email   string `json:"email"   binding:"required,email,max=254"`
	Phone   string `json:"phone"   binding:"omitempty,max=20"`
	Subject string `json:"subject" binding:"required,max=200"`
	Message string `json:"message" binding:"required"`
}

// InvestmentRequest payload of an investment inquiry.
// swagger:model InvestmentRequest
type InvestmentRequest struct {
	Name    string `json:"name"    binding:"required,max=100"`
	Email   string `json:"email"   binding:"required,email,max=254"`
	Phone   string `json:"phone"   binding:"required,max=20"`
	Tier    Tier   `json:"tier"    binding:"required,oneof=seed growth strategic custom" example:"growth"`
	Message string `json:"message"`
}
