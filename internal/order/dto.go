package order

// CheckoutRequest payload of checkout.
// swagger:model CheckoutRequest
type CheckoutRequest struct {
	Email     string `json:"email"      binding:"required,email,max=254" example:"ana@example.com"`
	FirstName string `json:"first_name" binding:"required,max=100"       example:"Ana"`
	LastName  string `json:"last_name"  binding:"required,max=100"       example:"Lima"`
	Phone     string `json:"phone"      binding:"required,max=20"        example:"555-0101"`
	Address   string `json:"address"    binding:"required,max=255"       example:"1 Vine St"`
	City      string `json:"city"       binding:"required,max=100"       example:"Napa"`
	State     string `json:"state"      binding:"required,max=100"       example:"CA"`
	ZipCode   string `json:"zip_code"   binding:"required,max=20"        example:"94558"`
	Country   string `json:"country"    binding:"required,max=100"       example:"United States"`
	Notes     string `json:"notes"`
}

func (r CheckoutRequest) Customer() Customer {
	return Customer{
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
		Address:   r.Address,
		City:      r.City,
		State:     r.State,
		ZipCode:   r.ZipCode,
		Country:   r.Country,
	}
}

// UpdateStatusRequest payload of a staff status change.
// swagger:model UpdateStatusRequest
type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required" example:"processing"`
}
