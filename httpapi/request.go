package httpapi

import (
	"github.com/korylprince/library-desk-server/api"
	"github.com/shopspring/decimal"
)

//RestockRequest is a request to add copies of a Book. Quantity may be negative.
type RestockRequest struct {
	Quantity *int `json:"quantity"`
}

//PriceRequest is a request to set a Book's price
type PriceRequest struct {
	Price *decimal.Decimal `json:"price"`
}

//OrderCreateRequest is a request to create an Order. Customer is an id, "customer <id>", or a name.
type OrderCreateRequest struct {
	Customer string           `json:"customer"`
	Items    []*api.OrderItem `json:"items"`
}

//OperatorCreateRequest is a request to create a new Operator
type OperatorCreateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

//ChangePasswordRequest is a request to change an Operator's password
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

//AuthenticateRequest is an email/password authentication request
type AuthenticateRequest struct {
	Email    string
	Password string
}

//SessionRequest names a chat session
type SessionRequest struct {
	Name string `json:"name"`
}
