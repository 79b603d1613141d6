package domain

// Inputs carries the user-supplied fields collected by the storefront
// before checkout. Only the panel product uses them today.
type Inputs struct {
	Name string `json:"name,omitempty"`
}

// FulfillRequest is the body of POST /api/fulfill. OrderID doubles as the
// idempotency key: it becomes the panel server's external_id.
type FulfillRequest struct {
	OrderID    string  `json:"orderId"`
	Amount     float64 `json:"amount"`
	ProductKey string  `json:"productKey"`
	PlanKey    string  `json:"planKey"`
	Inputs     Inputs  `json:"inputs"`
}

// CheckoutRequest is the body of POST /api/checkout.
type CheckoutRequest struct {
	ProductKey string `json:"productKey"`
	PlanKey    string `json:"planKey"`
	Inputs     Inputs `json:"inputs"`
}

// CancelRequest is the body of POST /api/cancel.
type CancelRequest struct {
	OrderID string  `json:"orderId"`
	Amount  float64 `json:"amount"`
}

// Fulfillment modes.
const (
	ModeExisting     = "existing"      // server already provisioned for this order
	ModeCreatedUser  = "created_user"  // new panel user + new server
	ModeExistingUser = "existing_user" // pre-existing user + new server
)

type PanelUser struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type PanelServer struct {
	ID          int    `json:"id"`
	Identifier  string `json:"identifier"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Fulfillment is the structured outcome returned to the storefront.
// Password is set only in ModeCreatedUser and is never persisted or
// re-derivable afterwards.
type Fulfillment struct {
	Type     string      `json:"type"`
	Mode     string      `json:"mode"`
	User     *PanelUser  `json:"user,omitempty"`
	Password string      `json:"password,omitempty"`
	Server   PanelServer `json:"server"`
	Specs    PlanSpec    `json:"specs"`
	PanelURL string      `json:"panelUrl"`
	Note     string      `json:"note,omitempty"`
}
