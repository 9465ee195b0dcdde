package httpx

type CheckoutRequest struct {
	Items      []CheckoutItemDTO `json:"items"`
	PayerEmail string            `json:"payerEmail"`
}

type CheckoutItemDTO struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

type CheckoutResponse struct {
	Message    string `json:"message"`
	InvoiceURL string `json:"invoice_url"`
	Reference  string `json:"reference"`
}

// WebhookRequest is the provider-defined callback body. Only the fields the
// reconciliation flow depends on are decoded; everything else is ignored.
type WebhookRequest struct {
	ID            string `json:"id"`
	ExternalID    string `json:"external_id"`
	Status        string `json:"status"`
	PaymentMethod string `json:"payment_method"`
	PaidAmount    int64  `json:"paid_amount"`
}

type WebhookResponse struct {
	Message string `json:"message"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type ProductsResponse struct {
	Success bool         `json:"success"`
	Data    []ProductDTO `json:"data"`
}

type ProductDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price"`
	Image       string `json:"image"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
