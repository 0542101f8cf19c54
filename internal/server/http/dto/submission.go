package dto

// SubmitProofRequest is the inbound submission payload. Image fields carry
// data-URL encoded images.
type SubmitProofRequest struct {
	OrderNumber      string `json:"orderNumber"`
	CustomerName     string `json:"customerName"`
	PhotoDataURL     string `json:"photoDataURL"`
	SignatureDataURL string `json:"signatureDataURL,omitempty"`
}

// SubmitProofResponse is returned on success.
type SubmitProofResponse struct {
	Success      bool   `json:"success"`
	PhotoURL     string `json:"photoURL"`
	SignatureURL string `json:"signatureURL,omitempty"`
}

// ErrorResponse is the shared error payload shape.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// TestOrderResponse echoes a located order for the debug endpoint.
type TestOrderResponse struct {
	ID           int64  `json:"id"`
	Number       string `json:"number"`
	CustomerName string `json:"customerName,omitempty"`
}

// HealthResponse is the static health payload.
type HealthResponse struct {
	Status string `json:"status"`
}
