package response

import "github.com/mcoot/textworld/internal/model"

// CodeResponse is the body of a successful account operation
type CodeResponse struct {
	Response model.ResponseCode `json:"response"`
}

// TextResponse is the body of a gameplay operation
type TextResponse struct {
	Result string `json:"result"`
}

// HealthResponse is the body of the health check
type HealthResponse struct {
	Status string `json:"status"`
	Online int    `json:"online"`
}
