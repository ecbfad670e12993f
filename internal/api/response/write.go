package response

import (
	"encoding/json"
	"net/http"

	"github.com/mcoot/textworld/internal/model"
)

// JSON writes data as the response body with the given status
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Code writes the 200 body of an account operation
func Code(w http.ResponseWriter, code model.ResponseCode) {
	JSON(w, http.StatusOK, CodeResponse{Response: code})
}

// Text writes the 200 body of a gameplay command
func Text(w http.ResponseWriter, text string) {
	JSON(w, http.StatusOK, TextResponse{Result: text})
}
