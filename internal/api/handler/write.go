package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/textworld/internal/api/apierr"
	"github.com/mcoot/textworld/internal/api/response"
	"github.com/mcoot/textworld/internal/model"
)

// writeCode reports an account operation outcome
func writeCode(w http.ResponseWriter, code model.ResponseCode) {
	if code != model.Success {
		WriteError(w, apierr.FromCode(code))
		return
	}
	response.Code(w, code)
}

// writeText reports a gameplay operation outcome
func writeText(w http.ResponseWriter, text string, err error) {
	if err != nil {
		WriteError(w, err)
		return
	}
	response.Text(w, text)
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return NewInvalidRequestError("invalid request body")
	}
	return nil
}

func pathName(r *http.Request) string {
	return mux.Vars(r)["name"]
}

func pathIndex(r *http.Request) (int, error) {
	n, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		return 0, NewInvalidRequestError("index must be a number")
	}
	return n, nil
}
