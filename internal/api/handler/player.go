package handler

import (
	"net/http"

	"github.com/mcoot/textworld/internal/api/request"
	"github.com/mcoot/textworld/internal/model"
	"github.com/mcoot/textworld/internal/services/command"
)

// PlayerHandler handles account and session endpoints
type PlayerHandler struct {
	commands command.Service
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(commands command.Service) *PlayerHandler {
	return &PlayerHandler{
		commands: commands,
	}
}

// Join handles POST /api/v1/players/join
func (h *PlayerHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req request.JoinRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	if req.Name == "" {
		WriteError(w, NewInvalidRequestError("name is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	writeCode(w, h.commands.Join(r.Context(), req.Name, req.Password))
}

// Create handles POST /api/v1/players
func (h *PlayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateAccountRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	if req.Name == "" {
		WriteError(w, NewInvalidRequestError("name is required"))
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}

	recovery := make([]model.RecoveryPair, 0, len(req.Recovery))
	for _, p := range req.Recovery {
		if p.Question == "" || p.Answer == "" {
			WriteError(w, NewInvalidRequestError("recovery pairs need a question and an answer"))
			return
		}
		recovery = append(recovery, model.RecoveryPair{Question: p.Question, Answer: p.Answer})
	}

	writeCode(w, h.commands.CreateAccountAndJoin(r.Context(), req.Name, req.Password, recovery))
}

// Leave handles POST /api/v1/players/{name}/leave
func (h *PlayerHandler) Leave(w http.ResponseWriter, r *http.Request) {
	writeCode(w, h.commands.Leave(r.Context(), pathName(r)))
}

// Delete handles DELETE /api/v1/players/{name}
func (h *PlayerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	writeCode(w, h.commands.DeleteAccount(r.Context(), pathName(r)))
}

// Heartbeat handles POST /api/v1/players/{name}/heartbeat
func (h *PlayerHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	writeCode(w, h.commands.Heartbeat(r.Context(), pathName(r)))
}

// VerifyPassword handles POST /api/v1/players/{name}/password/verify
func (h *PlayerHandler) VerifyPassword(w http.ResponseWriter, r *http.Request) {
	var req request.PasswordRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	writeCode(w, h.commands.VerifyPassword(r.Context(), pathName(r), req.Password))
}

// ResetPassword handles PUT /api/v1/players/{name}/password
func (h *PlayerHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req request.PasswordRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Password == "" {
		WriteError(w, NewInvalidRequestError("password is required"))
		return
	}
	writeCode(w, h.commands.ResetPassword(r.Context(), pathName(r), req.Password))
}

// Question handles GET /api/v1/players/{name}/recovery/{index}/question
func (h *PlayerHandler) Question(w http.ResponseWriter, r *http.Request) {
	n, err := pathIndex(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	text, err := h.commands.Question(r.Context(), pathName(r), n)
	writeText(w, text, err)
}

// Answer handles GET /api/v1/players/{name}/recovery/{index}/answer
func (h *PlayerHandler) Answer(w http.ResponseWriter, r *http.Request) {
	n, err := pathIndex(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	text, err := h.commands.Answer(r.Context(), pathName(r), n)
	writeText(w, text, err)
}
