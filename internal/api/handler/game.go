package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/textworld/internal/api/request"
	"github.com/mcoot/textworld/internal/services/command"
)

// GameHandler handles gameplay endpoints; each answers with a line of text
type GameHandler struct {
	commands command.Service
}

// NewGameHandler creates a new game handler
func NewGameHandler(commands command.Service) *GameHandler {
	return &GameHandler{
		commands: commands,
	}
}

// Look handles GET /api/v1/players/{name}/look
func (h *GameHandler) Look(w http.ResponseWriter, r *http.Request) {
	text, err := h.commands.Look(r.Context(), pathName(r))
	writeText(w, text, err)
}

// Left handles POST /api/v1/players/{name}/left
func (h *GameHandler) Left(w http.ResponseWriter, r *http.Request) {
	text, err := h.commands.Left(r.Context(), pathName(r))
	writeText(w, text, err)
}

// Right handles POST /api/v1/players/{name}/right
func (h *GameHandler) Right(w http.ResponseWriter, r *http.Request) {
	text, err := h.commands.Right(r.Context(), pathName(r))
	writeText(w, text, err)
}

// Say handles POST /api/v1/players/{name}/say
func (h *GameHandler) Say(w http.ResponseWriter, r *http.Request) {
	var req request.SayRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	text, err := h.commands.Say(r.Context(), pathName(r), req.Message)
	writeText(w, text, err)
}

// Move handles POST /api/v1/players/{name}/move
func (h *GameHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req request.MoveRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	text, err := h.commands.Move(r.Context(), pathName(r), req.Distance)
	writeText(w, text, err)
}

// Pickup handles POST /api/v1/players/{name}/pickup
func (h *GameHandler) Pickup(w http.ResponseWriter, r *http.Request) {
	var req request.PickupRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Target == "" {
		WriteError(w, NewInvalidRequestError("target is required"))
		return
	}
	text, err := h.commands.Pickup(r.Context(), pathName(r), req.Target)
	writeText(w, text, err)
}

// PickupAll handles POST /api/v1/players/{name}/pickup-all
func (h *GameHandler) PickupAll(w http.ResponseWriter, r *http.Request) {
	text, err := h.commands.PickupAll(r.Context(), pathName(r))
	writeText(w, text, err)
}

// Inventory handles GET /api/v1/players/{name}/inventory
func (h *GameHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	text, err := h.commands.Inventory(r.Context(), pathName(r))
	writeText(w, text, err)
}

// AddFriend handles POST /api/v1/players/{name}/friends
func (h *GameHandler) AddFriend(w http.ResponseWriter, r *http.Request) {
	var req request.FriendRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Friend == "" {
		WriteError(w, NewInvalidRequestError("friend is required"))
		return
	}
	writeCode(w, h.commands.AddFriend(r.Context(), pathName(r), req.Friend))
}

// RemoveFriend handles DELETE /api/v1/players/{name}/friends/{friend}
func (h *GameHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	writeCode(w, h.commands.RemoveFriend(r.Context(), pathName(r), mux.Vars(r)["friend"]))
}

// OnlineFriends handles GET /api/v1/players/{name}/friends/online
func (h *GameHandler) OnlineFriends(w http.ResponseWriter, r *http.Request) {
	text, err := h.commands.ViewOnlineFriends(r.Context(), pathName(r))
	writeText(w, text, err)
}

// ReadWhiteboard handles GET /api/v1/players/{name}/whiteboard
func (h *GameHandler) ReadWhiteboard(w http.ResponseWriter, r *http.Request) {
	text, err := h.commands.WhiteboardRead(r.Context(), pathName(r))
	writeText(w, text, err)
}

// WriteWhiteboard handles PUT /api/v1/players/{name}/whiteboard
func (h *GameHandler) WriteWhiteboard(w http.ResponseWriter, r *http.Request) {
	var req request.WhiteboardRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	text, err := h.commands.WhiteboardWrite(r.Context(), pathName(r), req.Text)
	writeText(w, text, err)
}

// EraseWhiteboard handles DELETE /api/v1/players/{name}/whiteboard
func (h *GameHandler) EraseWhiteboard(w http.ResponseWriter, r *http.Request) {
	text, err := h.commands.WhiteboardErase(r.Context(), pathName(r))
	writeText(w, text, err)
}
