// Package command is the boundary between the wire and the game: passwords
// are digested here and never travel further as cleartext
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/textworld/internal/model"
	"github.com/mcoot/textworld/internal/services/game"
	"github.com/mcoot/textworld/internal/services/hasher"
)

// Service is every operation a client can invoke
// Account operations return a response code; gameplay operations return text
type Service interface {
	Join(ctx context.Context, name, password string) model.ResponseCode
	CreateAccountAndJoin(ctx context.Context, name, password string, recovery []model.RecoveryPair) model.ResponseCode
	Look(ctx context.Context, name string) (string, error)
	Left(ctx context.Context, name string) (string, error)
	Right(ctx context.Context, name string) (string, error)
	Say(ctx context.Context, name, message string) (string, error)
	Move(ctx context.Context, name string, distance int) (string, error)
	Pickup(ctx context.Context, name, target string) (string, error)
	PickupAll(ctx context.Context, name string) (string, error)
	Inventory(ctx context.Context, name string) (string, error)
	Leave(ctx context.Context, name string) model.ResponseCode
	DeleteAccount(ctx context.Context, name string) model.ResponseCode
	AddFriend(ctx context.Context, name, friend string) model.ResponseCode
	RemoveFriend(ctx context.Context, name, friend string) model.ResponseCode
	ViewOnlineFriends(ctx context.Context, name string) (string, error)
	Heartbeat(ctx context.Context, name string) model.ResponseCode
	ResetPassword(ctx context.Context, name, password string) model.ResponseCode
	VerifyPassword(ctx context.Context, name, password string) model.ResponseCode
	Question(ctx context.Context, name string, n int) (string, error)
	Answer(ctx context.Context, name string, n int) (string, error)
	WhiteboardRead(ctx context.Context, name string) (string, error)
	WhiteboardWrite(ctx context.Context, name, text string) (string, error)
	WhiteboardErase(ctx context.Context, name string) (string, error)
}

// Ensure Facade implements Service
var _ Service = (*Facade)(nil)

// Facade implements Service on top of the game controller
type Facade struct {
	hasher hasher.Hasher
	game   *game.Controller
	logger *slog.Logger
}

// New creates a new Facade
func New(h hasher.Hasher, g *game.Controller, logger *slog.Logger) *Facade {
	return &Facade{
		hasher: h,
		game:   g,
		logger: logger.With(slog.String("component", "command")),
	}
}

func (f *Facade) digest(password string) (string, error) {
	d, err := f.hasher.Digest(password)
	if err != nil {
		f.logger.Error("failed to digest password", slog.String("error", err.Error()))
		if !errors.Is(err, model.ErrHashFailure) {
			err = fmt.Errorf("%w: %v", model.ErrHashFailure, err)
		}
		return "", err
	}
	return d, nil
}

func (f *Facade) respond(op, name string, err error) model.ResponseCode {
	code := model.ResponseFromError(err)
	if code == model.InternalError || code == model.UnknownFailure {
		f.logger.Error("operation failed",
			slog.String("op", op),
			slog.String("player", name),
			slog.String("error", err.Error()),
		)
	} else {
		f.logger.Debug("operation completed",
			slog.String("op", op),
			slog.String("player", name),
			slog.String("response", code.String()),
		)
	}
	return code
}

// Join hashes the password and logs the player in
func (f *Facade) Join(ctx context.Context, name, password string) model.ResponseCode {
	d, err := f.digest(password)
	if err == nil {
		_, err = f.game.Join(ctx, name, d)
	}
	return f.respond("join", name, err)
}

// CreateAccountAndJoin registers a new account and logs it straight in
func (f *Facade) CreateAccountAndJoin(ctx context.Context, name, password string, recovery []model.RecoveryPair) model.ResponseCode {
	d, err := f.digest(password)
	if err == nil {
		_, err = f.game.CreateAccountAndJoin(ctx, name, d, recovery)
	}
	return f.respond("create", name, err)
}

// Look describes the player's room
func (f *Facade) Look(ctx context.Context, name string) (string, error) {
	return f.game.Look(ctx, name)
}

// Left turns the player a quarter turn anticlockwise
func (f *Facade) Left(ctx context.Context, name string) (string, error) {
	return f.game.Left(ctx, name)
}

// Right turns the player a quarter turn clockwise
func (f *Facade) Right(ctx context.Context, name string) (string, error) {
	return f.game.Right(ctx, name)
}

// Say speaks to everyone in the player's room
func (f *Facade) Say(ctx context.Context, name, message string) (string, error) {
	return f.game.Say(ctx, name, message)
}

// Move walks up to distance rooms in the direction the player faces
func (f *Facade) Move(ctx context.Context, name string, distance int) (string, error) {
	return f.game.Move(ctx, name, distance)
}

// Pickup takes one named item from the room
func (f *Facade) Pickup(ctx context.Context, name, target string) (string, error) {
	return f.game.Pickup(ctx, name, target)
}

// PickupAll takes every item in the room
func (f *Facade) PickupAll(ctx context.Context, name string) (string, error) {
	return f.game.PickupAll(ctx, name)
}

// Inventory lists what the player carries
func (f *Facade) Inventory(ctx context.Context, name string) (string, error) {
	return f.game.Inventory(ctx, name)
}

// Leave logs the player out, saving their profile
func (f *Facade) Leave(ctx context.Context, name string) model.ResponseCode {
	if f.game.Leave(ctx, name) == nil {
		return f.respond("leave", name, model.ErrSessionNotFound)
	}
	return f.respond("leave", name, nil)
}

// DeleteAccount removes the account whether or not it is logged in
func (f *Facade) DeleteAccount(ctx context.Context, name string) model.ResponseCode {
	return f.respond("delete", name, f.game.DeleteAccount(ctx, name))
}

// AddFriend adds an existing account to the player's friend list
func (f *Facade) AddFriend(ctx context.Context, name, friend string) model.ResponseCode {
	return f.respond("add_friend", name, f.game.AddFriend(ctx, name, friend))
}

// RemoveFriend drops a name from the player's friend list
func (f *Facade) RemoveFriend(ctx context.Context, name, friend string) model.ResponseCode {
	return f.respond("remove_friend", name, f.game.RemoveFriend(ctx, name, friend))
}

// ViewOnlineFriends lists the player's friends who are logged in
func (f *Facade) ViewOnlineFriends(ctx context.Context, name string) (string, error) {
	return f.game.ViewOnlineFriends(ctx, name)
}

// Heartbeat keeps the player's session from expiring
func (f *Facade) Heartbeat(ctx context.Context, name string) model.ResponseCode {
	return f.respond("heartbeat", name, f.game.Heartbeat(ctx, name))
}

// ResetPassword replaces the stored digest with one for the new password
func (f *Facade) ResetPassword(ctx context.Context, name, password string) model.ResponseCode {
	d, err := f.digest(password)
	if err == nil {
		err = f.game.ResetPassword(ctx, name, d)
	}
	return f.respond("reset_password", name, err)
}

// VerifyPassword checks a password against the stored digest
func (f *Facade) VerifyPassword(ctx context.Context, name, password string) model.ResponseCode {
	d, err := f.digest(password)
	if err == nil {
		err = f.game.VerifyPassword(ctx, name, d)
	}
	return f.respond("verify_password", name, err)
}

// Question returns the nth recovery question of any account, counting from 1
func (f *Facade) Question(ctx context.Context, name string, n int) (string, error) {
	return f.game.Question(ctx, name, n)
}

// Answer returns the answer to that account's nth recovery question
func (f *Facade) Answer(ctx context.Context, name string, n int) (string, error) {
	return f.game.Answer(ctx, name, n)
}

// WhiteboardRead shows the whiteboard in the player's room
func (f *Facade) WhiteboardRead(ctx context.Context, name string) (string, error) {
	return f.game.WhiteboardRead(ctx, name)
}

// WhiteboardWrite appends a line to the room's whiteboard
func (f *Facade) WhiteboardWrite(ctx context.Context, name, text string) (string, error) {
	return f.game.WhiteboardWrite(ctx, name, text)
}

// WhiteboardErase wipes the room's whiteboard
func (f *Facade) WhiteboardErase(ctx context.Context, name string) (string, error) {
	return f.game.WhiteboardErase(ctx, name)
}
