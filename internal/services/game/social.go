package game

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/mcoot/textworld/internal/model"
)

// AddFriend adds an existing account to the player's friend list
// Adding someone already on the list is a no-op
func (c *Controller) AddFriend(ctx context.Context, name, friend string) error {
	s, err := c.acquire(name)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()

	if !c.accounts.Exists(friend) {
		return model.ErrAccountNotFound
	}
	if friendIndex(s.friends, friend) >= 0 {
		return nil
	}
	s.friends = append(s.friends, friend)
	return nil
}

// RemoveFriend drops a name from the player's friend list
func (c *Controller) RemoveFriend(ctx context.Context, name, friend string) error {
	s, err := c.acquire(name)
	if err != nil {
		return err
	}
	defer s.mu.Unlock()

	i := friendIndex(s.friends, friend)
	if i < 0 {
		return model.ErrFriendNotFound
	}
	s.friends = slices.Delete(s.friends, i, i+1)
	return nil
}

// ViewOnlineFriends lists the player's friends that are currently logged in
func (c *Controller) ViewOnlineFriends(ctx context.Context, name string) (string, error) {
	s, err := c.acquire(name)
	if err != nil {
		return "", err
	}
	defer s.mu.Unlock()

	var online []string
	c.mu.RLock()
	for _, f := range s.friends {
		if other, ok := c.sessions[model.FoldUsername(f)]; ok {
			online = append(online, other.name)
		}
	}
	c.mu.RUnlock()

	if len(online) == 0 {
		return "None of your friends are online.", nil
	}
	return fmt.Sprintf("Online friends: %s.", strings.Join(online, ", ")), nil
}

func friendIndex(friends []string, name string) int {
	key := model.FoldUsername(name)
	return slices.IndexFunc(friends, func(f string) bool { return model.FoldUsername(f) == key })
}

// WhiteboardRead shows what is written on the room's whiteboard
func (c *Controller) WhiteboardRead(ctx context.Context, name string) (string, error) {
	s, err := c.acquire(name)
	if err != nil {
		return "", err
	}
	defer s.mu.Unlock()

	rs := c.rooms[s.room]
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if len(rs.board) == 0 {
		return "The whiteboard is blank.", nil
	}
	return "The whiteboard reads:\n" + strings.Join(rs.board, "\n"), nil
}

// WhiteboardWrite adds a line to the room's whiteboard
func (c *Controller) WhiteboardWrite(ctx context.Context, name, text string) (string, error) {
	s, err := c.acquire(name)
	if err != nil {
		return "", err
	}
	defer s.mu.Unlock()

	text = strings.TrimSpace(text)
	if text == "" {
		return "You write nothing on the whiteboard.", nil
	}

	rs := c.rooms[s.room]
	rs.mu.Lock()
	rs.board = append(rs.board, text)
	broadcast(rs.others(s.key), fmt.Sprintf("%s writes on the whiteboard: %s", s.name, text))
	rs.mu.Unlock()
	return "You write on the whiteboard.", nil
}

// WhiteboardErase wipes the room's whiteboard
func (c *Controller) WhiteboardErase(ctx context.Context, name string) (string, error) {
	s, err := c.acquire(name)
	if err != nil {
		return "", err
	}
	defer s.mu.Unlock()

	rs := c.rooms[s.room]
	rs.mu.Lock()
	rs.board = nil
	broadcast(rs.others(s.key), s.name+" erases the whiteboard.")
	rs.mu.Unlock()
	return "You erase the whiteboard.", nil
}
