package game

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/mcoot/textworld/internal/model"
	"github.com/mcoot/textworld/internal/world"
)

// Look describes the player's current room
func (c *Controller) Look(ctx context.Context, name string) (string, error) {
	s, err := c.acquire(name)
	if err != nil {
		return "", err
	}
	defer s.mu.Unlock()

	return c.describe(s), nil
}

// Left turns the player 90 degrees anticlockwise
func (c *Controller) Left(ctx context.Context, name string) (string, error) {
	return c.turn(name, model.Direction.Left)
}

// Right turns the player 90 degrees clockwise
func (c *Controller) Right(ctx context.Context, name string) (string, error) {
	return c.turn(name, model.Direction.Right)
}

func (c *Controller) turn(name string, rotate func(model.Direction) model.Direction) (string, error) {
	s, err := c.acquire(name)
	if err != nil {
		return "", err
	}
	defer s.mu.Unlock()

	s.facing = rotate(s.facing)
	return fmt.Sprintf("You are now facing %s.", s.facing), nil
}

// Say speaks to everyone else in the room
// The speaker gets the line back as the result and never as a push
func (c *Controller) Say(ctx context.Context, name, message string) (string, error) {
	s, err := c.acquire(name)
	if err != nil {
		return "", err
	}
	defer s.mu.Unlock()

	line := fmt.Sprintf("%s says: %s", s.name, message)
	rs := c.rooms[s.room]
	rs.mu.Lock()
	broadcast(rs.others(s.key), line)
	rs.mu.Unlock()
	return line, nil
}

// Move walks up to distance rooms in the facing direction, stopping at the first missing exit
// The result reports how far the player got followed by a description of where they ended up
func (c *Controller) Move(ctx context.Context, name string, distance int) (string, error) {
	s, err := c.acquire(name)
	if err != nil {
		return "", err
	}
	defer s.mu.Unlock()

	if distance <= 0 {
		return "You stay where you are.", nil
	}

	walk, steps := c.plan(s.room, s.facing, distance)
	for range walk {
		to, _ := c.world.Neighbor(s.room, s.facing)
		c.step(s, to)
	}

	var b strings.Builder
	switch {
	case steps == 0:
		fmt.Fprintf(&b, "You moved 0 steps. There is no exit to the %s.", s.facing)
	case steps == 1:
		fmt.Fprintf(&b, "You moved 1 step to %s.", c.world.Title(s.room))
	default:
		fmt.Fprintf(&b, "You moved %d steps to %s.", steps, c.world.Title(s.room))
	}
	if steps > 0 && steps < distance {
		fmt.Fprintf(&b, " The way %s is blocked.", s.facing)
	}
	b.WriteString("\n\n")
	b.WriteString(c.describe(s))
	return b.String(), nil
}

// plan works out a move before any room is touched
// It returns the number of single steps to actually take and the number the move counts as.
// Once the path revisits a room the rest of the move only repeats that loop, so whole laps
// are skipped and walk never exceeds the number of rooms.
func (c *Controller) plan(start world.RoomID, facing model.Direction, distance int) (walk, steps int) {
	seen := map[world.RoomID]int{start: 0}
	room := start
	for n := 0; n < distance; n++ {
		next, ok := c.world.Neighbor(room, facing)
		if !ok {
			return n, n
		}
		if first, looped := seen[next]; looped {
			cycle := n + 1 - first
			return first + (distance-first)%cycle, distance
		}
		seen[next] = n + 1
		room = next
	}
	return distance, distance
}

// step transfers s between two rooms under both room locks; s.mu must be held
func (c *Controller) step(s *Session, to world.RoomID) {
	from := s.room
	src, dst := c.rooms[from], c.rooms[to]

	first, second := src, dst
	if to < from {
		first, second = dst, src
	}
	first.mu.Lock()
	if first != second {
		second.mu.Lock()
	}

	delete(src.occupants, s.key)
	leftBehind := src.others(s.key)
	ahead := dst.others(s.key)
	dst.occupants[s.key] = s
	s.room = to

	broadcast(leftBehind, fmt.Sprintf("%s leaves heading %s.", s.name, s.facing))
	broadcast(ahead, fmt.Sprintf("%s arrives from the %s.", s.name, s.facing.Opposite()))

	if first != second {
		second.mu.Unlock()
	}
	first.mu.Unlock()
}

// Pickup moves one named object from the room into the player's inventory
func (c *Controller) Pickup(ctx context.Context, name, target string) (string, error) {
	s, err := c.acquire(name)
	if err != nil {
		return "", err
	}
	defer s.mu.Unlock()

	target = strings.TrimSpace(target)
	rs := c.rooms[s.room]
	rs.mu.Lock()
	defer rs.mu.Unlock()

	i := slices.IndexFunc(rs.objects, func(o string) bool { return strings.EqualFold(o, target) })
	if i < 0 {
		return fmt.Sprintf("There is no %s here.", target), nil
	}
	obj := rs.objects[i]
	rs.objects = slices.Delete(rs.objects, i, i+1)
	s.inventory = append(s.inventory, obj)
	return fmt.Sprintf("You pick up the %s.", obj), nil
}

// PickupAll moves every object in the room into the player's inventory
func (c *Controller) PickupAll(ctx context.Context, name string) (string, error) {
	s, err := c.acquire(name)
	if err != nil {
		return "", err
	}
	defer s.mu.Unlock()

	rs := c.rooms[s.room]
	rs.mu.Lock()
	taken := rs.objects
	rs.objects = nil
	s.inventory = append(s.inventory, taken...)
	rs.mu.Unlock()

	if len(taken) == 0 {
		return "There is nothing here to pick up.", nil
	}
	return fmt.Sprintf("You pick up: %s.", strings.Join(taken, ", ")), nil
}

// Inventory lists what the player carries
func (c *Controller) Inventory(ctx context.Context, name string) (string, error) {
	s, err := c.acquire(name)
	if err != nil {
		return "", err
	}
	defer s.mu.Unlock()

	if len(s.inventory) == 0 {
		return "You are not carrying anything.", nil
	}
	return fmt.Sprintf("You are carrying: %s.", strings.Join(s.inventory, ", ")), nil
}

// describe renders the player's room; s.mu must be held
func (c *Controller) describe(s *Session) string {
	room, _ := c.world.RoomAt(s.room)

	rs := c.rooms[s.room]
	rs.mu.Lock()
	objects := slices.Clone(rs.objects)
	var names []string
	for _, o := range rs.others(s.key) {
		names = append(names, o.name)
	}
	rs.mu.Unlock()

	var b strings.Builder
	b.WriteString(room.Title)
	if room.Description != "" {
		b.WriteString("\n")
		b.WriteString(room.Description)
	}

	exits := c.world.ExitDirections(s.room)
	if len(exits) == 0 {
		b.WriteString("\nThere are no exits.")
	} else {
		parts := make([]string, len(exits))
		for i, d := range exits {
			parts[i] = d.String()
		}
		fmt.Fprintf(&b, "\nExits: %s.", strings.Join(parts, ", "))
	}
	if len(objects) > 0 {
		fmt.Fprintf(&b, "\nYou see: %s.", strings.Join(objects, ", "))
	}
	if len(names) > 0 {
		fmt.Fprintf(&b, "\nAlso here: %s.", strings.Join(names, ", "))
	}
	fmt.Fprintf(&b, "\nYou are facing %s.", s.facing)
	return b.String()
}
