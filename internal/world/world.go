// Package world holds the static room graph shared by every session
package world

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/pixil98/go-errors"
	"gopkg.in/yaml.v3"

	"github.com/mcoot/textworld/internal/model"
)

//go:embed default.yaml
var defaultWorld []byte

// RoomID identifies a room
type RoomID string

// Room is the static definition of a room
// Objects is only the initial placement; live contents belong to the game
type Room struct {
	ID          RoomID
	Title       string
	Description string
	Exits       map[model.Direction]RoomID
	Objects     []string
}

// Graph is the room topology; it is never mutated after Build returns
type Graph struct {
	entry RoomID
	rooms map[RoomID]*Room
	ids   []RoomID
}

// Build validates rooms and freezes them into a Graph
func Build(entry RoomID, rooms []Room) (*Graph, error) {
	el := errors.NewErrorList()
	g := &Graph{
		entry: entry,
		rooms: make(map[RoomID]*Room, len(rooms)),
	}

	for _, r := range rooms {
		if r.ID == "" {
			el.Add(fmt.Errorf("room with title %q has no id", r.Title))
			continue
		}
		if _, dup := g.rooms[r.ID]; dup {
			el.Add(fmt.Errorf("duplicate room id %q", r.ID))
			continue
		}
		room := &Room{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			Exits:       make(map[model.Direction]RoomID, len(r.Exits)),
			Objects:     slices.Clone(r.Objects),
		}
		for d, to := range r.Exits {
			room.Exits[d] = to
		}
		g.rooms[r.ID] = room
		g.ids = append(g.ids, r.ID)
	}

	if _, ok := g.rooms[entry]; !ok {
		el.Add(fmt.Errorf("entry room %q does not exist", entry))
	}
	for _, id := range g.ids {
		for d, to := range g.rooms[id].Exits {
			if !d.Valid() {
				el.Add(fmt.Errorf("room %q has an invalid exit direction", id))
			}
			if _, ok := g.rooms[to]; !ok {
				el.Add(fmt.Errorf("room %q exit %s leads to unknown room %q", id, d, to))
			}
		}
	}

	if err := el.Err(); err != nil {
		return nil, err
	}
	sort.Slice(g.ids, func(i, j int) bool { return g.ids[i] < g.ids[j] })
	return g, nil
}

type fileRoom struct {
	ID          string            `yaml:"id"`
	Title       string            `yaml:"title"`
	Description string            `yaml:"description"`
	Exits       map[string]string `yaml:"exits"`
	Objects     []string          `yaml:"objects"`
}

type fileWorld struct {
	Entry string     `yaml:"entry"`
	Rooms []fileRoom `yaml:"rooms"`
}

// Parse builds a Graph from a YAML world definition
func Parse(data []byte) (*Graph, error) {
	var fw fileWorld
	if err := yaml.Unmarshal(data, &fw); err != nil {
		return nil, fmt.Errorf("parse world: %w", err)
	}

	el := errors.NewErrorList()
	rooms := make([]Room, 0, len(fw.Rooms))
	for _, fr := range fw.Rooms {
		r := Room{
			ID:          RoomID(fr.ID),
			Title:       fr.Title,
			Description: strings.TrimSpace(fr.Description),
			Exits:       make(map[model.Direction]RoomID, len(fr.Exits)),
			Objects:     fr.Objects,
		}
		for name, to := range fr.Exits {
			d := model.ParseDirection(name)
			if d == model.DirectionInvalid {
				el.Add(fmt.Errorf("room %q has unknown exit direction %q", fr.ID, name))
				continue
			}
			r.Exits[d] = RoomID(to)
		}
		rooms = append(rooms, r)
	}
	if err := el.Err(); err != nil {
		return nil, err
	}
	return Build(RoomID(fw.Entry), rooms)
}

// Load reads a YAML world file; an empty path selects the built-in world
func Load(path string) (*Graph, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read world file: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in world
func Default() (*Graph, error) {
	return Parse(defaultWorld)
}

// Entry returns the room new sessions start in
func (g *Graph) Entry() RoomID {
	return g.entry
}

// Rooms returns every room id in sorted order
func (g *Graph) Rooms() []RoomID {
	return slices.Clone(g.ids)
}

// RoomAt returns a copy of the room definition
func (g *Graph) RoomAt(id RoomID) (Room, bool) {
	r, ok := g.rooms[id]
	if !ok {
		return Room{}, false
	}
	c := *r
	c.Exits = make(map[model.Direction]RoomID, len(r.Exits))
	for d, to := range r.Exits {
		c.Exits[d] = to
	}
	c.Objects = slices.Clone(r.Objects)
	return c, true
}

// Neighbor returns the room reached by leaving id in direction d
func (g *Graph) Neighbor(id RoomID, d model.Direction) (RoomID, bool) {
	r, ok := g.rooms[id]
	if !ok {
		return "", false
	}
	to, ok := r.Exits[d]
	return to, ok
}

// Title returns the room title, or the id when the room is unknown
func (g *Graph) Title(id RoomID) string {
	if r, ok := g.rooms[id]; ok && r.Title != "" {
		return r.Title
	}
	return string(id)
}

// ExitDirections lists the directions out of a room in clockwise order
func (g *Graph) ExitDirections(id RoomID) []model.Direction {
	r, ok := g.rooms[id]
	if !ok {
		return nil
	}
	var dirs []model.Direction
	for _, d := range model.Directions() {
		if _, ok := r.Exits[d]; ok {
			dirs = append(dirs, d)
		}
	}
	return dirs
}
