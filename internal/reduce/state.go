// Package reduce rewrites terms toward weak-head normal form while
// extracting every mutable cell and event channel into an explicit
// state accumulator. The extracted state later becomes the persistent
// state record of the generated program.
package reduce

import (
	"chime/internal/term"
)

// Cell is one extracted mutable cell: a generated unique name and the
// reduced initializer it is reset to.
type Cell struct {
	Name string
	Init *term.Term
}

// Event is one extracted event channel, named after its boolean flag
// cell. Pending handlers are collected during reduction; registrations
// never survive across synthesis calls, which the code generator
// models by clearing every flag at the top of the entry function.
type Event struct {
	Name     string
	Handlers []*term.Term
}

// State accumulates the effects extracted while reducing a subterm.
// It is created empty, populated by cell and event rules, merged
// upward, and consumed once at the top level.
type State struct {
	Cells  []Cell
	Events []Event
}

// AddCell records an extracted cell. Names are unique by construction.
func (s *State) AddCell(name string, init *term.Term) {
	s.Cells = append(s.Cells, Cell{Name: name, Init: init})
}

// AddEvent records an extracted event channel.
func (s *State) AddEvent(name string) {
	s.Events = append(s.Events, Event{Name: name})
}

// AddHandler registers a pending handler on an event channel.
func (s *State) AddHandler(name string, handler *term.Term) {
	for i := range s.Events {
		if s.Events[i].Name == name {
			s.Events[i].Handlers = append(s.Events[i].Handlers, handler)
			return
		}
	}
	s.Events = append(s.Events, Event{Name: name, Handlers: []*term.Term{handler}})
}

// Merge combines another state into this one: set union on cells and
// per-name union of handler lists on events. Nothing is ever dropped.
func (s *State) Merge(o State) {
	for i := range o.Cells {
		if !s.hasCell(o.Cells[i].Name) {
			s.Cells = append(s.Cells, o.Cells[i])
		}
	}
	for i := range o.Events {
		s.mergeEvent(o.Events[i])
	}
}

func (s *State) hasCell(name string) bool {
	for i := range s.Cells {
		if s.Cells[i].Name == name {
			return true
		}
	}
	return false
}

func (s *State) mergeEvent(ev Event) {
	for i := range s.Events {
		if s.Events[i].Name == ev.Name {
			s.Events[i].Handlers = append(s.Events[i].Handlers, ev.Handlers...)
			return
		}
	}
	s.Events = append(s.Events, ev)
}

// CellNames returns the extracted cell names in extraction order.
func (s *State) CellNames() []string {
	out := make([]string, len(s.Cells))
	for i := range s.Cells {
		out[i] = s.Cells[i].Name
	}
	return out
}
