// Package fsm implements the top-level mode machine: a fixed set of named,
// long-lived states and a table of (event, from) -> to transitions.
package fsm

import (
	"errors"
	"fmt"
	"sort"
)

var ErrInvalidConfiguration = errors.New("invalid state machine configuration")

// Transition moves the machine from From to To when Event is dispatched
// while From is active.
type Transition struct {
	Event string `toml:"event" yaml:"event"`
	From  string `toml:"from" yaml:"from"`
	To    string `toml:"to" yaml:"to"`
}

// Emitter raises events on the machine that owns the state.
type Emitter interface {
	Emit(event string)
}

// Factory builds the single instance of a state.
type Factory[S any] func(emit Emitter) S

// Enterer is implemented by states that want a hook when they are built.
type Enterer interface {
	Enter()
}

// Observer is told about every transition taken.
type Observer func(event, from, to string)

type options struct {
	observers []Observer
}

type Option func(*options)

func WithObserver(fn Observer) Option {
	return func(o *options) {
		o.observers = append(o.observers, fn)
	}
}

type ruleKey struct {
	event string
	from  string
}

type Machine[S any] struct {
	current     string
	states      map[string]S
	names       []string
	transitions []Transition
	rules       map[ruleKey]string
	observers   []Observer
}

// New validates the configuration and builds every state. Construction fails
// when the initial state is not declared, a transition names an undeclared
// state, or two transitions share the same event and source state.
func New[S any](initial string, states map[string]Factory[S], transitions []Transition, opts ...Option) (*Machine[S], error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	names := make([]string, 0, len(states))
	for name, factory := range states {
		if name == "" {
			return nil, fmt.Errorf("%w: state with an empty name", ErrInvalidConfiguration)
		}
		if factory == nil {
			return nil, fmt.Errorf("%w: state %q has no factory", ErrInvalidConfiguration, name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	if _, ok := states[initial]; !ok {
		return nil, fmt.Errorf("%w: initial state %q is not declared (states: %v)", ErrInvalidConfiguration, initial, names)
	}

	rules := make(map[ruleKey]string, len(transitions))
	for i, t := range transitions {
		if t.Event == "" {
			return nil, fmt.Errorf("%w: transition %d has no event", ErrInvalidConfiguration, i)
		}
		if _, ok := states[t.From]; !ok {
			return nil, fmt.Errorf("%w: transition %q references undeclared state %q", ErrInvalidConfiguration, t.Event, t.From)
		}
		if _, ok := states[t.To]; !ok {
			return nil, fmt.Errorf("%w: transition %q references undeclared state %q", ErrInvalidConfiguration, t.Event, t.To)
		}
		key := ruleKey{event: t.Event, from: t.From}
		if to, ok := rules[key]; ok {
			return nil, fmt.Errorf("%w: duplicate transition %q from %q (to %q and %q)", ErrInvalidConfiguration, t.Event, t.From, to, t.To)
		}
		rules[key] = t.To
	}

	m := &Machine[S]{
		current:     initial,
		states:      make(map[string]S, len(states)),
		names:       names,
		transitions: append([]Transition(nil), transitions...),
		rules:       rules,
		observers:   o.observers,
	}

	for _, name := range names {
		s := states[name](m)
		if any(s) == nil {
			return nil, fmt.Errorf("%w: factory for %q returned nil", ErrInvalidConfiguration, name)
		}
		m.states[name] = s
	}
	for _, name := range names {
		if e, ok := any(m.states[name]).(Enterer); ok {
			e.Enter()
		}
	}

	return m, nil
}

// Dispatch takes the transition matching event from the active state. Events
// without a matching rule are ignored and Dispatch returns false.
func (m *Machine[S]) Dispatch(event string) bool {
	to, ok := m.rules[ruleKey{event: event, from: m.current}]
	if !ok {
		return false
	}
	from := m.current
	m.current = to
	for _, fn := range m.observers {
		fn(event, from, to)
	}
	return true
}

// Emit is Dispatch without the result, so states can raise events.
func (m *Machine[S]) Emit(event string) {
	m.Dispatch(event)
}

// Can reports whether event would cause a transition from the active state.
func (m *Machine[S]) Can(event string) bool {
	_, ok := m.rules[ruleKey{event: event, from: m.current}]
	return ok
}

// State returns the active state instance.
func (m *Machine[S]) State() S {
	return m.states[m.current]
}

// Current returns the name of the active state.
func (m *Machine[S]) Current() string {
	return m.current
}

// Lookup returns the instance registered under name.
func (m *Machine[S]) Lookup(name string) (S, bool) {
	s, ok := m.states[name]
	return s, ok
}

// States returns the declared state names, sorted.
func (m *Machine[S]) States() []string {
	return append([]string(nil), m.names...)
}

func (m *Machine[S]) Transitions() []Transition {
	return append([]Transition(nil), m.transitions...)
}
