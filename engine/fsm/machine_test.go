package fsm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/tristris/engine/fsm"
)

type mode struct {
	name    string
	emit    fsm.Emitter
	entered int
}

func (m *mode) Enter() { m.entered++ }

func factory(name string) fsm.Factory[*mode] {
	return func(emit fsm.Emitter) *mode {
		return &mode{name: name, emit: emit}
	}
}

func modes() map[string]fsm.Factory[*mode] {
	return map[string]fsm.Factory[*mode]{
		"title": factory("title"),
		"game":  factory("game"),
		"pause": factory("pause"),
	}
}

var table = []fsm.Transition{
	{Event: "game/start", From: "title", To: "game"},
	{Event: "game/exitToTitle", From: "game", To: "title"},
	{Event: "game/exitToTitle", From: "title", To: "title"},
	{Event: "game/pause", From: "game", To: "pause"},
	{Event: "game/unpause", From: "pause", To: "game"},
}

func TestMachineTransitions(t *testing.T) {
	m, err := fsm.New("title", modes(), table)
	require.NoError(t, err)
	assert.Equal(t, "title", m.Current())
	assert.Equal(t, "title", m.State().name)

	t.Run("pause is ignored on the title screen", func(t *testing.T) {
		assert.False(t, m.Dispatch("game/pause"))
		assert.Equal(t, "title", m.Current())
	})

	t.Run("start, pause, unpause, exit", func(t *testing.T) {
		assert.True(t, m.Dispatch("game/start"))
		assert.Equal(t, "game", m.Current())

		assert.True(t, m.Dispatch("game/pause"))
		assert.Equal(t, "pause", m.Current())
		assert.Equal(t, "pause", m.State().name)

		assert.False(t, m.Dispatch("game/pause"), "pausing twice is a no-op")
		assert.Equal(t, "pause", m.Current())

		assert.True(t, m.Dispatch("game/unpause"))
		assert.True(t, m.Dispatch("game/exitToTitle"))
		assert.Equal(t, "title", m.Current())

		assert.True(t, m.Dispatch("game/exitToTitle"), "title to title is declared")
		assert.Equal(t, "title", m.Current())
	})

	t.Run("unknown events are ignored", func(t *testing.T) {
		assert.False(t, m.Dispatch("game/explode"))
		assert.Equal(t, "title", m.Current())
	})
}

func TestMachineKeepsOneInstancePerState(t *testing.T) {
	m, err := fsm.New("title", modes(), table)
	require.NoError(t, err)

	game, ok := m.Lookup("game")
	require.True(t, ok)

	m.Dispatch("game/start")
	m.Dispatch("game/pause")
	m.Dispatch("game/unpause")
	assert.Same(t, game, m.State())
	assert.Equal(t, []string{"game", "pause", "title"}, m.States())
}

func TestMachineCallsEnterOnceAtConstruction(t *testing.T) {
	m, err := fsm.New("title", modes(), table)
	require.NoError(t, err)

	for _, name := range m.States() {
		s, _ := m.Lookup(name)
		assert.Equal(t, 1, s.entered, name)
	}

	m.Dispatch("game/start")
	s, _ := m.Lookup("game")
	assert.Equal(t, 1, s.entered, "dispatch does not call Enter")
}

func TestMachineStatesEmitEvents(t *testing.T) {
	m, err := fsm.New("title", modes(), table)
	require.NoError(t, err)

	m.State().emit.Emit("game/start")
	assert.Equal(t, "game", m.Current())
	assert.True(t, m.Can("game/pause"))
	assert.False(t, m.Can("game/start"))
}

func TestMachineObserver(t *testing.T) {
	var seen [][3]string
	m, err := fsm.New("title", modes(), table, fsm.WithObserver(func(event, from, to string) {
		seen = append(seen, [3]string{event, from, to})
	}))
	require.NoError(t, err)

	m.Dispatch("game/pause")
	m.Dispatch("game/start")
	m.Dispatch("game/pause")

	assert.Equal(t, [][3]string{
		{"game/start", "title", "game"},
		{"game/pause", "game", "pause"},
	}, seen)
}

func TestMachineConfigurationErrors(t *testing.T) {
	cases := []struct {
		name        string
		initial     string
		states      map[string]fsm.Factory[*mode]
		transitions []fsm.Transition
	}{
		{
			name:        "unknown initial",
			initial:     "credits",
			states:      modes(),
			transitions: table,
		},
		{
			name:    "unknown source",
			initial: "title",
			states:  modes(),
			transitions: []fsm.Transition{
				{Event: "game/start", From: "menu", To: "game"},
			},
		},
		{
			name:    "unknown target",
			initial: "title",
			states:  modes(),
			transitions: []fsm.Transition{
				{Event: "game/over", From: "game", To: "scores"},
			},
		},
		{
			name:    "duplicate event and source",
			initial: "title",
			states:  modes(),
			transitions: []fsm.Transition{
				{Event: "game/start", From: "title", To: "game"},
				{Event: "game/start", From: "title", To: "pause"},
			},
		},
		{
			name:    "empty event",
			initial: "title",
			states:  modes(),
			transitions: []fsm.Transition{
				{From: "title", To: "game"},
			},
		},
		{
			name:    "nil factory",
			initial: "title",
			states: map[string]fsm.Factory[*mode]{
				"title": nil,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := fsm.New(tc.initial, tc.states, tc.transitions)
			require.ErrorIs(t, err, fsm.ErrInvalidConfiguration)
			assert.Nil(t, m)
		})
	}
}

type screen interface {
	Name() string
}

func TestMachineRejectsNilStates(t *testing.T) {
	_, err := fsm.New("title", map[string]fsm.Factory[screen]{
		"title": func(fsm.Emitter) screen { return nil },
	}, nil)
	require.ErrorIs(t, err, fsm.ErrInvalidConfiguration)
}
