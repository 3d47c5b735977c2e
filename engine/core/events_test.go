package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/tristris/engine/core"
)

func withEventSystem(t *testing.T) {
	t.Helper()
	require.True(t, core.EventSystemInitialize())
	t.Cleanup(func() { _ = core.EventSystemShutdown() })
}

type listener struct {
	name string
}

func TestEventFireStopsAtFirstHandler(t *testing.T) {
	withEventSystem(t)
	a, b, c := &listener{"a"}, &listener{"b"}, &listener{"c"}

	var calls []string
	handler := func(l *listener, handled bool) core.FnOnEvent {
		return func(core.EventContext) bool {
			calls = append(calls, l.name)
			return handled
		}
	}
	require.True(t, core.EventRegister(core.EVENT_CODE_RESIZED, a, handler(a, false)))
	require.True(t, core.EventRegister(core.EVENT_CODE_RESIZED, b, handler(b, true)))
	require.True(t, core.EventRegister(core.EVENT_CODE_RESIZED, c, handler(c, false)))

	assert.True(t, core.EventFire(core.EventContext{Type: core.EVENT_CODE_RESIZED}))
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestEventRegisterRejectsDuplicates(t *testing.T) {
	withEventSystem(t)
	l := &listener{"l"}
	noop := func(core.EventContext) bool { return false }

	assert.True(t, core.EventRegister(core.EVENT_CODE_KEY_PRESSED, l, noop))
	assert.False(t, core.EventRegister(core.EVENT_CODE_KEY_PRESSED, l, noop))
	assert.True(t, core.EventRegister(core.EVENT_CODE_KEY_RELEASED, l, noop), "other codes are separate")
	assert.False(t, core.EventRegister(core.SystemEventCode(core.MAX_MESSAGE_CODES), l, noop))
}

func TestEventUnregister(t *testing.T) {
	withEventSystem(t)
	l := &listener{"l"}
	fired := 0
	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, l, func(core.EventContext) bool {
		fired++
		return false
	})

	assert.False(t, core.EventFire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT}))
	assert.True(t, core.EventUnregister(core.EVENT_CODE_APPLICATION_QUIT, l))
	assert.False(t, core.EventUnregister(core.EVENT_CODE_APPLICATION_QUIT, l))
	core.EventFire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
	assert.Equal(t, 1, fired)
}

func TestHandlersMayUnregisterWhileFiring(t *testing.T) {
	withEventSystem(t)
	a, b := &listener{"a"}, &listener{"b"}
	var calls []string
	core.EventRegister(core.EVENT_CODE_RESIZED, a, func(core.EventContext) bool {
		calls = append(calls, "a")
		core.EventUnregister(core.EVENT_CODE_RESIZED, a)
		return false
	})
	core.EventRegister(core.EVENT_CODE_RESIZED, b, func(core.EventContext) bool {
		calls = append(calls, "b")
		return false
	})

	core.EventFire(core.EventContext{Type: core.EVENT_CODE_RESIZED})
	core.EventFire(core.EventContext{Type: core.EVENT_CODE_RESIZED})
	assert.Equal(t, []string{"a", "b", "b"}, calls)
}

func TestEventSystemLifecycle(t *testing.T) {
	assert.False(t, core.EventFire(core.EventContext{Type: core.EVENT_CODE_RESIZED}))
	assert.False(t, core.EventRegister(core.EVENT_CODE_RESIZED, &listener{}, func(core.EventContext) bool { return true }))

	withEventSystem(t)
	assert.False(t, core.EventSystemInitialize(), "already initialized")
}

func TestInputProcessKey(t *testing.T) {
	withEventSystem(t)
	require.NoError(t, core.InputInitialize())
	t.Cleanup(func() { _ = core.InputShutdown() })

	var events []core.SystemEventCode
	var keys []core.KeyCode
	record := func(ctx core.EventContext) bool {
		events = append(events, ctx.Type)
		keys = append(keys, ctx.Data.(*core.KeyEvent).KeyCode)
		return false
	}
	l := &listener{}
	core.EventRegister(core.EVENT_CODE_KEY_PRESSED, l, record)
	core.EventRegister(core.EVENT_CODE_KEY_RELEASED, l, record)

	core.InputProcessKey(core.KEY_SPACE, true)
	core.InputProcessKey(core.KEY_SPACE, true)
	assert.True(t, core.InputIsKeyDown(core.KEY_SPACE))
	assert.False(t, core.InputWasKeyDown(core.KEY_SPACE))

	core.InputUpdate()
	assert.True(t, core.InputWasKeyDown(core.KEY_SPACE))

	core.InputProcessKey(core.KEY_SPACE, false)
	assert.False(t, core.InputIsKeyDown(core.KEY_SPACE))
	core.InputProcessKey(core.KEYS_MAX_KEYS, true)

	assert.Equal(t, []core.SystemEventCode{core.EVENT_CODE_KEY_PRESSED, core.EVENT_CODE_KEY_RELEASED}, events)
	assert.Equal(t, []core.KeyCode{core.KEY_SPACE, core.KEY_SPACE}, keys)
}
