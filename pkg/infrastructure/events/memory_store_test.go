package events

import (
	"errors"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryEventStore_StreamsAndVersions(t *testing.T) {
	store := NewInMemoryEventStore(logr.Discard())

	require.NoError(t, store.AppendEvent("base", NewEvent(ScenarioQueuedEvent, "base", ScenarioQueued{})))
	require.NoError(t, store.AppendEvent("tight", NewEvent(ScenarioQueuedEvent, "tight", ScenarioQueued{})))
	require.NoError(t, store.AppendEvent("base", NewEvent(ScenarioStartedEvent, "base", ScenarioStarted{})))

	base, err := store.ReadEvents("base", 1)
	require.NoError(t, err)
	require.Len(t, base, 2)
	assert.Equal(t, 1, base[0].Version())
	assert.Equal(t, 2, base[1].Version())
	assert.Equal(t, ScenarioStartedEvent, base[1].Type())

	tail, err := store.ReadEvents("base", 2)
	require.NoError(t, err)
	assert.Len(t, tail, 1)

	all, err := store.ReadAllEvents(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := store.ReadEvents("missing", 1)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestInMemoryEventStore_SynchronousSubscribers(t *testing.T) {
	store := NewInMemoryEventStore(logr.Discard())

	var solved, everything []string
	solvedHandler := &HandlerFunc{
		Types: []string{ScenarioSolvedEvent},
		Fn: func(e Event) error {
			solved = append(solved, e.StreamID())
			return nil
		},
	}
	allHandler := &HandlerFunc{Fn: func(e Event) error {
		everything = append(everything, e.Type())
		return errors.New("handler errors are logged, not returned")
	}}
	require.NoError(t, store.Subscribe([]string{ScenarioSolvedEvent}, solvedHandler))
	require.NoError(t, store.Subscribe(nil, allHandler))

	require.NoError(t, store.AppendEvent("a", NewEvent(ScenarioStartedEvent, "a", ScenarioStarted{})))
	require.NoError(t, store.AppendEvent("a", NewEvent(ScenarioSolvedEvent, "a", ScenarioSolved{Status: "optimal"})))

	assert.Equal(t, []string{"a"}, solved)
	assert.Equal(t, []string{ScenarioStartedEvent, ScenarioSolvedEvent}, everything)

	require.NoError(t, store.Unsubscribe(solvedHandler))
	require.NoError(t, store.AppendEvent("b", NewEvent(ScenarioSolvedEvent, "b", ScenarioSolved{})))
	assert.Equal(t, []string{"a"}, solved)
}
