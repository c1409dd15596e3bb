package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusIsTerminal(t *testing.T) {
	assert.False(t, StatusPendingPickup.IsTerminal())
	assert.False(t, StatusInProgress.IsTerminal())
	assert.True(t, StatusCompletedBust.IsTerminal())
	assert.True(t, StatusCompletedWin.IsTerminal())
	assert.True(t, StatusCompletedLossNoTier.IsTerminal())
	assert.True(t, StatusCompletedError.IsTerminal())
}

func TestMergeGameState(t *testing.T) {
	s := &Session{GameStateJSON: json.RawMessage(`{"a":1,"b":"keep"}`)}
	require.NoError(t, s.MergeGameState(map[string]any{"a": 2, "c": true}))

	var state map[string]any
	require.NoError(t, json.Unmarshal(s.GameStateJSON, &state))
	assert.Equal(t, float64(2), state["a"]) // перезаписан
	assert.Equal(t, "keep", state["b"])     // сохранён
	assert.Equal(t, true, state["c"])       // добавлен
}

func TestMergeGameState_EmptyState(t *testing.T) {
	s := &Session{}
	require.NoError(t, s.MergeGameState(map[string]any{"sum": 24}))
	assert.JSONEq(t, `{"sum":24}`, string(s.GameStateJSON))
}

func TestMergeGameState_CorruptedStatePreserved(t *testing.T) {
	s := &Session{GameStateJSON: json.RawMessage(`{broken`)}
	require.NoError(t, s.MergeGameState(map[string]any{"error": "x"}))

	var state map[string]any
	require.NoError(t, json.Unmarshal(s.GameStateJSON, &state))
	assert.Equal(t, "{broken", state["corrupted_state"])
	assert.Equal(t, "x", state["error"])
}
