package session

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/dice-helper/internal/features/game"
)

// fakeStore имитирует game_sessions: одна сессия, захват под мьютексом —
// та же семантика «ровно один победитель», что у условного UPDATE в БД.
type fakeStore struct {
	mu       sync.Mutex
	session  *Session
	claimErr error

	finalizeErr   error
	finalizeCalls int
	finalStatus   Status
	finalState    json.RawMessage
}

func (f *fakeStore) Claim(_ context.Context, mainBotGameID, helperBotID string) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.claimErr != nil {
		return nil, f.claimErr
	}
	if f.session == nil || f.session.MainBotGameID != mainBotGameID || f.session.Status != StatusPendingPickup {
		return nil, nil
	}
	f.session.Status = StatusInProgress
	f.session.HelperBotID = &helperBotID
	claimed := *f.session
	return &claimed, nil
}

func (f *fakeStore) Finalize(_ context.Context, sessionID int64, status Status, gameState json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finalizeCalls++
	if f.finalizeErr != nil {
		return f.finalizeErr
	}
	f.finalStatus = status
	f.finalState = gameState
	return nil
}

// fakePresenter записывает вызовы; может паниковать для проверки барьера ошибок.
type fakePresenter struct {
	announced  int
	presented  int
	gotMessage int
	lastOut    *game.Outcome
	panicOn    string
}

func (f *fakePresenter) AnnounceRoll(_ context.Context, _ *Session) int {
	if f.panicOn == "announce" {
		panic("transport exploded")
	}
	f.announced++
	return 42
}

func (f *fakePresenter) PresentOutcome(_ context.Context, _ *Session, messageID int, out *game.Outcome) {
	if f.panicOn == "present" {
		panic("transport exploded")
	}
	f.presented++
	f.gotMessage = messageID
	f.lastOut = out
}

type fixedRng struct{ values []int }

func (r *fixedRng) Intn(int) int {
	v := r.values[0]
	r.values = r.values[1:]
	return v
}

func rngFor(rolls ...int) game.Rng {
	values := make([]int, len(rolls))
	for i, v := range rolls {
		values[i] = v - 1
	}
	return &fixedRng{values: values}
}

func pendingSession() *Session {
	return &Session{
		SessionID:         7,
		MainBotGameID:     "g-123",
		Status:            StatusPendingPickup,
		GameStateJSON:     json.RawMessage(`{"created_by":"main_bot"}`),
		BetAmountLamports: 50_000_000,
		ChatID:            -100500,
		InitiatorID:       777,
	}
}

func TestHandleGameReady_WinPath(t *testing.T) {
	store := &fakeStore{session: pendingSession()}
	presenter := &fakePresenter{}
	svc := NewService(store, presenter, rngFor(3, 4, 5, 6, 6), game.DefaultTiers, "helper-1")

	svc.HandleGameReady(context.Background(), "g-123")

	assert.Equal(t, 1, presenter.announced)
	assert.Equal(t, 1, presenter.presented)
	assert.Equal(t, 42, presenter.gotMessage)
	assert.Equal(t, StatusCompletedWin, store.finalStatus)

	var state map[string]any
	require.NoError(t, json.Unmarshal(store.finalState, &state))
	assert.Equal(t, float64(24), state["sum"])
	assert.Equal(t, false, state["is_bust"])
	assert.Equal(t, float64(5), state["payout_multiplier"])
	assert.Equal(t, "Peak Performer!", state["tier_label"])
	// Состояние от главного бота не затирается, а дополняется
	assert.Equal(t, "main_bot", state["created_by"])
}

func TestHandleGameReady_BustPath(t *testing.T) {
	store := &fakeStore{session: pendingSession()}
	presenter := &fakePresenter{}
	svc := NewService(store, presenter, rngFor(6, 6, 1, 6, 6), game.DefaultTiers, "helper-1")

	svc.HandleGameReady(context.Background(), "g-123")

	assert.Equal(t, StatusCompletedBust, store.finalStatus)
	var state map[string]any
	require.NoError(t, json.Unmarshal(store.finalState, &state))
	assert.Equal(t, true, state["is_bust"])
	assert.Equal(t, float64(0), state["payout_multiplier"])
	assert.NotContains(t, state, "tier_label")
}

func TestHandleGameReady_RaceLostIsNotAnError(t *testing.T) {
	store := &fakeStore{session: nil} // сессии нет вовсе
	presenter := &fakePresenter{}
	svc := NewService(store, presenter, rngFor(2, 2, 2, 2, 2), game.DefaultTiers, "helper-1")

	svc.HandleGameReady(context.Background(), "g-unknown")

	assert.Equal(t, 0, presenter.announced)
	assert.Equal(t, 0, store.finalizeCalls)
}

func TestHandleGameReady_ClaimedSessionRejectsSecondClaim(t *testing.T) {
	sess := pendingSession()
	sess.Status = StatusInProgress
	store := &fakeStore{session: sess}
	presenter := &fakePresenter{}
	svc := NewService(store, presenter, rngFor(2, 2, 2, 2, 2), game.DefaultTiers, "helper-2")

	svc.HandleGameReady(context.Background(), "g-123")

	assert.Equal(t, 0, presenter.announced)
	assert.Equal(t, 0, store.finalizeCalls)
}

func TestHandleGameReady_TransientClaimErrorAbandonsAttempt(t *testing.T) {
	store := &fakeStore{session: pendingSession(), claimErr: assert.AnError}
	presenter := &fakePresenter{}
	svc := NewService(store, presenter, rngFor(2, 2, 2, 2, 2), game.DefaultTiers, "helper-1")

	svc.HandleGameReady(context.Background(), "g-123")

	assert.Equal(t, 0, presenter.announced)
	assert.Equal(t, 0, store.finalizeCalls)
}

func TestHandleGameReady_PanicForcesCompletedError(t *testing.T) {
	store := &fakeStore{session: pendingSession()}
	presenter := &fakePresenter{panicOn: "announce"}
	svc := NewService(store, presenter, rngFor(2, 2, 2, 2, 2), game.DefaultTiers, "helper-1")

	assert.NotPanics(t, func() {
		svc.HandleGameReady(context.Background(), "g-123")
	})

	assert.Equal(t, StatusCompletedError, store.finalStatus)
	var state map[string]any
	require.NoError(t, json.Unmarshal(store.finalState, &state))
	assert.Contains(t, state["error"], "transport exploded")
}

func TestHandleGameReady_FinalizeErrorDoesNotPropagate(t *testing.T) {
	store := &fakeStore{session: pendingSession(), finalizeErr: assert.AnError}
	presenter := &fakePresenter{}
	svc := NewService(store, presenter, rngFor(2, 2, 2, 2, 2), game.DefaultTiers, "helper-1")

	assert.NotPanics(t, func() {
		svc.HandleGameReady(context.Background(), "g-123")
	})
	// Результат игроку показан, несмотря на ошибку записи
	assert.Equal(t, 1, presenter.presented)
}

func TestConcurrentClaims_ExactlyOneWinner(t *testing.T) {
	store := &fakeStore{session: pendingSession()}

	const attempts = 32
	var wg sync.WaitGroup
	wins := make(chan *Session, attempts)
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := store.Claim(context.Background(), "g-123", "helper-1")
			if err != nil {
				errs <- err
				return
			}
			if s != nil {
				wins <- s
			}
		}()
	}
	wg.Wait()
	close(wins)
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var winners []*Session
	for s := range wins {
		winners = append(winners, s)
	}
	require.Len(t, winners, 1)
	assert.Equal(t, StatusInProgress, winners[0].Status)
	require.NotNil(t, winners[0].HelperBotID)
	assert.Equal(t, "helper-1", *winners[0].HelperBotID)
}

func TestFinalize_Idempotent(t *testing.T) {
	store := &fakeStore{session: pendingSession()}
	state := json.RawMessage(`{"sum":24}`)

	require.NoError(t, store.Finalize(context.Background(), 7, StatusCompletedWin, state))
	first := store.finalState
	require.NoError(t, store.Finalize(context.Background(), 7, StatusCompletedWin, state))

	assert.Equal(t, StatusCompletedWin, store.finalStatus)
	assert.Equal(t, string(first), string(store.finalState))
}
