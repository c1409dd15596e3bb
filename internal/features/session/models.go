// Package session реализует эксклюзивный захват и розыгрыш игровых сессий,
// созданных главным ботом. models.go описывает запись сессии и её статусы.
package session

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status — статус жизненного цикла сессии.
// Переходы только вперёд: pending_pickup → in_progress → терминальный.
// Из терминального статуса выхода нет (кроме ручного вмешательства оператора).
type Status string

const (
	// StatusPendingPickup — создана главным ботом, ждёт захвата хелпером
	StatusPendingPickup Status = "pending_pickup"
	// StatusInProgress — захвачена ровно одним хелпером, идёт розыгрыш
	StatusInProgress Status = "in_progress"
	// StatusCompletedBust — терминальный: выпала единица
	StatusCompletedBust Status = "completed_bust"
	// StatusCompletedWin — терминальный: сумма попала в тир
	StatusCompletedWin Status = "completed_win"
	// StatusCompletedLossNoTier — терминальный: без единиц, но мимо всех тиров
	StatusCompletedLossNoTier Status = "completed_loss_no_tier"
	// StatusCompletedError — терминальный: ошибка после захвата,
	// в game_state_json записан диагностический фрагмент "error"
	StatusCompletedError Status = "completed_error"
)

// IsTerminal сообщает, является ли статус терминальным.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompletedBust, StatusCompletedWin, StatusCompletedLossNoTier, StatusCompletedError:
		return true
	}
	return false
}

// Session — запись игровой сессии в таблице game_sessions.
// Создаётся главным ботом, хелпер её только захватывает и завершает.
type Session struct {
	SessionID         int64           `db:"session_id"`
	MainBotGameID     string          `db:"main_bot_game_id"`
	Status            Status          `db:"status"`
	HelperBotID       *string         `db:"helper_bot_id"` // nil до захвата
	GameStateJSON     json.RawMessage `db:"game_state_json"`
	BetAmountLamports int64           `db:"bet_amount_lamports"`
	ChatID            int64           `db:"chat_id"`
	InitiatorID       int64           `db:"initiator_id"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

// MergeGameState вливает фрагмент в game_state_json сессии.
// Существующие ключи перезаписываются, остальные сохраняются —
// состояние игры накапливается по мере розыгрыша.
func (s *Session) MergeGameState(fragment map[string]any) error {
	state := map[string]any{}
	if len(s.GameStateJSON) > 0 {
		if err := json.Unmarshal(s.GameStateJSON, &state); err != nil {
			// Битый JSON в сессии — начинаем с чистого состояния,
			// но сохраняем исходник для разбора оператором
			state = map[string]any{"corrupted_state": string(s.GameStateJSON)}
		}
	}
	for k, v := range fragment {
		state[k] = v
	}
	merged, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("ошибка сериализации game_state: %w", err)
	}
	s.GameStateJSON = merged
	return nil
}
