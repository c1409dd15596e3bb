// Package session — repository.go выполняет все операции с таблицей game_sessions.
// Захват сессии — это ОДИН условный UPDATE: атомарность обеспечивает сама
// PostgreSQL, никаких блокировок в процессе не нужно.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository работает с таблицей game_sessions в БД.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий сессий.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Claim атомарно захватывает сессию: переводит её из pending_pickup
// в in_progress и записывает идентификатор хелпера.
//
// Если два хелпера гонятся за одной сессией, условие status='pending_pickup'
// выполнится ровно у одного; второй получит (nil, nil) — это НЕ ошибка,
// а штатный исход гонки или дубликата уведомления.
//
// Возвращает:
//   - (*Session, nil): захват удался, строка в состоянии на момент захвата
//   - (nil, nil): подходящей строки нет (проигранная гонка, чужой статус,
//     неизвестный идентификатор)
//   - (nil, error): транзиентная ошибка БД, состояние сессии не изменилось
func (r *Repository) Claim(ctx context.Context, mainBotGameID, helperBotID string) (*Session, error) {
	query := `
		UPDATE game_sessions
		SET status = $3, helper_bot_id = $2, updated_at = NOW()
		WHERE main_bot_game_id = $1 AND status = $4
		RETURNING session_id, main_bot_game_id, status, helper_bot_id,
		          game_state_json, bet_amount_lamports, chat_id, initiator_id, updated_at
	`
	var s Session
	err := r.db.QueryRow(ctx, query,
		mainBotGameID, helperBotID, StatusInProgress, StatusPendingPickup,
	).Scan(
		&s.SessionID, &s.MainBotGameID, &s.Status, &s.HelperBotID,
		&s.GameStateJSON, &s.BetAmountLamports, &s.ChatID, &s.InitiatorID, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка захвата сессии %s: %w", mainBotGameID, err)
	}
	return &s, nil
}

// Finalize безусловно записывает терминальный статус и финальное состояние игры.
// Текущий статус не перепроверяется: к этому моменту сессия захвачена нами
// и текущий шаг авторитетен. Повторный вызов с теми же аргументами
// не меняет ничего, кроме updated_at.
func (r *Repository) Finalize(ctx context.Context, sessionID int64, status Status, gameState json.RawMessage) error {
	query := `
		UPDATE game_sessions
		SET status = $2, game_state_json = $3, updated_at = NOW()
		WHERE session_id = $1
	`
	_, err := r.db.Exec(ctx, query, sessionID, status, gameState)
	if err != nil {
		return fmt.Errorf("ошибка финализации сессии %d: %w", sessionID, err)
	}
	return nil
}

// FindStalePending возвращает идентификаторы сессий, которые висят
// в pending_pickup дольше olderThan — уведомление потерялось или все
// хелперы были офлайн. Их можно безопасно прогнать через обычный захват.
func (r *Repository) FindStalePending(ctx context.Context, olderThan time.Duration) ([]string, error) {
	query := `
		SELECT main_bot_game_id
		FROM game_sessions
		WHERE status = $1 AND updated_at < NOW() - ($2 * interval '1 second')
		ORDER BY updated_at
		LIMIT 100
	`
	rows, err := r.db.Query(ctx, query, StatusPendingPickup, olderThan.Seconds())
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска зависших pending-сессий: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ошибка чтения идентификатора: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// FindStuckInProgress возвращает сессии, застрявшие в in_progress дольше
// olderThan. Хелпер их НЕ трогает (владелец мог просто быть медленным) —
// список нужен оператору для ручной сверки.
func (r *Repository) FindStuckInProgress(ctx context.Context, olderThan time.Duration) ([]Session, error) {
	query := `
		SELECT session_id, main_bot_game_id, status, helper_bot_id,
		       game_state_json, bet_amount_lamports, chat_id, initiator_id, updated_at
		FROM game_sessions
		WHERE status = $1 AND updated_at < NOW() - ($2 * interval '1 second')
		ORDER BY updated_at
		LIMIT 100
	`
	rows, err := r.db.Query(ctx, query, StatusInProgress, olderThan.Seconds())
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска застрявших in_progress-сессий: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(
			&s.SessionID, &s.MainBotGameID, &s.Status, &s.HelperBotID,
			&s.GameStateJSON, &s.BetAmountLamports, &s.ChatID, &s.InitiatorID, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка чтения сессии: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
