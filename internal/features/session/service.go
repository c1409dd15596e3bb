// Package session — service.go ведёт сессию от захвата до терминального
// статуса: захват → анонс → бросок → показ результата → финализация.
// Всё после захвата обёрнуто в общий барьер ошибок: сессия никогда
// не остаётся висеть в in_progress.
package session

import (
	"context"
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/dice-helper/internal/features/game"
)

// Store — операции с хранилищем, нужные сервису.
// Реализуется Repository; в тестах подменяется фейком.
type Store interface {
	Claim(ctx context.Context, mainBotGameID, helperBotID string) (*Session, error)
	Finalize(ctx context.Context, sessionID int64, status Status, gameState json.RawMessage) error
}

// Presenter показывает игроку ход розыгрыша.
// Все операции best-effort: доставка сообщения не влияет на результат,
// авторитетен только сохранённый статус.
type Presenter interface {
	// AnnounceRoll отправляет анонс броска и возвращает id сообщения
	// для последующего редактирования (0 — отправить не удалось).
	AnnounceRoll(ctx context.Context, s *Session) int
	// PresentOutcome показывает итог, редактируя анонс или отправляя
	// новое сообщение.
	PresentOutcome(ctx context.Context, s *Session, messageID int, out *game.Outcome)
}

// Service выполняет захват и розыгрыш сессий.
type Service struct {
	store       Store
	presenter   Presenter
	rng         game.Rng
	tiers       []game.Tier
	helperBotID string
}

// NewService создаёт сервис розыгрыша.
// Таблица тиров должна быть проверена через game.ValidateTiers до вызова.
func NewService(store Store, presenter Presenter, rng game.Rng, tiers []game.Tier, helperBotID string) *Service {
	return &Service{
		store:       store,
		presenter:   presenter,
		rng:         rng,
		tiers:       tiers,
		helperBotID: helperBotID,
	}
}

// HandleGameReady выполняет одну попытку захвата и розыгрыша.
// Вызывается на каждое уведомление; дубликаты и гонки безопасны,
// потому что захват атомарен на стороне БД.
func (s *Service) HandleGameReady(ctx context.Context, mainBotGameID string) {
	logger := log.WithFields(log.Fields{
		"main_bot_game_id": mainBotGameID,
		"helper_bot_id":    s.helperBotID,
	})

	sess, err := s.store.Claim(ctx, mainBotGameID, s.helperBotID)
	if err != nil {
		// Транзиентная ошибка БД: сессия осталась pending_pickup,
		// её подберёт следующее уведомление или реплей оператора
		logger.WithError(err).Warn("Захват не удался, попытка оставлена")
		return
	}
	if sess == nil {
		// Гонку выиграл другой хелпер или уведомление пришло повторно
		logger.Debug("Сессия не захвачена (нет подходящей строки)")
		return
	}

	logger = logger.WithField("session_id", sess.SessionID)
	logger.Info("Сессия захвачена, начинаем розыгрыш")

	// Барьер ошибок: любая ошибка или паника после захвата переводит
	// сессию в completed_error с диагностикой в game_state_json
	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", fmt.Sprintf("%v", r)).Error("ПАНИКА при розыгрыше — восстановлено")
			s.forceError(ctx, sess, fmt.Sprintf("panic: %v", r))
		}
	}()

	if err := s.resolve(ctx, sess); err != nil {
		logger.WithError(err).Error("Ошибка розыгрыша")
		s.forceError(ctx, sess, err.Error())
	}
}

// resolve — путь успешного розыгрыша.
func (s *Service) resolve(ctx context.Context, sess *Session) error {
	// Анонс до броска; id сообщения нужен для редактирования результата
	messageID := s.presenter.AnnounceRoll(ctx, sess)

	out := game.Resolve(s.rng, s.tiers)

	fragment := map[string]any{
		"rolls":             out.Rolls,
		"sum":               out.Sum,
		"is_bust":           out.IsBust,
		"payout_multiplier": out.Multiplier(),
	}
	if out.Tier != nil {
		fragment["tier_label"] = out.Tier.Label
	}
	if err := s.mergeState(sess, fragment); err != nil {
		return err
	}

	s.presenter.PresentOutcome(ctx, sess, messageID, &out)

	// Финализация best-effort: сообщение игроку уже ушло, ошибку записи
	// только логируем — расхождение сверит оператор (редкий случай)
	status := terminalStatus(out.Result)
	if err := s.store.Finalize(ctx, sess.SessionID, status, sess.GameStateJSON); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"session_id": sess.SessionID,
			"status":     status,
		}).Error("Ошибка финализации, результат игроку уже показан")
	}
	return nil
}

// forceError переводит захваченную сессию в completed_error.
func (s *Service) forceError(ctx context.Context, sess *Session, message string) {
	if err := s.mergeState(sess, map[string]any{"error": message}); err != nil {
		// Совсем не повезло: хотя бы минимальный фрагмент
		sess.GameStateJSON = json.RawMessage(fmt.Sprintf(`{"error":%q}`, message))
	}
	if err := s.store.Finalize(ctx, sess.SessionID, StatusCompletedError, sess.GameStateJSON); err != nil {
		log.WithError(err).WithField("session_id", sess.SessionID).
			Error("Не удалось записать completed_error, сессия осталась in_progress")
	}
}

// mergeState — обёртка над Session.MergeGameState с контекстом ошибки.
func (s *Service) mergeState(sess *Session, fragment map[string]any) error {
	if err := sess.MergeGameState(fragment); err != nil {
		return fmt.Errorf("сессия %d: %w", sess.SessionID, err)
	}
	return nil
}

// terminalStatus отображает результат розыгрыша в терминальный статус сессии.
func terminalStatus(result game.Result) Status {
	switch result {
	case game.ResultBust:
		return StatusCompletedBust
	case game.ResultWin:
		return StatusCompletedWin
	case game.ResultLossNoTier:
		return StatusCompletedLossNoTier
	}
	// Недостижимо при корректном резолвере
	return StatusCompletedError
}
