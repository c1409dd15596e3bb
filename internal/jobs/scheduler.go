// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает репер: реплей зависших pending-сессий
// и отчёт о застрявших in_progress для оператора.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/dice-helper/internal/features/session"
)

// Dispatch — запуск одной попытки захвата-и-розыгрыша (вне цикла подписки).
type Dispatch func(ctx context.Context, mainBotGameID string)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron         *cron.Cron
	repo         *session.Repository
	dispatch     Dispatch
	pendingAfter time.Duration // pending_pickup старше этого — реплеим
	stuckAfter   time.Duration // in_progress старше этого — репортим оператору
}

// NewScheduler создаёт планировщик задач.
func NewScheduler(repo *session.Repository, dispatch Dispatch, pendingAfter, stuckAfter time.Duration) *Scheduler {
	return &Scheduler{
		cron:         cron.New(),
		repo:         repo,
		dispatch:     dispatch,
		pendingAfter: pendingAfter,
		stuckAfter:   stuckAfter,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) {
	// Реплей потерянных уведомлений каждую минуту.
	// Это обычный путь захвата, так что гонка с другими хелперами безопасна.
	s.cron.AddFunc("* * * * *", func() {
		ids, err := s.repo.FindStalePending(ctx, s.pendingAfter)
		if err != nil {
			log.WithError(err).Error("[CRON] Ошибка поиска зависших pending-сессий")
			return
		}
		for _, id := range ids {
			log.WithField("main_bot_game_id", id).Info("[CRON] Реплей зависшей сессии")
			s.dispatch(ctx, id)
		}
	})

	// Застрявшие in_progress только репортим: владелец неизвестно жив ли,
	// решение о вмешательстве принимает оператор
	s.cron.AddFunc("* * * * *", func() {
		stuck, err := s.repo.FindStuckInProgress(ctx, s.stuckAfter)
		if err != nil {
			log.WithError(err).Error("[CRON] Ошибка поиска застрявших in_progress-сессий")
			return
		}
		for _, sess := range stuck {
			helper := ""
			if sess.HelperBotID != nil {
				helper = *sess.HelperBotID
			}
			log.WithFields(log.Fields{
				"session_id":       sess.SessionID,
				"main_bot_game_id": sess.MainBotGameID,
				"helper_bot_id":    helper,
				"updated_at":       sess.UpdatedAt,
			}).Warn("[CRON] Сессия застряла в in_progress, нужна сверка оператором")
		}
	})

	s.cron.Start()
	log.Info("Планировщик задач запущен")
}

// Stop останавливает планировщик и дожидается завершения задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
