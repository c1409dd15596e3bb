// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, Telegram API, репозиторий,
// сервис розыгрыша, слушатель уведомлений и планировщик задач.
package app

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/dice-helper/internal/bot"
	"serotonyl.ru/dice-helper/internal/config"
	"serotonyl.ru/dice-helper/internal/db/postgres"
	"serotonyl.ru/dice-helper/internal/features/game"
	"serotonyl.ru/dice-helper/internal/features/session"
	"serotonyl.ru/dice-helper/internal/jobs"
	"serotonyl.ru/dice-helper/internal/listener"
)

// App содержит все компоненты приложения.
type App struct {
	Listener  *listener.Listener
	Scheduler *jobs.Scheduler
	DB        *pgxpool.Pool
	BotAPI    *tgbotapi.BotAPI
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	// Запускаем миграции
	if err := runMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Telegram Bot API ===
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	botAPI.Debug = cfg.AppEnv == "development"
	log.Infof("Авторизован как @%s", botAPI.Self.UserName)

	// === 3. Идентификатор хелпера ===
	helperBotID := cfg.HelperBotID
	if helperBotID == "" {
		helperBotID = uuid.NewString()
		log.WithField("helper_bot_id", helperBotID).Info("HELPER_BOT_ID не задан, сгенерирован")
	}

	// === 4. Таблица тиров ===
	// Проверяем один раз на старте; резолвер полагается на её корректность
	tiers := game.DefaultTiers
	if err := game.ValidateTiers(tiers); err != nil {
		return nil, fmt.Errorf("некорректная таблица тиров: %w", err)
	}

	// === 5. Сервис розыгрыша ===
	repo := session.NewRepository(pool)
	presenter := bot.NewPresenter(botAPI, cfg.PresentDelay)
	svc := session.NewService(repo, presenter, game.DefaultRng(), tiers, helperBotID)

	// === 6. Слушатель уведомлений ===
	// Отдельное соединение (не пул), подключается в main — ошибка там фатальна
	lst := listener.New(cfg.DatabaseDSN(), cfg.NotifyChannel, cfg.ListenerMaxInflight, svc.HandleGameReady)

	// === 7. Планировщик задач ===
	scheduler := jobs.NewScheduler(repo, lst.Dispatch, cfg.ReplayPendingAfter, cfg.ReportStuckAfter)

	return &App{
		Listener:  lst,
		Scheduler: scheduler,
		DB:        pool,
		BotAPI:    botAPI,
	}, nil
}

// runMigrations выполняет все SQL-миграции.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if err := postgres.EnsureMigrationsTable(ctx, pool); err != nil {
		return err
	}

	// Выполняем миграции по порядку
	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001GameSessions},
		{2, migration002NotifyTrigger},
	}

	for _, m := range migrations {
		if err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql); err != nil {
			return fmt.Errorf("миграция %d: %w", m.version, err)
		}
		log.Infof("Миграция %d применена", m.version)
	}

	return nil
}

// SQL-миграции встроены в код для упрощения деплоя.
// Таблицу наполняет главный бот; хелпер её только захватывает и завершает.

var migration001GameSessions = `
CREATE TABLE IF NOT EXISTS game_sessions (
    session_id BIGSERIAL PRIMARY KEY,
    main_bot_game_id VARCHAR(64) UNIQUE NOT NULL,
    status VARCHAR(32) NOT NULL DEFAULT 'pending_pickup',
    helper_bot_id VARCHAR(64),
    game_state_json JSONB NOT NULL DEFAULT '{}',
    bet_amount_lamports BIGINT NOT NULL,
    chat_id BIGINT NOT NULL,
    initiator_id BIGINT NOT NULL,
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_game_sessions_main_bot_game_id ON game_sessions(main_bot_game_id);
CREATE INDEX IF NOT EXISTS idx_game_sessions_status_updated ON game_sessions(status, updated_at);
`

// Триггер превращает вставку pending-сессии главным ботом в NOTIFY:
// главному боту не нужно знать про канал, а оператору для реплея
// достаточно обычного NOTIFY game_sessions, '{"main_bot_game_id":"..."}'.
var migration002NotifyTrigger = `
CREATE OR REPLACE FUNCTION notify_game_session() RETURNS trigger AS $$
BEGIN
    IF NEW.status = 'pending_pickup' THEN
        PERFORM pg_notify('game_sessions',
            json_build_object('main_bot_game_id', NEW.main_bot_game_id)::text);
    END IF;
    RETURN NEW;
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS trg_game_sessions_notify ON game_sessions;
CREATE TRIGGER trg_game_sessions_notify
    AFTER INSERT ON game_sessions
    FOR EACH ROW EXECUTE FUNCTION notify_game_session();
`
