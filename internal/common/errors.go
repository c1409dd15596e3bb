// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях хелпер-бота.
// Эти ошибки позволяют вызывающему коду различать типы проблем
// без разбора текста сообщений.
package common

import "errors"

// Ошибки уведомлений (канал LISTEN/NOTIFY)
var (
	// ErrEmptyGameID — в уведомлении отсутствует или пуст main_bot_game_id
	ErrEmptyGameID = errors.New("пустой main_bot_game_id в уведомлении")
)

// Ошибки конфигурации таблицы тиров
var (
	// ErrTierEmpty — таблица тиров пуста
	ErrTierEmpty = errors.New("таблица тиров пуста")
	// ErrTierRange — у тира нижняя граница больше верхней
	ErrTierRange = errors.New("некорректный диапазон тира (min > max)")
	// ErrTierOrder — тиры не отсортированы по возрастанию диапазонов
	ErrTierOrder = errors.New("тиры должны идти по возрастанию диапазонов")
	// ErrTierOverlap — диапазоны соседних тиров пересекаются
	ErrTierOverlap = errors.New("диапазоны тиров пересекаются")
	// ErrTierGap — между соседними тирами есть непокрытая сумма
	ErrTierGap = errors.New("между диапазонами тиров есть разрыв")
)
