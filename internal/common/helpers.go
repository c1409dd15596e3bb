// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: форматирование лампортов в SOL и русская плюрализация.
package common

import (
	"fmt"
	"strings"
)

// LamportsPerSol — количество лампортов в одном SOL.
// Лампорт — минимальная единица, все ставки храним в ней (int64, без float).
const LamportsPerSol = 1_000_000_000

// solDisplayDecimals — сколько знаков после запятой показываем пользователю.
// Полные 9 знаков лампортов в чате выглядят как шум.
const solDisplayDecimals = 4

// FormatLamports форматирует сумму в лампортах в строку вида "0.0500 SOL".
// Точность фиксированная (4 знака), лишние лампорты отбрасываются вниз.
//
// Примеры:
//
//	FormatLamports(50_000_000)    → "0.0500 SOL"
//	FormatLamports(1_000_000_000) → "1.0000 SOL"
//	FormatLamports(1_234_567_890) → "1.2345 SOL"
func FormatLamports(lamports int64) string {
	whole := lamports / LamportsPerSol
	frac := lamports % LamportsPerSol
	// Приводим дробную часть к нужной точности: 9 знаков → 4 знака
	scale := int64(1)
	for i := 0; i < 9-solDisplayDecimals; i++ {
		scale *= 10
	}
	return fmt.Sprintf("%d.%0*d SOL", whole, solDisplayDecimals, frac/scale)
}

// diceFaces — юникодные грани кубика, индекс = значение-1.
var diceFaces = [6]string{"⚀", "⚁", "⚂", "⚃", "⚄", "⚅"}

// FormatDice форматирует последовательность бросков в строку граней.
// Значения вне [1,6] (невозможные при честном броске) показываются цифрой.
//
// Пример: FormatDice([]int{3, 4, 5, 6, 6}) → "⚂ ⚃ ⚄ ⚅ ⚅"
func FormatDice(rolls []int) string {
	parts := make([]string, 0, len(rolls))
	for _, v := range rolls {
		if v >= 1 && v <= 6 {
			parts = append(parts, diceFaces[v-1])
		} else {
			parts = append(parts, fmt.Sprintf("%d", v))
		}
	}
	return strings.Join(parts, " ")
}
