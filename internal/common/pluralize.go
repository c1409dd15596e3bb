// Package common — pluralize.go реализует русскую плюрализацию
// для отображения сумм очков в сообщениях.
package common

import "math"

// PluralizePoints возвращает правильную форму слова «очко» для числа n.
//
// Правила русского языка:
//   - n%10==1 И n%100!=11 → "очко" (1, 21, 31, ...)
//   - n%10 в [2,3,4] И n%100 НЕ в [12,13,14] → "очка" (2, 3, 4, 22, ...)
//   - Остальные случаи → "очков" (0, 5-20, 25-30, ...)
//
// Примеры:
//
//	PluralizePoints(21) → "очко"
//	PluralizePoints(24) → "очка"
//	PluralizePoints(30) → "очков"
func PluralizePoints(n int) string {
	absN := int(math.Abs(float64(n)))
	lastDigit := absN % 10
	lastTwoDigits := absN % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return "очко"
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return "очка"
	}
	return "очков"
}
