// Package game — resolver.go выполняет розыгрыш: бросок кубиков
// и классификацию результата. Никакого I/O — всё чистые функции,
// источник случайности передаётся снаружи.
package game

import (
	"fmt"
	"math/rand"
	"sort"

	"serotonyl.ru/dice-helper/internal/common"
)

// Rng — источник случайности для броска.
// Интерфейсу удовлетворяет *rand.Rand; в тестах подставляется
// заскриптованная последовательность.
type Rng interface {
	Intn(n int) int
}

// mathRng — источник по умолчанию поверх глобального math/rand
// (он потокобезопасен, в отличие от отдельного *rand.Rand).
type mathRng struct{}

func (mathRng) Intn(n int) int { return rand.Intn(n) }

// DefaultRng возвращает источник случайности по умолчанию.
func DefaultRng() Rng { return mathRng{} }

// RollDice бросает DiceCount кубиков со значениями [1, DiceSides].
// Единица НЕ прерывает бросок: все кубики бросаются и показываются
// игроку, даже если первый же оказался проигрышным.
func RollDice(rng Rng) []int {
	rolls := make([]int, DiceCount)
	for i := range rolls {
		rolls[i] = rng.Intn(DiceSides) + 1
	}
	return rolls
}

// Classify классифицирует готовую последовательность бросков.
// Порядок проверок строгий:
//  1. Есть единица → bust, тир и множитель не назначаются.
//  2. Сумма попала в тир → win с множителем и названием тира.
//  3. Иначе → loss_no_tier.
//
// Таблица тиров должна быть проверена через ValidateTiers один раз
// при старте; здесь мы полагаемся на то, что совпадение максимум одно.
func Classify(rolls []int, tiers []Tier) Outcome {
	out := Outcome{Rolls: rolls}
	for _, v := range rolls {
		out.Sum += v
		if v == BustValue {
			out.IsBust = true
		}
	}

	if out.IsBust {
		out.Result = ResultBust
		return out
	}

	for i := range tiers {
		if out.Sum >= tiers[i].MinSum && out.Sum <= tiers[i].MaxSum {
			out.Result = ResultWin
			out.Tier = &tiers[i]
			return out
		}
	}

	out.Result = ResultLossNoTier
	return out
}

// Resolve выполняет полный розыгрыш: бросок + классификация.
func Resolve(rng Rng, tiers []Tier) Outcome {
	return Classify(RollDice(rng), tiers)
}

// ValidateTiers проверяет таблицу тиров один раз при старте:
// диапазоны корректны, отсортированы, не пересекаются и идут
// без разрывов. Резолвер эти проверки не повторяет.
func ValidateTiers(tiers []Tier) error {
	if len(tiers) == 0 {
		return common.ErrTierEmpty
	}
	if !sort.SliceIsSorted(tiers, func(i, j int) bool {
		return tiers[i].MinSum < tiers[j].MinSum
	}) {
		return common.ErrTierOrder
	}
	for i, t := range tiers {
		if t.MinSum > t.MaxSum {
			return fmt.Errorf("тир %q [%d, %d]: %w", t.Label, t.MinSum, t.MaxSum, common.ErrTierRange)
		}
		if i == 0 {
			continue
		}
		prev := tiers[i-1]
		if t.MinSum <= prev.MaxSum {
			return fmt.Errorf("тиры %q и %q: %w", prev.Label, t.Label, common.ErrTierOverlap)
		}
		if t.MinSum != prev.MaxSum+1 {
			return fmt.Errorf("между %q и %q: %w", prev.Label, t.Label, common.ErrTierGap)
		}
	}
	return nil
}
