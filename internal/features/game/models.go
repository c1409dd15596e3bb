// Package game реализует кости «5 кубиков»: бросок, проверку на единицу
// и классификацию суммы по таблице тиров.
// models.go описывает все структуры данных игры.
package game

// Константы игры
const (
	// DiceCount — сколько кубиков бросаем за одну игру
	DiceCount = 5
	// DiceSides — граней у кубика
	DiceSides = 6
	// BustValue — проигрышное значение: любая единица сжигает ставку
	BustValue = 1
)

// Result — итог классификации броска.
type Result string

const (
	// ResultBust — выпала хотя бы одна единица, ставка сгорела
	ResultBust Result = "bust"
	// ResultWin — сумма попала в один из тиров
	ResultWin Result = "win"
	// ResultLossNoTier — единиц нет, но сумма не попала ни в один тир
	ResultLossNoTier Result = "loss_no_tier"
)

// Tier — один тир выплат: включительный диапазон суммы → множитель и название.
type Tier struct {
	MinSum     int    // Нижняя граница суммы (включительно)
	MaxSum     int    // Верхняя граница суммы (включительно)
	Multiplier int64  // Множитель выплаты от ставки
	Label      string // Название тира для сообщения игроку
}

// DefaultTiers — таблица тиров по умолчанию.
// Без единиц сумма пяти кубиков лежит в [10, 30], таблица покрывает
// этот интервал без разрывов. Хаус-эдж даёт сама единица:
// вероятность не выбросить ни одной ≈ (5/6)^5 ≈ 40%.
var DefaultTiers = []Tier{
	{MinSum: 10, MaxSum: 14, Multiplier: 1, Label: "Back to Even"},
	{MinSum: 15, MaxSum: 19, Multiplier: 2, Label: "Solid Roll"},
	{MinSum: 20, MaxSum: 24, Multiplier: 5, Label: "Peak Performer!"},
	{MinSum: 25, MaxSum: 30, Multiplier: 10, Label: "Legendary Hand!"},
}

// Outcome — результат одного розыгрыша.
// Создаётся один раз на сессию и дальше не меняется.
type Outcome struct {
	Rolls  []int  // Все выброшенные значения (всегда DiceCount штук)
	Sum    int    // Сумма всех кубиков
	IsBust bool   // Есть ли среди бросков BustValue
	Result Result // Итоговая классификация
	Tier   *Tier  // Сыгравший тир (nil при bust и loss_no_tier)
}

// Multiplier возвращает множитель выплаты для внешнего платёжного сервиса.
// Для bust и loss_no_tier множитель равен нулю.
func (o *Outcome) Multiplier() int64 {
	if o.Tier == nil {
		return 0
	}
	return o.Tier.Multiplier
}
