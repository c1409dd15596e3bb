package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/dice-helper/internal/features/game"
)

func TestRenderAnnouncement(t *testing.T) {
	text := RenderAnnouncement(777, 50_000_000)
	assert.Contains(t, text, `<a href="tg://user?id=777">`)
	assert.Contains(t, text, "0.0500 SOL")
}

func TestRenderOutcome_Win(t *testing.T) {
	out := game.Classify([]int{3, 4, 5, 6, 6}, game.DefaultTiers)
	require.Equal(t, game.ResultWin, out.Result)

	text := RenderOutcome(777, 50_000_000, &out)
	assert.Contains(t, text, "⚂ ⚃ ⚄ ⚅ ⚅")
	assert.Contains(t, text, "Сумма: 24 очка")
	assert.Contains(t, text, "Peak Performer!")
	assert.Contains(t, text, "×5")
	// выплата = ставка × множитель
	assert.Contains(t, text, "0.2500 SOL")
}

func TestRenderOutcome_Bust(t *testing.T) {
	out := game.Classify([]int{6, 6, 1, 6, 6}, game.DefaultTiers)

	text := RenderOutcome(777, 50_000_000, &out)
	assert.Contains(t, text, "Единица")
	assert.Contains(t, text, "Потеряно: 0.0500 SOL")
	assert.NotContains(t, text, "Выплата")
}

func TestRenderOutcome_NoTier(t *testing.T) {
	out := game.Classify([]int{2, 2, 2, 2}, game.DefaultTiers) // сумма 8, мимо тиров

	text := RenderOutcome(777, 50_000_000, &out)
	assert.Contains(t, text, "не попала ни в один диапазон")
	assert.Contains(t, text, "Потеряно")
}

func TestRenderOutcome_EscapesTierLabel(t *testing.T) {
	tiers := []game.Tier{{MinSum: 10, MaxSum: 30, Multiplier: 2, Label: "<b>hax</b>"}}
	out := game.Classify([]int{2, 2, 2, 2, 2}, tiers)
	require.Equal(t, game.ResultWin, out.Result)

	text := RenderOutcome(777, 50_000_000, &out)
	assert.NotContains(t, text, "<b>hax</b>")
	assert.Contains(t, text, "&lt;b&gt;hax&lt;/b&gt;")
}
