package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatLamports(t *testing.T) {
	cases := []struct {
		lamports int64
		want     string
	}{
		{0, "0.0000 SOL"},
		{50_000_000, "0.0500 SOL"},
		{1_000_000_000, "1.0000 SOL"},
		{1_234_567_890, "1.2345 SOL"}, // дробь усекается вниз, не округляется
		{999_999, "0.0009 SOL"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatLamports(c.lamports))
	}
}

func TestFormatDice(t *testing.T) {
	assert.Equal(t, "⚂ ⚃ ⚄ ⚅ ⚅", FormatDice([]int{3, 4, 5, 6, 6}))
	assert.Equal(t, "⚀", FormatDice([]int{1}))
	assert.Equal(t, "", FormatDice(nil))
	// значение вне диапазона не должно паниковать
	assert.Equal(t, "7 ⚀", FormatDice([]int{7, 1}))
}

func TestPluralizePoints(t *testing.T) {
	assert.Equal(t, "очко", PluralizePoints(21))
	assert.Equal(t, "очка", PluralizePoints(24))
	assert.Equal(t, "очков", PluralizePoints(30))
	assert.Equal(t, "очков", PluralizePoints(11))
	assert.Equal(t, "очков", PluralizePoints(14))
	assert.Equal(t, "очка", PluralizePoints(22))
}
