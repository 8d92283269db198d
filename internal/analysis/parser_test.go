package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luna-bot/internal/models"
)

func TestParseColorType(t *testing.T) {
	tests := []struct {
		name string
		lex  *Lexicon
		text string
		want models.ColorType
	}{
		{"russian winter", Russian, "Цветотип: Зима", models.ColorWinter},
		{"case insensitive", Russian, "ваш цветотип — ЗИМА.", models.ColorWinter},
		{"enumeration order wins over position", Russian, "Скорее Зима, но возможно Весна", models.ColorSpring},
		{"summer before autumn", Russian, "осень или лето", models.ColorSummer},
		{"none found", Russian, "Не удалось определить.", models.ColorUnknown},
		{"empty text", Russian, "", models.ColorUnknown},
		{"english", English, "Color type: WINTER, close to summer", models.ColorSummer},
		{"english autumn", English, "You look like an Autumn.", models.ColorAutumn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.lex.ParseColorType(tt.text))
		})
	}
}

func TestParsePaletteEnglish(t *testing.T) {
	got := English.ParsePalette("Here it is ... palette: red, blue, a, dark green, x, teal ...")
	assert.Equal(t, []string{"red", "blue", "dark green", "teal"}, got)
}

func TestParsePaletteNoKeyword(t *testing.T) {
	got := English.ParsePalette("Nothing relevant here, really, at all")
	require.NotNil(t, got)
	assert.Empty(t, got)

	assert.Empty(t, Russian.ParsePalette("Просто текст, без ключевых слов"))
}

func TestParsePaletteCapsAtFive(t *testing.T) {
	got := English.ParsePalette("Palette: red, blue, green, yellow, purple, orange, black")
	assert.Equal(t, []string{"red", "blue", "green", "yellow", "purple"}, got)
}

func TestParsePaletteFallsBackToColorStem(t *testing.T) {
	got := English.ParsePalette("Recommended colors: navy, cream, olive")
	assert.Equal(t, []string{"navy", "cream", "olive"}, got)
}

func TestParsePalettePrefersPaletteStem(t *testing.T) {
	text := "Your colors are great.\nPalette: ivory, rust, moss"
	assert.Equal(t, []string{"ivory", "rust", "moss"}, English.ParsePalette(text))
}

func TestParsePaletteWindowLimit(t *testing.T) {
	text := "Palette: " + strings.Repeat("x", 250) + ", teal"
	got := English.ParsePalette(text)
	require.Len(t, got, 1)
	assert.NotContains(t, got, "teal")
}

func TestParsePaletteOnlyShortTokens(t *testing.T) {
	assert.Empty(t, English.ParsePalette("palette: a, b, cd"))
}

func TestParsePaletteAcrossLines(t *testing.T) {
	tests := []struct {
		name string
		lex  *Lexicon
		text string
		want []string
	}{
		{"wrapped list", English, "Palette: red,\nblue, dark green,\nteal", []string{"red", "blue", "dark green", "teal"}},
		{"bulleted list", Russian, "Палитра:\n- бежевый,\n- серый,\n- тёмно-синий", []string{"бежевый", "серый", "тёмно-синий"}},
		{"next section ends the list", English, "Palette: coral, sand\nTips: wear navy, avoid neon", []string{"coral", "sand"}},
		{"label right after a comma", English, "Palette: coral, sand,\nTips: wear navy", []string{"coral", "sand"}},
		{"colon inside a color is kept", English, "Palette: red,\nblue #00f: cool, teal", []string{"red", "blue #00f: cool", "teal"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.lex.ParsePalette(tt.text))
		})
	}
}

func TestParseRussianAnswer(t *testing.T) {
	text := "Цветотип: Зима\n" +
		"Палитра: бежевый, серый, а, тёмно-синий, б, коричневый\n" +
		"Советы: носите контрастные сочетания, выбирайте холодные оттенки."

	res := Russian.Parse(text)
	assert.Equal(t, models.ColorWinter, res.ColorType)
	assert.Equal(t, []string{"бежевый", "серый", "тёмно-синий", "коричневый"}, res.Palette)
}

func TestParseMalformed(t *testing.T) {
	for _, text := range []string{"", ",,,,", "палит", "цвет\n\n\n", "\x00\xff garbage"} {
		res := Russian.Parse(text)
		assert.Equal(t, models.ColorUnknown, res.ColorType, text)
		assert.LessOrEqual(t, len(res.Palette), models.MaxPaletteSize)
	}
}
