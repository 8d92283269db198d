package analysis

import (
	"fmt"
	"strings"

	"luna-bot/internal/models"
)

type Style string

const (
	StyleCasual   Style = "casual"
	StyleOffice   Style = "office"
	StyleEvening  Style = "evening"
	StyleSport    Style = "sport"
	StyleRomantic Style = "romantic"
	StyleStreet   Style = "street"
)

var Styles = []Style{StyleCasual, StyleOffice, StyleEvening, StyleSport, StyleRomantic, StyleStreet}

// Lexicon holds the language-specific words the parser looks for and the
// wording used in prompts.
type Lexicon struct {
	Language string

	seasons      map[models.ColorType]string
	unknown      string
	paletteStems []string
	genders      map[models.Gender]string
	styles       map[Style]string

	photoPrompt    string
	outfitTemplate string
}

// Russian matches the wording of the bot UI and is the default.
var Russian = &Lexicon{
	Language: "ru",
	seasons: map[models.ColorType]string{
		models.ColorSpring: "Весна",
		models.ColorSummer: "Лето",
		models.ColorAutumn: "Осень",
		models.ColorWinter: "Зима",
	},
	unknown:      "Не определено",
	paletteStems: []string{"палит", "цвет"},
	genders: map[models.Gender]string{
		models.GenderFemale:      "женский",
		models.GenderMale:        "мужской",
		models.GenderUnspecified: "не указано",
	},
	styles: map[Style]string{
		StyleCasual:   "кэжуал",
		StyleOffice:   "офис",
		StyleEvening:  "вечерний",
		StyleSport:    "спортивный",
		StyleRomantic: "романтичный",
		StyleStreet:   "стрит/уличный",
	},
	photoPrompt: "Анализ изображения для определения цветотипа (весна/лето/осень/зима) и подбор палитры.\n" +
		"Инструкции модели:\n" +
		"1) Назовите ровно один цветотип одним словом: Весна, Лето, Осень или Зима.\n" +
		"2) Приведите 4-6 рекомендованных цветов/оттенков коротко, через запятую (например: тёплый персиковый, тёмно-синий).\n" +
		"3) Дайте 2-3 коротких совета по одежде (какие оттенки носить вверху, какие внизу, аксессуары).\n" +
		"4) Ничего не говорите о лице и внешности, не предлагайте ретушь или макияж.\n" +
		"Формат ответа, три строки:\n" +
		"Цветотип: <слово>\n" +
		"Палитра: <цвет>, <цвет>, ...\n" +
		"Советы: <советы>",
	outfitTemplate: "Вы — профессиональный стилист. Пользователь: пол = %s, цветотип = %s.\n" +
		"Задача: составить ровно 3 варианта аутфитов в стиле '%s'. Только одежда, аксессуары и цвета, " +
		"без упоминания лиц и без личной информации.\n" +
		"Каждый вариант — короткое описание: верх, низ, обувь, аксессуары, уровень формальности, когда носить.\n" +
		"Не предлагайте макияж и не обсуждайте внешность человека.",
}

var English = &Lexicon{
	Language: "en",
	seasons: map[models.ColorType]string{
		models.ColorSpring: "Spring",
		models.ColorSummer: "Summer",
		models.ColorAutumn: "Autumn",
		models.ColorWinter: "Winter",
	},
	unknown:      "Unknown",
	paletteStems: []string{"palette", "color"},
	genders: map[models.Gender]string{
		models.GenderFemale:      "female",
		models.GenderMale:        "male",
		models.GenderUnspecified: "unspecified",
	},
	styles: map[Style]string{
		StyleCasual:   "casual",
		StyleOffice:   "office",
		StyleEvening:  "evening",
		StyleSport:    "sport",
		StyleRomantic: "romantic",
		StyleStreet:   "street",
	},
	photoPrompt: "Analyze the image to determine the seasonal color type and a matching palette.\n" +
		"Instructions:\n" +
		"1) Name exactly one color type in one word: Spring, Summer, Autumn or Winter.\n" +
		"2) List 4-6 recommended colors or shades, short, comma-separated (for example: warm peach, navy blue).\n" +
		"3) Give 2-3 short clothing tips (which shades to wear on top, on the bottom, accessories).\n" +
		"4) Do not comment on the face or appearance, do not suggest retouching or makeup.\n" +
		"Answer in three lines:\n" +
		"Color type: <word>\n" +
		"Palette: <color>, <color>, ...\n" +
		"Tips: <tips>",
	outfitTemplate: "You are a professional stylist. User: gender = %s, color type = %s.\n" +
		"Task: put together exactly 3 outfit variants in the '%s' style. Clothing, accessories and colors only, " +
		"no mention of faces and no personal information.\n" +
		"Each variant is a short description: top, bottom, shoes, accessories, formality level, occasion.\n" +
		"Do not suggest makeup and do not discuss the person's appearance.",
}

// LexiconFor returns the lexicon for a language code, falling back to Russian.
func LexiconFor(language string) *Lexicon {
	switch strings.ToLower(strings.TrimSpace(language)) {
	case "en", "english":
		return English
	default:
		return Russian
	}
}

// ColorTypeName returns the localized name of a color type.
func (l *Lexicon) ColorTypeName(ct models.ColorType) string {
	if name, ok := l.seasons[ct]; ok {
		return name
	}
	return l.unknown
}

func (l *Lexicon) GenderName(g models.Gender) string {
	if name, ok := l.genders[g]; ok {
		return name
	}
	return l.genders[models.GenderUnspecified]
}

func (l *Lexicon) StyleName(s Style) string {
	if name, ok := l.styles[s]; ok {
		return name
	}
	return string(s)
}

// ParseStyle maps a callback suffix to a known style.
func ParseStyle(s string) (Style, error) {
	for _, st := range Styles {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown style %q", s)
}
