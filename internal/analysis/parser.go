package analysis

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"luna-bot/internal/models"
)

const (
	paletteWindow   = 200
	minPaletteToken = 3
	maxLabelLength  = 30
)

// Result is what could be recovered from one analysis answer.
type Result struct {
	ColorType models.ColorType
	Palette   []string
}

// Parse never fails: unrecognized text yields Unknown and an empty palette.
func (l *Lexicon) Parse(text string) Result {
	return Result{
		ColorType: l.ParseColorType(text),
		Palette:   l.ParsePalette(text),
	}
}

// ParseColorType returns the first season, in Spring/Summer/Autumn/Winter
// order, whose name appears anywhere in text ignoring case.
func (l *Lexicon) ParseColorType(text string) models.ColorType {
	lowered := strings.ToLower(text)
	for _, ct := range models.Seasons {
		if strings.Contains(lowered, strings.ToLower(l.seasons[ct])) {
			return ct
		}
	}
	return models.ColorUnknown
}

// ParsePalette looks for the first palette stem (then the first color stem),
// takes the 200 characters after that word and splits them on commas. The
// list may span lines; it ends at a following labelled line. Pieces shorter
// than three characters are dropped; at most MaxPaletteSize are kept.
func (l *Lexicon) ParsePalette(text string) []string {
	runes := []rune(text)
	lowered := make([]rune, len(runes))
	for i, r := range runes {
		lowered[i] = unicode.ToLower(r)
	}

	start := -1
	for _, stem := range l.paletteStems {
		if idx := indexRunes(lowered, []rune(stem)); idx >= 0 {
			start = idx + utf8.RuneCountInString(stem)
			break
		}
	}
	if start < 0 {
		return []string{}
	}

	// skip the rest of the keyword ("палитра", "colors")
	for start < len(runes) && unicode.IsLetter(runes[start]) {
		start++
	}
	end := start + paletteWindow
	if end > len(runes) {
		end = len(runes)
	}
	window := string(runes[start:end])

	palette := make([]string, 0, models.MaxPaletteSize)
	for _, piece := range strings.Split(window, ",") {
		piece, last := cutAtLabel(piece)
		piece = strings.TrimFunc(piece, func(r rune) bool {
			return unicode.IsSpace(r) || unicode.IsPunct(r)
		})
		if utf8.RuneCountInString(piece) >= minPaletteToken {
			palette = append(palette, piece)
		}
		if last || len(palette) == models.MaxPaletteSize {
			break
		}
	}
	return palette
}

// cutAtLabel drops everything from the first later line that opens a new
// labelled section ("Tips: ...", "Советы: ..."). It reports whether a label
// was found, which ends the list.
func cutAtLabel(piece string) (string, bool) {
	lines := strings.Split(piece, "\n")
	for i := 1; i < len(lines); i++ {
		if isLabel(lines[i]) {
			return strings.Join(lines[:i], "\n"), true
		}
	}
	return piece, false
}

// isLabel matches a line that starts with a short run of words and a colon.
func isLabel(line string) bool {
	line = strings.TrimLeftFunc(line, unicode.IsSpace)
	head, _, found := strings.Cut(line, ":")
	if !found || head == "" || utf8.RuneCountInString(head) > maxLabelLength {
		return false
	}
	for _, r := range head {
		if !unicode.IsLetter(r) && r != ' ' {
			return false
		}
	}
	return true
}

func indexRunes(haystack, needle []rune) int {
	if len(needle) == 0 {
		return 0
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j, r := range needle {
			if haystack[i+j] != r {
				continue outer
			}
		}
		return i
	}
	return -1
}
