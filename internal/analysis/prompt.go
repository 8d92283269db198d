package analysis

import (
	"fmt"

	"luna-bot/internal/models"
)

// PhotoPrompt is sent together with the user's photo. The three-line answer
// skeleton helps the parser but the service is free to ignore it.
func (l *Lexicon) PhotoPrompt() string {
	return l.photoPrompt
}

// OutfitPrompt asks for three outfits in the chosen style for a profile that
// already has a color type.
func (l *Lexicon) OutfitPrompt(p *models.Profile, style Style) string {
	gender := models.GenderUnspecified
	colorType := models.ColorUnknown
	if p != nil {
		if p.Gender != "" {
			gender = p.Gender
		}
		if p.ColorType != "" {
			colorType = p.ColorType
		}
	}
	return fmt.Sprintf(l.outfitTemplate, l.GenderName(gender), l.ColorTypeName(colorType), l.StyleName(style))
}
