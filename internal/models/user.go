// internal/models/user.go
package models

import (
	"time"
)

type Gender string

const (
	GenderFemale      Gender = "female"
	GenderMale        Gender = "male"
	GenderUnspecified Gender = "unspecified"
)

// ColorType is one of the four seasonal categories, or Unknown when the
// analysis text named none of them.
type ColorType string

const (
	ColorSpring  ColorType = "Spring"
	ColorSummer  ColorType = "Summer"
	ColorAutumn  ColorType = "Autumn"
	ColorWinter  ColorType = "Winter"
	ColorUnknown ColorType = "Unknown"
)

// Seasons lists the canonical color types in lookup order.
var Seasons = []ColorType{ColorSpring, ColorSummer, ColorAutumn, ColorWinter}

const MaxPaletteSize = 5

// Profile is the persisted per-user record. Zero values mean "unset":
// empty Gender/ColorType, nil Palette, nil SubscriptionExpiry.
type Profile struct {
	UserID             int64      `json:"user_id"`
	Gender             Gender     `json:"gender,omitempty"`
	ColorType          ColorType  `json:"color_type,omitempty"`
	Palette            []string   `json:"palette,omitempty"`
	SubscriptionExpiry *time.Time `json:"subscription_expiry,omitempty"`
}

// HasColorType reports whether a photo analysis has completed for this profile.
// Unknown counts: the analysis ran, it just could not name a season.
func (p *Profile) HasColorType() bool {
	return p != nil && p.ColorType != ""
}

// Opt is an optional field of a partial update. A zero Opt means
// "not provided"; Set with a zero Value clears the column.
type Opt[T any] struct {
	Value T
	Set   bool
}

func Some[T any](v T) Opt[T] {
	return Opt[T]{Value: v, Set: true}
}

// ProfileUpdate carries the fields an upsert should write. Fields left
// unset keep whatever the stored row already has.
type ProfileUpdate struct {
	Gender             Opt[Gender]
	ColorType          Opt[ColorType]
	Palette            Opt[[]string]
	SubscriptionExpiry Opt[*time.Time]
}

// Apply merges the update into p in place.
func (u ProfileUpdate) Apply(p *Profile) {
	if u.Gender.Set {
		p.Gender = u.Gender.Value
	}
	if u.ColorType.Set {
		p.ColorType = u.ColorType.Value
	}
	if u.Palette.Set {
		p.Palette = clampPalette(u.Palette.Value)
	}
	if u.SubscriptionExpiry.Set {
		if u.SubscriptionExpiry.Value == nil {
			p.SubscriptionExpiry = nil
		} else {
			t := *u.SubscriptionExpiry.Value
			p.SubscriptionExpiry = &t
		}
	}
}

func clampPalette(palette []string) []string {
	if palette == nil {
		return nil
	}
	if len(palette) > MaxPaletteSize {
		palette = palette[:MaxPaletteSize]
	}
	out := make([]string, len(palette))
	copy(out, palette)
	return out
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	c.Palette = clampPalette(p.Palette)
	if p.SubscriptionExpiry != nil {
		t := *p.SubscriptionExpiry
		c.SubscriptionExpiry = &t
	}
	return &c
}

// Intent is the follow-up input a chat is expected to provide next.
type Intent string

const (
	IntentNone                   Intent = ""
	IntentAwaitingPhoto          Intent = "awaiting_photo"
	IntentAwaitingStyleSelection Intent = "awaiting_style_selection"
	IntentAwaitingSupportMessage Intent = "awaiting_support_message"
)

// UserState is the ephemeral session of one user in one chat. It is never
// persisted.
type UserState struct {
	ChatID    int64     `json:"chat_id"`
	UserID    int64     `json:"user_id"`
	Pending   Intent    `json:"pending"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
