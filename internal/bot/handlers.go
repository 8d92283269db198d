package bot

import (
	"context"
	"fmt"
	"strings"

	"luna-bot/internal/analysis"
	"luna-bot/internal/models"
	"luna-bot/internal/subscription"
)

func (c *Controller) handleStart(ctx context.Context, ev Event) {
	c.sessions.Clear(sessionKey(ev))
	c.reply(ctx, ev.ChatID, textWelcome, genderKeyboard())
}

func (c *Controller) handleGender(ctx context.Context, ev Event, choice string) {
	var gender models.Gender
	switch choice {
	case "female":
		gender = models.GenderFemale
	case "male":
		gender = models.GenderMale
	default:
		gender = models.GenderUnspecified
	}

	c.sessions.Clear(sessionKey(ev))
	if err := c.profiles.Upsert(ctx, ev.UserID, models.ProfileUpdate{Gender: models.Some(gender)}); err != nil {
		c.logger.Error("Failed to save gender", "user_id", ev.UserID, "error", err)
		c.reply(ctx, ev.ChatID, textStoreFailed, genderKeyboard())
		return
	}

	c.logger.Info("Gender saved", "user_id", ev.UserID, "gender", string(gender))
	c.edit(ctx, ev, textMainMenu, mainMenuKeyboard())
}

func (c *Controller) handleAnalyzeRequest(ctx context.Context, ev Event) {
	c.sessions.Begin(sessionKey(ev), models.IntentAwaitingPhoto)
	c.edit(ctx, ev, textPhotoGuidelines, nil)
	c.reply(ctx, ev.ChatID, textSendPhoto, nil)
}

func (c *Controller) handlePhotoAnalysis(ctx context.Context, ev Event) {
	// the first photo consumes the intent; a second one sent while this
	// analysis is running is treated as unsolicited
	if !c.sessions.Take(sessionKey(ev), models.IntentAwaitingPhoto) {
		c.reply(ctx, ev.ChatID, textPressAnalyze, mainMenuKeyboard())
		return
	}

	image, err := c.messenger.DownloadPhoto(ctx, ev.PhotoFileID)
	if err != nil {
		c.logger.Error("Failed to download photo", "chat_id", ev.ChatID, "file_id", ev.PhotoFileID, "error", err)
		c.reply(ctx, ev.ChatID, textAnalysisFailed, mainMenuKeyboard())
		return
	}

	raw, err := c.generate(ctx, c.lexicon.PhotoPrompt(), image)
	if err != nil {
		c.logger.Error("Photo analysis failed", "user_id", ev.UserID, "error", err)
		c.reply(ctx, ev.ChatID, textAnalysisFailed, mainMenuKeyboard())
		return
	}

	result := c.lexicon.Parse(raw)
	c.logger.Info("Photo analyzed",
		"user_id", ev.UserID,
		"color_type", string(result.ColorType),
		"palette_size", len(result.Palette))

	err = c.profiles.Upsert(ctx, ev.UserID, models.ProfileUpdate{
		ColorType: models.Some(result.ColorType),
		Palette:   models.Some(result.Palette),
	})
	if err != nil {
		// the user still gets the answer they waited for
		c.logger.Error("Failed to save analysis result", "user_id", ev.UserID, "error", err)
	}

	c.reply(ctx, ev.ChatID, c.formatAnalysis(raw, result), mainMenuKeyboard())
}

func (c *Controller) formatAnalysis(raw string, result analysis.Result) string {
	palette := textNoPalette
	if len(result.Palette) > 0 {
		palette = strings.Join(result.Palette, ", ")
	}

	var b strings.Builder
	b.WriteString(textResultHeader)
	b.WriteString("\n\n")
	b.WriteString(raw)
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf(textResultType, c.lexicon.ColorTypeName(result.ColorType)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf(textResultPalette, palette))
	b.WriteString("\n\n")
	b.WriteString(textResultFollowUp)
	return b.String()
}

// allowed loads the profile and checks the subscription at the moment of
// use. A nil profile means the user never picked a gender.
func (c *Controller) allowed(ctx context.Context, ev Event) (*models.Profile, bool, error) {
	profile, err := c.profiles.Get(ctx, ev.UserID)
	if err != nil {
		return nil, false, err
	}
	return profile, subscription.IsActive(profile, c.now()), nil
}

func (c *Controller) handleCreateOutfit(ctx context.Context, ev Event) {
	_, active, err := c.allowed(ctx, ev)
	if err != nil {
		c.logger.Error("Failed to load profile", "user_id", ev.UserID, "error", err)
		c.reply(ctx, ev.ChatID, textStoreFailed, mainMenuKeyboard())
		return
	}
	if !active {
		c.sessions.Clear(sessionKey(ev))
		c.edit(ctx, ev, textSubscriptionRequired, subscriptionKeyboard())
		return
	}

	c.sessions.Begin(sessionKey(ev), models.IntentAwaitingStyleSelection)
	c.edit(ctx, ev, textChooseStyle, styleKeyboard(c.lexicon))
}

func (c *Controller) handleStyle(ctx context.Context, ev Event, choice string) {
	style, err := analysis.ParseStyle(choice)
	if err != nil {
		c.logger.Warn("Unknown style", "chat_id", ev.ChatID, "style", choice)
		c.reply(ctx, ev.ChatID, textUseMenu, mainMenuKeyboard())
		return
	}
	c.sessions.Clear(sessionKey(ev))

	profile, active, err := c.allowed(ctx, ev)
	if err != nil {
		c.logger.Error("Failed to load profile", "user_id", ev.UserID, "error", err)
		c.reply(ctx, ev.ChatID, textStoreFailed, mainMenuKeyboard())
		return
	}
	if !active {
		c.edit(ctx, ev, textSubscriptionRequired, subscriptionKeyboard())
		return
	}
	if !profile.HasColorType() {
		c.edit(ctx, ev, textAnalyzeFirst, mainMenuKeyboard())
		return
	}

	c.edit(ctx, ev, textGenerating, nil)

	raw, err := c.generate(ctx, c.lexicon.OutfitPrompt(profile, style), nil)
	if err != nil {
		c.logger.Error("Outfit generation failed", "user_id", ev.UserID, "style", string(style), "error", err)
		c.reply(ctx, ev.ChatID, textAnalysisFailed, mainMenuKeyboard())
		return
	}

	c.logger.Info("Outfits generated", "user_id", ev.UserID, "style", string(style))
	c.reply(ctx, ev.ChatID, textOutfitsHeader+"\n\n"+raw, mainMenuKeyboard())
}

func (c *Controller) handleGrantDemo(ctx context.Context, ev Event) {
	c.sessions.Clear(sessionKey(ev))

	profile, err := c.profiles.Get(ctx, ev.UserID)
	if err != nil {
		c.logger.Error("Failed to load profile", "user_id", ev.UserID, "error", err)
		c.reply(ctx, ev.ChatID, textStoreFailed, mainMenuKeyboard())
		return
	}

	granted := subscription.GrantDemo(profile, c.now())
	err = c.profiles.Upsert(ctx, ev.UserID, models.ProfileUpdate{
		SubscriptionExpiry: models.Some(granted.SubscriptionExpiry),
	})
	if err != nil {
		c.logger.Error("Failed to grant demo subscription", "user_id", ev.UserID, "error", err)
		c.reply(ctx, ev.ChatID, textStoreFailed, mainMenuKeyboard())
		return
	}

	expiry := granted.SubscriptionExpiry.UTC().Format(expiryLayout)
	c.logger.Info("Demo subscription granted", "user_id", ev.UserID, "expiry", expiry)
	c.edit(ctx, ev, fmt.Sprintf(textDemoGranted, expiry), mainMenuKeyboard())
}

func (c *Controller) handleSupportRequest(ctx context.Context, ev Event) {
	c.sessions.Begin(sessionKey(ev), models.IntentAwaitingSupportMessage)
	c.edit(ctx, ev, textSupportPrompt, nil)
}

func (c *Controller) handleSupportMessage(ctx context.Context, ev Event) {
	// stickers and other bodiless messages keep the intent
	if strings.TrimSpace(ev.Text) == "" {
		c.reply(ctx, ev.ChatID, textSendSupportText, nil)
		return
	}
	if !c.sessions.Take(sessionKey(ev), models.IntentAwaitingSupportMessage) {
		c.reply(ctx, ev.ChatID, textUseMenu, mainMenuKeyboard())
		return
	}

	ticket := c.newTicketID()
	forward := Reply{
		ChatID: c.operatorChatID,
		Text:   fmt.Sprintf(textSupportForward, ev.UserID, ticket, ev.Text),
	}
	if err := c.messenger.Send(ctx, forward); err != nil {
		c.logger.Error("Failed to forward support message", "user_id", ev.UserID, "ticket", ticket, "error", err)
		c.reply(ctx, ev.ChatID, textSupportDeferred, mainMenuKeyboard())
		return
	}

	c.logger.Info("Support message forwarded", "user_id", ev.UserID, "ticket", ticket)
	c.reply(ctx, ev.ChatID, fmt.Sprintf(textSupportSent, ticket), mainMenuKeyboard())
}
