// Package subscription decides whether a profile may use paid features.
// There is no payment integration; access is granted through the demo action.
package subscription

import (
	"time"

	"luna-bot/internal/models"
)

const DemoPeriod = 30 * 24 * time.Hour

// Tier is a subscription plan shown to the user. Prices are display-only.
type Tier struct {
	ID    string
	Label string
	Price string
}

var Tiers = []Tier{
	{ID: "week", Label: "Неделя", Price: "4.99 EUR"},
	{ID: "month", Label: "Месяц", Price: "12.99 EUR"},
	{ID: "year", Label: "Год", Price: "79.99 EUR"},
}

// IsActive reports whether the profile has a subscription expiring strictly after now.
func IsActive(p *models.Profile, now time.Time) bool {
	if p == nil || p.SubscriptionExpiry == nil {
		return false
	}
	return now.Before(*p.SubscriptionExpiry)
}

// GrantDemo sets the expiry to now+DemoPeriod regardless of any previous
// expiry. Repeated grants reset the clock rather than stacking.
func GrantDemo(p *models.Profile, now time.Time) *models.Profile {
	out := p.Clone()
	if out == nil {
		out = &models.Profile{}
	}
	expiry := now.Add(DemoPeriod)
	out.SubscriptionExpiry = &expiry
	return out
}
