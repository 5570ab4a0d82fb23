package access

import (
	"strconv"

	"github.com/dmitrymomot/biportal/pkg/feature"
	"github.com/dmitrymomot/biportal/pkg/i18n"
	"github.com/dmitrymomot/biportal/pkg/limits"
	"github.com/dmitrymomot/biportal/pkg/rbac"
	"github.com/dmitrymomot/biportal/pkg/subscription"
)

// Action is a navigation offered to the user. It never mutates anything.
type Action struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// BannerKind tells trial countdowns from cancellation warnings.
type BannerKind string

const (
	BannerTrial BannerKind = "trial"
	BannerGrace BannerKind = "grace"
)

// Banner is the countdown shown on top of accessible pages.
// Viewers get ContactAdmin instead of a CTA.
type Banner struct {
	Kind          BannerKind `json:"kind"`
	Title         string     `json:"title"`
	Message       string     `json:"message"`
	DaysRemaining int        `json:"days_remaining"`
	CTA           *Action    `json:"cta,omitempty"`
	ContactAdmin  string     `json:"contact_admin,omitempty"`
}

// Presenter turns views into localized view models.
type Presenter struct {
	tr  *i18n.Translator
	cfg Config
}

func NewPresenter(tr *i18n.Translator, cfg Config) *Presenter {
	if tr == nil {
		panic("access: presenter requires a translator")
	}
	return &Presenter{tr: tr, cfg: cfg.withDefaults()}
}

// Banner returns nil when there is nothing to warn about: no snapshot yet,
// a blocked or fully paid subscription, or a master-managed one.
func (p *Presenter) Banner(lang string, role rbac.Role, snap *subscription.Snapshot) *Banner {
	if snap == nil || snap.IsAccessBlocked || snap.IsMasterManaged {
		return nil
	}

	var b Banner
	switch {
	case snap.IsTrialing:
		b = Banner{
			Kind:          BannerTrial,
			Title:         p.tr.T(lang, "banner.trial.title"),
			Message:       p.tr.N(lang, "banner.trial.remaining", snap.TrialDaysRemaining),
			DaysRemaining: snap.TrialDaysRemaining,
		}
	case snap.InGracePeriod && snap.GracePeriodDaysRemaining != nil:
		days := *snap.GracePeriodDaysRemaining
		b = Banner{
			Kind:          BannerGrace,
			Title:         p.tr.T(lang, "banner.grace.title"),
			Message:       p.tr.N(lang, "banner.grace.remaining", days),
			DaysRemaining: days,
		}
	default:
		return nil
	}

	if role.CanManageBilling() {
		b.CTA = &Action{Label: p.tr.T(lang, "banner."+string(b.Kind)+".cta"), URL: p.cfg.PlansURL}
	} else {
		b.ContactAdmin = p.tr.T(lang, "banner.contact_admin")
	}
	return &b
}

// BlockedScreen explains why access is blocked and offers one way out.
type BlockedScreen struct {
	Reason       subscription.BlockReason `json:"reason"`
	Title        string                   `json:"title"`
	Message      string                   `json:"message"`
	Action       *Action                  `json:"action,omitempty"`
	ContactAdmin string                   `json:"contact_admin,omitempty"`
	SignOut      Action                   `json:"sign_out"`
}

// BlockedScreen builds the screen for reason. Viewers get the
// contact-admin instruction in place of the recovery action.
func (p *Presenter) BlockedScreen(lang string, role rbac.Role, reason subscription.BlockReason) BlockedScreen {
	if reason == subscription.ReasonNone {
		reason = subscription.ReasonNoActiveSubscription
	}
	prefix := "blocked." + string(reason)
	s := BlockedScreen{
		Reason:  reason,
		Title:   p.tr.T(lang, prefix+".title"),
		Message: p.tr.T(lang, prefix+".message"),
		SignOut: Action{Label: p.tr.T(lang, "blocked.sign_out"), URL: p.cfg.SignOutURL},
	}

	url := p.cfg.PlansURL
	if reason == subscription.ReasonStatusUnavailable {
		url = "" // retry stays on the current page
	}
	switch {
	case reason == subscription.ReasonStatusUnavailable, role.CanManageBilling():
		s.Action = &Action{Label: p.tr.T(lang, prefix+".action"), URL: url}
	default:
		s.ContactAdmin = p.tr.T(lang, "blocked.contact_admin")
	}
	return s
}

// GateOptions localizes the default upgrade fallback of feature gates.
// Viewers get a fallback without an upgrade link.
func (p *Presenter) GateOptions(lang string, role rbac.Role) []feature.GateOption {
	title := p.tr.T(lang, "feature.upgrade.title")
	if !role.CanManageBilling() {
		return []feature.GateOption{
			feature.WithUpgradeText(title, p.tr.T(lang, "banner.contact_admin")),
			feature.WithoutUpgradeURL(),
		}
	}
	return []feature.GateOption{
		feature.WithUpgradeText(title, p.tr.T(lang, "feature.upgrade.message")),
		feature.WithUpgradeURL(p.cfg.PlansURL),
	}
}

// LimitAlert is a localized advisory limit message.
type LimitAlert struct {
	limits.Alert
	Message string `json:"message"`
}

func (p *Presenter) LimitAlerts(lang string, alerts []limits.Alert) []LimitAlert {
	out := make([]LimitAlert, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, LimitAlert{
			Alert: a,
			Message: p.tr.T(lang, "limits.reached",
				"resource", p.tr.T(lang, "limits.resource."+string(a.Resource)),
				"current", strconv.FormatInt(a.Current, 10),
				"limit", strconv.FormatInt(a.Limit, 10),
			),
		})
	}
	return out
}
