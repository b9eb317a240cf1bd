// Package slack posts critical petition alerts to an incoming webhook.
package slack

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/grievease/petition-triage/internal/core/domain"
	"github.com/slack-go/slack"
)

type Notifier struct {
	webhookURL string
	channel    string
	baseURL    string
	client     *http.Client
}

type Options struct {
	// Channel overrides the webhook default when set.
	Channel string
	// PetitionBaseURL links the alert to the officer console, e.g. https://grievease.example/petitions.
	PetitionBaseURL string
	Timeout         time.Duration
}

func New(webhookURL string, opts Options) *Notifier {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Notifier{
		webhookURL: webhookURL,
		channel:    opts.Channel,
		baseURL:    strings.TrimRight(opts.PetitionBaseURL, "/"),
		client:     &http.Client{Timeout: timeout},
	}
}

func (n *Notifier) NotifyCritical(ctx context.Context, event domain.PetitionEvent) error {
	msg := n.criticalMessage(event)
	if err := slack.PostWebhookCustomHTTPContext(ctx, n.webhookURL, n.client, msg); err != nil {
		return domain.WrapError(domain.ErrTemporary, "slack webhook", err)
	}
	return nil
}

func (n *Notifier) criticalMessage(event domain.PetitionEvent) *slack.WebhookMessage {
	routing := event.Department
	if event.Category != nil {
		routing = fmt.Sprintf("%s / %s", event.Department, *event.Category)
	}
	title := fmt.Sprintf("Petition #%d", event.PetitionID)
	if n.baseURL != "" {
		title = fmt.Sprintf("<%s/%d|Petition #%d>", n.baseURL, event.PetitionID, event.PetitionID)
	}

	summary := fmt.Sprintf(":rotating_light: Critical petition routed to %s", event.Department)
	blocks := []slack.Block{
		slack.NewHeaderBlock(
			slack.NewTextBlockObject(slack.PlainTextType, "Critical petition", false, false),
		),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*%s*: %s", title, event.Title), false, false),
			[]*slack.TextBlockObject{
				slack.NewTextBlockObject(slack.MarkdownType, "*Routing*\n"+routing, false, false),
				slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Confidence*\n%d%%", event.Confidence), false, false),
			},
			nil,
		),
		slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType,
				"Due within "+formatWindow(domain.UrgencyCritical.ResolutionWindow()), false, false),
		),
	}

	return &slack.WebhookMessage{
		Channel: n.channel,
		Text:    summary,
		Blocks:  &slack.Blocks{BlockSet: blocks},
	}
}

func formatWindow(d time.Duration) string {
	days := int(d / (24 * time.Hour))
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}
