package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/vieirasantos/meli-seller-hub/internal/metrics"
)

const (
	colorRed    = 0xE74C3C // sync aborted
	colorOrange = 0xE67E22 // sync degraded
)

// DiscordNotifier implements Notifier via Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewDiscordNotifier creates a new DiscordNotifier.
func NewDiscordNotifier(webhookURL string, opts ...DiscordOption) *DiscordNotifier {
	d := &DiscordNotifier{
		webhookURL: webhookURL,
		client:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DiscordOption configures a DiscordNotifier.
type DiscordOption func(*DiscordNotifier)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) DiscordOption {
	return func(d *DiscordNotifier) {
		d.client = c
	}
}

// discordWebhookPayload is the Discord webhook JSON structure.
type discordWebhookPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string              `json:"title"`
	Color       int                 `json:"color"`
	Description string              `json:"description,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// SendSyncAlert sends a sync failure report as a Discord embed.
func (d *DiscordNotifier) SendSyncAlert(ctx context.Context, alert *SyncAlert) error {
	payload := discordWebhookPayload{
		Embeds: []discordEmbed{buildEmbed(alert)},
	}
	return d.post(ctx, payload)
}

func buildEmbed(alert *SyncAlert) discordEmbed {
	embed := discordEmbed{
		Color: colorOrange,
		Fields: []discordEmbedField{
			{Name: "Conta", Value: alert.AccountNickname, Inline: true},
			{Name: "Disparo", Value: alert.Trigger, Inline: true},
		},
	}

	if alert.Failed {
		embed.Title = fmt.Sprintf("Sincronização falhou: %s", alert.AccountNickname)
		embed.Color = colorRed
		embed.Description = truncate(alert.Error, 1024)
	} else {
		embed.Title = fmt.Sprintf("Sincronização degradada: %s", alert.AccountNickname)
	}

	if alert.ProductsReason != "" {
		embed.Fields = append(embed.Fields, discordEmbedField{
			Name: "Produtos", Value: truncate(alert.ProductsReason, 1024),
		})
	}
	if alert.StatsReason != "" {
		embed.Fields = append(embed.Fields, discordEmbedField{
			Name: "Métricas", Value: truncate(alert.StatsReason, 1024),
		})
	}
	if alert.LastSync != "" {
		embed.Fields = append(embed.Fields, discordEmbedField{
			Name: "Última sincronização", Value: alert.LastSync, Inline: true,
		})
	}

	return embed
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}

func (d *DiscordNotifier) post(ctx context.Context, payload discordWebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		metrics.NotificationFailuresTotal.Inc()
		return fmt.Errorf("sending webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		metrics.NotificationFailuresTotal.Inc()
		return fmt.Errorf("discord rate limited")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.NotificationFailuresTotal.Inc()
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512)) //nolint:errcheck // best-effort detail
		return fmt.Errorf("discord returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}

// compile-time interface check.
var _ Notifier = (*DiscordNotifier)(nil)
