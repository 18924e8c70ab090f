package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSyncAlert(failed bool) SyncAlert {
	return SyncAlert{
		AccountNickname: "LOJA_TESTE",
		Trigger:         "scheduled",
		Failed:          failed,
		Error:           "Token inválido ou expirado (HTTP 401)",
		ProductsReason:  "Erro HTTP 500",
		LastSync:        "15/03/2025 14:30:00",
	}
}

func TestDiscordNotifier_SendSyncAlert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		alert      SyncAlert
		statusCode int
		wantErr    bool
		errMsg     string
		wantColor  int
		wantTitle  string
	}{
		{
			name:       "failed sync uses red embed",
			alert:      testSyncAlert(true),
			statusCode: http.StatusNoContent,
			wantColor:  colorRed,
			wantTitle:  "Sincronização falhou",
		},
		{
			name:       "degraded sync uses orange embed",
			alert:      testSyncAlert(false),
			statusCode: http.StatusNoContent,
			wantColor:  colorOrange,
			wantTitle:  "Sincronização degradada",
		},
		{
			name:       "discord returns 429 rate limited",
			alert:      testSyncAlert(true),
			statusCode: http.StatusTooManyRequests,
			wantErr:    true,
			errMsg:     "rate limited",
		},
		{
			name:       "discord returns 400 error",
			alert:      testSyncAlert(true),
			statusCode: http.StatusBadRequest,
			wantErr:    true,
			errMsg:     "discord returned 400",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var received discordWebhookPayload

			srv := httptest.NewServer(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
					assert.Equal(t, http.MethodPost, r.Method)

					err := json.NewDecoder(r.Body).Decode(&received)
					assert.NoError(t, err)

					w.WriteHeader(tt.statusCode)
				}),
			)
			defer srv.Close()

			d := NewDiscordNotifier(srv.URL)
			err := d.SendSyncAlert(context.Background(), &tt.alert)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}

			require.NoError(t, err)
			require.Len(t, received.Embeds, 1)

			embed := received.Embeds[0]
			assert.Equal(t, tt.wantColor, embed.Color)
			assert.Contains(t, embed.Title, tt.wantTitle)
			assert.Contains(t, embed.Title, "LOJA_TESTE")
		})
	}
}

func TestDiscordNotifier_TruncatesLongReasons(t *testing.T) {
	t.Parallel()

	var received discordWebhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	alert := testSyncAlert(true)
	alert.Error = strings.Repeat("x", 5000)

	d := NewDiscordNotifier(srv.URL)
	require.NoError(t, d.SendSyncAlert(context.Background(), &alert))

	require.Len(t, received.Embeds, 1)
	assert.LessOrEqual(t, len(received.Embeds[0].Description), 1024)
	assert.True(t, strings.HasSuffix(received.Embeds[0].Description, "..."))
}
