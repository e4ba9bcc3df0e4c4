package msgprovider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/formaops/messaging-gateway/pkg/httpclient"
	"github.com/formaops/messaging-gateway/pkg/phone"
)

var _ Provider = (*BSPGateway)(nil)

// BSPGateway talks to a telephony business-service-provider gateway.
// Recipients are "+"-prefixed international numbers; authentication is
// HTTP basic auth. The gateway has no notion of named provider
// templates, so SendTemplate delivers the already-substituted text the
// caller resolved from the template's fallback body.
type BSPGateway struct {
	cfg    Config
	client httpclient.HTTPClient
}

func NewBSPGateway(cfg Config, client httpclient.HTTPClient) *BSPGateway {
	return &BSPGateway{cfg: cfg, client: client}
}

type bspSendRequest struct {
	To      string `json:"to"`
	Content string `json:"content"`
	Channel string `json:"channel"`
}

type bspSendResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
	Error     string `json:"error"`
}

func (b *BSPGateway) SendTemplate(ctx context.Context, to string, templateName string, language string, params []string) Result {
	// Opaque template names cannot cross this gateway; the router
	// substitutes the mapping's fallback text before reaching here.
	return Result{Success: false, Status: StatusFailed, ErrorText: ErrorCodeInvalidRecipient}
}

func (b *BSPGateway) SendFreeform(ctx context.Context, to string, text string, channel string) Result {
	if channel == "" {
		channel = "sms"
	}

	payload := bspSendRequest{
		To:      phone.International(to),
		Content: text,
		Channel: channel,
	}

	body, _ := json.Marshal(payload)

	resp, err := b.client.Post(ctx, b.cfg.GatewayURL+"/messages", bytes.NewReader(body), b.authHeaders())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return Result{Success: false, Status: StatusFailed, ErrorText: ErrorCodeTimeout}
		}

		return Result{Success: false, Status: StatusFailed, ErrorText: ErrorCodeNetworkError}
	}

	defer resp.Body.Close()

	var decoded bspSendResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil && resp.StatusCode == http.StatusOK {
		return Result{Success: false, Status: StatusFailed, ErrorText: ErrorCodeServerError}
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		if decoded.Error != "" {
			return Result{Success: false, Status: StatusFailed, ErrorText: decoded.Error}
		}
		return Result{Success: false, Status: StatusFailed, ErrorText: classifyStatus(resp.StatusCode)}
	}

	status := decoded.Status
	if status == "" {
		status = StatusSent
	}

	return Result{Success: true, Status: status, MessageID: decoded.MessageID}
}

func (b *BSPGateway) authHeaders() map[string]string {
	credentials := base64.StdEncoding.EncodeToString([]byte(b.cfg.GatewayUser + ":" + b.cfg.GatewayPassword))
	return map[string]string{
		"Authorization": "Basic " + credentials,
		"Content-Type":  "application/json",
	}
}
