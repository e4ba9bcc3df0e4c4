package msgprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/formaops/messaging-gateway/pkg/httpclient"
	"github.com/formaops/messaging-gateway/pkg/phone"
)

var _ Provider = (*CloudAPI)(nil)
var _ RichSender = (*CloudAPI)(nil)
var _ TemplateManager = (*CloudAPI)(nil)
var _ MediaSender = (*CloudAPI)(nil)

// CloudAPI talks to the hosted messaging graph API. Recipients are
// addressed as bare digit strings; authentication is a bearer token
// scoped to a tenant's phone number id.
type CloudAPI struct {
	cfg    Config
	client httpclient.HTTPClient
}

func NewCloudAPI(cfg Config, client httpclient.HTTPClient) *CloudAPI {
	return &CloudAPI{cfg: cfg, client: client}
}

type cloudSendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func (c *CloudAPI) SendTemplate(ctx context.Context, to string, templateName string, language string, params []string) Result {
	parameters := make([]map[string]string, 0, len(params))
	for _, p := range params {
		parameters = append(parameters, map[string]string{"type": "text", "text": p})
	}

	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                phone.Normalize(to),
		"type":              "template",
		"template": map[string]any{
			"name":     templateName,
			"language": map[string]string{"code": language},
			"components": []map[string]any{
				{"type": "body", "parameters": parameters},
			},
		},
	}

	return c.send(ctx, payload)
}

func (c *CloudAPI) SendFreeform(ctx context.Context, to string, text string, channel string) Result {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                phone.Normalize(to),
		"type":              "text",
		"text":              map[string]any{"body": text, "preview_url": false},
	}

	return c.send(ctx, payload)
}

func (c *CloudAPI) SendButtons(ctx context.Context, to string, body string, buttons []Button) Result {
	actions := make([]map[string]any, 0, len(buttons))
	for _, b := range buttons {
		actions = append(actions, map[string]any{
			"type":  "reply",
			"reply": map[string]string{"id": b.ID, "title": b.Title},
		})
	}

	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                phone.Normalize(to),
		"type":              "interactive",
		"interactive": map[string]any{
			"type":   "button",
			"body":   map[string]string{"text": body},
			"action": map[string]any{"buttons": actions},
		},
	}

	return c.send(ctx, payload)
}

func (c *CloudAPI) SendList(ctx context.Context, to string, body string, buttonLabel string, sections []ListSection) Result {
	sectionPayload := make([]map[string]any, 0, len(sections))
	for _, s := range sections {
		rows := make([]map[string]string, 0, len(s.Rows))
		for _, r := range s.Rows {
			rows = append(rows, map[string]string{"id": r.ID, "title": r.Title, "description": r.Description})
		}
		sectionPayload = append(sectionPayload, map[string]any{"title": s.Title, "rows": rows})
	}

	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                phone.Normalize(to),
		"type":              "interactive",
		"interactive": map[string]any{
			"type":   "list",
			"body":   map[string]string{"text": body},
			"action": map[string]any{"button": buttonLabel, "sections": sectionPayload},
		},
	}

	return c.send(ctx, payload)
}

func (c *CloudAPI) SendMedia(ctx context.Context, to string, mediaID string, mediaType string, caption string) Result {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                phone.Normalize(to),
		"type":              mediaType,
		mediaType:           map[string]string{"id": mediaID, "caption": caption},
	}

	return c.send(ctx, payload)
}

func (c *CloudAPI) UploadMedia(ctx context.Context, mimeType string, data []byte) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "upload")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	_ = writer.WriteField("messaging_product", "whatsapp")
	_ = writer.WriteField("type", mimeType)
	if err := writer.Close(); err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s/media", c.cfg.BaseURL, c.cfg.PhoneNumberID)
	headers := map[string]string{
		"Authorization": "Bearer " + c.cfg.AccessToken,
		"Content-Type":  writer.FormDataContentType(),
	}

	resp, err := c.client.Post(ctx, url, &buf, headers)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("media upload failed with status %d", resp.StatusCode)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}

	return out.ID, nil
}

func (c *CloudAPI) ListTemplates(ctx context.Context) ([]TemplateInfo, error) {
	url := fmt.Sprintf("%s/%s/message_templates", c.cfg.BaseURL, c.cfg.BusinessAccountID)

	resp, err := c.client.Get(ctx, url, c.authHeaders())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("template list failed with status %d", resp.StatusCode)
	}

	var out struct {
		Data []struct {
			Name     string `json:"name"`
			Language string `json:"language"`
			Status   string `json:"status"`
			Category string `json:"category"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}

	templates := make([]TemplateInfo, 0, len(out.Data))
	for _, t := range out.Data {
		templates = append(templates, TemplateInfo{
			Name: t.Name, Language: t.Language, Status: t.Status, Category: t.Category,
		})
	}

	return templates, nil
}

func (c *CloudAPI) CreateTemplate(ctx context.Context, def TemplateDefinition) error {
	payload := map[string]any{
		"name":     def.Name,
		"language": def.Language,
		"category": def.Category,
		"components": []map[string]any{
			{"type": "BODY", "text": def.BodyText},
		},
	}

	body, _ := json.Marshal(payload)
	url := fmt.Sprintf("%s/%s/message_templates", c.cfg.BaseURL, c.cfg.BusinessAccountID)

	resp, err := c.client.Post(ctx, url, bytes.NewReader(body), c.authHeaders())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("template create failed with status %d", resp.StatusCode)
	}

	return nil
}

func (c *CloudAPI) DeleteTemplate(ctx context.Context, name string) error {
	url := fmt.Sprintf("%s/%s/message_templates?name=%s", c.cfg.BaseURL, c.cfg.BusinessAccountID, name)

	resp, err := c.client.Delete(ctx, url, c.authHeaders())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("template delete failed with status %d", resp.StatusCode)
	}

	return nil
}

func (c *CloudAPI) send(ctx context.Context, payload map[string]any) Result {
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{Success: false, Status: StatusFailed, ErrorText: ErrorCodeServerError}
	}

	url := fmt.Sprintf("%s/%s/messages", c.cfg.BaseURL, c.cfg.PhoneNumberID)

	resp, err := c.client.Post(ctx, url, bytes.NewReader(body), c.authHeaders())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return Result{Success: false, Status: StatusFailed, ErrorText: ErrorCodeTimeout}
		}

		return Result{Success: false, Status: StatusFailed, ErrorText: ErrorCodeNetworkError}
	}

	defer resp.Body.Close()

	var decoded cloudSendResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil && resp.StatusCode == http.StatusOK {
		return Result{Success: false, Status: StatusFailed, ErrorText: ErrorCodeServerError}
	}

	if resp.StatusCode != http.StatusOK {
		code := classifyStatus(resp.StatusCode)
		if decoded.Error != nil && decoded.Error.Message != "" {
			return Result{Success: false, Status: StatusFailed, ErrorText: decoded.Error.Message}
		}
		return Result{Success: false, Status: StatusFailed, ErrorText: code}
	}

	if len(decoded.Messages) == 0 {
		return Result{Success: false, Status: StatusFailed, ErrorText: ErrorCodeServerError}
	}

	return Result{Success: true, Status: StatusSent, MessageID: decoded.Messages[0].ID}
}

func (c *CloudAPI) authHeaders() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + c.cfg.AccessToken,
		"Content-Type":  "application/json",
	}
}

func classifyStatus(status int) string {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrorCodeUnauthorized
	case status >= 400 && status < 500:
		return ErrorCodeInvalidRecipient
	default:
		return ErrorCodeServerError
	}
}
