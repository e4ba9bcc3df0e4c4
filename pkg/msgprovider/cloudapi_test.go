package msgprovider_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/formaops/messaging-gateway/pkg/mocks"
	"github.com/formaops/messaging-gateway/pkg/msgprovider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func cloudConfig() msgprovider.Config {
	return msgprovider.Config{
		Kind:              msgprovider.KindCloudAPI,
		BaseURL:           "https://graph.test/v19.0",
		AccessToken:       "token-123",
		PhoneNumberID:     "555000111",
		BusinessAccountID: "waba-42",
		Timeout:           10 * time.Second,
	}
}

func matchPayload(check func(payload map[string]any) bool) interface{} {
	return mock.MatchedBy(func(body interface{}) bool {
		reader, ok := body.(io.Reader)
		if !ok {
			return false
		}

		raw, err := io.ReadAll(reader)
		if err != nil {
			return false
		}

		var payload map[string]any
		if err := json.Unmarshal(raw, &payload); err != nil {
			return false
		}

		return check(payload)
	})
}

func TestCloudAPI_SendTemplate(t *testing.T) {
	cfg := cloudConfig()
	sendURL := "https://graph.test/v19.0/555000111/messages"
	headers := map[string]string{
		"Authorization": "Bearer token-123",
		"Content-Type":  "application/json",
	}

	t.Run("successful template send", func(t *testing.T) {
		mockClient := &mocks.HTTPClient{}
		provider := msgprovider.NewCloudAPI(cfg, mockClient)

		response := &http.Response{
			StatusCode: 200,
			Body:       io.NopCloser(strings.NewReader(`{"messages":[{"id":"wamid.abc123"}]}`)),
		}

		mockClient.On("Post", context.Background(), sendURL, matchPayload(func(payload map[string]any) bool {
			tpl, ok := payload["template"].(map[string]any)
			return ok &&
				payload["to"] == "33612345678" &&
				payload["type"] == "template" &&
				tpl["name"] == "welcome_learner"
		}), headers).Return(response, nil)

		result := provider.SendTemplate(context.Background(), "+33 6 12 34 56 78", "welcome_learner", "fr", []string{"Jean"})

		assert.True(t, result.Success)
		assert.Equal(t, "wamid.abc123", result.MessageID)
		assert.Equal(t, msgprovider.StatusSent, result.Status)
		mockClient.AssertExpectations(t)
	})

	t.Run("provider error becomes failed result", func(t *testing.T) {
		mockClient := &mocks.HTTPClient{}
		provider := msgprovider.NewCloudAPI(cfg, mockClient)

		response := &http.Response{
			StatusCode: 500,
			Body:       io.NopCloser(strings.NewReader(`{"error":{"message":"internal","code":131000}}`)),
		}

		mockClient.On("Post", context.Background(), sendURL, mock.Anything, headers).Return(response, nil)

		result := provider.SendTemplate(context.Background(), "33612345678", "welcome_learner", "fr", nil)

		assert.False(t, result.Success)
		assert.Equal(t, msgprovider.StatusFailed, result.Status)
		assert.Equal(t, "internal", result.ErrorText)
	})

	t.Run("timeout becomes failed result", func(t *testing.T) {
		mockClient := &mocks.HTTPClient{}
		provider := msgprovider.NewCloudAPI(cfg, mockClient)

		mockClient.On("Post", context.Background(), sendURL, mock.Anything, headers).
			Return((*http.Response)(nil), context.DeadlineExceeded)

		result := provider.SendTemplate(context.Background(), "33612345678", "welcome_learner", "fr", nil)

		assert.False(t, result.Success)
		assert.Equal(t, msgprovider.ErrorCodeTimeout, result.ErrorText)
	})
}

func TestCloudAPI_SendFreeform(t *testing.T) {
	cfg := cloudConfig()
	sendURL := "https://graph.test/v19.0/555000111/messages"

	t.Run("network failure becomes failed result", func(t *testing.T) {
		mockClient := &mocks.HTTPClient{}
		provider := msgprovider.NewCloudAPI(cfg, mockClient)

		mockClient.On("Post", context.Background(), sendURL, mock.Anything, mock.Anything).
			Return((*http.Response)(nil), io.ErrUnexpectedEOF)

		result := provider.SendFreeform(context.Background(), "33612345678", "hello", "whatsapp")

		assert.False(t, result.Success)
		assert.Equal(t, msgprovider.ErrorCodeNetworkError, result.ErrorText)
	})

	t.Run("text payload carries body", func(t *testing.T) {
		mockClient := &mocks.HTTPClient{}
		provider := msgprovider.NewCloudAPI(cfg, mockClient)

		response := &http.Response{
			StatusCode: 200,
			Body:       io.NopCloser(strings.NewReader(`{"messages":[{"id":"wamid.xyz"}]}`)),
		}

		mockClient.On("Post", context.Background(), sendURL, matchPayload(func(payload map[string]any) bool {
			text, ok := payload["text"].(map[string]any)
			return ok && payload["type"] == "text" && text["body"] == "Bonjour Jean"
		}), mock.Anything).Return(response, nil)

		result := provider.SendFreeform(context.Background(), "33612345678", "Bonjour Jean", "whatsapp")

		assert.True(t, result.Success)
		mockClient.AssertExpectations(t)
	})
}

func TestCloudAPI_SendList(t *testing.T) {
	cfg := cloudConfig()
	sendURL := "https://graph.test/v19.0/555000111/messages"

	mockClient := &mocks.HTTPClient{}
	provider := msgprovider.NewCloudAPI(cfg, mockClient)

	response := &http.Response{
		StatusCode: 200,
		Body:       io.NopCloser(strings.NewReader(`{"messages":[{"id":"wamid.list"}]}`)),
	}

	sections := []msgprovider.ListSection{
		{Title: "Nos services", Rows: []msgprovider.ListRow{
			{ID: "menu_formations", Title: "Formations"},
			{ID: "menu_horaires", Title: "Horaires"},
		}},
	}

	mockClient.On("Post", context.Background(), sendURL, matchPayload(func(payload map[string]any) bool {
		interactive, ok := payload["interactive"].(map[string]any)
		return ok && interactive["type"] == "list"
	}), mock.Anything).Return(response, nil)

	result := provider.SendList(context.Background(), "33612345678", "Que souhaitez-vous ?", "Menu", sections)

	assert.True(t, result.Success)
	assert.Equal(t, "wamid.list", result.MessageID)
	mockClient.AssertExpectations(t)
}

func TestCloudAPI_ListTemplates(t *testing.T) {
	cfg := cloudConfig()
	listURL := "https://graph.test/v19.0/waba-42/message_templates"

	mockClient := &mocks.HTTPClient{}
	provider := msgprovider.NewCloudAPI(cfg, mockClient)

	body := `{"data":[{"name":"welcome_learner","language":"fr","status":"APPROVED","category":"UTILITY"}]}`
	response := &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader(body))}

	mockClient.On("Get", context.Background(), listURL, mock.Anything).Return(response, nil)

	templates, err := provider.ListTemplates(context.Background())

	assert.NoError(t, err)
	assert.Len(t, templates, 1)
	assert.Equal(t, "welcome_learner", templates[0].Name)
	assert.Equal(t, "APPROVED", templates[0].Status)
}
