package msgprovider_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/formaops/messaging-gateway/pkg/mocks"
	"github.com/formaops/messaging-gateway/pkg/msgprovider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func bspConfig() msgprovider.Config {
	return msgprovider.Config{
		Kind:            msgprovider.KindBSPGateway,
		GatewayURL:      "https://bsp.test/api",
		GatewayUser:     "tenant-user",
		GatewayPassword: "secret",
	}
}

func TestBSPGateway_SendFreeform(t *testing.T) {
	cfg := bspConfig()
	sendURL := "https://bsp.test/api/messages"

	t.Run("recipient is international form with basic auth", func(t *testing.T) {
		mockClient := &mocks.HTTPClient{}
		provider := msgprovider.NewBSPGateway(cfg, mockClient)

		response := &http.Response{
			StatusCode: 200,
			Body:       io.NopCloser(strings.NewReader(`{"message_id":"bsp-77","status":"queued"}`)),
		}

		mockClient.On("Post", context.Background(), sendURL, mock.MatchedBy(func(body interface{}) bool {
			reader, ok := body.(io.Reader)
			if !ok {
				return false
			}
			raw, _ := io.ReadAll(reader)
			var req map[string]string
			if err := json.Unmarshal(raw, &req); err != nil {
				return false
			}
			return req["to"] == "+33612345678" && req["content"] == "Rappel de session" && req["channel"] == "sms"
		}), mock.MatchedBy(func(headers map[string]string) bool {
			return strings.HasPrefix(headers["Authorization"], "Basic ")
		})).Return(response, nil)

		result := provider.SendFreeform(context.Background(), "0033 6 12 34 56 78", "Rappel de session", "sms")

		assert.True(t, result.Success)
		assert.Equal(t, "bsp-77", result.MessageID)
		assert.Equal(t, "queued", result.Status)
		mockClient.AssertExpectations(t)
	})

	t.Run("gateway rejection becomes failed result", func(t *testing.T) {
		mockClient := &mocks.HTTPClient{}
		provider := msgprovider.NewBSPGateway(cfg, mockClient)

		response := &http.Response{
			StatusCode: 400,
			Body:       io.NopCloser(strings.NewReader(`{"error":"unknown recipient"}`)),
		}

		mockClient.On("Post", context.Background(), sendURL, mock.Anything, mock.Anything).Return(response, nil)

		result := provider.SendFreeform(context.Background(), "123", "hello", "sms")

		assert.False(t, result.Success)
		assert.Equal(t, "unknown recipient", result.ErrorText)
	})

	t.Run("network failure never crosses the boundary", func(t *testing.T) {
		mockClient := &mocks.HTTPClient{}
		provider := msgprovider.NewBSPGateway(cfg, mockClient)

		mockClient.On("Post", context.Background(), sendURL, mock.Anything, mock.Anything).
			Return((*http.Response)(nil), io.ErrClosedPipe)

		result := provider.SendFreeform(context.Background(), "33612345678", "hello", "sms")

		assert.False(t, result.Success)
		assert.Equal(t, msgprovider.ErrorCodeNetworkError, result.ErrorText)
	})
}

func TestBSPGateway_SendTemplate(t *testing.T) {
	// Template names are opaque to the BSP; the router substitutes
	// fallback text and uses SendFreeform instead.
	provider := msgprovider.NewBSPGateway(bspConfig(), &mocks.HTTPClient{})

	result := provider.SendTemplate(context.Background(), "33612345678", "welcome_learner", "fr", nil)

	assert.False(t, result.Success)
}

func TestNew(t *testing.T) {
	client := &mocks.HTTPClient{}

	t.Run("cloud api kind", func(t *testing.T) {
		provider, err := msgprovider.New(msgprovider.Config{Kind: msgprovider.KindCloudAPI}, client)
		assert.NoError(t, err)
		assert.IsType(t, &msgprovider.CloudAPI{}, provider)
	})

	t.Run("bsp gateway kind", func(t *testing.T) {
		provider, err := msgprovider.New(msgprovider.Config{Kind: msgprovider.KindBSPGateway}, client)
		assert.NoError(t, err)
		assert.IsType(t, &msgprovider.BSPGateway{}, provider)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := msgprovider.New(msgprovider.Config{Kind: "SMTP"}, client)
		assert.Error(t, err)
	})
}
