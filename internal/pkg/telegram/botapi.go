package telegram

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// BotAPI is a direct Telegram Bot API client, used for operator
// payment reports only.
type BotAPI struct {
	token  string
	client *resty.Client
}

// NewBotAPI creates a new direct Telegram Bot API client.
func NewBotAPI(token string) *BotAPI {
	return NewBotAPIWithEndpoint(token, "https://api.telegram.org")
}

// NewBotAPIWithEndpoint points the client at an alternate Bot API
// server, e.g. a self-hosted bot-api instance.
func NewBotAPIWithEndpoint(token, endpoint string) *BotAPI {
	return &BotAPI{
		token: token,
		client: resty.New().
			SetBaseURL(endpoint + "/bot" + token).
			SetTimeout(30 * time.Second),
	}
}

// Call makes a raw API call to the Telegram Bot API.
func (b *BotAPI) Call(method string, params map[string]interface{}) (string, error) {
	resp, err := b.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(params).
		Post("/" + method)
	if err != nil {
		return "", fmt.Errorf("telegram API call %s failed: %w", method, err)
	}
	return resp.String(), nil
}

// SendMessage sends a text message.
func (b *BotAPI) SendMessage(chatID string, text string) (string, error) {
	return b.Call("sendMessage", map[string]interface{}{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	})
}
