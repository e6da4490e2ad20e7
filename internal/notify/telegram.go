package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultPollTimeout is the long-poll timeout passed to getUpdates.
const DefaultPollTimeout = 30 * time.Second

// Bot is a minimal Telegram Bot API client. It covers only the methods
// the audit bot needs: sending, editing and deleting messages, plus
// getUpdates long-polling for incoming commands.
type Bot struct {
	token      string
	httpClient *http.Client
	baseURL    string // overridable for testing; defaults to Telegram API
}

// NewBot creates a Bot for the given token.
func NewBot(token string) *Bot {
	return &Bot{
		token: token,
		// Must outlive the getUpdates long-poll window.
		httpClient: &http.Client{Timeout: DefaultPollTimeout + 15*time.Second},
	}
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID int64 `json:"id"`
}

// Message is the subset of the Bot API message object the bot reads.
type Message struct {
	MessageID int    `json:"message_id"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

// Update is one entry from getUpdates.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

func (b *Bot) endpoint(method string) string {
	base := b.baseURL
	if base == "" {
		base = "https://api.telegram.org"
	}
	return fmt.Sprintf("%s/bot%s/%s", base, b.token, method)
}

// call posts a Bot API method and decodes the result envelope into out.
// out may be nil when the caller only cares about success.
func (b *Bot) call(ctx context.Context, method string, vals url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint(method), nil)
	if err != nil {
		return fmt.Errorf("notify: build %s request: %w", method, err)
	}
	req.URL.RawQuery = vals.Encode()

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: %s: %w", method, err)
	}
	defer resp.Body.Close()

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("notify: decode %s response: %w", method, err)
	}
	if !body.OK {
		return fmt.Errorf("notify: telegram %s %d: %s", method, resp.StatusCode, body.Description)
	}
	if out != nil {
		if err := json.Unmarshal(body.Result, out); err != nil {
			return fmt.Errorf("notify: decode %s result: %w", method, err)
		}
	}
	return nil
}

// SendMessage posts a Markdown message and returns its message id,
// so the caller can edit it in place later.
func (b *Bot) SendMessage(ctx context.Context, chatID int64, text string) (int, error) {
	vals := url.Values{
		"chat_id":    {strconv.FormatInt(chatID, 10)},
		"text":       {text},
		"parse_mode": {"Markdown"},
	}
	var msg Message
	if err := b.call(ctx, "sendMessage", vals, &msg); err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}

// EditMessageText replaces the text of a previously sent message.
func (b *Bot) EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error {
	vals := url.Values{
		"chat_id":    {strconv.FormatInt(chatID, 10)},
		"message_id": {strconv.Itoa(messageID)},
		"text":       {text},
		"parse_mode": {"Markdown"},
	}
	return b.call(ctx, "editMessageText", vals, nil)
}

// DeleteMessage removes a previously sent message.
func (b *Bot) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	vals := url.Values{
		"chat_id":    {strconv.FormatInt(chatID, 10)},
		"message_id": {strconv.Itoa(messageID)},
	}
	return b.call(ctx, "deleteMessage", vals, nil)
}

// GetUpdates long-polls for incoming updates starting at offset.
func (b *Bot) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	vals := url.Values{
		"offset":  {strconv.FormatInt(offset, 10)},
		"timeout": {strconv.Itoa(int(timeout / time.Second))},
	}
	var updates []Update
	if err := b.call(ctx, "getUpdates", vals, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}
