package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/keyshopvn/keyshop/config"
	"github.com/keyshopvn/keyshop/internal/domain"
)

// Notifier implements domain.Notifier over the Telegram bot API.
// Order and restock messages go to the operations chat; support
// handoffs go to the support chat when one is configured.
type Notifier struct {
	cfg        config.TelegramConfig
	httpClient *http.Client
	timeout    time.Duration
}

// NewNotifier creates a new Telegram notifier
func NewNotifier(cfg config.TelegramConfig, client *http.Client) *Notifier {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	return &Notifier{
		cfg:        cfg,
		httpClient: client,
		timeout:    timeout,
	}
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// Send delivers a single notification. The buyer context, when present,
// is appended so operators can see who triggered the message.
func (n *Notifier) Send(notification *domain.Notification) error {
	if notification == nil {
		return fmt.Errorf("notification is required")
	}
	if n.cfg.BotToken == "" {
		return fmt.Errorf("telegram bot token is not configured")
	}

	text := notification.Message
	if notification.Sender != nil {
		text = fmt.Sprintf("%s\n\nNgười gửi: %s (@%s)",
			text, notification.Sender.FullName, notification.Sender.Username)
	}

	chatID := n.chatFor(notification.Kind)
	if chatID == "" {
		return fmt.Errorf("telegram chat id is not configured")
	}

	payload := &sendMessageRequest{
		ChatID: chatID,
		Text:   text,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal telegram payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.cfg.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request failed: %w", err)
	}
	defer resp.Body.Close()

	var result sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode telegram response: %w", err)
	}

	if !result.OK {
		return fmt.Errorf("telegram rejected message: %s", result.Description)
	}

	return nil
}

func (n *Notifier) chatFor(kind string) string {
	if kind == domain.NotifySupportHandoff && n.cfg.SupportChatID != "" {
		return n.cfg.SupportChatID
	}
	return n.cfg.ChatID
}
