package telegram

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// maxRecorded caps the per-chat message ring. The generator only ever asks
// for the last K <= 100 messages.
const maxRecorded = 200

// Record is one message observed by the account.
type Record struct {
	ID     int64
	Text   string
	Sender string
	FromMe bool
	SentAt time.Time
}

// Dialog is one chat the account has seen traffic in.
type Dialog struct {
	ChatID int64
	Title  string
}

// Client wraps the Telegram Bot API. The Bot API has no history endpoint,
// so the client long-polls updates and keeps a bounded per-chat ring of
// recent messages that the poll-based core reads from.
type Client struct {
	api *tgbotapi.BotAPI
	log *zap.Logger

	mu      sync.RWMutex
	rings   map[int64][]Record
	dialogs map[int64]string
}

// NewClient creates a new Telegram client and authorizes the bot token.
func NewClient(token string, log *zap.Logger) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot api: %w", err)
	}

	log.Info("telegram bot authorized", zap.String("username", api.Self.UserName))

	return &Client{
		api:     api,
		log:     log,
		rings:   make(map[int64][]Record),
		dialogs: make(map[int64]string),
	}, nil
}

// Start begins consuming updates until the context is cancelled.
func (c *Client) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := c.api.GetUpdatesChan(u)
	c.log.Info("telegram update listener started")

	for {
		select {
		case <-ctx.Done():
			c.api.StopReceivingUpdates()
			c.log.Info("telegram update listener stopped")
			return
		case update := <-updates:
			if update.Message != nil {
				c.record(update.Message)
			}
		}
	}
}

func (c *Client) record(m *tgbotapi.Message) {
	if m.Text == "" {
		return
	}

	rec := Record{
		ID:     int64(m.MessageID),
		Text:   m.Text,
		FromMe: m.From != nil && m.From.ID == c.api.Self.ID,
		SentAt: time.Unix(int64(m.Date), 0),
	}
	if m.From != nil {
		rec.Sender = m.From.UserName
		if rec.Sender == "" {
			rec.Sender = m.From.FirstName
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	chatID := m.Chat.ID
	ring := append(c.rings[chatID], rec)
	if len(ring) > maxRecorded {
		ring = ring[len(ring)-maxRecorded:]
	}
	c.rings[chatID] = ring
	c.dialogs[chatID] = chatTitle(m.Chat)
}

func chatTitle(chat *tgbotapi.Chat) string {
	if chat.Title != "" {
		return chat.Title
	}
	if chat.UserName != "" {
		return chat.UserName
	}
	return chat.FirstName
}

// Recent returns up to count most recent messages for a chat, oldest first.
func (c *Client) Recent(chatID int64, count int) []Record {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ring := c.rings[chatID]
	if len(ring) > count {
		ring = ring[len(ring)-count:]
	}

	out := make([]Record, len(ring))
	copy(out, ring)
	return out
}

// Send posts a text message into a chat.
func (c *Client) Send(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	sent, err := c.api.Send(msg)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	// Record our own outgoing message so the next fetch window sees it.
	c.mu.Lock()
	defer c.mu.Unlock()
	ring := append(c.rings[chatID], Record{
		ID:     int64(sent.MessageID),
		Text:   text,
		Sender: c.api.Self.UserName,
		FromMe: true,
		SentAt: time.Unix(int64(sent.Date), 0),
	})
	if len(ring) > maxRecorded {
		ring = ring[len(ring)-maxRecorded:]
	}
	c.rings[chatID] = ring
	return nil
}

// Dialogs lists the chats the account has seen traffic in, sorted by ID for
// deterministic sync order.
func (c *Client) Dialogs() []Dialog {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Dialog, 0, len(c.dialogs))
	for id, title := range c.dialogs {
		out = append(out, Dialog{ChatID: id, Title: title})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChatID < out[j].ChatID })
	return out
}
