// Package tgclient wraps the Telegram Bot API behind the narrow transport
// surface the dialog services need. All outgoing text passes through the
// same escaping and truncation here, never in the services.
package tgclient

import (
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const maxMessageLength = 4000

// Client sends messages and fetches uploaded files via the Bot API.
type Client struct {
	bot  *tgbotapi.BotAPI
	http *http.Client
}

// New wraps a connected Bot API instance.
func New(bot *tgbotapi.BotAPI) *Client {
	return &Client{
		bot:  bot,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// SendText sends an HTML message to a chat with an optional keyboard markup.
func (c *Client) SendText(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, truncateMessage(safeHTML(text)))
	msg.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	_, err := c.bot.Send(msg)
	if err != nil {
		logrus.WithError(err).Errorf("Failed to send message to chat %d", chatID)
	}
	return err
}

// AnswerCallback acknowledges a callback query so the client stops the
// loading spinner.
func (c *Client) AnswerCallback(callbackID string) error {
	_, err := c.bot.Request(tgbotapi.NewCallback(callbackID, ""))
	if err != nil {
		logrus.WithError(err).Error("Failed to answer callback query")
	}
	return err
}

// FetchFile downloads an uploaded document by its Telegram file id.
func (c *Client) FetchFile(fileID string) ([]byte, error) {
	url, err := c.bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file %s: %w", fileID, err)
	}
	resp, err := c.http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file %s: unexpected status %s", fileID, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", fileID, err)
	}
	return data, nil
}

// formatTags are the markup tags our own messages use; they survive the
// escape, everything else in the text is escaped as content.
var formatTags = []string{"b", "i", "code"}

// safeHTML escapes user-tainted text while keeping the bot's own
// formatting tags intact.
func safeHTML(text string) string {
	if text == "" {
		return ""
	}
	for i, tag := range formatTags {
		text = strings.ReplaceAll(text, "<"+tag+">", placeholder(i, false))
		text = strings.ReplaceAll(text, "</"+tag+">", placeholder(i, true))
	}
	text = html.EscapeString(text)
	for i, tag := range formatTags {
		text = strings.ReplaceAll(text, placeholder(i, false), "<"+tag+">")
		text = strings.ReplaceAll(text, placeholder(i, true), "</"+tag+">")
	}
	return text
}

func placeholder(i int, closing bool) string {
	if closing {
		return fmt.Sprintf("\x00/%d\x00", i)
	}
	return fmt.Sprintf("\x00%d\x00", i)
}

func truncateMessage(text string) string {
	runes := []rune(text)
	if len(runes) <= maxMessageLength {
		return text
	}
	return string(runes[:maxMessageLength-3]) + "..."
}
