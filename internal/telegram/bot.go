// Package telegram is the chat front-end. Each telegram user maps to one
// conversation session; all routing logic lives in the router package.
package telegram

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"book-chatter/internal/history"
	"book-chatter/internal/router"
)

const resetCmd = "reset_ctx"

// sender is the slice of the telegram API the bot needs; tests fake it.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api     *tgbotapi.BotAPI
	s       sender
	rt      *router.Router
	history *history.Manager
}

func New(botToken string, rt *router.Router, hist *history.Manager) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &Bot{api: api, s: api, rt: rt, history: hist}, nil
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if update.Message != nil {
			b.handleIncomingMessage(ctx, update.Message)
			continue
		}
		if update.CallbackQuery != nil {
			b.handleCallback(update.CallbackQuery)
			continue
		}
	}
}

// sessionID keys the conversation log per telegram user.
func sessionID(userID int64) string {
	return fmt.Sprintf("tg:%d", userID)
}

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	log.Printf("💬 message from %d (@%s): %q", msg.From.ID, msg.From.UserName, msg.Text)

	if msg.Text == "/reset" {
		b.history.Reset(sessionID(msg.From.ID))
		b.sendMessage(msg.Chat.ID, "Context cleared.")
		return
	}

	reply, err := b.rt.Handle(ctx, sessionID(msg.From.ID), msg.Text)
	if err != nil {
		log.Printf("❌ turn failed for %d: %v", msg.From.ID, err)
		b.sendMessage(msg.Chat.ID, "Sorry, the catalog is unavailable right now.")
		return
	}

	// Reply with inline button to reset context
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Reset context", resetCmd),
		),
	)
	msgOut := tgbotapi.NewMessage(msg.Chat.ID, reply)
	msgOut.ReplyMarkup = kb
	if _, err := b.s.Send(msgOut); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}

func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	if cb.Data == resetCmd {
		b.history.Reset(sessionID(cb.From.ID))
		b.sendMessage(cb.Message.Chat.ID, "Context cleared.")
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.s.Send(msg); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}
