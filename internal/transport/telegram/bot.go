package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/sandevgo/tuskchat/internal/config"
	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/internal/service/chat"
	"github.com/sandevgo/tuskchat/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const (
	baseContextKey  = "base_context"
	typingInterval  = 4 * time.Second
	placeholderText = "…"
)

type Bot struct {
	bot      *tele.Bot
	ownerID  int64
	registry *Registry
	chat     *chat.Orchestrator
	router   core.CmdRouter
	sender   *sender
	debug    bool
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	registry *Registry,
	orchestrator *chat.Orchestrator,
	router core.CmdRouter,
	debug bool,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:      b,
		ownerID:  cfg.OwnerID,
		registry: registry,
		chat:     orchestrator,
		router:   router,
		sender:   newSender(b),
		debug:    debug,
	}

	// Carry the signal context with its logger into handlers
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	// Only the owner may talk to the bot
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender() == nil || c.Sender().ID != bot.ownerID {
				return nil
			}
			return next(c)
		}
	})

	b.Handle(tele.OnText, bot.handleText)
	b.Handle(tele.OnDocument, bot.handleDocument)
	b.Handle(tele.OnPhoto, bot.handlePhoto)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("bot", b.bot.Me.Username).Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) handleText(c tele.Context) error {
	ctx := baseContext(c)
	key := sessionKey(c.Chat())

	if out, ok := b.router.Execute(ctx, key, c.Text()); ok {
		return b.sender.sendMarkdown(ctx, c.Chat(), out, nil)
	}
	return b.runTurn(ctx, c, chat.TurnInput{Text: c.Text()})
}

func (b *Bot) handleDocument(c tele.Context) error {
	ctx := baseContext(c)
	doc := c.Message().Document

	att, err := download(b.bot, &doc.File, doc.FileName, doc.MIME)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("file", doc.FileName).Msg("failed to fetch document")
		return c.Send(fmt.Sprintf("⚠️ Could not read %s: %v", doc.FileName, err))
	}
	return b.runTurn(ctx, c, chat.TurnInput{Text: captionOr(c.Message().Caption), Attachment: att})
}

func (b *Bot) handlePhoto(c tele.Context) error {
	ctx := baseContext(c)
	photo := c.Message().Photo

	// Telegram re-encodes photos as JPEG
	att, err := download(b.bot, &photo.File, "photo.jpg", "image/jpeg")
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to fetch photo")
		return c.Send(fmt.Sprintf("⚠️ Could not read the photo: %v", err))
	}
	return b.runTurn(ctx, c, chat.TurnInput{Text: captionOr(c.Message().Caption), Attachment: att})
}

func (b *Bot) runTurn(ctx context.Context, c tele.Context, in chat.TurnInput) error {
	logger := log.FromCtx(ctx)
	key := sessionKey(c.Chat())
	to := c.Chat()

	stopTyping := b.keepTyping(to)
	defer stopTyping()

	var placeholder *tele.Message
	var hooks chat.Hooks
	if b.chat.Streaming() {
		msg, err := b.bot.Send(to, placeholderText)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to send placeholder")
		} else {
			placeholder = msg
			editor := newStreamEditor(func(text string) error {
				_, err := b.bot.Edit(msg, text)
				if err != nil && !isNotModified(err) {
					logger.Debug().Err(err).Msg("failed to update streaming message")
					return err
				}
				return nil
			}, time.Now)
			hooks.OnFragment = editor.Update
		}
	}

	var (
		result chat.TurnResult
		err    error
	)
	b.registry.WithSession(key, func(s *chat.Session) {
		result, err = b.chat.Turn(ctx, s, in, hooks)
	})

	if b.debug && result.Retrieval != "" {
		_ = b.sender.sendRetrieval(ctx, to, result.Retrieval)
	}

	if err != nil {
		logger.Error().Err(err).Str("chat", key).Msg("turn failed")
		return b.sender.sendText(ctx, to, "⚠️ "+err.Error(), placeholder)
	}

	if err := b.sender.sendMarkdown(ctx, to, result.Reply, placeholder); err != nil {
		return err
	}
	return b.sender.sendCitations(ctx, to, result.Citations)
}

// keepTyping repeats the typing action until the returned func is called.
func (b *Bot) keepTyping(to tele.Recipient) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(typingInterval)
		defer ticker.Stop()
		for {
			_ = b.bot.Notify(to, tele.Typing)
			select {
			case <-done:
				return
			case <-ticker.C:
			}
		}
	}()
	return func() { close(done) }
}

func baseContext(c tele.Context) context.Context {
	if ctx, ok := c.Get(baseContextKey).(context.Context); ok {
		return ctx
	}
	return context.Background()
}

func sessionKey(ch *tele.Chat) string {
	return fmt.Sprintf("telegram-%d", ch.ID)
}
