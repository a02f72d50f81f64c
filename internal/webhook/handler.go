// Package webhook answers farming questions sent to the LINE official
// account. Each text message runs through the advisor pipeline and the
// advice comes back as the reply; new followers get the greeting.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/garyellow/agri-advisor-go/internal/advisor"
	"github.com/garyellow/agri-advisor-go/internal/ctxutil"
	"github.com/garyellow/agri-advisor-go/internal/logger"
	"github.com/garyellow/agri-advisor-go/internal/metrics"
	"github.com/garyellow/agri-advisor-go/internal/ratelimit"
	"github.com/garyellow/agri-advisor-go/internal/stringutil"
)

// LINE Messaging API limits.
const (
	maxEventsPerWebhook = 100
	maxTextLength       = 5000 // runes per text message
	minReplyTokenLength = 10
	loadingSeconds      = 20 // multiple of 5 within 5..60
)

// Reply texts.
const (
	RateLimitedText = "You're sending questions too quickly. Please wait a moment and try again."
	TooLongText     = "Your question is too long. Please keep it to a sentence or two."
	TextOnlyText    = "Please send your farming question as a text message."
	ErrorText       = advisor.ErrorAdvice
)

// QueryProcessor answers one question, usually *advisor.Service.
type QueryProcessor interface {
	ProcessQuery(ctx context.Context, text string) (advisor.Result, error)
}

// Messenger is the subset of the Messaging API the handler calls.
type Messenger interface {
	ReplyMessage(req *messaging_api.ReplyMessageRequest) (*messaging_api.ReplyMessageResponse, error)
	ShowLoadingAnimation(req *messaging_api.ShowLoadingAnimationRequest) (*map[string]interface{}, error)
}

// HandlerConfig wires a Handler.
type HandlerConfig struct {
	ChannelSecret string
	ChannelToken  string
	Messenger     Messenger // nil creates a Messaging API client from ChannelToken

	Advisor     QueryProcessor
	UserLimiter *ratelimit.KeyedLimiter // per LINE user; nil disables
	ReplyRate   float64                 // outbound replies per second; 0 means 100

	Greeting       string
	MaxQueryLength int           // runes; 0 means unlimited
	Timeout        time.Duration // per event; 0 means 20s

	Metrics *metrics.Metrics
	Logger  *logger.Logger
}

// Handler serves the LINE webhook. Events are answered asynchronously
// after the 200 response, as LINE requires.
type Handler struct {
	channelSecret  string
	client         Messenger
	advisor        QueryProcessor
	userLimiter    *ratelimit.KeyedLimiter
	replyLimiter   *ratelimit.Limiter
	greeting       string
	maxQueryLength int
	timeout        time.Duration
	metrics        *metrics.Metrics
	logger         *logger.Logger
	wg             sync.WaitGroup
}

// NewHandler validates cfg and creates the Messaging API client if needed.
func NewHandler(cfg HandlerConfig) (*Handler, error) {
	if cfg.ChannelSecret == "" {
		return nil, errors.New("webhook: channel secret is required")
	}
	if cfg.Advisor == nil {
		return nil, errors.New("webhook: advisor is required")
	}

	client := cfg.Messenger
	if client == nil {
		api, err := messaging_api.NewMessagingApiAPI(cfg.ChannelToken)
		if err != nil {
			return nil, fmt.Errorf("create messaging API client: %w", err)
		}
		client = api
	}

	rate := cfg.ReplyRate
	if rate <= 0 {
		rate = 100
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}

	return &Handler{
		channelSecret:  cfg.ChannelSecret,
		client:         client,
		advisor:        cfg.Advisor,
		userLimiter:    cfg.UserLimiter,
		replyLimiter:   ratelimit.New(rate, rate),
		greeting:       cfg.Greeting,
		maxQueryLength: cfg.MaxQueryLength,
		timeout:        timeout,
		metrics:        cfg.Metrics,
		logger:         log.WithModule("webhook"),
	}, nil
}

// Handle is the gin handler for the callback endpoint.
func (h *Handler) Handle(c *gin.Context) {
	cb, err := webhook.ParseRequest(h.channelSecret, c.Request)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			h.logger.WarnContext(c.Request.Context(), "Invalid webhook signature")
			c.Status(http.StatusBadRequest)
		} else {
			h.logger.WithError(err).ErrorContext(c.Request.Context(), "Failed to parse webhook request")
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.Status(http.StatusOK)
	h.metrics.RecordWebhook("batch", "received")

	if len(cb.Events) > maxEventsPerWebhook {
		h.logger.WarnContext(c.Request.Context(), "Too many events in webhook batch; truncating",
			"event_count", len(cb.Events), "limit", maxEventsPerWebhook)
		cb.Events = cb.Events[:maxEventsPerWebhook]
	}
	events := append([]webhook.EventInterface(nil), cb.Events...)
	start := time.Now()

	h.wg.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				h.logger.Error("Panic in async event processing", "panic", r)
			}
		}()
		for _, event := range events {
			h.processEvent(event, start)
		}
	})
}

func (h *Handler) processEvent(event webhook.EventInterface, batchStart time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	meta := metaOf(event)
	if meta.eventID != "" {
		ctx = ctxutil.WithRequestID(ctx, meta.eventID)
	}
	if userID := userIDOf(meta.source); userID != "" {
		ctx = ctxutil.WithUserID(ctx, userID)
	}
	log := h.logger
	if meta.redelivery {
		log = log.WithField("is_redelivery", true)
	}

	var (
		eventType string
		reply     string
		err       error
	)
	switch e := event.(type) {
	case webhook.MessageEvent:
		eventType = "message"
		reply, err = h.handleMessage(ctx, e)
	case webhook.FollowEvent:
		eventType = "follow"
		reply = h.greeting
	case webhook.JoinEvent:
		eventType = "join"
		reply = h.greeting
	default:
		log.DebugContext(ctx, "Unsupported event type", "event_type", fmt.Sprintf("%T", e))
		return
	}

	status := "success"
	if err != nil {
		status = "error"
		log.WithError(err).ErrorContext(ctx, "Failed to handle event", "event_type", eventType)
	}
	if reply == "" {
		h.metrics.RecordWebhook(eventType, "ignored")
		return
	}
	if replyErr := h.reply(ctx, meta.replyToken, reply); replyErr != nil {
		status = "reply_error"
		log.WithError(replyErr).WarnContext(ctx, "Failed to send reply")
	}
	h.metrics.RecordWebhook(eventType, status)

	log.InfoContext(ctx, "Event processed",
		"event_type", eventType,
		"batch_duration_ms", time.Since(batchStart).Milliseconds())
}

// handleMessage returns the reply for a message event, or "" for no reply.
// Group and room messages are answered only when they mention the bot.
func (h *Handler) handleMessage(ctx context.Context, e webhook.MessageEvent) (string, error) {
	personal := isPersonalChat(e.Source)
	textMsg, ok := e.Message.(webhook.TextMessageContent)
	if !ok {
		if personal && e.Message.GetType() != "sticker" {
			return TextOnlyText, nil
		}
		return "", nil
	}

	text := textMsg.Text
	if !personal {
		if !isBotMentioned(textMsg) {
			return "", nil
		}
		text = removeBotMentions(text, textMsg.Mention)
	}
	text = strings.TrimSpace(text)

	if userID := userIDOf(e.Source); h.userLimiter != nil && !h.userLimiter.Allow(userID) {
		h.logger.InfoContext(ctx, "User rate limited",
			"retry_after_ms", h.userLimiter.RetryAfter(userID).Milliseconds())
		return RateLimitedText, nil
	}
	if h.maxQueryLength > 0 && utf8.RuneCountInString(text) > h.maxQueryLength {
		return TooLongText, nil
	}

	if chatID := chatIDOf(e.Source); chatID != "" {
		if _, err := h.client.ShowLoadingAnimation(&messaging_api.ShowLoadingAnimationRequest{
			ChatId:         chatID,
			LoadingSeconds: loadingSeconds,
		}); err != nil {
			h.logger.WithError(err).DebugContext(ctx, "Failed to show loading animation")
		}
	}

	res, err := h.advisor.ProcessQuery(ctx, text)
	if err != nil {
		return ErrorText, fmt.Errorf("process query: %w", err)
	}
	return res.Advice, nil
}

func (h *Handler) reply(ctx context.Context, token, text string) error {
	if len(token) < minReplyTokenLength {
		return fmt.Errorf("invalid reply token (length %d)", len(token))
	}
	if err := h.replyLimiter.Wait(ctx); err != nil {
		h.metrics.RecordRateLimiterDrop("line_reply")
		return fmt.Errorf("waiting for reply slot: %w", err)
	}
	_, err := h.client.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: token,
		Messages:   []messaging_api.MessageInterface{messaging_api.TextMessage{Text: stringutil.Truncate(text, maxTextLength)}},
	})
	return err
}

// Shutdown waits for in-flight events until ctx ends.
func (h *Handler) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.wg.Wait()
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
