package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"strings"
	"time"

	"lingo-relay/internal/dispatcher"
	app_errors "lingo-relay/internal/errors"
	"lingo-relay/internal/i18n"
	"lingo-relay/internal/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	signatureHeader  = "X-Line-Signature"
	translateTimeout = 30 * time.Second
)

// webhookPayload is the inbound webhook body.
type webhookPayload struct {
	Events []webhookEvent `json:"events"`
}

type webhookEvent struct {
	Type       string `json:"type"`
	ReplyToken string `json:"replyToken"`
	Source     struct {
		Type    string `json:"type"`
		GroupID string `json:"groupId"`
		UserID  string `json:"userId"`
	} `json:"source"`
	Message struct {
		Type string `json:"type"`
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"message"`
	Postback struct {
		Data string `json:"data"`
	} `json:"postback"`
}

// Webhook verifies the signature and processes the event batch. The
// response is returned as soon as events are accepted; translation work
// continues in the background.
func (s *Server) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, app_errors.ErrBadRequest)
		return
	}

	if !s.verifySignature(body, c.GetHeader(signatureHeader)) {
		logrus.Warn("Webhook signature verification failed")
		response.ErrorI18n(c, app_errors.ErrInvalidSignature, "webhook.invalid_signature")
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		response.Error(c, app_errors.ErrInvalidJSON)
		return
	}

	for i := range payload.Events {
		s.handleEvent(&payload.Events[i])
	}

	response.Success(c, nil)
}

// verifySignature checks the HMAC-SHA256 signature over the raw body.
func (s *Server) verifySignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}

	secret := s.configManager.GetAuthConfig().ChannelSecret
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

func (s *Server) handleEvent(event *webhookEvent) {
	groupID := event.Source.GroupID
	userID := event.Source.UserID

	if groupID != "" {
		s.groupService.TouchActivity(groupID)
	}

	switch event.Type {
	case "join":
		s.handleJoin(event)
	case "postback":
		s.handlePostback(event, groupID, userID)
	case "message":
		if event.Message.Type == "text" {
			s.handleTextMessage(event, groupID, userID)
		}
	default:
		logrus.WithField("type", event.Type).Debug("Ignoring unsupported event type")
	}
}

func (s *Server) handleJoin(event *webhookEvent) {
	welcome := i18n.TDefault("bot.welcome")
	menu := s.buildMenuText(event.Source.GroupID)
	if err := s.messenger.Reply(event.ReplyToken, welcome, menu); err != nil {
		logrus.WithError(err).Warn("Failed to send welcome message")
	}
}

func (s *Server) handlePostback(event *webhookEvent, groupID, userID string) {
	if groupID == "" {
		return
	}
	if !s.adminService.IsPrivileged(groupID, userID) {
		s.reply(event.ReplyToken, i18n.TDefault("bot.not_privileged"))
		return
	}

	data := event.Postback.Data
	switch {
	case strings.HasPrefix(data, "lang:"):
		code := strings.TrimPrefix(data, "lang:")
		enabled, err := s.groupService.ToggleLanguage(groupID, code)
		if err != nil {
			logrus.WithError(err).WithField("group_id", groupID).Warn("Failed to toggle language")
			return
		}
		msgID := "bot.language_removed"
		if enabled {
			msgID = "bot.language_added"
		}
		s.reply(event.ReplyToken, i18n.TDefault(msgID, map[string]any{"Lang": code}))

	case data == "reset":
		if err := s.groupService.ResetLanguages(groupID); err != nil {
			logrus.WithError(err).WithField("group_id", groupID).Warn("Failed to reset languages")
			return
		}
		s.reply(event.ReplyToken, i18n.TDefault("bot.languages_reset"))
	}
}

func (s *Server) handleTextMessage(event *webhookEvent, groupID, userID string) {
	text := event.Message.Text

	if strings.HasPrefix(text, "/") {
		s.handleCommand(event, groupID, userID, text)
		return
	}
	if groupID == "" {
		return
	}

	group, err := s.groupService.GetGroup(groupID)
	if err != nil {
		logrus.WithError(err).WithField("group_id", groupID).Warn("Failed to load group config")
		return
	}
	if !group.AutoTranslate {
		return
	}

	if !s.gate.TryAcquire() {
		s.reply(event.ReplyToken, i18n.TDefault("bot.busy"))
		return
	}

	langs := s.groupService.GetLanguages(groupID)
	order := dispatcher.ProviderOrder(group.EnginePref)
	replyToken := event.ReplyToken

	// The webhook responder returns immediately; translation happens
	// in a detached goroutine holding the gate slot.
	go func() {
		defer s.gate.Release()

		ctx, cancel := context.WithTimeout(context.Background(), translateTimeout)
		defer cancel()

		result := s.dispatcher.FormatResults(ctx, text, langs, order, groupID)
		if result == "" {
			return
		}
		if err := s.messenger.Reply(replyToken, result); err != nil {
			logrus.WithError(err).WithField("group_id", groupID).Warn("Failed to deliver translation")
		}
	}()
}

func (s *Server) reply(replyToken string, texts ...string) {
	if replyToken == "" {
		return
	}
	if err := s.messenger.Reply(replyToken, texts...); err != nil {
		logrus.WithError(err).Warn("Failed to send reply")
	}
}
