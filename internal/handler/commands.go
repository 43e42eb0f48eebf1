package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"lingo-relay/internal/i18n"

	"github.com/sirupsen/logrus"
)

// handleCommand dispatches slash commands from group or direct messages.
func (s *Server) handleCommand(event *webhookEvent, groupID, userID, text string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return
	}
	command := strings.ToLower(fields[0])
	args := fields[1:]

	switch command {
	case "/status":
		s.commandStatus(event, userID)
	case "/menu":
		s.reply(event.ReplyToken, s.buildMenuText(groupID))
	case "/bind":
		s.commandBind(event, groupID, userID)
	case "/claim":
		s.commandClaim(event, groupID, userID)
	case "/engine":
		s.commandEngine(event, groupID, userID, args)
	case "/auto":
		s.commandAuto(event, groupID, userID, args)
	case "/grant":
		s.commandGrant(event, userID, args)
	case "/transfer":
		s.commandTransfer(event, userID)
	case "/transfer-confirm":
		s.commandTransferConfirm(event, userID, args)
	case "/transfer-cancel":
		s.commandTransferCancel(event, userID)
	default:
		logrus.WithField("command", command).Debug("Unknown command ignored")
	}
}

// buildMenuText renders the language menu descriptor as plain text with
// the currently enabled languages marked.
func (s *Server) buildMenuText(groupID string) string {
	enabled := make(map[string]struct{})
	if groupID != "" {
		for _, l := range s.groupService.GetLanguages(groupID) {
			enabled[l] = struct{}{}
		}
	}

	candidates := []string{"zh-TW", "en", "ja", "ko", "th", "vi", "id", "es", "fr", "de", "ru", "pt"}

	var sb strings.Builder
	sb.WriteString(i18n.TDefault("bot.menu_title"))
	sb.WriteString("\n")
	for _, code := range candidates {
		if _, on := enabled[code]; on {
			sb.WriteString(fmt.Sprintf("✅ %s\n", code))
		} else {
			sb.WriteString(fmt.Sprintf("▫️ %s\n", code))
		}
	}
	sb.WriteString("lang:<code> / reset")
	return sb.String()
}

func (s *Server) commandStatus(event *webhookEvent, userID string) {
	tenant, err := s.tenantService.GetTenant(userID)
	if err != nil || !tenant.IsValidAt(time.Now().UTC()) {
		s.reply(event.ReplyToken, i18n.TDefault("bot.status_free"))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Plan: %s\n", tenant.Plan))
	sb.WriteString(fmt.Sprintf("Expires: %s\n", tenant.ExpiresAt.UTC().Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Translations: %d\n", tenant.TranslateCount))
	sb.WriteString(fmt.Sprintf("Characters today: %d", tenant.TodayCharCount))
	s.reply(event.ReplyToken, sb.String())
}

func (s *Server) commandBind(event *webhookEvent, groupID, userID string) {
	if groupID == "" {
		return
	}
	if s.tenantService.BindGroup(userID, groupID) {
		s.reply(event.ReplyToken, i18n.TDefault("bot.bind_success"))
	} else {
		s.reply(event.ReplyToken, i18n.TDefault("bot.bind_failed"))
	}
}

func (s *Server) commandClaim(event *webhookEvent, groupID, userID string) {
	if groupID == "" {
		return
	}
	if s.adminService.Claim(groupID, userID) {
		s.reply(event.ReplyToken, i18n.TDefault("bot.claim_success"))
	} else {
		s.reply(event.ReplyToken, i18n.TDefault("bot.claim_taken"))
	}
}

func (s *Server) commandEngine(event *webhookEvent, groupID, userID string, args []string) {
	if groupID == "" || len(args) == 0 {
		return
	}
	if !s.adminService.IsPrivileged(groupID, userID) {
		s.reply(event.ReplyToken, i18n.TDefault("bot.not_privileged"))
		return
	}

	engine, err := s.groupService.SetEnginePref(groupID, strings.ToLower(args[0]))
	if err != nil {
		logrus.WithError(err).WithField("group_id", groupID).Warn("Failed to set engine preference")
		return
	}
	s.reply(event.ReplyToken, i18n.TDefault("bot.engine_set", map[string]any{"Engine": engine}))
}

func (s *Server) commandAuto(event *webhookEvent, groupID, userID string, args []string) {
	if groupID == "" || len(args) == 0 {
		return
	}
	if !s.adminService.IsPrivileged(groupID, userID) {
		s.reply(event.ReplyToken, i18n.TDefault("bot.not_privileged"))
		return
	}

	on := strings.ToLower(args[0]) == "on"
	if err := s.groupService.SetAutoTranslate(groupID, on); err != nil {
		logrus.WithError(err).WithField("group_id", groupID).Warn("Failed to set auto translate")
		return
	}
	msgID := "bot.auto_off"
	if on {
		msgID = "bot.auto_on"
	}
	s.reply(event.ReplyToken, i18n.TDefault(msgID))
}

// commandGrant grants or renews a subscription. Master operators only.
// Usage: /grant <userID> <months>
func (s *Server) commandGrant(event *webhookEvent, userID string, args []string) {
	if !s.adminService.IsMaster(userID) {
		return
	}
	if len(args) < 2 {
		return
	}

	months, err := strconv.Atoi(args[1])
	if err != nil || months < 1 {
		return
	}

	if _, err := s.tenantService.CreateOrRenew(args[0], months); err != nil {
		logrus.WithError(err).WithField("target", args[0]).Warn("Failed to grant subscription")
		return
	}
	s.reply(event.ReplyToken, i18n.TDefault("bot.grant_success", map[string]any{"Months": strconv.Itoa(months)}))
}

func (s *Server) commandTransfer(event *webhookEvent, userID string) {
	code, err := s.tenantService.ProposeTransfer(userID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Debug("Transfer proposal rejected")
		s.reply(event.ReplyToken, i18n.TDefault("bot.status_free"))
		return
	}
	s.reply(event.ReplyToken, i18n.TDefault("bot.transfer_proposed", map[string]any{"Code": code}))
}

func (s *Server) commandTransferConfirm(event *webhookEvent, userID string, args []string) {
	if len(args) == 0 {
		return
	}
	if err := s.tenantService.ConfirmTransfer(args[0], userID); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Debug("Transfer confirmation rejected")
		s.reply(event.ReplyToken, i18n.TDefault("bot.transfer_rejected"))
		return
	}
	s.reply(event.ReplyToken, i18n.TDefault("bot.transfer_done"))
}

func (s *Server) commandTransferCancel(event *webhookEvent, userID string) {
	if err := s.tenantService.CancelTransfer(userID); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Debug("Transfer cancel with no pending proposal")
		return
	}
	s.reply(event.ReplyToken, i18n.TDefault("bot.transfer_canceled"))
}
