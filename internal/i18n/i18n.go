package i18n

import (
	"encoding/json"
	"fmt"
	"strings"

	"lingo-relay/internal/i18n/locales"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

var bundle *i18n.Bundle

// Init initializes the i18n bundle.
func Init() error {
	bundle = i18n.NewBundle(language.TraditionalChinese)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	languages := []string{"zh-TW", "en-US"}
	for _, lang := range languages {
		if err := loadMessages(lang); err != nil {
			return fmt.Errorf("failed to load language %s: %w", lang, err)
		}
	}

	return nil
}

func loadMessages(lang string) error {
	messages := getMessages(lang)
	for id, msg := range messages {
		bundle.AddMessages(language.MustParse(lang), &i18n.Message{
			ID:    id,
			Other: msg,
		})
	}
	return nil
}

// GetLocalizer returns a localizer for the given Accept-Language header value.
func GetLocalizer(acceptLang string) *i18n.Localizer {
	langs := parseAcceptLanguage(acceptLang)
	if len(langs) == 0 {
		langs = []string{"zh-TW"}
	}
	return i18n.NewLocalizer(bundle, langs...)
}

func parseAcceptLanguage(acceptLang string) []string {
	if acceptLang == "" {
		return nil
	}

	parts := strings.Split(acceptLang, ",")
	if len(parts) > 0 {
		lang := strings.TrimSpace(parts[0])
		if idx := strings.Index(lang, ";"); idx > 0 {
			lang = lang[:idx]
		}
		return []string{normalizeLanguageCode(lang)}
	}

	return nil
}

func normalizeLanguageCode(lang string) string {
	lang = strings.TrimSpace(lang)

	switch strings.ToLower(lang) {
	case "zh", "zh-tw", "zh-hant":
		return "zh-TW"
	case "en", "en-us":
		return "en-US"
	default:
		if strings.HasPrefix(strings.ToLower(lang), "zh") {
			return "zh-TW"
		}
		if strings.HasPrefix(strings.ToLower(lang), "en") {
			return "en-US"
		}
		return "zh-TW"
	}
}

// T translates a message.
func T(localizer *i18n.Localizer, msgID string, data ...map[string]any) string {
	config := &i18n.LocalizeConfig{
		MessageID: msgID,
	}
	if len(data) > 0 {
		config.TemplateData = data[0]
	}

	msg, err := localizer.Localize(config)
	if err != nil {
		return msgID
	}
	return msg
}

// TDefault translates a message with the default locale, for bot pushes
// that run outside an HTTP request.
func TDefault(msgID string, data ...map[string]any) string {
	return T(GetLocalizer(""), msgID, data...)
}

func getMessages(lang string) map[string]string {
	switch lang {
	case "en-US":
		return locales.MessagesEnUS
	default:
		return locales.MessagesZhTW
	}
}
