package i18n

import (
	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

const (
	// LocalizerKey stores the request Localizer in gin.Context.
	LocalizerKey = "localizer"
	// LangKey stores the resolved language in gin.Context.
	LangKey = "lang"
)

// Middleware resolves the request language and attaches a Localizer.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		acceptLang := c.GetHeader("Accept-Language")

		c.Set(LocalizerKey, GetLocalizer(acceptLang))
		c.Set(LangKey, normalizeLanguageCode(acceptLang))

		c.Next()
	}
}

// GetLocalizerFromContext gets the Localizer from gin.Context.
func GetLocalizerFromContext(c *gin.Context) *i18n.Localizer {
	if localizer, exists := c.Get(LocalizerKey); exists {
		if l, ok := localizer.(*i18n.Localizer); ok {
			return l
		}
	}
	return GetLocalizer("zh-TW")
}

// GetLangFromContext gets the resolved language from gin.Context.
func GetLangFromContext(c *gin.Context) string {
	if lang, exists := c.Get(LangKey); exists {
		if l, ok := lang.(string); ok {
			return l
		}
	}
	return "zh-TW"
}

// Message returns an internationalized message for the current request.
func Message(c *gin.Context, msgID string, templateData ...map[string]any) string {
	localizer := GetLocalizerFromContext(c)
	return T(localizer, msgID, templateData...)
}
