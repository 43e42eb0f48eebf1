// Package dispatcher routes translation requests across providers with
// fallback and records usage on success.
package dispatcher

import (
	"context"
	"fmt"
	"strings"

	"lingo-relay/internal/models"
	"lingo-relay/internal/services"
	"lingo-relay/internal/translator"
	"lingo-relay/internal/utils"

	"github.com/sirupsen/logrus"
)

// FailureMessage is the fixed user-facing text returned when every
// provider in the order fails.
const FailureMessage = "翻譯暫時失敗，請稍後再試"

// ProviderSource resolves provider adapters by name. *translator.Factory
// is the production implementation.
type ProviderSource interface {
	Get(name string) (translator.Translator, error)
}

// Dispatcher coordinates provider adapters, fallback, and usage recording.
type Dispatcher struct {
	providers     ProviderSource
	tenantService *services.TenantService
	usageService  *services.UsageService
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(providers ProviderSource, tenantService *services.TenantService, usageService *services.UsageService) *Dispatcher {
	return &Dispatcher{
		providers:     providers,
		tenantService: tenantService,
		usageService:  usageService,
	}
}

// ProviderOrder derives the provider attempt order from a group's engine
// preference. DeepL preference puts DeepL first; everything else is
// google-first with DeepL as fallback.
func ProviderOrder(enginePref string) []string {
	if enginePref == models.EngineDeepL {
		return []string{models.EngineDeepL, models.EngineGoogle}
	}
	return []string{models.EngineGoogle, models.EngineDeepL}
}

// Dispatch translates text into the target language, trying each provider
// in order. Text not worth translating is returned unmodified. When every
// provider fails the fixed failure message is returned.
func (d *Dispatcher) Dispatch(ctx context.Context, text, targetLang string, order []string, groupID string) string {
	if utils.IsSkippableText(text) {
		return text
	}
	if len(order) == 0 {
		order = ProviderOrder("")
	}

	for _, name := range order {
		t, err := d.providers.Get(name)
		if err != nil {
			logrus.WithError(err).WithField("provider", name).Error("Failed to construct translator")
			continue
		}

		result, outcome := t.Translate(ctx, text, targetLang)
		if outcome == translator.OutcomeSuccess {
			d.recordUsage(groupID, text, name)
			return result
		}

		logrus.WithFields(logrus.Fields{
			"provider":    name,
			"outcome":     outcome,
			"target_lang": targetLang,
		}).Debug("Provider failed, trying next")
	}

	return FailureMessage
}

// FormatResults fans out one translation per target language and joins the
// results as "[lang] text" lines in the given language order. A language
// whose providers all failed still contributes its line.
func (d *Dispatcher) FormatResults(ctx context.Context, text string, langs, order []string, groupID string) string {
	if utils.IsSkippableText(text) || len(langs) == 0 {
		return ""
	}

	lines := make([]string, 0, len(langs))
	for _, lang := range langs {
		translated := d.Dispatch(ctx, text, lang, order, groupID)
		lines = append(lines, fmt.Sprintf("[%s] %s", lang, translated))
	}

	return strings.Join(lines, "\n")
}

// recordUsage queues a usage event for the group owner. Lookup or queue
// failures never affect the translation result.
func (d *Dispatcher) recordUsage(groupID, text, provider string) {
	if groupID == "" {
		return
	}

	owner, err := d.tenantService.GetOwner(groupID)
	if err != nil {
		logrus.WithError(err).WithField("group_id", groupID).Debug("Failed to resolve group owner for usage")
		return
	}
	if owner == nil {
		return
	}

	d.usageService.Submit(owner.UserID, text, provider)
}
