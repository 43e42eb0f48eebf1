package dispatcher

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"lingo-relay/internal/models"
	"lingo-relay/internal/services"
	"lingo-relay/internal/store"
	"lingo-relay/internal/translator"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubProvider struct {
	name  string
	calls atomic.Int32
	fn    func(text, lang string) (string, translator.Outcome)
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Translate(_ context.Context, text, lang string) (string, translator.Outcome) {
	p.calls.Add(1)
	return p.fn(text, lang)
}

type stubSource map[string]translator.Translator

func (s stubSource) Get(name string) (translator.Translator, error) {
	t, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("unknown translator: %s", name)
	}
	return t, nil
}

func succeedWith(name string) *stubProvider {
	return &stubProvider{name: name, fn: func(text, lang string) (string, translator.Outcome) {
		return name + ":" + lang + ":" + text, translator.OutcomeSuccess
	}}
}

func failWith(name string, outcome translator.Outcome) *stubProvider {
	return &stubProvider{name: name, fn: func(text, lang string) (string, translator.Outcome) {
		return "", outcome
	}}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Tenant{}, &models.Group{}, &models.GroupAdmin{}, &models.WhitelistEntry{}))
	return db
}

func newTestDispatcher(t *testing.T, source ProviderSource) (*Dispatcher, *services.TenantService, *services.UsageService) {
	t.Helper()
	db := newTestDB(t)
	st := store.NewMemoryStore()
	t.Cleanup(func() { st.Close() })

	tenantService := services.NewTenantService(db, st)
	usageService := services.NewUsageService(tenantService)
	return NewDispatcher(source, tenantService, usageService), tenantService, usageService
}

func TestProviderOrder(t *testing.T) {
	assert.Equal(t, []string{"google", "deepl"}, ProviderOrder("google"))
	assert.Equal(t, []string{"google", "deepl"}, ProviderOrder(""))
	assert.Equal(t, []string{"google", "deepl"}, ProviderOrder("bogus"))
	assert.Equal(t, []string{"deepl", "google"}, ProviderOrder("deepl"))
}

func TestDispatchPrimarySuccess(t *testing.T) {
	google := succeedWith("google")
	deepl := succeedWith("deepl")
	d, _, _ := newTestDispatcher(t, stubSource{"google": google, "deepl": deepl})

	result := d.Dispatch(context.Background(), "hello", "ja", ProviderOrder("google"), "")

	assert.Equal(t, "google:ja:hello", result)
	assert.Equal(t, int32(1), google.calls.Load())
	assert.Equal(t, int32(0), deepl.calls.Load(), "fallback must not run after primary success")
}

func TestDispatchFallback(t *testing.T) {
	google := failWith("google", translator.OutcomeNetworkError)
	deepl := succeedWith("deepl")
	d, _, _ := newTestDispatcher(t, stubSource{"google": google, "deepl": deepl})

	result := d.Dispatch(context.Background(), "hello", "ja", ProviderOrder("google"), "")

	assert.Equal(t, "deepl:ja:hello", result)
	assert.Equal(t, int32(1), google.calls.Load())
	assert.Equal(t, int32(1), deepl.calls.Load())
}

func TestDispatchTotalFailure(t *testing.T) {
	google := failWith("google", translator.OutcomeTimeout)
	deepl := failWith("deepl", translator.OutcomeNoAPIKey)
	d, _, _ := newTestDispatcher(t, stubSource{"google": google, "deepl": deepl})

	result := d.Dispatch(context.Background(), "hello", "ja", ProviderOrder("google"), "")

	assert.Equal(t, FailureMessage, result)
}

func TestDispatchSkippableText(t *testing.T) {
	google := succeedWith("google")
	d, _, _ := newTestDispatcher(t, stubSource{"google": google})

	tests := []string{"12345", "1,234.56", "   ", ""}
	for _, text := range tests {
		result := d.Dispatch(context.Background(), text, "ja", ProviderOrder("google"), "")
		assert.Equal(t, text, result, "skippable text must pass through unmodified")
	}
	assert.Equal(t, int32(0), google.calls.Load(), "skippable text must not reach providers")
}

func TestDispatchDeepLPreferredOrder(t *testing.T) {
	google := succeedWith("google")
	deepl := succeedWith("deepl")
	d, _, _ := newTestDispatcher(t, stubSource{"google": google, "deepl": deepl})

	result := d.Dispatch(context.Background(), "hello", "ja", ProviderOrder("deepl"), "")

	assert.Equal(t, "deepl:ja:hello", result)
	assert.Equal(t, int32(0), google.calls.Load())
}

func TestFormatResultsFanOut(t *testing.T) {
	google := succeedWith("google")
	d, _, _ := newTestDispatcher(t, stubSource{"google": google, "deepl": succeedWith("deepl")})

	result := d.FormatResults(context.Background(), "hi", []string{"zh-TW", "ja"}, ProviderOrder("google"), "")

	assert.Equal(t, "[zh-TW] google:zh-TW:hi\n[ja] google:ja:hi", result)
}

func TestFormatResultsPartialFailure(t *testing.T) {
	partial := &stubProvider{name: "google", fn: func(text, lang string) (string, translator.Outcome) {
		if lang == "ja" {
			return "", translator.OutcomeTimeout
		}
		return "ok:" + lang, translator.OutcomeSuccess
	}}
	deepl := failWith("deepl", translator.OutcomeNoAPIKey)
	d, _, _ := newTestDispatcher(t, stubSource{"google": partial, "deepl": deepl})

	result := d.FormatResults(context.Background(), "hi", []string{"zh-TW", "ja"}, ProviderOrder("google"), "")

	assert.Equal(t, "[zh-TW] ok:zh-TW\n[ja] "+FailureMessage, result)
}

func TestDispatchRecordsUsageForGroupOwner(t *testing.T) {
	google := succeedWith("google")
	d, tenantService, usageService := newTestDispatcher(t, stubSource{"google": google, "deepl": succeedWith("deepl")})

	usageService.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		usageService.Stop(ctx)
	})

	_, err := tenantService.CreateOrRenew("U-owner", 1)
	require.NoError(t, err)
	require.True(t, tenantService.BindGroup("U-owner", "G1"))

	d.Dispatch(context.Background(), "hello", "ja", ProviderOrder("google"), "G1")

	require.Eventually(t, func() bool {
		tenant, err := tenantService.GetTenant("U-owner")
		if err != nil {
			return false
		}
		return tenant.TranslateCount == 1 && tenant.CharCount == 5
	}, 2*time.Second, 10*time.Millisecond)

	tenant, err := tenantService.GetTenant("U-owner")
	require.NoError(t, err)
	assert.Equal(t, int64(1), tenant.GetProviderStats()["google"])
}
