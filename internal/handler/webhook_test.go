package handler

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"lingo-relay/internal/config"
	"lingo-relay/internal/dispatcher"
	"lingo-relay/internal/gate"
	"lingo-relay/internal/i18n"
	"lingo-relay/internal/models"
	"lingo-relay/internal/services"
	"lingo-relay/internal/store"
	"lingo-relay/internal/translator"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logrus.SetLevel(logrus.PanicLevel)
	if err := i18n.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type replyCall struct {
	Token string
	Texts []string
}

type stubMessenger struct {
	replies chan replyCall
}

func newStubMessenger() *stubMessenger {
	return &stubMessenger{replies: make(chan replyCall, 16)}
}

func (m *stubMessenger) Reply(replyToken string, texts ...string) error {
	m.replies <- replyCall{Token: replyToken, Texts: texts}
	return nil
}

func (m *stubMessenger) Push(to string, texts ...string) error {
	return nil
}

// waitReply blocks until a reply arrives or the test times out.
func (m *stubMessenger) waitReply(t *testing.T) replyCall {
	t.Helper()
	select {
	case call := <-m.replies:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("expected a reply but none arrived")
		return replyCall{}
	}
}

func (m *stubMessenger) assertNoReply(t *testing.T) {
	t.Helper()
	select {
	case call := <-m.replies:
		t.Fatalf("unexpected reply: %+v", call)
	case <-time.After(100 * time.Millisecond):
	}
}

type echoTranslator struct{ name string }

func (e echoTranslator) Name() string { return e.name }

func (e echoTranslator) Translate(_ context.Context, text, lang string) (string, translator.Outcome) {
	return lang + "|" + text, translator.OutcomeSuccess
}

type echoProviders struct{}

func (echoProviders) Get(name string) (translator.Translator, error) {
	return echoTranslator{name: name}, nil
}

type webhookFixture struct {
	server        *Server
	engine        *gin.Engine
	messenger     *stubMessenger
	tenantService *services.TenantService
	groupService  *services.GroupService
	secret        string
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Tenant{}, &models.Group{}, &models.GroupAdmin{}, &models.WhitelistEntry{}))

	st := store.NewMemoryStore()
	t.Cleanup(func() { st.Close() })

	cfg := config.NewMockConfig()
	msg := newStubMessenger()

	tenantService := services.NewTenantService(db, st)
	groupService := services.NewGroupService(db, st, cfg)
	adminService := services.NewAdminService(db, cfg)
	usageService := services.NewUsageService(tenantService)
	d := dispatcher.NewDispatcher(echoProviders{}, tenantService, usageService)

	server := NewServer(ServerParams{
		ConfigManager: cfg,
		Dispatcher:    d,
		Gate:          gate.New(cfg.Performance.MaxConcurrentTranslations),
		TenantService: tenantService,
		GroupService:  groupService,
		AdminService:  adminService,
		UsageService:  usageService,
		Messenger:     msg,
	})

	engine := gin.New()
	engine.POST("/webhook", server.Webhook)

	return &webhookFixture{
		server:        server,
		engine:        engine,
		messenger:     msg,
		tenantService: tenantService,
		groupService:  groupService,
		secret:        cfg.Auth.ChannelSecret,
	}
}

func (f *webhookFixture) sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(f.secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (f *webhookFixture) post(t *testing.T, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Line-Signature", signature)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	f := newWebhookFixture(t)

	w := f.post(t, []byte(`{"events":[]}`), "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	f := newWebhookFixture(t)

	w := f.post(t, []byte(`{"events":[]}`), "bm90LXRoZS1yaWdodC1tYWM=")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_SIGNATURE")
}

func TestWebhookAcceptsValidSignature(t *testing.T) {
	f := newWebhookFixture(t)

	body := []byte(`{"events":[]}`)
	w := f.post(t, body, f.sign(body))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"code":0`)
}

func TestWebhookRejectsMalformedJSON(t *testing.T) {
	f := newWebhookFixture(t)

	body := []byte(`{"events":`)
	w := f.post(t, body, f.sign(body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookTranslatesGroupMessage(t *testing.T) {
	f := newWebhookFixture(t)

	body := []byte(`{"events":[{"type":"message","replyToken":"rt-1",
		"source":{"type":"group","groupId":"G1","userId":"U1"},
		"message":{"type":"text","id":"m1","text":"hello"}}]}`)

	w := f.post(t, body, f.sign(body))
	require.Equal(t, http.StatusOK, w.Code)

	call := f.messenger.waitReply(t)
	assert.Equal(t, "rt-1", call.Token)
	require.Len(t, call.Texts, 1)
	assert.Equal(t, "[zh-TW] zh-TW|hello", call.Texts[0])
}

func TestWebhookSkipsNumericMessage(t *testing.T) {
	f := newWebhookFixture(t)

	body := []byte(`{"events":[{"type":"message","replyToken":"rt-1",
		"source":{"type":"group","groupId":"G1","userId":"U1"},
		"message":{"type":"text","id":"m1","text":"12345"}}]}`)

	w := f.post(t, body, f.sign(body))
	require.Equal(t, http.StatusOK, w.Code)
	f.messenger.assertNoReply(t)
}

func TestWebhookRespectsAutoTranslateOff(t *testing.T) {
	f := newWebhookFixture(t)
	require.NoError(t, f.groupService.SetAutoTranslate("G1", false))

	body := []byte(`{"events":[{"type":"message","replyToken":"rt-1",
		"source":{"type":"group","groupId":"G1","userId":"U1"},
		"message":{"type":"text","id":"m1","text":"hello"}}]}`)

	w := f.post(t, body, f.sign(body))
	require.Equal(t, http.StatusOK, w.Code)
	f.messenger.assertNoReply(t)
}

func TestWebhookJoinSendsWelcome(t *testing.T) {
	f := newWebhookFixture(t)

	body := []byte(`{"events":[{"type":"join","replyToken":"rt-1",
		"source":{"type":"group","groupId":"G1"}}]}`)

	w := f.post(t, body, f.sign(body))
	require.Equal(t, http.StatusOK, w.Code)

	call := f.messenger.waitReply(t)
	require.Len(t, call.Texts, 2)
	assert.Equal(t, i18n.TDefault("bot.welcome"), call.Texts[0])
	assert.Contains(t, call.Texts[1], "zh-TW")
}

func TestWebhookClaimCommand(t *testing.T) {
	f := newWebhookFixture(t)

	claim := func(userID string) replyCall {
		body := []byte(`{"events":[{"type":"message","replyToken":"rt-1",
			"source":{"type":"group","groupId":"G1","userId":"` + userID + `"},
			"message":{"type":"text","id":"m1","text":"/claim"}}]}`)
		w := f.post(t, body, f.sign(body))
		require.Equal(t, http.StatusOK, w.Code)
		return f.messenger.waitReply(t)
	}

	first := claim("U1")
	assert.Equal(t, []string{i18n.TDefault("bot.claim_success")}, first.Texts)

	second := claim("U2")
	assert.Equal(t, []string{i18n.TDefault("bot.claim_taken")}, second.Texts)
}

func TestWebhookPostbackRequiresPrivilege(t *testing.T) {
	f := newWebhookFixture(t)

	body := []byte(`{"events":[{"type":"postback","replyToken":"rt-1",
		"source":{"type":"group","groupId":"G1","userId":"U-random"},
		"postback":{"data":"lang:ja"}}]}`)

	w := f.post(t, body, f.sign(body))
	require.Equal(t, http.StatusOK, w.Code)

	call := f.messenger.waitReply(t)
	assert.Equal(t, []string{i18n.TDefault("bot.not_privileged")}, call.Texts)
	assert.Equal(t, []string{"zh-TW"}, f.groupService.GetLanguages("G1"))
}

func TestWebhookPostbackTogglesLanguage(t *testing.T) {
	f := newWebhookFixture(t)

	// First claim makes U1 the group admin.
	claimBody := []byte(`{"events":[{"type":"message","replyToken":"rt-0",
		"source":{"type":"group","groupId":"G1","userId":"U1"},
		"message":{"type":"text","id":"m0","text":"/claim"}}]}`)
	f.post(t, claimBody, f.sign(claimBody))
	f.messenger.waitReply(t)

	body := []byte(`{"events":[{"type":"postback","replyToken":"rt-1",
		"source":{"type":"group","groupId":"G1","userId":"U1"},
		"postback":{"data":"lang:ja"}}]}`)

	w := f.post(t, body, f.sign(body))
	require.Equal(t, http.StatusOK, w.Code)

	call := f.messenger.waitReply(t)
	assert.Equal(t, []string{i18n.TDefault("bot.language_added", map[string]any{"Lang": "ja"})}, call.Texts)
	assert.Equal(t, []string{"zh-TW", "ja"}, f.groupService.GetLanguages("G1"))
}

func TestWebhookBindCommand(t *testing.T) {
	f := newWebhookFixture(t)

	bind := func() replyCall {
		body := []byte(`{"events":[{"type":"message","replyToken":"rt-1",
			"source":{"type":"group","groupId":"G1","userId":"U1"},
			"message":{"type":"text","id":"m1","text":"/bind"}}]}`)
		w := f.post(t, body, f.sign(body))
		require.Equal(t, http.StatusOK, w.Code)
		return f.messenger.waitReply(t)
	}

	assert.Equal(t, []string{i18n.TDefault("bot.bind_failed")}, bind().Texts)

	_, err := f.tenantService.CreateOrRenew("U1", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{i18n.TDefault("bot.bind_success")}, bind().Texts)
}
