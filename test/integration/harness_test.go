package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/themanaworld/api/internal/captcha"
	"github.com/themanaworld/api/internal/database"
	"github.com/themanaworld/api/internal/domain"
	"github.com/themanaworld/api/internal/http/handler"
	"github.com/themanaworld/api/internal/legacy"
	"github.com/themanaworld/api/internal/mail"
	"github.com/themanaworld/api/internal/ratelimit"
	"github.com/themanaworld/api/internal/repository"
	"github.com/themanaworld/api/internal/service"
	"github.com/themanaworld/api/internal/session"
)

const (
	headerSession = "X-VAULT-SESSION"
	headerSecret  = "X-VAULT-TOKEN"
	headerCaptcha = "X-CAPTCHA-TOKEN"

	testCaptcha     = "integration-captcha-token-always-accepted"
	testAuthURL     = "https://vault.test/auth/"
	testIdentityURL = "https://vault.test/identity/"
)

// chanMailer hands every outgoing message to the test instead of an
// SMTP relay, so link tokens can be read back out of the body.
type chanMailer struct {
	ch chan mail.Message
}

func (m chanMailer) Send(_ context.Context, msg mail.Message) error {
	m.ch <- msg
	return nil
}

// vaultServer is a fully wired API over in-memory databases.
type vaultServer struct {
	router   http.Handler
	mails    chan mail.Message
	store    *session.Store
	vaultDB  *gorm.DB
	legacyDB *gorm.DB
	evolDB   *gorm.DB
}

func newVaultServer(t *testing.T) *vaultServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	vaultDB := openStoreDB(t, "vault")
	if err := database.MigrateVault(vaultDB); err != nil {
		t.Fatalf("migrate vault db: %v", err)
	}
	legacyDB := openStoreDB(t, "legacy")
	if err := legacyDB.AutoMigrate(&domain.LegacyLogin{}, &domain.LegacyCharRow{}); err != nil {
		t.Fatalf("migrate legacy db: %v", err)
	}
	evolDB := openStoreDB(t, "evol")
	if err := evolDB.AutoMigrate(&domain.EvolLogin{}, &domain.EvolCharRow{}, &domain.CharReservation{}); err != nil {
		t.Fatalf("migrate evol db: %v", err)
	}

	vaultRepo := repository.NewVaultRepository(vaultDB)
	legacyRepo := repository.NewLegacyRepository(legacyDB)
	evolRepo := repository.NewEvolRepository(evolDB)

	store := session.NewStore(0, 0)
	pending := session.NewPendingStore(0)
	limiter := ratelimit.NewLimiter(logger)
	budget := ratelimit.NewMemoryBudget()
	mails := make(chan mail.Message, 16)
	mailer := chanMailer{ch: mails}

	accounts := service.NewGameAccountService(vaultRepo, legacyRepo, evolRepo, logger)
	claims := service.NewClaimService(vaultRepo, legacyRepo, legacy.NewFlatfile(t.TempDir()), store, accounts, logger)
	migration := service.NewMigrationService(vaultRepo, legacyRepo, evolRepo, logger)
	auth := service.NewAuthService(store, vaultRepo, accounts, claims, mailer, testAuthURL, logger)
	identities := service.NewIdentityService(vaultRepo, store, pending, claims, mailer, testIdentityURL, logger)
	vaultAccounts := service.NewVaultAccountService(vaultRepo, logger)
	evolAccounts := service.NewEvolAccountService(vaultRepo, evolRepo, logger)

	gate := handler.NewGate(store, limiter, budget, logger)
	h := handler.Handlers{
		Session:  handler.NewSessionHandler(auth, store, gate, logger),
		Identity: handler.NewIdentityHandler(identities, gate, logger),
		Account:  handler.NewAccountHandler(vaultAccounts, gate, logger),
		Legacy:   handler.NewLegacyHandler(claims, migration, gate, logger),
		Evol:     handler.NewEvolHandler(evolAccounts, gate, logger),
	}

	return &vaultServer{
		router:   handler.NewRouter(h, limiter, captcha.StaticVerifier{OK: true}, logger),
		mails:    mails,
		store:    store,
		vaultDB:  vaultDB,
		legacyDB: legacyDB,
		evolDB:   evolDB,
	}
}

func openStoreDB(t *testing.T, store string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:it_%s_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"), store)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

var ipCounter uint32

// nextIP hands out a fresh client address per request so the per-route
// cooldowns from earlier steps never 429 the next one.
func nextIP() string {
	n := atomic.AddUint32(&ipCounter, 1)
	return fmt.Sprintf("10.9.%d.%d", n/250, n%250+1)
}

func (s *vaultServer) do(t *testing.T, method, path string, headers map[string]string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	return s.doFrom(t, method, path, nextIP(), headers, body)
}

func (s *vaultServer) doFrom(t *testing.T, method, path, ip string, headers map[string]string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		rd = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, rd)
	req.RemoteAddr = ip + ":40000"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, decoded
}

func (s *vaultServer) waitMail(t *testing.T) mail.Message {
	t.Helper()
	select {
	case msg := <-s.mails:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("expected a mail, none arrived")
		return mail.Message{}
	}
}

// linkToken pulls the one-time token out of a mailed link.
func linkToken(t *testing.T, body, baseURL string) string {
	t.Helper()
	i := strings.Index(body, baseURL)
	if i < 0 {
		t.Fatalf("mail body has no link with base %q:\n%s", baseURL, body)
	}
	rest := body[i+len(baseURL):]
	if j := strings.IndexAny(rest, " \t\r\n"); j >= 0 {
		rest = rest[:j]
	}
	return rest
}

// login drives the whole passwordless flow for the given address and
// returns the rotated session token and the one-time secret.
func (s *vaultServer) login(t *testing.T, email string) (token, secret string) {
	t.Helper()
	rec, _ := s.do(t, http.MethodPut, "/api/vault/session",
		map[string]string{headerCaptcha: testCaptcha},
		map[string]any{"email": email, "confirm": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("session request: expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	link := linkToken(t, s.waitMail(t).Body, testAuthURL)
	rec, env := s.do(t, http.MethodGet, "/api/vault/session",
		map[string]string{headerSession: link}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("session confirm: expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	token, _ = env["token"].(string)
	secret, _ = env["secret"].(string)
	if token == "" || secret == "" {
		t.Fatalf("confirm response missing credentials: %v", env)
	}
	return token, secret
}

func (s *vaultServer) authHeaders(token, secret string) map[string]string {
	return map[string]string{headerSession: token, headerSecret: secret}
}
