package router_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"secure-banking-api/app"
	"secure-banking-api/config"
	"secure-banking-api/db"
	"secure-banking-api/model"
	"secure-banking-api/service"
	"strings"
	"sync"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// integrationApp wires the real stack against TEST_DATABASE_URL, and against
// TEST_REDIS_URL when that is set. Tables are emptied before each test.
func integrationApp(t *testing.T) (*app.App, *redis.Client) {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	conn, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.Ping())
	require.NoError(t, db.Migrate(conn))

	_, err = conn.Exec("TRUNCATE transactions, accounts, users RESTART IDENTITY CASCADE")
	require.NoError(t, err)

	var cfg config.Config
	cfg.JWT = config.JWTConfig{SecretKey: testSecret, Issuer: "secure-banking-api", TTL: time.Hour}
	cfg.Security.BcryptCost = 4
	cfg.Redis.TTL = time.Minute

	var cache service.ICacheClient
	var rdb *redis.Client
	if redisURL := os.Getenv("TEST_REDIS_URL"); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		require.NoError(t, err)
		rdb = redis.NewClient(opts)
		t.Cleanup(func() { rdb.Close() })
		require.NoError(t, rdb.FlushDB(context.Background()).Err())
		cache = rdb
	}

	return app.New(cfg, conn, cache), rdb
}

func doJSON(t *testing.T, a *app.App, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.Router.ServeHTTP(rr, req)
	return rr
}

func registerAndLogin(t *testing.T, a *app.App, username, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":%q}`, username, password)

	rr := doJSON(t, a, http.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = doJSON(t, a, http.MethodPost, "/api/auth/login", "", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var login model.LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &login))
	require.NotEmpty(t, login.Token)
	return login.Token
}

func balanceOf(t *testing.T, a *app.App, token string) decimal.Decimal {
	t.Helper()
	rr := doJSON(t, a, http.MethodGet, "/api/account/balance", token, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return decimal.RequireFromString(strings.TrimSpace(rr.Body.String()))
}

func assertBalance(t *testing.T, a *app.App, token, want string) {
	t.Helper()
	got := balanceOf(t, a, token)
	assert.True(t, got.Equal(decimal.RequireFromString(want)), "balance = %s, want %s", got, want)
}

func countTransactions(t *testing.T, a *app.App, kind model.TransactionType) int {
	t.Helper()
	var n int
	require.NoError(t, a.DB.QueryRow("SELECT COUNT(*) FROM transactions WHERE type = $1", string(kind)).Scan(&n))
	return n
}

func TestAliceAndBob_Integration(t *testing.T) {
	a, _ := integrationApp(t)

	alice := registerAndLogin(t, a, "alice", "password1")
	assertBalance(t, a, alice, "0")

	rr := doJSON(t, a, http.MethodPost, "/api/account/deposit", alice, `{"amount":100}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assertBalance(t, a, alice, "100")

	rr = doJSON(t, a, http.MethodPost, "/api/account/withdraw", alice, `{"amount":30}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assertBalance(t, a, alice, "70")

	bob := registerAndLogin(t, a, "bob", "password2")
	assertBalance(t, a, bob, "0")

	rr = doJSON(t, a, http.MethodPost, "/api/account/transfer", alice, `{"toUsername":"bob","amount":50}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assertBalance(t, a, alice, "20")
	assertBalance(t, a, bob, "50")

	assert.Equal(t, 1, countTransactions(t, a, model.TransactionDeposit))
	assert.Equal(t, 1, countTransactions(t, a, model.TransactionWithdraw))
	assert.Equal(t, 1, countTransactions(t, a, model.TransactionTransfer))

	t.Run("overdraw leaves balance unchanged", func(t *testing.T) {
		rr := doJSON(t, a, http.MethodPost, "/api/account/withdraw", alice, `{"amount":1000}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assertBalance(t, a, alice, "20")
		assert.Equal(t, 1, countTransactions(t, a, model.TransactionWithdraw))
	})

	t.Run("non-positive amounts change nothing", func(t *testing.T) {
		for _, path := range []string{"/api/account/deposit", "/api/account/withdraw"} {
			rr := doJSON(t, a, http.MethodPost, path, alice, `{"amount":0}`)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		}
		rr := doJSON(t, a, http.MethodPost, "/api/account/transfer", alice, `{"toUsername":"bob","amount":-5}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assertBalance(t, a, alice, "20")
		assertBalance(t, a, bob, "50")
	})

	t.Run("wrong password issues no token", func(t *testing.T) {
		rr := doJSON(t, a, http.MethodPost, "/api/auth/login", "", `{"username":"alice","password":"nope-nope"}`)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.NotContains(t, rr.Body.String(), "token")
	})

	t.Run("re-registration is a conflict and creates no account", func(t *testing.T) {
		rr := doJSON(t, a, http.MethodPost, "/api/auth/register", "", `{"username":"alice","password":"another1"}`)
		assert.Equal(t, http.StatusConflict, rr.Code)

		var accounts int
		require.NoError(t, a.DB.QueryRow("SELECT COUNT(*) FROM accounts").Scan(&accounts))
		assert.Equal(t, 2, accounts)
	})

	t.Run("history is newest first", func(t *testing.T) {
		rr := doJSON(t, a, http.MethodGet, "/api/account/transactions", alice, "")
		require.Equal(t, http.StatusOK, rr.Code)
		var history []model.Transaction
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &history))
		require.Len(t, history, 3)
		assert.Equal(t, model.TransactionTransfer, history[0].Type)
		assert.Equal(t, model.TransactionDeposit, history[2].Type)
	})
}

func TestBalanceCache_Integration(t *testing.T) {
	a, rdb := integrationApp(t)
	if rdb == nil {
		t.Skip("TEST_REDIS_URL not set")
	}

	alice := registerAndLogin(t, a, "alice", "password1")
	assertBalance(t, a, alice, "0")

	cached, err := rdb.Get(context.Background(), "balance:1").Result()
	require.NoError(t, err)
	assert.Equal(t, "0:0", cached)

	rr := doJSON(t, a, http.MethodPost, "/api/account/deposit", alice, `{"amount":12.5}`)
	require.Equal(t, http.StatusOK, rr.Code)

	cached, err = rdb.Get(context.Background(), "balance:1").Result()
	require.NoError(t, err)
	assert.Equal(t, "1:12.5", cached, "deposit must replace the cached balance")
	assertBalance(t, a, alice, "12.5")
}

func TestAmountPrecision_Integration(t *testing.T) {
	a, _ := integrationApp(t)

	alice := registerAndLogin(t, a, "alice", "password1")
	for _, body := range []string{`{"amount":0.00005}`, `{"amount":0.00001}`, `{"amount":1000000000000000}`} {
		rr := doJSON(t, a, http.MethodPost, "/api/account/deposit", alice, body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
	}

	rr := doJSON(t, a, http.MethodPost, "/api/account/deposit", alice, `{"amount":0.0001}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assertBalance(t, a, alice, "0.0001")
	assert.Equal(t, 1, countTransactions(t, a, model.TransactionDeposit))
}

func TestConcurrentTransfers_Integration(t *testing.T) {
	a, _ := integrationApp(t)

	alice := registerAndLogin(t, a, "alice", "password1")
	bob := registerAndLogin(t, a, "bob", "password2")
	for _, token := range []string{alice, bob} {
		rr := doJSON(t, a, http.MethodPost, "/api/account/deposit", token, `{"amount":1000}`)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	const perDirection = 25
	var wg sync.WaitGroup
	codes := make(chan int, 2*perDirection)
	send := func(token, to string) {
		defer wg.Done()
		rr := doJSON(t, a, http.MethodPost, "/api/account/transfer", token, fmt.Sprintf(`{"toUsername":%q,"amount":10}`, to))
		codes <- rr.Code
	}
	for i := 0; i < perDirection; i++ {
		wg.Add(2)
		go send(alice, "bob")
		go send(bob, "alice")
	}
	wg.Wait()
	close(codes)

	for code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}
	assertBalance(t, a, alice, "1000")
	assertBalance(t, a, bob, "1000")
	assert.Equal(t, 2*perDirection, countTransactions(t, a, model.TransactionTransfer))
}

func TestConcurrentWithdrawals_Integration(t *testing.T) {
	a, _ := integrationApp(t)

	alice := registerAndLogin(t, a, "alice", "password1")
	rr := doJSON(t, a, http.MethodPost, "/api/account/deposit", alice, `{"amount":100}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var wg sync.WaitGroup
	codes := make(chan int, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes <- doJSON(t, a, http.MethodPost, "/api/account/withdraw", alice, `{"amount":10}`).Code
		}()
	}
	wg.Wait()
	close(codes)

	succeeded := 0
	for code := range codes {
		if code == http.StatusOK {
			succeeded++
		} else {
			assert.Equal(t, http.StatusBadRequest, code)
		}
	}
	assert.Equal(t, 10, succeeded)
	assertBalance(t, a, alice, "0")
	assert.Equal(t, succeeded, countTransactions(t, a, model.TransactionWithdraw))
}
