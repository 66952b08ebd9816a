package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	auctionapp "github.com/auctionhouse/backend/internal/application/auction"
	identityapp "github.com/auctionhouse/backend/internal/application/identity"
	paymentapp "github.com/auctionhouse/backend/internal/application/payment"
	"github.com/auctionhouse/backend/internal/domain/auction"
	"github.com/auctionhouse/backend/internal/domain/identity"
	"github.com/auctionhouse/backend/internal/domain/payment"
	"github.com/auctionhouse/backend/internal/infrastructure/auth"
	"github.com/auctionhouse/backend/internal/infrastructure/config"
	"github.com/auctionhouse/backend/internal/interfaces/http/handler"
	"github.com/auctionhouse/backend/internal/interfaces/http/middleware"
)

type memUserRepo struct {
	byID    map[uuid.UUID]*identity.User
	byEmail map[string]*identity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		byID:    make(map[uuid.UUID]*identity.User),
		byEmail: make(map[string]*identity.User),
	}
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*identity.User, error) {
	return r.byID[id], nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*identity.User, error) {
	return r.byEmail[email], nil
}

func (r *memUserRepo) Save(_ context.Context, u *identity.User) error {
	r.byID[u.ID] = u
	r.byEmail[u.Email] = u
	return nil
}

func (r *memUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := r.byEmail[email]
	return ok, nil
}

// memAuctionRepo implements only the calls the routed endpoints under
// test reach; everything else panics through the embedded nil interface.
type memAuctionRepo struct {
	auction.Repository
	auctions []auction.Auction
}

func (r *memAuctionRepo) FindAll(_ context.Context, _ auction.Filter) ([]auction.Auction, error) {
	return r.auctions, nil
}

func (r *memAuctionRepo) Count(_ context.Context, _ auction.Filter) (int64, error) {
	return int64(len(r.auctions)), nil
}

type memPaymentRepo struct {
	payment.Repository
}

type routerFixture struct {
	engine *gin.Engine
	users  *memUserRepo
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := newMemUserRepo()
	tokens := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "auctionhouse-test",
		MaxRefreshCount:        5,
	})
	blacklist := auth.NewInMemoryTokenBlacklist()

	authSvc := identityapp.NewAuthService(users, tokens, blacklist)
	auctionSvc := auctionapp.NewService(&memAuctionRepo{}, &memPaymentRepo{}, users, nil)
	paymentSvc := paymentapp.NewService(&memPaymentRepo{}, &memAuctionRepo{}, users, nil)

	logger := zap.NewNop()
	engine := gin.New()
	engine.Use(middleware.RequestID())

	r := NewRouter(engine, Handlers{
		Auth:    handler.NewAuthHandler(authSvc, logger),
		Auction: handler.NewAuctionHandler(auctionSvc, logger),
		Payment: handler.NewPaymentHandler(paymentSvc, logger),
		Admin:   handler.NewAdminHandler(auctionSvc, paymentSvc, logger),
		System:  handler.NewSystemHandler(nil),
	}, middleware.JWTMiddlewareConfig{
		JWTService:     tokens,
		TokenBlacklist: blacklist,
		Logger:         logger,
	})
	r.Setup()

	return &routerFixture{engine: engine, users: users}
}

func (f *routerFixture) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	return rec
}

func (f *routerFixture) register(t *testing.T, email string) (accessToken string, userID string) {
	t.Helper()
	rec := f.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name":     "Asha Verma",
		"email":    email,
		"phone":    "+919812345678",
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			User struct {
				ID string `json:"id"`
			} `json:"user"`
			Tokens struct {
				AccessToken string `json:"access_token"`
			} `json:"tokens"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Data.Tokens.AccessToken, resp.Data.User.ID
}

func TestRegisterLoginMe(t *testing.T) {
	f := newRouterFixture(t)

	token, userID := f.register(t, "asha@example.com")
	require.NotEmpty(t, token)

	rec := f.do(http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), userID)
	assert.Contains(t, rec.Body.String(), "asha@example.com")

	rec = f.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "asha@example.com",
		"password": "correct-horse-battery",
	})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    "asha@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_UNAUTHORIZED")
}

func TestAuthRequired(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(http.MethodGet, "/api/v1/auth/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_TOKEN_INVALID")
}

func TestPublicListingWithoutToken(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(http.MethodGet, "/api/v1/auctions", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"success":true`)
}

func TestAdminRoutesRejectRegularUsers(t *testing.T) {
	f := newRouterFixture(t)

	token, _ := f.register(t, "bidder@example.com")

	rec := f.do(http.MethodGet, "/api/v1/admin/payments", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_FORBIDDEN")

	rec = f.do(http.MethodGet, "/api/v1/admin/payments", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestIDPropagation(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", strings.NewReader(""))
	req.Header.Set("X-Request-ID", "req-abc-123")
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)

	assert.Equal(t, "req-abc-123", rec.Header().Get("X-Request-ID"))
	assert.Contains(t, rec.Body.String(), "ERR_UNAUTHORIZED")
}

func TestInvalidAuctionIDParam(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(http.MethodGet, "/api/v1/auctions/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_BAD_REQUEST")
}
