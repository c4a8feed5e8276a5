package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casualfootball/cffa-backend/config"
	"github.com/casualfootball/cffa-backend/handlers"
	"github.com/casualfootball/cffa-backend/middleware"
	"github.com/casualfootball/cffa-backend/repository/memory"
	"github.com/casualfootball/cffa-backend/services"
)

func newTestRouter() (*gin.Engine, *middleware.JWTManager) {
	gin.SetMode(gin.TestMode)
	store := memory.NewStore()
	tokens := middleware.NewJWTManager("test-secret", "cffa", time.Hour)

	ledgerService := services.NewLedgerService(store, store, store, config.LedgerConfig{RetirementMonths: 6, RecentMonths: 6})
	userService := services.NewUserService(store)
	h := &Handlers{
		Team:    handlers.NewTeamHandler(services.NewTeamService(store)),
		Player:  handlers.NewPlayerHandler(services.NewPlayerService(store)),
		Game:    handlers.NewGameHandler(services.NewGameService(store, store), ledgerService),
		Payment: handlers.NewPaymentHandler(services.NewPaymentService(store, store, store), ledgerService),
		Summary: handlers.NewSummaryHandler(ledgerService),
		User:    handlers.NewUserHandler(userService),
		Export: handlers.NewExportHandler(services.NewExcelService(store, ledgerService, store),
			services.NewArchiveService(store, store, ledgerService)),
	}

	router := gin.New()
	SetupRoutes(router, h, tokens, userService)
	return router, tokens
}

func call(t *testing.T, router *gin.Engine, tokens *middleware.JWTManager, authID, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authID != "" {
		token, err := tokens.Generate(authID, authID)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router, tokens := newTestRouter()
	w := call(t, router, tokens, "", http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAccessControl(t *testing.T) {
	router, tokens := newTestRouter()

	w := call(t, router, tokens, "", http.MethodGet, "/api/v1/summary", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "no token")

	w = call(t, router, tokens, "stranger", http.MethodGet, "/api/v1/summary", "")
	assert.Equal(t, http.StatusForbidden, w.Code, "no team")

	w = call(t, router, tokens, "boss", http.MethodPost, "/api/v1/teams", `{"name":"Sunday League"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = call(t, router, tokens, "boss", http.MethodPost, "/api/v1/users",
		`{"name":"alice","authId":"alice-auth","role":"player"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var alice struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &alice))

	w = call(t, router, tokens, "boss", http.MethodPost, "/api/v1/games",
		`{"date":"2024-06-01","totalCost":"20","participants":[{"name":"alice","played":true},{"name":"boss","played":true,"booker":true}]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = call(t, router, tokens, "alice-auth", http.MethodGet, "/api/v1/me/summary", "")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	for _, path := range []string{"/api/v1/summary", "/api/v1/games", "/api/v1/players/Boss/statement", "/api/v1/export/excel"} {
		w = call(t, router, tokens, "alice-auth", http.MethodGet, path, "")
		assert.Equal(t, http.StatusForbidden, w.Code, path)
	}

	w = call(t, router, tokens, "boss", http.MethodPut, "/api/v1/users/"+alice.ID,
		`{"name":"alice","authId":"alice-auth","role":"player","revoked":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = call(t, router, tokens, "alice-auth", http.MethodGet, "/api/v1/me/summary", "")
	assert.Equal(t, http.StatusForbidden, w.Code, "revoked")

	w = call(t, router, tokens, "boss", http.MethodGet, "/api/v1/summary", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
