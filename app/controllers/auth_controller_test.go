package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"inkpost/app/auth"
	"inkpost/app/repositories/mock"
	"inkpost/app/services"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setupAuthRouter(t *testing.T) (*mux.Router, *auth.TokenService) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	tokens, err := auth.NewTokenService("controller-test-secret", time.Hour)
	require.NoError(t, err)
	authService := services.NewAuthService(mock.NewUserRepository(), tokens, auth.NewHasher(bcrypt.MinCost), time.Second)
	controller := NewAuthController(authService, logger)

	router := mux.NewRouter()
	router.HandleFunc("/api/auth/register", controller.Register).Methods("POST")
	router.HandleFunc("/api/auth/login", controller.Login).Methods("POST")
	router.HandleFunc("/api/auth/me", asUser(controller.Me)).Methods("GET")
	return router, tokens
}

func post(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthController(t *testing.T) {
	router, tokens := setupAuthRouter(t)

	t.Run("register returns a usable token", func(t *testing.T) {
		w := post(router, "/api/auth/register", `{"username":"alice","email":"alice@example.com","password":"secret123"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var body tokenResponse
		decodeBody(t, w, &body)
		id, err := tokens.Verify(body.Token)
		require.NoError(t, err)
		assert.Equal(t, int64(1), id)
	})

	t.Run("register validation lists every field", func(t *testing.T) {
		w := post(router, "/api/auth/register", `{"username":"","email":"nope","password":"123"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		var body struct {
			Errors []services.FieldError `json:"errors"`
		}
		decodeBody(t, w, &body)
		require.Len(t, body.Errors, 3)
		assert.Equal(t, "username", body.Errors[0].Param)
		assert.Equal(t, "email", body.Errors[1].Param)
		assert.Equal(t, "password", body.Errors[2].Param)
	})

	t.Run("register duplicate", func(t *testing.T) {
		w := post(router, "/api/auth/register", `{"username":"other","email":"alice@example.com","password":"secret123"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"message":"User already exists"}`, w.Body.String())
	})

	t.Run("passwords longer than 72 bytes", func(t *testing.T) {
		for i, password := range []string{strings.Repeat("é", 40), strings.Repeat("a", 80)} {
			email := "long" + strconv.Itoa(i) + "@example.com"
			w := post(router, "/api/auth/register", `{"username":"long`+strconv.Itoa(i)+`","email":"`+email+`","password":"`+password+`"}`)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			w = post(router, "/api/auth/login", `{"email":"`+email+`","password":"`+password+`"}`)
			assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		}
	})

	t.Run("login", func(t *testing.T) {
		w := post(router, "/api/auth/login", `{"email":"alice@example.com","password":"secret123"}`)
		require.Equal(t, http.StatusOK, w.Code)
		var body tokenResponse
		decodeBody(t, w, &body)
		assert.NotEmpty(t, body.Token)
	})

	t.Run("login failures share one message", func(t *testing.T) {
		unknown := post(router, "/api/auth/login", `{"email":"ghost@example.com","password":"secret123"}`)
		wrong := post(router, "/api/auth/login", `{"email":"alice@example.com","password":"nope-nope"}`)
		assert.Equal(t, http.StatusBadRequest, unknown.Code)
		assert.Equal(t, http.StatusBadRequest, wrong.Code)
		assert.JSONEq(t, `{"message":"Invalid credentials"}`, unknown.Body.String())
		assert.Equal(t, unknown.Body.String(), wrong.Body.String())
	})

	t.Run("login missing field", func(t *testing.T) {
		w := post(router, "/api/auth/login", `{"email":"alice@example.com"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"param":"password"`)
	})

	t.Run("me", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("X-Test-User", "1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"username":"alice"`)
		assert.NotContains(t, w.Body.String(), "passwordHash")

		req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("X-Test-User", "77")
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("oversized body", func(t *testing.T) {
		body := `{"username":"` + strings.Repeat("a", maxBodyBytes) + `"}`
		w := post(router, "/api/auth/register", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"param":"body"`)
	})
}

func TestSendErrorLogsUnknownErrors(t *testing.T) {
	logger, hook := test.NewNullLogger()
	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	w := httptest.NewRecorder()

	sendError(w, req, logger, errors.New("badger: closed"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Server error"}`, w.Body.String())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}
