package controllers

import (
	"net/http"

	"inkpost/app/services"

	"github.com/sirupsen/logrus"
)

// AuthController handles registration, login and identity lookup
type AuthController struct {
	authService *services.AuthService
	log         logrus.FieldLogger
}

func NewAuthController(authService *services.AuthService, log logrus.FieldLogger) *AuthController {
	return &AuthController{authService: authService, log: log}
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Register handles POST /api/auth/register
func (ac *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		sendError(w, r, ac.log, err)
		return
	}
	token, err := ac.authService.Register(r.Context(), in)
	if err != nil {
		sendError(w, r, ac.log, err)
		return
	}
	sendJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// Login handles POST /api/auth/login
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		sendError(w, r, ac.log, err)
		return
	}
	token, err := ac.authService.Login(r.Context(), in)
	if err != nil {
		sendError(w, r, ac.log, err)
		return
	}
	sendJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// Me handles GET /api/auth/me
func (ac *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	id := callerID(r)
	if id == 0 {
		sendError(w, r, ac.log, services.ErrUnauthenticated)
		return
	}
	me, err := ac.authService.Me(r.Context(), id)
	if err != nil {
		sendError(w, r, ac.log, err)
		return
	}
	sendJSON(w, http.StatusOK, me)
}
