package controllers

import (
	"net/http"

	json "github.com/goccy/go-json"

	"tvd/internal/providers"
	"tvd/internal/structures"
	"tvd/internal/upstream"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type AuthController struct {
	conf      *structures.Config
	logger    providers.Logger
	auth      providers.AuthProviderInterface
	phoneCode *upstream.PhoneCode
}

func NewAuthController(conf *structures.Config, logger providers.Logger, auth providers.AuthProviderInterface, phoneCode *upstream.PhoneCode) *AuthController {
	return &AuthController{
		conf:      conf,
		logger:    logger,
		auth:      auth,
		phoneCode: phoneCode,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login checks credentials against the static user table and sets the
// session cookie. A mismatch is a bare 401 with no body.
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	token, err := ac.auth.Login(payload.Username, payload.Password)
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     providers.TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ac.conf.Auth.TokenTTL.Seconds()),
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusOK)
	ac.logger.Infof(providers.TypePost, "User %s logged in", payload.Username)
}

// PhoneCode forwards the one-time code to the pending gateway login.
func (ac *AuthController) PhoneCode(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	ac.phoneCode.Resolve(code)
	w.WriteHeader(http.StatusOK)
}
