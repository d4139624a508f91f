package controllers

import (
	"net/http"

	"github.com/reflaxess123/obedi/app/resources"
	"github.com/reflaxess123/obedi/app/services"
	"github.com/reflaxess123/obedi/pkg/response"
)

const refreshCookie = "refreshToken"

type AuthController struct {
	service *services.AuthService
	secure  bool
	maxAge  int
}

// NewAuthController builds the auth handlers. secure marks the refresh
// cookie Secure; maxAge is its lifetime in seconds.
func NewAuthController(service *services.AuthService, secure bool, maxAge int) *AuthController {
	return &AuthController{service: service, secure: secure, maxAge: maxAge}
}

type sessionResponse struct {
	AccessToken string         `json:"accessToken"`
	User        resources.User `json:"user"`
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if !decode(w, r, &in) {
		return
	}
	sess, err := c.service.Register(r.Context(), in)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	c.respondSession(w, http.StatusCreated, sess)
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	if !decode(w, r, &in) {
		return
	}
	sess, err := c.service.Login(r.Context(), in)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	c.respondSession(w, http.StatusOK, sess)
}

func (c *AuthController) Google(w http.ResponseWriter, r *http.Request) {
	var in services.GoogleInput
	if !decode(w, r, &in) {
		return
	}
	sess, err := c.service.Google(r.Context(), in)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	c.respondSession(w, http.StatusOK, sess)
}

func (c *AuthController) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookie)
	if err != nil || cookie.Value == "" {
		response.Error(w, http.StatusUnauthorized, "Refresh token not found")
		return
	}
	token, err := c.service.Refresh(r.Context(), cookie.Value)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, map[string]string{"accessToken": token})
}

func (c *AuthController) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, c.cookie("", -1))
	response.Success(w, message{Message: "Logged out"})
}

func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	user, err := c.service.Me(r.Context(), caller(r))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Success(w, resources.NewUser(user))
}

func (c *AuthController) respondSession(w http.ResponseWriter, status int, sess *services.Session) {
	http.SetCookie(w, c.cookie(sess.RefreshToken, c.maxAge))
	response.JSON(w, status, sessionResponse{
		AccessToken: sess.AccessToken,
		User:        resources.NewUser(sess.User),
	})
}

func (c *AuthController) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     refreshCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
