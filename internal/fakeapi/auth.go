package fakeapi

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/existflow/todoisland/internal/logger"
	"github.com/existflow/todoisland/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 6

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type googleRequest struct {
	IDToken string `json:"idToken"`
}

type accessClaims struct {
	Username   string `json:"username"`
	Generation int64  `json:"gen"`
	jwt.RegisteredClaims
}

type googleClaims struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	EmailVerified *bool  `json:"email_verified"`
	jwt.RegisteredClaims
}

// handleRegister handles account creation
func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	var problems []string
	if req.Username == "" {
		problems = append(problems, "username must not be empty")
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		problems = append(problems, "email must be a valid address")
	}
	if utf8.RuneCountInString(req.Password) < MinPasswordLength {
		problems = append(problems, fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if len(problems) > 0 {
		return c.JSON(http.StatusBadRequest, map[string]any{"statusCode": http.StatusBadRequest, "message": problems})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		logger.Error("Failed to hash password", logger.F("error", err))
		return errorJSON(c, http.StatusInternalServerError, "internal error")
	}

	user, err := s.store.createUser(model.User{
		Username: req.Username,
		Email:    req.Email,
		Name:     req.Username,
	}, string(hash))
	if errors.Is(err, errDuplicate) {
		return errorJSON(c, http.StatusConflict, err.Error())
	}
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "internal error")
	}

	logger.Info("Dev API user registered", logger.F("userID", user.ID), logger.F("username", user.Username))
	return s.respondAuth(c, user)
}

// handleLogin accepts a username or email with a password
func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}

	rec, ok := s.store.findLogin(strings.TrimSpace(req.Username))
	if !ok || rec.passwordHash == "" {
		return errorJSON(c, http.StatusUnauthorized, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(rec.passwordHash), []byte(req.Password)); err != nil {
		return errorJSON(c, http.StatusUnauthorized, "invalid credentials")
	}

	logger.Info("Dev API user logged in", logger.F("userID", rec.user.ID))
	return s.respondAuth(c, rec.user)
}

// handleGoogle exchanges a Google ID token. The token signature is not
// verified; only its claims are read.
func (s *Server) handleGoogle(c echo.Context) error {
	var req googleRequest
	if err := c.Bind(&req); err != nil || req.IDToken == "" {
		return errorJSON(c, http.StatusBadRequest, "idToken is required")
	}

	var claims googleClaims
	if _, _, err := jwt.NewParser().ParseUnverified(req.IDToken, &claims); err != nil {
		return errorJSON(c, http.StatusUnauthorized, "invalid Google token")
	}
	if claims.Subject == "" || claims.Email == "" {
		return errorJSON(c, http.StatusUnauthorized, "invalid Google token")
	}

	if rec, ok := s.store.findGoogle(claims.Subject, claims.Email); ok {
		return s.respondAuth(c, rec.user)
	}

	username := claims.Email
	if at := strings.IndexByte(username, '@'); at > 0 {
		username = username[:at]
	}
	user, err := s.store.createUser(model.User{
		Username:      username,
		Email:         claims.Email,
		Name:          claims.Name,
		Picture:       claims.Picture,
		GoogleID:      claims.Subject,
		EmailVerified: claims.EmailVerified,
	}, "")
	if errors.Is(err, errDuplicate) {
		return errorJSON(c, http.StatusConflict, err.Error())
	}
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, "internal error")
	}

	logger.Info("Dev API Google user created", logger.F("userID", user.ID))
	return s.respondAuth(c, user)
}

func (s *Server) respondAuth(c echo.Context, user model.User) error {
	token, err := s.issueToken(user)
	if err != nil {
		logger.Error("Failed to sign token", logger.F("error", err))
		return errorJSON(c, http.StatusInternalServerError, "internal error")
	}
	u := user
	return c.JSON(http.StatusOK, model.AuthResponse{AccessToken: token, User: &u})
}

// issueToken signs an HS256 access token for user
func (s *Server) issueToken(user model.User) (string, error) {
	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()

	now := time.Now()
	claims := accessClaims{
		Username:   user.Username,
		Generation: gen,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// parseToken validates an access token and returns its claims
func (s *Server) parseToken(raw string) (*accessClaims, error) {
	var claims accessClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()
	if claims.Generation != gen {
		return nil, errors.New("token revoked")
	}
	return &claims, nil
}

func randomSecret() []byte {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("fakeapi: failed to generate secret: %v", err))
	}
	return b
}
