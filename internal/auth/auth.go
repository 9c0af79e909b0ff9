package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coney-counter/coney-counter-api/internal/config"
	"github.com/coney-counter/coney-counter-api/internal/logging"
	"github.com/coney-counter/coney-counter-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

const (
	GoogleUserInfoAPI = "https://www.googleapis.com/oauth2/v2/userinfo"

	CookieName      = "auth_token"
	stateCookieName = "oauth_state"
	TokenDuration   = 24 * time.Hour
)

var ErrBanned = errors.New("user is banned")

type AuthHandler struct {
	oauthConfig *oauth2.Config
	userInfoURL string
	db          *gorm.DB
	cfg         *config.Config
	logger      *logrus.Logger
}

func NewAuthHandler(cfg *config.Config, db *gorm.DB, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: GoogleUserInfoAPI,
		db:          db,
		cfg:         cfg,
		logger:      logger,
	}
}

type GoogleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := randomState()
	if err != nil {
		http.Error(w, "Failed to start login", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	url := h.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOnline)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Code not found", http.StatusBadRequest)
		return
	}
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		http.Error(w, "Invalid OAuth state", http.StatusBadRequest)
		return
	}

	token, err := h.oauthConfig.Exchange(r.Context(), code)
	if err != nil {
		logging.LogError(h.logger, "auth", "HandleCallback", "exchange token", nil, err)
		http.Error(w, "Failed to exchange token", http.StatusInternalServerError)
		return
	}

	client := h.oauthConfig.Client(r.Context(), token)
	resp, err := client.Get(h.userInfoURL)
	if err != nil {
		http.Error(w, "Failed to get user info", http.StatusInternalServerError)
		return
	}
	defer resp.Body.Close()

	var googleUser GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&googleUser); err != nil {
		http.Error(w, "Failed to decode user info", http.StatusInternalServerError)
		return
	}
	if googleUser.Email == "" {
		http.Error(w, "Google account has no email address", http.StatusBadRequest)
		return
	}

	user, err := h.UpsertGoogleUser(r.Context(), googleUser)
	if errors.Is(err, ErrBanned) {
		http.Error(w, "Access denied: this account has been banned.", http.StatusForbidden)
		return
	}
	if err != nil {
		logging.LogError(h.logger, "auth", "HandleCallback", "save user", googleUser.Email, err)
		http.Error(w, "Failed to save user", http.StatusInternalServerError)
		return
	}

	jwtToken, err := h.GenerateToken(user.ID)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Value: "", MaxAge: -1, Path: "/"})
	h.setSessionCookie(w, jwtToken)
	http.Redirect(w, r, h.cfg.FrontendURL, http.StatusTemporaryRedirect)
}

// UpsertGoogleUser creates or refreshes the user for a Google profile.
// Emails listed in ADMIN_EMAILS are approved admins; everyone else is
// approved on creation only when AUTO_APPROVE is set.
func (h *AuthHandler) UpsertGoogleUser(ctx context.Context, g GoogleUser) (*models.User, error) {
	var user models.User
	if err := h.db.WithContext(ctx).Where(models.User{Email: g.Email}).FirstOrInit(&user).Error; err != nil {
		return nil, err
	}

	if user.ID == 0 {
		user.Username = defaultUsername(g.Email)
		user.Role = models.RoleUser
		user.IsApproved = h.cfg.AutoApprove
		user.CurrentLevel = 1
		user.NextLevelXP = 20
	}
	if user.IsBanned {
		return nil, ErrBanned
	}

	user.GoogleID = g.ID
	user.Name = g.Name
	user.Image = g.Picture
	if h.cfg.IsAdminEmail(g.Email) {
		user.Role = models.RoleAdmin
		user.IsApproved = true
	}

	if err := h.db.WithContext(ctx).Save(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Path:     "/",
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) GenerateToken(userID uint) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(TokenDuration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

// ParseToken validates a session token and returns its user id and expiry.
func (h *AuthHandler) ParseToken(tokenString string) (uint, time.Time, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, time.Time{}, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, time.Time{}, errors.New("invalid token claims")
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, time.Time{}, errors.New("invalid token claims")
	}
	var expiresAt time.Time
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiresAt = exp.Time
	}
	return uint(userIDFloat), expiresAt, nil
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Expires:  time.Now().Add(TokenDuration),
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		Secure:   strings.HasPrefix(h.cfg.FrontendURL, "https://"),
	})
}

func defaultUsername(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
