package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coney-counter/coney-counter-api/internal/logging"
	"github.com/coney-counter/coney-counter-api/internal/models"
	"github.com/danielgtaylor/huma/v2"
	"gorm.io/gorm"
)

type contextKey string

const UserIDKey contextKey = "user_id"

var (
	errNoCredentials = errors.New("no credentials")
	errKeyExpired    = errors.New("api key expired")
	errInvalidKey    = errors.New("invalid api key")
)

// AuthInput is embedded in every authenticated huma input.
type AuthInput struct {
	Cookie string `header:"Cookie" doc:"Session cookie (auth_token)"`
	APIKey string `header:"X-API-KEY" doc:"Personal API key"`
}

func UserIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(UserIDKey).(uint)
	return id, ok && id != 0
}

// authenticate resolves the caller from an API key or the session cookie.
// refreshed is a new token when the session passed half its lifetime.
func (h *AuthHandler) authenticate(ctx context.Context, cookieHeader, apiKey string) (userID uint, refreshed string, err error) {
	if apiKey != "" {
		userID, err := h.userIDForAPIKey(ctx, apiKey)
		return userID, "", err
	}

	if cookieHeader == "" {
		return 0, "", errNoCredentials
	}
	cookies, err := http.ParseCookie(cookieHeader)
	if err != nil {
		return 0, "", errNoCredentials
	}
	var tokenString string
	for _, c := range cookies {
		if c.Name == CookieName {
			tokenString = c.Value
		}
	}
	if tokenString == "" {
		return 0, "", errNoCredentials
	}

	userID, expiresAt, err := h.ParseToken(tokenString)
	if err != nil {
		return 0, "", err
	}

	// Sliding session: refresh token if it's more than halfway through its duration
	if !expiresAt.IsZero() && time.Until(expiresAt) < TokenDuration/2 {
		if newToken, err := h.GenerateToken(userID); err == nil {
			refreshed = newToken
		}
	}
	return userID, refreshed, nil
}

func (h *AuthHandler) userIDForAPIKey(ctx context.Context, key string) (uint, error) {
	var keyModel models.APIKey
	if err := h.db.WithContext(ctx).Where(&models.APIKey{Key: key}).First(&keyModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, errInvalidKey
		}
		return 0, err
	}
	now := time.Now()
	if keyModel.Expired(now) {
		return 0, errKeyExpired
	}
	if err := h.db.WithContext(ctx).Model(&keyModel).Update("last_used_at", now).Error; err != nil {
		logging.LogError(h.logger, "auth", "userIDForAPIKey", "update last_used_at", keyModel.ID, err)
	}
	return keyModel.UserID, nil
}

// Authorize returns the calling user. A user id already placed on ctx by the
// session middleware wins over the input headers.
func (h *AuthHandler) Authorize(ctx context.Context, input AuthInput) (*models.User, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		id, _, err := h.authenticate(ctx, input.Cookie, input.APIKey)
		switch {
		case errors.Is(err, errKeyExpired):
			return nil, huma.Error401Unauthorized("API key expired")
		case errors.Is(err, errNoCredentials):
			return nil, huma.Error401Unauthorized("Not logged in")
		case err != nil:
			return nil, huma.Error401Unauthorized("Invalid credentials")
		}
		userID = id
	}

	var user models.User
	if err := h.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error401Unauthorized("User not found")
		}
		return nil, huma.Error500InternalServerError("Failed to load user")
	}
	if user.IsBanned {
		return nil, huma.Error403Forbidden("This account has been banned")
	}
	return &user, nil
}

// RequireApproved is Authorize plus the approval gate for writes.
func (h *AuthHandler) RequireApproved(ctx context.Context, input AuthInput) (*models.User, error) {
	user, err := h.Authorize(ctx, input)
	if err != nil {
		return nil, err
	}
	if !user.IsApproved {
		return nil, huma.Error403Forbidden("Your account is waiting for approval")
	}
	return user, nil
}

func (h *AuthHandler) RequireAdmin(ctx context.Context, input AuthInput) (*models.User, error) {
	user, err := h.Authorize(ctx, input)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin() {
		return nil, huma.Error403Forbidden("Admin access required")
	}
	return user, nil
}

func (h *AuthHandler) serve(next http.Handler, required bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, refreshed, err := h.authenticate(r.Context(), r.Header.Get("Cookie"), r.Header.Get("X-API-KEY"))
		if err != nil {
			if !required {
				next.ServeHTTP(w, r)
				return
			}
			switch {
			case errors.Is(err, errNoCredentials):
				http.Error(w, "Unauthorized: No token found", http.StatusUnauthorized)
			case errors.Is(err, errKeyExpired):
				http.Error(w, "Unauthorized: API Key expired", http.StatusUnauthorized)
			default:
				http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			}
			return
		}

		if refreshed != "" {
			h.setSessionCookie(w, refreshed)
		}
		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthMiddleware rejects requests without valid credentials.
func (h *AuthHandler) AuthMiddleware(next http.Handler) http.Handler {
	return h.serve(next, true)
}

// SessionMiddleware attaches the caller and refreshes the session when
// possible, leaving rejection to the operation.
func (h *AuthHandler) SessionMiddleware(next http.Handler) http.Handler {
	return h.serve(next, false)
}
