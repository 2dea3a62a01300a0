package httpserver

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

type ctxKey int

const actorKey ctxKey = iota

// Actor returns the authenticated admin identity recorded as
// createdBy/updatedBy on mutations.
func Actor(ctx context.Context) string {
	if v, ok := ctx.Value(actorKey).(string); ok {
		return v
	}
	return ""
}

type adminClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (s *Server) issueAdminToken(email string, dur time.Duration) (string, error) {
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, adminClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(dur)),
		},
	})
	return tok.SignedString(s.adminSecret)
}

func (s *Server) verifyAdminToken(raw string) (string, error) {
	var claims adminClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return s.adminSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	return claims.Email, nil
}

// requireAdmin gates mutating routes behind a bearer token and stores the
// actor email in the request context.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := ""
		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			raw = strings.TrimPrefix(h, "Bearer ")
		}
		if raw == "" {
			if c, err := r.Cookie("admin_token"); err == nil {
				raw = c.Value
			}
		}
		if raw == "" {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "authentication required"})
			return
		}
		email, err := s.verifyAdminToken(raw)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid token"})
			return
		}
		if len(s.adminAllowed) > 0 {
			if _, ok := s.adminAllowed[strings.ToLower(email)]; !ok {
				writeJSON(w, http.StatusForbidden, errorBody{Error: "not an administrator"})
				return
			}
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, email)))
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "email and password are required"})
		return
	}
	wantEmail := strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL")))
	wantPass := os.Getenv("ADMIN_PASSWORD")
	if wantEmail == "" || wantPass == "" {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "admin login is not configured"})
		return
	}
	if !secureCompare(strings.ToLower(strings.TrimSpace(req.Email)), wantEmail) || !secureCompare(req.Password, wantPass) {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid credentials"})
		return
	}
	tok, err := s.issueAdminToken(wantEmail, 12*time.Hour)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": tok, "expiresIn": int((12 * time.Hour).Seconds())})
}

func secureCompare(a, b string) bool {
	return len(a) == len(b) && subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// --- optional Google login, same flow as before the API split ---

func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := s.issueAdminToken("oauth-state", 10*time.Minute)
	if err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, s.oauthCfg.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if _, err := s.verifyAdminToken(r.URL.Query().Get("state")); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid oauth state"})
		return
	}
	tok, err := s.oauthCfg.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "oauth exchange failed"})
		return
	}
	resp, err := s.oauthCfg.Client(r.Context(), tok).Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "userinfo fetch failed"})
		return
	}
	defer resp.Body.Close()
	var info struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil || info.Email == "" {
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "userinfo decode failed"})
		return
	}
	email := strings.ToLower(info.Email)
	if len(s.adminAllowed) > 0 {
		if _, ok := s.adminAllowed[email]; !ok {
			writeJSON(w, http.StatusForbidden, errorBody{Error: "not an administrator"})
			return
		}
	}
	signed, err := s.issueAdminToken(email, 12*time.Hour)
	if err != nil {
		writeError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "admin_token",
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(12 * time.Hour),
	})
	log.Info().Str("email", email).Msg("google login")
	writeJSON(w, http.StatusOK, map[string]any{"email": email})
}
