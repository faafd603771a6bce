package middleware

import (
	"errors"
	"net/http"
	"time"

	"shopfront/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CtxSessionIDKey   = "session_id" // string
	SessionCookieName = "shop_session"

	sessionTTL = 30 * 24 * time.Hour
)

// ゲストセッション用ミドルウェア。
// 署名つきcookieが無ければ新しいセッションを発行する。
// ログイン不要（買い物かごはブラウザ単位）。
func GuestSession(cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if sid, ok := parseSessionCookie(c, cfg.SessionSecret); ok {
				c.Set(CtxSessionIDKey, sid)
				return next(c)
			}

			//新規セッションを発行してcookieを配る
			sid := uuid.NewString()
			signed, err := signSession(sid, cfg.SessionSecret)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, errorJSON("internal error"))
			}

			c.SetCookie(&http.Cookie{
				Name:     SessionCookieName,
				Value:    signed,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				Expires:  time.Now().Add(sessionTTL),
			})

			c.Set(CtxSessionIDKey, sid)
			return next(c)
		}
	}
}

func parseSessionCookie(c echo.Context, secret string) (string, bool) {
	cookie, err := c.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	//JWTをパースして検証する
	token, err := jwt.Parse(cookie.Value, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || token == nil || !token.Valid {
		return "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}

	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", false
	}

	return sid, true
}

func signSession(sid string, secret string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sid": sid,
		"iat": now.Unix(),
		"exp": now.Add(sessionTTL).Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(secret))
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
