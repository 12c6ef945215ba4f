package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/vogiaan1904/calorieclash/internal/service"
)

type leaderClaimsKey struct{}

// LeaderFromContext returns the verified leader claims, or nil when the
// request did not pass the leader middleware.
func LeaderFromContext(ctx context.Context) *service.LeaderClaims {
	claims, _ := ctx.Value(leaderClaimsKey{}).(*service.LeaderClaims)
	return claims
}

// VerifyLeaderSession guards leader-only operations. The token is taken
// from the leaderSession cookie, falling back to a leaderSession field in
// the JSON body for clients that cannot set cookies.
func (h *GameHandler) VerifyLeaderSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.extractLeaderToken(r)
		if token == "" {
			h.respondError(w, http.StatusUnauthorized, "Unauthorized: No token provided")
			return
		}

		claims, err := h.tokenService.VerifyLeaderToken(r.Context(), token)
		if err != nil {
			status, msg := mapServiceError(err)
			h.respondError(w, status, msg)
			return
		}

		ctx := context.WithValue(r.Context(), leaderClaimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *GameHandler) extractLeaderToken(r *http.Request) string {
	if c, err := r.Cookie("leaderSession"); err == nil && c.Value != "" {
		return c.Value
	}

	// Peek the body without consuming it; the handler decodes it again.
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	var peek struct {
		LeaderSession string `json:"leaderSession"`
	}
	if err := json.Unmarshal(body, &peek); err != nil {
		return ""
	}

	return peek.LeaderSession
}
