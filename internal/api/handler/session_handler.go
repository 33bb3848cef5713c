package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sevakendra/portal-api/internal/api/middleware"
	"github.com/sevakendra/portal-api/internal/core/domain"
	"github.com/sevakendra/portal-api/internal/core/ports"
	"github.com/sevakendra/portal-api/internal/core/session"
)

const defaultHeartbeat = 15 * time.Second

// SessionStreamHandler streams access-guard decisions as Server-Sent Events.
type SessionStreamHandler struct {
	identity  ports.IdentityService
	events    ports.AuthEventBus
	heartbeat time.Duration
	log       zerolog.Logger
}

func NewSessionStreamHandler(identity ports.IdentityService, events ports.AuthEventBus, heartbeat time.Duration, log zerolog.Logger) *SessionStreamHandler {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	return &SessionStreamHandler{identity: identity, events: events, heartbeat: heartbeat, log: log}
}

type decisionEvent struct {
	Decision string `json:"decision"`
	Redirect string `json:"redirect,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Stream handles GET /v1/session/stream.
//
// The first event is always "pending". The resolved decision follows, and a
// new one is sent after every auth change of the principal. The stream ends
// once the session is gone.
//
// @Summary      Stream access decisions
// @Tags         auth
// @Produce      text/event-stream
// @Param        view          query  string  false  "citizen (default) or provider"
// @Param        access_token  query  string  false  "Session token when no Authorization header can be sent"
// @Success      200
// @Failure      400  {object}  map[string]string
// @Router       /v1/session/stream [get]
func (h *SessionStreamHandler) Stream(c echo.Context) error {
	view := middleware.ViewCitizen
	if raw := c.QueryParam("view"); raw != "" {
		v, ok := middleware.ParseView(raw)
		if !ok {
			return domain.NewValidationError("view", "must be one of: citizen provider")
		}
		view = v
	}
	token := streamToken(c)

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)

	state := session.New()
	var writeErr error
	unsubscribe := state.Subscribe(func(s session.Snapshot) {
		if writeErr == nil {
			writeErr = writeDecision(res, s, view.RequiresProvider())
		}
	})
	defer unsubscribe()

	if err := writeDecision(res, state.Current(), view.RequiresProvider()); err != nil {
		return nil
	}

	ctx := c.Request().Context()
	principalID, err := h.resolve(c, state, token)
	if err != nil || principalID == "" || writeErr != nil {
		return nil
	}

	events, cancel, err := h.events.Subscribe(ctx, principalID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", principalID).Msg("failed to subscribe to auth events")
		return nil
	}
	defer cancel()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := fmt.Fprint(res, ": heartbeat\n\n"); err != nil {
				return nil
			}
			res.Flush()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			h.log.Debug().Str("user_id", principalID).Str("event", string(ev.Type)).Msg("re-evaluating session")
			state.Reset()
			id, err := h.resolve(c, state, token)
			if err != nil || id == "" || writeErr != nil {
				return nil
			}
		}
	}
}

// resolve verifies the token and loads the principal into state. It returns
// the principal ID, or "" when the session is not valid.
func (h *SessionStreamHandler) resolve(c echo.Context, state *session.State, token string) (string, error) {
	ctx := c.Request().Context()
	if token == "" {
		state.Set(nil, "")
		return "", nil
	}

	claims, err := h.identity.VerifyToken(ctx, token)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			h.log.Error().Err(err).Msg("session stream token check failed")
			return "", err
		}
		state.Set(nil, "")
		return "", nil
	}

	principal, err := h.identity.CurrentPrincipal(ctx, claims.PrincipalID)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			h.log.Error().Err(err).Str("user_id", claims.PrincipalID).Msg("session stream principal lookup failed")
			return "", err
		}
		state.Set(nil, "")
		return "", nil
	}

	state.Set(principal, principal.Role)
	return principal.ID, nil
}

func streamToken(c echo.Context) string {
	if token, ok := middleware.BearerToken(c.Request().Header.Get("Authorization")); ok {
		return token
	}
	return c.QueryParam("access_token")
}

func writeDecision(res *echo.Response, s session.Snapshot, requireProvider bool) error {
	decision := domain.Authorize(s.GuardInput(), requireProvider)
	payload, err := json.Marshal(decisionEvent{
		Decision: string(decision),
		Redirect: decision.RedirectTarget(),
		Role:     string(s.Role),
	})
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(res, "event: decision\ndata: %s\n\n", payload); err != nil {
		return err
	}
	res.Flush()
	return nil
}
