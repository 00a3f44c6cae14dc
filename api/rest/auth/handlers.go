package auth

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"codeberg.org/algopatterns/academy/academy/profiles"
	"codeberg.org/algopatterns/academy/internal/auth"
	"codeberg.org/algopatterns/academy/internal/callback"
	"codeberg.org/algopatterns/academy/internal/errors"
	"codeberg.org/algopatterns/academy/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
)

// BeginAuthHandler godoc
// @Summary Start OAuth authentication
// @Description Begin OAuth authentication flow with specified provider (google, github)
// @Tags auth
// @Param provider path string true "OAuth provider" Enums(google, github)
// @Success 307 {string} string "Redirect to OAuth provider"
// @Failure 400 {object} errors.ErrorResponse
// @Router /api/v1/auth/{provider} [get]
func BeginAuthHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := c.Param("provider")

		if !slices.Contains(d.Providers, provider) {
			errors.BadRequest(c, "invalid provider", nil)
			return
		}

		setProviderQuery(c, provider)
		gothic.BeginAuthHandler(c.Writer, c.Request)
	}
}

// CallbackHandler godoc
// @Summary OAuth callback
// @Description OAuth provider callback. Completes the exchange within the callback
// @Description timeout and redirects to /modules on success or /login otherwise
// @Tags auth
// @Param provider path string true "OAuth provider" Enums(google, github)
// @Success 302 {string} string "Redirect to the front end"
// @Failure 400 {object} errors.ErrorResponse
// @Router /api/v1/auth/{provider}/callback [get]
func CallbackHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := c.Param("provider")

		if !slices.Contains(d.Providers, provider) {
			errors.BadRequest(c, "invalid provider", nil)
			return
		}

		setProviderQuery(c, provider)

		ctx := c.Request.Context()
		navigated := make(chan string, 1)
		messages := make(chan string, 1)

		ctrl := callback.NewController(callback.Options{
			Timeout:    d.CallbackTimeout,
			OnNavigate: func(path string) { navigated <- path },
			OnMessage: func(_ callback.Phase, text string) {
				select {
				case messages <- text:
				default:
				}
			},
		})

		go ctrl.Run(ctx)
		defer ctrl.Close()

		log := logger.With("callback_session", ctrl.ID, "provider", provider)

		ctrl.Observe(callback.AuthState{Loading: true})

		// the exchange is abandoned once the callback deadline has passed
		workerCtx, cancel := context.WithTimeout(ctx, ctrl.Timeout())
		defer cancel()

		recorder := newCookieRecorder()
		req := c.Request.Clone(workerCtx)
		results := make(chan completion, 1)

		go func(out chan<- completion) {
			out <- d.complete(workerCtx, recorder, req)
		}(results)

		var result *completion
		abandoned := workerCtx.Done()

		for {
			select {
			case <-abandoned:
				abandoned = nil

				// the exchange may not honor the context, report the provider as idle
				// so the deadline resolves to TimedOut without waiting for it
				if results != nil {
					log.Warn("oauth exchange still running at the callback deadline")
					ctrl.Observe(callback.AuthState{})
				}

			case res := <-results:
				result = &res
				results = nil

				ctrl.Observe(observedState(workerCtx, res))

				if res.err != nil {
					log.Warn("oauth exchange failed", "error", res.err)
				}

			case path := <-navigated:
				var message string
				select {
				case message = <-messages:
				default:
				}

				d.redirect(c, path, message, result, recorder)
				return

			case <-ctx.Done():
				log.Debug("client went away during oauth callback")
				return
			}
		}
	}
}

// GetStatusHandler godoc
// @Summary Pending status messages
// @Description Pops the status messages left by the last OAuth callback
// @Tags auth
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /api/v1/auth/status [get]
func GetStatusHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := d.Sessions.Get(c.Request, statusSession)
		if err != nil {
			// undecodable cookie, start over with an empty session
			logger.Debug("discarding status session", "error", err)
		}

		response := StatusResponse{Messages: []string{}}

		for _, flash := range session.Flashes() {
			if text, ok := flash.(string); ok {
				response.Messages = append(response.Messages, text)
			}
		}

		if err := session.Save(c.Request, c.Writer); err != nil {
			errors.InternalError(c, "failed to update session", err)
			return
		}

		c.JSON(http.StatusOK, response)
	}
}

// GetCurrentUserHandler godoc
// @Summary Get current user
// @Description Get the authenticated learner's profile
// @Tags auth
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /api/v1/auth/me [get]
// @Security BearerAuth
func GetCurrentUserHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		profile, err := d.Profiles.GetProfile(c.Request.Context(), userID)
		if err != nil {
			errors.Respond(c, "profile", err)
			return
		}

		c.JSON(http.StatusOK, UserResponse{User: profile})
	}
}

// LogoutHandler godoc
// @Summary Logout
// @Description Clear the token cookie and the provider session
// @Tags auth
// @Produce json
// @Success 200 {object} MessageResponse
// @Router /api/v1/auth/logout [post]
func LogoutHandler(d *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := gothic.Logout(c.Writer, c.Request); err != nil {
			logger.Debug("no provider session to clear", "error", err)
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(auth.TokenCookie, "", -1, "/", "", d.SecureCookies, true)

		c.JSON(http.StatusOK, MessageResponse{Message: "logged out successfully"})
	}
}

// runs on the worker goroutine: provider exchange, lazy profile creation, token
func (d *Deps) complete(ctx context.Context, w http.ResponseWriter, r *http.Request) completion {
	exchange := d.Complete
	if exchange == nil {
		exchange = gothic.CompleteUserAuth
	}

	gothUser, err := exchange(w, r)
	if err != nil {
		return completion{err: fmt.Errorf("provider exchange: %w", err)}
	}

	if gothUser.UserID == "" {
		return completion{err: fmt.Errorf("provider %s returned no user id", gothUser.Provider)}
	}

	// the callback already redirected, leave the profile alone
	if err := ctx.Err(); err != nil {
		return completion{err: fmt.Errorf("callback abandoned: %w", err)}
	}

	profile, err := d.Profiles.CreateOrUpdate(ctx, auth.ProfileID(gothUser.Provider, gothUser.UserID), identityPatch(gothUser))
	if err != nil {
		return completion{err: fmt.Errorf("failed to create profile: %w", err)}
	}

	token, err := d.Tokens.Generate(profile.ID, profile.Email)
	if err != nil {
		return completion{err: fmt.Errorf("failed to generate token: %w", err)}
	}

	return completion{profile: profile, token: token}
}

func (d *Deps) redirect(c *gin.Context, path, message string, result *completion, recorder *cookieRecorder) {
	// the recorder is only safe to read once the worker has reported back
	if result != nil {
		recorder.replay(c.Writer)

		if path == callback.PathHome && result.err == nil {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(auth.TokenCookie, result.token, int(d.Tokens.TTL().Seconds()), "/", "", d.SecureCookies, true)
		}
	}

	if message != "" {
		d.flash(c, message)
	}

	c.Redirect(http.StatusFound, d.FrontendURL+path)
}

func (d *Deps) flash(c *gin.Context, message string) {
	session, err := d.Sessions.Get(c.Request, statusSession)
	if err != nil {
		logger.Debug("discarding status session", "error", err)
	}

	session.AddFlash(message)

	if err := session.Save(c.Request, c.Writer); err != nil {
		logger.Warn("failed to save status message", "error", err)
	}
}

// maps the worker outcome onto the observer snapshot
func observedState(workerCtx context.Context, res completion) callback.AuthState {
	switch {
	case res.err == nil:
		return callback.AuthState{Authenticated: true}
	case workerCtx.Err() != nil:
		// exchange was abandoned at the deadline, the provider session is idle
		return callback.AuthState{}
	default:
		return callback.AuthState{Err: res.err}
	}
}

func identityPatch(u goth.User) profiles.Patch {
	var patch profiles.Patch

	name := u.Name
	if name == "" {
		name = u.NickName
	}

	if name != "" {
		patch.DisplayName = &name
	}

	if u.Email != "" {
		email := u.Email
		patch.Email = &email
	}

	return patch
}

func setProviderQuery(c *gin.Context, provider string) {
	q := c.Request.URL.Query()
	q.Set("provider", provider)
	c.Request.URL.RawQuery = q.Encode()
}
