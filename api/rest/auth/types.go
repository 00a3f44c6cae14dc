package auth

import (
	"net/http"
	"time"

	"codeberg.org/algopatterns/academy/academy/profiles"
	"codeberg.org/algopatterns/academy/internal/auth"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
)

// cookie session holding the status message of the last callback
const statusSession = "academy_status"

// exchanges the provider callback for a user, gothic.CompleteUserAuth in production
type CompleteFunc func(w http.ResponseWriter, r *http.Request) (goth.User, error)

// dependencies of the auth handlers
type Deps struct {
	Profiles *profiles.Repository
	Tokens   *auth.Tokens
	Sessions sessions.Store

	// enabled provider names
	Providers []string

	// origin the callback redirects back to
	FrontendURL     string
	CallbackTimeout time.Duration
	SecureCookies   bool

	// defaults to gothic.CompleteUserAuth
	Complete CompleteFunc
}

// outcome of the provider exchange worker
type completion struct {
	profile *profiles.UserProfile
	token   string
	err     error
}

// UserResponse wraps the current learner's profile
type UserResponse struct {
	User *profiles.UserProfile `json:"user"`
}

// StatusResponse carries the pending status messages
type StatusResponse struct {
	Messages []string `json:"messages"`
}

// MessageResponse for simple success messages
type MessageResponse struct {
	Message string `json:"message"`
}
