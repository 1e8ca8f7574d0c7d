package server

import (
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/johan-st/toolbox/internal/access"
	"github.com/johan-st/toolbox/internal/config"
	"github.com/johan-st/toolbox/internal/history"
	"github.com/johan-st/toolbox/internal/namegen"
	gossh "golang.org/x/crypto/ssh"
)

// Authenticator handles SSH authentication.
type Authenticator struct {
	config *config.Config
	names  func() string
}

// NewAuthenticator creates a new authenticator. Anonymous names come from
// the history store when there is one.
func NewAuthenticator(cfg *config.Config, historyStore *history.Store) *Authenticator {
	a := &Authenticator{config: cfg}
	if historyStore != nil {
		a.names = historyStore.GenerateAnonymousName
	} else {
		gen := namegen.NewDefault()
		var mu sync.Mutex
		a.names = func() string {
			mu.Lock()
			defer mu.Unlock()
			return gen.Name()
		}
	}
	return a
}

// PublicKeyHandler returns a handler for public key authentication.
func (a *Authenticator) PublicKeyHandler() ssh.PublicKeyHandler {
	return func(ctx ssh.Context, key ssh.PublicKey) bool {
		fingerprint := FingerprintKey(key)
		user := a.findUserByKey(fingerprint, key)

		if user != nil {
			user.RemoteAddr = ctx.RemoteAddr().String()
			ctx.SetValue(ctxKeyUser, user)
			log.Info("authenticated", "user", user.Name, "remote", ctx.RemoteAddr())
			return true
		}

		// Allow anonymous access if configured
		if a.config.AnonymousEnabled() {
			anonUser := a.anonymous(ctx, fingerprint)
			log.Info("anonymous access", "remote", ctx.RemoteAddr(), "name", anonUser.AnonymousName)
			return true
		}

		log.Warn("authentication failed", "key", FingerprintKeyShort(key), "remote", ctx.RemoteAddr())
		return false
	}
}

// KeyboardInteractiveHandler returns a handler for keyboard-interactive auth.
func (a *Authenticator) KeyboardInteractiveHandler() ssh.KeyboardInteractiveHandler {
	return func(ctx ssh.Context, challenger gossh.KeyboardInteractiveChallenge) bool {
		if !a.config.KeylessAllowed() {
			return false
		}
		anonUser := a.anonymous(ctx, "")
		log.Info("anonymous keyboard-interactive access", "remote", ctx.RemoteAddr(), "name", anonUser.AnonymousName)
		return true
	}
}

func (a *Authenticator) anonymous(ctx ssh.Context, fingerprint string) *access.UserInfo {
	user := &access.UserInfo{
		IsAnonymous:   true,
		AnonymousName: a.names(),
		PublicKeyFP:   fingerprint,
		RemoteAddr:    ctx.RemoteAddr().String(),
	}
	ctx.SetValue(ctxKeyUser, user)
	return user
}

// findUserByKey finds a user by their public key.
func (a *Authenticator) findUserByKey(fingerprint string, key ssh.PublicKey) *access.UserInfo {
	for _, user := range a.config.UserList() {
		for _, pubKeyStr := range user.PublicKeys {
			parsedKey, _, _, _, err := ssh.ParseAuthorizedKey([]byte(pubKeyStr))
			if err != nil {
				// Config may list a bare fingerprint instead of a key
				if strings.TrimSpace(pubKeyStr) == fingerprint {
					return &access.UserInfo{
						Name:        user.Name,
						IsAdmin:     user.Admin,
						PublicKeyFP: fingerprint,
					}
				}
				continue
			}

			if ssh.KeysEqual(parsedKey, key) {
				return &access.UserInfo{
					Name:        user.Name,
					IsAdmin:     user.Admin,
					PublicKeyFP: fingerprint,
				}
			}
		}
	}
	return nil
}

// GetUserFromContext retrieves user info from the SSH context.
func GetUserFromContext(ctx ssh.Context) *access.UserInfo {
	if user, ok := ctx.Value(ctxKeyUser).(*access.UserInfo); ok {
		return user
	}
	return nil
}

// FingerprintKey returns the SHA256 fingerprint of a public key.
func FingerprintKey(key ssh.PublicKey) string {
	return gossh.FingerprintSHA256(key)
}

// FingerprintKeyShort returns a shortened fingerprint for display.
func FingerprintKeyShort(key ssh.PublicKey) string {
	fp := FingerprintKey(key)
	if len(fp) > 20 {
		return fp[:20] + "..."
	}
	return fp
}
