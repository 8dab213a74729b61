package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MikeMC777/vnb-store/internal/cart"
	"github.com/MikeMC777/vnb-store/internal/logx"
	"github.com/MikeMC777/vnb-store/internal/user"
)

const (
	SessionHeader     = "X-Session-Key"
	IdempotencyHeader = "Idempotency-Key"
	identityKey       = "identity"
)

// Identity is who a request acts as: an authenticated user or an anonymous
// session. SessionKey is always set.
type Identity struct {
	UserID     string
	Staff      bool
	SessionKey string
}

func (i Identity) Authenticated() bool { return i.UserID != "" }

// Owner keys the caller's cart.
func (i Identity) Owner() cart.Owner {
	return cart.Owner{UserID: i.UserID, SessionKey: i.SessionKey}
}

// UserValidator confirms a token subject still names an account.
type UserValidator interface {
	ValidateUser(ctx context.Context, id string) (bool, error)
}

// Authenticate resolves the request identity. A bearer token that fails to
// verify is rejected; no token means an anonymous session, minted here when
// the client sent none.
func Authenticate(tokens *user.Tokens, validator UserValidator, log *logx.Logger) gin.HandlerFunc {
	log = log.With("component", "auth")
	return func(c *gin.Context) {
		id := Identity{SessionKey: strings.TrimSpace(c.GetHeader(SessionHeader))}
		if id.SessionKey == "" {
			id.SessionKey = uuid.NewString()
		}
		c.Writer.Header().Set(SessionHeader, id.SessionKey)

		if raw := bearer(c); raw != "" {
			claims, err := tokens.Parse(raw)
			if err != nil {
				log.Debug("rejected token", "rid", c.GetString("rid"), "error", err)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
				return
			}
			if validator != nil {
				ok, err := validator.ValidateUser(c.Request.Context(), claims.Subject)
				if err != nil {
					log.Error("validate user", "user_id", claims.Subject, "error", err)
					c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "identity service unavailable"})
					return
				}
				if !ok {
					c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
					return
				}
			}
			id.UserID = claims.Subject
			id.Staff = claims.Staff
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

func bearer(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// Current returns the identity set by Authenticate.
func Current(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// MustCurrent is for handlers mounted behind Authenticate.
func MustCurrent(c *gin.Context) Identity {
	id, _ := Current(c)
	return id
}
