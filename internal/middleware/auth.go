package middleware

import (
	"context"
	"net/http"
	"strings"

	"tireshop/internal/apierror"
	"tireshop/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const SessionKey = "session"

// RevocationChecker reports whether a token id was revoked by logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// JWTAuth validates the Bearer access token, rejects revoked tokens and
// stores the session both on the gin context and on the request context.
func JWTAuth(issuer *session.Issuer, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				apierror.WithCode(apierror.CodeUnauthorized, "Autenticação necessária"))
			return
		}

		claims, err := issuer.Parse(strings.TrimPrefix(header, "Bearer "), session.TokenAccess)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				apierror.WithCode(apierror.CodeUnauthorized, "Token inválido ou expirado"))
			return
		}
		sess, err := session.FromClaims(claims)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				apierror.WithCode(apierror.CodeUnauthorized, "Token inválido ou expirado"))
			return
		}

		if revoked != nil {
			isRevoked, err := revoked.IsRevoked(c.Request.Context(), sess.TokenID())
			if err != nil {
				// fail closed: a token we cannot check is not trusted
				log.Ctx(c.Request.Context()).Error().Err(err).Msg("token denylist lookup failed")
				c.AbortWithStatusJSON(http.StatusServiceUnavailable,
					apierror.WithCode(apierror.CodeInternal, "Serviço temporariamente indisponível"))
				return
			}
			if isRevoked {
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					apierror.WithCode(apierror.CodeUnauthorized, "Sessão encerrada"))
				return
			}
		}

		c.Set(SessionKey, sess)
		ctx := session.NewContext(c.Request.Context(), sess)
		logger := log.Ctx(ctx).With().Str("user_id", sess.UserID().String()).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(ctx))
		c.Next()
	}
}

// RequireRole rejects requests whose session role is not in the allowed list.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := GetSession(c)
		if sess == nil || !sess.HasRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				apierror.WithCode(apierror.CodeForbidden, "Permissões insuficientes"))
			return
		}
		c.Next()
	}
}

// GetSession returns the session set by JWTAuth, or nil on public routes.
func GetSession(c *gin.Context) *session.Session {
	v, ok := c.Get(SessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}
