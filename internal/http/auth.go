package httpx

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/image-captioner/captioner/internal/adapters/shopify"
)

// ShopAuthConfig holds the credentials RequireShopAuth accepts.
type ShopAuthConfig struct {
	// APIKey is the app's client id; session tokens must name it in aud.
	// Empty skips the audience check.
	APIKey string
	// APISecret signs storefront session tokens (HS256).
	APISecret string
	// AdminToken is an operator bearer token valid for every shop. Empty
	// disables it.
	AdminToken string
}

// Enabled reports whether any credential is configured.
func (c ShopAuthConfig) Enabled() bool {
	return c.APISecret != "" || c.AdminToken != ""
}

// Caller identifies who made an authenticated API request.
type Caller struct {
	Shop   string
	UserID string
	Admin  bool
}

// String renders the caller for logs.
func (c Caller) String() string {
	switch {
	case c.Admin:
		return "admin"
	case c.UserID != "":
		return c.Shop + "/" + c.UserID
	default:
		return c.Shop
	}
}

type callerKey struct{}

// CallerFromContext returns the caller stored by RequireShopAuth.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(Caller)
	return c, ok
}

// sessionClaims are the claims of a storefront admin session token.
type sessionClaims struct {
	Dest string `json:"dest"`
	jwt.RegisteredClaims
}

var (
	errMissingToken  = errors.New("authentication required")
	errInvalidToken  = errors.New("invalid session token")
	errShopForbidden = errors.New("session token is not valid for this shop")
)

// RequireShopAuth returns a middleware that admits a request only with a
// bearer token for the {shop} in its path: either a session token signed
// with the app secret whose dest is that shop, or the admin token.
// Routes wrapped by it must declare a {shop} path value.
func RequireShopAuth(cfg ShopAuthConfig) func(http.Handler) http.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			shop, ok := shopFromPath(w, r)
			if !ok {
				return
			}

			raw := bearerToken(r)
			if raw == "" {
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: "authentication_required",
					Err:     errMissingToken,
				})
				return
			}

			var caller Caller
			if cfg.AdminToken != "" && subtle.ConstantTimeCompare([]byte(raw), []byte(cfg.AdminToken)) == 1 {
				caller = Caller{Shop: shop, Admin: true}
			} else {
				tokenShop, userID, err := verifySessionToken(parser, cfg, raw)
				if err != nil {
					WriteError(w, ErrorParams{
						Code:    http.StatusUnauthorized,
						ErrCode: "invalid_token",
						Err:     errInvalidToken,
					})
					return
				}
				if tokenShop != shop {
					WriteError(w, ErrorParams{
						Code:    http.StatusForbidden,
						ErrCode: "forbidden_shop",
						Err:     errShopForbidden,
						Field:   "shop",
					})
					return
				}
				caller = Caller{Shop: shop, UserID: userID}
			}

			ctx := context.WithValue(r.Context(), callerKey{}, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// verifySessionToken checks signature, expiry, audience and that iss and
// dest name the same shop. It returns the normalized shop and the user id.
func verifySessionToken(parser *jwt.Parser, cfg ShopAuthConfig, raw string) (string, string, error) {
	if cfg.APISecret == "" {
		return "", "", errors.New("session tokens are not accepted without an app secret")
	}

	var claims sessionClaims
	_, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return []byte(cfg.APISecret), nil
	})
	if err != nil {
		return "", "", err
	}
	if cfg.APIKey != "" && !claims.VerifyAudience(cfg.APIKey, true) {
		return "", "", errors.New("session token audience mismatch")
	}

	dest, err := shopFromURL(claims.Dest)
	if err != nil {
		return "", "", err
	}
	iss, err := shopFromURL(claims.Issuer)
	if err != nil {
		return "", "", err
	}
	if iss != dest {
		return "", "", errors.New("session token issuer and destination differ")
	}
	return dest, claims.Subject, nil
}

func shopFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	return shopify.NormalizeShopDomain(u.Hostname())
}

func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
