package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/ayudantias/core"
	"github.com/trezcool/ayudantias/core/account"
)

const (
	audience          = "Ayudantias"
	contextTokenKey   = "accountToken"
	contextAccountKey = "account"
)

// Claims represents the authorization claims transmitted via a JWT.
// Subject holds the account ID: the cedula, or the email of admins.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Role         string `json:"rol"`
	Email        string `json:"correo"`
	Name         string `json:"nombre,omitempty"`
}

func (c Claims) IsAdmin() bool { return c.Role == account.RoleAdmin }

func (c Claims) logUser() core.LogUser {
	return core.LogUser{ID: c.Subject, Role: c.Role, Email: c.Email}
}

type authenticator struct {
	conf      *core.Config
	jwtConfig middleware.JWTConfig
}

func newAuthenticator(conf *core.Config) *authenticator {
	return &authenticator{
		conf: conf,
		jwtConfig: middleware.JWTConfig{
			SigningKey:    []byte(conf.SecretKey),
			SigningMethod: middleware.AlgorithmHS256,
			ContextKey:    contextTokenKey,
			Claims:        new(Claims),
		},
	}
}

func (a *authenticator) middleware() echo.MiddlewareFunc {
	return middleware.JWTWithConfig(a.jwtConfig)
}

// NewClaims returns the claims of a fresh session of acc.
func NewClaims(acc account.Account, conf *core.Config, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	oriat := nownix
	if len(origIat) > 0 {
		oriat = origIat[0]
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			Issuer:    conf.AppName,
			Subject:   acc.AccountID(),
			Audience:  audience,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Role:         acc.AccountRole(),
		Email:        acc.AccountEmail(),
		Name:         acc.AccountName(),
	}
}

// GenerateToken generates a signed JWT token string representing the account Claims.
func GenerateToken(claims *Claims, conf *core.Config) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextAccount loads the account behind the request token, once per request.
func getContextAccount(ctx echo.Context, svc *account.Service, clms ...Claims) (account.Account, error) {
	if acc, ok := ctx.Get(contextAccountKey).(account.Account); ok {
		return acc, nil
	}

	var claims Claims
	var err error
	if len(clms) > 0 {
		claims = clms[0]
	} else {
		claims, err = getContextClaims(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "getting context claims")
		}
	}

	acc, err := svc.Get(ctx.Request().Context(), claims.Role, claims.Subject)
	if err != nil {
		if errors.Cause(err) == account.ErrNotFound || errors.Cause(err) == account.ErrUnknownRole {
			return nil, errUnauthorized
		}
		return nil, errors.Wrap(err, "finding account")
	}
	ctx.Set(contextAccountKey, acc)
	return acc, nil
}

func (a *authenticator) refreshToken(ctx echo.Context, svc *account.Service) (string, Claims, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", Claims{}, errors.Wrap(err, "getting context claims")
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(a.conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", Claims{}, errRefreshExpired
	}

	// the account may have been removed since the token was issued
	acc, err := getContextAccount(ctx, svc, claims)
	if err != nil {
		return "", Claims{}, errors.Wrap(err, "getting context account")
	}

	newClaims := NewClaims(acc, a.conf, claims.OrigIssuedAt)
	token, err := GenerateToken(newClaims, a.conf)
	if err != nil {
		return "", Claims{}, errors.Wrap(err, "generating token")
	}
	return token, *newClaims, nil
}

// requireRoles only lets through tokens of one of roles.
func requireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			for _, role := range roles {
				if claims.Role == role {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}
