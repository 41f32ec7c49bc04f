/*
Package auth resolves bearer tokens into identity principals.

Tokens are HMAC signed JWTs whose "user" claim carries the role specific id
(customer, staff or admin id) as "id", the account id as "user_id" and the
role as "user_type".
*/
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"backoffice/config"
	"backoffice/domain/identity"
	"backoffice/domain/shared"

	"github.com/golang-jwt/jwt/v4"
)

const (
	DefaultAlgorithm      = "HS256"
	DefaultAccessTokenTTL = 30 * time.Minute
)

const (
	msgMissingCredentials = "Authentication credentials were not provided"
	msgInvalidCredentials = "Could not validate credentials"
	msgExpiredToken       = "Expired access token"
	msgInvalidUserType    = "Invalid user type"
)

// User is the "user" claim.
type User struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	UserType  string `json:"user_type"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
}

// UserFor builds the claim for a principal.
func UserFor(p identity.Principal) User {
	var id int64
	switch p.Role() {
	case identity.RoleCustomer:
		id, _ = p.CustomerID()
	case identity.RoleStaff:
		id, _ = p.StaffID()
	case identity.RoleAdmin:
		id, _ = p.AdminID()
	}
	return User{ID: id, UserID: p.UserID(), UserType: p.Role().UserType(), Email: p.Email()}
}

type Claims struct {
	User User `json:"user"`
	jwt.RegisteredClaims
}

type Options struct {
	Secret    []byte
	Algorithm string
	Issuer    string
	TTL       time.Duration
}

func OptionsFromConfig(cfg *config.AuthConfig) Options {
	return Options{
		Secret:    []byte(cfg.SecretKey),
		Algorithm: cfg.Algorithm,
		Issuer:    cfg.Issuer,
		TTL:       cfg.AccessTokenTTL,
	}
}

func (o Options) method() (jwt.SigningMethod, error) {
	alg := o.Algorithm
	if alg == "" {
		alg = DefaultAlgorithm
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported jwt algorithm %q", alg)
	}
	return method, nil
}

// JWTResolver turns a bearer credential into a Principal.
type JWTResolver struct {
	opts   Options
	method jwt.SigningMethod
	parser *jwt.Parser
}

func NewJWTResolver(opts Options) (*JWTResolver, error) {
	if len(opts.Secret) == 0 {
		return nil, errors.New("jwt secret is required")
	}
	method, err := opts.method()
	if err != nil {
		return nil, err
	}
	return &JWTResolver{
		opts:   opts,
		method: method,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{method.Alg()})),
	}, nil
}

// Resolve fails with an authentication error for a missing, malformed,
// expired or foreign token.
func (r *JWTResolver) Resolve(ctx context.Context, credential string) (identity.Principal, error) {
	token := strings.TrimSpace(credential)
	if token == "" {
		return identity.Unauthenticated(), shared.NewUnauthenticatedError(msgMissingCredentials)
	}

	claims := &Claims{}
	_, err := r.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return r.opts.Secret, nil
	})
	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) && validationErr.Errors&jwt.ValidationErrorExpired != 0 {
			return identity.Unauthenticated(), shared.NewUnauthenticatedError(msgExpiredToken)
		}
		return identity.Unauthenticated(), shared.NewUnauthenticatedError(msgInvalidCredentials)
	}
	if r.opts.Issuer != "" && !claims.VerifyIssuer(r.opts.Issuer, true) {
		return identity.Unauthenticated(), shared.NewUnauthenticatedError(msgInvalidCredentials)
	}

	role, err := identity.ParseUserType(claims.User.UserType)
	if err != nil {
		return identity.Unauthenticated(), shared.NewUnauthenticatedError(msgInvalidUserType)
	}
	return identity.New(role, claims.User.UserID, claims.User.ID).WithEmail(claims.User.Email), nil
}

// Issuer signs access tokens with the same options the resolver checks.
type Issuer struct {
	opts   Options
	method jwt.SigningMethod
	now    func() time.Time
}

func NewIssuer(opts Options) (*Issuer, error) {
	if len(opts.Secret) == 0 {
		return nil, errors.New("jwt secret is required")
	}
	method, err := opts.method()
	if err != nil {
		return nil, err
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultAccessTokenTTL
	}
	return &Issuer{opts: opts, method: method, now: time.Now}, nil
}

// Issue signs a token for user. A non-positive ttl uses the configured one.
func (i *Issuer) Issue(user User, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = i.opts.TTL
	}
	now := i.now()
	claims := Claims{
		User: user,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.opts.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(i.method, claims).SignedString(i.opts.Secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}
