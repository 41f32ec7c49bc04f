package auth

import (
	"context"
	"testing"
	"time"

	"backoffice/domain/identity"
	"backoffice/domain/shared"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testOptions = Options{
	Secret:    []byte("test-secret"),
	Algorithm: "HS256",
	Issuer:    "backoffice-test",
	TTL:       time.Minute,
}

func newPair(t *testing.T) (*Issuer, *JWTResolver) {
	t.Helper()
	issuer, err := NewIssuer(testOptions)
	require.NoError(t, err)
	resolver, err := NewJWTResolver(testOptions)
	require.NoError(t, err)
	return issuer, resolver
}

func TestResolveRoundTrip(t *testing.T) {
	issuer, resolver := newPair(t)

	testCases := []struct {
		name      string
		principal identity.Principal
	}{
		{"customer", identity.Customer(11, 3).WithEmail("ada@example.com")},
		{"staff", identity.Staff(12, 4)},
		{"admin", identity.Admin(13, 5)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			token, err := issuer.Issue(UserFor(tc.principal), 0)
			require.NoError(t, err)

			got, err := resolver.Resolve(context.Background(), token)
			require.NoError(t, err)
			assert.Equal(t, tc.principal, got)
		})
	}
}

func TestResolveRejects(t *testing.T) {
	issuer, resolver := newPair(t)

	expiredIssuer, err := NewIssuer(testOptions)
	require.NoError(t, err)
	expiredIssuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, err := expiredIssuer.Issue(UserFor(identity.Customer(1, 1)), time.Minute)
	require.NoError(t, err)

	foreignOptions := testOptions
	foreignOptions.Issuer = "someone-else"
	foreignIssuer, err := NewIssuer(foreignOptions)
	require.NoError(t, err)
	foreign, err := foreignIssuer.Issue(UserFor(identity.Customer(1, 1)), 0)
	require.NoError(t, err)

	otherKey := testOptions
	otherKey.Secret = []byte("other-secret")
	otherIssuer, err := NewIssuer(otherKey)
	require.NoError(t, err)
	badSignature, err := otherIssuer.Issue(UserFor(identity.Customer(1, 1)), 0)
	require.NoError(t, err)

	badType, err := issuer.Issue(User{ID: 1, UserID: 1, UserType: "Robot"}, 0)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{User: UserFor(identity.Admin(1, 1))}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	testCases := []struct {
		name    string
		token   string
		message string
	}{
		{"missing", "  ", "Authentication credentials were not provided"},
		{"garbage", "not-a-token", "Could not validate credentials"},
		{"expired", expired, "Expired access token"},
		{"foreign issuer", foreign, "Could not validate credentials"},
		{"bad signature", badSignature, "Could not validate credentials"},
		{"alg none", none, "Could not validate credentials"},
		{"unknown user type", badType, "Invalid user type"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := resolver.Resolve(context.Background(), tc.token)
			require.Error(t, err)
			assert.ErrorIs(t, err, shared.ErrUnauthenticated)
			assert.Contains(t, err.Error(), tc.message)
			assert.False(t, p.IsAuthenticated())
		})
	}
}

func TestNewResolverValidatesOptions(t *testing.T) {
	_, err := NewJWTResolver(Options{})
	assert.Error(t, err)

	_, err = NewJWTResolver(Options{Secret: []byte("x"), Algorithm: "RS256"})
	assert.Error(t, err)

	_, err = NewIssuer(Options{Secret: []byte("x"), Algorithm: "HS512"})
	assert.NoError(t, err)
}
