// Package claims decodes token payloads WITHOUT verifying signatures. It is
// an untrusted peek used for local expiry and role inspection only; signature
// verification is the identity provider's (and any upstream gateway's)
// responsibility. Never use this package as an authorization check.
package claims

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/albumgate/albumgate/internal/utils"
)

// ExpiryLookahead is the window before expiry in which a token is reported
// as about to expire.
const ExpiryLookahead = 5 * time.Minute

// ownerScopePrefix marks a scope that grants the owner role.
const ownerScopePrefix = "owner:"

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// AccessTokenClaims are the locally inspected claims of an access token.
type AccessTokenClaims struct {
	ExpiresAt time.Time
	Scopes    []string
}

// IsOwner reports whether any scope carries the owner prefix.
func (c AccessTokenClaims) IsOwner() bool {
	for _, scope := range c.Scopes {
		if strings.HasPrefix(scope, ownerScopePrefix) {
			return true
		}
	}
	return false
}

// Expired reports whether the token expiry has passed.
func (c AccessTokenClaims) Expired() bool {
	return !NowTimeFunc().Before(c.ExpiresAt)
}

// AboutToExpire reports whether less than ExpiryLookahead remains before
// expiry. An already expired token is also about to expire.
func (c AccessTokenClaims) AboutToExpire() bool {
	return c.ExpiresWithin(ExpiryLookahead)
}

// ExpiresWithin reports whether less than d remains before expiry.
func (c AccessTokenClaims) ExpiresWithin(d time.Duration) bool {
	return NowTimeFunc().After(c.ExpiresAt.Add(-d))
}

// IdentityClaims are the display claims carried by an identity token.
type IdentityClaims struct {
	Name    string
	Email   string
	Picture string
}

// PeekAccessToken decodes the payload of an access token without verifying
// it. Malformed input or a missing exp claim yields (zero, false); callers
// treat "no claims" the same as an expired token.
func PeekAccessToken(rawToken string) (AccessTokenClaims, bool) {
	mapClaims, ok := peek(rawToken)
	if !ok {
		return AccessTokenClaims{}, false
	}

	exp, ok := mapClaims["exp"].(float64)
	if !ok {
		return AccessTokenClaims{}, false
	}

	return AccessTokenClaims{
		ExpiresAt: time.Unix(int64(exp), 0),
		Scopes:    scopesFromClaim(mapClaims["scope"]),
	}, true
}

// PeekIdentity decodes the display claims of an identity token without
// verifying it. The display name prefers given_name + family_name, then the
// name claim, then preferred_username, then the email address.
func PeekIdentity(rawToken string) (IdentityClaims, bool) {
	mapClaims, ok := peek(rawToken)
	if !ok {
		return IdentityClaims{}, false
	}

	email, _ := mapClaims["email"].(string)
	picture, _ := mapClaims["picture"].(string)

	givenName, _ := mapClaims["given_name"].(string)
	familyName, _ := mapClaims["family_name"].(string)
	name := strings.TrimSpace(strings.Join([]string{givenName, familyName}, " "))
	if name == "" {
		name, _ = mapClaims["name"].(string)
	}
	if name == "" {
		name, _ = mapClaims["preferred_username"].(string)
	}
	if name == "" {
		name = email
	}

	return IdentityClaims{
		Name:    name,
		Email:   email,
		Picture: picture,
	}, true
}

func peek(rawToken string) (jwtlib.MapClaims, bool) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, false
	}

	unverifiedToken, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil, false
	}

	mapClaims, ok := unverifiedToken.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, false
	}
	return mapClaims, true
}

// scopesFromClaim accepts both the space-separated string form and the array
// form of the scope claim.
func scopesFromClaim(claim any) []string {
	switch v := claim.(type) {
	case string:
		return strings.Fields(v)
	case []any:
		return utils.ToStringSlice(v)
	default:
		return nil
	}
}
