package config

import "time"

type CookieConfig interface {
	GetRefreshTokenMaxAge() time.Duration
	GetIdentityClaimsMaxAge() time.Duration
}

type Cookies struct{}

var _ CookieConfig = Cookies{}

func (Cookies) GetRefreshTokenMaxAge() time.Duration {
	return 30 * 24 * time.Hour
}

func (Cookies) GetIdentityClaimsMaxAge() time.Duration {
	return 30 * 24 * time.Hour
}
