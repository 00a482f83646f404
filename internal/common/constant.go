package common

// Cookie names carrying the session tokens.
const (
	AccessTokenCookieName  = "accessToken"
	RefreshTokenCookieName = "refreshToken"
)

// APIPrefix is the route prefix of the account API.
const APIPrefix = "/api/v1/users"
