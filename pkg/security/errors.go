package security

import "errors"

// JWT 错误
var (
	ErrSecretKeyEmpty = errors.New("security: secret key is empty")
	ErrTokenMissing   = errors.New("security: token is missing")
	ErrTokenInvalid   = errors.New("security: token is invalid")
	ErrTokenExpired   = errors.New("security: token has expired")
	ErrTokenMalformed = errors.New("security: token is malformed")
)
