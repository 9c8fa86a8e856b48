package auth

import "digital-advisor/internal/domain"

var (
	ErrBadCredentials = &domain.Error{Kind: domain.ErrUnauthorized, Message: "Bad username or password"}
	ErrInvalidToken   = &domain.Error{Kind: domain.ErrUnauthorized, Message: "Invalid or expired token"}
	ErrTokenRevoked   = &domain.Error{Kind: domain.ErrUnauthorized, Message: "Token has been revoked"}
	ErrUserExists     = &domain.Error{Kind: domain.ErrConflict, Message: "User with that username or email already exists"}
)
