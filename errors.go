package goSession

import "errors"

var (
	// ErrInvalidCredentials is the single sign-in rejection, whatever the backend said.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrTooManyAttempts is returned when the backend throttles sign-in.
	ErrTooManyAttempts = errors.New("too many sign-in attempts, try again later")
	// ErrMissingCredentials is returned when email or password is empty.
	ErrMissingCredentials = errors.New("email and password are required")
	// ErrLoginInProgress is returned while another SignIn on the same Store is in flight.
	ErrLoginInProgress = errors.New("sign-in already in progress")
	// ErrTokenInvalid is returned when an issued access token cannot be decoded.
	ErrTokenInvalid = errors.New("access token invalid")
	// ErrTokenExpired is returned when an issued access token is already expired.
	ErrTokenExpired = errors.New("access token expired")
	// ErrNotAuthenticated is returned by operations that need a signed-in user.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrInvalidNickname is returned for a blank nickname.
	ErrInvalidNickname = errors.New("nickname must not be blank")
	// ErrStoreNotReady is returned by a Store that was not built by Builder.Build.
	ErrStoreNotReady = errors.New("session store not initialized")
	// ErrStoreClosed is returned after Close.
	ErrStoreClosed = errors.New("session store closed")
)
