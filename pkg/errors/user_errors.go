package errors

var (
	// Domain errors — used in usecase/repository
	ErrUserNotFound    = NotFound("user not found")
	ErrInvalidUserID   = InvalidArg("invalid user id")
	ErrInvalidName     = InvalidArg("name cannot be empty")
	ErrInvalidAge      = InvalidArg("age must be at least 18")
	ErrInvalidGender   = InvalidArg("unknown gender")
	ErrInvalidAgeRange = InvalidArg("age range lower bound must not exceed upper bound")
	ErrTooManyPhotos   = InvalidArg("a gallery holds at most 6 photos")
)

func ErrSignupFailed(cause error) error {
	return Wrap(CodeInternal, "signup failed", cause)
}

func ErrDirectoryUnavailable(cause error) error {
	return Wrap(CodeUnavailable, "user directory unreachable", cause)
}
