package tweet

import "errors"

// Error is a user-facing record error with a stable numeric code.
type Error struct {
	// Code identifies the error to clients. Codes start at 6000.
	Code uint32

	// Name is the symbolic name of the error.
	Name string

	// Msg is the human readable message.
	Msg string
}

func (e *Error) Error() string {
	return "tweet: " + e.Msg
}

var (
	// ErrContentTooLong is returned when content exceeds MaxContentChars scalar values.
	ErrContentTooLong = &Error{Code: 6000, Name: "ContentTooLong", Msg: "the tweet is too long"}

	// ErrInvalidContent is returned when content is not valid UTF-8.
	ErrInvalidContent = errors.New("tweet: content is not valid UTF-8")

	// ErrCorruptRecord is returned when stored bytes cannot be decoded as a Record.
	ErrCorruptRecord = errors.New("tweet: corrupt record data")

	// ErrInvalidKey is returned when a key string does not decode to 32 bytes.
	ErrInvalidKey = errors.New("tweet: invalid key")
)
