package config

import "errors"

var (
	ErrEmptyStoragePath      = errors.New("config: storage path is empty")
	ErrInvalidLogLevel       = errors.New("config: invalid log level")
	ErrInvalidClipboardClear = errors.New("config: clipboard clear delay must be positive")
	ErrMalformedSettings     = errors.New("config: malformed settings file")
)
