package vault

import (
	"errors"
	"fmt"

	"github.com/hengadev/errsx"
)

const (
	SaltLen = 16
	IVLen   = 16
	KeyLen  = 32

	// scrypt cost parameters. Changing them breaks every stored secret.
	ScryptN = 16384
	ScryptR = 8
	ScryptP = 1

	// Delimiter joins salt, IV and ciphertext inside an encoded secret.
	Delimiter = ":"
)

// Error kinds. Match with errors.Is.
var (
	ErrFormat      = errors.New("vault: malformed encoded secret")
	ErrAuthFailed  = errors.New("vault: authentication failed")
	ErrValidation  = errors.New("vault: invalid input")
	ErrNotFound    = errors.New("vault: account not found")
	ErrNoSecret    = errors.New("vault: account has no stored secret")
	ErrOutOfRange  = errors.New("vault: index out of range")
	ErrUnavailable = errors.New("vault: storage unavailable")
)

// Validation causes. Each one also matches ErrValidation.
var (
	ErrEmptyName        = fmt.Errorf("%w: name is empty", ErrValidation)
	ErrDuplicateName    = fmt.Errorf("%w: name already exists", ErrValidation)
	ErrInvalidName      = fmt.Errorf("%w: name must not contain commas, line breaks or surrounding spaces", ErrValidation)
	ErrPasswordRequired = fmt.Errorf("%w: password is required to encrypt a secret", ErrValidation)
	ErrInvalidPlaintext = fmt.Errorf("%w: secret is not valid UTF-8", ErrValidation)
)

// Record is a named account. An empty Secret means no secret is stored.
type Record struct {
	Name   string
	Secret string
}

// HasSecret reports whether the record carries an encoded secret.
func (r Record) HasSecret() bool { return r.Secret != "" }

// IsDecryptFailure reports whether err came from a failed decode, whatever the
// underlying cause. Callers show one generic message for both kinds.
func IsDecryptFailure(err error) bool {
	return errors.Is(err, ErrFormat) || errors.Is(err, ErrAuthFailed)
}

func formatError(detail string) error {
	return fmt.Errorf("%w: %s", ErrFormat, detail)
}

// validationError folds the collected field errors into one error that
// matches ErrValidation and can be unpacked with errors.As into an errsx.Map.
func validationError(errs errsx.Map) error {
	if errs.IsEmpty() {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrValidation, errs.AsError())
}
