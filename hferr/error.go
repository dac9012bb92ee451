package hferr

import "fmt"

// ConfigError - Custom error to inform that construction parameters for a file are not usable, for instance a
// block size too small to hold one record or an overflow block size not smaller than the main block size.
type ConfigError struct {
	msg string
}

// NewConfigError - Returns a ConfigError with a formatted message
func NewConfigError(format string, args ...any) ConfigError {
	return ConfigError{msg: fmt.Sprintf(format, args...)}
}

// Error - Used to notify that a file can not be created with the given parameters
func (C ConfigError) Error() string {
	if C.msg == "" {
		return "invalid file configuration"
	}
	return C.msg
}

// Is - Makes errors.Is(err, ConfigError{}) match any ConfigError regardless of message
func (C ConfigError) Is(target error) bool {
	_, ok := target.(ConfigError)
	return ok
}

// InvariantViolation - Custom error to inform that the engine detected a state it should never reach, such as a
// record hashing outside the two buckets of a split. The files must be considered inconsistent and the caller
// should abort.
type InvariantViolation struct {
	msg string
}

// NewInvariantViolation - Returns an InvariantViolation with a formatted message
func NewInvariantViolation(format string, args ...any) InvariantViolation {
	return InvariantViolation{msg: fmt.Sprintf(format, args...)}
}

// Error - Used to notify that an internal invariant is broken
func (I InvariantViolation) Error() string {
	if I.msg == "" {
		return "invariant violation"
	}
	return I.msg
}

// Is - Makes errors.Is(err, InvariantViolation{}) match any InvariantViolation regardless of message
func (I InvariantViolation) Is(target error) bool {
	_, ok := target.(InvariantViolation)
	return ok
}

// CorruptMetadata - Custom error to inform that a metadata file disagrees with its data file
type CorruptMetadata struct {
	msg string
}

// NewCorruptMetadata - Returns a CorruptMetadata with a formatted message
func NewCorruptMetadata(format string, args ...any) CorruptMetadata {
	return CorruptMetadata{msg: fmt.Sprintf(format, args...)}
}

// Error - Used to notify that metadata could not be trusted
func (C CorruptMetadata) Error() string {
	if C.msg == "" {
		return "corrupt metadata"
	}
	return C.msg
}

// Is - Makes errors.Is(err, CorruptMetadata{}) match any CorruptMetadata regardless of message
func (C CorruptMetadata) Is(target error) bool {
	_, ok := target.(CorruptMetadata)
	return ok
}
