// Package errors defines the typed failure taxonomy shared by the document
// backends, the archive pipeline, and the HTTP layer.
//
// Every failure that crosses a package boundary is a *DocError carrying one
// of the ErrorType categories below, so callers can map failures to user
// behavior (404, 403, password re-prompt, process exit) with errors.Is
// rather than string matching.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType categorizes a document access failure.
type ErrorType string

const (
	// ErrorTypeNotFound means the logical path has no corresponding entry.
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeAccessDenied means the path resolved outside the backend root.
	ErrorTypeAccessDenied ErrorType = "access_denied"
	// ErrorTypeEncrypted means an encrypted entry was read without a password.
	ErrorTypeEncrypted ErrorType = "encrypted"
	// ErrorTypeCorrupt means decompression or checksum verification failed.
	ErrorTypeCorrupt ErrorType = "corrupt"
	// ErrorTypeBadPassword means archive verification failed after a password
	// was supplied: the password is wrong or the container is damaged. The
	// two are not always distinguishable from the zip layer.
	ErrorTypeBadPassword ErrorType = "incorrect_password_or_corrupt"
	// ErrorTypeNoDocuments means a pack operation discovered nothing to include.
	ErrorTypeNoDocuments ErrorType = "no_documents"
)

// DocError is a categorized error with an optional logical path and cause.
type DocError struct {
	Type    ErrorType
	Path    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *DocError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, msg)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *DocError) Unwrap() error {
	return e.Cause
}

// Is matches two DocErrors by category, so sentinel-style comparison with
// errors.Is works: errors.Is(err, &DocError{Type: ErrorTypeNotFound}).
func (e *DocError) Is(target error) bool {
	var t *DocError
	if !errors.As(target, &t) {
		return false
	}
	return e.Type == t.Type
}

// NotFound reports that no entry exists for the logical path.
func NotFound(path string) *DocError {
	return &DocError{Type: ErrorTypeNotFound, Path: path, Message: "document not found"}
}

// AccessDenied reports a path traversal attempt.
func AccessDenied(path string) *DocError {
	return &DocError{Type: ErrorTypeAccessDenied, Path: path, Message: "path resolves outside the document root"}
}

// Encrypted reports a read of an encrypted entry without a password.
func Encrypted(path string) *DocError {
	return &DocError{Type: ErrorTypeEncrypted, Path: path, Message: "entry is encrypted and no password was supplied"}
}

// Corrupt reports a failed decompression or checksum verification.
func Corrupt(path string, cause error) *DocError {
	return &DocError{Type: ErrorTypeCorrupt, Path: path, Message: "entry could not be extracted", Cause: cause}
}

// BadPassword reports failed archive verification after a password was given.
func BadPassword(cause error) *DocError {
	return &DocError{Type: ErrorTypeBadPassword, Message: "incorrect password or corrupt archive", Cause: cause}
}

// NoDocuments reports that packing discovered no documents under root.
func NoDocuments(root string) *DocError {
	return &DocError{Type: ErrorTypeNoDocuments, Path: root, Message: "no documents found"}
}

// IsType reports whether err carries the given category anywhere in its chain.
func IsType(err error, t ErrorType) bool {
	var de *DocError
	if !errors.As(err, &de) {
		return false
	}
	return de.Type == t
}

// IsNotFound reports whether err is a not-found failure.
func IsNotFound(err error) bool { return IsType(err, ErrorTypeNotFound) }

// IsAccessDenied reports whether err is a traversal rejection.
func IsAccessDenied(err error) bool { return IsType(err, ErrorTypeAccessDenied) }

// IsEncrypted reports whether err is a missing-password failure.
func IsEncrypted(err error) bool { return IsType(err, ErrorTypeEncrypted) }

// IsCorrupt reports whether err is an extraction failure.
func IsCorrupt(err error) bool { return IsType(err, ErrorTypeCorrupt) }

// IsBadPassword reports whether err is a terminal open-verification failure.
func IsBadPassword(err error) bool { return IsType(err, ErrorTypeBadPassword) }

// IsNoDocuments reports whether err is an empty pack input failure.
func IsNoDocuments(err error) bool { return IsType(err, ErrorTypeNoDocuments) }
