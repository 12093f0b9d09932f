// Package fserror provides the closed error taxonomy used by the virtual
// filesystem. Every error in the taxonomy binds an error kind to the absolute
// path at which the condition was detected.
package fserror

import (
	"errors"
	"fmt"
)

// Kind identifies a class of filesystem error.
type Kind uint8

const (
	// ENOENT indicates that a path component does not exist.
	ENOENT Kind = iota
	// EEXIST indicates that a path unexpectedly exists.
	EEXIST
	// EISDIR indicates an illegal operation on a directory.
	EISDIR
	// EISFILE indicates an illegal operation on a file.
	EISFILE
	// ENOTDIR indicates that a path is not a directory.
	ENOTDIR
	// ENOTFILE indicates that a path is not a file.
	ENOTFILE
	// ENOTLNK indicates that a path is not a symbolic link.
	ENOTLNK
	// ENOTEMPTY indicates that a directory is not empty.
	ENOTEMPTY
	// ELOOP indicates that symbolic link resolution exceeded the maximum
	// chain length.
	ELOOP
)

// String provides the standard name of the error kind.
func (k Kind) String() string {
	switch k {
	case ENOENT:
		return "ENOENT"
	case EEXIST:
		return "EEXIST"
	case EISDIR:
		return "EISDIR"
	case EISFILE:
		return "EISFILE"
	case ENOTDIR:
		return "ENOTDIR"
	case ENOTFILE:
		return "ENOTFILE"
	case ENOTLNK:
		return "ENOTLNK"
	case ENOTEMPTY:
		return "ENOTEMPTY"
	case ELOOP:
		return "ELOOP"
	default:
		return "unknown"
	}
}

// message provides the standard human-readable message for the error kind.
func (k Kind) message() string {
	switch k {
	case ENOENT:
		return "no such file or directory"
	case EEXIST:
		return "file already exists"
	case EISDIR:
		return "illegal operation on a directory"
	case EISFILE:
		return "illegal operation on a file"
	case ENOTDIR:
		return "not a directory"
	case ENOTFILE:
		return "not a file"
	case ENOTLNK:
		return "not a symbolic link"
	case ENOTEMPTY:
		return "directory not empty"
	case ELOOP:
		return "too many levels of symbolic links"
	default:
		return "unknown error"
	}
}

// Error represents a filesystem error bound to an offending path.
type Error struct {
	// Kind is the class of the error.
	Kind Kind
	// Path is the absolute path at which the error was detected.
	Path string
}

// New creates a new filesystem error of the specified kind for the specified
// path.
func New(kind Kind, path string) *Error {
	return &Error{Kind: kind, Path: path}
}

// Error implements error.Error.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Kind.message(), e.Path)
}

// Is indicates whether or not an error is a filesystem error of the specified
// kind, unwrapping as necessary.
func Is(err error, kind Kind) bool {
	var fsErr *Error
	return errors.As(err, &fsErr) && fsErr.Kind == kind
}

// PathOf returns the offending path of a filesystem error, unwrapping as
// necessary, or an empty string if the error is not a filesystem error.
func PathOf(err error) string {
	var fsErr *Error
	if errors.As(err, &fsErr) {
		return fsErr.Path
	}
	return ""
}
