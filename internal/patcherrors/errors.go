// Package patcherrors holds the error taxonomy of the patch pipeline. Each
// stage returns exactly one of these kinds so the stage runner and the CLI can
// tell failures apart with errors.As.
package patcherrors

import "fmt"

// FetchError reports a network, session or write failure while downloading
// the patch archive.
type FetchError struct {
	URL         string
	Destination string
	Err         error
}

// NewFetchError constructs a FetchError.
func NewFetchError(url, destination string, err error) error {
	return &FetchError{URL: url, Destination: destination, Err: err}
}

func (e *FetchError) Error() string {
	if e == nil {
		return ""
	}
	if e.URL != "" {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch to %s: %v", e.Destination, e.Err)
}

// Unwrap exposes the underlying error.
func (e *FetchError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ExtractError reports an invalid or truncated archive, or an unwritable
// extraction target.
type ExtractError struct {
	Archive string
	Entry   string
	Err     error
}

// NewExtractError constructs an ExtractError.
func NewExtractError(archive, entry string, err error) error {
	return &ExtractError{Archive: archive, Entry: entry, Err: err}
}

func (e *ExtractError) Error() string {
	if e == nil {
		return ""
	}
	if e.Entry != "" {
		return fmt.Sprintf("extract %s (entry %s): %v", e.Archive, e.Entry, e.Err)
	}
	return fmt.Sprintf("extract %s: %v", e.Archive, e.Err)
}

// Unwrap exposes the underlying error.
func (e *ExtractError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// MergeError reports a failure while merging the patch tree into the
// installation, including structural mismatches between the two trees.
type MergeError struct {
	Source      string
	Destination string
	Err         error
}

// NewMergeError constructs a MergeError.
func NewMergeError(source, destination string, err error) error {
	return &MergeError{Source: source, Destination: destination, Err: err}
}

func (e *MergeError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("merge %s -> %s: %v", e.Source, e.Destination, e.Err)
}

// Unwrap exposes the underlying error.
func (e *MergeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// CleanupError reports temporary artifacts that could not be removed.
type CleanupError struct {
	Paths []string
	Err   error
}

// NewCleanupError constructs a CleanupError.
func NewCleanupError(paths []string, err error) error {
	return &CleanupError{Paths: paths, Err: err}
}

func (e *CleanupError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("cleanup %v: %v", e.Paths, e.Err)
}

// Unwrap exposes the underlying error.
func (e *CleanupError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// RelocateError reports a readme that could not be moved out of the
// installation directory.
type RelocateError struct {
	Source      string
	Destination string
	Err         error
}

// NewRelocateError constructs a RelocateError.
func NewRelocateError(source, destination string, err error) error {
	return &RelocateError{Source: source, Destination: destination, Err: err}
}

func (e *RelocateError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("relocate %s -> %s: %v", e.Source, e.Destination, e.Err)
}

// Unwrap exposes the underlying error.
func (e *RelocateError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
