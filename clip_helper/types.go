package clip_helper

import (
	"errors"
	"time"
)

// Kind identifies what a clipboard payload carries.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindFiles Kind = "files"
)

// Payload is a single clipboard capture. Exactly one of the content fields
// is meaningful for a given Kind: Text (+ optional HTML) for KindText,
// PNG for KindImage, Files for KindFiles.
type Payload struct {
	Kind  Kind     `json:"kind"`
	Text  string   `json:"text,omitempty"`
	HTML  string   `json:"html,omitempty"`
	PNG   []byte   `json:"-"`
	Files []string `json:"files,omitempty"`
}

var (
	// ErrBusy means the OS clipboard could not be opened; callers retry
	// with backoff.
	ErrBusy = errors.New("clipboard busy")

	// ErrUnsupported marks operations the current platform cannot perform
	// (e.g. file lists outside Windows).
	ErrUnsupported = errors.New("clipboard operation not supported on this platform")

	// ErrDecode marks malformed image data or data URLs.
	ErrDecode = errors.New("clipboard image decode failed")
)

const (
	// OpenRetryDelay is the backoff step callers use between attempts to
	// open a busy clipboard.
	OpenRetryDelay = 50 * time.Millisecond

	// OpenRetryCount bounds those attempts.
	OpenRetryCount = 5
)
