package dungeongraph

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pkg/errors"
)

var (
	// ErrNoAnchor implies no anchor part admits the generator's threat level.
	ErrNoAnchor = errors.New("no valid anchor part")

	// ErrAnchorBlocked implies the anchor part cannot be placed at the requested position.
	// Callers may try again elsewhere.
	ErrAnchorBlocked = errors.New("anchor part cannot be placed")

	// ErrUnknownBrush is returned when parsing a brush with an unrecognised key
	ErrUnknownBrush = errors.New("unknown brush")

	// ErrUnsupportedReader is returned when a part names a "def" kind with no reader
	ErrUnsupportedReader = errors.New("unsupported part reader")

	// ErrNotFound is returned when asking for a dungeon that doesn't exist
	ErrNotFound = errors.New("dungeon not found")
)

// DungeonError is a hard failure, it wraps the cause with the name of the
// dungeon that failed. Callers should not retry generating the dungeon.
type DungeonError struct {
	Dungeon string
	Err     error
}

// newDungeonError wraps err with the dungeon name, unless it's already
// a DungeonError
func newDungeonError(dungeon string, err error) error {
	if err == nil {
		return nil
	}
	var derr *DungeonError
	if errors.As(err, &derr) {
		return err
	}
	return &DungeonError{Dungeon: dungeon, Err: err}
}

// Error implements error
func (e *DungeonError) Error() string {
	return fmt.Sprintf("dungeon %q: %v", e.Dungeon, e.Err)
}

// Unwrap returns the underlying error
func (e *DungeonError) Unwrap() error {
	return e.Err
}

// Cause returns the underlying error (for errors.Cause)
func (e *DungeonError) Cause() error {
	return e.Err
}

// IsSoftFailure returns if err means "nothing was generated, try elsewhere"
// rather than a broken dungeon definition.
func IsSoftFailure(err error) bool {
	return errors.Is(err, ErrNoAnchor) || errors.Is(err, ErrAnchorBlocked)
}

var logger = log.New(os.Stderr, "dungeongraph: ", log.LstdFlags)

// SetLogger replaces the package logger. Passing nil silences logging.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard, "", 0)
	}
	logger = l
}
