package leaudio

import (
	"errors"
	"fmt"
)

// ErrAudioGraphSetup is matched by every error returned from Player.Open.
var ErrAudioGraphSetup = errors.New("audio graph setup failed")

// SetupFailureMessage is the text shown to the user when a file cannot be
// loaded.
const SetupFailureMessage = "Something went wrong, could not process the Audio File\nPlease try again"

type SetupError struct {
	URL string
	Err error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrAudioGraphSetup, e.URL, e.Err)
}

func (e *SetupError) Unwrap() []error {
	return []error{ErrAudioGraphSetup, e.Err}
}
