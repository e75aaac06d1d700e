// Package view holds the state behind the listing and review screens: what
// has been fetched, what is still loading, and what the user has typed.
package view

import "errors"

// FetchErrorMessage is what a screen shows when its data could not be loaded.
const FetchErrorMessage = "Error fetching college data"

// ErrSuperseded is returned by an activation whose result was discarded
// because a newer activation started while it was in flight.
var ErrSuperseded = errors.New("fetch superseded by a newer activation")

// Fetch is the state of one remote load.
type Fetch[T any] struct {
	Data    T
	Err     error
	Loading bool
}

// Message returns the text to show in place of the data, if any.
func (f Fetch[T]) Message() string {
	switch {
	case f.Loading:
		return "Loading..."
	case f.Err != nil:
		return FetchErrorMessage
	}
	return ""
}
