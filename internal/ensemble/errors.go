package ensemble

import "errors"

var (
	// ErrNoAPIKey is returned when a backend call is attempted with no key configured.
	ErrNoAPIKey = errors.New("ensemble: no API key configured")

	// ErrTurnInFlight is returned by Start while a previous turn is still revealing.
	ErrTurnInFlight = errors.New("ensemble: a turn is already in flight")

	// ErrEmptyMessage is returned when the user message is blank.
	ErrEmptyMessage = errors.New("ensemble: message is empty")

	// ErrLastAgent is returned when removing the only agent in the roster.
	ErrLastAgent = errors.New("ensemble: cannot remove the last agent")

	// ErrDuplicateAgent is returned when an agent id is already in the roster.
	ErrDuplicateAgent = errors.New("ensemble: duplicate agent id")

	// ErrAgentNotFound is returned when no agent has the requested id.
	ErrAgentNotFound = errors.New("ensemble: agent not found")

	// ErrMalformedPayload is returned when a reply payload is not an object
	// carrying a responses array.
	ErrMalformedPayload = errors.New("ensemble: malformed reply payload")
)
