package light

import "errors"

var (
	// ErrNoLightsFound indicates no supported light is connected.
	ErrNoLightsFound = errors.New("no lights found")

	// ErrLightUnavailable indicates a light was found but could not be
	// opened, typically a permissions problem or another process holding
	// the device.
	ErrLightUnavailable = errors.New("light unavailable")

	// ErrLightUnsupported indicates a device matched a known vendor ID but
	// no driver could claim it.
	ErrLightUnsupported = errors.New("light unsupported")

	// ErrInvalidLightID indicates a selection referenced no known light.
	ErrInvalidLightID = errors.New("invalid light id")
)
