package domain

import "errors"

var (
	// ErrSteamNotFound is returned when the Steam install root cannot be discovered.
	ErrSteamNotFound = errors.New("steam installation not found")

	// ErrInvalidAccount is returned when an empty or placeholder account name
	// is explicitly passed to an account switch.
	ErrInvalidAccount = errors.New("invalid account name")

	// ErrLauncherPathsNotFound is returned when a launcher has no known executables.
	ErrLauncherPathsNotFound = errors.New("launcher paths not found")

	// ErrUnknownLauncher is returned for launcher ids outside the known table.
	ErrUnknownLauncher = errors.New("unknown launcher")

	// ErrUnsupported is returned by OS providers on platforms they do not support.
	ErrUnsupported = errors.New("not supported on this platform")
)
