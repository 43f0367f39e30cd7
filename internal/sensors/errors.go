package sensors

import "errors"

var (
	// ErrNotPresent means the device did not answer or answered with an
	// unexpected identity.
	ErrNotPresent = errors.New("sensor not present")

	// ErrCalibration means the calibration file could not be read or parsed.
	ErrCalibration = errors.New("invalid calibration file")

	// ErrChannel means a multiplexer channel outside 0-7 was requested.
	ErrChannel = errors.New("invalid mux channel")
)
