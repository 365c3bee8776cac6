package opencv

import "errors"

// ErrUnavailable is returned when the binary was built without OpenCV
// support.
var ErrUnavailable = errors.New("opencv backend not available: rebuild with -tags gocv")

// Name is the backend identifier used in configuration and run records.
const Name = "opencv"
