package fertilizer

import (
	"errors"
	"fmt"
)

// ErrUnknownCrop matches any *ConfigurationError via errors.Is.
var ErrUnknownCrop = errors.New("unknown crop")

// ConfigurationError reports a crop key missing from the crop table. It is
// not a user input error: the deployment's table does not cover the crop.
type ConfigurationError struct {
	Crop string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("crop %q is not configured in the crop table", e.Crop)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrUnknownCrop
}
