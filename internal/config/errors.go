package config

import (
	"errors"
	"fmt"
)

// ErrConfig tags every fatal configuration-resolution error so callers can
// classify failures without matching message text.
var ErrConfig = errors.New("configuration error")

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}
