package script

import (
	"errors"
	"fmt"
)

// ErrNotFunction is returned when a required script global exists but is
// not a function.
var ErrNotFunction = errors.New("script global is not a function")

// MissingFunctionError reports a handler or step function a script was
// required to define but did not.
type MissingFunctionError struct {
	// Script is the script path.
	Script string

	// Function is the expected global name.
	Function string
}

// Error implements the error interface.
func (e *MissingFunctionError) Error() string {
	return fmt.Sprintf("script %s does not define function %q", e.Script, e.Function)
}
