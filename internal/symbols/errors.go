package symbols

import "fmt"

func duplicateRoutineError(name string) error {
	return fmt.Errorf("routine %q already defined", name)
}

func duplicateParamError(name string) error {
	return fmt.Errorf("duplicate parameter %q", name)
}
