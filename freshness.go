package sumstats

import (
	"fmt"
	"os"
	"time"
)

// ShouldRun reports whether outputs need to be regenerated from inputs: true
// if any output is missing, or if the newest input was modified after the
// oldest output. A missing input is an error.
func (o *Opener) ShouldRun(inputs, outputs []string) (bool, error) {
	var oldestOutput time.Time
	for i, path := range outputs {
		mtime, exists, err := o.ModTime(path)
		if err != nil {
			return false, err
		}
		if !exists {
			return true, nil
		}
		if i == 0 || mtime.Before(oldestOutput) {
			oldestOutput = mtime
		}
	}

	for _, path := range inputs {
		mtime, exists, err := o.ModTime(path)
		if err != nil {
			return false, err
		}
		if !exists {
			return false, fmt.Errorf("%s: %w", path, os.ErrNotExist)
		}
		if mtime.After(oldestOutput) {
			return true, nil
		}
	}

	return len(outputs) == 0, nil
}
