package state

import (
	"errors"
	"fmt"
	"os"
)

// Lock guards a state file against concurrent runs with a sibling lock file.
// The owner run id is written to a temporary file first and linked into place,
// so the lock never exists without its owner recorded. The returned release
// function removes the lock.
func Lock(path string, runId string) (func(), error) {
	lockPath := path + ".lock"
	ownerPath := lockPath + "." + runId

	if err := os.WriteFile(ownerPath, []byte(runId), 0644); err != nil {
		return nil, fmt.Errorf("failed to lock state file %s: %w", path, err)
	}

	err := os.Link(ownerPath, lockPath)

	if err != nil {
		os.Remove(ownerPath)
		if errors.Is(err, os.ErrExist) {
			holder, readErr := os.ReadFile(lockPath)
			if readErr == nil && len(holder) != 0 {
				return nil, fmt.Errorf("state file %s is locked by run %s", path, string(holder))
			}
			return nil, fmt.Errorf("state file %s is locked", path)
		}
		return nil, fmt.Errorf("failed to lock state file %s: %w", path, err)
	}

	os.Remove(ownerPath)

	return func() {
		os.Remove(lockPath)
	}, nil
}
