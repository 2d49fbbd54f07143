//go:build windows

package records

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

func hide(path string) error {
	return attrib("+H", path)
}

func unhide(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return attrib("-H", path)
}

func attrib(flag, path string) error {
	out, err := exec.Command("attrib", flag, path).CombinedOutput()
	if err != nil {
		return fmt.Errorf("attrib %s: %w: %s", flag, err, out)
	}
	return nil
}
