package rotate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Target is a rotatable log file. The zero value is not usable; set Path,
// and Keep to the number of historical generations to preserve.
type Target struct {
	// Path is the live target file.
	Path string
	// Keep is the number of rotated generations to preserve. Zero means the
	// live file is deleted outright on rotation instead of renamed.
	Keep int
}

// Generation returns the path of the n-th rotated generation.
func (t Target) Generation(n int) string {
	return fmt.Sprintf("%s.%d", t.Path, n)
}

// Rotate retires the live target file. With Keep > 0 the file becomes
// generation 1, existing generations shift up by one, and generations beyond
// Keep are deleted; with Keep == 0 the file is deleted. Every path touched
// is hardened with [CheckTarget] first. The live file is gone when Rotate
// returns; the caller recreates it.
func (t Target) Rotate() error {
	err := CheckTarget(t.Path)
	if err != nil {
		return err
	}

	if t.Keep <= 0 {
		return removeIfExists(t.Path)
	}

	oldest := t.Generation(t.Keep)

	err = CheckTarget(oldest)
	if err != nil {
		return err
	}

	err = removeIfExists(oldest)
	if err != nil {
		return err
	}

	for n := t.Keep - 1; n >= 1; n-- {
		err = t.shift(n)
		if err != nil {
			return err
		}
	}

	if !exists(t.Path) {
		return nil
	}

	first := t.Generation(1)

	err = CheckTarget(first)
	if err != nil {
		return err
	}

	err = os.Rename(t.Path, first)
	if err != nil {
		return fmt.Errorf("rotating %q: %w", t.Path, err)
	}

	return nil
}

// shift renames generation n to generation n+1 when it exists.
func (t Target) shift(n int) error {
	src := t.Generation(n)
	dst := t.Generation(n + 1)

	err := CheckTarget(src)
	if err != nil {
		return err
	}

	err = CheckTarget(dst)
	if err != nil {
		return err
	}

	if !exists(src) {
		return nil
	}

	err = os.Rename(src, dst)
	if err != nil {
		return fmt.Errorf("shifting generation %q: %w", src, err)
	}

	return nil
}

func removeIfExists(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %q: %w", path, err)
	}

	return nil
}

func exists(path string) bool {
	_, err := os.Lstat(path)

	return err == nil
}
