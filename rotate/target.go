package rotate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrUnsafeTarget indicates a log target path that must not be written to:
// a symlink, a special file (socket, device, FIFO), or a path reached
// through a symlinked parent directory.
var ErrUnsafeTarget = errors.New("unsafe log target")

// CheckTarget verifies that path is safe to use as a log target. A missing
// file is safe; an existing one must be a regular file, and no parent
// directory may be a symlink.
func CheckTarget(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w: resolving %q: %w", ErrUnsafeTarget, path, err)
	}

	for dir := filepath.Dir(abs); ; dir = filepath.Dir(dir) {
		info, statErr := os.Lstat(dir)
		if statErr == nil && info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("%w: parent directory is a symlink: %q", ErrUnsafeTarget, dir)
		}

		if dir == filepath.Dir(dir) {
			break
		}
	}

	info, err := os.Lstat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("%w: inspecting %q: %w", ErrUnsafeTarget, abs, err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("%w: target is a symlink: %q", ErrUnsafeTarget, abs)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: target must be a regular file: %q", ErrUnsafeTarget, abs)
	}

	return nil
}

// Prepare creates missing parent directories for path and verifies the
// target is safe to write.
func Prepare(path string) error {
	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	return CheckTarget(path)
}
