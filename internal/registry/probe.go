package registry

import (
	"os"
	"path/filepath"
	"strings"
)

// defaultSubdir is appended to the user's home directory when no model
// location has been configured.
const defaultSubdir = "models/vision"

// weightExts are the file extensions recognized as model weights.
var weightExts = []string{".gguf", ".bin", ".mmproj", ".safetensors"}

// Error texts cross the boundary as plain strings. Keep them stable: the
// receiving side matches on them to recover the error kind (FromMessage).
const (
	directoryMissingMessage = "model directory missing: no location configured and no default resolvable"
	resourcesMissingPrefix  = "model resources missing: "
)

// directoryMissingError: no location configured and no default resolvable.
type directoryMissingError struct{}

func (directoryMissingError) Error() string { return directoryMissingMessage }

func ErrDirectoryMissing() error { return directoryMissingError{} }

// IsDirectoryMissing reports whether err indicates an unresolvable model directory.
func IsDirectoryMissing(err error) bool {
	_, ok := err.(directoryMissingError)
	return ok
}

// resourcesMissingError: a configured location does not exist or is not a directory.
type resourcesMissingError struct{ dir string }

func (e resourcesMissingError) Error() string { return resourcesMissingPrefix + e.dir }

func ErrResourcesMissing(dir string) error { return resourcesMissingError{dir: dir} }

// IsResourcesMissing reports whether err indicates a missing/invalid model location.
func IsResourcesMissing(err error) bool {
	_, ok := err.(resourcesMissingError)
	return ok
}

// FromMessage rehydrates a registry error from its message text after a trip
// across the string-only boundary. Returns false for unrecognized messages.
func FromMessage(msg string) (error, bool) {
	if msg == directoryMissingMessage {
		return ErrDirectoryMissing(), true
	}
	if strings.HasPrefix(msg, resourcesMissingPrefix) {
		return ErrResourcesMissing(strings.TrimPrefix(msg, resourcesMissingPrefix)), true
	}
	return nil, false
}

// DefaultDir returns the fallback model directory under the user's home.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", ErrDirectoryMissing()
	}
	return filepath.Join(home, defaultSubdir), nil
}

// Resolve validates dir (or the default location when dir is empty) and
// returns it as an absolute path. Errors are raised here, before any load
// attempt is started, never after.
func Resolve(dir string) (string, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return "", err
		}
		dir = d
	}
	expanded, err := expandHome(dir)
	if err != nil {
		return "", ErrDirectoryMissing()
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", ErrResourcesMissing(dir)
	}
	fi, err := os.Stat(abs)
	if err != nil || !fi.IsDir() {
		return "", ErrResourcesMissing(abs)
	}
	return abs, nil
}

// Weights lists model weight files directly under dir, sorted by ReadDir order.
func Weights(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ErrResourcesMissing(dir)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		for _, ext := range weightExts {
			if strings.HasSuffix(name, ext) {
				out = append(out, filepath.Join(dir, e.Name()))
				break
			}
		}
	}
	return out, nil
}

// expandHome expands a leading '~' to the user's home directory.
func expandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}
