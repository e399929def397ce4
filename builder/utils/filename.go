package utils

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// MaxFilenameProbes bounds the collision loop in AllocateFilename.
// Normal reruns need a handful of probes; hitting the cap means the directory is pathological.
const MaxFilenameProbes = 10000

// ErrFilenameExhausted is returned when every probed name is already taken.
var ErrFilenameExhausted = errors.New("no free post filename")

// PostFilename formats the name for the n-th post of a slug on a date.
// n < 2 yields the unsuffixed name.
func PostFilename(date, slug string, n int) string {
	if n < 2 {
		return fmt.Sprintf("%s-%s.html", date, slug)
	}
	return fmt.Sprintf("%s-%s-%d.html", date, slug, n)
}

// AllocateFilename returns the first name of the form {date}-{slug}[-{n}].html
// that does not exist in dir. The returned name is relative to dir.
func AllocateFilename(fs afero.Fs, dir, date, slug string) (string, error) {
	name, _, err := AllocateFilenameProbes(fs, dir, date, slug)
	return name, err
}

// AllocateFilenameProbes is AllocateFilename that also reports how many names were probed.
func AllocateFilenameProbes(fs afero.Fs, dir, date, slug string) (string, int, error) {
	for n := 1; n <= MaxFilenameProbes; n++ {
		name := PostFilename(date, slug, n)
		taken, err := afero.Exists(fs, filepath.Join(dir, name))
		if err != nil {
			return "", n, fmt.Errorf("failed to check %s: %w", name, err)
		}
		if !taken {
			return name, n, nil
		}
	}
	return "", MaxFilenameProbes, fmt.Errorf("%w: %s in %s after %d probes", ErrFilenameExhausted, PostFilename(date, slug, 1), dir, MaxFilenameProbes)
}
