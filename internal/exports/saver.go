package exports

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pwnholic/mobilitywatch/internal"
)

// Saver hands a finished file to the user. Each successful export calls
// Save exactly once.
type Saver interface {
	Save(data []byte, filename, mime string) error
}

type SaverFunc func(data []byte, filename, mime string) error

func (f SaverFunc) Save(data []byte, filename, mime string) error {
	return f(data, filename, mime)
}

// DirSaver writes files into Dir, creating it on first use.
type DirSaver struct {
	Dir string
}

func (s DirSaver) Save(data []byte, filename, _ string) error {
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return fmt.Errorf("invalid filename %q", filename)
	}
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, filename)
	tmp, err := os.CreateTemp(dir, "."+filename+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	_, err = tmp.Write(data)
	err = errors.Join(err, tmp.Close())
	if err == nil {
		err = os.Rename(tmp.Name(), path)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// Alerter shows a single blocking notice to the user.
type Alerter interface {
	Alert(message string)
}

type AlertFunc func(message string)

func (f AlertFunc) Alert(message string) {
	f(message)
}

// LogAlerter reports alerts as error lines, for non-interactive use.
type LogAlerter struct {
	Logger *internal.Logger
}

func (a LogAlerter) Alert(message string) {
	if a.Logger == nil {
		internal.Error("%s", message)
		return
	}
	a.Logger.Error("%s", message)
}
