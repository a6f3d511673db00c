// Package ledger keeps the append-only record of CBR conversions.
package ledger

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
)

type Ledger struct {
	path string
}

func New(path string) *Ledger {
	return &Ledger{path: path}
}

// Append records one successful conversion. Lines are never rewritten or
// deduplicated. Callers treat failures as best-effort.
func (l *Ledger) Append(originalName string, newName string) error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "open ledger: %s", l.path)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] Converted: %s -> %s\n",
		time.Now().Format("2006-01-02 15:04:05"), originalName, newName)

	if _, err := f.WriteString(line); err != nil {
		return errors.Wrap(err, "write ledger entry")
	}

	return nil
}
