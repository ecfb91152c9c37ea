// Package clipboard places command listings on the system clipboard.
package clipboard

import (
	"errors"
	"strings"

	"github.com/atotto/clipboard"
)

// ErrNothingToCopy is returned when a listing has no lines.
var ErrNothingToCopy = errors.New("nothing to copy")

// Copier copies textual data to the system clipboard.
type Copier interface {
	Copy(text string) error
}

// Service implements Copier using github.com/atotto/clipboard.
type Service struct{}

// NewService constructs a clipboard service.
func NewService() *Service {
	return &Service{}
}

// Copy writes text to the system clipboard.
func (service *Service) Copy(text string) error {
	return clipboard.WriteAll(text)
}

// CopyLines joins lines with newlines and hands them to the copier.
func CopyLines(copier Copier, lines []string) error {
	if len(lines) == 0 {
		return ErrNothingToCopy
	}
	return copier.Copy(strings.Join(lines, "\n") + "\n")
}

var _ Copier = (*Service)(nil)
