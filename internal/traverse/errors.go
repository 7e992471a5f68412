package traverse

import (
	"errors"
	"fmt"
)

// Fatal traversal errors. They mean the site template changed or the engine
// and the site disagree about the graph, and abort the current page.
var (
	ErrUnrecognizedLabel  = errors.New("unrecognized label")
	ErrNoDetailLink       = errors.New("no detail link found")
	ErrUnsupportedRuntime = errors.New("unsupported runtime")
	ErrMalformedPage      = errors.New("malformed page")
	ErrMissingTemplate    = errors.New("missing request template")
)

// TemplateError reports a request template absent from configuration.
type TemplateError struct {
	Name string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("%v: %s", ErrMissingTemplate, e.Name)
}

func (e *TemplateError) Unwrap() error { return ErrMissingTemplate }

func UnrecognizedLabel(site, label string) error {
	return fmt.Errorf("%s: %w: %q", site, ErrUnrecognizedLabel, label)
}

func UnsupportedRuntime(site string, rt Runtime) error {
	return fmt.Errorf("%s: %w: %s", site, ErrUnsupportedRuntime, rt)
}

func NoDetailLink(site, label string) error {
	return fmt.Errorf("%s: %w in %q page", site, ErrNoDetailLink, label)
}
