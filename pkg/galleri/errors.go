package galleri

import (
	"errors"
	"fmt"
)

// ConfigError is returned for a missing, unreadable or malformed configuration.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// PathError is returned when a scanned file cannot be mapped into the output tree.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("path %q: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// CodecError wraps a decode, resample or encode failure.
type CodecError struct {
	Op   string
	Path string
	Err  error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *CodecError) Unwrap() error { return e.Err }

// TemplateError wraps a failure to parse or execute a page template.
type TemplateError struct {
	Name string
	Err  error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template %s: %v", e.Name, e.Err)
}

func (e *TemplateError) Unwrap() error { return e.Err }

// TranscodeError lists the photos that failed to convert during a build.
type TranscodeError struct {
	Failed []Result
	Total  int
}

func (e *TranscodeError) Error() string {
	if len(e.Failed) == 0 {
		return "transcode: no failures"
	}
	return fmt.Sprintf("%d of %d photos failed to convert, first: %v", len(e.Failed), e.Total, e.Failed[0].Err)
}

func (e *TranscodeError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, r := range e.Failed {
		errs = append(errs, r.Err)
	}
	return errs
}

var errNoRelPath = errors.New("no path below the input root")
