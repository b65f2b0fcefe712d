// Package schema validates serialized record documents against their XSD
// before anything reaches disk. Schemas are compiled once per kind and
// shared read-only across sessions.
package schema

import (
	"fmt"
	"sync"

	xsdvalidate "github.com/terminalstatic/go-xsd-validate"

	"nymedit/internal/record"
)

var (
	initOnce sync.Once
	initErr  error
)

// Validator holds compiled schema handlers keyed by record kind. Kinds with
// no configured schema (bibliography) pass validation unconditionally.
type Validator struct {
	handlers map[record.Kind]*xsdvalidate.XsdHandler
}

// NewValidator compiles the schema for each kind in paths. Kinds mapped to
// an empty path are skipped.
func NewValidator(paths map[record.Kind]string) (*Validator, error) {
	initOnce.Do(func() {
		initErr = xsdvalidate.Init()
	})
	if initErr != nil {
		return nil, fmt.Errorf("initializing schema library: %w", initErr)
	}

	v := &Validator{handlers: make(map[record.Kind]*xsdvalidate.XsdHandler)}
	for kind, path := range paths {
		if path == "" {
			continue
		}
		h, err := xsdvalidate.NewXsdHandlerUrl(path, xsdvalidate.ParsErrDefault)
		if err != nil {
			v.Free()
			return nil, fmt.Errorf("compiling schema for %s from %s: %w", kind, path, err)
		}
		v.handlers[kind] = h
	}
	return v, nil
}

// Validate checks a serialized document against the schema for its kind.
// Failure surfaces as record.ViolationError carrying the validator's
// complaint.
func (v *Validator) Validate(kind record.Kind, doc []byte) error {
	h, ok := v.handlers[kind]
	if !ok {
		return nil
	}
	if err := h.ValidateMem(doc, xsdvalidate.ValidErrDefault); err != nil {
		return &record.ViolationError{Detail: err.Error()}
	}
	return nil
}

// Free releases the compiled schema handlers.
func (v *Validator) Free() {
	for _, h := range v.handlers {
		h.Free()
	}
	v.handlers = nil
}
