// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validator validates configuration against schema rules.
type Validator struct{}

// NewValidator creates a new config validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidationError contains multiple validation failures.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single field validation error.
type FieldError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	var msgs []string
	for _, fe := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return strings.Join(msgs, "; ")
}

// IsEmpty returns true if there are no validation errors.
func (e *ValidationError) IsEmpty() bool {
	return len(e.Errors) == 0
}

// Add adds a field error.
func (e *ValidationError) Add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// Validate checks configuration validity.
func (v *Validator) Validate(cfg *Config) error {
	errs := &ValidationError{}

	v.validateScripts(cfg, errs)
	v.validateWatch(cfg, errs)
	v.validateControl(cfg, errs)
	v.validateLogging(cfg, errs)
	v.validateUI(cfg, errs)
	v.validateDurations(cfg, errs)

	if errs.IsEmpty() {
		return nil
	}
	return errs
}

func (v *Validator) validateScripts(cfg *Config, errs *ValidationError) {
	if cfg.Scripts.Dir == "" {
		errs.Add("scripts.dir", "is required")
	}
	ext := cfg.Scripts.Extension
	switch {
	case ext == "":
		errs.Add("scripts.extension", "is required")
	case !strings.HasPrefix(ext, "."):
		errs.Add("scripts.extension", "must start with '.'")
	case strings.ContainsAny(ext[1:], `./\`):
		errs.Add("scripts.extension", "must be a single extension")
	}
}

func (v *Validator) validateWatch(cfg *Config, errs *ValidationError) {
	if cfg.Watch.BufferSize < 0 {
		errs.Add("watch.buffer_size", "must not be negative")
	}
	if cfg.Session.History < 0 {
		errs.Add("session.history", "must not be negative")
	}
}

func (v *Validator) validateControl(cfg *Config, errs *ValidationError) {
	if cfg.Control.Port < 0 || cfg.Control.Port > 65535 {
		errs.Add("control.port", "must be between 0 and 65535")
	}
}

func (v *Validator) validateLogging(cfg *Config, errs *ValidationError) {
	if cfg.Logging.Level == "" {
		return
	}
	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs.Add("logging.level", fmt.Sprintf("invalid level '%s'", cfg.Logging.Level))
	}
}

func (v *Validator) validateUI(cfg *Config, errs *ValidationError) {
	switch cfg.UI.ConfirmStop {
	case "", ConfirmPrompt, ConfirmAlways, ConfirmNever:
	default:
		errs.Add("ui.confirm_stop", fmt.Sprintf("invalid policy '%s' (want prompt, always or never)", cfg.UI.ConfirmStop))
	}
}

func (v *Validator) validateDurations(cfg *Config, errs *ValidationError) {
	check := func(field, value string) {
		if value == "" || value == "0" {
			return
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			errs.Add(field, fmt.Sprintf("invalid duration '%s'", value))
			return
		}
		if d < 0 {
			errs.Add(field, "must not be negative")
		}
	}
	check("watch.debounce", cfg.Watch.Debounce)
	check("events.history.max_age", cfg.Events.History.MaxAge)
}
