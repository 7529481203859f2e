// Package validate implements MessageValidator (spec §4.6 step 1): the
// first gate every write-handler runs its request through, rejecting
// malformed lengths, enums, and UUID shapes with a field-tagged
// VALIDATION_ERROR before any repository call is made.
package validate

import (
	"github.com/google/uuid"

	"github.com/boardwire/boardwire/internal/config"
	"github.com/boardwire/boardwire/internal/types"
	"github.com/boardwire/boardwire/internal/wireerr"
)

// Validator checks request fields against configured length limits and
// enum/UUID shape rules.
type Validator struct {
	cfg config.ValidateConfig
}

// New builds a Validator from cfg.
func New(cfg config.ValidateConfig) *Validator {
	return &Validator{cfg: cfg}
}

// UUID rejects an empty string or one that isn't a well-formed UUID.
func (v *Validator) UUID(field, value string) *wireerr.Error {
	if value == "" {
		return wireerr.Validation(field, "must not be empty")
	}
	if _, err := uuid.Parse(value); err != nil {
		return wireerr.Validation(field, "must be a valid UUID")
	}
	return nil
}

// OptionalUUID rejects a string that is non-empty but not a well-formed UUID.
func (v *Validator) OptionalUUID(field, value string) *wireerr.Error {
	if value == "" {
		return nil
	}
	return v.UUID(field, value)
}

// Title validates a title field against MaxTitleLength.
func (v *Validator) Title(field, value string) *wireerr.Error {
	if value == "" {
		return wireerr.Validation(field, "must not be empty")
	}
	if len(value) > v.cfg.MaxTitleLength {
		return wireerr.Validation(field, "exceeds maximum length")
	}
	return nil
}

// Description validates an optional description field against
// MaxDescriptionLength.
func (v *Validator) Description(field, value string) *wireerr.Error {
	if len(value) > v.cfg.MaxDescriptionLength {
		return wireerr.Validation(field, "exceeds maximum length")
	}
	return nil
}

// Comment validates a comment's content against MaxCommentLength.
func (v *Validator) Comment(field, value string) *wireerr.Error {
	if value == "" {
		return wireerr.Validation(field, "must not be empty")
	}
	if len(value) > v.cfg.MaxCommentLength {
		return wireerr.Validation(field, "exceeds maximum length")
	}
	return nil
}

// ProjectKey validates a project key: non-empty, uppercase, <=10 chars.
func (v *Validator) ProjectKey(field, value string) *wireerr.Error {
	if value == "" || len(value) > 10 {
		return wireerr.Validation(field, "must be 1-10 characters")
	}
	for _, r := range value {
		if r < 'A' || r > 'Z' {
			return wireerr.Validation(field, "must be uppercase letters only")
		}
	}
	return nil
}

// ItemType validates an item_type enum value.
func (v *Validator) ItemType(field, value string) *wireerr.Error {
	if !types.ItemType(value).Valid() {
		return wireerr.Validation(field, "not a recognised item type")
	}
	return nil
}

// ItemStatus validates a work-item status enum value.
func (v *Validator) ItemStatus(field, value string) *wireerr.Error {
	if !types.ItemStatus(value).Valid() {
		return wireerr.Validation(field, "not a recognised status")
	}
	return nil
}

// Priority validates a priority enum value.
func (v *Validator) Priority(field, value string) *wireerr.Error {
	if !types.Priority(value).Valid() {
		return wireerr.Validation(field, "not a recognised priority")
	}
	return nil
}

// StoryPoints validates the optional story_points range 0..=100.
func (v *Validator) StoryPoints(field string, value *int64) *wireerr.Error {
	if value == nil {
		return nil
	}
	if *value < 0 || *value > 100 {
		return wireerr.Validation(field, "must be between 0 and 100")
	}
	return nil
}

// SprintStatus validates a sprint status enum value.
func (v *Validator) SprintStatus(field, value string) *wireerr.Error {
	if !types.SprintStatus(value).Valid() {
		return wireerr.Validation(field, "not a recognised status")
	}
	return nil
}

// SprintWindow validates that endAt is not before startAt.
func (v *Validator) SprintWindow(startAt, endAt int64) *wireerr.Error {
	if endAt < startAt {
		return wireerr.Validation("end_at", "must not precede start_at")
	}
	return nil
}

// DependencyType validates a dependency type enum value.
func (v *Validator) DependencyType(field, value string) *wireerr.Error {
	if !types.DependencyType(value).Valid() {
		return wireerr.Validation(field, "not a recognised dependency type")
	}
	return nil
}
