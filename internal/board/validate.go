package board

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dragonbytelabs/taskboard/internal/config"
	"github.com/dragonbytelabs/taskboard/internal/model"
)

var (
	ErrTitleRequired   = errors.New("title is required")
	ErrTitleLength     = errors.New("title length out of bounds")
	ErrDescriptionLong = errors.New("description too long")
	ErrDueDateFormat   = errors.New("due date must be YYYY-MM-DD")
	ErrDueDatePast     = errors.New("due date cannot be in the past")
	ErrTooManyTags     = errors.New("too many tags")
	ErrTagTooLong      = errors.New("tag too long")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidColumn   = errors.New("invalid column")
	ErrTaskNotFound    = errors.New("task not found")
)

const dueDateLayout = "2006-01-02"

// Validator checks draft input against the configured limits before the
// manager accepts a mutation.
type Validator struct {
	limits config.Limits
}

func NewValidator(limits config.Limits) *Validator {
	return &Validator{limits: limits}
}

// ValidateTitle trims and checks the title, returning the trimmed form.
func (v *Validator) ValidateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrTitleRequired
	}
	n := len([]rune(title))
	if n < v.limits.MinTitleLen || n > v.limits.MaxTitleLen {
		return "", fmt.Errorf("%w: must be %d-%d characters", ErrTitleLength, v.limits.MinTitleLen, v.limits.MaxTitleLen)
	}
	return title, nil
}

func (v *Validator) ValidateDescription(desc string) error {
	if len([]rune(desc)) > v.limits.MaxDescription {
		return fmt.Errorf("%w: max %d characters", ErrDescriptionLong, v.limits.MaxDescription)
	}
	return nil
}

// ValidateDueDate checks the YYYY-MM-DD form and rejects dates before the
// current day. Empty means no due date.
func (v *Validator) ValidateDueDate(due string, now time.Time) error {
	if due == "" {
		return nil
	}
	d, err := time.Parse(dueDateLayout, due)
	if err != nil {
		return ErrDueDateFormat
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if d.Before(today) {
		return ErrDueDatePast
	}
	return nil
}

func (v *Validator) ValidateTags(tags []string) error {
	if len(tags) > v.limits.MaxTags {
		return fmt.Errorf("%w: max %d", ErrTooManyTags, v.limits.MaxTags)
	}
	for _, tag := range tags {
		if len([]rune(tag)) > v.limits.MaxTagLen {
			return fmt.Errorf("%w: %q exceeds %d characters", ErrTagTooLong, tag, v.limits.MaxTagLen)
		}
	}
	return nil
}

// normalizeTags trims entries and drops empties, preserving order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// validateMerged runs every record rule against a fully-merged task, so a
// patch can never leave a partially-invalid record in the collection.
// checkDue carries a due date newly introduced by the patch; an empty value
// skips the not-in-the-past check for dates already on the record.
func (v *Validator) validateMerged(t model.Task, checkDue string, now time.Time) error {
	if _, err := v.ValidateTitle(t.Title); err != nil {
		return err
	}
	if err := v.ValidateDescription(t.Description); err != nil {
		return err
	}
	if checkDue != "" {
		if err := v.ValidateDueDate(checkDue, now); err != nil {
			return err
		}
	} else if t.DueDate != nil {
		if _, err := time.Parse(dueDateLayout, *t.DueDate); err != nil {
			return ErrDueDateFormat
		}
	}
	if err := v.ValidateTags(t.Tags); err != nil {
		return err
	}
	if !t.Priority.Valid() {
		return ErrInvalidPriority
	}
	if !t.Column.Valid() {
		return ErrInvalidColumn
	}
	return nil
}
