package dispatch

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCategory   = errors.New("unknown emergency category")
	ErrAttemptInProgress = errors.New("dispatch attempt already in progress")
	ErrNothingToRetry    = errors.New("no failed dispatch to retry")
	ErrCannotCancel      = errors.New("dispatch already committed, cannot cancel")
	ErrNoIncident        = errors.New("committer returned no incident")
)

// WriteError - удаленная запись инцидента не удалась
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("create incident: %v", e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
