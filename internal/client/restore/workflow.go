// Package restore implements the client-side restore workflow: a guarded
// multi-step form over a single restore request, followed by a scripted
// progress playback.
package restore

import (
	"context"
	"time"

	"github.com/stocktrack/stockkeeper/internal/models"
)

// State is the workflow position.
type State int

const (
	// StateMode is the first form step: restore mode and backup password.
	StateMode State = iota
	// StateConfirm is the second form step: admin password and final go.
	StateConfirm
	// StateSubmitting means the restore request is in flight.
	StateSubmitting
	// StateProgress plays the scripted progress steps.
	StateProgress
	// StateCompleted is the terminal success state.
	StateCompleted
	// StateCancelled is the terminal state after a form-step cancel.
	StateCancelled
)

// Step is one entry of the scripted progress playback.
type Step struct {
	Progress int
	Label    string
}

// Script is the fixed progress sequence played after the server accepts the
// restore. It does not reflect real server-side progress; the restore work
// is already done once the request returns OK.
var Script = []Step{
	{Progress: 20, Label: "Validating backup"},
	{Progress: 40, Label: "Preparing restore"},
	{Progress: 60, Label: "Restoring data"},
	{Progress: 80, Label: "Rebuilding indexes"},
	{Progress: 100, Label: "Finalizing"},
}

// DefaultStepDelay is the pause between scripted progress steps, and again
// between the last step and completion.
const DefaultStepDelay = time.Second

// Restorer issues the single restore request. Implemented by api.Client.
type Restorer interface {
	Restore(ctx context.Context, backupID string, opts models.RestoreOptions) (*models.RestoreResult, error)
}

// Workflow drives one restore of one backup. It is not safe for concurrent
// use; a UI owns it from a single goroutine (or event loop).
type Workflow struct {
	backup   models.Backup
	restorer Restorer

	state State
	opts  models.RestoreOptions
	step  Step
	err   error

	// StepDelay paces the scripted progress; tests shorten it.
	StepDelay time.Duration
	// Sleep is the pause primitive, injectable for tests.
	Sleep func(time.Duration)
	// OnStep is called for every scripted progress step.
	OnStep func(Step)
	// OnComplete is called once, after the script and the final delay.
	OnComplete func()
}

// NewWorkflow starts a workflow in StateMode with default options
// (merge mode, empty passwords).
func NewWorkflow(backup models.Backup, restorer Restorer) *Workflow {
	return &Workflow{
		backup:    backup,
		restorer:  restorer,
		state:     StateMode,
		opts:      models.RestoreOptions{Mode: models.ModeMerge},
		StepDelay: DefaultStepDelay,
		Sleep:     time.Sleep,
	}
}

// State returns the current workflow position.
func (w *Workflow) State() State { return w.state }

// Options returns the options as entered so far.
func (w *Workflow) Options() models.RestoreOptions { return w.opts }

// Backup returns the backup being restored.
func (w *Workflow) Backup() models.Backup { return w.backup }

// CurrentStep returns the most recent scripted progress step.
func (w *Workflow) CurrentStep() Step { return w.step }

// Err returns the last submission error, cleared on the next attempt.
func (w *Workflow) Err() error { return w.err }

// NeedsPassword reports whether the backup password field applies; it is
// shown exactly when the backup is encrypted.
func (w *Workflow) NeedsPassword() bool { return w.backup.Encrypted }

// SetMode records the restore mode. Only meaningful in the form steps.
func (w *Workflow) SetMode(m models.RestoreMode) { w.opts.Mode = m }

// SetPassword records the backup password.
func (w *Workflow) SetPassword(p string) { w.opts.Password = p }

// SetAdminPassword records the admin password for the confirmation gate.
func (w *Workflow) SetAdminPassword(p string) { w.opts.AdminPassword = p }

// Next advances StateMode to StateConfirm. There is no validation at this
// edge beyond what the form itself collects.
func (w *Workflow) Next() {
	if w.state == StateMode {
		w.state = StateConfirm
	}
}

// Back demotes StateConfirm to StateMode.
func (w *Workflow) Back() {
	if w.state == StateConfirm {
		w.state = StateMode
	}
}

// Cancel aborts the workflow and resets all collected options. It is
// honored only in the form steps; once submission has begun it is a no-op,
// matching the guarded-but-not-abortable design of the operation.
func (w *Workflow) Cancel() {
	switch w.state {
	case StateMode, StateConfirm:
		w.opts = models.RestoreOptions{Mode: models.ModeMerge}
		w.err = nil
		w.state = StateCancelled
	}
}

// CanConfirm reports whether the confirm action is enabled: the workflow is
// at the confirmation step and an admin password has been entered.
func (w *Workflow) CanConfirm() bool {
	return w.state == StateConfirm && w.opts.AdminPassword != ""
}

// Confirm submits the restore request and, on success, plays the progress
// script to completion. It issues exactly one request per call. On failure
// the workflow returns to StateConfirm with Err set, and the user may
// retry; nothing is retried automatically.
func (w *Workflow) Confirm(ctx context.Context) (*models.RestoreResult, error) {
	if !w.CanConfirm() {
		return nil, &models.ValidationError{Field: "adminPassword", Message: "admin password is required"}
	}
	if err := w.opts.Validate(w.backup.Encrypted); err != nil {
		w.err = err
		return nil, err
	}

	w.err = nil
	w.state = StateSubmitting

	result, err := w.restorer.Restore(ctx, w.backup.ID, w.opts)
	if err != nil {
		w.err = err
		w.state = StateConfirm
		return nil, err
	}

	w.state = StateProgress
	for _, step := range Script {
		w.Sleep(w.StepDelay)
		w.step = step
		if w.OnStep != nil {
			w.OnStep(step)
		}
	}
	w.Sleep(w.StepDelay)

	w.state = StateCompleted
	if w.OnComplete != nil {
		w.OnComplete()
	}
	return result, nil
}
