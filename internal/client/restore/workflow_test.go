package restore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocktrack/stockkeeper/internal/models"
)

// fakeRestorer records calls and returns a preconfigured result.
type fakeRestorer struct {
	calls    int
	backupID string
	opts     models.RestoreOptions

	result *models.RestoreResult
	err    error
}

func (f *fakeRestorer) Restore(ctx context.Context, backupID string, opts models.RestoreOptions) (*models.RestoreResult, error) {
	f.calls++
	f.backupID = backupID
	f.opts = opts
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// instantWorkflow returns a workflow whose sleeps record durations instead
// of pausing.
func instantWorkflow(backup models.Backup, r Restorer) (*Workflow, *[]time.Duration) {
	w := NewWorkflow(backup, r)
	var slept []time.Duration
	w.Sleep = func(d time.Duration) { slept = append(slept, d) }
	return w, &slept
}

func TestWorkflow_FormNavigation(t *testing.T) {
	w, _ := instantWorkflow(models.Backup{ID: "b1"}, &fakeRestorer{})

	assert.Equal(t, StateMode, w.State())
	w.Next()
	assert.Equal(t, StateConfirm, w.State())
	w.Back()
	assert.Equal(t, StateMode, w.State())
}

func TestWorkflow_ConfirmDisabledWithoutAdminPassword(t *testing.T) {
	for _, mode := range []models.RestoreMode{models.ModePreview, models.ModeMerge, models.ModeFull} {
		for _, password := range []string{"", "secret"} {
			r := &fakeRestorer{}
			w, _ := instantWorkflow(models.Backup{ID: "b1", Encrypted: password != ""}, r)
			w.SetMode(mode)
			w.SetPassword(password)
			w.Next()

			assert.False(t, w.CanConfirm(), "mode=%s password=%q", mode, password)
			_, err := w.Confirm(context.Background())
			require.Error(t, err)
			assert.Zero(t, r.calls, "no request may be sent without the admin password")
		}
	}
}

func TestWorkflow_SuccessPlaysScript(t *testing.T) {
	r := &fakeRestorer{result: &models.RestoreResult{Restored: 7}}
	w, slept := instantWorkflow(models.Backup{ID: "b1"}, r)
	w.StepDelay = time.Second

	var steps []Step
	completed := false
	w.OnStep = func(s Step) { steps = append(steps, s) }
	w.OnComplete = func() { completed = true }

	w.SetMode(models.ModeFull)
	w.Next()
	w.SetAdminPassword("hunter2")
	require.True(t, w.CanConfirm())

	result, err := w.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, result.Restored)
	assert.Equal(t, StateCompleted, w.State())
	assert.True(t, completed)

	// Exactly one request per traversal.
	assert.Equal(t, 1, r.calls)
	assert.Equal(t, "b1", r.backupID)
	assert.Equal(t, models.ModeFull, r.opts.Mode)

	// The script is exactly 20/40/60/80/100 with the fixed labels.
	require.Len(t, steps, 5)
	wantProgress := []int{20, 40, 60, 80, 100}
	wantLabels := []string{"Validating backup", "Preparing restore", "Restoring data", "Rebuilding indexes", "Finalizing"}
	for i, s := range steps {
		assert.Equal(t, wantProgress[i], s.Progress)
		assert.Equal(t, wantLabels[i], s.Label)
	}

	// One pause per step plus the final completion delay, all one second.
	require.Len(t, *slept, 6)
	for _, d := range *slept {
		assert.Equal(t, time.Second, d)
	}
}

func TestWorkflow_FailureReturnsToConfirm(t *testing.T) {
	r := &fakeRestorer{err: errors.New("restore failed: checksum mismatch")}
	w, _ := instantWorkflow(models.Backup{ID: "b1"}, r)

	w.Next()
	w.SetAdminPassword("hunter2")

	_, err := w.Confirm(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateConfirm, w.State())
	assert.EqualError(t, w.Err(), "restore failed: checksum mismatch")

	// The user may retry; the retry is a fresh single request.
	r.err = nil
	r.result = &models.RestoreResult{}
	_, err = w.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, r.calls)
	assert.NoError(t, w.Err())
}

func TestWorkflow_EncryptedBackupRequiresPassword(t *testing.T) {
	r := &fakeRestorer{result: &models.RestoreResult{}}
	w, _ := instantWorkflow(models.Backup{ID: "b1", Encrypted: true}, r)
	assert.True(t, w.NeedsPassword())

	w.Next()
	w.SetAdminPassword("hunter2")

	_, err := w.Confirm(context.Background())
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, r.calls)

	w.SetPassword("backup-pw")
	_, err = w.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "backup-pw", r.opts.Password)
}

func TestWorkflow_PlainBackupHidesPassword(t *testing.T) {
	w, _ := instantWorkflow(models.Backup{ID: "b1", Encrypted: false}, &fakeRestorer{})
	assert.False(t, w.NeedsPassword())
}

func TestWorkflow_CancelResetsOptions(t *testing.T) {
	w, _ := instantWorkflow(models.Backup{ID: "b1"}, &fakeRestorer{})

	w.SetMode(models.ModeFull)
	w.SetPassword("pw")
	w.Next()
	w.SetAdminPassword("hunter2")
	w.Cancel()

	assert.Equal(t, StateCancelled, w.State())
	assert.Equal(t, models.RestoreOptions{Mode: models.ModeMerge}, w.Options())
}

func TestWorkflow_CancelIgnoredAfterSubmission(t *testing.T) {
	r := &fakeRestorer{result: &models.RestoreResult{}}
	w, _ := instantWorkflow(models.Backup{ID: "b1"}, r)

	// Cancel from within the progress playback must be a no-op.
	w.OnStep = func(Step) { w.Cancel() }

	w.Next()
	w.SetAdminPassword("hunter2")
	_, err := w.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, w.State())
}
