package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScheduleTime(t *testing.T) {
	h, m, err := ParseScheduleTime("03:00")
	require.NoError(t, err)
	assert.Equal(t, 3, h)
	assert.Equal(t, 0, m)

	h, m, err = ParseScheduleTime("23:59")
	require.NoError(t, err)
	assert.Equal(t, 23, h)
	assert.Equal(t, 59, m)
}

func TestParseScheduleTime_Invalid(t *testing.T) {
	inputs := []string{
		"", "12", "12:34:56", "ab:cd",
		// Trailing or embedded garbage must not pass as a valid time.
		"12:34abc", "12h:34", " 12:34",
		"24:00", "12:60", "-1:30",
	}
	for _, s := range inputs {
		_, _, err := ParseScheduleTime(s)
		require.Error(t, err, "input %q", s)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr, "input %q", s)
	}
}

func TestBackupConfig_ValidateScheduleTime(t *testing.T) {
	cfg := BackupConfig{
		Enabled:      true,
		ScheduleTime: "03:00abc",
		Formats:      []BackupFormat{FormatZip},
	}
	assert.Error(t, cfg.Validate())

	cfg.ScheduleTime = "03:00"
	assert.NoError(t, cfg.Validate())
}
