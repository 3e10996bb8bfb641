package offerdoc

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestRunLogBucketsBySeverity(t *testing.T) {
	log := newRunLog(zerolog.Nop())

	fin := log.Scope("financing")
	fin.Infof("chapter on %d pages", 2)
	fin.Warnf("no residual configured")
	log.Scope("charts").Errorf("renderer panicked")

	s := log.Summary()
	assert.NotEmpty(t, s.RunID)
	assert.Len(t, s.Info, 1)
	assert.Len(t, s.Warnings, 1)
	assert.Len(t, s.Errors, 1)
	assert.Equal(t, "financing", s.Warnings[0].Component)
	assert.Equal(t, "renderer panicked", s.Errors[0].Message)
}

func TestRunLogIDsAreUnique(t *testing.T) {
	a := newRunLog(zerolog.Nop())
	b := newRunLog(zerolog.Nop())
	assert.NotEqual(t, a.RunID(), b.RunID())
}

func TestLogSummaryString(t *testing.T) {
	log := newRunLog(zerolog.Nop())
	log.Scope("datasheets").Warnf("id inverter: not found, skipped")

	out := log.Summary().String()
	assert.Contains(t, out, "1 warnings")
	assert.Contains(t, out, "WARN  [datasheets] id inverter: not found, skipped")
	assert.Contains(t, out, log.RunID())
}
