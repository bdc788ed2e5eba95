package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsEligible(t *testing.T) {
	checkpoint := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	before := checkpoint.Add(-time.Hour)
	after := checkpoint.Add(time.Second)

	tests := []struct {
		name       string
		times      FileTimes
		checkpoint time.Time
		exp        bool
	}{
		{
			name:       "ModifiedAfter",
			times:      FileTimes{ModifiedAt: after, CreatedAt: before},
			checkpoint: checkpoint,
			exp:        true,
		},
		{
			name:       "CreatedAfter",
			times:      FileTimes{ModifiedAt: before, CreatedAt: after},
			checkpoint: checkpoint,
			exp:        true,
		},
		{
			name:       "BothBefore",
			times:      FileTimes{ModifiedAt: before, CreatedAt: before},
			checkpoint: checkpoint,
			exp:        false,
		},
		{
			name:       "EqualIsNotAfter",
			times:      FileTimes{ModifiedAt: checkpoint, CreatedAt: checkpoint},
			checkpoint: checkpoint,
			exp:        false,
		},
		{
			name:       "UnknownBirthTime",
			times:      FileTimes{ModifiedAt: before},
			checkpoint: checkpoint,
			exp:        false,
		},
		{
			name:  "NeverSynced",
			times: FileTimes{ModifiedAt: before},
			exp:   true,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.exp, IsEligible(test.times, test.checkpoint))
		})
	}
}
