package fix_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gramlint/pkg/fix"
)

func edit(start, end int, text string) fix.TextEdit {
	return fix.TextEdit{StartOffset: start, EndOffset: end, NewText: text}
}

func TestValidateEdits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		edits   []fix.TextEdit
		wantErr string
	}{
		{"valid", []fix.TextEdit{edit(0, 3, "x"), edit(10, 10, "y")}, ""},
		{"negative start", []fix.TextEdit{edit(-1, 2, "")}, "start offset is negative"},
		{"inverted", []fix.TextEdit{edit(5, 2, "")}, "end offset is before start offset"},
		{"past end", []fix.TextEdit{edit(2, 11, "")}, "end offset 11 exceeds content length 10"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			err := fix.ValidateEdits(testCase.edits, 10)
			if testCase.wantErr == "" {
				require.NoError(t, err)
				return
			}
			var verr *fix.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Error(), testCase.wantErr)
		})
	}
}

func TestPrepare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		edits        []fix.TextEdit
		wantAccepted []fix.TextEdit
		wantSkipped  []fix.TextEdit
	}{
		{
			name:         "sorts",
			edits:        []fix.TextEdit{edit(8, 10, "a"), edit(0, 4, "This")},
			wantAccepted: []fix.TextEdit{edit(0, 4, "This"), edit(8, 10, "a")},
		},
		{
			name:         "duplicates collapse",
			edits:        []fix.TextEdit{edit(8, 10, "a"), edit(8, 10, "a")},
			wantAccepted: []fix.TextEdit{edit(8, 10, "a")},
		},
		{
			name:         "overlap skips later edit",
			edits:        []fix.TextEdit{edit(5, 10, "x"), edit(8, 12, "y")},
			wantAccepted: []fix.TextEdit{edit(5, 10, "x")},
			wantSkipped:  []fix.TextEdit{edit(8, 12, "y")},
		},
		{
			name:         "adjacent edits both apply",
			edits:        []fix.TextEdit{edit(0, 4, "a"), edit(4, 6, "b")},
			wantAccepted: []fix.TextEdit{edit(0, 4, "a"), edit(4, 6, "b")},
		},
		{
			name:         "two inserts at one offset",
			edits:        []fix.TextEdit{edit(3, 3, ","), edit(3, 3, ";")},
			wantAccepted: []fix.TextEdit{edit(3, 3, ",")},
			wantSkipped:  []fix.TextEdit{edit(3, 3, ";")},
		},
		{
			name:         "insert before replacement",
			edits:        []fix.TextEdit{edit(3, 5, "x"), edit(3, 3, ",")},
			wantAccepted: []fix.TextEdit{edit(3, 3, ","), edit(3, 5, "x")},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			accepted, skipped, err := fix.Prepare(testCase.edits, 20)
			require.NoError(t, err)
			assert.Equal(t, testCase.wantAccepted, accepted)
			assert.Equal(t, testCase.wantSkipped, skipped)
		})
	}
}

func TestPrepareEmpty(t *testing.T) {
	t.Parallel()

	accepted, skipped, err := fix.Prepare(nil, 0)
	require.NoError(t, err)
	assert.Nil(t, accepted)
	assert.Nil(t, skipped)
}

func TestPrepareStrict(t *testing.T) {
	t.Parallel()

	sorted, err := fix.PrepareStrict([]fix.TextEdit{edit(6, 8, "b"), edit(0, 2, "a")}, 10)
	require.NoError(t, err)
	assert.Equal(t, []fix.TextEdit{edit(0, 2, "a"), edit(6, 8, "b")}, sorted)

	_, err = fix.PrepareStrict([]fix.TextEdit{edit(0, 5, "a"), edit(3, 8, "b")}, 10)
	var conflict *fix.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "overlapping edits: [0:5] and [3:8]", conflict.Error())
}
