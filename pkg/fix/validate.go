package fix

import (
	"cmp"
	"fmt"
	"slices"
)

// ValidationError describes an edit whose range does not fit the content.
type ValidationError struct {
	Edit    TextEdit
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid edit [%d:%d]: %s", e.Edit.StartOffset, e.Edit.EndOffset, e.Message)
}

// ConflictError describes two overlapping edits.
type ConflictError struct {
	First  TextEdit
	Second TextEdit
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("overlapping edits: [%d:%d] and [%d:%d]",
		e.First.StartOffset, e.First.EndOffset,
		e.Second.StartOffset, e.Second.EndOffset)
}

// ValidateEdits returns the first edit whose range does not fit in
// contentLen bytes.
func ValidateEdits(edits []TextEdit, contentLen int) error {
	for _, edit := range edits {
		switch {
		case edit.StartOffset < 0:
			return &ValidationError{Edit: edit, Message: "start offset is negative"}
		case edit.EndOffset < edit.StartOffset:
			return &ValidationError{Edit: edit, Message: "end offset is before start offset"}
		case edit.EndOffset > contentLen:
			return &ValidationError{
				Edit:    edit,
				Message: fmt.Sprintf("end offset %d exceeds content length %d", edit.EndOffset, contentLen),
			}
		}
	}
	return nil
}

// SortEdits orders edits by start, then end, then replacement text.
func SortEdits(edits []TextEdit) {
	slices.SortStableFunc(edits, func(a, b TextEdit) int {
		return cmp.Or(
			cmp.Compare(a.StartOffset, b.StartOffset),
			cmp.Compare(a.EndOffset, b.EndOffset),
			cmp.Compare(a.NewText, b.NewText),
		)
	})
}

// DetectConflicts returns the first overlap in sorted edits.
func DetectConflicts(edits []TextEdit) error {
	for i := 1; i < len(edits); i++ {
		if edits[i].StartOffset < edits[i-1].EndOffset {
			return &ConflictError{First: edits[i-1], Second: edits[i]}
		}
	}
	return nil
}

// Prepare validates and sorts edits, then resolves overlaps: identical
// edits collapse into one, and an edit overlapping an accepted one is
// skipped. Earlier edits win, so a later pass can retry skipped ones
// against the updated content. Only invalid ranges are errors.
func Prepare(edits []TextEdit, contentLen int) (accepted, skipped []TextEdit, err error) {
	if len(edits) == 0 {
		return nil, nil, nil
	}
	if err := ValidateEdits(edits, contentLen); err != nil {
		return nil, nil, err
	}

	sorted := slices.Clone(edits)
	SortEdits(sorted)

	accepted = make([]TextEdit, 0, len(sorted))
	for _, edit := range sorted {
		if len(accepted) == 0 {
			accepted = append(accepted, edit)
			continue
		}
		last := accepted[len(accepted)-1]
		switch {
		case sameChange(last, edit):
			// duplicate
		case edit.StartOffset >= last.EndOffset && !bothInsertAt(last, edit):
			accepted = append(accepted, edit)
		default:
			skipped = append(skipped, edit)
		}
	}
	return accepted, skipped, nil
}

// PrepareStrict is Prepare without conflict resolution: any overlap is an
// error.
func PrepareStrict(edits []TextEdit, contentLen int) ([]TextEdit, error) {
	if err := ValidateEdits(edits, contentLen); err != nil {
		return nil, err
	}
	sorted := slices.Clone(edits)
	SortEdits(sorted)
	if err := DetectConflicts(sorted); err != nil {
		return nil, err
	}
	return sorted, nil
}

func sameChange(a, b TextEdit) bool {
	return a.StartOffset == b.StartOffset && a.EndOffset == b.EndOffset && a.NewText == b.NewText
}

// Two different insertions at one offset have no defined order.
func bothInsertAt(a, b TextEdit) bool {
	return a.StartOffset == a.EndOffset && b.StartOffset == b.EndOffset && a.StartOffset == b.StartOffset
}
