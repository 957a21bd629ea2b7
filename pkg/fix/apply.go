package fix

import "bytes"

// ApplyEdits applies edits returned by Prepare to content and returns the
// new content. Edits must be sorted and must not overlap.
func ApplyEdits(content []byte, edits []TextEdit) []byte {
	if len(edits) == 0 {
		return content
	}

	size := len(content)
	for _, e := range edits {
		size += len(e.NewText) - (e.EndOffset - e.StartOffset)
	}

	var out bytes.Buffer
	out.Grow(size)

	cursor := 0
	for _, e := range edits {
		out.Write(content[cursor:e.StartOffset])
		out.WriteString(e.NewText)
		cursor = e.EndOffset
	}
	out.Write(content[cursor:])

	return out.Bytes()
}

// Apply prepares edits against content and applies the accepted ones.
// Edits that conflict with an earlier one are returned unapplied.
func Apply(content []byte, edits []TextEdit) ([]byte, []TextEdit, error) {
	accepted, skipped, err := Prepare(edits, len(content))
	if err != nil {
		return nil, nil, err
	}
	return ApplyEdits(content, accepted), skipped, nil
}
