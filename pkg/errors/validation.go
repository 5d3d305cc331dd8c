package errors

import "unicode"

// ValidateID validates an entity id for safety and correctness. IDs travel
// in URLs, cache keys, and handle identifiers, so the rules are
// intentionally conservative:
//   - No empty ids
//   - No control characters or whitespace
//   - Maximum length of 128 characters
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "id too long (max 128 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "id contains invalid characters")
		}
	}
	return nil
}

// ValidateOrderedIDs validates an ordered id list for a reorder commit.
// The list must be non-empty, every id must be valid, and ids must be
// unique - a permutation cannot contain duplicates.
func ValidateOrderedIDs(ids []string) error {
	if len(ids) == 0 {
		return New(ErrCodeInvalidOrder, "ordered id list cannot be empty")
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if err := ValidateID(id); err != nil {
			return err
		}
		if seen[id] {
			return New(ErrCodeInvalidOrder, "duplicate id in order: %s", id)
		}
		seen[id] = true
	}
	return nil
}
