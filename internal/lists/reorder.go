package lists

import "errors"

var (
	errDuplicateIDs  = errors.New("Item ids must not contain duplicates.")
	errIncompleteIDs = errors.New("Item ids must include every item in the list exactly once.")
)

// validateReorder checks that input is a permutation of current: no
// duplicates, no missing ids, no foreign ids. It performs no writes; the
// caller only reorders after it passes.
func validateReorder(input, current []string) error {
	seen := make(map[string]struct{}, len(input))
	for _, id := range input {
		if _, dup := seen[id]; dup {
			return errDuplicateIDs
		}
		seen[id] = struct{}{}
	}

	if len(input) != len(current) {
		return errIncompleteIDs
	}
	for _, id := range current {
		if _, ok := seen[id]; !ok {
			return errIncompleteIDs
		}
	}
	return nil
}
