package edit

import "errors"

// Failure kinds for edit and load operations. Handlers match these with
// errors.Is and map them to HTTP statuses; callers may retry after a refusal
// because refused operations never partially apply.
var (
	// ErrInvariantViolation means the operation would have produced an
	// invalid project (slice below the minimum duration, uncovered layout
	// range, unlinked tracks) and was refused whole.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrNotFound means the referenced scene, slice or layout does not
	// exist in the snapshot the caller is editing.
	ErrNotFound = errors.New("not found")

	// ErrOutOfRange means a time argument falls outside the editable range.
	ErrOutOfRange = errors.New("out of range")

	// ErrBundleInvalid means a recording bundle failed validation at load.
	ErrBundleInvalid = errors.New("invalid bundle")

	// ErrCancelled means a background task observed its cancellation flag.
	ErrCancelled = errors.New("cancelled")
)
