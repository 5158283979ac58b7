package usecase

import "errors"

var (
	// ErrBusy means another upload or analysis is already running for the owner.
	ErrBusy = errors.New("usecase: another request is in progress")
	// ErrNoImage means the owner has no usable current image.
	ErrNoImage = errors.New("usecase: no current image")
	// ErrUploadFailed wraps storage failures during upload.
	ErrUploadFailed = errors.New("usecase: image upload failed")
	// ErrAnalysisFailed wraps transport and status failures of the face API.
	ErrAnalysisFailed = errors.New("usecase: face analysis failed")
	// ErrResultNotFound means no analysis with that ID exists for the owner.
	ErrResultNotFound = errors.New("usecase: result not found")
)
