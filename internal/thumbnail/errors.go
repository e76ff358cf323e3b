package thumbnail

import "errors"

var (
	// ErrDecode means the bytes are not a paged document.
	ErrDecode = errors.New("thumbnail: document could not be decoded")
	ErrRender = errors.New("thumbnail: page rendering failed")
	// ErrAborted means the caller cancelled mid-render. Callers treat it as benign.
	ErrAborted = errors.New("thumbnail: rendering aborted")
)
