package nucleipq

import "io"

// ReaderAtCloser is satisfied by both local files and Google Storage objects,
// so masks and prediction images can be read from either.
type ReaderAtCloser interface {
	io.Reader
	io.ReaderAt
	io.Closer
}
