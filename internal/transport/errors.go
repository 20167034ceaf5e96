package transport

import "errors"

// errClosed marks a clean peer disconnect, distinguishing it from a
// genuine scanner error in ReadLine's wrapped message.
var errClosed = errors.New("transport: closed")

// IsClosed reports whether err (from ReadLine) indicates a clean
// disconnect rather than a read failure.
func IsClosed(err error) bool {
	return errors.Is(err, errClosed)
}
