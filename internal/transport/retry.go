// internal/transport/retry.go
package transport

import "time"

// retry runs fn up to attempts times and stops at the first success.
// It sleeps backoff between attempts, never after the last one.
// Returns the number of attempts made and the last error.
func retry(attempts int, backoff time.Duration, sleep func(time.Duration), fn func(attempt int) error) (int, error) {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 1; i <= attempts; i++ {
		if err = fn(i); err == nil {
			return i, nil
		}
		if i < attempts && backoff > 0 {
			sleep(backoff)
		}
	}
	return attempts, err
}
