// Package affinity pins the calling goroutine's OS thread to one CPU.
//
// Pinning the producer and the consumer to different cores keeps the
// scheduler from running both on one core, which would hide any memory
// ordering problem behind a single cache.
package affinity

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrUnsupported is returned on platforms without thread affinity support.
var ErrUnsupported = errors.New("affinity: not supported on " + runtime.GOOS)

// Pin locks the calling goroutine to its OS thread and binds that thread to
// cpu. The goroutine stays locked for the rest of its life; when it exits
// the runtime discards the thread instead of reusing a pinned one.
func Pin(cpu int) error {
	if cpu < 0 {
		return fmt.Errorf("affinity: invalid cpu %d", cpu)
	}

	runtime.LockOSThread()
	if err := setAffinity(cpu); err != nil {
		runtime.UnlockOSThread()
		return err
	}
	return nil
}
