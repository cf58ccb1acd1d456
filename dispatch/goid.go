package dispatch

import "runtime"

// goid returns the id of the calling goroutine, parsed from the first
// line of the stack trace ("goroutine N [running]:"). There is no public
// runtime API for this; the format has been stable across Go releases.
func goid() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	// Skip "goroutine ".
	const prefix = len("goroutine ")
	var id uint64
	for i := prefix; i < n; i++ {
		c := buf[i]
		if c < '0' || c > '9' {
			break
		}
		id = id*10 + uint64(c-'0')
	}
	return id
}
