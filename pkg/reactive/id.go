package reactive

import "sync/atomic"

var idCounter atomic.Uint64

func nextID() uint64 {
	return idCounter.Add(1)
}
