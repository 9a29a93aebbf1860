package reactive

// Batch runs fn and defers subscriber notifications until it returns.
// Nested batches flush once, when the outermost batch completes.
// Subscribers notified several times inside the batch are notified once.
func Batch(fn func()) {
	ctx := getTrackingContext()
	ctx.batchDepth++
	defer func() {
		ctx.batchDepth--
		if ctx.batchDepth > 0 {
			return
		}
		pending := ctx.pendingUpdates
		ctx.pendingUpdates = nil

		seen := make(map[uint64]bool, len(pending))
		for _, s := range pending {
			if seen[s.ID()] {
				continue
			}
			seen[s.ID()] = true
			s.MarkDirty()
		}
	}()
	fn()
}
