package realtime

// processTick flushes one tick's worth of batched events into the
// interpreter in deterministic order. The interpreter runs each event to
// a complete macrostep (including its own eventless closure) via Send, so
// no separate microstep-draining phase is needed here.
func (rt *RealtimeRuntime) processTick() {
	events := rt.collectEvents()
	sortEvents(events)

	for _, e := range events {
		rt.it.Send(e.Event)
	}
}

// collectEvents atomically retrieves and clears the pending event batch.
func (rt *RealtimeRuntime) collectEvents() []EventWithMeta {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()

	events := rt.eventBatch
	rt.eventBatch = make([]EventWithMeta, 0, cap(rt.eventBatch))
	return events
}
