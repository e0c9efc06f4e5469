package gbrt

// missLog is the bounded diagnostic log for dispatch misses: the runtime
// never errors when a translated function is missing for a reachable
// address, it falls back to the interpreter and records the first N
// occurrences for diagnostics.
type missLog struct {
	limit   int
	entries []MissEntry
}

// MissEntry records one address that fell back to the interpreter because
// no translated function was registered for it.
type MissEntry struct {
	Address uint16
	Count   uint64
}

func newMissLog(limit int) *missLog {
	return &missLog{limit: limit}
}

// record adds or bumps an entry for addr. Once the log is full, addresses
// that have never been seen before are silently dropped; previously
// recorded addresses keep incrementing.
func (m *missLog) record(addr uint16) {
	for i := range m.entries {
		if m.entries[i].Address == addr {
			m.entries[i].Count++
			return
		}
	}
	if len(m.entries) >= m.limit {
		return
	}
	m.entries = append(m.entries, MissEntry{Address: addr, Count: 1})
}

// MissEntries returns a snapshot of the recorded dispatch misses.
func (ctx *Context) MissEntries() []MissEntry {
	if ctx.missLog == nil {
		return nil
	}
	out := make([]MissEntry, len(ctx.missLog.entries))
	copy(out, ctx.missLog.entries)
	return out
}

// RecordMiss is called by the dispatcher when it falls back to the
// interpreter for addr.
func (ctx *Context) RecordMiss(addr uint16) {
	if ctx.missLog != nil {
		ctx.missLog.record(addr)
	}
}
