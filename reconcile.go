package precisestamp

import "time"

// naiveOf turn a raw match into a naive Timestamp the way a kind-only
// calendar type does: an explicit offset can't be stored, so the instant is
// converted to host local time and tagged Local. Non-zero offsets keep this
// conversion after reconciliation; only zero offsets are corrected to UTC.
func naiveOf(m match) Timestamp {
	switch m.tag {
	case TagUTC:
		return Timestamp{Time: m.fields.In(time.UTC), Kind: UTC}
	case TagOffset:
		instant := m.fields.In(LocationFromOffset(m.offsetSec))
		return Timestamp{Time: instant.In(time.Local), Kind: Local}
	case TagLocal:
		return Timestamp{Time: m.fields.In(time.Local), Kind: Local}
	}

	return Timestamp{Time: m.fields.In(time.UTC), Kind: Unspecified}
}

// reconcileNaive correct a value whose text ended in a zero UTC indicator (Z,
// +00, -00:00 ...) but that did not come out tagged UTC. A local-converted
// value is converted back to UTC; an untagged one is tagged UTC with its
// fields unchanged. Ticks are preserved either way.
func reconcileNaive(ts Timestamp, signal ZoneSignal) Timestamp {
	if !signal.ZeroUTC() || ts.Kind == UTC {
		return ts
	}
	if ts.Kind == Local {
		return Timestamp{Time: ts.Time.UTC(), Kind: UTC}
	}

	return Timestamp{Time: ts.Fields().In(time.UTC), Kind: UTC}
}

// reconcileOffset bind the raw calendar value to an offset. An offset found
// in the text wins, then one the template read, then the caller's default.
// The host's local zone is never consulted.
func reconcileOffset(m match, signal ZoneSignal, defaultOffset time.Duration) OffsetTimestamp {
	offsetSec := int(defaultOffset / time.Second)

	switch {
	case signal.Found:
		offsetSec = signal.OffsetSec
	case m.tag == TagOffset:
		offsetSec = m.offsetSec
	case m.tag == TagUTC:
		offsetSec = 0
	}

	return OffsetTimestamp{Time: m.fields.In(LocationFromOffset(offsetSec))}
}
