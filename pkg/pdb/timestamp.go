package pdb

import (
	"math"
	"time"
)

// Epoch identifies the base a PDB timestamp counts seconds from.
type Epoch int

const (
	// EpochPalm is midnight, January 1 1904, the base defined by the format.
	EpochPalm Epoch = iota
	// EpochUnix is midnight, January 1 1970, used by some third-party tools.
	EpochUnix
)

const (
	PalmEpochYear = 1904
	UnixEpochYear = 1970

	epochHighBit = 0x80000000
)

func (e Epoch) Year() int {
	if e == EpochUnix {
		return UnixEpochYear
	}
	return PalmEpochYear
}

func (e Epoch) String() string {
	if e == EpochUnix {
		return "unix"
	}
	return "palm"
}

// Base returns local midnight on January 1 of the epoch year in loc.
// A nil loc means time.Local.
func (e Epoch) Base(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(e.Year(), time.January, 1, 0, 0, 0, 0, loc)
}

// EpochFor guesses the epoch a raw timestamp was written against.
//
// A Palm-epoch value with the high bit clear would predate 1972, well before
// the format existed, so such values are taken to be Unix-based.
func EpochFor(raw uint32) Epoch {
	if raw&epochHighBit == 0 {
		return EpochUnix
	}
	return EpochPalm
}

// DecodeTime converts a raw header timestamp to a time in loc. The raw value
// is always treated as an unsigned count of seconds.
func DecodeTime(raw uint32, loc *time.Location) time.Time {
	return EpochFor(raw).Base(loc).Add(time.Duration(raw) * time.Second)
}

// EncodeTime converts t to whole seconds since the chosen epoch. The zero
// time encodes as 0.
//
// The result must decode back to t, so when the chosen epoch yields a value
// EpochFor would attribute to the other epoch (Palm times before 1972, Unix
// times after January 2038) the other epoch is used instead. Times that fit
// neither epoch fail with ErrEncodingFailure.
func EncodeTime(t time.Time, epoch Epoch, loc *time.Location) (uint32, error) {
	if t.IsZero() {
		return 0, nil
	}
	if raw, ok := secondsSince(t, epoch, loc); ok {
		return raw, nil
	}
	if raw, ok := secondsSince(t, epoch.other(), loc); ok {
		return raw, nil
	}
	return 0, encodingFailure("time %s cannot be represented in either epoch", t.Format(time.RFC3339))
}

// secondsSince reports t relative to epoch, and whether the value is in
// range and detected as that epoch on decode.
func secondsSince(t time.Time, epoch Epoch, loc *time.Location) (uint32, bool) {
	secs := t.Unix() - epoch.Base(loc).Unix()
	if secs < 0 || secs > math.MaxUint32 {
		return 0, false
	}
	raw := uint32(secs)
	return raw, EpochFor(raw) == epoch
}

func (e Epoch) other() Epoch {
	if e == EpochUnix {
		return EpochPalm
	}
	return EpochUnix
}
