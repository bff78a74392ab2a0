// Package pdb implements the Palm OS database (PDB) container format.
//
// A PDB file is a fixed 78-byte header, a table of record pointers, optional
// app-info and sort-info blocks and a sequence of opaque records. The format
// stores only start offsets, so region lengths are inferred from whatever
// region follows. Payloads are interpreted by pluggable decoders; the
// container itself never looks inside them.
package pdb

// Wire layout. All multi-byte fields are big-endian and never change.
const (
	HeaderSize       = 78
	PointerEntrySize = 8

	// MaxNameLen is the longest encoded name; the 32nd byte is always NUL.
	MaxNameLen = nameSize - 1
	// MaxRecords is the largest count the 16-bit record count field can hold.
	MaxRecords = 0xFFFF
)

const (
	nameOffset               = 0
	nameSize                 = 32
	attributesOffset         = 32
	versionOffset            = 34
	creationTimeOffset       = 36
	modificationTimeOffset   = 40
	backupTimeOffset         = 44
	modificationNumberOffset = 48
	appInfoOffsetOffset      = 52
	sortInfoOffsetOffset     = 56
	typeOffset               = 60
	creatorOffset            = 64
	codeSize                 = 4
	uniqueIDSeedOffset       = 68
	nextRecordListOffset     = 72
	numRecordsOffset         = 76
	pointerTableOffset       = HeaderSize

	// Within a pointer entry: offset(4) attributes(1) unique id(3).
	pointerAttrOffset = 4
	uniqueIDSize      = 3
)

// recordPointer locates one record's payload. It only lives for the duration
// of a single Decode or Encode call.
type recordPointer struct {
	offset uint32
	attrs  Attributes
}
