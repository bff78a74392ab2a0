package pdb

import "github.com/samcharles93/palmdb/internal/binfield"

// Index is the raw addressing information of a container: the offsets as
// stored in the file and the epoch each timestamp was written in. It is what
// inspection tools show next to a decoded Database.
type Index struct {
	Size           int
	NumRecords     int
	AppInfoOffset  uint32
	SortInfoOffset uint32
	RecordOffsets  []uint32
	RecordAttrs    []Attributes

	CreationEpoch     Epoch
	ModificationEpoch Epoch
	BackupEpoch       Epoch
}

// ReadIndex decodes the header and pointer table of data without touching
// any payload.
func ReadIndex(data []byte) (Index, error) {
	buf := binfield.NewReader(data)
	h, err := decodeHeader(buf)
	if err != nil {
		return Index{}, err
	}
	ptrs, err := readPointerTable(buf, int(h.NumRecords))
	if err != nil {
		return Index{}, err
	}

	idx := Index{
		Size:              len(data),
		NumRecords:        len(ptrs),
		AppInfoOffset:     h.AppInfoOffset,
		SortInfoOffset:    h.SortInfoOffset,
		RecordOffsets:     make([]uint32, len(ptrs)),
		RecordAttrs:       make([]Attributes, len(ptrs)),
		CreationEpoch:     EpochFor(h.CreationTime),
		ModificationEpoch: EpochFor(h.ModificationTime),
		BackupEpoch:       EpochFor(h.BackupTime),
	}
	for i, p := range ptrs {
		idx.RecordOffsets[i] = p.offset
		idx.RecordAttrs[i] = p.attrs
	}
	return idx, nil
}

// RecordSize returns the inferred payload length of record i, using the same
// boundary rule as Decode. It does not validate the range.
func (idx Index) RecordSize(i int) int {
	end := uint32(idx.Size)
	if i+1 < len(idx.RecordOffsets) {
		end = idx.RecordOffsets[i+1]
	}
	if end < idx.RecordOffsets[i] {
		return 0
	}
	return int(end - idx.RecordOffsets[i])
}
