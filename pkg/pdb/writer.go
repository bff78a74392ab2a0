package pdb

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/samcharles93/palmdb/internal/binfield"
)

// WriteOptions configures Encode.
type WriteOptions struct {
	// UnixEpoch prefers 1970 over the format's native 1904 epoch. It is a
	// preference, not a guarantee: readers pick the epoch from the high bit,
	// so a time the preferred epoch would misattribute (Unix times after
	// January 2038, Palm times before 1972) is written in the other epoch.
	// ReadIndex reports the epoch each field ended up in.
	UnixEpoch bool
	// Location is the zone epoch bases are computed in. Nil means time.Local.
	Location *time.Location
}

func (o WriteOptions) epoch() Epoch {
	if o.UnixEpoch {
		return EpochUnix
	}
	return EpochPalm
}

// Layout is the set of offsets a database serializes to. Offsets of absent
// blocks are zero.
type Layout struct {
	AppInfoOffset     uint32
	SortInfoOffset    uint32
	FirstRecordOffset uint32
	RecordOffsets     []uint32
	Size              uint32
}

// payloads holds every region's bytes, fetched once per Encode.
type payloads struct {
	appInfo  []byte
	sortInfo []byte
	records  [][]byte
	attrs    []Attributes
}

func collectPayloads[R Record, A Block, S Block](db *Database[R, A, S]) payloads {
	var p payloads
	if db.AppInfo != nil {
		p.appInfo = (*db.AppInfo).Bytes()
	}
	if db.SortInfo != nil {
		p.sortInfo = (*db.SortInfo).Bytes()
	}
	p.records = make([][]byte, len(db.Records))
	p.attrs = make([]Attributes, len(db.Records))
	for i, r := range db.Records {
		p.records[i] = r.Bytes()
		p.attrs[i] = r.Attributes()
	}
	return p
}

// PlanLayout computes the offsets Encode would write for db. A block whose
// payload is empty is treated as absent.
func PlanLayout[R Record, A Block, S Block](db *Database[R, A, S]) (Layout, error) {
	if db == nil {
		return Layout{}, errors.New("pdb: nil database")
	}
	return planLayout(collectPayloads(db))
}

func planLayout(p payloads) (Layout, error) {
	if len(p.records) > MaxRecords {
		return Layout{}, encodingFailure("%d records exceed the limit of %d", len(p.records), MaxRecords)
	}

	var l Layout
	pos := uint64(HeaderSize) + uint64(len(p.records))*PointerEntrySize
	if len(p.appInfo) > 0 {
		l.AppInfoOffset = uint32(pos)
		pos += uint64(len(p.appInfo))
	}
	if len(p.sortInfo) > 0 {
		if pos > math.MaxUint32 {
			return Layout{}, encodingFailure("sort info offset %d exceeds 32 bits", pos)
		}
		l.SortInfoOffset = uint32(pos)
		pos += uint64(len(p.sortInfo))
	}
	if pos > math.MaxUint32 {
		return Layout{}, encodingFailure("first record offset %d exceeds 32 bits", pos)
	}
	l.FirstRecordOffset = uint32(pos)

	l.RecordOffsets = make([]uint32, len(p.records))
	for i, rec := range p.records {
		if pos > math.MaxUint32 {
			return Layout{}, encodingFailure("record %d offset %d exceeds 32 bits", i, pos)
		}
		l.RecordOffsets[i] = uint32(pos)
		pos += uint64(len(rec))
	}
	if pos > math.MaxUint32 {
		return Layout{}, encodingFailure("container size %d exceeds 32 bits", pos)
	}
	l.Size = uint32(pos)
	return l, nil
}

// Encode serializes db. Offsets are always recomputed from the current
// blocks and records; record unique-id bytes are written as zero.
func Encode[R Record, A Block, S Block](db *Database[R, A, S], opts WriteOptions) ([]byte, error) {
	if db == nil {
		return nil, errors.New("pdb: nil database")
	}
	p := collectPayloads(db)
	layout, err := planLayout(p)
	if err != nil {
		return nil, err
	}
	h, err := buildHeader(db, layout, opts)
	if err != nil {
		return nil, err
	}

	w := binfield.NewWriter(int(layout.Size))
	encodeHeader(w, h)
	for i, off := range layout.RecordOffsets {
		w.PutUint32(off)
		w.PutUint8(uint8(p.attrs[i]))
		w.PutZeros(uniqueIDSize)
	}
	if layout.AppInfoOffset != 0 {
		w.PutBytes(p.appInfo)
	}
	if layout.SortInfoOffset != 0 {
		w.PutBytes(p.sortInfo)
	}
	for _, rec := range p.records {
		w.PutBytes(rec)
	}
	return w.Bytes(), nil
}

func buildHeader[R Record, A Block, S Block](db *Database[R, A, S], l Layout, opts WriteOptions) (header, error) {
	h := header{
		Attributes:         uint16(db.Attributes),
		Version:            db.Version,
		ModificationNumber: db.ModificationNumber,
		AppInfoOffset:      l.AppInfoOffset,
		SortInfoOffset:     l.SortInfoOffset,
		UniqueIDSeed:       db.UniqueIDSeed,
		NextRecordList:     db.NextRecordList,
		NumRecords:         uint16(len(db.Records)),
	}

	name, err := EncodeText(db.Name)
	if err != nil {
		return header{}, err
	}
	if len(name) > MaxNameLen {
		return header{}, encodingFailure("name %q is %d bytes, limit is %d", db.Name, len(name), MaxNameLen)
	}
	for _, c := range name {
		if c == 0 {
			return header{}, encodingFailure("name %q contains NUL", db.Name)
		}
	}
	copy(h.Name[:], name)

	epoch := opts.epoch()
	times := []struct {
		t   time.Time
		dst *uint32
	}{
		{db.CreationTime, &h.CreationTime},
		{db.ModificationTime, &h.ModificationTime},
		{db.BackupTime, &h.BackupTime},
	}
	for _, ts := range times {
		raw, err := EncodeTime(ts.t, epoch, opts.Location)
		if err != nil {
			return header{}, err
		}
		*ts.dst = raw
	}

	if h.Type, err = encodeCode("type", db.Type); err != nil {
		return header{}, err
	}
	if h.Creator, err = encodeCode("creator", db.Creator); err != nil {
		return header{}, err
	}
	return h, nil
}

// WriteFile encodes db and replaces path with the result. The file is
// written to a temporary sibling and renamed into place.
func WriteFile[R Record, A Block, S Block](path string, db *Database[R, A, S], opts WriteOptions) error {
	data, err := Encode(db, opts)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	cleanup := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
