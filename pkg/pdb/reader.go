package pdb

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/samcharles93/palmdb/internal/binfield"
)

// RecordDecoder turns a record's attribute byte and payload into a Record.
type RecordDecoder[R Record] interface {
	DecodeRecord(attrs Attributes, data []byte) (R, error)
}

// RecordDecoderFunc adapts a function to RecordDecoder.
type RecordDecoderFunc[R Record] func(attrs Attributes, data []byte) (R, error)

func (f RecordDecoderFunc[R]) DecodeRecord(attrs Attributes, data []byte) (R, error) {
	return f(attrs, data)
}

// BlockDecoder turns an app-info or sort-info payload into a Block.
type BlockDecoder[B Block] interface {
	DecodeBlock(data []byte) (B, error)
}

// BlockDecoderFunc adapts a function to BlockDecoder.
type BlockDecoderFunc[B Block] func(data []byte) (B, error)

func (f BlockDecoderFunc[B]) DecodeBlock(data []byte) (B, error) {
	return f(data)
}

// Logger receives decode progress and diagnostics. *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type discardLogger struct{}

func (discardLogger) Debug(string, ...any) {}
func (discardLogger) Warn(string, ...any)  {}

// ReadOptions configures Decode.
//
// A nil decoder means the matching region is skipped and reported as a
// Diagnostic. That includes records: a file with records but no record
// decoder yields an empty record list. Set Strict to make a missing decoder
// fail the decode instead.
type ReadOptions[R Record, A Block, S Block] struct {
	Records  RecordDecoder[R]
	AppInfo  BlockDecoder[A]
	SortInfo BlockDecoder[S]

	Strict bool
	// Location is the zone epoch bases are computed in. Nil means time.Local.
	Location *time.Location
	Logger   Logger
}

func (o *ReadOptions[R, A, S]) logger() Logger {
	if o.Logger == nil {
		return discardLogger{}
	}
	return o.Logger
}

// Decode parses a complete PDB file held in data.
//
// Out-of-range offsets fail with ErrTruncatedContainer. Regions without a
// decoder are left out of the result and listed in the returned Diagnostics.
// Every payload handed to a decoder is a private copy, so the result never
// aliases data.
func Decode[R Record, A Block, S Block](data []byte, opts ReadOptions[R, A, S]) (*Database[R, A, S], Diagnostics, error) {
	d := &decoder[R, A, S]{
		buf:  binfield.NewReader(data),
		opts: opts,
		log:  opts.logger(),
	}
	db, err := d.decode()
	if err != nil {
		return nil, d.diags, err
	}
	return db, d.diags, nil
}

type decoder[R Record, A Block, S Block] struct {
	buf   binfield.Reader
	opts  ReadOptions[R, A, S]
	log   Logger
	diags Diagnostics
}

func (d *decoder[R, A, S]) decode() (*Database[R, A, S], error) {
	h, err := decodeHeader(d.buf)
	if err != nil {
		return nil, err
	}

	db := New[R, A, S]()
	name, terminated := h.nameBytes()
	if !terminated {
		d.log.Warn("PDB name is not NUL-terminated, dropping last byte", "name_bytes", nameSize)
	}
	db.Name = DecodeText(name)
	db.Attributes = DatabaseAttributes(h.Attributes)
	db.Version = h.Version
	db.CreationTime = d.decodeTime("creation", h.CreationTime)
	db.ModificationTime = d.decodeTime("modification", h.ModificationTime)
	db.BackupTime = d.decodeTime("backup", h.BackupTime)
	db.ModificationNumber = h.ModificationNumber
	db.Type = decodeCode(h.Type)
	db.Creator = decodeCode(h.Creator)
	db.UniqueIDSeed = h.UniqueIDSeed
	db.NextRecordList = h.NextRecordList

	d.log.Debug("decoded PDB header",
		"name", db.Name,
		"type", db.Type,
		"creator", db.Creator,
		"records", h.NumRecords,
		"app_info_offset", h.AppInfoOffset,
		"sort_info_offset", h.SortInfoOffset,
	)

	ptrs, err := d.readPointers(int(h.NumRecords))
	if err != nil {
		return nil, err
	}

	eof := uint32(d.buf.Len())
	firstRecord := eof
	if len(ptrs) > 0 {
		firstRecord = ptrs[0].offset
	}

	if h.AppInfoOffset != 0 {
		end := h.SortInfoOffset
		if end == 0 {
			end = firstRecord
		}
		if end == 0 {
			end = eof
		}
		if err := decodeBlock(d, RegionAppInfo, d.opts.AppInfo, h.AppInfoOffset, end, &db.AppInfo); err != nil {
			return nil, err
		}
	}

	if h.SortInfoOffset != 0 {
		end := firstRecord
		if end == 0 {
			end = eof
		}
		if err := decodeBlock(d, RegionSortInfo, d.opts.SortInfo, h.SortInfoOffset, end, &db.SortInfo); err != nil {
			return nil, err
		}
	}

	recs, err := d.readRecords(ptrs)
	if err != nil {
		return nil, err
	}
	db.Records = recs
	return db, nil
}

func (d *decoder[R, A, S]) decodeTime(field string, raw uint32) time.Time {
	epoch := EpochFor(raw)
	d.log.Debug("detected timestamp epoch", "field", field, "raw", raw, "epoch", epoch.String(), "year", epoch.Year())
	return DecodeTime(raw, d.opts.Location)
}

func (d *decoder[R, A, S]) readPointers(n int) ([]recordPointer, error) {
	return readPointerTable(d.buf, n)
}

func readPointerTable(buf binfield.Reader, n int) ([]recordPointer, error) {
	tableEnd := pointerTableOffset + n*PointerEntrySize
	if _, err := buf.Slice(pointerTableOffset, tableEnd); err != nil {
		return nil, truncated("record pointer table", err)
	}

	// The unique-id bytes at the end of each entry are not kept.
	ptrs := make([]recordPointer, n)
	for i := range ptrs {
		off := pointerTableOffset + i*PointerEntrySize
		recOff, err := buf.Uint32(off)
		if err != nil {
			return nil, truncated(fmt.Sprintf("record pointer %d", i), err)
		}
		attrs, err := buf.Uint8(off + pointerAttrOffset)
		if err != nil {
			return nil, truncated(fmt.Sprintf("record pointer %d", i), err)
		}
		ptrs[i] = recordPointer{offset: recOff, attrs: Attributes(attrs)}
	}
	return ptrs, nil
}

func (d *decoder[R, A, S]) readRecords(ptrs []recordPointer) ([]R, error) {
	recs := make([]R, 0, len(ptrs))
	if len(ptrs) == 0 {
		return recs, nil
	}

	// Bounds are checked even when records are skipped: a pointer table
	// that runs off the end of the file is corrupt either way.
	payloads := make([][]byte, len(ptrs))
	for i, p := range ptrs {
		end := uint32(d.buf.Len())
		if i+1 < len(ptrs) {
			end = ptrs[i+1].offset
		}
		data, err := d.buf.Slice(int(p.offset), int(end))
		if err != nil {
			return nil, truncated(fmt.Sprintf("record %d", i), err)
		}
		payloads[i] = data
	}

	if d.opts.Records == nil {
		if err := d.missing(RegionRecords, ptrs[0].offset); err != nil {
			return nil, err
		}
		return recs, nil
	}

	for i, p := range ptrs {
		d.log.Debug("reading record", "index", i, "offset", p.offset, "size", len(payloads[i]), "attributes", p.attrs.String())
		rec, err := d.opts.Records.DecodeRecord(p.attrs, payloads[i])
		if err != nil {
			return nil, fmt.Errorf("pdb: decode record %d at offset %d: %w", i, p.offset, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// decodeBlock slices [start, end) and hands it to dec, storing the result in
// dst. It is a function rather than a method because it needs its own type
// parameter for the block type.
func decodeBlock[R Record, A Block, S Block, B Block](d *decoder[R, A, S], region Region, dec BlockDecoder[B], start, end uint32, dst **B) error {
	data, err := d.buf.Slice(int(start), int(end))
	if err != nil {
		return truncated(string(region), err)
	}
	if dec == nil {
		return d.missing(region, start)
	}
	d.log.Debug("reading block", "region", string(region), "offset", start, "size", len(data))
	b, err := dec.DecodeBlock(data)
	if err != nil {
		return fmt.Errorf("pdb: decode %s at offset %d: %w", region, start, err)
	}
	*dst = &b
	return nil
}

// missing records a region that has no decoder, or fails in strict mode.
func (d *decoder[R, A, S]) missing(region Region, offset uint32) error {
	diag := Diagnostic{Region: region, Offset: offset, Err: ErrMissingDecoder}
	if d.opts.Strict {
		return diag
	}
	d.log.Warn("skipping PDB region without decoder", "region", string(region), "offset", offset)
	d.diags = append(d.diags, diag)
	return nil
}

// ReadFile maps a PDB file read-only and decodes it. If mmap is unavailable
// it falls back to ReadAt-based loading. The mapping is released before
// ReadFile returns.
func ReadFile[R Record, A Block, S Block](path string, opts ReadOptions[R, A, S]) (*Database[R, A, S], Diagnostics, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	size64 := stat.Size()
	if size64 < 0 || size64 > int64(int(^uint(0)>>1)) {
		return nil, nil, fmt.Errorf("%w: file size %d", ErrTruncatedContainer, size64)
	}
	size := int(size64)
	if size < HeaderSize {
		return nil, nil, fmt.Errorf("%w: file is %d bytes, header needs %d", ErrTruncatedContainer, size, HeaderSize)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		defer func() { _ = unix.Munmap(data) }()
		return Decode(data, opts)
	}

	return ReadFrom(f, size64, opts)
}

// ReadFrom loads size bytes from r and decodes them.
func ReadFrom[R Record, A Block, S Block](r io.ReaderAt, size int64, opts ReadOptions[R, A, S]) (*Database[R, A, S], Diagnostics, error) {
	if size < 0 || size > int64(int(^uint(0)>>1)) {
		return nil, nil, fmt.Errorf("%w: size %d", ErrTruncatedContainer, size)
	}
	data, err := readAllAt(r, int(size))
	if err != nil {
		return nil, nil, err
	}
	return Decode(data, opts)
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}
