package pdb

import (
	"bytes"

	"github.com/samcharles93/palmdb/internal/binfield"
)

// header is the fixed 78-byte block exactly as stored, before any text or
// time conversion.
type header struct {
	Name               [nameSize]byte
	Attributes         uint16
	Version            uint16
	CreationTime       uint32
	ModificationTime   uint32
	BackupTime         uint32
	ModificationNumber uint32
	AppInfoOffset      uint32
	SortInfoOffset     uint32
	Type               [codeSize]byte
	Creator            [codeSize]byte
	UniqueIDSeed       uint32
	NextRecordList     uint32
	NumRecords         uint16
}

// fieldReader remembers the first failed access so header parsing can read
// every field and check once.
type fieldReader struct {
	r   binfield.Reader
	err error
}

func (f *fieldReader) u16(off int) uint16 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.Uint16(off)
	f.err = err
	return v
}

func (f *fieldReader) u32(off int) uint32 {
	if f.err != nil {
		return 0
	}
	v, err := f.r.Uint32(off)
	f.err = err
	return v
}

func (f *fieldReader) window(dst []byte, off int) {
	if f.err != nil {
		return
	}
	b, err := f.r.Bytes(off, len(dst))
	f.err = err
	copy(dst, b)
}

func decodeHeader(r binfield.Reader) (header, error) {
	var h header
	f := fieldReader{r: r}
	f.window(h.Name[:], nameOffset)
	h.Attributes = f.u16(attributesOffset)
	h.Version = f.u16(versionOffset)
	h.CreationTime = f.u32(creationTimeOffset)
	h.ModificationTime = f.u32(modificationTimeOffset)
	h.BackupTime = f.u32(backupTimeOffset)
	h.ModificationNumber = f.u32(modificationNumberOffset)
	h.AppInfoOffset = f.u32(appInfoOffsetOffset)
	h.SortInfoOffset = f.u32(sortInfoOffsetOffset)
	f.window(h.Type[:], typeOffset)
	f.window(h.Creator[:], creatorOffset)
	h.UniqueIDSeed = f.u32(uniqueIDSeedOffset)
	h.NextRecordList = f.u32(nextRecordListOffset)
	h.NumRecords = f.u16(numRecordsOffset)
	if f.err != nil {
		return header{}, truncated("header", f.err)
	}
	return h, nil
}

func encodeHeader(w *binfield.Writer, h header) {
	w.PutBytes(h.Name[:])
	w.PutUint16(h.Attributes)
	w.PutUint16(h.Version)
	w.PutUint32(h.CreationTime)
	w.PutUint32(h.ModificationTime)
	w.PutUint32(h.BackupTime)
	w.PutUint32(h.ModificationNumber)
	w.PutUint32(h.AppInfoOffset)
	w.PutUint32(h.SortInfoOffset)
	w.PutBytes(h.Type[:])
	w.PutBytes(h.Creator[:])
	w.PutUint32(h.UniqueIDSeed)
	w.PutUint32(h.NextRecordList)
	w.PutUint16(h.NumRecords)
}

// nameBytes returns the name up to, not including, the first NUL. A field
// with no terminator is cut to MaxNameLen bytes, the longest name Encode
// accepts; terminated reports which case applied.
func (h *header) nameBytes() (name []byte, terminated bool) {
	if i := bytes.IndexByte(h.Name[:], 0); i >= 0 {
		return h.Name[:i], true
	}
	return h.Name[:MaxNameLen], false
}

// decodeCode turns a raw 4-byte tag into a string, one rune per byte, with
// trailing NUL padding removed.
func decodeCode(raw [codeSize]byte) string {
	b := bytes.TrimRight(raw[:], "\x00")
	out := make([]rune, len(b))
	for i, c := range b {
		out[i] = rune(c)
	}
	return string(out)
}

func encodeCode(field, code string) ([codeSize]byte, error) {
	var out [codeSize]byte
	n := 0
	for _, r := range code {
		if r > 0xFF {
			return out, encodingFailure("%s code %q: rune %U is not a single byte", field, code, r)
		}
		if n == codeSize {
			return out, encodingFailure("%s code %q is longer than %d bytes", field, code, codeSize)
		}
		out[n] = byte(r)
		n++
	}
	return out, nil
}
