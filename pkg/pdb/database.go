package pdb

import "time"

// Record is one entry in a database. Implementations own their payload
// encoding; the container only needs the bytes and the attribute byte.
type Record interface {
	Attributes() Attributes
	Bytes() []byte
}

// Block is an app-info or sort-info payload.
type Block interface {
	Bytes() []byte
}

// Database is the in-memory form of one PDB file.
//
// AppInfo and SortInfo are nil when the block is absent. The record count is
// never stored: it is always len(Records). A Database is plain data and is
// not safe for concurrent mutation.
type Database[R Record, A Block, S Block] struct {
	Name               string
	Attributes         DatabaseAttributes
	Version            uint16
	CreationTime       time.Time
	ModificationTime   time.Time
	BackupTime         time.Time
	ModificationNumber uint32
	Type               string
	Creator            string
	UniqueIDSeed       uint32
	NextRecordList     uint32

	AppInfo  *A
	SortInfo *S
	Records  []R
}

// New returns an empty database.
func New[R Record, A Block, S Block]() *Database[R, A, S] {
	return &Database[R, A, S]{Records: []R{}}
}

// NumRecords returns the record count written to the header.
func (db *Database[R, A, S]) NumRecords() int {
	return len(db.Records)
}

func (db *Database[R, A, S]) HasAppInfo() bool  { return db.AppInfo != nil }
func (db *Database[R, A, S]) HasSortInfo() bool { return db.SortInfo != nil }

// SetAppInfo stores a copy of a as the app-info block.
func (db *Database[R, A, S]) SetAppInfo(a A) { db.AppInfo = &a }

// SetSortInfo stores a copy of s as the sort-info block.
func (db *Database[R, A, S]) SetSortInfo(s S) { db.SortInfo = &s }

// Append adds records to the end of the record list.
func (db *Database[R, A, S]) Append(recs ...R) {
	db.Records = append(db.Records, recs...)
}

// Remove deletes the record at index i, preserving order.
func (db *Database[R, A, S]) Remove(i int) bool {
	if i < 0 || i >= len(db.Records) {
		return false
	}
	db.Records = append(db.Records[:i], db.Records[i+1:]...)
	return true
}

// Category returns the records whose attribute byte carries category c.
func (db *Database[R, A, S]) Category(c int) []R {
	var out []R
	for _, r := range db.Records {
		if r.Attributes().Category() == c {
			out = append(out, r)
		}
	}
	return out
}
