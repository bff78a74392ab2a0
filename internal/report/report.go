// Package report builds a structured description of a PDB container for the
// inspect command and the HTTP API.
package report

import (
	"strings"
	"time"
	"unicode"

	"github.com/samcharles93/palmdb/pkg/pdb"
)

// previewLen is how many payload bytes a record preview shows.
const previewLen = 24

// Options controls what Build includes.
type Options struct {
	// File is reported as-is; it is not opened.
	File string
	// Records adds one entry per record.
	Records bool
	// Limit caps the number of record entries. Zero means no limit.
	Limit int
	// Strict turns a skipped region into an error.
	Strict   bool
	Location *time.Location
	Logger   pdb.Logger
}

// Report describes one container.
type Report struct {
	File               string       `json:"file,omitempty"`
	Size               int          `json:"size"`
	Name               string       `json:"name"`
	Type               string       `json:"type"`
	Creator            string       `json:"creator"`
	Version            uint16       `json:"version"`
	Attributes         uint16       `json:"attributes"`
	AttributeNames     []string     `json:"attribute_names,omitempty"`
	Created            Timestamp    `json:"created"`
	Modified           Timestamp    `json:"modified"`
	Backup             Timestamp    `json:"backup"`
	ModificationNumber uint32       `json:"modification_number"`
	UniqueIDSeed       uint32       `json:"unique_id_seed"`
	NextRecordList     uint32       `json:"next_record_list"`
	AppInfo            *Block       `json:"app_info,omitempty"`
	SortInfo           *Block       `json:"sort_info,omitempty"`
	NumRecords         int          `json:"num_records"`
	Categories         map[int]int  `json:"categories,omitempty"`
	Records            []Record     `json:"records,omitempty"`
	Truncated          bool         `json:"records_truncated,omitempty"`
	Diagnostics        []Diagnostic `json:"diagnostics,omitempty"`
}

// Timestamp is a decoded header time plus the epoch it was stored in.
type Timestamp struct {
	Time  time.Time `json:"time"`
	Epoch string    `json:"epoch"`
}

// Block locates an app-info or sort-info block.
type Block struct {
	Offset uint32 `json:"offset"`
	Size   int    `json:"size"`
}

// Record summarizes one record.
type Record struct {
	Index      int    `json:"index"`
	Offset     uint32 `json:"offset"`
	Size       int    `json:"size"`
	Category   int    `json:"category"`
	Attributes string `json:"attributes"`
	Preview    string `json:"preview,omitempty"`
}

// Diagnostic is a recoverable decode problem.
type Diagnostic struct {
	Region  string `json:"region"`
	Offset  uint32 `json:"offset"`
	Message string `json:"message"`
}

// Build decodes data with the generic decoders and describes it.
func Build(data []byte, opts Options) (*Report, error) {
	idx, err := pdb.ReadIndex(data)
	if err != nil {
		return nil, err
	}
	ropts := pdb.GenericReadOptions()
	ropts.Strict = opts.Strict
	ropts.Location = opts.Location
	ropts.Logger = opts.Logger
	db, diags, err := pdb.Decode(data, ropts)
	if err != nil {
		return nil, err
	}
	return FromDatabase(db, idx, diags, opts), nil
}

// FromDatabase describes an already decoded database. idx must come from the
// same bytes db was decoded from.
func FromDatabase(db *pdb.GenericDatabase, idx pdb.Index, diags pdb.Diagnostics, opts Options) *Report {
	r := &Report{
		File:               opts.File,
		Size:               idx.Size,
		Name:               db.Name,
		Type:               db.Type,
		Creator:            db.Creator,
		Version:            db.Version,
		Attributes:         uint16(db.Attributes),
		AttributeNames:     db.Attributes.Names(),
		Created:            Timestamp{Time: db.CreationTime, Epoch: idx.CreationEpoch.String()},
		Modified:           Timestamp{Time: db.ModificationTime, Epoch: idx.ModificationEpoch.String()},
		Backup:             Timestamp{Time: db.BackupTime, Epoch: idx.BackupEpoch.String()},
		ModificationNumber: db.ModificationNumber,
		UniqueIDSeed:       db.UniqueIDSeed,
		NextRecordList:     db.NextRecordList,
		NumRecords:         idx.NumRecords,
	}
	if db.AppInfo != nil {
		r.AppInfo = &Block{Offset: idx.AppInfoOffset, Size: len(db.AppInfo.Data)}
	}
	if db.SortInfo != nil {
		r.SortInfo = &Block{Offset: idx.SortInfoOffset, Size: len(db.SortInfo.Data)}
	}

	if idx.NumRecords > 0 {
		r.Categories = make(map[int]int)
	}
	for i, attrs := range idx.RecordAttrs {
		r.Categories[attrs.Category()]++
		if !opts.Records {
			continue
		}
		if opts.Limit > 0 && len(r.Records) >= opts.Limit {
			r.Truncated = true
			continue
		}
		rec := Record{
			Index:      i,
			Offset:     idx.RecordOffsets[i],
			Size:       idx.RecordSize(i),
			Category:   attrs.Category(),
			Attributes: attrs.String(),
		}
		if i < len(db.Records) {
			rec.Preview = Preview(db.Records[i].Data)
		}
		r.Records = append(r.Records, rec)
	}

	for _, d := range diags {
		r.Diagnostics = append(r.Diagnostics, Diagnostic{
			Region:  string(d.Region),
			Offset:  d.Offset,
			Message: d.Err.Error(),
		})
	}
	return r
}

// Preview renders the start of a payload as Palm OS text with control
// characters replaced by '.'.
func Preview(data []byte) string {
	cut := data
	if len(cut) > previewLen {
		cut = cut[:previewLen]
	}
	text := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return '.'
		}
		return r
	}, pdb.DecodeText(cut))
	if len(data) > previewLen {
		text += "…"
	}
	return text
}
