// Package archive converts between a PDB container and an editable directory:
// one file per payload plus a manifest.yaml holding the header fields.
package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/samcharles93/palmdb/pkg/pdb"
)

const (
	ManifestName = "manifest.yaml"
	appInfoFile  = "app_info.bin"
	sortInfoFile = "sort_info.bin"
	recordsDir   = "records"
)

// ErrInvalidManifest is returned for a manifest that cannot describe a
// container.
var ErrInvalidManifest = errors.New("invalid archive manifest")

// Manifest is the YAML form of a container's header and payload index.
// Payload paths are relative to the manifest's directory.
type Manifest struct {
	Name               string        `yaml:"name"`
	Type               string        `yaml:"type"`
	Creator            string        `yaml:"creator"`
	Version            uint16        `yaml:"version"`
	Attributes         uint16        `yaml:"attributes"`
	Created            time.Time     `yaml:"created,omitempty"`
	Modified           time.Time     `yaml:"modified,omitempty"`
	Backup             time.Time     `yaml:"backup,omitempty"`
	ModificationNumber uint32        `yaml:"modification_number"`
	UniqueIDSeed       uint32        `yaml:"unique_id_seed"`
	NextRecordList     uint32        `yaml:"next_record_list"`
	AppInfo            string        `yaml:"app_info,omitempty"`
	SortInfo           string        `yaml:"sort_info,omitempty"`
	Records            []RecordEntry `yaml:"records"`
}

// RecordEntry is one record: its payload file and attribute byte.
type RecordEntry struct {
	File       string `yaml:"file"`
	Attributes uint8  `yaml:"attributes"`
}

// Extract writes db into dir, creating it if needed, and returns the
// manifest it wrote.
func Extract(db *pdb.GenericDatabase, dir string) (*Manifest, error) {
	if err := os.MkdirAll(filepath.Join(dir, recordsDir), 0o755); err != nil {
		return nil, err
	}

	m := &Manifest{
		Name:               db.Name,
		Type:               db.Type,
		Creator:            db.Creator,
		Version:            db.Version,
		Attributes:         uint16(db.Attributes),
		Created:            db.CreationTime,
		Modified:           db.ModificationTime,
		Backup:             db.BackupTime,
		ModificationNumber: db.ModificationNumber,
		UniqueIDSeed:       db.UniqueIDSeed,
		NextRecordList:     db.NextRecordList,
		Records:            make([]RecordEntry, 0, len(db.Records)),
	}

	if db.AppInfo != nil {
		m.AppInfo = appInfoFile
		if err := writePayload(dir, m.AppInfo, db.AppInfo.Data); err != nil {
			return nil, err
		}
	}
	if db.SortInfo != nil {
		m.SortInfo = sortInfoFile
		if err := writePayload(dir, m.SortInfo, db.SortInfo.Data); err != nil {
			return nil, err
		}
	}
	for i, rec := range db.Records {
		entry := RecordEntry{
			File:       filepath.ToSlash(filepath.Join(recordsDir, fmt.Sprintf("%05d.bin", i))),
			Attributes: uint8(rec.Attrs),
		}
		if err := writePayload(dir, entry.File, rec.Data); err != nil {
			return nil, err
		}
		m.Records = append(m.Records, entry)
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestName), data, 0o644); err != nil {
		return nil, err
	}
	return m, nil
}

// Load reads and validates dir's manifest.
func Load(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the limits the container format imposes that can be
// checked without reading payloads.
func (m *Manifest) Validate() error {
	if len(m.Records) > pdb.MaxRecords {
		return fmt.Errorf("%w: %d records exceed the limit of %d", ErrInvalidManifest, len(m.Records), pdb.MaxRecords)
	}
	paths := []string{m.AppInfo, m.SortInfo}
	for _, r := range m.Records {
		if r.File == "" {
			return fmt.Errorf("%w: record without a file", ErrInvalidManifest)
		}
		paths = append(paths, r.File)
	}
	for _, p := range paths {
		if p != "" && !filepath.IsLocal(filepath.FromSlash(p)) {
			return fmt.Errorf("%w: payload path %q leaves the archive", ErrInvalidManifest, p)
		}
	}
	return nil
}

// Database reads every payload named by m, relative to dir.
func (m *Manifest) Database(dir string) (*pdb.GenericDatabase, error) {
	db := pdb.NewGeneric()
	db.Name = m.Name
	db.Type = m.Type
	db.Creator = m.Creator
	db.Version = m.Version
	db.Attributes = pdb.DatabaseAttributes(m.Attributes)
	db.CreationTime = m.Created
	db.ModificationTime = m.Modified
	db.BackupTime = m.Backup
	db.ModificationNumber = m.ModificationNumber
	db.UniqueIDSeed = m.UniqueIDSeed
	db.NextRecordList = m.NextRecordList

	if m.AppInfo != "" {
		data, err := readPayload(dir, m.AppInfo)
		if err != nil {
			return nil, err
		}
		db.SetAppInfo(pdb.GenericBlock{Data: data})
	}
	if m.SortInfo != "" {
		data, err := readPayload(dir, m.SortInfo)
		if err != nil {
			return nil, err
		}
		db.SetSortInfo(pdb.GenericBlock{Data: data})
	}
	for _, r := range m.Records {
		data, err := readPayload(dir, r.File)
		if err != nil {
			return nil, err
		}
		db.Append(pdb.GenericRecord{Attrs: pdb.Attributes(r.Attributes), Data: data})
	}
	return db, nil
}

// Pack loads dir's manifest and payloads into a database.
func Pack(dir string) (*pdb.GenericDatabase, error) {
	m, err := Load(dir)
	if err != nil {
		return nil, err
	}
	return m.Database(dir)
}

func writePayload(dir, name string, data []byte) error {
	return os.WriteFile(filepath.Join(dir, filepath.FromSlash(name)), data, 0o644)
}

func readPayload(dir, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	if err != nil {
		return nil, fmt.Errorf("archive payload %s: %w", name, err)
	}
	return data, nil
}
