package pdb

import (
	"strconv"
	"strings"
)

// Attributes is the per-record attribute byte: four flags in the high nibble
// and a category index in the low nibble.
type Attributes uint8

const (
	AttrDelete Attributes = 0x80
	AttrDirty  Attributes = 0x40
	AttrBusy   Attributes = 0x20
	AttrSecret Attributes = 0x10

	// CategoryMask selects the category index.
	CategoryMask Attributes = 0x0F
	// MaxCategory is the highest category index.
	MaxCategory = 15
)

func (a Attributes) Delete() bool { return a&AttrDelete != 0 }
func (a Attributes) Dirty() bool  { return a&AttrDirty != 0 }
func (a Attributes) Busy() bool   { return a&AttrBusy != 0 }
func (a Attributes) Secret() bool { return a&AttrSecret != 0 }

// Category returns the category index, 0-15.
func (a Attributes) Category() int {
	return int(a & CategoryMask)
}

// WithCategory returns a copy of a with the category replaced. Only the low
// four bits of c are used.
func (a Attributes) WithCategory(c int) Attributes {
	return a&^CategoryMask | Attributes(c)&CategoryMask
}

// With returns a copy of a with flag set or cleared.
func (a Attributes) With(flag Attributes, on bool) Attributes {
	flag &^= CategoryMask
	if on {
		return a | flag
	}
	return a &^ flag
}

func (a Attributes) String() string {
	var parts []string
	if a.Delete() {
		parts = append(parts, "delete")
	}
	if a.Dirty() {
		parts = append(parts, "dirty")
	}
	if a.Busy() {
		parts = append(parts, "busy")
	}
	if a.Secret() {
		parts = append(parts, "secret")
	}
	parts = append(parts, "category="+strconv.Itoa(a.Category()))
	return strings.Join(parts, "|")
}

// DatabaseAttributes is the 16-bit attribute word in the header.
type DatabaseAttributes uint16

const (
	DBResource          DatabaseAttributes = 0x0001
	DBReadOnly          DatabaseAttributes = 0x0002
	DBAppInfoDirty      DatabaseAttributes = 0x0004
	DBBackup            DatabaseAttributes = 0x0008
	DBOKToInstallNewer  DatabaseAttributes = 0x0010
	DBResetAfterInstall DatabaseAttributes = 0x0020
	DBCopyPrevention    DatabaseAttributes = 0x0040
	DBStream            DatabaseAttributes = 0x0080
	DBHidden            DatabaseAttributes = 0x0100
	DBLaunchableData    DatabaseAttributes = 0x0200
	DBRecyclable        DatabaseAttributes = 0x0400
	DBBundle            DatabaseAttributes = 0x0800
	DBOpen              DatabaseAttributes = 0x8000
)

var databaseAttributeNames = []struct {
	flag DatabaseAttributes
	name string
}{
	{DBResource, "resource"},
	{DBReadOnly, "read-only"},
	{DBAppInfoDirty, "appinfo-dirty"},
	{DBBackup, "backup"},
	{DBOKToInstallNewer, "ok-to-install-newer"},
	{DBResetAfterInstall, "reset-after-install"},
	{DBCopyPrevention, "copy-prevention"},
	{DBStream, "stream"},
	{DBHidden, "hidden"},
	{DBLaunchableData, "launchable-data"},
	{DBRecyclable, "recyclable"},
	{DBBundle, "bundle"},
	{DBOpen, "open"},
}

// Has reports whether every bit in flag is set.
func (a DatabaseAttributes) Has(flag DatabaseAttributes) bool {
	return a&flag == flag
}

func (a DatabaseAttributes) ReadOnly() bool { return a.Has(DBReadOnly) }
func (a DatabaseAttributes) Backup() bool   { return a.Has(DBBackup) }
func (a DatabaseAttributes) Resource() bool { return a.Has(DBResource) }

// Names lists the known flags that are set, in bit order.
func (a DatabaseAttributes) Names() []string {
	var names []string
	for _, n := range databaseAttributeNames {
		if a.Has(n.flag) {
			names = append(names, n.name)
		}
	}
	return names
}

func (a DatabaseAttributes) String() string {
	names := a.Names()
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}
