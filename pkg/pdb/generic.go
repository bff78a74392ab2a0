package pdb

// GenericRecord keeps a record's payload as raw bytes.
type GenericRecord struct {
	Attrs Attributes
	Data  []byte
}

func (r GenericRecord) Attributes() Attributes { return r.Attrs }
func (r GenericRecord) Bytes() []byte          { return r.Data }

// GenericBlock keeps an app-info or sort-info payload as raw bytes.
type GenericBlock struct {
	Data []byte
}

func (b GenericBlock) Bytes() []byte { return b.Data }

// GenericDatabase is a database whose payloads are all kept as raw bytes.
type GenericDatabase = Database[GenericRecord, GenericBlock, GenericBlock]

// NewGeneric returns an empty GenericDatabase.
func NewGeneric() *GenericDatabase {
	return New[GenericRecord, GenericBlock, GenericBlock]()
}

// GenericRecordDecoder wraps each record's bytes in a GenericRecord.
var GenericRecordDecoder RecordDecoder[GenericRecord] = RecordDecoderFunc[GenericRecord](
	func(attrs Attributes, data []byte) (GenericRecord, error) {
		return GenericRecord{Attrs: attrs, Data: data}, nil
	},
)

// GenericBlockDecoder wraps a block's bytes in a GenericBlock.
var GenericBlockDecoder BlockDecoder[GenericBlock] = BlockDecoderFunc[GenericBlock](
	func(data []byte) (GenericBlock, error) {
		return GenericBlock{Data: data}, nil
	},
)

// GenericReadOptions decodes every region into raw byte payloads.
func GenericReadOptions() ReadOptions[GenericRecord, GenericBlock, GenericBlock] {
	return ReadOptions[GenericRecord, GenericBlock, GenericBlock]{
		Records:  GenericRecordDecoder,
		AppInfo:  GenericBlockDecoder,
		SortInfo: GenericBlockDecoder,
	}
}

// DecodeGeneric decodes data with the generic decoders for every region.
func DecodeGeneric(data []byte) (*GenericDatabase, Diagnostics, error) {
	return Decode(data, GenericReadOptions())
}
