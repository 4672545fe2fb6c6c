package archive

// Reader is the input side of a wire format.
//
// BeginEntry reports whether the named entry exists; when it returns false
// the caller must not call EndEntry. ArrayHasNext is only valid inside a
// Range or Vector entry, TypeName and TypeVersion only directly inside a
// Struct entry.
type Reader interface {
	BeginEntry(name string, t EntryType) (bool, error)
	EndEntry(name string, t EntryType) error
	ArrayHasNext(name string) (bool, error)
	TypeName() (string, error)
	TypeVersion() (Version, error)
	ReadBool(name string) (bool, error)
	ReadFloat64(name string) (float64, error)
	ReadString(name string) (string, error)
}

// Writer is the output side of a wire format.
type Writer interface {
	BeginEntry(name string, t EntryType, hint Hint) (bool, error)
	EndEntry(name string, t EntryType) error
	WriteTypeName(name string) error
	WriteTypeVersion(v Version) error
	WriteBool(name string, v bool) error
	WriteFloat64(name string, v float64) error
	WriteString(name string, v string) error
}

// IntReader is implemented by readers that keep integers exact instead of
// routing them through ReadFloat64.
type IntReader interface {
	ReadInt64(name string) (int64, error)
	ReadUint64(name string) (uint64, error)
}

// IntWriter is the writing counterpart of IntReader.
type IntWriter interface {
	WriteInt64(name string, v int64) error
	WriteUint64(name string, v uint64) error
}

// PresenceWriter lets a format mark optional values explicitly. The archive
// calls WritePresence before every optional, present or not.
type PresenceWriter interface {
	WritePresence(name string, present bool) error
}

// PresenceReader is the reading counterpart of PresenceWriter. After a false
// result the optional's entry is skipped entirely.
type PresenceReader interface {
	ReadPresence(name string) (bool, error)
}

// Codec binds a wire format to the archive engine.
type Codec interface {
	Name() string
	Marshal(name string, v any, opts ...Option) ([]byte, error)
	Unmarshal(data []byte, name string, v any, opts ...Option) error
}
