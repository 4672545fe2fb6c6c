package archive

import "fmt"

// EntryType is how a value is represented in the entry stream.
type EntryType uint8

const (
	Value EntryType = iota
	Struct
	Range
	Vector
	ForwardValue
	ForwardReference
)

var entryTypeNames = [...]string{
	Value:            "Value",
	Struct:           "Struct",
	Range:            "Range",
	Vector:           "Vector",
	ForwardValue:     "ForwardValue",
	ForwardReference: "ForwardReference",
}

func (t EntryType) String() string {
	if int(t) < len(entryTypeNames) {
		return entryTypeNames[t]
	}
	return fmt.Sprintf("EntryType(%d)", uint8(t))
}

// IsArray reports whether entries of this type are sequences of unnamed elements.
func (t EntryType) IsArray() bool { return t == Range || t == Vector }

// Hint is a layout request for text writers. It never changes decoded content.
type Hint uint8

const (
	HintNone Hint = iota
	HintOneLine
	HintChildrenOneLine
)

func (h Hint) String() string {
	switch h {
	case HintNone:
		return "none"
	case HintOneLine:
		return "one-line"
	case HintChildrenOneLine:
		return "children-one-line"
	default:
		return fmt.Sprintf("Hint(%d)", uint8(h))
	}
}
