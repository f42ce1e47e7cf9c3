package session

import (
	"strconv"
	"strings"
)

// Flags selects which sections a request asks for.
type Flags int32

const (
	FlagPage   Flags = 0b01
	FlagDentry Flags = 0b10

	validFlags = FlagPage | FlagDentry
)

// Valid reports whether f only contains known bits.
func (f Flags) Valid() bool {
	return f&^validFlags == 0
}

func (f Flags) Has(bit Flags) bool {
	return f&bit == bit
}

func (f Flags) String() string {
	if f == 0 {
		return "NONE"
	}
	var parts []string
	if f.Has(FlagPage) {
		parts = append(parts, "PAGE")
	}
	if f.Has(FlagDentry) {
		parts = append(parts, "DENTRY")
	}
	if rest := f &^ validFlags; rest != 0 {
		parts = append(parts, "0b"+strconv.FormatUint(uint64(uint32(rest)), 2))
	}
	return strings.Join(parts, "|")
}
