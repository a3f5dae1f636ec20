package config

import (
	"fmt"
	"strings"
)

// A SizeClass is one of the fixed memory-capacity presets.
type SizeClass int

// All size classes. The address width grows by one per step.
const (
	Small  SizeClass = iota // 8GB
	Medium                  // 16GB
	Large                   // 32GB
)

// SizeClasses lists every size class from smallest to largest.
var SizeClasses = []SizeClass{Small, Medium, Large}

// DataWidth is the word width shared by all size classes.
const DataWidth = 64

const smallAddressWidth = 27

var sizeNames = [...]string{"8GB", "16GB", "32GB"}

var sizeAliases = map[string]SizeClass{
	"small":  Small,
	"medium": Medium,
	"large":  Large,
}

// Geometry is the shape of the storage array fixed by a size class.
type Geometry struct {
	DataWidth    int
	AddressWidth int
	Depth        uint64
}

// Valid reports whether s names one of the known size classes.
func (s SizeClass) Valid() bool {
	return s >= Small && s <= Large
}

func (s SizeClass) String() string {
	if !s.Valid() {
		return fmt.Sprintf("SizeClass(%d)", int(s))
	}

	return sizeNames[s]
}

// Slug is the lower-case label used in module and file names.
func (s SizeClass) Slug() string {
	return strings.ToLower(s.String())
}

// Geometry returns the data width, address width and depth of the class.
func (s SizeClass) Geometry() Geometry {
	if !s.Valid() {
		panic(fmt.Sprintf("invalid size class %d", int(s)))
	}

	addressWidth := smallAddressWidth + int(s)

	return Geometry{
		DataWidth:    DataWidth,
		AddressWidth: addressWidth,
		Depth:        uint64(1) << addressWidth,
	}
}

// MarshalText encodes the size class as its label.
func (s SizeClass) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: unknown size class %d", ErrInvalidConfig, int(s))
	}

	return []byte(s.String()), nil
}

// UnmarshalText decodes a size class label.
func (s *SizeClass) UnmarshalText(text []byte) error {
	v, err := ParseSizeClass(string(text))
	if err != nil {
		return err
	}

	*s = v

	return nil
}

// ParseSizeClass accepts "8GB", "16gb", "small" and the like.
func ParseSizeClass(v string) (SizeClass, error) {
	token := strings.ToUpper(strings.TrimSpace(v))
	for i, name := range sizeNames {
		if token == name {
			return SizeClass(i), nil
		}
	}

	if s, ok := sizeAliases[strings.ToLower(token)]; ok {
		return s, nil
	}

	return Small, &FieldError{
		Field:  "size",
		Value:  v,
		Reason: "must be one of " + strings.Join(sizeNames[:], ", "),
	}
}
