package pool

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// BucketConfig describes one bucket of a pool.
type BucketConfig struct {
	BlockSize  int `yaml:"block_size"  json:"block_size"`
	BlockCount int `yaml:"block_count" json:"block_count"`
}

// Layout describes the buckets of a pool, in pool order.
type Layout struct {
	// Name for this layout (for reports and benchmarks)
	Name string `yaml:"name" json:"name"`

	// Mmap backs every arena with an anonymous mapping instead of the Go heap.
	Mmap bool `yaml:"mmap" json:"mmap"`

	Buckets []BucketConfig `yaml:"buckets" json:"buckets"`
}

// Predefined layouts.
var (
	// LayoutVector matches the two-class pool used by the vector benchmark:
	// 8-byte and 24-byte blocks.
	LayoutVector = Layout{
		Name: "Vector",
		Buckets: []BucketConfig{
			{BlockSize: 8, BlockCount: 1 << 20},
			{BlockSize: 24, BlockCount: 1 << 20},
		},
	}

	// LayoutSmall: a few kilobytes per class, for tests and demos.
	LayoutSmall = Layout{
		Name: "Small",
		Buckets: []BucketConfig{
			{BlockSize: 8, BlockCount: 256},
			{BlockSize: 32, BlockCount: 128},
			{BlockSize: 128, BlockCount: 64},
		},
	}

	// LayoutGeneral: power-of-two classes from 16 bytes to 4KB.
	LayoutGeneral = Layout{
		Name: "General",
		Buckets: []BucketConfig{
			{BlockSize: 16, BlockCount: 1 << 16},
			{BlockSize: 64, BlockCount: 1 << 14},
			{BlockSize: 256, BlockCount: 1 << 12},
			{BlockSize: 1024, BlockCount: 1 << 10},
			{BlockSize: 4096, BlockCount: 1 << 8},
		},
	}

	// DefaultLayout is used when none is specified.
	DefaultLayout = LayoutSmall
)

// Layouts returns the predefined layouts.
func Layouts() []Layout {
	return []Layout{LayoutVector, LayoutSmall, LayoutGeneral}
}

// LookupLayout returns the predefined layout with the given name, ignoring case.
func LookupLayout(name string) (Layout, bool) {
	for _, l := range Layouts() {
		if strings.EqualFold(l.Name, name) {
			return l.Clone(), true
		}
	}
	return Layout{}, false
}

// Clone returns a copy of l that shares no memory with it.
func (l Layout) Clone() Layout {
	l.Buckets = slices.Clone(l.Buckets)
	return l
}

// Capacity returns the total arena size of the layout in bytes.
func (l Layout) Capacity() int {
	total := 0
	for _, b := range l.Buckets {
		total += b.BlockSize * b.BlockCount
	}
	return total
}

// Validate checks that the layout has at least one bucket and that every
// bucket has a positive block size and count.
func (l Layout) Validate() error {
	if len(l.Buckets) == 0 {
		return fmt.Errorf("%w: no buckets", ErrBadLayout)
	}
	for i, b := range l.Buckets {
		if b.BlockSize <= 0 || b.BlockCount <= 0 {
			return fmt.Errorf("%w: bucket %d: block_size=%d block_count=%d",
				ErrBadLayout, i, b.BlockSize, b.BlockCount)
		}
	}
	return nil
}

// String returns a compact description such as "Small[8x256 32x128]".
func (l Layout) String() string {
	var sb strings.Builder
	sb.WriteString(l.Name)
	sb.WriteByte('[')
	for i, b := range l.Buckets {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%dx%d", b.BlockSize, b.BlockCount)
	}
	sb.WriteByte(']')
	return sb.String()
}

// ParseLayout decodes a YAML layout. Unknown fields are rejected.
//
//	name: custom
//	mmap: false
//	buckets:
//	  - {block_size: 8, block_count: 4096}
//	  - {block_size: 24, block_count: 4096}
func ParseLayout(data []byte) (Layout, error) {
	var l Layout
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&l); err != nil {
		return Layout{}, fmt.Errorf("%w: decoding yaml: %w", ErrBadLayout, err)
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// LoadLayout reads and parses a YAML layout file.
func LoadLayout(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("reading layout: %w", err)
	}
	l, err := ParseLayout(data)
	if err != nil {
		return Layout{}, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// EncodeLayout encodes l in the YAML form ParseLayout reads.
func EncodeLayout(l Layout) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(l); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
