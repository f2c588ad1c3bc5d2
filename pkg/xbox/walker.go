package xbox

import (
	"fmt"
	"io"
	"iter"

	"github.com/hansbonini/xisotools/pkg/common"
)

// dirTable is one on-disc directory table. Its data is loaded on first use and
// then shared read-only by every frame that visits a record of the same table.
type dirTable struct {
	position int64
	size     uint32
	data     []byte
	loaded   bool
}

// frame is a pending visit of a single record
type frame struct {
	offset uint16 // record index in 4-byte units
	path   string // path of the directory owning the table
	table  *dirTable
}

type visitKey struct {
	position int64
	offset   uint16
}

// maxTableSize is the largest prefix of a directory table that record links
// can address: the last 4-byte slot plus a full header and name.
const maxTableSize = int(terminatorLink)*recordAlignment + recordHeaderSize + 0xFF

// Walker performs an iterative depth-first traversal of an XDVDFS directory tree.
// It is single-use: entries are produced as the explicit stack is consumed.
// Tables are released once no pending frame references them.
type Walker struct {
	source  io.ReaderAt
	info    *VolumeInfo
	stack   []frame
	visited map[visitKey]struct{}
	tables  map[int64]struct{}
	err     error
}

// NewWalker creates a walker seeded with the root directory table of info
func NewWalker(source io.ReaderAt, info *VolumeInfo) *Walker {
	w := &Walker{
		source:  source,
		info:    info,
		visited: make(map[visitKey]struct{}),
		tables:  make(map[int64]struct{}),
	}
	if info.RootDirSize > 0 {
		w.tables[info.RootPosition()] = struct{}{}
		w.stack = append(w.stack, frame{
			path:  ".",
			table: &dirTable{position: info.RootPosition(), size: info.RootDirSize},
		})
	}
	return w
}

// Next returns the next entry of the tree, or io.EOF once every reachable
// record has been visited. After an error the walker keeps returning it.
func (w *Walker) Next() (*DirectoryEntry, error) {
	if w.err != nil {
		return nil, w.err
	}

	for len(w.stack) > 0 {
		current := w.stack[len(w.stack)-1]
		w.stack[len(w.stack)-1] = frame{}
		w.stack = w.stack[:len(w.stack)-1]

		entry, err := w.visit(current)
		if err != nil {
			w.err = err
			w.stack = nil
			return nil, err
		}
		if entry != nil {
			return entry, nil
		}
	}

	return nil, io.EOF
}

// All adapts the walker to a range-over-func sequence.
// Iteration stops after the first error.
func (w *Walker) All() iter.Seq2[*DirectoryEntry, error] {
	return func(yield func(*DirectoryEntry, error) bool) {
		for {
			entry, err := w.Next()
			if err == io.EOF {
				return
			}
			if !yield(entry, err) || err != nil {
				return
			}
		}
	}
}

// visit decodes the record of f and pushes its siblings and children.
// It returns a nil entry for terminator slots and for records already
// reached through another link of the same table.
func (w *Walker) visit(f frame) (*DirectoryEntry, error) {
	key := visitKey{position: f.table.position, offset: f.offset}
	if _, seen := w.visited[key]; seen {
		common.LogDebug(common.DebugRecordRevisited, f.offset, f.table.position)
		return nil, nil
	}
	w.visited[key] = struct{}{}

	if !f.table.loaded {
		length := int(min(int64(f.table.size), int64(maxTableSize)))
		data, err := common.ReadBytesAt(w.source, f.table.position, length)
		if err != nil {
			return nil, fmt.Errorf("%s at 0x%X (%d bytes): %w", common.ErrFailedToReadDirTable, f.table.position, f.table.size, err)
		}
		f.table.data = data
		f.table.loaded = true
	}

	entry, err := decodeRecord(f.table.data, f.offset, w.info.SectorSize)
	if err != nil {
		return nil, fmt.Errorf("%s %d of table at 0x%X: %w", common.ErrFailedToReadEntry, f.offset, f.table.position, err)
	}
	if entry == nil {
		common.LogDebug(common.DebugTerminatorSlot, f.offset, f.table.position)
		return nil, nil
	}

	entry.Path = f.path + "/" + entry.Name
	common.LogDebug(common.DebugEntryVisited, entry.Path, entry.Sector, entry.Size, entry.Attribute)

	if entry.Left > 0 {
		w.stack = append(w.stack, frame{offset: entry.Left, path: f.path, table: f.table})
	}
	if entry.Right > 0 {
		w.stack = append(w.stack, frame{offset: entry.Right, path: f.path, table: f.table})
	}
	if entry.Directory && entry.Size > 0 {
		if _, entered := w.tables[entry.Position]; entered {
			return nil, fmt.Errorf("%w: %s points at table 0x%X already on the walk", ErrCycle, entry.Path, entry.Position)
		}
		w.tables[entry.Position] = struct{}{}
		w.stack = append(w.stack, frame{
			path:  entry.Path,
			table: &dirTable{position: entry.Position, size: entry.Size},
		})
	}

	return entry, nil
}

// decodeRecord decodes the record at index offset of a directory table.
// Layout relative to offset*4:
//
//	+0  u16 left   +2  u16 right  +4  u32 sector  +8  u32 size
//	+12 u8  attr   +13 u8  name length            +14 name
//
// A left link of 0xFFFF marks an unused slot; nil is returned for it and no
// other field of the slot is trusted.
func decodeRecord(data []byte, offset uint16, sectorSize int64) (*DirectoryEntry, error) {
	base := int(offset) * recordAlignment

	left, err := common.Uint16LEAt(data, base)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptTable, err)
	}
	if left == terminatorLink {
		return nil, nil
	}

	if base+recordHeaderSize > len(data) {
		return nil, fmt.Errorf("%w: record header at byte %d exceeds %d bytes", ErrCorruptTable, base, len(data))
	}

	right, _ := common.Uint16LEAt(data, base+2)
	sector, _ := common.Uint32LEAt(data, base+4)
	size, _ := common.Uint32LEAt(data, base+8)
	attribute := data[base+12]
	nameLength := int(data[base+13])

	nameStart := base + recordHeaderSize
	nameEnd := nameStart + nameLength
	if nameEnd > len(data) {
		return nil, fmt.Errorf("%w: name of %d bytes at byte %d exceeds %d bytes", ErrCorruptTable, nameLength, nameStart, len(data))
	}

	return &DirectoryEntry{
		Left:      left,
		Right:     right,
		Sector:    sector,
		Position:  common.SectorOffset(sector, sectorSize),
		Size:      size,
		Attribute: attribute,
		Directory: attribute&AttrDirectory != 0,
		Name:      decodeName(data[nameStart:nameEnd]),
	}, nil
}

// decodeName interprets raw name bytes as 7-bit ASCII and lowercases them
func decodeName(raw []byte) string {
	name := make([]byte, len(raw))
	for i, b := range raw {
		b &= 0x7F
		if b >= 'A' && b <= 'Z' {
			b += 'a' - 'A'
		}
		name[i] = b
	}
	return string(name)
}
