// Package xbox provides Xbox-specific disc image functionality.
// This file contains XDVDFS structures and layout constants.
package xbox

import "errors"

// XDVDFS layout constants
const (
	SectorSize             = 2048                   // Bytes per sector
	VolumeDescriptorSector = 32                     // Sector holding the volume descriptor
	VolumeMagic            = "MICROSOFT*XBOX*MEDIA" // Signature at the start of the descriptor
	RootDirSectorOffset    = 0x14                   // u32LE root directory table sector
	RootDirSizeOffset      = 0x18                   // u32LE root directory table size

	recordHeaderSize = 14     // left, right, sector, size, attribute, name length
	recordAlignment  = 4      // record offsets are expressed in 4-byte units
	terminatorLink   = 0xFFFF // left link of an unused slot
)

// Directory entry attribute bits
const (
	AttrReadOnly  = 0x01
	AttrHidden    = 0x02
	AttrSystem    = 0x04
	AttrDirectory = 0x10
	AttrArchive   = 0x20
	AttrNormal    = 0x80
)

var (
	// ErrNotXDVDFS indicates the image does not carry the XDVDFS signature
	ErrNotXDVDFS = errors.New("not an XDVDFS image")

	// ErrCorruptTable indicates a directory record that runs past its table
	ErrCorruptTable = errors.New("corrupt directory table")

	// ErrCycle indicates a directory links to a table the walk has already entered
	ErrCycle = errors.New("directory table linked more than once")
)

// VolumeInfo describes the root of an XDVDFS volume
type VolumeInfo struct {
	SectorSize    int64  // Bytes per sector
	RootDirSector uint32 // Sector of the root directory table
	RootDirSize   uint32 // Size of the root directory table in bytes
}

// RootPosition returns the absolute byte offset of the root directory table
func (v *VolumeInfo) RootPosition() int64 {
	return int64(v.RootDirSector) * v.SectorSize
}

// DirectoryEntry represents a file or directory found while walking the tree
type DirectoryEntry struct {
	Left      uint16 // Record index of the left sibling (0 = none)
	Right     uint16 // Record index of the right sibling (0 = none)
	Sector    uint32 // First sector of the entry data
	Position  int64  // Absolute byte offset of the entry data
	Size      uint32 // Size of the entry data in bytes
	Attribute uint8  // Attribute bitmask
	Directory bool   // Whether this entry is a directory
	Name      string // Lowercased name
	Path      string // Path from the root, e.g. "./media/intro.xmv"
}
