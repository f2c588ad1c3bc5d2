package xbox

import (
	"fmt"
	"io"
	"strings"

	"github.com/hansbonini/xisotools/pkg/common"
)

// ReadSector reads exactly sectorSize bytes of the given sector.
// A truncated source is reported as an error instead of zero padding.
func ReadSector(source io.ReaderAt, sectorSize int64, sectorIndex uint32) ([]byte, error) {
	offset := common.SectorOffset(sectorIndex, sectorSize)
	data, err := common.ReadBytesAt(source, offset, int(sectorSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read sector %d at offset 0x%X: %w", sectorIndex, offset, err)
	}
	return data, nil
}

// ParseVolume reads the volume descriptor of an XDVDFS image.
// When the signature does not match it returns ok == false and a nil error,
// leaving the caller to decide how to treat a foreign image.
func ParseVolume(source io.ReaderAt) (*VolumeInfo, bool, error) {
	sector, err := ReadSector(source, SectorSize, VolumeDescriptorSector)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", common.ErrFailedToReadVolume, err)
	}

	if err := common.ValidateMagic(sector, VolumeMagic); err != nil {
		return nil, false, nil
	}

	// The descriptor is a whole sector so these reads cannot fail
	rootSector, _ := common.Uint32LEAt(sector, RootDirSectorOffset)
	rootSize, _ := common.Uint32LEAt(sector, RootDirSizeOffset)

	info := &VolumeInfo{
		SectorSize:    SectorSize,
		RootDirSector: rootSector,
		RootDirSize:   rootSize,
	}
	common.LogDebug(common.DebugVolumeInfo, info.RootDirSector, info.RootDirSize, info.SectorSize)

	return info, true, nil
}

// Reader provides access to the directory tree and file data of an XDVDFS image
type Reader struct {
	source io.ReaderAt
	info   *VolumeInfo
}

// NewReader parses the volume descriptor of source.
// It fails with ErrNotXDVDFS when the signature does not match.
func NewReader(source io.ReaderAt) (*Reader, error) {
	info, ok, err := ParseVolume(source)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotXDVDFS
	}
	return &Reader{source: source, info: info}, nil
}

// Info returns the parsed volume descriptor
func (r *Reader) Info() *VolumeInfo {
	return r.info
}

// Walk starts a new single-use traversal of the directory tree
func (r *Reader) Walk() *Walker {
	return NewWalker(r.source, r.info)
}

// FindFile returns the first non-directory entry whose name matches name
// case-insensitively. A missing file is not an error: it returns nil, nil.
func (r *Reader) FindFile(name string) (*DirectoryEntry, error) {
	for entry, err := range r.Walk().All() {
		if err != nil {
			return nil, err
		}
		if !entry.Directory && strings.EqualFold(entry.Name, name) {
			return entry, nil
		}
	}
	return nil, nil
}

// ReadFile reads the whole data of an entry into memory
func (r *Reader) ReadFile(entry *DirectoryEntry) ([]byte, error) {
	data, err := common.ReadBytesAt(r.source, entry.Position, int(entry.Size))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s at offset 0x%X: %w", entry.Path, entry.Position, err)
	}
	return data, nil
}

// ExtractTo streams the data of an entry into w
func (r *Reader) ExtractTo(w io.Writer, entry *DirectoryEntry) (int64, error) {
	n, err := common.CopyRange(w, r.source, entry.Position, int64(entry.Size))
	if err != nil {
		return n, fmt.Errorf("failed to extract %s at offset 0x%X: %w", entry.Path, entry.Position, err)
	}
	return n, nil
}
