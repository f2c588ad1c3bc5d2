// Package xbox provides Xbox-specific disc image functionality.
// This file contains the XBE certificate reader and injector.
package xbox

import (
	"errors"
	"fmt"
	"unicode/utf16"

	"github.com/hansbonini/xisotools/pkg/common"
	"github.com/spf13/afero"
)

// XBE header and certificate layout
const (
	XBEMagic            = "XBEH"
	xbeBaseAddrOffset   = 0x104 // u32LE image base address
	xbeCertAddrOffset   = 0x118 // u32LE certificate virtual address
	xbeMinHeaderSize    = 0x11C
	certTitleIDOffset   = 0x08
	certTitleNameOffset = 0x0C
	certTitleNameSize   = 80 // 40 UTF-16LE code units
	certMediaOffset     = 0x9C
	certRegionOffset    = 0xA0
	certRatingsOffset   = 0xA4
	certDiskOffset      = 0xA8
	certVersionOffset   = 0xAC
	certMinSize         = 0xB0
)

// ErrInvalidXBE indicates a buffer that is not a usable XBE executable
var ErrInvalidXBE = errors.New("invalid XBE")

// certificateFields lists the certificate ranges copied from the original
// executable into the attach XBE.
var certificateFields = []struct {
	offset int
	size   int
}{
	{certTitleIDOffset, 4},
	{certTitleNameOffset, certTitleNameSize},
	{certMediaOffset, 4},
	{certRegionOffset, 4},
	{certRatingsOffset, 4},
	{certDiskOffset, 4},
	{certVersionOffset, 4},
}

// Certificate holds the identifying fields of an XBE certificate
type Certificate struct {
	TitleID      uint32
	TitleName    string
	AllowedMedia uint32
	GameRegion   uint32
	DiskNumber   uint32
	Version      uint32
}

// certificateOffset returns the file offset of the certificate in an XBE image
func certificateOffset(data []byte) (int, error) {
	if len(data) < xbeMinHeaderSize {
		return 0, fmt.Errorf("%w: header of %d bytes is too short", ErrInvalidXBE, len(data))
	}
	if err := common.ValidateMagic(data, XBEMagic); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidXBE, err)
	}

	base, _ := common.Uint32LEAt(data, xbeBaseAddrOffset)
	cert, _ := common.Uint32LEAt(data, xbeCertAddrOffset)
	if cert < base {
		return 0, fmt.Errorf("%w: certificate address 0x%X below base 0x%X", ErrInvalidXBE, cert, base)
	}

	offset := int64(cert - base)
	if offset+certMinSize > int64(len(data)) {
		return 0, fmt.Errorf("%w: certificate at 0x%X exceeds %d bytes", ErrInvalidXBE, offset, len(data))
	}
	return int(offset), nil
}

// ReadCertificate decodes the certificate of an XBE image
func ReadCertificate(data []byte) (*Certificate, error) {
	offset, err := certificateOffset(data)
	if err != nil {
		return nil, err
	}
	cert := data[offset:]

	titleID, _ := common.Uint32LEAt(cert, certTitleIDOffset)
	media, _ := common.Uint32LEAt(cert, certMediaOffset)
	region, _ := common.Uint32LEAt(cert, certRegionOffset)
	disk, _ := common.Uint32LEAt(cert, certDiskOffset)
	version, _ := common.Uint32LEAt(cert, certVersionOffset)

	return &Certificate{
		TitleID:      titleID,
		TitleName:    decodeTitleName(cert[certTitleNameOffset : certTitleNameOffset+certTitleNameSize]),
		AllowedMedia: media,
		GameRegion:   region,
		DiskNumber:   disk,
		Version:      version,
	}, nil
}

// decodeTitleName decodes a NUL terminated UTF-16LE title
func decodeTitleName(raw []byte) string {
	units := make([]uint16, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		unit := uint16(raw[i]) | uint16(raw[i+1])<<8
		if unit == 0 {
			break
		}
		units = append(units, unit)
	}
	return string(utf16.Decode(units))
}

// CertificateInjector copies certificate fields between XBE files
type CertificateInjector struct {
	fs afero.Fs
}

// NewCertificateInjector creates an injector working on fs
func NewCertificateInjector(fs afero.Fs) *CertificateInjector {
	return &CertificateInjector{fs: fs}
}

// Inject rewrites targetPath with the title identity of sourcePath.
// The target is replaced through a sibling temporary file,
// so it is left untouched when anything fails.
func (i *CertificateInjector) Inject(sourcePath, targetPath string) error {
	source, err := afero.ReadFile(i.fs, sourcePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", sourcePath, err)
	}
	target, err := afero.ReadFile(i.fs, targetPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", targetPath, err)
	}

	sourceOffset, err := certificateOffset(source)
	if err != nil {
		return fmt.Errorf("%s: %w", sourcePath, err)
	}
	targetOffset, err := certificateOffset(target)
	if err != nil {
		return fmt.Errorf("%s: %w", targetPath, err)
	}

	for _, field := range certificateFields {
		copy(target[targetOffset+field.offset:targetOffset+field.offset+field.size],
			source[sourceOffset+field.offset:sourceOffset+field.offset+field.size])
	}

	tempPath := targetPath + ".tmp"
	if err := afero.WriteFile(i.fs, tempPath, target, 0o644); err != nil {
		_ = i.fs.Remove(tempPath)
		return fmt.Errorf("failed to write %s: %w", tempPath, err)
	}
	if err := i.fs.Rename(tempPath, targetPath); err != nil {
		_ = i.fs.Remove(tempPath)
		return fmt.Errorf("failed to replace %s: %w", targetPath, err)
	}
	return nil
}
