// Package common provides common utilities for disc image operations.
// This file contains sector arithmetic helpers.
package common

import "fmt"

// GetSizeInSectors calculates the number of sectors needed for a given size in bytes
func GetSizeInSectors(sizeBytes, sectorSize int64) int64 {
	return (sizeBytes + sectorSize - 1) / sectorSize
}

// SectorOffset returns the absolute byte offset of a sector
func SectorOffset(sector uint32, sectorSize int64) int64 {
	return int64(sector) * sectorSize
}

// IsSectorAligned reports whether size is a whole number of sectors
func IsSectorAligned(sizeBytes, sectorSize int64) bool {
	return sizeBytes%sectorSize == 0
}

// FormatSize renders a byte count using binary units
func FormatSize(sizeBytes int64) string {
	const unit = 1024
	if sizeBytes < unit {
		return fmt.Sprintf("%d B", sizeBytes)
	}
	div, exp := int64(unit), 0
	for n := sizeBytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %ciB", float64(sizeBytes)/float64(div), "KMGTPE"[exp])
}
