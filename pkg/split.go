// Package pkg provides functionality for processing Xbox disc images.
// This file contains the split planner used for images above the storage ceiling.
package pkg

import (
	"errors"
	"fmt"

	"github.com/hansbonini/xisotools/pkg/common"
)

// MaxImageSize is the largest image kept as a single file (4 GiB)
const MaxImageSize int64 = 4294967296

// ErrMisalignedSize indicates an image whose size is not a whole number of sectors
var ErrMisalignedSize = errors.New("image size is not a multiple of the sector size")

// SplitPlan describes where an image is divided into two sector-aligned fragments
type SplitPlan struct {
	SectorSize   int64
	TotalSize    int64
	TotalSectors int64
	SplitSector  int64
}

// PlanSplit bisects an image by sector count
func PlanSplit(totalSize, sectorSize int64) (*SplitPlan, error) {
	if sectorSize <= 0 {
		return nil, fmt.Errorf("invalid sector size %d", sectorSize)
	}
	if !common.IsSectorAligned(totalSize, sectorSize) {
		return nil, fmt.Errorf("%w: %d bytes, sector size %d", ErrMisalignedSize, totalSize, sectorSize)
	}

	totalSectors := common.GetSizeInSectors(totalSize, sectorSize)
	plan := &SplitPlan{
		SectorSize:   sectorSize,
		TotalSize:    totalSize,
		TotalSectors: totalSectors,
		SplitSector:  (totalSectors + 1) / 2,
	}
	common.LogDebug(common.DebugSplitPlan, plan.TotalSectors, plan.SplitSector)
	return plan, nil
}

// FirstSize is the byte length of the first fragment
func (p *SplitPlan) FirstSize() int64 {
	return p.SplitSector * p.SectorSize
}

// SecondSize is the byte length of the second fragment
func (p *SplitPlan) SecondSize() int64 {
	return p.TotalSize - p.FirstSize()
}

// NeedsSplit reports whether an image of size bytes exceeds maxSize.
// An image of exactly maxSize bytes is still kept whole.
func NeedsSplit(size, maxSize int64) bool {
	return size > maxSize
}
