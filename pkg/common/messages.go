package common

import (
	"fmt"
	"log"
)

// Global variable to control debug output
var VerboseMode bool = false

// SetVerboseMode enables or disables verbose/debug output
func SetVerboseMode(verbose bool) {
	VerboseMode = verbose
}

// Error messages
const (
	ErrFailedToOpenImage        = "failed to open image file"
	ErrFailedToStatImage        = "failed to stat image file"
	ErrFailedToReadVolume       = "failed to read volume descriptor"
	ErrFailedToReadDirTable     = "failed to read directory table"
	ErrFailedToReadEntry        = "failed to read directory entry"
	ErrFailedToCreateOutputDir  = "failed to create output directory"
	ErrFailedToCreateOutputFile = "failed to create output file"
	ErrFailedToWriteAttachXBE   = "failed to write attach XBE"
	ErrFailedToLoadAttachXBE    = "failed to load attach XBE"
	ErrFailedToExtractXBE       = "failed to extract default XBE"
	ErrFailedToInjectXBE        = "failed to inject XBE certificate"
	ErrFailedToRemoveTempXBE    = "failed to remove temporary XBE"
	ErrFailedToMoveImage        = "failed to move image file"
	ErrFailedToWriteFragment    = "failed to write image fragment"
	ErrFailedToReadImageDir     = "failed to read image directory"
	ErrFailedToLoadConfig       = "failed to load configuration"
	ErrFailedToWriteReport      = "failed to write batch report"
	ErrUnsafeEntryName          = "unsafe directory entry name"
	ErrImageWithoutExtension    = "image file has no extension"
	ErrOutputExists             = "output file already exists"
	ErrOutputDirShared          = "output directory already used by"
)

// Info messages
const (
	InfoProcessingImage   = "Processing %s"
	InfoImageSize         = "Image %s is %s (%d sectors)"
	InfoImageNotXDVDFS    = "Skipping %s: not an XDVDFS image"
	InfoDefaultXBEFound   = "Found %s at sector %d (%d bytes)"
	InfoDefaultXBEMissing = "No %s found in %s, keeping attach XBE as is"
	InfoTitleInjected     = "Injected certificate of %q (title ID %08X)"
	InfoImageMoved        = "Moved %s -> %s"
	InfoImageSplit        = "Split %s at sector %d: %s + %s"
	InfoOriginalKept      = "Original image kept at %s"
	InfoBatchFinished     = "Processed %d image(s): %d succeeded, %d failed"
	InfoFilesDumped       = "Extracted %d file(s) to %s"
)

// Debug messages
const (
	DebugVolumeInfo      = "Volume: root sector %d, root size %d bytes, sector size %d"
	DebugEntryVisited    = "Entry %s (sector %d, size %d, attr 0x%02X)"
	DebugTerminatorSlot  = "Terminator slot at record %d of table 0x%X"
	DebugRecordRevisited = "Record %d of table 0x%X already visited, skipping"
	DebugSplitPlan       = "Split plan: %d sectors total, split at sector %d"
	DebugFragmentCopied  = "Copied %d bytes at offset %d to %s"
	DebugFileDumped      = "Extracted %s (%d bytes)"
)

// Warning messages
const (
	WarnCertificateTitle = "Could not decode certificate title: %v"
)

// Error log messages
const (
	ErrImageFailed = "Failed to process %s: %v"
)

// LogInfo logs an informational message
func LogInfo(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Printf("[INFO] "+message, args...)
	} else {
		log.Printf("[INFO] %s", message)
	}
}

// LogWarn logs a warning message
func LogWarn(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Printf("[WARN] "+message, args...)
	} else {
		log.Printf("[WARN] %s", message)
	}
}

// LogError logs an error message
func LogError(message string, args ...interface{}) {
	if len(args) > 0 {
		log.Printf("[ERROR] "+message, args...)
	} else {
		log.Printf("[ERROR] %s", message)
	}
}

// LogDebug logs a debug message (only if VerboseMode is enabled)
func LogDebug(message string, args ...interface{}) {
	if !VerboseMode {
		return
	}
	if len(args) > 0 {
		log.Printf("[DEBUG] "+message, args...)
	} else {
		log.Printf("[DEBUG] %s", message)
	}
}

// FormatError creates a formatted error with additional context
func FormatError(baseMessage string, details interface{}) error {
	if err, ok := details.(error); ok {
		return fmt.Errorf("%s: %w", baseMessage, err)
	}
	return fmt.Errorf("%s: %v", baseMessage, details)
}

// FormatErrorString creates a formatted error with string details
func FormatErrorString(baseMessage, details string, args ...interface{}) error {
	if len(args) > 0 {
		return fmt.Errorf("%s: "+details, append([]interface{}{baseMessage}, args...)...)
	}
	return fmt.Errorf("%s: %s", baseMessage, details)
}
