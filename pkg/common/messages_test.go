// Package common provides tests for message and logging functionality
package common

import (
	"bytes"
	"errors"
	"io"
	"log"
	"os"
	"strings"
	"testing"
)

func TestSetVerboseMode(t *testing.T) {
	// Test enabling verbose mode
	SetVerboseMode(true)
	if !VerboseMode {
		t.Error("SetVerboseMode(true) should enable verbose mode")
	}

	// Test disabling verbose mode
	SetVerboseMode(false)
	if VerboseMode {
		t.Error("SetVerboseMode(false) should disable verbose mode")
	}
}

func TestLogDebug_VerboseEnabled(t *testing.T) {
	// Capture log output
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr) // Restore default output

	// Enable verbose mode
	SetVerboseMode(true)

	// Test debug logging
	testMessage := "Test debug message with value: %d"
	LogDebug(testMessage, 42)

	output := buf.String()
	if !strings.Contains(output, "Test debug message with value: 42") {
		t.Errorf("LogDebug output should contain formatted message, got: %q", output)
	}
}

func TestLogDebug_VerboseDisabled(t *testing.T) {
	// Capture log output
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr) // Restore default output

	// Disable verbose mode
	SetVerboseMode(false)

	// Test debug logging (should be silent)
	LogDebug("This should not appear", 42)

	output := buf.String()
	if output != "" {
		t.Errorf("LogDebug should be silent when verbose mode is disabled, got: %q", output)
	}
}

func TestLogInfo(t *testing.T) {
	// Capture log output
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr) // Restore default output

	// Test info logging
	testMessage := "Test info message with value: %s"
	LogInfo(testMessage, "test")

	output := buf.String()
	if !strings.Contains(output, "Test info message with value: test") {
		t.Errorf("LogInfo output should contain formatted message, got: %q", output)
	}
}

func TestLogWarn(t *testing.T) {
	// Capture log output
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr) // Restore default output

	// Test warning logging
	testMessage := "Test warning message with value: %d"
	LogWarn(testMessage, 123)

	output := buf.String()
	if !strings.Contains(output, "Test warning message with value: 123") {
		t.Errorf("LogWarn output should contain formatted message, got: %q", output)
	}
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	LogError(ErrImageFailed, "/games/Halo.iso", errors.New("short read"))

	output := buf.String()
	expected := "[ERROR] Failed to process /games/Halo.iso: short read"
	if !strings.Contains(output, expected) {
		t.Errorf("LogError() output = %q, want it to contain %q", output, expected)
	}
}

func TestFormatError(t *testing.T) {
	testCases := []struct {
		name     string
		details  interface{}
		expected string
		wrapped  error
	}{
		{"wrapped error", io.ErrUnexpectedEOF, "failed to move image file: unexpected EOF", io.ErrUnexpectedEOF},
		{"nil error", error(nil), "failed to move image file: <nil>", nil},
		{"plain value", "/games/Halo", "failed to move image file: /games/Halo", nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := FormatError(ErrFailedToMoveImage, tc.details)
			if err.Error() != tc.expected {
				t.Errorf("FormatError() = %q, want %q", err.Error(), tc.expected)
			}
			if tc.wrapped != nil && !errors.Is(err, tc.wrapped) {
				t.Errorf("FormatError() should wrap %v", tc.wrapped)
			}
		})
	}
}

func TestFormatErrorString(t *testing.T) {
	err := FormatErrorString(ErrOutputExists, "%s (from %s)", "/games/x/game.iso", "/games/x.ISO")
	expected := "output file already exists: /games/x/game.iso (from /games/x.ISO)"
	if err.Error() != expected {
		t.Errorf("FormatErrorString() = %q, want %q", err.Error(), expected)
	}

	err = FormatErrorString(ErrImageWithoutExtension, "/games/image")
	if err.Error() != "image file has no extension: /games/image" {
		t.Errorf("FormatErrorString() without args = %q", err.Error())
	}
}

func TestErrorConstants(t *testing.T) {
	// Test that error constants are not empty
	errorConstants := map[string]string{
		"ErrFailedToOpenImage":        ErrFailedToOpenImage,
		"ErrFailedToStatImage":        ErrFailedToStatImage,
		"ErrFailedToReadVolume":       ErrFailedToReadVolume,
		"ErrFailedToReadDirTable":     ErrFailedToReadDirTable,
		"ErrFailedToReadEntry":        ErrFailedToReadEntry,
		"ErrFailedToCreateOutputDir":  ErrFailedToCreateOutputDir,
		"ErrFailedToCreateOutputFile": ErrFailedToCreateOutputFile,
		"ErrFailedToWriteAttachXBE":   ErrFailedToWriteAttachXBE,
		"ErrFailedToLoadAttachXBE":    ErrFailedToLoadAttachXBE,
		"ErrFailedToExtractXBE":       ErrFailedToExtractXBE,
		"ErrFailedToInjectXBE":        ErrFailedToInjectXBE,
		"ErrFailedToRemoveTempXBE":    ErrFailedToRemoveTempXBE,
		"ErrFailedToMoveImage":        ErrFailedToMoveImage,
		"ErrFailedToWriteFragment":    ErrFailedToWriteFragment,
		"ErrFailedToReadImageDir":     ErrFailedToReadImageDir,
		"ErrFailedToLoadConfig":       ErrFailedToLoadConfig,
		"ErrFailedToWriteReport":      ErrFailedToWriteReport,
		"ErrUnsafeEntryName":          ErrUnsafeEntryName,
		"ErrImageWithoutExtension":    ErrImageWithoutExtension,
		"ErrOutputExists":             ErrOutputExists,
		"ErrOutputDirShared":          ErrOutputDirShared,
	}

	for name, value := range errorConstants {
		if value == "" {
			t.Errorf("Error constant %s should not be empty", name)
		}
		if len(value) < 10 {
			t.Errorf("Error constant %s seems too short: %q", name, value)
		}
	}
}

func TestInfoConstants(t *testing.T) {
	// Test that info constants carry a format verb for the image name
	infoConstants := map[string]string{
		"InfoProcessingImage": InfoProcessingImage,
		"InfoImageNotXDVDFS":  InfoImageNotXDVDFS,
		"InfoOriginalKept":    InfoOriginalKept,
	}

	for name, value := range infoConstants {
		if !strings.Contains(value, "%s") {
			t.Errorf("Info constant %s should contain %%s, got %q", name, value)
		}
	}
}

// Test logging with multiple arguments
func TestLogFunctions_MultipleArgs(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	// Test with multiple format arguments
	LogInfo("Test with multiple args: %d, %s, %v", 42, "text", true)

	output := buf.String()
	expected := "Test with multiple args: 42, text, true"
	if !strings.Contains(output, expected) {
		t.Errorf("LogInfo with multiple args should contain %q, got: %q", expected, output)
	}
}

// Test logging with no format arguments
func TestLogFunctions_NoArgs(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	// Test with no format arguments
	LogInfo("Simple message without formatting")

	output := buf.String()
	expected := "Simple message without formatting"
	if !strings.Contains(output, expected) {
		t.Errorf("LogInfo without args should contain %q, got: %q", expected, output)
	}
}

// Test VerboseMode as global variable
func TestVerboseMode_GlobalVariable(t *testing.T) {
	// Test initial state
	originalMode := VerboseMode
	defer SetVerboseMode(originalMode) // Restore original state

	// Test direct assignment
	VerboseMode = true
	if !VerboseMode {
		t.Error("Direct assignment VerboseMode = true should work")
	}

	VerboseMode = false
	if VerboseMode {
		t.Error("Direct assignment VerboseMode = false should work")
	}
}
