package xbox

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestReadSector(t *testing.T) {
	img := newTestImage(34)
	copy(img.data[33*SectorSize:], "sector 33")

	data, err := ReadSector(img.reader(), SectorSize, 33)
	if err != nil {
		t.Fatalf("ReadSector() failed: %v", err)
	}
	if len(data) != SectorSize {
		t.Errorf("ReadSector() returned %d bytes, want %d", len(data), SectorSize)
	}
	if !bytes.HasPrefix(data, []byte("sector 33")) {
		t.Errorf("ReadSector() = %q..., want prefix %q", data[:9], "sector 33")
	}
}

func TestReadSector_Truncated(t *testing.T) {
	data := make([]byte, 33*SectorSize+100)

	if _, err := ReadSector(bytes.NewReader(data), SectorSize, 33); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadSector() error = %v, want io.ErrUnexpectedEOF", err)
	}
	if _, err := ReadSector(bytes.NewReader(data), SectorSize, 40); err == nil {
		t.Error("ReadSector() past the end should fail")
	}
}

func TestParseVolume(t *testing.T) {
	img := newTestImage(33)
	img.setVolume(0x1234, 0x800)

	info, ok, err := ParseVolume(img.reader())
	if err != nil {
		t.Fatalf("ParseVolume() failed: %v", err)
	}
	if !ok {
		t.Fatal("ParseVolume() should accept a valid descriptor")
	}

	want := VolumeInfo{SectorSize: 2048, RootDirSector: 0x1234, RootDirSize: 0x800}
	if *info != want {
		t.Errorf("ParseVolume() = %+v, want %+v", *info, want)
	}
	if got := info.RootPosition(); got != 0x1234*2048 {
		t.Errorf("RootPosition() = 0x%X, want 0x%X", got, 0x1234*2048)
	}
}

func TestParseVolume_NotXDVDFS(t *testing.T) {
	testCases := []struct {
		name  string
		magic string
	}{
		{"empty", ""},
		{"iso9660", "\x01CD001\x01"},
		{"lowercase", "microsoft*xbox*media"},
		{"one byte off", "MICROSOFT*XBOX*MEDIX"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			img := newTestImage(33)
			copy(img.data[VolumeDescriptorSector*SectorSize:], tc.magic)
			source := newCountingReader(img.data)

			info, ok, err := ParseVolume(source)
			if err != nil {
				t.Fatalf("ParseVolume() error = %v, want nil", err)
			}
			if ok || info != nil {
				t.Errorf("ParseVolume() = %v, %v, want nil, false", info, ok)
			}
			if len(source.reads) != 1 || source.reads[VolumeDescriptorSector*SectorSize] != 1 {
				t.Errorf("ParseVolume() should read only the descriptor sector, reads = %v", source.reads)
			}
		})
	}
}

func TestParseVolume_ShortImage(t *testing.T) {
	_, ok, err := ParseVolume(bytes.NewReader(make([]byte, 1000)))
	if err == nil || ok {
		t.Errorf("ParseVolume() = %v, %v, want an error for a truncated image", ok, err)
	}
}

func TestNewReader_NotXDVDFS(t *testing.T) {
	img := newTestImage(33)
	if _, err := NewReader(img.reader()); !errors.Is(err, ErrNotXDVDFS) {
		t.Errorf("NewReader() error = %v, want ErrNotXDVDFS", err)
	}
}

func TestReader_FindFile(t *testing.T) {
	reader, err := NewReader(sampleImage(t).reader())
	if err != nil {
		t.Fatalf("NewReader() failed: %v", err)
	}

	testCases := []struct {
		name       string
		query      string
		wantPath   string
		wantSector uint32
	}{
		{"exact", "default.xbe", "./default.xbe", 40},
		{"case insensitive", "DEFAULT.XBE", "./default.xbe", 40},
		{"nested", "a.bin", "./media/sub/a.bin", 44},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			entry, err := reader.FindFile(tc.query)
			if err != nil {
				t.Fatalf("FindFile() failed: %v", err)
			}
			if entry == nil {
				t.Fatalf("FindFile(%q) found nothing", tc.query)
			}
			if entry.Path != tc.wantPath || entry.Sector != tc.wantSector {
				t.Errorf("FindFile(%q) = %s @%d, want %s @%d", tc.query, entry.Path, entry.Sector, tc.wantPath, tc.wantSector)
			}
		})
	}
}

func TestReader_FindFile_Absent(t *testing.T) {
	reader, err := NewReader(sampleImage(t).reader())
	if err != nil {
		t.Fatalf("NewReader() failed: %v", err)
	}

	for _, query := range []string{"missing.xbe", "media", "sub"} {
		entry, err := reader.FindFile(query)
		if err != nil {
			t.Errorf("FindFile(%q) failed: %v", query, err)
		}
		if entry != nil {
			t.Errorf("FindFile(%q) = %s, want nil", query, entry.Path)
		}
	}
}

func TestReader_ReadFileAndExtract(t *testing.T) {
	reader, err := NewReader(sampleImage(t).reader())
	if err != nil {
		t.Fatalf("NewReader() failed: %v", err)
	}
	entry, err := reader.FindFile("intro.xmv")
	if err != nil || entry == nil {
		t.Fatalf("FindFile() = %v, %v", entry, err)
	}

	data, err := reader.ReadFile(entry)
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	if !bytes.Equal(data, bytes.Repeat([]byte{0xCD}, 5000)) {
		t.Error("ReadFile() returned unexpected content")
	}

	var out bytes.Buffer
	n, err := reader.ExtractTo(&out, entry)
	if err != nil || n != 5000 {
		t.Fatalf("ExtractTo() = %d, %v, want 5000, nil", n, err)
	}
	if !bytes.Equal(out.Bytes(), data) {
		t.Error("ExtractTo() content differs from ReadFile()")
	}
}

func TestReader_ReadFile_PastEnd(t *testing.T) {
	reader, err := NewReader(sampleImage(t).reader())
	if err != nil {
		t.Fatalf("NewReader() failed: %v", err)
	}
	entry := &DirectoryEntry{Path: "./huge.bin", Sector: 47, Position: 47 * SectorSize, Size: 3 * SectorSize}

	if _, err := reader.ReadFile(entry); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadFile() error = %v, want io.ErrUnexpectedEOF", err)
	}
}
