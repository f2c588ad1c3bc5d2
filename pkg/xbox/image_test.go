package xbox

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// testRecord is a directory record placed at a given slot of a table
type testRecord struct {
	left, right  uint16
	sector, size uint32
	attr         uint8
	name         string
}

// encodeTable builds a directory table of size bytes; slots not listed stay 0xFF
func encodeTable(t *testing.T, size int, records map[uint16]testRecord) []byte {
	t.Helper()
	table := bytes.Repeat([]byte{0xFF}, size)
	for slot, r := range records {
		base := int(slot) * recordAlignment
		if base+recordHeaderSize+len(r.name) > size {
			t.Fatalf("record %q at slot %d does not fit in %d bytes", r.name, slot, size)
		}
		binary.LittleEndian.PutUint16(table[base:], r.left)
		binary.LittleEndian.PutUint16(table[base+2:], r.right)
		binary.LittleEndian.PutUint32(table[base+4:], r.sector)
		binary.LittleEndian.PutUint32(table[base+8:], r.size)
		table[base+12] = r.attr
		table[base+13] = byte(len(r.name))
		copy(table[base+14:], r.name)
	}
	return table
}

// testImage is an in-memory XDVDFS image
type testImage struct {
	data []byte
}

func newTestImage(sectors int) *testImage {
	return &testImage{data: make([]byte, sectors*SectorSize)}
}

func (img *testImage) setVolume(rootSector, rootSize uint32) {
	descriptor := img.data[VolumeDescriptorSector*SectorSize:]
	copy(descriptor, VolumeMagic)
	binary.LittleEndian.PutUint32(descriptor[RootDirSectorOffset:], rootSector)
	binary.LittleEndian.PutUint32(descriptor[RootDirSizeOffset:], rootSize)
}

func (img *testImage) put(sector uint32, data []byte) {
	copy(img.data[int(sector)*SectorSize:], data)
}

func (img *testImage) reader() *bytes.Reader {
	return bytes.NewReader(img.data)
}

// countingReader records every ReadAt offset
type countingReader struct {
	r     *bytes.Reader
	reads map[int64]int
}

func newCountingReader(data []byte) *countingReader {
	return &countingReader{r: bytes.NewReader(data), reads: make(map[int64]int)}
}

func (c *countingReader) ReadAt(p []byte, off int64) (int, error) {
	c.reads[off]++
	return c.r.ReadAt(p, off)
}

// sampleImage lays out:
//
//	./default.xbe        (sector 40, 300 bytes)
//	./media/             (table at sector 34)
//	./media/intro.xmv    (sector 41, 5000 bytes)
//	./media/sub/         (table at sector 35)
//	./media/sub/a.bin    (sector 44, 10 bytes)
//	./readme.txt         (sector 45, 4 bytes)
func sampleImage(t *testing.T) *testImage {
	t.Helper()
	img := newTestImage(48)

	root := encodeTable(t, SectorSize, map[uint16]testRecord{
		0:  {left: 8, right: 16, sector: 34, size: SectorSize, attr: AttrDirectory, name: "MEDIA"},
		8:  {sector: 40, size: 300, attr: AttrNormal, name: "default.xbe"},
		16: {sector: 45, size: 4, attr: AttrArchive, name: "ReadMe.TXT"},
	})
	media := encodeTable(t, SectorSize, map[uint16]testRecord{
		0:  {right: 8, sector: 41, size: 5000, attr: AttrArchive, name: "intro.xmv"},
		8:  {sector: 35, size: SectorSize, attr: AttrDirectory, name: "sub"},
	})
	sub := encodeTable(t, SectorSize, map[uint16]testRecord{
		0: {sector: 44, size: 10, attr: AttrReadOnly, name: "a.bin"},
	})

	img.setVolume(33, SectorSize)
	img.put(33, root)
	img.put(34, media)
	img.put(35, sub)
	img.put(40, bytes.Repeat([]byte{0xAB}, 300))
	img.put(41, bytes.Repeat([]byte{0xCD}, 5000))
	img.put(44, []byte("0123456789"))
	img.put(45, []byte("text"))
	return img
}
