package organizer

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
)

// buildJPEGWithDate writes a minimal JPEG whose APP1 segment carries a
// little-endian TIFF block with a Model tag and a DateTime tag.
func buildJPEGWithDate(path, datetime string) error {
	if len(datetime) != 19 {
		return fmt.Errorf("datetime must be 19 characters, got %q", datetime)
	}

	exifBody := buildTIFFWithDate(datetime)
	segment := append([]byte("Exif\x00\x00"), exifBody...)

	var buf bytes.Buffer
	buf.Write([]byte{0xff, 0xd8})
	buf.Write([]byte{0xff, 0xe1})
	_ = binary.Write(&buf, binary.BigEndian, uint16(len(segment)+2))
	buf.Write(segment)
	buf.Write([]byte{0xff, 0xd9})

	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func buildTIFFWithDate(datetime string) []byte {
	var tiff bytes.Buffer
	tiff.Write([]byte{0x49, 0x49, 0x2a, 0x00})
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(8))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(2))
	// Tag 0x0110 Model, ASCII, stored at offset 38.
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(0x0110))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(2))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(8))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(38))
	// Tag 0x0132 DateTime, ASCII, stored at offset 46.
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(0x0132))
	_ = binary.Write(&tiff, binary.LittleEndian, uint16(2))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(20))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(46))
	_ = binary.Write(&tiff, binary.LittleEndian, uint32(0))
	tiff.Write([]byte("TestCam\x00"))
	tiff.Write(append([]byte(datetime), 0x00))
	return tiff.Bytes()
}
