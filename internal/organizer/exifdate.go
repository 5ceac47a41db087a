package organizer

import (
	"os"
	"time"

	exif "github.com/dsoprea/go-exif/v3"
)

var imageExts = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "bmp": true,
	"tif": true, "tiff": true, "webp": true, "heic": true, "heif": true,
}

func isImageExt(ext string) bool {
	return imageExts[ext]
}

const exifTimeLayout = "2006:01:02 15:04:05"

// captureMonth names the YYYY-MM folder for an image, preferring the
// EXIF capture date and falling back to the file's mtime.
func captureMonth(path string) string {
	if t, ok := exifDate(path); ok {
		return t.Format("2006-01")
	}
	if info, err := os.Stat(path); err == nil {
		return info.ModTime().Format("2006-01")
	}
	return "undated"
}

func exifDate(path string) (time.Time, bool) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, false
	}
	defer f.Close()

	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(f, nil, true)
	if err != nil {
		return time.Time{}, false
	}

	var fallback string
	for _, tag := range tags {
		switch tag.TagName {
		case "DateTimeOriginal":
			if t, err := time.Parse(exifTimeLayout, tag.FormattedFirst); err == nil {
				return t, true
			}
		case "DateTimeDigitized", "DateTime":
			if fallback == "" {
				fallback = tag.FormattedFirst
			}
		}
	}
	if fallback != "" {
		if t, err := time.Parse(exifTimeLayout, fallback); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
