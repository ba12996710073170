package processor

import (
	"errors"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
)

type ExifAnalysis struct {
	Make     string
	Model    string
	Captured string
}

// Camera joins make and model, dropping the make when the model already
// repeats it.
func (a ExifAnalysis) Camera() string {
	if a.Make == "" || strings.HasPrefix(strings.ToLower(a.Model), strings.ToLower(a.Make)) {
		return a.Model
	}
	return strings.TrimSpace(a.Make + " " + a.Model)
}

// analyzeExif locates the EXIF block anywhere in data and flattens its tags.
// Files without EXIF yield an empty analysis and no error.
func analyzeExif(data []byte) (ExifAnalysis, error) {
	analysis := ExifAnalysis{}

	raw, err := exif.SearchAndExtractExif(data)
	if err != nil {
		if errors.Is(err, exif.ErrNoExif) {
			return analysis, nil
		}
		return analysis, err
	}

	tags, _, err := exif.GetFlatExifData(raw, nil)
	if err != nil {
		return analysis, err
	}

	for _, tag := range tags {
		value := strings.TrimSpace(strings.TrimRight(tag.FormattedFirst, "\x00"))
		switch tag.TagName {
		case "Make":
			analysis.Make = value
		case "Model":
			analysis.Model = value
		case "DateTimeOriginal":
			analysis.Captured = value
		case "DateTime":
			if analysis.Captured == "" {
				analysis.Captured = value
			}
		}
	}

	return analysis, nil
}
