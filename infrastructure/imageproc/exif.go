package imageproc

import (
	"errors"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
)

// tags kept on the photo row
var keptTags = []string{
	"Make",
	"Model",
	"LensModel",
	"Software",
	"DateTimeOriginal",
	"ExposureTime",
	"FNumber",
	"ISOSpeedRatings",
	"FocalLength",
	"FocalLengthIn35mmFilm",
	"Flash",
	"WhiteBalance",
	"Orientation",
}

type Metadata struct {
	Make  string
	Model string
	Tags  map[string]string
}

// Empty reports whether no tag was found.
func (m Metadata) Empty() bool {
	return len(m.Tags) == 0
}

// ReadExif extracts a flat tag map from the image. An image without EXIF
// gives empty metadata and no error.
func ReadExif(data []byte) (Metadata, error) {
	md := Metadata{Tags: map[string]string{}}

	raw, err := exif.SearchAndExtractExif(data)
	if err != nil {
		if errors.Is(err, exif.ErrNoExif) {
			return md, nil
		}
		return md, err
	}

	entries, _, err := exif.GetFlatExifData(raw, nil)
	if err != nil {
		return md, err
	}

	all := make(map[string]string, len(entries))
	for _, tag := range entries {
		if tag.TagName == "" {
			continue
		}
		v := strings.TrimSpace(strings.ReplaceAll(tag.FormattedFirst, "\x00", ""))
		if v == "" {
			continue
		}
		// first IFD wins; thumbnails repeat some tags
		if _, seen := all[tag.TagName]; !seen {
			all[tag.TagName] = v
		}
	}
	for _, name := range keptTags {
		if v, ok := all[name]; ok {
			md.Tags[name] = v
		}
	}

	md.Make = md.Tags["Make"]
	md.Model = CleanModel(md.Make, md.Tags["Model"])
	return md, nil
}

// CleanModel drops a repeated manufacturer prefix, e.g. "Canon Canon EOS R5"
// style model strings some bodies write.
func CleanModel(manufacturer, model string) string {
	model = strings.TrimSpace(model)
	manufacturer = strings.TrimSpace(manufacturer)
	if manufacturer == "" {
		return model
	}
	if len(model) > len(manufacturer) && strings.EqualFold(model[:len(manufacturer)], manufacturer) {
		if rest := strings.TrimSpace(model[len(manufacturer):]); rest != "" {
			return rest
		}
	}
	return model
}
