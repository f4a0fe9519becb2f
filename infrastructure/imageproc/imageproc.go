// Package imageproc decodes uploaded images, reads their EXIF block and
// shrinks oversized ones before they are stored.
package imageproc

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrEmptyImage  = errors.New("image is empty")
	ErrUndecodable = errors.New("image could not be decoded")
	ErrNotAnImage  = errors.New("data is not an image")
)

// formats imaging can decode and re-encode
var encodeFormats = map[string]imaging.Format{
	"image/jpeg": imaging.JPEG,
	"image/png":  imaging.PNG,
	"image/gif":  imaging.GIF,
	"image/tiff": imaging.TIFF,
	"image/bmp":  imaging.BMP,
}

// DecodeBase64 accepts raw base64 or a data URL and returns the bytes with
// the detected mime type.
func DecodeBase64(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		i := strings.Index(s, ",")
		if i < 0 {
			return nil, "", ErrUndecodable
		}
		s = s[i+1:]
	}
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return nil, "", ErrEmptyImage
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		// unpadded input from some browsers
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
		if err != nil {
			return nil, "", ErrUndecodable
		}
	}
	if len(data) == 0 {
		return nil, "", ErrEmptyImage
	}

	mime := DetectMIME(data)
	if !strings.HasPrefix(mime, "image/") {
		return nil, "", ErrNotAnImage
	}
	return data, mime, nil
}

func DetectMIME(data []byte) string {
	return mimetype.Detect(data).String()
}

// Processed is an image ready for storage.
type Processed struct {
	Data    []byte
	MIME    string
	Width   int
	Height  int
	Resized bool
}

// Fit decodes data and scales it down so neither side exceeds maxDim.
// Images within bounds are returned byte for byte so their metadata
// survives. Formats imaging cannot decode (webp, heic) pass through with
// unknown dimensions.
func Fit(data []byte, maxDim int) (Processed, error) {
	if len(data) == 0 {
		return Processed{}, ErrEmptyImage
	}
	mime := DetectMIME(data)
	if !strings.HasPrefix(mime, "image/") {
		return Processed{}, ErrNotAnImage
	}
	out := Processed{Data: data, MIME: mime}

	format, ok := encodeFormats[mime]
	if !ok {
		return out, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return Processed{}, ErrUndecodable
	}
	b := img.Bounds()
	out.Width, out.Height = b.Dx(), b.Dy()

	if maxDim <= 0 || (out.Width <= maxDim && out.Height <= maxDim) {
		return out, nil
	}

	resized := imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format, imaging.JPEGQuality(85)); err != nil {
		return Processed{}, err
	}
	out.Data = buf.Bytes()
	out.Width, out.Height = dims(resized)
	out.Resized = true
	return out, nil
}

func dims(img image.Image) (int, int) {
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

// Extension returns a file extension for a mime type, ".bin" when unknown.
func Extension(mime string) string {
	if m := mimetype.Lookup(mime); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	return ".bin"
}
