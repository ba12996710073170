package imgutil

import (
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Kind identifies an image container by its magic bytes.
type Kind int

const (
	KindUnknown Kind = iota
	KindJPEG
	KindPNG
	KindTIFF
	KindGIF
	KindWebP
	KindBMP
	KindJXL
)

// HeaderSize is the number of leading bytes DetectHeader needs to tell every
// kind apart.
const HeaderSize = 12

func (k Kind) String() string {
	switch k {
	case KindJPEG:
		return "jpeg"
	case KindPNG:
		return "png"
	case KindTIFF:
		return "tiff"
	case KindGIF:
		return "gif"
	case KindWebP:
		return "webp"
	case KindBMP:
		return "bmp"
	case KindJXL:
		return "jxl"
	default:
		return "unknown"
	}
}

// IsRaster reports whether k is a source format the compressor accepts.
func (k Kind) IsRaster() bool {
	return k != KindUnknown && k != KindJXL
}

var (
	pngSig        = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	jpegSig       = []byte{0xff, 0xd8, 0xff}
	tiffSigLE     = []byte{0x49, 0x49, 0x2a, 0x00}
	tiffSigBE     = []byte{0x4d, 0x4d, 0x00, 0x2a}
	gif87Sig      = []byte("GIF87a")
	gif89Sig      = []byte("GIF89a")
	riffSig       = []byte("RIFF")
	webpSig       = []byte("WEBP")
	bmpSig        = []byte("BM")
	jxlCodestream = []byte{0xff, 0x0a}
	jxlContainer  = []byte{0x00, 0x00, 0x00, 0x0c, 'J', 'X', 'L', ' ', 0x0d, 0x0a, 0x87, 0x0a}
)

// DetectHeader inspects up to HeaderSize leading bytes of a file for known
// signatures.
func DetectHeader(header []byte) (Kind, error) {
	if len(header) < 2 {
		return KindUnknown, errors.New("header too short")
	}

	switch {
	case hasPrefix(header, jpegSig):
		return KindJPEG, nil
	case hasPrefix(header, pngSig):
		return KindPNG, nil
	case hasPrefix(header, tiffSigLE), hasPrefix(header, tiffSigBE):
		return KindTIFF, nil
	case hasPrefix(header, gif87Sig), hasPrefix(header, gif89Sig):
		return KindGIF, nil
	case hasPrefix(header, riffSig) && len(header) >= 12 && hasPrefix(header[8:], webpSig):
		return KindWebP, nil
	case hasPrefix(header, jxlCodestream), hasPrefix(header, jxlContainer):
		return KindJXL, nil
	case hasPrefix(header, bmpSig):
		return KindBMP, nil
	}

	return KindUnknown, nil
}

// SniffFile reads the leading bytes of a file to determine its type.
func SniffFile(fsys afero.Fs, path string) (Kind, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return KindUnknown, err
	}
	defer f.Close()

	return SniffReader(f)
}

// SniffReader reads up to HeaderSize bytes from r and determines its type.
// Files shorter than HeaderSize are still classified from what is there.
func SniffReader(r io.Reader) (Kind, error) {
	header := make([]byte, HeaderSize)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return KindUnknown, err
	}

	return DetectHeader(header[:n])
}

// KindForExt guesses a kind from a file extension, for files whose content
// cannot be sniffed.
func KindForExt(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return KindJPEG
	case ".png":
		return KindPNG
	case ".tif", ".tiff":
		return KindTIFF
	case ".gif":
		return KindGIF
	case ".webp":
		return KindWebP
	case ".bmp":
		return KindBMP
	case ".jxl":
		return KindJXL
	default:
		return KindUnknown
	}
}

func hasPrefix(buf, prefix []byte) bool {
	if len(buf) < len(prefix) {
		return false
	}
	for i := range prefix {
		if buf[i] != prefix[i] {
			return false
		}
	}
	return true
}
