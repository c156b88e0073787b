package image

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spakin/netpbm"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

var (
	// ErrNullImage is returned when an operation needs pixels but none are loaded.
	ErrNullImage = errors.New("no image loaded")
	// ErrUnsupportedFormat is returned for file extensions with no codec.
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// Format identifies an on-disk image encoding.
type Format int

const (
	FormatUnknown Format = iota
	FormatPNG
	FormatJPEG
	FormatBMP
	FormatTIFF
	FormatGIF
	FormatPGM
	FormatPBM
	FormatPPM
)

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatJPEG:
		return "jpeg"
	case FormatBMP:
		return "bmp"
	case FormatTIFF:
		return "tiff"
	case FormatGIF:
		return "gif"
	case FormatPGM:
		return "pgm"
	case FormatPBM:
		return "pbm"
	case FormatPPM:
		return "ppm"
	default:
		return "unknown"
	}
}

var extFormats = map[string]Format{
	".png":  FormatPNG,
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".bmp":  FormatBMP,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
	".gif":  FormatGIF,
	".pgm":  FormatPGM,
	".pbm":  FormatPBM,
	".ppm":  FormatPPM,
}

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extFormats[ext]; ok {
		return f, nil
	}
	return FormatUnknown, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// Decode reads any registered image format into a new buffer. The decoder
// name reported by the image package is returned alongside.
func Decode(r io.Reader) (*Buffer, string, error) {
	img, name, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	b := FromImage(img)
	if b.IsNull() {
		return nil, name, fmt.Errorf("failed to decode image: %s image has no pixels", name)
	}
	return b, name, nil
}

// Load reads the image at path into a new buffer.
func Load(path string) (*Buffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			slog.Error("could not close image", "name", path, "error", closeErr)
		}
	}()

	b, _, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return b, nil
}

// Encode writes the buffer to w in the given format.
func (b *Buffer) Encode(w io.Writer, f Format) error {
	if b.IsNull() {
		return ErrNullImage
	}
	img := b.img

	var err error
	switch f {
	case FormatPNG:
		enc := png.Encoder{
			CompressionLevel: png.BestCompression,
			BufferPool:       pngPool,
		}
		err = enc.Encode(w, img)
	case FormatJPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
	case FormatBMP:
		err = bmp.Encode(w, img)
	case FormatTIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case FormatGIF:
		err = gif.Encode(w, img, nil)
	case FormatPGM:
		err = netpbm.Encode(w, img, &netpbm.EncodeOptions{Format: netpbm.PGM, MaxValue: 255})
	case FormatPBM:
		err = netpbm.Encode(w, img, &netpbm.EncodeOptions{Format: netpbm.PBM})
	case FormatPPM:
		err = netpbm.Encode(w, img, &netpbm.EncodeOptions{Format: netpbm.PPM, MaxValue: 255})
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
	if err != nil {
		return fmt.Errorf("could not encode %s: %w", f, err)
	}
	return nil
}

// Save encodes the buffer in the format implied by the extension of path.
// Data goes to a temporary file next to path that is renamed into place only
// once fully written, so a failed save never truncates an existing file.
func (b *Buffer) Save(path string) (err error) {
	if b.IsNull() {
		return ErrNullImage
	}
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	out, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("could not create temporary destination for %q: %w", name, err)
	}
	canRename := false
	defer func() {
		if defErr := out.Close(); defErr != nil && err == nil {
			err = fmt.Errorf("could not close temporary destination for %q: %w", name, defErr)
			canRename = false
		}
		if canRename {
			if defErr := os.Rename(out.Name(), path); defErr != nil {
				err = fmt.Errorf("could not rename destination file %q: %w", name, defErr)
			}
		}
		if err != nil {
			_ = os.Remove(out.Name())
		}
	}()

	if err = b.Encode(out, f); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err = out.Sync(); err != nil {
		return fmt.Errorf("could not flush temporary destination for %q: %w", name, err)
	}

	canRename = true
	return nil
}

// SupportedFormats returns the file extensions that can be opened and saved.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".gif", ".pgm", ".pbm", ".ppm"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	_, err := FormatFromPath(path)
	return err == nil
}

type pngEncoderBufferPool struct {
	pool sync.Pool
}

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	return p.pool.Get().(*png.EncoderBuffer)
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	p.pool.Put(buf)
}

var pngPool = &pngEncoderBufferPool{
	pool: sync.Pool{
		New: func() any {
			return &png.EncoderBuffer{}
		},
	},
}
