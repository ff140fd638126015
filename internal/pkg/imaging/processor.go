package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// ProcessedIcon is a reward icon resized for the game client
type ProcessedIcon struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// Config for icon processing
type Config struct {
	MaxWidth  int // default 512
	MaxHeight int // default 512
	Quality   int // JPEG quality 1-100 (default 85)
}

// DefaultConfig returns default processing config
func DefaultConfig() Config {
	return Config{
		MaxWidth:  512,
		MaxHeight: 512,
		Quality:   85,
	}
}

// Processor handles reward icon processing
type Processor struct {
	config Config
}

// NewProcessor creates icon processor
func NewProcessor(config Config) *Processor {
	return &Processor{config: config}
}

// Process decodes an uploaded image and resizes it to fit the icon bounds
func (p *Processor) Process(reader io.Reader) (*ProcessedIcon, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	resized := img
	if img.Bounds().Dx() > p.config.MaxWidth || img.Bounds().Dy() > p.config.MaxHeight {
		resized = imaging.Fit(img, p.config.MaxWidth, p.config.MaxHeight, imaging.Lanczos)
	}

	encoded, err := p.encode(resized, format)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &ProcessedIcon{
		Data:        encoded,
		ContentType: mimeFromFormat(format),
		Width:       resized.Bounds().Dx(),
		Height:      resized.Bounds().Dy(),
	}, nil
}

// ValidateType checks if file is a valid image type
func ValidateType(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return true
	default:
		return false
	}
}

// MaxFileSize in bytes (5MB)
const MaxFileSize int64 = 5 * 1024 * 1024

func (p *Processor) encode(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	default:
		// Default to JPEG for other formats
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.config.Quality}); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

func mimeFromFormat(format string) string {
	// Matches encode: PNG stays PNG, everything else is re-encoded as JPEG.
	if format == "png" {
		return "image/png"
	}
	return "image/jpeg"
}
