// Package mapmeta reads occupancy map metadata (the YAML file written next to
// a map image by ROS map_server and similar tools) and locates the world
// origin on the image.
package mapmeta

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"map-editor/pkg/geometry"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid map metadata")

// Metadata describes how map pixels relate to world coordinates.
type Metadata struct {
	// Image is the map image file, relative to the metadata file.
	Image string `yaml:"image,omitempty"`
	// Resolution is meters per pixel.
	Resolution float64 `yaml:"resolution"`
	// Origin is the world pose [x, y, yaw] of the lower-left pixel.
	Origin []float64 `yaml:"origin,flow"`

	Negate         int     `yaml:"negate,omitempty"`
	OccupiedThresh float64 `yaml:"occupied_thresh,omitempty"`
	FreeThresh     float64 `yaml:"free_thresh,omitempty"`
	Mode           string  `yaml:"mode,omitempty"`

	path        string
	imageHeight int
	hasHeight   bool
}

// Default returns metadata with the origin at [0, 0, 0] and 1 m per pixel.
func Default() *Metadata {
	return &Metadata{Resolution: 1.0, Origin: []float64{0, 0, 0}}
}

// Parse decodes metadata from YAML. Missing keys keep their defaults.
func Parse(data []byte) (*Metadata, error) {
	m := Default()
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("failed to parse map metadata: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Load reads metadata from a YAML file.
func Load(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read map metadata: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	m.path = path
	return m, nil
}

func (m *Metadata) validate() error {
	if m.Resolution <= 0 {
		return fmt.Errorf("%w: resolution must be positive, got %v", ErrInvalid, m.Resolution)
	}
	switch len(m.Origin) {
	case 2:
		m.Origin = append(m.Origin, 0)
	case 3:
	default:
		return fmt.Errorf("%w: origin needs [x, y, yaw], got %d values", ErrInvalid, len(m.Origin))
	}
	return nil
}

// Path returns the file the metadata was loaded from.
func (m *Metadata) Path() string {
	return m.path
}

// ImagePath resolves Image against the metadata file location.
func (m *Metadata) ImagePath() string {
	if m.Image == "" || filepath.IsAbs(m.Image) || m.path == "" {
		return m.Image
	}
	return filepath.Join(filepath.Dir(m.path), m.Image)
}

// SetImageHeight records the height of the image the metadata applies to.
// Pixel positions are unknown until it is set.
func (m *Metadata) SetImageHeight(height int) {
	m.imageHeight = height
	m.hasHeight = true
}

// OriginPixel returns the pixel holding the world origin. It reports false
// until the image height is known.
func (m *Metadata) OriginPixel() (image.Point, bool) {
	if !m.hasHeight {
		return image.Point{}, false
	}
	px := -m.Origin[0] / m.Resolution
	py := float64(m.imageHeight) - (-m.Origin[1] / m.Resolution)
	return image.Pt(int(px), int(py)), true
}

// AxesPixelLines returns the world X axis (pointing right) and Y axis
// (pointing up the image) as segments of length pixels starting at the
// origin pixel.
func (m *Metadata) AxesPixelLines(length float64) (xAxis, yAxis geometry.Segment, ok bool) {
	o, ok := m.OriginPixel()
	if !ok {
		return geometry.Segment{}, geometry.Segment{}, false
	}
	origin := geometry.Pt(float64(o.X), float64(o.Y))
	xAxis = geometry.Segment{A: origin, B: origin.Add(geometry.Pt(length, 0))}
	yAxis = geometry.Segment{A: origin, B: origin.Add(geometry.Pt(0, -length))}
	return xAxis, yAxis, true
}

// PixelToWorld converts an image position to world meters, ignoring yaw.
func (m *Metadata) PixelToWorld(p geometry.Point2D) (x, y float64, ok bool) {
	if !m.hasHeight {
		return 0, 0, false
	}
	x = p.X*m.Resolution + m.Origin[0]
	y = (float64(m.imageHeight)-p.Y)*m.Resolution + m.Origin[1]
	return x, y, true
}
