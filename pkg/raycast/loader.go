package raycast

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"drrcast/pkg/geometry"
)

// LoadRaw reads a volume from a flat binary file in z-major voxel order,
// the layout produced by most CT export tools. The element type names the
// on-disk sample format; multi-byte samples are little-endian. Supported
// element types are "uint8", "uint16", "float32" and "float64".
func LoadRaw(path string, nx, ny, nz int, spacing geometry.Vec, element string) (*Volume, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading raw volume: %w", err)
	}

	n := nx * ny * nz
	var elemSize int
	switch element {
	case "uint8":
		elemSize = 1
	case "uint16":
		elemSize = 2
	case "float32":
		elemSize = 4
	case "float64":
		elemSize = 8
	default:
		return nil, fmt.Errorf("unsupported raw element type %q", element)
	}
	if len(raw) != n*elemSize {
		return nil, fmt.Errorf("raw volume %s: got %d bytes, want %d for %dx%dx%d %s",
			path, len(raw), n*elemSize, nx, ny, nz, element)
	}

	data := make([]float64, n)
	switch element {
	case "uint8":
		for i := 0; i < n; i++ {
			data[i] = float64(raw[i])
		}
	case "uint16":
		for i := 0; i < n; i++ {
			data[i] = float64(binary.LittleEndian.Uint16(raw[2*i:]))
		}
	case "float32":
		for i := 0; i < n; i++ {
			data[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:])))
		}
	case "float64":
		for i := 0; i < n; i++ {
			data[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[8*i:]))
		}
	}

	return NewVolumeFromData(data, nx, ny, nz, spacing)
}
