package loaders

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/df07/go-rtpipeline/pkg/geometry"
	"github.com/df07/go-rtpipeline/pkg/log"
	"github.com/go-gl/mathgl/mgl32"
)

var logger = log.New("loaders")

var ErrInvalidPLY = errors.New("loaders: invalid PLY data")

// PLYHeader represents the parsed header information from a PLY file
type PLYHeader struct {
	Format   string // "binary_little_endian", "binary_big_endian", or "ascii"
	Version  string // Usually "1.0"
	Elements []PLYElement
}

// PLYElement is one element declaration and its properties, in file order
type PLYElement struct {
	Name       string
	Count      int
	Properties []PLYProperty
}

// PLYProperty represents a property definition in the PLY header
type PLYProperty struct {
	Name     string
	Type     string
	IsList   bool
	ListType string // For list properties, the type of the count
	DataType string // For list properties, the type of the data
}

// Element returns the element with the given name
func (h *PLYHeader) Element(name string) (PLYElement, bool) {
	for _, e := range h.Elements {
		if e.Name == name {
			return e, true
		}
	}
	return PLYElement{}, false
}

// hasProperty reports whether the element declares a scalar property
func (e PLYElement) hasProperty(name string) bool {
	for _, p := range e.Properties {
		if p.Name == name && !p.IsList {
			return true
		}
	}
	return false
}

// PLYData contains the mesh loaded from a PLY file
type PLYData struct {
	Vertices []mgl32.Vec3 // Vertex positions (x, y, z)
	Normals  []mgl32.Vec3 // Per-vertex normals - empty if not present
	Colors   []mgl32.Vec3 // Per-vertex colors normalized to [0,1] - empty if not present
	Faces    []uint32     // Triangle indices (3 per triangle), polygons fan-triangulated
}

// TriangleCount returns the number of triangles
func (d *PLYData) TriangleCount() int {
	return len(d.Faces) / 3
}

// Geometry returns the mesh as an indexed triangle geometry
func (d *PLYData) Geometry(flags geometry.Flags) *geometry.TriangleGeometry {
	return geometry.NewTriangleGeometry(d.Vertices, d.Faces, flags)
}

// Bounds returns the smallest box containing every vertex
func (d *PLYData) Bounds() (lo, hi mgl32.Vec3) {
	if len(d.Vertices) == 0 {
		return lo, hi
	}
	lo, hi = d.Vertices[0], d.Vertices[0]
	for _, v := range d.Vertices[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = min(lo[i], v[i])
			hi[i] = max(hi[i], v[i])
		}
	}
	return lo, hi
}

// LoadPLY loads a PLY file
func LoadPLY(filename string) (*PLYData, error) {
	startTime := time.Now()

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PLY file: %w", err)
	}
	defer file.Close()

	data, err := ReadPLY(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	logger.Infof("loaded PLY data: %d vertices, %d triangles in %v",
		len(data.Vertices), data.TriangleCount(), time.Since(startTime))
	return data, nil
}

// ReadPLY parses an ASCII or binary PLY stream
func ReadPLY(r io.Reader) (*PLYData, error) {
	reader := bufio.NewReaderSize(r, 1024*1024) // 1MB buffer

	header, err := parsePLYHeader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PLY header: %w", err)
	}

	var values propertyReader
	switch header.Format {
	case "ascii":
		scanner := bufio.NewScanner(reader)
		scanner.Split(bufio.ScanWords)
		values = &asciiPropertyReader{scanner: scanner}
	case "binary_little_endian":
		values = &binaryPropertyReader{reader: reader, order: binary.LittleEndian}
	case "binary_big_endian":
		values = &binaryPropertyReader{reader: reader, order: binary.BigEndian}
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidPLY, header.Format)
	}

	vertexElement, ok := header.Element("vertex")
	if !ok {
		return nil, fmt.Errorf("%w: no vertex element", ErrInvalidPLY)
	}

	data := &PLYData{Vertices: make([]mgl32.Vec3, 0, vertexElement.Count)}
	if vertexElement.hasProperty("nx") {
		data.Normals = make([]mgl32.Vec3, 0, vertexElement.Count)
	}
	if vertexElement.hasProperty("red") || vertexElement.hasProperty("r") {
		data.Colors = make([]mgl32.Vec3, 0, vertexElement.Count)
	}

	// Elements are stored in header order
	for _, element := range header.Elements {
		for i := 0; i < element.Count; i++ {
			switch element.Name {
			case "vertex":
				err = readVertex(values, element.Properties, data)
			case "face":
				err = readFace(values, element.Properties, data, vertexElement.Count)
			default:
				err = skipElement(values, element.Properties)
			}
			if err != nil {
				return nil, fmt.Errorf("%s %d: %w", element.Name, i, err)
			}
		}
	}

	return data, nil
}

// parsePLYHeader reads header lines up to and including end_header, leaving
// the reader at the first byte of the body
func parsePLYHeader(reader *bufio.Reader) (*PLYHeader, error) {
	header := &PLYHeader{}
	var current *PLYElement

	first := true
	for {
		raw, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("%w: header not terminated: %v", ErrInvalidPLY, err)
		}
		line := strings.TrimSpace(raw)

		if first {
			if line != "ply" {
				return nil, fmt.Errorf("%w: missing ply magic", ErrInvalidPLY)
			}
			first = false
			continue
		}
		if line == "end_header" {
			break
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "format":
			if len(parts) < 3 {
				return nil, fmt.Errorf("%w: invalid format line", ErrInvalidPLY)
			}
			header.Format = parts[1]
			header.Version = parts[2]
		case "comment", "obj_info":
			// Ignore comments
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("%w: invalid element line", ErrInvalidPLY)
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("%w: invalid element count: %s", ErrInvalidPLY, parts[2])
			}
			header.Elements = append(header.Elements, PLYElement{Name: parts[1], Count: count})
			current = &header.Elements[len(header.Elements)-1]
		case "property":
			if current == nil {
				return nil, fmt.Errorf("%w: property before element", ErrInvalidPLY)
			}
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, err
			}
			current.Properties = append(current.Properties, prop)
		default:
			return nil, fmt.Errorf("%w: unknown header keyword %q", ErrInvalidPLY, parts[0])
		}
	}

	if header.Format == "" {
		return nil, fmt.Errorf("%w: missing format", ErrInvalidPLY)
	}
	return header, nil
}

// parsePLYProperty parses a property line from the PLY header
func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) < 2 {
		return PLYProperty{}, fmt.Errorf("%w: invalid property definition", ErrInvalidPLY)
	}

	prop := PLYProperty{}

	if parts[0] == "list" {
		if len(parts) < 4 {
			return PLYProperty{}, fmt.Errorf("%w: invalid list property definition", ErrInvalidPLY)
		}
		prop.IsList = true
		prop.ListType = parts[1]
		prop.DataType = parts[2]
		prop.Name = parts[3]
		if getTypeSize(prop.ListType) == 0 || getTypeSize(prop.DataType) == 0 {
			return PLYProperty{}, fmt.Errorf("%w: unsupported list types %s %s", ErrInvalidPLY, prop.ListType, prop.DataType)
		}
	} else {
		prop.Type = parts[0]
		prop.Name = parts[1]
		if getTypeSize(prop.Type) == 0 {
			return PLYProperty{}, fmt.Errorf("%w: unsupported data type %s", ErrInvalidPLY, prop.Type)
		}
	}

	return prop, nil
}

func readVertex(values propertyReader, props []PLYProperty, data *PLYData) error {
	var position, normal, color mgl32.Vec3

	for _, prop := range props {
		if prop.IsList {
			if _, err := readList(values, prop); err != nil {
				return err
			}
			continue
		}

		value, err := values.read(prop.Type)
		if err != nil {
			return err
		}

		switch prop.Name {
		case "x":
			position[0] = float32(value)
		case "y":
			position[1] = float32(value)
		case "z":
			position[2] = float32(value)
		case "nx":
			normal[0] = float32(value)
		case "ny":
			normal[1] = float32(value)
		case "nz":
			normal[2] = float32(value)
		case "red", "r":
			color[0] = colorComponent(prop.Type, value)
		case "green", "g":
			color[1] = colorComponent(prop.Type, value)
		case "blue", "b":
			color[2] = colorComponent(prop.Type, value)
		}
	}

	data.Vertices = append(data.Vertices, position)
	if data.Normals != nil {
		data.Normals = append(data.Normals, normal)
	}
	if data.Colors != nil {
		data.Colors = append(data.Colors, color)
	}
	return nil
}

// colorComponent converts 8-bit colors to [0,1] and passes float colors through
func colorComponent(dataType string, value float64) float32 {
	switch dataType {
	case "uchar", "uint8":
		return float32(value / 255.0)
	default:
		return float32(value)
	}
}

func readFace(values propertyReader, props []PLYProperty, data *PLYData, vertexCount int) error {
	for _, prop := range props {
		if !prop.IsList {
			if _, err := values.read(prop.Type); err != nil {
				return err
			}
			continue
		}

		indices, err := readList(values, prop)
		if err != nil {
			return err
		}
		if prop.Name != "vertex_indices" && prop.Name != "vertex_index" {
			continue
		}

		for _, index := range indices {
			if index < 0 || int(index) >= vertexCount || index != math.Trunc(index) {
				return fmt.Errorf("%w: vertex index %v out of range", ErrInvalidPLY, index)
			}
		}
		// Fan triangulation; faces with fewer than three vertices are dropped
		for k := 1; k+1 < len(indices); k++ {
			data.Faces = append(data.Faces, uint32(indices[0]), uint32(indices[k]), uint32(indices[k+1]))
		}
	}
	return nil
}

func skipElement(values propertyReader, props []PLYProperty) error {
	for _, prop := range props {
		var err error
		if prop.IsList {
			_, err = readList(values, prop)
		} else {
			_, err = values.read(prop.Type)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func readList(values propertyReader, prop PLYProperty) ([]float64, error) {
	count, err := values.read(prop.ListType)
	if err != nil {
		return nil, err
	}
	if count < 0 || count != math.Trunc(count) {
		return nil, fmt.Errorf("%w: invalid list length %v", ErrInvalidPLY, count)
	}

	list := make([]float64, int(count))
	for i := range list {
		if list[i], err = values.read(prop.DataType); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// propertyReader decodes one scalar value of a PLY data type
type propertyReader interface {
	read(dataType string) (float64, error)
}

type asciiPropertyReader struct {
	scanner *bufio.Scanner
}

func (a *asciiPropertyReader) read(dataType string) (float64, error) {
	if !a.scanner.Scan() {
		if err := a.scanner.Err(); err != nil {
			return 0, err
		}
		return 0, io.ErrUnexpectedEOF
	}
	value, err := strconv.ParseFloat(a.scanner.Text(), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad %s value %q", ErrInvalidPLY, dataType, a.scanner.Text())
	}
	return value, nil
}

type binaryPropertyReader struct {
	reader *bufio.Reader
	order  binary.ByteOrder
	buf    [8]byte
}

func (b *binaryPropertyReader) read(dataType string) (float64, error) {
	size := getTypeSize(dataType)
	if size == 0 {
		return 0, fmt.Errorf("%w: unsupported data type %s", ErrInvalidPLY, dataType)
	}
	data := b.buf[:size]
	if _, err := io.ReadFull(b.reader, data); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return 0, err
	}

	switch dataType {
	case "char", "int8":
		return float64(int8(data[0])), nil
	case "uchar", "uint8":
		return float64(data[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(data))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(data)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(data))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(data)), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(data))), nil
	default: // double
		return math.Float64frombits(b.order.Uint64(data)), nil
	}
}

// getTypeSize returns the size in bytes of a PLY data type, or 0 if unknown
func getTypeSize(dataType string) int {
	switch dataType {
	case "float", "float32", "int", "int32", "uint", "uint32":
		return 4
	case "double", "float64":
		return 8
	case "short", "int16", "ushort", "uint16":
		return 2
	case "char", "int8", "uchar", "uint8":
		return 1
	default:
		return 0
	}
}
