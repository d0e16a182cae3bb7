package scene

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnknownScene     = errors.New("scene: unknown scene")
	ErrMeshPathRequired = errors.New("scene: mesh path required")
)

// Info describes a built-in scene
type Info struct {
	ID          string // Unique identifier
	Name        string // Display name
	Description string
	Group       string // Grouping category
	NeedsMesh   bool   // Load requires Options.MeshPath
}

// Group is a named set of related scenes
type Group struct {
	Name   string
	Scenes []Info
}

// Options parameterize scene construction
type Options struct {
	MeshPath string  // PLY file for mesh scenes
	Time     float32 // Animation time in seconds
}

type builder func(opts Options) (*Scene, error)

type entry struct {
	info  Info
	build builder
}

const (
	groupProcedural = "Procedural"
	groupTriangles  = "Triangles"
)

var (
	proceduralSpheresInfo = Info{
		ID:          "procedural-spheres",
		Name:        "Procedural Spheres",
		Description: "Grid of instanced sphere pairs resolved by intersection shaders",
		Group:       groupProcedural,
	}
	cubesInfo = Info{
		ID:          "cubes",
		Name:        "Cubes",
		Description: "Rotated triangle cubes with back-face culling and barycentric shading",
		Group:       groupTriangles,
	}
	meshInfo = Info{
		ID:          "mesh",
		Name:        "PLY Mesh",
		Description: "Triangle mesh loaded from a PLY file",
		Group:       groupTriangles,
		NeedsMesh:   true,
	}
)

var registry = []entry{
	{info: proceduralSpheresInfo, build: NewProceduralSpheresScene},
	{info: cubesInfo, build: NewCubesScene},
	{info: meshInfo, build: NewMeshScene},
}

// List returns every built-in scene in registration order
func List() []Info {
	infos := make([]Info, len(registry))
	for i, e := range registry {
		infos[i] = e.info
	}
	return infos
}

// Names returns the IDs of every built-in scene
func Names() []string {
	names := make([]string, len(registry))
	for i, e := range registry {
		names[i] = e.info.ID
	}
	return names
}

// Grouped returns the scenes grouped by category, groups sorted by name
func Grouped() []Group {
	groupMap := make(map[string][]Info)
	for _, e := range registry {
		groupMap[e.info.Group] = append(groupMap[e.info.Group], e.info)
	}

	var groupNames []string
	for name := range groupMap {
		groupNames = append(groupNames, name)
	}
	sort.Strings(groupNames)

	groups := make([]Group, 0, len(groupNames))
	for _, name := range groupNames {
		groups = append(groups, Group{Name: name, Scenes: groupMap[name]})
	}
	return groups
}

// Lookup returns the description of a scene
func Lookup(id string) (Info, error) {
	for _, e := range registry {
		if e.info.ID == id {
			return e.info, nil
		}
	}
	return Info{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownScene, id, strings.Join(Names(), ", "))
}

// Load builds a scene by ID
func Load(id string, opts Options) (*Scene, error) {
	for _, e := range registry {
		if e.info.ID != id {
			continue
		}
		if e.info.NeedsMesh && opts.MeshPath == "" {
			return nil, fmt.Errorf("%w for %s", ErrMeshPathRequired, id)
		}
		s, err := e.build(opts)
		if err != nil {
			return nil, fmt.Errorf("scene %s: %w", id, err)
		}
		stats := s.Stats()
		logger.Infof("loaded %s: %d instances, %d primitives", id, stats.Instances, stats.Primitives)
		return s, nil
	}
	_, err := Lookup(id)
	return nil, err
}

// titleCase converts a filename-style string to title case
// e.g., "happy-buddha" -> "Happy Buddha"
func titleCase(s string) string {
	// Replace hyphens and underscores with spaces
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	// Title case each word
	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
