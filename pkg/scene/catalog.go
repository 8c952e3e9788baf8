package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnknownScene is returned when a name matches neither a built-in scene nor a scene file
var ErrUnknownScene = errors.New("unknown scene")

// Scene source types
const (
	TypeBuiltin = "builtin"
	TypeJSON    = "json"
)

// SceneInfo describes a scene that can be rendered by name
type SceneInfo struct {
	ID          string `json:"id"`          // Name used on the command line
	DisplayName string `json:"displayName"` // Human friendly name
	Description string `json:"description"` // Optional description
	Type        string `json:"type"`        // "builtin" or "json"
	FilePath    string `json:"filePath"`    // Path to the scene file (json type only)
}

// DefaultRandomSeed drives the layout of the random spheres scene
const DefaultRandomSeed = 42

var builtinScenes = []struct {
	info  SceneInfo
	build func() *Scene
}{
	{
		info:  SceneInfo{ID: "default", DisplayName: "Default", Description: "Diffuse sphere on a ground sphere"},
		build: NewDefaultScene,
	},
	{
		info:  SceneInfo{ID: "materials", DisplayName: "Materials", Description: "Diffuse, hollow glass and fuzzy metal spheres"},
		build: func() *Scene { return NewMaterialsScene(false) },
	},
	{
		info:  SceneInfo{ID: "materials-dof", DisplayName: "Materials (Depth of Field)", Description: "Materials scene through a wide aperture"},
		build: func() *Scene { return NewMaterialsScene(true) },
	},
	{
		info:  SceneInfo{ID: "random", DisplayName: "Random Spheres", Description: "Field of random small spheres around three large ones"},
		build: func() *Scene { return NewRandomSpheresScene(DefaultRandomSeed) },
	},
}

// BuiltinScenes lists the scenes compiled into the binary
func BuiltinScenes() []SceneInfo {
	infos := make([]SceneInfo, 0, len(builtinScenes))
	for _, b := range builtinScenes {
		info := b.info
		info.Type = TypeBuiltin
		infos = append(infos, info)
	}
	return infos
}

// ListJSONScenes scans dir for *.json scene files.
// A missing directory is not an error.
func ListJSONScenes(dir string) ([]SceneInfo, error) {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return []SceneInfo{}, nil
		}
		return nil, err
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	scenes := make([]SceneInfo, 0, len(files))
	for _, filePath := range files {
		scenes = append(scenes, jsonSceneInfo(filePath))
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})
	return scenes, nil
}

// ListAllScenes returns built-in scenes first, then scene files from dir
func ListAllScenes(dir string) ([]SceneInfo, error) {
	jsonScenes, err := ListJSONScenes(dir)
	if err != nil {
		return nil, err
	}
	return append(BuiltinScenes(), jsonScenes...), nil
}

// Load resolves name as a built-in scene, a path to a .json file,
// or the base name of a .json file inside dir, in that order.
func Load(name, dir string) (*Scene, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrUnknownScene)
	}

	for _, b := range builtinScenes {
		if b.info.ID == name {
			return b.build(), nil
		}
	}

	path := name
	if !strings.HasSuffix(strings.ToLower(name), ".json") {
		path = filepath.Join(dir, name+".json")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScene, name)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	s, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build scene %s: %w", path, err)
	}
	return s, nil
}

// jsonSceneInfo reads the name and description from a scene file, falling back to the file name
func jsonSceneInfo(filePath string) SceneInfo {
	base := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	info := SceneInfo{
		ID:          base,
		DisplayName: titleCase(base),
		Type:        TypeJSON,
		FilePath:    filePath,
	}

	cfg, err := LoadConfig(filePath)
	if err != nil {
		return info
	}
	if cfg.Name != "" {
		info.DisplayName = cfg.Name
	}
	info.Description = cfg.Description
	return info
}

// titleCase converts a filename-style string to title case
// e.g., "glass-shell" -> "Glass Shell"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}

	return strings.Join(words, " ")
}
