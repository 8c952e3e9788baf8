package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/itarato/pathtracer/pkg/renderer"
	"github.com/itarato/pathtracer/pkg/scene"
)

// Server handles web requests for the path tracer
type Server struct {
	port      int
	scenesDir string
	logger    *log.Logger
}

// NewServer creates a new web server
func NewServer(port int, scenesDir string) *Server {
	return &Server{port: port, scenesDir: scenesDir, logger: log.Default()}
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene   string `json:"scene"`   // Built-in scene id or scene file name
	Width   int    `json:"width"`   // Image width, 0 keeps the scene's
	Height  int    `json:"height"`  // Image height, 0 keeps the scene's
	Samples int    `json:"samples"` // Samples per pixel
	Depth   int    `json:"depth"`   // Maximum bounce depth
	Bits    int    `json:"bits"`    // PNG channel depth
	Seed    int64  `json:"seed"`    // Random seed
}

// Handler returns the API routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/scenes", s.handleScenes)
	mux.HandleFunc("GET /api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("GET /api/render", s.handleRender)
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in and file scenes
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := scene.ListAllScenes(s.scenesDir)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, scenes)
}

// handleSceneConfig returns the default sampling configuration for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = "default"
	}

	sceneObj, err := s.loadScene(sceneName)
	if err != nil {
		writeJSON(w, statusForSceneError(err), map[string]string{"error": err.Error()})
		return
	}

	config := sceneObj.GetSamplingConfig()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"scene": sceneName,
		"defaults": map[string]int{
			"width":           config.Width,
			"height":          config.Height,
			"samplesPerPixel": config.SamplesPerPixel,
			"maxDepth":        config.MaxDepth,
		},
		"spheres": sceneObj.GetPrimitiveCount(),
	})
}

// handleRender renders a scene and responds with a PNG.
// A client disconnect cancels the render between tiles.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("Invalid request: %v", err)})
		return
	}

	sceneObj, err := s.loadScene(req.Scene)
	if err != nil {
		writeJSON(w, statusForSceneError(err), map[string]string{"error": err.Error()})
		return
	}

	if err := sceneObj.SetSamplingConfig(req.applyTo(sceneObj.GetSamplingConfig())); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	renderID := uuid.NewString()
	parallelConfig := renderer.DefaultParallelConfig()
	parallelConfig.Seed = req.Seed
	logger := NewRenderLogger(renderID, s.logger)

	fb, stats, err := renderer.NewParallelRenderer(sceneObj, parallelConfig, logger).Render(r.Context())
	if err != nil {
		logger.Printf("Render aborted: %v", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Render-Id", renderID)
	w.Header().Set("X-Render-Samples", strconv.Itoa(stats.TotalSamples))
	if err := fb.WritePNG(w, renderer.BitDepth(req.Bits)); err != nil {
		logger.Printf("Failed to write image: %v", err)
	}
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{Scene: query.Get("scene")}
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	// Zero keeps the scene's own setting
	if req.Width, err = parseIntParam(query, "width", 0, 0, 2000); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(query, "height", 0, 0, 2000); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(query, "samples", 0, 0, 10000); err != nil {
		return nil, err
	}
	if req.Depth, err = parseIntParam(query, "depth", 0, 0, 1000); err != nil {
		return nil, err
	}
	if req.Bits, err = parseIntParam(query, "bits", 8, 8, 16); err != nil {
		return nil, err
	}
	if err := renderer.BitDepth(req.Bits).Validate(); err != nil {
		return nil, err
	}
	seed, err := parseIntParam(query, "seed", int(renderer.DefaultSeed), 0, 1<<31-1)
	if err != nil {
		return nil, err
	}
	req.Seed = int64(seed)

	// Performance warning
	if req.Width*req.Height > 800*600 && req.Samples > 100 {
		s.logger.Printf("Render warning: Large image with high samples may render slowly")
	}

	return req, nil
}

// applyTo overrides every setting the request gives a positive value
func (req *RenderRequest) applyTo(config scene.SamplingConfig) scene.SamplingConfig {
	if req.Width > 0 {
		config.Width = req.Width
	}
	if req.Height > 0 {
		config.Height = req.Height
	}
	if req.Samples > 0 {
		config.SamplesPerPixel = req.Samples
	}
	if req.Depth > 0 {
		config.MaxDepth = req.Depth
	}
	return config
}

// loadScene only resolves names listed in the catalog, so requests cannot reach files outside scenesDir
func (s *Server) loadScene(name string) (*scene.Scene, error) {
	scenes, err := scene.ListAllScenes(s.scenesDir)
	if err != nil {
		return nil, err
	}
	for _, info := range scenes {
		if info.ID != name {
			continue
		}
		if info.Type == scene.TypeJSON {
			return scene.Load(info.FilePath, s.scenesDir)
		}
		return scene.Load(info.ID, s.scenesDir)
	}
	return nil, fmt.Errorf("%w: %s", scene.ErrUnknownScene, name)
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func statusForSceneError(err error) int {
	if errors.Is(err, scene.ErrUnknownScene) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
