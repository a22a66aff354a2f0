package catalog

import (
	"encoding/json"
	"log"
	"os"
	"strings"
)

// ImageResolver maps image file names to the URL the browser should load.
type ImageResolver struct {
	cloud      map[string]string
	staticPath string
}

// NewImageResolver creates a resolver using cloud (file name to hosted URL)
// and falling back to files under staticPath.
func NewImageResolver(cloud map[string]string, staticPath string) *ImageResolver {
	if cloud == nil {
		cloud = map[string]string{}
	}
	return &ImageResolver{cloud: cloud, staticPath: strings.TrimRight(staticPath, "/")}
}

// LoadImageResolver reads the JSON map written by the image upload script.
// A missing or unreadable map yields a resolver with no hosted images.
func LoadImageResolver(mapPath, staticPath string) *ImageResolver {
	cloud := map[string]string{}
	data, err := os.ReadFile(mapPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Could not read image map %s: %v", mapPath, err)
		}
		return NewImageResolver(cloud, staticPath)
	}
	if err := json.Unmarshal(data, &cloud); err != nil {
		log.Printf("Ignoring malformed image map %s: %v", mapPath, err)
		cloud = map[string]string{}
	}
	return NewImageResolver(cloud, staticPath)
}

// URL resolves name. Absolute http(s) URLs pass through unchanged.
func (r *ImageResolver) URL(name string) string {
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		return name
	}
	if r == nil {
		return "/static/" + strings.TrimLeft(name, "/")
	}
	if url, ok := r.cloud[name]; ok {
		return url
	}
	return r.staticPath + "/" + strings.TrimLeft(name, "/")
}
