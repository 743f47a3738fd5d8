package mesh

import (
	"path/filepath"
	"strings"
	"sync"
)

// Cache loads each asset once. Formats without a loader (.glb, .fbx) and
// OBJ files that fail to parse render as a unit box.
type Cache struct {
	mu    sync.Mutex
	items map[string]*Mesh
	box   *Mesh
}

func NewCache() *Cache {
	return &Cache{items: make(map[string]*Mesh), box: Box()}
}

// Box returns the shared unit box.
func (c *Cache) Box() *Mesh {
	return c.box
}

// Load returns the mesh for path and whether it is a stand-in box.
func (c *Cache) Load(path string) (*Mesh, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.items[path]; ok {
		return m, m == c.box, nil
	}
	if strings.ToLower(filepath.Ext(path)) != ".obj" {
		c.items[path] = c.box
		return c.box, true, nil
	}
	m, err := LoadOBJ(path)
	if err != nil {
		c.items[path] = c.box
		return c.box, true, err
	}
	c.items[path] = m
	return m, false, nil
}
