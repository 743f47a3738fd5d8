package catalog

import "strings"

// Role is the slot a texture file fills in a TextureSet.
type Role int

const (
	RoleColor Role = iota
	RoleNormal
	RoleRoughness
)

func (r Role) String() string {
	switch r {
	case RoleColor:
		return "color"
	case RoleNormal:
		return "normal"
	case RoleRoughness:
		return "roughness"
	}
	return "unknown"
}

// rolePatterns is matched top to bottom; the first hit wins.
var rolePatterns = []struct {
	role    Role
	needles []string
}{
	{RoleColor, []string{"color", "albedo"}},
	{RoleNormal, []string{"normal"}},
	{RoleRoughness, []string{"roughness"}},
}

// RoleOf classifies a texture filename by case-insensitive substring match.
func RoleOf(name string) (Role, bool) {
	lower := strings.ToLower(name)
	for _, p := range rolePatterns {
		for _, n := range p.needles {
			if strings.Contains(lower, n) {
				return p.role, true
			}
		}
	}
	return 0, false
}

// TextureSet bundles the maps applied together to one surface. An empty
// path means that map is not applied.
type TextureSet struct {
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	Normal    string `json:"normal,omitempty"`
	Roughness string `json:"roughness,omitempty"`
}

// Slot returns the path filling role, or "".
func (t TextureSet) Slot(r Role) string {
	switch r {
	case RoleColor:
		return t.Color
	case RoleNormal:
		return t.Normal
	case RoleRoughness:
		return t.Roughness
	}
	return ""
}

func (t *TextureSet) set(r Role, path string) {
	switch r {
	case RoleColor:
		t.Color = path
	case RoleNormal:
		t.Normal = path
	case RoleRoughness:
		t.Roughness = path
	}
}
