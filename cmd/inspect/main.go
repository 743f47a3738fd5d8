package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/RunnersNum40/Kubric-Pallets/internal/archive"
	"github.com/RunnersNum40/Kubric-Pallets/internal/catalog"
	"github.com/RunnersNum40/Kubric-Pallets/internal/mesh"
)

// inspect <asset_dir> | <mesh.obj> | <dataset.tar.gz>
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: inspect <asset_dir | mesh.obj | dataset.tar.gz>")
		os.Exit(2)
	}
	path := os.Args[1]

	var err error
	switch {
	case strings.HasSuffix(strings.ToLower(path), ".obj"):
		err = inspectMesh(path)
	case strings.HasSuffix(path, ".tar.gz"):
		err = inspectArchive(path)
	default:
		inspectCatalog(path)
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func inspectCatalog(root string) {
	cat := catalog.Build(zap.NewNop().Sugar(), root)

	fmt.Printf("Asset root: %s\n", root)
	for _, name := range catalog.AssetCategories {
		assets := cat.Assets[name]
		fmt.Printf("  %s: %d assets\n", name, len(assets))
		for _, a := range assets {
			fmt.Printf("    %s\n", a)
		}
	}
	for _, name := range catalog.TextureCategories {
		sets := cat.Textures[name]
		fmt.Printf("  %s: %d texture sets\n", name, len(sets))
		for _, s := range sets {
			fmt.Printf("    %-20s", s.Name)
			for _, r := range []catalog.Role{catalog.RoleColor, catalog.RoleNormal, catalog.RoleRoughness} {
				slot := s.Slot(r)
				if slot == "" {
					slot = "-"
				} else {
					slot = filepath.Base(slot)
				}
				fmt.Printf(" %s=%s", r, slot)
			}
			fmt.Println()
		}
	}
	if err := cat.Validate(); err != nil {
		fmt.Printf("\nNot usable for generation: %v\n", err)
		return
	}
	fmt.Println("\nAll categories populated.")
}

func inspectMesh(path string) error {
	m, err := mesh.LoadOBJ(path)
	if err != nil {
		return err
	}
	lo, hi := m.Bounds()
	fmt.Printf("Mesh: %s\n", path)
	fmt.Printf("  verts=%d, uvs=%d, tris=%d\n", len(m.Verts), len(m.UVs), len(m.Tris))
	fmt.Printf("  BBox: X[%.3f, %.3f] Y[%.3f, %.3f] Z[%.3f, %.3f]\n", lo[0], hi[0], lo[1], hi[1], lo[2], hi[2])
	fmt.Printf("  Size: %.3f x %.3f x %.3f\n", hi[0]-lo[0], hi[1]-lo[1], hi[2]-lo[2])

	fmt.Println("  --- Surface area by direction ---")
	areas := m.FaceAreas()
	for _, d := range []string{"+X", "-X", "+Y", "-Y", "+Z", "-Z"} {
		fmt.Printf("  %s: %.3f sq units\n", d, areas[d])
	}
	return nil
}

func inspectArchive(path string) error {
	entries, err := archive.Entries(path)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(entries))
	scenes := map[string]int{}
	for name := range entries {
		names = append(names, name)
		scenes[strings.SplitN(name, "/", 2)[0]]++
	}
	sort.Strings(names)
	fmt.Printf("Archive: %s (%d entries, %d scenes)\n", path, len(entries), len(scenes))
	for _, name := range names {
		fmt.Printf("  %8d  %s\n", len(entries[name]), name)
	}
	return nil
}
