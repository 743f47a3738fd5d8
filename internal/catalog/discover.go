package catalog

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// AssetExtensions are the mesh formats picked up by DiscoverAssets.
var AssetExtensions = []string{".obj", ".glb", ".fbx"}

// TextureExtensions are the image formats picked up by DiscoverTextures.
var TextureExtensions = []string{".jpg", ".jpeg", ".png", ".tga"}

// groupSeparator splits a texture filename into its set name and the rest.
const groupSeparator = "_"

// DiscoverAssets lists files under root whose extension matches one of exts,
// case-insensitively, in lexical walk order. A missing root yields an empty
// list and a warning.
func DiscoverAssets(logger *zap.SugaredLogger, root string, exts []string) []string {
	if _, err := os.Stat(root); err != nil {
		logger.Warnw("asset path does not exist", "path", root)
		return nil
	}
	return walkFiles(logger, root, exts)
}

// DiscoverTextures groups the image files under root into texture sets keyed
// by the filename prefix before the first separator. Files whose names match
// no role are ignored. Sets keep the order their first file was seen in.
func DiscoverTextures(logger *zap.SugaredLogger, root string) []TextureSet {
	if _, err := os.Stat(root); err != nil {
		logger.Warnw("texture path does not exist", "path", root)
		return nil
	}

	files := walkFiles(logger, root, TextureExtensions)
	if len(files) == 0 {
		logger.Warnw("no textures found", "path", root)
		return nil
	}

	var sets []TextureSet
	index := make(map[string]int)
	for _, path := range files {
		base := filepath.Base(path)
		role, ok := RoleOf(base)
		if !ok {
			continue
		}
		group, _, _ := strings.Cut(base, groupSeparator)
		i, exists := index[group]
		if !exists {
			i = len(sets)
			index[group] = i
			sets = append(sets, TextureSet{Name: group})
		}
		sets[i].set(role, path)
	}
	return sets
}

func walkFiles(logger *zap.SugaredLogger, root string, exts []string) []string {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warnw("skipping unreadable entry", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if hasExt(path, exts) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		logger.Warnw("walk failed", "path", root, "error", err)
	}
	return out
}

func hasExt(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
