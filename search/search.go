// Package search locates tile-set datasets under a URI, local or object
// store, adapted from the teacher's *.gsf trawl (legacy/search_gsf) to
// look for *.tiles directories instead.
package search

import (
	"path/filepath"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

// trawl recursively collects every entry under uri whose basename matches
// pattern, using the TileDB VFS so the same code works against local
// filesystems and object stores alike.
func trawl(vfs *tiledb.VFS, pattern string, uri string, items []string) []string {
	dirs, files, err := vfs.List(uri)
	if err != nil {
		panic(err)
	}

	for _, file := range files {
		match, err := filepath.Match(pattern, filepath.Base(file))
		if err != nil {
			panic(err)
		}
		if match {
			items = append(items, file)
		}
	}

	for _, dir := range dirs {
		items = trawl(vfs, pattern, dir, items)
	}

	return items
}

// FindTileSets recursively searches for *.tiles point-tile datasets under
// uri. configURI, if non-empty, is loaded as the TileDB config used to
// reach object stores under access constraints.
func FindTileSets(uri string, configURI string) []string {
	var (
		config *tiledb.Config
		err    error
	)

	if configURI == "" {
		config, err = tiledb.NewConfig()
		if err != nil {
			panic(err)
		}
	} else {
		config, err = tiledb.LoadConfig(configURI)
		if err != nil {
			panic(err)
		}
	}
	defer config.Free()

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		panic(err)
	}
	defer ctx.Free()

	vfs, err := tiledb.NewVFS(ctx, config)
	if err != nil {
		panic(err)
	}
	defer vfs.Free()

	items := make([]string, 0)
	return trawl(vfs, "*.tiles", uri, items)
}
