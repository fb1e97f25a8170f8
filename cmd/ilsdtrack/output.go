package main

import (
	"encoding/json"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

// writeJSON serialises data to a JSON file, locally or to an object store,
// adapted from the teacher's WriteJson (legacy/json.go): same
// NewConfig/LoadConfig fallback, same TileDB VFS file handle.
func writeJSON(fileURI, configURI string, data any) (int, error) {
	var (
		config *tiledb.Config
		err    error
	)

	if configURI == "" {
		config, err = tiledb.NewConfig()
		if err != nil {
			return 0, err
		}
	} else {
		config, err = tiledb.LoadConfig(configURI)
		if err != nil {
			return 0, err
		}
	}
	defer config.Free()

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		return 0, err
	}
	defer ctx.Free()

	vfs, err := tiledb.NewVFS(ctx, config)
	if err != nil {
		return 0, err
	}
	defer vfs.Free()

	blob, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return 0, err
	}

	fh, err := vfs.Open(fileURI, tiledb.TILEDB_VFS_WRITE)
	if err != nil {
		return 0, err
	}
	defer vfs.Close(fh)

	if err := vfs.Write(fh, blob); err != nil {
		return 0, err
	}
	return len(blob), nil
}
