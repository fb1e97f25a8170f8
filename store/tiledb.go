package store

import (
	"context"
	"errors"
	"fmt"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
	stgpsr "github.com/yuin/stagparser"

	"github.com/evenp/ilsdtrack/ilsd"
)

var (
	ErrCreateSchema  = errors.New("store: error creating tiledb array schema")
	ErrCreateArray   = errors.New("store: error creating tiledb array")
	ErrOpenArray     = errors.New("store: error opening tiledb array")
	ErrWriteArray    = errors.New("store: error writing tiledb array")
	ErrReadArray     = errors.New("store: error reading tiledb array")
)

// PointRecord is one LiDAR return as stored in the sparse TileDB array: two
// dimensions locate the owning DTM cell, the third the point's ordinal
// within that cell's bucket. Struct tags drive schema generation exactly
// as the teacher's schemaAttrs/CreateAttr do for GSF ping records
// (legacy/schema.go, legacy/tiledb.go), reusing github.com/yuin/stagparser.
type PointRecord struct {
	CellI int32   `tiledb:"ftype(dim)"`
	CellJ int32   `tiledb:"ftype(dim)"`
	Ord   int32   `tiledb:"ftype(dim)"`
	X     float64 `tiledb:"ftype(attr),dtype(float64)" filters:"zstd(level=5)"`
	Y     float64 `tiledb:"ftype(attr),dtype(float64)" filters:"zstd(level=5)"`
	Z     float64 `tiledb:"ftype(attr),dtype(float64)" filters:"zstd(level=5)"`
}

// loadConfig returns a TileDB config loaded from configURI, or a bare
// default config if configURI is empty — the teacher's NewConfig/
// LoadConfig fallback idiom (legacy/json.go WriteJson).
func loadConfig(configURI string) (*tiledb.Config, error) {
	if configURI == "" {
		return tiledb.NewConfig()
	}
	return tiledb.LoadConfig(configURI)
}

// CreateSchema creates a new sparse point array at uri, with one row per
// LiDAR return, bucketed by DTM cell (cellI, cellJ) and ordinal within the
// cell.
func CreateSchema(ctx *tiledb.Context, uri string, tileExtent int32) error {
	domain, err := tiledb.NewDomain(ctx)
	if err != nil {
		return errors.Join(ErrCreateSchema, err)
	}
	defer domain.Free()

	dimI, err := tiledb.NewDimension(ctx, "cell_i", tiledb.TILEDB_INT32, []int32{-1 << 20, 1 << 20}, tileExtent)
	if err != nil {
		return errors.Join(ErrCreateSchema, err)
	}
	dimJ, err := tiledb.NewDimension(ctx, "cell_j", tiledb.TILEDB_INT32, []int32{-1 << 20, 1 << 20}, tileExtent)
	if err != nil {
		return errors.Join(ErrCreateSchema, err)
	}
	dimOrd, err := tiledb.NewDimension(ctx, "ord", tiledb.TILEDB_INT32, []int32{0, 1 << 16}, int32(64))
	if err != nil {
		return errors.Join(ErrCreateSchema, err)
	}
	if err := domain.AddDimensions(dimI, dimJ, dimOrd); err != nil {
		return errors.Join(ErrCreateSchema, err)
	}

	schema, err := tiledb.NewArraySchema(ctx, tiledb.TILEDB_SPARSE)
	if err != nil {
		return errors.Join(ErrCreateSchema, err)
	}
	defer schema.Free()
	if err := schema.SetDomain(domain); err != nil {
		return errors.Join(ErrCreateSchema, err)
	}
	if err := schema.SetCellOrder(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return errors.Join(ErrCreateSchema, err)
	}
	if err := schema.SetTileOrder(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return errors.Join(ErrCreateSchema, err)
	}

	if err := attachAttributes(ctx, schema); err != nil {
		return errors.Join(ErrCreateSchema, err)
	}

	if err := tiledb.CreateArray(ctx, uri, schema); err != nil {
		return errors.Join(ErrCreateArray, err)
	}
	return nil
}

// attachAttributes walks PointRecord's tagged fields and creates one
// float64 TileDB attribute per non-dimension field, attaching a Zstd
// filter as directed by its `filters` tag — mirroring the teacher's
// schemaAttrs/CreateAttr walk over a ping record (legacy/schema.go).
func attachAttributes(ctx *tiledb.Context, schema *tiledb.ArraySchema) error {
	rec := PointRecord{}
	tdbDefs, err := stgpsr.ParseStruct(&rec, "tiledb")
	if err != nil {
		return err
	}
	filtDefs, _ := stgpsr.ParseStruct(&rec, "filters")

	for _, name := range []string{"X", "Y", "Z"} {
		defs := tdbDefs[name]
		isDim := false
		for _, d := range defs {
			if d.Name() == "ftype" {
				if v, ok := d.Attribute("ftype"); ok && v == "dim" {
					isDim = true
				}
			}
		}
		if isDim {
			continue
		}
		attr, err := tiledb.NewAttribute(ctx, attrName(name), tiledb.TILEDB_FLOAT64)
		if err != nil {
			return err
		}
		for _, d := range filtDefs[name] {
			if d.Name() == "zstd" {
				lvl := int32(5)
				if v, ok := d.Attribute("level"); ok {
					fmt.Sscanf(v, "%d", &lvl)
				}
				filt, err := tiledb.NewFilter(ctx, tiledb.TILEDB_FILTER_ZSTD)
				if err != nil {
					return err
				}
				if err := filt.SetOption(tiledb.TILEDB_COMPRESSION_LEVEL, lvl); err != nil {
					filt.Free()
					return err
				}
				fl, err := tiledb.NewFilterList(ctx)
				if err != nil {
					filt.Free()
					return err
				}
				if err := fl.AddFilter(filt); err != nil {
					return err
				}
				if err := attr.SetFilterList(fl); err != nil {
					return err
				}
			}
		}
		if err := schema.AddAttributes(attr); err != nil {
			return err
		}
	}
	return nil
}

func attrName(field string) string {
	switch field {
	case "X":
		return "x"
	case "Y":
		return "y"
	case "Z":
		return "z"
	default:
		return field
	}
}

// TileDBTileSet is a TileSet backed by a sparse TileDB array of
// PointRecord rows, built and queried the way the teacher's tiledb.go /
// schema.go build and query GSF ping arrays.
type TileDBTileSet struct {
	ctx   *tiledb.Context
	array *tiledb.Array
}

// OpenTileDBTileSet opens an existing point array at uri for reading.
func OpenTileDBTileSet(configURI, uri string) (*TileDBTileSet, error) {
	config, err := loadConfig(configURI)
	if err != nil {
		return nil, errors.Join(ErrOpenArray, err)
	}
	defer config.Free()

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		return nil, errors.Join(ErrOpenArray, err)
	}

	array, err := tiledb.NewArray(ctx, uri)
	if err != nil {
		ctx.Free()
		return nil, errors.Join(ErrOpenArray, err)
	}
	if err := array.Open(tiledb.TILEDB_READ); err != nil {
		array.Free()
		ctx.Free()
		return nil, errors.Join(ErrOpenArray, err)
	}
	return &TileDBTileSet{ctx: ctx, array: array}, nil
}

// Close releases the array and context.
func (t *TileDBTileSet) Close() {
	if t.array != nil {
		t.array.Close()
		t.array.Free()
	}
	if t.ctx != nil {
		t.ctx.Free()
	}
}

// CollectPoints implements ilsd.TileSet by slicing the array to the
// single (cellI, cellJ) column and reading back every ordinal recorded
// there.
func (t *TileDBTileSet) CollectPoints(ctx context.Context, cellI, cellJ int) ([]ilsd.Point3, bool, error) {
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	default:
	}

	query, err := tiledb.NewQuery(t.ctx, t.array)
	if err != nil {
		return nil, false, errors.Join(ErrReadArray, err)
	}
	defer query.Free()

	subarray, err := t.array.NewSubarray()
	if err != nil {
		return nil, false, errors.Join(ErrReadArray, err)
	}
	defer subarray.Free()

	i32 := int32(cellI)
	j32 := int32(cellJ)
	if err := subarray.AddRangeByName("cell_i", i32, i32, nil); err != nil {
		return nil, false, errors.Join(ErrReadArray, err)
	}
	if err := subarray.AddRangeByName("cell_j", j32, j32, nil); err != nil {
		return nil, false, errors.Join(ErrReadArray, err)
	}
	if err := query.SetSubarray(subarray); err != nil {
		return nil, false, errors.Join(ErrReadArray, err)
	}
	if err := query.SetLayout(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return nil, false, errors.Join(ErrReadArray, err)
	}

	const maxPoints = 1 << 16
	xs := make([]float64, maxPoints)
	ys := make([]float64, maxPoints)
	zs := make([]float64, maxPoints)
	if _, err := query.SetDataBuffer("x", xs); err != nil {
		return nil, false, errors.Join(ErrReadArray, err)
	}
	if _, err := query.SetDataBuffer("y", ys); err != nil {
		return nil, false, errors.Join(ErrReadArray, err)
	}
	if _, err := query.SetDataBuffer("z", zs); err != nil {
		return nil, false, errors.Join(ErrReadArray, err)
	}

	if err := query.Submit(); err != nil {
		return nil, false, errors.Join(ErrReadArray, err)
	}

	elements, err := query.ResultBufferElements()
	if err != nil {
		return nil, false, errors.Join(ErrReadArray, err)
	}
	n := elements["x"][1]
	if n == 0 {
		return nil, false, nil
	}
	out := make([]ilsd.Point3, n)
	for k := uint64(0); k < n; k++ {
		out[k] = ilsd.Point3{X: xs[k], Y: ys[k], Z: zs[k]}
	}
	return out, true, nil
}
