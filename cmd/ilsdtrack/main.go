// Command ilsdtrack tracks carriage tracks and ridges/hollows from a
// LiDAR point-tile dataset along user-drawn strokes, modeled on the
// teacher's cmd/main.go (legacy/cmd_gsf/main.go): a single-item command,
// a batch command that reads a stroke list and fans it out over a fixed
// worker pool, and a command that trawls for tile datasets.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/alitto/pond"
	"github.com/urfave/cli/v2"

	"github.com/evenp/ilsdtrack/ilsd"
	"github.com/evenp/ilsdtrack/scan"
	"github.com/evenp/ilsdtrack/search"
	"github.com/evenp/ilsdtrack/store"
)

var errBadStroke = errors.New("ilsdtrack: stroke line must have 4 fields: x1 y1 x2 y2")

// structureRecord is the JSON sidecar written for one tracked structure,
// matching the teacher's WriteJson/MarshalIndent idiom (legacy/json.go).
type structureRecord struct {
	Kind         string       `json:"kind"`
	Status       string       `json:"status"`
	SeedP1       [2]float32   `json:"seed_p1"`
	SeedP2       [2]float32   `json:"seed_p2"`
	MeanWidth    float32      `json:"mean_width"`
	WidthStdDev  float32      `json:"width_stddev,omitempty"`
	MeanHeight   float32      `json:"mean_height"`
	Volume       float64      `json:"volume"`
	VolumeLower  float64      `json:"volume_lower,omitempty"`
	VolumeUpper  float64      `json:"volume_upper,omitempty"`
	Centerline   [][2]float32 `json:"centerline"`
}

func carriageTrackRecord(p1, p2 ilsd.Pt2f, t *ilsd.CarriageTrack) structureRecord {
	rec := structureRecord{
		Kind:       "carriage_track",
		Status:     t.Status().String(),
		SeedP1:     [2]float32{p1.X, p1.Y},
		SeedP2:     [2]float32{p2.X, p2.Y},
		MeanWidth:  t.MeanWidth(),
		MeanHeight: t.MeanHeight(),
		Volume:     t.Volume(),
	}
	for _, p := range t.ConnectedPoints() {
		rec.Centerline = append(rec.Centerline, [2]float32{p.X, p.Y})
	}
	return rec
}

// halfHeightRatio is the height ratio used to report a ridge/hollow's mean
// width, the common "half-height width" convention.
const halfHeightRatio = 0.5

func ridgeRecord(p1, p2 ilsd.Pt2f, r *ilsd.Ridge) structureRecord {
	kind := "ridge"
	if !r.Over() {
		kind = "hollow"
	}
	meanW, stddevW := r.MeanWidth(halfHeightRatio)
	vol, volLo, volHi := r.Volume()
	rec := structureRecord{
		Kind:        kind,
		Status:      r.Status().String(),
		SeedP1:      [2]float32{p1.X, p1.Y},
		SeedP2:      [2]float32{p2.X, p2.Y},
		MeanWidth:   meanW,
		WidthStdDev: stddevW,
		MeanHeight:  r.MeanHeight(),
		Volume:      vol,
		VolumeLower: volLo,
		VolumeUpper: volHi,
	}
	for _, p := range r.ConnectedPoints() {
		rec.Centerline = append(rec.Centerline, [2]float32{p.X, p.Y})
	}
	return rec
}

// parseStroke reads one "x1 y1 x2 y2" line into two stroke endpoints.
func parseStroke(line string) (ilsd.Pt2f, ilsd.Pt2f, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return ilsd.Pt2f{}, ilsd.Pt2f{}, errBadStroke
	}
	vals := make([]float64, 4)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return ilsd.Pt2f{}, ilsd.Pt2f{}, fmt.Errorf("ilsdtrack: %w", err)
		}
		vals[i] = v
	}
	return ilsd.Pt2f{X: float32(vals[0]), Y: float32(vals[1])},
		ilsd.Pt2f{X: float32(vals[2]), Y: float32(vals[3])}, nil
}

// track runs one stroke against one tile dataset and writes a JSON
// structure record into outdirURI (the current directory when empty).
func track(tilesURI, configURI, outdirURI, mode string, over bool, strokeLine string) error {
	p1, p2, err := parseStroke(strokeLine)
	if err != nil {
		return err
	}

	log.Println("Opening tile set:", tilesURI)
	tiles, err := store.OpenTileDBTileSet(configURI, tilesURI)
	if err != nil {
		return err
	}
	defer tiles.Close()

	scanner := scan.NewScanner(-1<<20, -1<<20, 1<<20, 1<<20, 0, 1, 0)

	ctx := context.Background()
	var rec structureRecord

	switch mode {
	case "ridge":
		det := ilsd.NewRidgeDetector(over, nil)
		result, err := det.Detect(ctx, tiles, scanner, p1, p2)
		if err != nil {
			return err
		}
		rec = ridgeRecord(p1, p2, result)
	default:
		det := ilsd.NewCarriageTrackDetector(nil, nil)
		result, err := det.Detect(ctx, tiles, scanner, p1, p2)
		if err != nil {
			return err
		}
		rec = carriageTrackRecord(p1, p2, result)
	}

	if outdirURI == "" {
		outdirURI = "."
	}
	name := fmt.Sprintf("track-%g-%g-%g-%g.json", p1.X, p1.Y, p2.X, p2.Y)
	outURI := filepath.Join(outdirURI, name)
	log.Println("Writing structure record:", outURI)
	_, err = writeJSON(outURI, configURI, rec)
	return err
}

// trackBatch reads a plain-text list of strokes ("x1 y1 x2 y2" per line)
// and fans each one out over a fixed worker pool, exactly as the
// teacher's convert_gsf_list fans out GSF conversions
// (legacy/cmd_gsf/main.go).
func trackBatch(strokesURI, tilesURI, configURI, outdirURI, mode string, over bool) error {
	f, err := os.Open(strokesURI)
	if err != nil {
		return err
	}
	defer f.Close()

	var lines []string
	scanLines := bufio.NewScanner(f)
	for scanLines.Scan() {
		line := strings.TrimSpace(scanLines.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanLines.Err(); err != nil {
		return err
	}
	log.Println("Number of strokes to process:", len(lines))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	n := runtime.NumCPU() * 2
	pool := pond.New(n, 0, pond.MinWorkers(n), pond.Context(ctx))
	defer pool.StopAndWait()

	for _, line := range lines {
		strokeLine := line
		pool.Submit(func() {
			if err := track(tilesURI, configURI, outdirURI, mode, over, strokeLine); err != nil {
				log.Println("stroke failed:", strokeLine, err)
			}
		})
	}
	return nil
}

func main() {
	app := &cli.App{
		Commands: []*cli.Command{
			{
				Name: "track",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "tiles-uri", Usage: "URI or pathname to a point-tile TileDB array."},
					&cli.StringFlag{Name: "config-uri", Usage: "URI or pathname to a TileDB config file."},
					&cli.StringFlag{Name: "outdir-uri", Usage: "URI or pathname to an output directory."},
					&cli.StringFlag{Name: "mode", Usage: "carriage-track, ridge or hollow.", Value: "carriage-track"},
					&cli.StringFlag{Name: "stroke", Usage: "Seed stroke as \"x1 y1 x2 y2\"."},
				},
				Action: func(cCtx *cli.Context) error {
					mode := cCtx.String("mode")
					over := mode != "hollow"
					kind := mode
					if mode != "ridge" && mode != "hollow" {
						kind = "carriage-track"
					} else {
						kind = "ridge"
					}
					return track(cCtx.String("tiles-uri"), cCtx.String("config-uri"), cCtx.String("outdir-uri"), kind, over, cCtx.String("stroke"))
				},
			},
			{
				Name: "track-batch",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "strokes-uri", Usage: "URI or pathname to a plain-text list of strokes."},
					&cli.StringFlag{Name: "tiles-uri", Usage: "URI or pathname to a point-tile TileDB array."},
					&cli.StringFlag{Name: "config-uri", Usage: "URI or pathname to a TileDB config file."},
					&cli.StringFlag{Name: "outdir-uri", Usage: "URI or pathname to an output directory."},
					&cli.StringFlag{Name: "mode", Usage: "carriage-track, ridge or hollow.", Value: "carriage-track"},
				},
				Action: func(cCtx *cli.Context) error {
					mode := cCtx.String("mode")
					over := mode != "hollow"
					kind := "carriage-track"
					if mode == "ridge" || mode == "hollow" {
						kind = "ridge"
					}
					return trackBatch(cCtx.String("strokes-uri"), cCtx.String("tiles-uri"), cCtx.String("config-uri"), cCtx.String("outdir-uri"), kind, over)
				},
			},
			{
				Name: "find-tiles",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "uri", Usage: "URI or pathname to a directory containing point-tile datasets."},
					&cli.StringFlag{Name: "config-uri", Usage: "URI or pathname to a TileDB config file."},
				},
				Action: func(cCtx *cli.Context) error {
					for _, item := range search.FindTileSets(cCtx.String("uri"), cCtx.String("config-uri")) {
						fmt.Println(item)
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
