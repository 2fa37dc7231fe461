package main

import (
	"flag"
	"io"
	"os"

	"github.com/ttpr0/go-transitmap/graph"
	"github.com/ttpr0/go-transitmap/output"
	"github.com/ttpr0/go-transitmap/parser"
	"github.com/ttpr0/go-transitmap/topo"
	"golang.org/x/exp/slog"
)

// cell size of the node and edge grids
const GRID_SIZE = 120.0

func main() {
	config_path := flag.String("config", "./config.yaml", "path to the config file")
	flag.Parse()

	slog.SetDefault(slog.New(NewLogHandler(os.Stderr, nil)))

	config := ReadConfig(*config_path)
	cfg := config.TopoConfig()

	slog.Info("Parsing...")
	g, err := loadGraph(config)
	if err != nil {
		slog.Error("failed to load input graph: " + err.Error())
		os.Exit(1)
	}
	slog.Info("Parsed input graph", "nodes", g.NodeCount(), "edges", g.EdgeCount())

	mc := topo.NewMapConstructor(&cfg, g)
	si := topo.NewStationInserter(&cfg, g)
	ri := topo.NewRestrInferrer(&cfg, g)

	stat_fr := mc.Freeze()
	slog.Info("Initializing...")
	si.Init()

	slog.Info("Averaging positions...")
	mc.AverageNodePositions()
	slog.Info("Cleaning up...")
	mc.CleanUpGeoms()

	slog.Info("Removing artifacts...")
	mc.RemoveNodeArtifacts()
	mc.RemoveEdgeArtifacts()

	ri.Init()
	restr_fr := mc.Freeze()

	mc.Collapse()

	mc.RemoveNodeArtifacts()
	mc.AverageNodePositions()
	mc.CleanUpGeoms()

	slog.Info("Inferring restrictions...")
	ri.Infer(mc.FreezeTrack(restr_fr))

	slog.Info("Inserting stations...")
	si.InsertStations(mc.FreezeTrack(stat_fr))
	if si.Orphans.Length() > 0 {
		slog.Warn("orphaned stations", "count", si.Orphans.Length())
	}

	if err := g.CheckInvariants(cfg.SnapDist); err != nil {
		slog.Error("construction left a broken graph: " + err.Error())
		os.Exit(1)
	}
	slog.Info("Construction finished", "nodes", g.NodeCount(), "edges", g.EdgeCount())

	if err := writeOutput(config, g); err != nil {
		slog.Error("failed to write output: " + err.Error())
		os.Exit(1)
	}
}

func loadGraph(config Config) (*graph.TransitGraph, error) {
	in := config.Input
	switch {
	case in.JSON == "-":
		return parser.ReadJSON(os.Stdin, GRID_SIZE)
	case in.JSON != "":
		file, err := os.Open(in.JSON)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return parser.ReadJSON(file, GRID_SIZE)
	case in.DOT != "":
		file, err := os.Open(in.DOT)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return parser.ReadDOT(file, GRID_SIZE)
	case in.GTFS != "":
		return parser.ParseGTFS(in.GTFS, GRID_SIZE)
	case in.OSM != "":
		return parser.ParseOSM(in.OSM, GRID_SIZE)
	default:
		// no input configured, read json from stdin
		return parser.ReadJSON(os.Stdin, GRID_SIZE)
	}
}

func writeOutput(config Config, g *graph.TransitGraph) error {
	out := config.Output
	write := func(path string, writer func(*graph.TransitGraph, io.Writer) error) error {
		if path == "" {
			return nil
		}
		if path == "-" {
			return writer(g, os.Stdout)
		}
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		return writer(g, file)
	}
	if out.JSON == "" && out.GeoJSON == "" && out.DOT == "" {
		return output.WriteJSON(g, os.Stdout)
	}
	if err := write(out.JSON, output.WriteJSON); err != nil {
		return err
	}
	if err := write(out.GeoJSON, output.WriteGeoJSON); err != nil {
		return err
	}
	return write(out.DOT, output.WriteDOT)
}
