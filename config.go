package main

import (
	"os"

	"github.com/ttpr0/go-transitmap/topo"
	"golang.org/x/exp/slog"
	"gopkg.in/yaml.v3"
)

//**********************************************************
// config
//**********************************************************

func ReadConfig(file string) Config {
	slog.Info("Reading config file")
	data, err := os.ReadFile(file)
	if err != nil {
		slog.Error("failed to read config file: " + err.Error())
		panic(err)
	}
	var config Config
	yaml.Unmarshal(data, &config)
	return config
}

type Config struct {
	Input struct {
		// graph interchange json, "-" reads stdin
		JSON string `yaml:"json"`
		DOT  string `yaml:"dot"`
		// directory of a static gtfs feed
		GTFS string `yaml:"gtfs"`
		// .osm.pbf extract
		OSM string `yaml:"osm"`
	} `yaml:"input"`
	Output struct {
		// "-" writes stdout
		JSON    string `yaml:"json"`
		GeoJSON string `yaml:"geojson"`
		DOT     string `yaml:"dot"`
	} `yaml:"output"`
	Construction struct {
		MaxAggrDistance float64 `yaml:"max-aggr-distance"`
		MinSharedLen    float64 `yaml:"min-shared-len"`
		ArtifactLen     float64 `yaml:"artifact-len"`
		StationSnapDist float64 `yaml:"station-snap-dist"`
		Smooth          float64 `yaml:"smooth"`
		LadderMult      int     `yaml:"ladder-mult"`
	} `yaml:"construction"`
}

// Construction parameters with defaults filled in for everything the
// config file leaves unset.
func (self Config) TopoConfig() topo.TopoConfig {
	cfg := topo.DefaultTopoConfig()
	c := self.Construction
	if c.MaxAggrDistance > 0 {
		cfg.MaxAggrDistance = c.MaxAggrDistance
	}
	if c.MinSharedLen > 0 {
		cfg.MinSharedLen = c.MinSharedLen
	}
	if c.ArtifactLen > 0 {
		cfg.ArtifactLen = c.ArtifactLen
	}
	if c.StationSnapDist > 0 {
		cfg.StationSnapDist = c.StationSnapDist
	}
	if c.Smooth > 0 {
		cfg.Smooth = c.Smooth
	}
	if c.LadderMult > 0 {
		cfg.LadderMult = c.LadderMult
	}
	return cfg
}
