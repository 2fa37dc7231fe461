package topo

//*******************************************
// construction config
//*******************************************

type TopoConfig struct {
	// d0 of the collapsing ladder
	MaxAggrDistance float64
	// minimum length of a shared segment worth collapsing
	MinSharedLen float64
	// edges below this length are contracted away
	ArtifactLen float64
	// search radius for re-attaching stations
	StationSnapDist float64
	// simplification tolerance multiplier (0..1)
	Smooth float64
	// endpoint coincidence tolerance, also the split snap
	SnapDist float64
	// the ladder runs d0 .. LadderMult*d0 in steps of d0
	LadderMult int
	// aggregation distance of the initial fixed pass
	InitialDist float64
}

func DefaultTopoConfig() TopoConfig {
	return TopoConfig{
		MaxAggrDistance: 50,
		MinSharedLen:    100,
		ArtifactLen:     85,
		StationSnapDist: 100,
		Smooth:          0.3,
		SnapDist:        5,
		LadderMult:      15,
		InitialDist:     5,
	}
}
