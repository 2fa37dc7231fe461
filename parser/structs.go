package parser

//*******************************************
// graph document schema
//*******************************************

// The plain JSON graph interchange format. Edge references inside
// excluded_conn entries are indices into the edges array.
type GraphDoc struct {
	Nodes []NodeDoc `json:"nodes"`
	Edges []EdgeDoc `json:"edges"`
}

type NodeDoc struct {
	ID           string       `json:"id"`
	X            float64      `json:"x"`
	Y            float64      `json:"y"`
	Stations     []StationDoc `json:"stations,omitempty"`
	ExcludedConn []ExcConnDoc `json:"excluded_conn,omitempty"`
}

type StationDoc struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

type EdgeDoc struct {
	From     string       `json:"from"`
	To       string       `json:"to"`
	Polyline [][2]float64 `json:"polyline"`
	Lines    []LineDoc    `json:"lines"`
}

type LineDoc struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Color     string `json:"color"`
	Direction int    `json:"direction"`
}

type ExcConnDoc struct {
	Route string `json:"route"`
	EdgeA int    `json:"edge_a"`
	EdgeB int    `json:"edge_b"`
}
