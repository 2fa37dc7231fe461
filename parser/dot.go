package parser

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ttpr0/go-transitmap/graph"
)

//*******************************************
// dot graph input
//*******************************************

// Reads the DOT dialect written by the output package: one node or edge
// statement per line, attributes in brackets, stations and lines packed
// into |-separated attribute strings.
//
//	"A" [x=0, y=0, stations="s1;Main St;0;0"];
//	"A" -- "B" [geom="0,0 50,1 100,0", lines="R1;1;ff0000;0"];
func ReadDOT(r io.Reader, cellsize float64) (*graph.TransitGraph, error) {
	doc := GraphDoc{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "graph") || line == "}" || strings.HasPrefix(line, "//") {
			continue
		}
		line = strings.TrimSuffix(line, ";")
		head, attrs, err := _SplitStatement(line)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", graph.ErrInputMalformed, err)
		}
		if strings.Contains(head, "--") {
			parts := strings.SplitN(head, "--", 2)
			edge := EdgeDoc{
				From: _Unquote(parts[0]),
				To:   _Unquote(parts[1]),
			}
			for _, c := range strings.Fields(attrs["geom"]) {
				xy := strings.SplitN(c, ",", 2)
				if len(xy) != 2 {
					continue
				}
				x, _ := strconv.ParseFloat(xy[0], 64)
				y, _ := strconv.ParseFloat(xy[1], 64)
				edge.Polyline = append(edge.Polyline, [2]float64{x, y})
			}
			for _, l := range strings.Split(attrs["lines"], "|") {
				if l == "" {
					continue
				}
				fields := strings.Split(l, ";")
				if len(fields) != 4 {
					return nil, fmt.Errorf("%w: malformed line attribute %v", graph.ErrInputMalformed, l)
				}
				dir, _ := strconv.Atoi(fields[3])
				edge.Lines = append(edge.Lines, LineDoc{ID: fields[0], Label: fields[1], Color: fields[2], Direction: dir})
			}
			doc.Edges = append(doc.Edges, edge)
		} else {
			node := NodeDoc{ID: _Unquote(head)}
			node.X, _ = strconv.ParseFloat(attrs["x"], 64)
			node.Y, _ = strconv.ParseFloat(attrs["y"], 64)
			for _, s := range strings.Split(attrs["stations"], "|") {
				if s == "" {
					continue
				}
				fields := strings.Split(s, ";")
				if len(fields) != 4 {
					return nil, fmt.Errorf("%w: malformed station attribute %v", graph.ErrInputMalformed, s)
				}
				x, _ := strconv.ParseFloat(fields[2], 64)
				y, _ := strconv.ParseFloat(fields[3], 64)
				node.Stations = append(node.Stations, StationDoc{ID: fields[0], Label: fields[1], X: x, Y: y})
			}
			doc.Nodes = append(doc.Nodes, node)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return BuildGraph(doc, cellsize)
}

func _SplitStatement(line string) (string, map[string]string, error) {
	attrs := map[string]string{}
	open := strings.Index(line, "[")
	if open == -1 {
		return strings.TrimSpace(line), attrs, nil
	}
	end := strings.LastIndex(line, "]")
	if end < open {
		return "", nil, fmt.Errorf("unbalanced attribute list: %v", line)
	}
	head := strings.TrimSpace(line[:open])
	body := line[open+1 : end]

	// split on commas outside of quotes
	parts := []string{}
	depth := false
	last := 0
	for i, c := range body {
		if c == '"' {
			depth = !depth
		}
		if c == ',' && !depth {
			parts = append(parts, body[last:i])
			last = i + 1
		}
	}
	parts = append(parts, body[last:])

	for _, p := range parts {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		attrs[strings.TrimSpace(kv[0])] = _Unquote(kv[1])
	}
	return head, attrs, nil
}

func _Unquote(s string) string {
	s = strings.TrimSpace(s)
	return strings.Trim(s, "\"")
}
