package bvh

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
)

// Stats describes the structure of a built BVH.
type Stats struct {
	SplitMethod SplitMethod
	BuildTime   time.Duration

	Primitives        int
	InteriorNodes     int
	Leafs             int
	Treelets          int
	MaxDepth          int
	MaxLeafPrimitives int

	// Memory used by the flattened node and primitive lists.
	NodeBytes      string
	PrimitiveBytes string
}

// Get the total number of nodes.
func (s Stats) Nodes() int {
	return s.InteriorNodes + s.Leafs
}

// Get the average number of primitives per leaf.
func (s Stats) AvgLeafPrimitives() float32 {
	if s.Leafs == 0 {
		return 0
	}
	return float32(s.Primitives) / float32(s.Leafs)
}

// Render stats as a table.
func (s Stats) Table() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"BVH", "Value"})
	table.Append([]string{"Split method", s.SplitMethod.String()})
	table.Append([]string{"Build time", fmt.Sprintf("%d ms", s.BuildTime.Nanoseconds()/1e6)})
	table.Append([]string{" ", " "})
	table.Append([]string{"Primitives", fmt.Sprintf("%d", s.Primitives)})
	table.Append([]string{"Nodes", fmt.Sprintf("%d", s.Nodes())})
	table.Append([]string{"Interior nodes", fmt.Sprintf("%d", s.InteriorNodes)})
	table.Append([]string{"Leafs", fmt.Sprintf("%d", s.Leafs)})
	if s.SplitMethod == SplitHLBVH {
		table.Append([]string{"Treelets", fmt.Sprintf("%d", s.Treelets)})
	}
	table.Append([]string{"Max depth", fmt.Sprintf("%d", s.MaxDepth)})
	table.Append([]string{"Max leaf primitives", fmt.Sprintf("%d", s.MaxLeafPrimitives)})
	table.Append([]string{"Avg leaf primitives", fmt.Sprintf("%.2f", s.AvgLeafPrimitives())})
	table.Append([]string{" ", " "})
	table.Append([]string{"Node memory", s.NodeBytes})
	table.Append([]string{"Primitive list memory", s.PrimitiveBytes})
	table.Render()
	return buf.String()
}

// Sum the total space used by a set of slices and return back a formatted
// value with the appropriate byte/kb/mb unit.
func fmtSize(items ...interface{}) string {
	var totalBytes float32
	for _, item := range items {
		t := reflect.TypeOf(item)
		v := reflect.ValueOf(item)
		if v.Len() == 0 {
			continue
		}

		totalBytes += float32(int(t.Elem().Size()) * v.Len())
	}

	var out string
	switch {
	case totalBytes < 1e3:
		out = fmt.Sprintf("%3d bytes", int(totalBytes))
	case totalBytes < 1e6:
		out = fmt.Sprintf("%3.1f kb", totalBytes/1e3)
	default:
		out = fmt.Sprintf("%5.1f mb", totalBytes/1e6)
	}
	return strings.TrimLeft(out, " ")
}
