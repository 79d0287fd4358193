package processors

import (
	"sort"

	"github.com/herry-chi/dashboard-operation-lifex/src/models"
)

// minTileSize keeps every tile clickable even when its value share is
// tiny relative to the viewport.
const minTileSize = 20.0

// TreemapNode is one laid-out tile. Leaves are settled deals, inner nodes
// are broker groups when grouping is on.
type TreemapNode struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Value    float64        `json:"value"`
	X        float64        `json:"x"`
	Y        float64        `json:"y"`
	Width    float64        `json:"width"`
	Height   float64        `json:"height"`
	Depth    int            `json:"depth"`
	Children []*TreemapNode `json:"children,omitempty"`
}

// BuildTreemap lays out the settled deals with positive value inside a
// w-by-h viewport. With groupByBroker the first level is broker groups
// sized by their settled book. Returns nil when nothing settled carries
// value, since a treemap of zero area has nothing to show.
func BuildTreemap(deals []models.Deal, groupByBroker bool, w, h float64) *TreemapNode {
	leaves := make([]*TreemapNode, 0, len(deals))
	for i := range deals {
		d := &deals[i]
		if !d.IsSettled() || d.Value <= 0 {
			continue
		}
		leaves = append(leaves, &TreemapNode{ID: d.ID, Name: d.Name, Value: d.Value})
	}
	if len(leaves) == 0 {
		return nil
	}

	root := &TreemapNode{ID: "root", Name: "Settled Deals"}
	if groupByBroker {
		root.Children = groupLeavesByBroker(deals, leaves)
	} else {
		root.Children = leaves
	}
	for _, c := range root.Children {
		root.Value += c.Value
	}
	if root.Value <= 0 {
		return nil
	}

	root.Width, root.Height = w, h
	layoutChildren(root.Children, 0, 0, w, h, 1)
	return root
}

func groupLeavesByBroker(deals []models.Deal, leaves []*TreemapNode) []*TreemapNode {
	brokerByDealID := make(map[string]string, len(deals))
	for i := range deals {
		brokerByDealID[deals[i].ID] = deals[i].BrokerName
	}

	groups := make(map[string]*TreemapNode)
	for _, leaf := range leaves {
		broker := brokerByDealID[leaf.ID]
		g, ok := groups[broker]
		if !ok {
			g = &TreemapNode{ID: "broker:" + broker, Name: broker}
			groups[broker] = g
		}
		g.Value += leaf.Value
		g.Children = append(g.Children, leaf)
	}

	out := make([]*TreemapNode, 0, len(groups))
	for _, g := range groups {
		out = append(out, g)
	}
	return out
}

// layoutChildren packs children into the given rectangle using strip
// packing. Children are sorted largest first, each takes an area
// proportional to its value share, and strips run along the shorter
// remaining dimension so tiles stay close to square.
func layoutChildren(children []*TreemapNode, x, y, w, h float64, depth int) {
	if len(children) == 0 || w <= 0 || h <= 0 {
		return
	}
	sort.Slice(children, func(i, j int) bool {
		if children[i].Value != children[j].Value {
			return children[i].Value > children[j].Value
		}
		return children[i].Name < children[j].Name
	})

	var total float64
	for _, c := range children {
		total += c.Value
	}
	if total <= 0 {
		return
	}

	cx, cy := x, y
	remW, remH := w, h
	for _, c := range children {
		ratio := c.Value / total
		area := ratio * w * h

		if remW <= 0 || remH <= 0 {
			// Overflow from minimum-size clamping. Stack the leftovers
			// as zero-area tiles at the edge so nothing disappears.
			c.X, c.Y, c.Width, c.Height, c.Depth = cx, cy, 0, 0, depth
			continue
		}

		if remW >= remH {
			tileW := area / remH
			if tileW < minTileSize {
				tileW = minTileSize
			}
			if tileW > remW {
				tileW = remW
			}
			c.X, c.Y, c.Width, c.Height, c.Depth = cx, cy, tileW, remH, depth
			cx += tileW
			remW -= tileW
		} else {
			tileH := area / remW
			if tileH < minTileSize {
				tileH = minTileSize
			}
			if tileH > remH {
				tileH = remH
			}
			c.X, c.Y, c.Width, c.Height, c.Depth = cx, cy, remW, tileH, depth
			cy += tileH
			remH -= tileH
		}

		layoutChildren(c.Children, c.X, c.Y, c.Width, c.Height, depth+1)
	}
}

// RelayoutTreemap stretches a zoomed-into subtree across the full
// viewport so its children get room again.
func RelayoutTreemap(node *TreemapNode, w, h float64) {
	if node == nil {
		return
	}
	node.X, node.Y = 0, 0
	node.Width, node.Height = w, h
	layoutChildren(node.Children, 0, 0, w, h, node.Depth+1)
}

// ResolveTreemapPath walks a zoom path of node IDs from the root and
// returns the addressed subtree, or nil when the path breaks.
func ResolveTreemapPath(root *TreemapNode, path []string) *TreemapNode {
	node := root
	for _, id := range path {
		if node == nil {
			return nil
		}
		var next *TreemapNode
		for _, c := range node.Children {
			if c.ID == id {
				next = c
				break
			}
		}
		node = next
	}
	return node
}
