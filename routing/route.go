package routing

import (
	"fmt"
	"strings"

	"github.com/lightningnetwork/lnd/routing/route"
	"github.com/lightningnetwork/trampoline/hop"
)

// MaxTrampolineEdges is the maximum number of edges of a trampoline route:
// our trampoline, a second trampoline and the receiver.
const MaxTrampolineEdges = 3

// Route is an ordered list of trampoline edges from the sender to the
// receiver.
type Route struct {
	Edges []*Edge
}

// last returns the final edge of the route.
func (r *Route) last() *Edge {
	return r.Edges[len(r.Edges)-1]
}

// extend appends an edge from the end of the route to the given node.
func (r *Route) extend(end route.Vertex) {
	r.Edges = append(r.Edges, newEdge(r.last().EndNode, end, true))
}

// NodeKeys returns the end nodes of all edges, which are the hops of the
// trampoline onion.
func (r *Route) NodeKeys() []route.Vertex {
	keys := make([]route.Vertex, 0, len(r.Edges))
	for _, edge := range r.Edges {
		keys = append(keys, edge.EndNode)
	}

	return keys
}

// FailedRouteEntry returns the entry to record in FailedRoutes when a
// payment over this route fails.
func (r *Route) FailedRouteEntry() []string {
	entry := make([]string, 0, len(r.Edges))
	for _, edge := range r.Edges {
		entry = append(entry, edge.EndNode.String())
	}

	return entry
}

// Validate checks that the route is a connected path from sender to receiver
// with at most MaxTrampolineEdges edges.
func (r *Route) Validate(sender, receiver route.Vertex) error {
	invalid := func(index int, format string, args ...interface{}) error {
		return &ErrInvalidRoute{
			Index:  index,
			Reason: fmt.Sprintf(format, args...),
		}
	}

	switch {
	case len(r.Edges) == 0:
		return invalid(-1, "no edges")

	case len(r.Edges) > MaxTrampolineEdges:
		return invalid(-1, "%d edges exceeds maximum of %d",
			len(r.Edges), MaxTrampolineEdges)
	}

	prev := sender
	for i, edge := range r.Edges {
		if edge.StartNode != prev {
			return invalid(i, "starts at %v, expected %v",
				edge.StartNode, prev)
		}

		prev = edge.EndNode
	}

	if prev != receiver {
		return invalid(len(r.Edges)-1, "ends at %v, expected "+
			"receiver %v", prev, receiver)
	}

	return nil
}

// policies returns the forwarding policy of each edge.
func (r *Route) policies() []hop.Policy {
	policies := make([]hop.Policy, 0, len(r.Edges))
	for _, edge := range r.Edges {
		policies = append(policies, edge.policy())
	}

	return policies
}

// String returns a human readable representation of the route.
func (r *Route) String() string {
	edges := make([]string, 0, len(r.Edges))
	for _, edge := range r.Edges {
		edges = append(edges, edge.String())
	}

	return strings.Join(edges, ", ")
}
