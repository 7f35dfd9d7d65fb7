package datastructure

import "fmt"

// NodeID is a dense, zero-based handle into Graph.nodes.
type NodeID int32

// EdgeID is a dense, zero-based handle into Graph.edges.
type EdgeID int32

type Node struct {
	ID NodeID
	Coordinate

	outEdges []EdgeID
}

// EdgeData is the street metadata carried by an edge.
type EdgeData struct {
	Name          string
	HighwayType   string
	Speed         uint8 // km/h
	Bidirectional bool

	// Geometry is the full shape of the originating way, endpoints included.
	// nil unless the builder was asked to keep geometry.
	Geometry []Coordinate
}

type Edge struct {
	ID     EdgeID
	Source NodeID
	Target NodeID
	EdgeData
}

// Head returns the endpoint reached when e is traversed starting at from.
// from must be one of e's endpoints.
func (e *Edge) Head(from NodeID) NodeID {
	if from == e.Source {
		return e.Target
	}
	return e.Source
}

// Graph owns all nodes and edges. Relationships are id lookups, never pointers.
//
// A node's adjacency list holds every edge it is the source of, plus every
// bidirectional edge it is the target of. Ids are assigned in insertion order
// and never change.
type Graph struct {
	nodes []Node
	edges []Edge
}

func NewGraph() *Graph {
	return &Graph{
		nodes: make([]Node, 0),
		edges: make([]Edge, 0),
	}
}

// NewGraphWithCapacity preallocates room for numNodes nodes and numEdges edges.
func NewGraphWithCapacity(numNodes, numEdges int) *Graph {
	return &Graph{
		nodes: make([]Node, 0, numNodes),
		edges: make([]Edge, 0, numEdges),
	}
}

func (g *Graph) AddNode(coord Coordinate) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, Node{
		ID:         id,
		Coordinate: coord,
		outEdges:   make([]EdgeID, 0, 2),
	})
	return id
}

// AddEdge inserts an edge from source to target and updates adjacency of both
// endpoints. Panics if either endpoint is not in the graph.
func (g *Graph) AddEdge(source, target NodeID, data EdgeData) EdgeID {
	g.checkNode(source)
	g.checkNode(target)

	id := EdgeID(len(g.edges))
	g.edges = append(g.edges, Edge{
		ID:       id,
		Source:   source,
		Target:   target,
		EdgeData: data,
	})

	g.nodes[source].outEdges = append(g.nodes[source].outEdges, id)
	if data.Bidirectional && target != source {
		g.nodes[target].outEdges = append(g.nodes[target].outEdges, id)
	}
	return id
}

func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

func (g *Graph) NumEdges() int {
	return len(g.edges)
}

// NodeIDs returns every valid node id, in increasing order.
func (g *Graph) NodeIDs() []NodeID {
	ids := make([]NodeID, len(g.nodes))
	for i := range ids {
		ids[i] = NodeID(i)
	}
	return ids
}

// OutEdges returns the adjacency list of nodeID. The slice is owned by the graph.
func (g *Graph) OutEdges(nodeID NodeID) []EdgeID {
	g.checkNode(nodeID)
	return g.nodes[nodeID].outEdges
}

func (g *Graph) GetNode(nodeID NodeID) Node {
	g.checkNode(nodeID)
	return g.nodes[nodeID]
}

func (g *Graph) GetEdge(edgeID EdgeID) Edge {
	g.checkEdge(edgeID)
	return g.edges[edgeID]
}

// Nodes and Edges expose the arenas for read-only bulk iteration.
func (g *Graph) Nodes() []Node {
	return g.nodes
}

func (g *Graph) Edges() []Edge {
	return g.edges
}

func (g *Graph) checkNode(nodeID NodeID) {
	if nodeID < 0 || int(nodeID) >= len(g.nodes) {
		panic(fmt.Sprintf("datastructure: node id %d out of range [0, %d)", nodeID, len(g.nodes)))
	}
}

func (g *Graph) checkEdge(edgeID EdgeID) {
	if edgeID < 0 || int(edgeID) >= len(g.edges) {
		panic(fmt.Sprintf("datastructure: edge id %d out of range [0, %d)", edgeID, len(g.edges)))
	}
}
