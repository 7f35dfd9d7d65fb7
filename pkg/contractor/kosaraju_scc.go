package contractor

import (
	"math"
	"time"

	"github.com/lintang-b-s/roadgraph/pkg/datastructure"
	"github.com/lintang-b-s/roadgraph/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// Components is the strongly connected component decomposition of a graph.
type Components struct {
	// Members lists the nodes of each component in increasing id order.
	// Components are numbered in the order the second Kosaraju pass finds them.
	Members [][]datastructure.NodeID
	// ComponentOf maps a node id to its component number.
	ComponentOf []int32
	// CondensationAdj is the adjacency of the component DAG. An arc appears
	// once per graph edge crossing two components.
	CondensationAdj [][]int32
}

// Len returns the number of components.
func (c *Components) Len() int {
	return len(c.Members)
}

// Largest returns the number of the component with the most nodes. Ties go to
// the component holding the smallest node id. Returns -1 for an empty graph.
func (c *Components) Largest() int {
	best := -1
	bestRoot := datastructure.NodeID(math.MaxInt32)
	for i, members := range c.Members {
		root := members[0]
		if best == -1 || len(members) > len(c.Members[best]) ||
			(len(members) == len(c.Members[best]) && root < bestRoot) {
			best = i
			bestRoot = root
		}
	}
	return best
}

// StronglyConnectedComponents runs Kosaraju's algorithm over g.
//
// Node v reaches u through an edge when v is its source, or when the edge is
// bidirectional and v is its target. Both depth first passes use an explicit
// stack, so long chains of nodes do not grow the goroutine stack.
func StronglyConnectedComponents(g *datastructure.Graph) *Components {
	n := g.NumNodes()

	order := make([]datastructure.NodeID, 0, n)
	visited := make([]bool, n)
	for _, v := range g.NodeIDs() {
		if !visited[v] {
			postOrder(g, v, visited, &order)
		}
	}
	order = util.ReverseG(order)

	reverse := reverseAdjacency(g)

	visited = make([]bool, n)
	componentOf := make([]int32, n)
	members := make([][]datastructure.NodeID, 0)
	stack := make([]datastructure.NodeID, 0)
	for _, v := range order {
		if visited[v] {
			continue
		}
		id := int32(len(members))
		component := make([]datastructure.NodeID, 0)

		visited[v] = true
		stack = append(stack[:0], v)
		for len(stack) > 0 {
			u := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			component = append(component, u)
			componentOf[u] = id
			for _, w := range reverse[u] {
				if !visited[w] {
					visited[w] = true
					stack = append(stack, w)
				}
			}
		}

		slices.Sort(component)
		members = append(members, component)
	}

	condAdj := make([][]int32, len(members))
	for _, e := range g.Edges() {
		cs, ct := componentOf[e.Source], componentOf[e.Target]
		if cs == ct {
			continue
		}
		condAdj[cs] = append(condAdj[cs], ct)
		if e.Bidirectional {
			condAdj[ct] = append(condAdj[ct], cs)
		}
	}

	return &Components{
		Members:         members,
		ComponentOf:     componentOf,
		CondensationAdj: condAdj,
	}
}

type dfsFrame struct {
	node datastructure.NodeID
	next int
}

// postOrder appends every node reachable from root to order once all of its
// successors have been appended.
func postOrder(g *datastructure.Graph, root datastructure.NodeID, visited []bool,
	order *[]datastructure.NodeID) {
	visited[root] = true
	stack := []dfsFrame{{node: root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		adj := g.OutEdges(top.node)
		if top.next == len(adj) {
			*order = append(*order, top.node)
			stack = stack[:len(stack)-1]
			continue
		}
		e := g.GetEdge(adj[top.next])
		top.next++
		head := e.Head(top.node)
		if !visited[head] {
			visited[head] = true
			stack = append(stack, dfsFrame{node: head})
		}
	}
}

// reverseAdjacency lists, for every node, the nodes it can be reached from.
func reverseAdjacency(g *datastructure.Graph) [][]datastructure.NodeID {
	in := make([][]datastructure.NodeID, g.NumNodes())
	for _, e := range g.Edges() {
		in[e.Target] = append(in[e.Target], e.Source)
		if e.Bidirectional && e.Source != e.Target {
			in[e.Source] = append(in[e.Source], e.Target)
		}
	}
	return in
}

// LargestComponent returns a new graph holding only the largest strongly
// connected component of g. Nodes and edges keep their relative order and are
// renumbered densely from zero. An edge survives when both of its endpoints do.
// The input graph is not modified.
func LargestComponent(g *datastructure.Graph, opts ...Option) *datastructure.Graph {
	return Induce(g, StronglyConnectedComponents(g), opts...)
}

// Induce is LargestComponent over an already computed decomposition of g.
func Induce(g *datastructure.Graph, scc *Components, opts ...Option) *datastructure.Graph {
	o := buildOptions(opts)
	st := time.Now()

	if g.NumNodes() == 0 {
		return datastructure.NewGraph()
	}

	largest := scc.Members[scc.Largest()]
	o.logger.Sugar().Infof("Strongly Connected Components Count: %d", scc.Len())

	newID := make([]datastructure.NodeID, g.NumNodes())
	for i := range newID {
		newID[i] = -1
	}
	// members are sorted, so new ids follow the original node order
	for i, v := range largest {
		newID[v] = datastructure.NodeID(i)
	}

	numEdges := 0
	for _, e := range g.Edges() {
		if newID[e.Source] != -1 && newID[e.Target] != -1 {
			numEdges++
		}
	}

	out := datastructure.NewGraphWithCapacity(len(largest), numEdges)
	for _, v := range largest {
		out.AddNode(g.GetNode(v).Coordinate)
	}
	for _, e := range g.Edges() {
		s, t := newID[e.Source], newID[e.Target]
		if s == -1 || t == -1 {
			continue
		}
		out.AddEdge(s, t, e.EdgeData)
	}

	o.logger.Info("extracted largest strongly connected component",
		zap.Int("nodes", out.NumNodes()),
		zap.Int("edges", out.NumEdges()),
		zap.Int("dropped_nodes", g.NumNodes()-out.NumNodes()),
		zap.Int("dropped_edges", g.NumEdges()-out.NumEdges()),
		zap.Duration("elapsed", time.Since(st)),
	)
	return out
}
