package table

import (
	"fmt"
	"math"
)

// Strategy defines how nodes are grouped into partitions
type Strategy int

const (
	BlockPartition Strategy = iota // Consecutive nodes
	RoundRobin                     // Distribute cyclically
)

func (s Strategy) String() string {
	switch s {
	case BlockPartition:
		return "block"
	case RoundRobin:
		return "round-robin"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy converts "block" or "round-robin" to a Strategy
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "", "block":
		return BlockPartition, nil
	case "round-robin", "roundrobin":
		return RoundRobin, nil
	}
	return 0, fmt.Errorf("unknown partition strategy %q", s)
}

// Partition is a set of nodes evaluated together by one worker
type Partition struct {
	ID int

	Nodes    []int // Global node indices in increasing order
	NumNodes int
	MaxNodes int // Largest NumNodes across the layout
}

// Layout is the decomposition of the node set into partitions
type Layout struct {
	Partitions []Partition

	MaxNodes      int
	TotalNodes    int
	NumPartitions int

	// Node to partition mappings
	NToP []int // Node i belongs to partition NToP[i]
	NToL []int // at local position NToL[i]
}

// BuildLayout splits numNodes nodes into at most numPartitions partitions.
// The partition count is reduced to the node count when there are fewer
// nodes than partitions, and block partitioning drops any partition left
// without nodes.
func BuildLayout(numNodes, numPartitions int, strategy Strategy) (*Layout, error) {
	if numNodes < 1 {
		return nil, fmt.Errorf("cannot partition %d nodes", numNodes)
	}
	if numPartitions < 1 {
		return nil, fmt.Errorf("invalid partition count %d", numPartitions)
	}
	if numPartitions > numNodes {
		numPartitions = numNodes
	}

	nToP := make([]int, numNodes)
	switch strategy {
	case BlockPartition:
		perPartition := int(math.Ceil(float64(numNodes) / float64(numPartitions)))
		// Drop the partitions the ceiling would leave empty
		numPartitions = int(math.Ceil(float64(numNodes) / float64(perPartition)))
		for i := range nToP {
			nToP[i] = i / perPartition
		}
	case RoundRobin:
		for i := range nToP {
			nToP[i] = i % numPartitions
		}
	default:
		return nil, fmt.Errorf("unknown partition strategy %d", int(strategy))
	}

	l := &Layout{
		Partitions:    make([]Partition, numPartitions),
		TotalNodes:    numNodes,
		NumPartitions: numPartitions,
		NToP:          nToP,
		NToL:          make([]int, numNodes),
	}
	for i := range l.Partitions {
		l.Partitions[i].ID = i
	}
	for node, part := range nToP {
		p := &l.Partitions[part]
		l.NToL[node] = len(p.Nodes)
		p.Nodes = append(p.Nodes, node)
		p.NumNodes++
	}
	for _, p := range l.Partitions {
		if p.NumNodes > l.MaxNodes {
			l.MaxNodes = p.NumNodes
		}
	}
	for i := range l.Partitions {
		l.Partitions[i].MaxNodes = l.MaxNodes
	}

	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("invalid partition layout: %w", err)
	}
	return l, nil
}

// GetPartition returns the partition containing node i
func (l *Layout) GetPartition(node int) int {
	if node < 0 || node >= len(l.NToP) {
		return -1
	}
	return l.NToP[node]
}

// Validate checks that every node belongs to exactly one partition and that
// the mappings agree with the partition node lists.
func (l *Layout) Validate() error {
	if len(l.NToP) != l.TotalNodes || len(l.NToL) != l.TotalNodes {
		return fmt.Errorf("node maps have lengths %d and %d for %d nodes",
			len(l.NToP), len(l.NToL), l.TotalNodes)
	}
	seen := make([]bool, l.TotalNodes)
	actualMax, total := 0, 0
	for pi, p := range l.Partitions {
		if p.ID != pi {
			return fmt.Errorf("partition at position %d has ID %d", pi, p.ID)
		}
		if p.NumNodes != len(p.Nodes) {
			return fmt.Errorf("partition %d: NumNodes %d != %d listed nodes", p.ID, p.NumNodes, len(p.Nodes))
		}
		if p.MaxNodes != l.MaxNodes {
			return fmt.Errorf("partition %d: MaxNodes %d != layout MaxNodes %d", p.ID, p.MaxNodes, l.MaxNodes)
		}
		for local, node := range p.Nodes {
			if node < 0 || node >= l.TotalNodes {
				return fmt.Errorf("partition %d lists node %d of %d", p.ID, node, l.TotalNodes)
			}
			if seen[node] {
				return fmt.Errorf("node %d appears in more than one partition", node)
			}
			seen[node] = true
			if l.NToP[node] != p.ID || l.NToL[node] != local {
				return fmt.Errorf("node %d maps to partition %d position %d, listed in partition %d position %d",
					node, l.NToP[node], l.NToL[node], p.ID, local)
			}
		}
		total += p.NumNodes
		if p.NumNodes > actualMax {
			actualMax = p.NumNodes
		}
	}
	if total != l.TotalNodes {
		return fmt.Errorf("partitions hold %d of %d nodes", total, l.TotalNodes)
	}
	if actualMax != l.MaxNodes {
		return fmt.Errorf("computed MaxNodes %d != stored MaxNodes %d", actualMax, l.MaxNodes)
	}
	return nil
}
