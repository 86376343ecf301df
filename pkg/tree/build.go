package tree

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stamboom/pkg/family"
)

// Placeholder names for an unknown spouse.
const (
	UnknownFirstName = "Onbekend"
	UnknownLastName  = "Onbekend"
)

// Option configures a build.
type Option func(*builder)

// WithLogger sets the logger used to report skipped references.
func WithLogger(l *log.Logger) Option {
	return func(b *builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// Build converts people, marriages and child links into an unpositioned
// graph. The placeholder counter starts one above the highest person id.
//
// Inputs are not modified; node payloads are copies.
func Build(people []family.Person, marriages []family.Marriage, children []family.Child, opts ...Option) Graph {
	return BuildWithCounter(NewIDCounter(family.MaxPersonID(people)+1), people, marriages, children, opts...)
}

// BuildWithCounter is [Build] with a caller-owned placeholder counter, so
// several builds can share one id space.
func BuildWithCounter(counter *IDCounter, people []family.Person, marriages []family.Marriage, children []family.Child, opts ...Option) Graph {
	b := &builder{
		logger:    log.New(io.Discard),
		counter:   counter,
		people:    make(map[int64]family.Person, len(people)),
		processed: make(map[int64]struct{}, len(people)),
		nodeIDs:   make(map[string]int),
		edgeIDs:   make(map[string]int),
		children:  make(map[int64][]family.Child),
	}
	for _, opt := range opts {
		opt(b)
	}
	for _, p := range people {
		if _, dup := b.people[p.ID]; !dup {
			b.people[p.ID] = p
		}
	}
	for _, c := range children {
		b.children[c.MarriageID] = append(b.children[c.MarriageID], c)
	}

	for _, m := range marriages {
		b.addMarriage(m)
	}

	for _, p := range people {
		if _, ok := b.processed[p.ID]; ok {
			continue
		}
		b.processed[p.ID] = struct{}{}
		b.addMember(p, func(n *Node) { n.Disconnected = true })
	}
	return b.g
}

type builder struct {
	logger    *log.Logger
	counter   *IDCounter
	people    map[int64]family.Person
	processed map[int64]struct{}
	nodeIDs   map[string]int
	edgeIDs   map[string]int
	children  map[int64][]family.Child
	g         Graph
}

// MarriageNodeID returns the node id of a marriage.
func MarriageNodeID(m family.Marriage) string {
	return fmt.Sprintf("marriage-%s-%s", family.IDToken(m.P1), family.IDToken(m.P2))
}

func (b *builder) addMarriage(m family.Marriage) {
	nodeID := b.unique(b.nodeIDs, MarriageNodeID(m))

	for _, slot := range m.Partners() {
		if slot == nil {
			ph := family.Person{
				ID:        b.counter.Next(),
				FirstName: UnknownFirstName,
				LastName:  UnknownLastName,
			}
			src := b.addMember(ph, func(n *Node) { n.Placeholder = true })
			b.addEdge(EdgeMarriage, marriageEdgeID(src, nodeID), src, nodeID)
			continue
		}
		id := *slot
		src := strconv.FormatInt(id, 10)
		if _, ok := b.processed[id]; !ok {
			p, known := b.people[id]
			if !known {
				b.logger.Debug("skipping unknown partner", "marriage", nodeID, "person", id)
				continue
			}
			b.processed[id] = struct{}{}
			b.addMember(p, nil)
		}
		b.addEdge(EdgeMarriage, marriageEdgeID(src, nodeID), src, nodeID)
	}

	mc := copyMarriage(m)
	b.g.Nodes = append(b.g.Nodes, Node{ID: nodeID, Type: Marriage, Marriage: &mc})

	for _, c := range b.children[m.ID] {
		if _, ok := b.processed[c.ChildID]; !ok {
			p, known := b.people[c.ChildID]
			if !known {
				b.logger.Debug("skipping unknown child", "marriage", nodeID, "person", c.ChildID)
				continue
			}
			b.processed[c.ChildID] = struct{}{}
			b.addMember(p, nil)
		}
		dst := strconv.FormatInt(c.ChildID, 10)
		b.addEdge(EdgeChild, fmt.Sprintf("child-edge-%d-%d", m.ID, c.ChildID), nodeID, dst)
	}
}

func (b *builder) addMember(p family.Person, set func(*Node)) string {
	id := strconv.FormatInt(p.ID, 10)
	n := Node{ID: id, Type: Member, Person: &p}
	if set != nil {
		set(&n)
	}
	b.nodeIDs[id]++
	b.g.Nodes = append(b.g.Nodes, n)
	return id
}

func (b *builder) addEdge(kind EdgeKind, id, source, target string) {
	b.g.Edges = append(b.g.Edges, Edge{
		ID:     b.unique(b.edgeIDs, id),
		Source: source,
		Target: target,
		Kind:   kind,
	})
}

// unique returns id on first use and id#n for the n-th repeat.
func (b *builder) unique(seen map[string]int, id string) string {
	seen[id]++
	if n := seen[id]; n > 1 {
		return fmt.Sprintf("%s#%d", id, n)
	}
	return id
}

func marriageEdgeID(person, marriageNode string) string {
	return fmt.Sprintf("marriage-edge-%s-%s", person, marriageNode)
}

func copyMarriage(m family.Marriage) family.Marriage {
	if m.P1 != nil {
		m.P1 = family.ID(*m.P1)
	}
	if m.P2 != nil {
		m.P2 = family.ID(*m.P2)
	}
	return m
}
