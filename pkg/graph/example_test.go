package graph_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/stamboom/pkg/graph"
	"github.com/matzehuels/stamboom/pkg/tree"
)

func ExampleReadSeed() {
	seed, err := graph.ReadSeed(strings.NewReader(`{
		"name": "Jansen",
		"members": [
			{"id": 1, "firstName": "Jan", "lastName": "Jansen"},
			{"id": 2, "firstName": "Marie", "lastName": "de Vries"},
			{"id": 3, "firstName": "Piet", "lastName": "Jansen"}
		],
		"marriages": [{"p1": 1, "p2": 2, "children": [3]}]
	}`))
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	ds := seed.Dataset()
	g := tree.Build(ds.People, ds.Marriages, ds.Children)
	for _, e := range g.Edges {
		fmt.Println(e.ID)
	}
	// Output:
	// marriage-edge-1-marriage-1-2
	// marriage-edge-2-marriage-1-2
	// child-edge-1-3
}
