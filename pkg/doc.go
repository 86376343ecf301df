// Package pkg provides the core libraries for Stamboom family trees.
//
// # Overview
//
// Stamboom turns the flat records of a family (people, the marriages that
// join them and the children born into each marriage) into a layered tree:
// partners above their marriage node, children below it, unlinked people in
// a grid beside the tree. The pkg directory is organized into four areas:
//
//  1. Records: [family], [errors], [storage], [store]
//  2. Graph and layout: [tree], [dag], [layout]
//  3. Output: [render], [graph], [geo]
//  4. Orchestration: [pipeline], [cache], [observability]
//
// # Architecture
//
// The typical data flow:
//
//	storage.Repository / seed file
//	         ↓
//	    [family] records (Dataset)
//	         ↓
//	    [tree] package (member and marriage nodes, edges)
//	         ↓
//	    [layout] package (ranks, ordering, coordinates)
//	         ↓
//	    SVG/PNG/DOT/JSON output
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/stamboom/pkg/graph"
//	    "github.com/matzehuels/stamboom/pkg/pipeline"
//	)
//
//	seed, _ := graph.ReadSeedFile("smit.json")
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, _ := runner.Execute(ctx, seed.Dataset(), pipeline.Options{
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	svg := result.Artifacts[pipeline.FormatSVG]
//
// # Main Packages
//
// [family] - Person, Marriage, Child and Family records, date parsing, ages,
// search and statistics.
//
// [tree] - Builds the member/marriage graph. Unknown spouses become
// placeholder members; people in no marriage are flagged disconnected.
//
// [dag] - Row-indexed directed graph used by the layout engine, with
// [dag/transform] (cycle breaking, layering, edge subdivision) and
// [dag/perm] (permutations for exhaustive ordering of small rows).
//
// [layout] - Sugiyama-style layered layout: ranks, crossing reduction
// ([layout/ordering]) and coordinates, one connected component at a time.
//
// [render/nodelink] - Graphviz DOT with pinned positions, rendered to SVG
// or PNG in-process.
//
// [graph] - JSON formats: the layout export and seed files.
//
// [pipeline] - Build, layout and render with caching, used by the CLI and
// the HTTP API. [pipeline.Refresher] keeps a layout in step with edits.
//
// [storage] - The Repository contract with memory, PostgreSQL and MongoDB
// backends, plus seed import and family copy.
//
// [store] - Explicit state container for the records of one family.
//
// [geo] - Mapbox geocoding of birthplaces into GeoJSON.
//
// [cache] - File, Redis and null caches with content-addressed keys.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/layout/...             # Specific package
//	go test -run Example                 # Examples only
//
// Backend tests against live databases are skipped unless
// STAMBOOM_TEST_POSTGRES_DSN or STAMBOOM_TEST_MONGO_URI is set.
//
// [family]: https://pkg.go.dev/github.com/matzehuels/stamboom/pkg/family
// [errors]: https://pkg.go.dev/github.com/matzehuels/stamboom/pkg/errors
// [storage]: https://pkg.go.dev/github.com/matzehuels/stamboom/pkg/storage
// [store]: https://pkg.go.dev/github.com/matzehuels/stamboom/pkg/store
// [tree]: https://pkg.go.dev/github.com/matzehuels/stamboom/pkg/tree
// [dag]: https://pkg.go.dev/github.com/matzehuels/stamboom/pkg/dag
// [dag/transform]: https://pkg.go.dev/github.com/matzehuels/stamboom/pkg/dag/transform
// [dag/perm]: https://pkg.go.dev/github.com/matzehuels/stamboom/pkg/dag/perm
// [layout]: https://pkg.go.dev/github.com/matzehuels/stamboom/pkg/layout
// [layout/ordering]: https://pkg.go.dev/github.com/matzehuels/stamboom/pkg/layout/ordering
// [render]: https://pkg.go.dev/github.com/matzehuels/stamboom/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/stamboom/pkg/render/nodelink
// [graph]: https://pkg.go.dev/github.com/matzehuels/stamboom/pkg/graph
// [geo]: https://pkg.go.dev/github.com/matzehuels/stamboom/pkg/geo
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/stamboom/pkg/pipeline
// [pipeline.Refresher]: https://pkg.go.dev/github.com/matzehuels/stamboom/pkg/pipeline#Refresher
// [cache]: https://pkg.go.dev/github.com/matzehuels/stamboom/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/stamboom/pkg/observability
package pkg
