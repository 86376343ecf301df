// Package graph provides the serialization formats at the edges of the
// pipeline.
//
// # Formats
//
//   - Graph JSON: the unpositioned or positioned [tree.Graph] as produced by
//     the builder and layout engine. Used for cache entries and graph hashes.
//   - [Layout]: a flat, render-oriented export with one box per node (label,
//     type, position, size) and the edge list. Served by the API and written
//     by `stamboom layout`.
//   - [Seed]: the import file format for a whole family, with members keyed
//     by file-local ids and marriages listing their children.
//
// Common operations:
//
//	data, _ := graph.MarshalGraph(g)           // tree.Graph -> []byte
//	g, _ := graph.ReadGraphFile("tree.json")   // file -> tree.Graph
//	l := graph.FromTree(positioned)            // tree.Graph -> Layout
//	seed, _ := graph.ReadSeedFile("jansen.json")
//	ds := seed.Dataset()                       // Seed -> family.Dataset
//
// # Seed files
//
//	{
//	  "name": "Jansen",
//	  "members": [
//	    {"id": 1, "firstName": "Jan", "lastName": "Jansen", "birthDate": "1920"},
//	    {"id": 2, "firstName": "Marie", "lastName": "de Vries"},
//	    {"id": 3, "firstName": "Piet", "lastName": "Jansen"}
//	  ],
//	  "marriages": [
//	    {"p1": 1, "p2": 2, "city": "Utrecht", "children": [3]}
//	  ]
//	}
//
// Member ids only need to be unique within the file; storage assigns new ids
// on import.
package graph
