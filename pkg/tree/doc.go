// Package tree turns the relational family records into the unpositioned
// node/edge graph that the layout engine consumes.
//
// # Graph shape
//
// Every person becomes a [Member] node whose ID is the decimal person id.
// Every marriage becomes a [Marriage] node with ID "marriage-{p1}-{p2}",
// where an unknown partner renders as "undefined". Edges run from each
// partner to the marriage node ([EdgeMarriage]) and from the marriage node to
// each child ([EdgeChild]):
//
//	1 ──┐
//	    ├─> marriage-1-2 ──> 3
//	2 ──┘
//
// Unknown spouses are replaced by placeholder members named
// "Onbekend Onbekend" whose ids come from an [IDCounter] seeded above the
// highest real person id. People never reached from a marriage or child link
// are emitted with Disconnected set and no edges.
//
// # Failure handling
//
// [Build] never fails. References to people that do not exist are skipped
// and logged at debug level; duplicate child links are kept so bad data
// stays visible in the rendered tree.
package tree
