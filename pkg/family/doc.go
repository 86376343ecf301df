// Package family defines the relational records of a family tree: people,
// marriages and the child links that attach a person to the marriage they
// were born into.
//
// # Records
//
// A [Person] carries biographical data. Dates are stored the way users enter
// them: either a full date ("1950/05/01" or "1950-05-01") or a bare four
// digit year ("1950"). [Person.Age] understands both forms.
//
// A [Marriage] joins two partners. Either partner may be unknown, in which
// case the pointer is nil. Partners are unordered.
//
// A [Child] links a person to a marriage, never to individual parents. A
// person's parents are only discoverable through that marriage.
//
// # Datasets
//
// [Dataset] is the triple the tree pipeline consumes. It is treated as
// immutable by every consumer: mutation helpers in the store package replace
// slices instead of editing them in place.
//
// # Derived data
//
// [Summarize] computes the statistics page (member counts, oldest and
// youngest person) and [Search] implements the member search box.
package family
