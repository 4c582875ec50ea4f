// Package shapes turns the ink blobs of one sheet line into classified
// shapes and groups them into composites such as notes and bar lines.
//
// # Shapes
//
// A Shape is the bounding box of one blob. It carries a coarse
// TopLevelCategory, an optional fine Category and a belief score per
// category; EffectiveCategory prefers the fine category and falls back to
// the strongest belief. Shapes link to each other by Neighbourhood: the
// eight compass directions for nearby boxes, IN and AROUND for containment
// and INTERSECT for overlap. Links are symmetric and stored as IDs.
//
// # Finder
//
// A Finder owns the shapes of one line in an arena sorted by Min.X, so a
// shape's ID is its index. ScanLine runs the pipeline:
//
//  1. Contour boxes from a ContourExtractor, classified by the coarse and
//     fine Classifiers and linked to their neighbours (FirstPass)
//  2. Voice position and bar lines from the long vertical shapes
//  3. Beliefs from size, containment and position against the staff
//  4. The start of line walk up to the first note head
//  5. Discards away from the staff, then a note composite seeded at every
//     unclaimed note head together with the neighbours it accepts: dots to
//     the east, ledger lines above and below, accidentals to the west
//
// A Finder is not safe for concurrent use.
//
// # Coordinate System
//
// Every rectangle is relative to the sheet line's viewport: origin at the
// top-left, X rightward, Y downward, Max exclusive.
package shapes
