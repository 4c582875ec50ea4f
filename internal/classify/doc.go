// Package classify provides classifiers that assign category codes to the ink
// blobs of a sheet line.
//
// Two classifiers implement shapes.Classifier:
//
//   - Heuristic is a coarse classifier that looks only at the blob's geometry
//     and ink coverage. It needs no training and returns TopLevelCategory codes.
//   - KNN is an in-memory k-nearest-neighbour model over fixed-size sample
//     vectors. Samples are added at runtime with their labels; it can serve as
//     the coarse or the fine classifier depending on the labels it was given.
//
// # Sample Vectors
//
// A sample is converted to grayscale and resized to a size x size square. One
// extra row of size values is appended holding the original height, width and
// the blob's position in the line, so that blobs that look alike once scaled
// (a dot and a note head) are still told apart.
package classify
