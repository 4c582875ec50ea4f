// Package ocr reads the text on a sheet line using Tesseract.
//
// Composites the shape finder cannot place as notes or bar lines (chord
// names above the staff, tempo and expression words, lyrics below it) are
// handed to Scanner.ReadComposites, which upscales each region and runs it
// through Tesseract via gosseract/v2.
//
// # Prerequisites
//
// Tesseract must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr
//   - macOS: brew install tesseract
//
// Language data files are required for each language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr-eng (for English)
//   - Other languages: tesseract-ocr-<lang> packages
//
// Scanner.TessdataPrefix points Tesseract at a custom language data directory.
//
// # Temporary Files
//
// Each region is written to a temporary PNG for Tesseract and deleted once it
// has been read.
package ocr
