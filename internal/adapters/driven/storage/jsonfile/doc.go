// Package jsonfile provides file-backed corpus and cache stores.
//
// The corpus is a JSON array of course objects keyed by the spreadsheet
// column headers, extended with the derived fields combined_info (normalised
// text), Keywords and embedding. The cache is a JSON object mapping cache
// keys to entries.
//
// Every mutation rewrites the whole file through a temporary file and an
// atomic rename, so a crash mid-write leaves the previous version intact.
package jsonfile
