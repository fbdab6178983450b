// Package domain defines the core business entities for coursecheck.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Course: A course description with its derived text and embedding
//   - Candidate: A proposed course submitted for checking
//   - OverlapResult, LiteratureMatch, PairReport: Analysis output
//   - CacheEntry: Memoised derived text for one course version
//   - AppSettings: Typed application configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
