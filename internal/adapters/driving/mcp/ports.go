package mcp

import (
	"github.com/custodia-labs/coursecheck/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server exposes.
type Ports struct {
	// Overlap runs submissions and the all-pairs analysis.
	Overlap driving.OverlapService

	// Corpus backs list_courses and the course resources. Optional.
	Corpus driving.CorpusService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Overlap == nil {
		return ErrMissingOverlapService
	}
	return nil
}
