package search

import (
	"github.com/poiesic/itinera/core"
	"github.com/poiesic/itinera/storage"
)

// Monitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps and results during search.
type Monitor interface {
	Start(query string, alpha float64)
	AfterLexicalSearch(hits []storage.Hit)
	AfterVectorSearch(hits []storage.Hit)
	AfterFusion(candidates []*core.Candidate)
	AfterRerank(candidates []*core.Candidate)
	StageAttempt(stage int, filters core.SearchFilters, found int)
	Finish(candidates []*core.Candidate)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ float64)                       {}
func (n *noopMonitor) AfterLexicalSearch(_ []storage.Hit)              {}
func (n *noopMonitor) AfterVectorSearch(_ []storage.Hit)               {}
func (n *noopMonitor) AfterFusion(_ []*core.Candidate)                 {}
func (n *noopMonitor) AfterRerank(_ []*core.Candidate)                 {}
func (n *noopMonitor) StageAttempt(_ int, _ core.SearchFilters, _ int) {}
func (n *noopMonitor) Finish(_ []*core.Candidate)                      {}
