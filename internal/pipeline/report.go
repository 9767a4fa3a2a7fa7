package pipeline

import (
	"time"

	"git.home.luguber.info/inful/buildprep/internal/manifest"
	"git.home.luguber.info/inful/buildprep/internal/provenance"
	"git.home.luguber.info/inful/buildprep/internal/publish"
)

// State is the orchestrator state machine position.
type State string

const (
	StateStart             State = "start"
	StateCompileProtos     State = "compile_protos"
	StateExtractMetadata   State = "extract_metadata"
	StateCollectProvenance State = "collect_provenance"
	StatePublish           State = "publish"
	StateDone              State = "done"
	StateAborted           State = "aborted"
)

// Report carries the outcome of one orchestrator run.
type Report struct {
	RunID           string
	FinalState      State
	StageDurations  map[string]time.Duration
	StageErrorKinds map[string]string
	Warnings        []error
	SkippedCompile  bool
	Metadata        manifest.ProjectMetadata
	Provenance      provenance.Record
	Constants       publish.Constants
	Duration        time.Duration
}

func newReport(runID string) *Report {
	return &Report{
		RunID:           runID,
		FinalState:      StateStart,
		StageDurations:  make(map[string]time.Duration),
		StageErrorKinds: make(map[string]string),
	}
}
