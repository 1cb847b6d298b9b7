package domain

import (
	"fmt"
	"time"
)

type Stage string

const (
	StageBucket       Stage = "bucket"
	StageDatabase     Stage = "database"
	StageFetch        Stage = "fetch"
	StageUpload       Stage = "upload"
	StageTable        Stage = "table"
	StageQueryService Stage = "query_service"
)

type Outcome string

const (
	OutcomeSucceeded     Outcome = "succeeded"
	OutcomeAlreadyExists Outcome = "already-exists"
	OutcomeSkipped       Outcome = "skipped"
	OutcomeFailed        Outcome = "failed"
)

// StageResult is the outcome of a single pipeline stage.
//
// Err is set if and only if Outcome is OutcomeFailed.
type StageResult struct {
	Stage   Stage
	Outcome Outcome
	Detail  string
	Err     error
}

func Succeeded(stage Stage, detail string) StageResult {
	return StageResult{Stage: stage, Outcome: OutcomeSucceeded, Detail: detail}
}

func AlreadyExisted(stage Stage, detail string) StageResult {
	return StageResult{Stage: stage, Outcome: OutcomeAlreadyExists, Detail: detail}
}

func Skipped(stage Stage, detail string) StageResult {
	return StageResult{Stage: stage, Outcome: OutcomeSkipped, Detail: detail}
}

func Failed(stage Stage, err error) StageResult {
	if err == nil {
		panic("logic error: failed stage without an error")
	}
	return StageResult{Stage: stage, Outcome: OutcomeFailed, Detail: err.Error(), Err: err}
}

func (r StageResult) String() string {
	if r.Detail == "" {
		return fmt.Sprintf("%s: %s", r.Stage, r.Outcome)
	}
	return fmt.Sprintf("%s: %s (%s)", r.Stage, r.Outcome, r.Detail)
}

// SkippedTeam records a team whose roster did not make it into the snapshot
type SkippedTeam struct {
	Team       Team
	StatusCode int
	Reason     string
}

// FetchSummary describes what the fetch stage saw
type FetchSummary struct {
	TeamsListed  int
	TeamsFetched int
	Skipped      []SkippedTeam
	PlayerCount  int
}

type RunReport struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Stages     []StageResult
	Fetch      FetchSummary
}

func (r *RunReport) Add(result StageResult) {
	r.Stages = append(r.Stages, result)
}

// Failed returns the stages that failed, in execution order
func (r RunReport) Failed() []StageResult {
	failed := []StageResult{}
	for _, stage := range r.Stages {
		if stage.Outcome == OutcomeFailed {
			failed = append(failed, stage)
		}
	}
	return failed
}

func (r RunReport) Result(stage Stage) (StageResult, bool) {
	for _, result := range r.Stages {
		if result.Stage == stage {
			return result, true
		}
	}
	return StageResult{}, false
}

// Outcomes maps every stage to its outcome. Suitable for logging.
func (r RunReport) Outcomes() map[string]string {
	outcomes := make(map[string]string, len(r.Stages))
	for _, stage := range r.Stages {
		outcomes[string(stage.Stage)] = string(stage.Outcome)
	}
	return outcomes
}
