package pipeline

import "context"

// Action performs the work of one stage.
type Action func(ctx context.Context) error

// Stage is one independently guarded unit of the install pipeline.
type Stage struct {
	Name            string
	Action          Action
	StartMessages   []string
	SuccessMessages []string

	// Problem is the one-line statement shown when the action fails.
	Problem string
	// Causes are the probable causes shown, numbered, under Problem.
	Causes []string
	// Footer is an optional closing line of the failure block.
	Footer         string
	PauseOnFailure bool
}

// Reporter presents stage progress to the operator.
type Reporter interface {
	StageStarted(stage Stage)
	StageSucceeded(stage Stage)
	StageFailed(stage Stage, err error)
}

type StageResult struct {
	Name string
	Err  error
}

func (r StageResult) Succeeded() bool { return r.Err == nil }

type Report struct {
	Results []StageResult
}

// Failed returns the results of stages whose action returned an error.
func (r Report) Failed() []StageResult {
	var failed []StageResult
	for _, result := range r.Results {
		if !result.Succeeded() {
			failed = append(failed, result)
		}
	}
	return failed
}

func (r Report) Succeeded() bool { return len(r.Failed()) == 0 }
