package uniprot

import (
	"context"
	"fmt"
)

type runState int

const (
	stateSubmit runState = iota
	statePoll
	stateWait
	stateFetch
	stateDone
)

func (s runState) String() string {
	switch s {
	case stateSubmit:
		return "submit"
	case statePoll:
		return "poll"
	case stateWait:
		return "wait"
	case stateFetch:
		return "fetch"
	case stateDone:
		return "done"
	default:
		return fmt.Sprintf("runState(%d)", int(s))
	}
}

// jobRun moves one job through submit -> poll <-> wait -> fetch -> done.
// With fetch unset a FINISHED status ends the run without downloading results.
type jobRun struct {
	client *Client
	from   string
	to     string
	ids    []string
	fetch  bool

	job   Job
	state runState
}

func (r *jobRun) drive(ctx context.Context) error {
	for r.state != stateDone {
		if err := r.step(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (r *jobRun) step(ctx context.Context) error {
	switch r.state {
	case stateSubmit:
		id, err := r.client.Submit(ctx, r.from, r.to, r.ids)
		if err != nil {
			return err
		}
		r.job.ID = id
		r.state = statePoll

	case statePoll:
		status, err := r.client.Status(ctx, r.job.ID)
		if err != nil {
			return err
		}
		r.job.Status = status
		r.job.Polls++

		switch {
		case status.InProgress():
			r.client.logger.Debug("job still running", "job_id", r.job.ID, "status", status, "retry_in", r.client.pollInterval)
			r.state = stateWait
		case status == StatusFinished && r.fetch:
			r.state = stateFetch
		default:
			if status != StatusFinished {
				r.client.logger.Warn("job ended without results", "job_id", r.job.ID, "status", status)
			}
			r.state = stateDone
		}

	case stateWait:
		if err := r.client.sleep(ctx, r.client.pollInterval); err != nil {
			return fmt.Errorf("uniprot: waiting on job %s: %w", r.job.ID, err)
		}
		r.state = statePoll

	case stateFetch:
		results, err := r.client.Results(ctx, r.job.ID)
		if err != nil {
			return err
		}
		r.job.Results = results
		r.state = stateDone

	default:
		return fmt.Errorf("uniprot: unexpected run state %s", r.state)
	}

	return nil
}
