package gridastar

import (
	"context"
	"sync"
)

// ExpandTask represents a request from the orchestrator to the workers.
type ExpandTask struct {
	Index         int
	FromLocation  Location
	Neighbor      Neighbor
	CurrentGScore float64
	GoalLocation  Location
	HeuristicFunc Heuristic
}

// RelaxProposal is the worker's suggestion for reaching a neighbor.
type RelaxProposal struct {
	Index        int
	FromLocation Location
	ToLocation   Location
	GScore       float64
	FCost        float64
}

// workerPool computes relax proposals concurrently. It never touches the State.
type workerPool struct {
	expandTaskChannel    chan ExpandTask
	relaxProposalChannel chan RelaxProposal
	waitGroup            sync.WaitGroup
}

func startWorkerPool(contextObject context.Context, numberOfWorkers int) *workerPool {
	if numberOfWorkers < 1 {
		numberOfWorkers = 1
	}
	pool := &workerPool{
		expandTaskChannel:    make(chan ExpandTask),
		relaxProposalChannel: make(chan RelaxProposal),
	}
	pool.waitGroup.Add(numberOfWorkers)
	for i := 0; i < numberOfWorkers; i++ {
		go func() {
			defer pool.waitGroup.Done()
			for {
				select {
				case <-contextObject.Done():
					return
				case task := <-pool.expandTaskChannel:
					tentativeG := task.CurrentGScore + task.Neighbor.Cost
					f := tentativeG + task.HeuristicFunc(task.Neighbor.Location, task.GoalLocation)
					proposal := RelaxProposal{
						Index:        task.Index,
						FromLocation: task.FromLocation,
						ToLocation:   task.Neighbor.Location,
						GScore:       tentativeG,
						FCost:        f,
					}
					select {
					case <-contextObject.Done():
						return
					case pool.relaxProposalChannel <- proposal:
					}
				}
			}
		}()
	}
	return pool
}

// expand sends one task per neighbor and returns the proposals in neighbor order,
// so the caller applies them deterministically whatever the worker timing.
func (pool *workerPool) expand(
	contextObject context.Context,
	current *Waypoint,
	neighbors []Neighbor,
	goalLocation Location,
	heuristic Heuristic,
) ([]RelaxProposal, error) {
	go func() {
		for i, neighbor := range neighbors {
			task := ExpandTask{
				Index:         i,
				FromLocation:  current.Location(),
				Neighbor:      neighbor,
				CurrentGScore: current.PreviousCost(),
				GoalLocation:  goalLocation,
				HeuristicFunc: heuristic,
			}
			select {
			case <-contextObject.Done():
				return
			case pool.expandTaskChannel <- task:
			}
		}
	}()

	proposals := make([]RelaxProposal, len(neighbors))
	for i := 0; i < len(neighbors); i++ {
		select {
		case <-contextObject.Done():
			return nil, contextObject.Err()
		case proposal := <-pool.relaxProposalChannel:
			proposals[proposal.Index] = proposal
		}
	}
	return proposals, nil
}

// wait blocks until every worker has exited. The pool context must be done.
func (pool *workerPool) wait() {
	pool.waitGroup.Wait()
}
