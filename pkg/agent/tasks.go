package agent

import (
	"fmt"
	"math"
	"sort"
)

// Unreachable is the distance used when a candidate has no known route to an anchor
const Unreachable = math.MaxInt

// Candidate is an agent eligible for a task, with its hop distance to each
// task anchor it can reach.
type Candidate struct {
	ID        int
	Distances map[string]int
}

func (c Candidate) distance(anchor string) int {
	if d, ok := c.Distances[anchor]; ok {
		return d
	}
	return Unreachable
}

// Assignment maps agent id to the task it holds
type Assignment map[int]Task

// Holder returns the agent holding task id, if any
func (a Assignment) Holder(taskID string) (int, bool) {
	for agentID, t := range a {
		if t.ID == taskID {
			return agentID, true
		}
	}
	return 0, false
}

// Validate returns an error if two agents hold the same task
func (a Assignment) Validate() error {
	seen := make(map[string]int, len(a))
	ids := make([]int, 0, len(a))
	for id := range a {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		t := a[id]
		if other, dup := seen[t.ID]; dup {
			return fmt.Errorf("task %s assigned to agents %d and %d", t.ID, other, id)
		}
		seen[t.ID] = id
	}
	return nil
}

// AssignTasks distributes tasks among candidates, at most one task per
// agent and at most one agent per task. Pairs are taken greedily in order of
// (distance to anchor, agent id, task id), so the nearest agent wins each
// task and ties go to the lowest id. The result depends only on the inputs,
// never on their order.
func AssignTasks(candidates []Candidate, tasks []Task) Assignment {
	type pair struct {
		agent int
		task  Task
		dist  int
	}

	uniqTasks := make(map[string]Task, len(tasks))
	for _, t := range tasks {
		uniqTasks[t.ID] = t
	}
	uniqAgents := make(map[int]Candidate, len(candidates))
	for _, c := range candidates {
		uniqAgents[c.ID] = c
	}

	pairs := make([]pair, 0, len(uniqAgents)*len(uniqTasks))
	for _, c := range uniqAgents {
		for _, t := range uniqTasks {
			pairs = append(pairs, pair{agent: c.ID, task: t, dist: c.distance(t.Anchor)})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].dist != pairs[j].dist {
			return pairs[i].dist < pairs[j].dist
		}
		if pairs[i].agent != pairs[j].agent {
			return pairs[i].agent < pairs[j].agent
		}
		return pairs[i].task.ID < pairs[j].task.ID
	})

	out := make(Assignment)
	taken := make(map[string]bool)
	for _, p := range pairs {
		if _, busy := out[p.agent]; busy || taken[p.task.ID] {
			continue
		}
		out[p.agent] = p.task
		taken[p.task.ID] = true
	}
	return out
}
