// Package subscription implements SubscriptionFilter (spec §4.10): the
// per-connection interest sets and the "should receive" predicate the
// broadcast fan-out consults for every connected client.
package subscription

import "sync"

// Filter holds one connection's subscription sets and answers whether a
// given broadcast event should be delivered to it.
type Filter struct {
	mu       sync.RWMutex
	projects map[string]struct{}
	workItems map[string]struct{}
	sprints  map[string]struct{}
}

// New returns an empty Filter.
func New() *Filter {
	return &Filter{
		projects:  make(map[string]struct{}),
		workItems: make(map[string]struct{}),
		sprints:   make(map[string]struct{}),
	}
}

// Subscribe adds ids to the relevant sets. Empty slices are no-ops.
func (f *Filter) Subscribe(projectIDs, workItemIDs, sprintIDs []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range projectIDs {
		f.projects[id] = struct{}{}
	}
	for _, id := range workItemIDs {
		f.workItems[id] = struct{}{}
	}
	for _, id := range sprintIDs {
		f.sprints[id] = struct{}{}
	}
}

// Unsubscribe removes ids from the relevant sets.
func (f *Filter) Unsubscribe(projectIDs, workItemIDs, sprintIDs []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range projectIDs {
		delete(f.projects, id)
	}
	for _, id := range workItemIDs {
		delete(f.workItems, id)
	}
	for _, id := range sprintIDs {
		delete(f.sprints, id)
	}
}

// Event describes the scope of a broadcast for filtering purposes.
type Event struct {
	ProjectID  string
	WorkItemID string // optional, set for work-item-level events
	SprintID   string // optional, set for sprint-level events
}

// ShouldReceive applies the three routing rules from spec §4.10.
func (f *Filter) ShouldReceive(evt Event) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	_, inProject := f.projects[evt.ProjectID]
	if evt.WorkItemID != "" {
		_, inWorkItem := f.workItems[evt.WorkItemID]
		return inProject || inWorkItem
	}
	if evt.SprintID != "" {
		_, inSprint := f.sprints[evt.SprintID]
		return inProject || inSprint
	}
	return inProject
}
