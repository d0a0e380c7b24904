package timeline

import (
	"sort"

	"subscriber-activity-backend/internal/event"
)

// GroupByService partitions events by service key and time-sorts each
// partition ascending. Nothing is dropped or deduplicated; timestamp ties
// keep their input order.
func GroupByService(events []event.LifecycleEvent) map[string][]event.LifecycleEvent {
	groups := make(map[string][]event.LifecycleEvent)
	for _, ev := range events {
		key := ev.ServiceKey()
		groups[key] = append(groups[key], ev)
	}
	for key := range groups {
		evs := groups[key]
		sort.SliceStable(evs, func(i, j int) bool {
			return evs[i].TS.Before(evs[j].TS)
		})
	}
	return groups
}
