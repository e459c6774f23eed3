package manifest

// GroupByFlight partitions entries by flight number and destination. Groups
// come out in the order their key was first seen and keep their entries in
// arrival order. Entries repeating the same name are retained as-is; the
// reconciler deals with them one at a time.
func GroupByFlight(entries []ParsedEntry) []*FlightGroup {
	groups := make([]*FlightGroup, 0)
	byKey := make(map[string]*FlightGroup)

	for _, entry := range entries {
		candidate := &FlightGroup{
			FlightNumber: entry.FlightNumber,
			Destination:  entry.Destination,
		}
		group, ok := byKey[candidate.Key()]
		if !ok {
			group = candidate
			byKey[candidate.Key()] = group
			groups = append(groups, group)
		}
		group.Entries = append(group.Entries, entry)
	}

	return groups
}
