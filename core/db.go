package core

import "strings"

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// AllowedOrderings keeps the orderings whose field is one of fields, preserving their order.
func AllowedOrderings(orderings []DBOrdering, fields ...string) []DBOrdering {
	allowed := make([]DBOrdering, 0, len(orderings))
	for _, ord := range orderings {
		for _, f := range fields {
			if strings.EqualFold(ord.Field, f) {
				allowed = append(allowed, DBOrdering{Field: f, Ascending: ord.Ascending})
				break
			}
		}
	}
	return allowed
}
