// Package views derives what the portal shows from the data fetched from the API.
package views

import (
	"github.com/trezcool/ayudantias/core/assistant"
	"github.com/trezcool/ayudantias/core/supervisor"
)

// FilterAssistants keeps the assistants whose cedula or name contains term, ignoring case.
// An empty term keeps them all.
func FilterAssistants(list []assistant.Assistant, term string) []assistant.Assistant {
	qf := assistant.QueryFilter{Search: term}
	qf.Clean()
	if qf.Search == "" {
		return list
	}
	filtered := make([]assistant.Assistant, 0, len(list))
	for _, a := range list {
		if qf.Match(a) {
			filtered = append(filtered, a)
		}
	}
	return filtered
}

// FilterSupervisors is FilterAssistants for supervisors.
func FilterSupervisors(list []supervisor.Supervisor, term string) []supervisor.Supervisor {
	qf := supervisor.QueryFilter{Search: term}
	qf.Clean()
	if qf.Search == "" {
		return list
	}
	filtered := make([]supervisor.Supervisor, 0, len(list))
	for _, s := range list {
		if qf.Match(s) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}
