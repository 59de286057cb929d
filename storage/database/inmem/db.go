// Package inmemdb keeps every table in memory. It backs the tests and the "memory" database engine.
package inmemdb

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/trezcool/ayudantias/core"
	"github.com/trezcool/ayudantias/core/academic"
	"github.com/trezcool/ayudantias/core/admin"
	"github.com/trezcool/ayudantias/core/assistant"
	"github.com/trezcool/ayudantias/core/placement"
	"github.com/trezcool/ayudantias/core/supervisor"
)

type (
	DB struct {
		admin      *adminTable
		academic   *academicTables
		assistant  *assistantTable
		supervisor *supervisorTable
		placement  *placementTables
	}

	adminTable struct {
		table map[string]*admin.Admin
		mutex sync.RWMutex
	}

	academicTables struct {
		faculties []academic.Faculty
		majors    []academic.Major
		periods   []academic.Period
		mutex     sync.RWMutex
	}

	assistantTable struct {
		table map[string]*assistant.Assistant
		mutex sync.RWMutex
	}

	supervisorTable struct {
		table map[string]*supervisor.Supervisor
		mutex sync.RWMutex
	}

	placementTables struct {
		placements  map[int]*placement.Placement
		activities  map[int]*placement.Activity
		approvals   []placement.Approval
		window      placement.Window
		placementPK int
		activityPK  int
		mutex       sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		admin:      &adminTable{table: make(map[string]*admin.Admin)},
		academic:   &academicTables{},
		assistant:  &assistantTable{table: make(map[string]*assistant.Assistant)},
		supervisor: &supervisorTable{table: make(map[string]*supervisor.Supervisor)},
		placement: &placementTables{
			placements: make(map[int]*placement.Placement),
			activities: make(map[int]*placement.Activity),
		},
	}
}

// fieldGetter returns the value of an orderable field; strings compare case-insensitively.
type fieldGetter func(i int, field string) interface{}

// sortRows orders n rows by orderings, falling back to defaultOrd when none is given.
func sortRows(n int, swap func(i, j int), get fieldGetter, orderings []core.DBOrdering, defaultOrd core.DBOrdering) {
	if len(orderings) == 0 {
		orderings = []core.DBOrdering{defaultOrd}
	}
	sort.Stable(rowSorter{n: n, swap: swap, less: func(i, j int) bool {
		for _, ord := range orderings {
			c := compare(get(i, ord.Field), get(j, ord.Field))
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	}})
}

type rowSorter struct {
	n    int
	swap func(i, j int)
	less func(i, j int) bool
}

func (s rowSorter) Len() int           { return s.n }
func (s rowSorter) Swap(i, j int)      { s.swap(i, j) }
func (s rowSorter) Less(i, j int) bool { return s.less(i, j) }

func compare(a, b interface{}) int {
	switch va := a.(type) {
	case string:
		return strings.Compare(strings.ToLower(va), strings.ToLower(b.(string)))
	case time.Time:
		vb := b.(time.Time)
		switch {
		case va.Before(vb):
			return -1
		case va.After(vb):
			return 1
		}
	}
	return 0
}
