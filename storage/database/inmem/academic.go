package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/ayudantias/core/academic"
)

type academicRepository struct {
	db *academicTables
}

func NewAcademicRepository(db *DB) academic.Repository {
	return &academicRepository{db: db.academic}
}

func (repo *academicRepository) CreateFaculty(_ context.Context, f academic.Faculty) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, fac := range repo.db.faculties {
		if fac.Name == f.Name {
			return academic.ErrFacultyExists
		}
	}
	repo.db.faculties = append(repo.db.faculties, f)
	return nil
}

func (repo *academicRepository) QueryFaculties(_ context.Context) ([]academic.Faculty, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	faculties := make([]academic.Faculty, len(repo.db.faculties))
	copy(faculties, repo.db.faculties)
	sort.Slice(faculties, func(i, j int) bool { return faculties[i].Name < faculties[j].Name })
	return faculties, nil
}

func (repo *academicRepository) GetFaculty(_ context.Context, name string) (academic.Faculty, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, fac := range repo.db.faculties {
		if fac.Name == name {
			return fac, nil
		}
	}
	return academic.Faculty{}, academic.ErrFacultyNotFound
}

func (repo *academicRepository) CreateMajor(_ context.Context, m academic.Major) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, major := range repo.db.majors {
		if major.Faculty == m.Faculty && major.Name == m.Name {
			return academic.ErrMajorExists
		}
	}
	repo.db.majors = append(repo.db.majors, m)
	return nil
}

func (repo *academicRepository) QueryMajors(_ context.Context, faculty string) ([]academic.Major, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	majors := make([]academic.Major, 0)
	for _, m := range repo.db.majors {
		if m.Faculty == faculty {
			majors = append(majors, m)
		}
	}
	sort.Slice(majors, func(i, j int) bool { return majors[i].Name < majors[j].Name })
	return majors, nil
}

func (repo *academicRepository) CreatePeriod(_ context.Context, p academic.Period) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, per := range repo.db.periods {
		if per.Name == p.Name {
			return academic.ErrPeriodExists
		}
	}
	p.Current = false
	repo.db.periods = append(repo.db.periods, p)
	return nil
}

func (repo *academicRepository) QueryPeriods(_ context.Context) ([]academic.Period, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	periods := make([]academic.Period, len(repo.db.periods))
	copy(periods, repo.db.periods)
	sort.Slice(periods, func(i, j int) bool { return periods[i].Name > periods[j].Name })
	return periods, nil
}

func (repo *academicRepository) GetPeriod(_ context.Context, name string) (academic.Period, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, p := range repo.db.periods {
		if p.Name == name {
			return p, nil
		}
	}
	return academic.Period{}, academic.ErrPeriodNotFound
}

func (repo *academicRepository) GetCurrentPeriod(_ context.Context) (academic.Period, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, p := range repo.db.periods {
		if p.Current {
			return p, nil
		}
	}
	return academic.Period{}, academic.ErrNoCurrentPeriod
}

func (repo *academicRepository) SetCurrentPeriod(_ context.Context, name string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	found := false
	for _, p := range repo.db.periods {
		if p.Name == name {
			found = true
			break
		}
	}
	if !found {
		return academic.ErrPeriodNotFound
	}
	for i := range repo.db.periods {
		repo.db.periods[i].Current = repo.db.periods[i].Name == name
	}
	return nil
}
