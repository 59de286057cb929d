package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/ayudantias/core/placement"
)

type placementRepository struct {
	db *placementTables
}

func NewPlacementRepository(db *DB) placement.Repository {
	return &placementRepository{db: db.placement}
}

func (repo *placementRepository) CreatePlacement(_ context.Context, p placement.Placement) (placement.Placement, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.placementPK++
	p.ID = repo.db.placementPK
	repo.db.placements[p.ID] = &p
	return p, nil
}

func (repo *placementRepository) QueryPlacements(_ context.Context, filter placement.Filter) ([]placement.Placement, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	placements := make([]placement.Placement, 0, len(repo.db.placements))
	for _, p := range repo.db.placements {
		if filter.Match(*p) {
			placements = append(placements, *p)
		}
	}
	sort.Slice(placements, func(i, j int) bool { return placements[i].ID < placements[j].ID })
	return placements, nil
}

func (repo *placementRepository) GetPlacement(_ context.Context, id int) (placement.Placement, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if p, ok := repo.db.placements[id]; ok {
		return *p, nil
	}
	return placement.Placement{}, placement.ErrNotFound
}

func (repo *placementRepository) SetObjective(_ context.Context, id int, objective string) (placement.Placement, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	p, ok := repo.db.placements[id]
	if !ok {
		return placement.Placement{}, placement.ErrNotFound
	}
	p.Objective = objective
	return *p, nil
}

func (repo *placementRepository) CreateActivity(_ context.Context, a placement.Activity) (placement.Activity, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.placements[a.PlacementID]; !ok {
		return placement.Activity{}, placement.ErrNotFound
	}
	repo.db.activityPK++
	a.ID = repo.db.activityPK
	repo.db.activities[a.ID] = &a
	return a, nil
}

func (repo *placementRepository) QueryActivities(_ context.Context, placementID int) ([]placement.Activity, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	activities := make([]placement.Activity, 0)
	for _, a := range repo.db.activities {
		if a.PlacementID == placementID {
			activities = append(activities, *a)
		}
	}
	// newest first
	sort.Slice(activities, func(i, j int) bool {
		if activities[i].Date != activities[j].Date {
			return activities[i].Date > activities[j].Date
		}
		return activities[i].ID > activities[j].ID
	})
	return activities, nil
}

func (repo *placementRepository) CreateApproval(_ context.Context, a placement.Approval) (placement.Approval, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, ap := range repo.db.approvals {
		if ap.PlacementID == a.PlacementID && ap.Period == a.Period {
			return placement.Approval{}, placement.ErrAlreadyApproved
		}
	}
	repo.db.approvals = append(repo.db.approvals, a)
	return a, nil
}

func (repo *placementRepository) QueryApprovals(_ context.Context, period string) ([]placement.Approval, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	approvals := make([]placement.Approval, 0, len(repo.db.approvals))
	for _, a := range repo.db.approvals {
		if period == "" || a.Period == period {
			approvals = append(approvals, a)
		}
	}
	return approvals, nil
}

func (repo *placementRepository) GetWindow(_ context.Context) (placement.Window, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.db.window, nil
}

func (repo *placementRepository) SetWindow(_ context.Context, open bool) (placement.Window, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.window.Open = open
	return repo.db.window, nil
}
