package api

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/lifeline-api/internal/domain/rules"
	"github.com/phrazzld/lifeline-api/internal/events"
	"github.com/phrazzld/lifeline-api/internal/service/donor"
	"github.com/phrazzld/lifeline-api/internal/service/forecast"
	"github.com/phrazzld/lifeline-api/internal/service/matching"
	"github.com/phrazzld/lifeline-api/internal/service/supply"
	"github.com/phrazzld/lifeline-api/internal/task"
)

type fakeMatching struct {
	supplyFn   func(matching.SupplyRequest) matching.Response[[]supply.Candidate]
	donorsFn   func(matching.DonorRequest) matching.Response[[]donor.Match]
	expiryFn   func(uuid.UUID) matching.Response[rules.Assessment]
	searchFn   func(matching.SearchRequest) matching.Response[matching.SearchResult]
	lastSupply matching.SupplyRequest
}

func (f *fakeMatching) FindNearestSupply(
	_ context.Context,
	req matching.SupplyRequest,
) matching.Response[[]supply.Candidate] {
	f.lastSupply = req
	return f.supplyFn(req)
}

func (f *fakeMatching) MatchDonors(_ context.Context, req matching.DonorRequest) matching.Response[[]donor.Match] {
	return f.donorsFn(req)
}

func (f *fakeMatching) ClassifyExpiryByID(_ context.Context, id uuid.UUID) matching.Response[rules.Assessment] {
	return f.expiryFn(id)
}

func (f *fakeMatching) SearchBlood(
	_ context.Context,
	req matching.SearchRequest,
) matching.Response[matching.SearchResult] {
	return f.searchFn(req)
}

type fakeForecast struct {
	predictFn  func(matching.DemandRequest) matching.Response[forecast.Prediction]
	canRetrain bool
}

func (f *fakeForecast) PredictDemand(
	_ context.Context,
	req matching.DemandRequest,
) matching.Response[forecast.Prediction] {
	return f.predictFn(req)
}

func (f *fakeForecast) CanRetrain() bool { return f.canRetrain }

type fakeEmitter struct {
	mu     sync.Mutex
	events []*events.TaskRequestEvent
	err    error
}

func (f *fakeEmitter) EmitEvent(_ context.Context, event *events.TaskRequestEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type fakeTasks struct {
	records map[uuid.UUID]*task.Record
}

func (f *fakeTasks) Status(_ context.Context, id uuid.UUID) (*task.Record, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, task.ErrTaskNotFound
	}
	return rec, nil
}

func failedWith[T any](kind matching.FailureKind, field, msg string) matching.Response[T] {
	return matching.Response[T]{Error: &matching.Failure{Kind: kind, Field: field, Message: msg}}
}
