package service

import (
	"context"

	"github.com/garyjia/asset-console/internal/application/dispatcher"
	"github.com/garyjia/asset-console/internal/domain/event"
	"github.com/garyjia/asset-console/internal/domain/module"
)

// RecordService handles plain record edits outside the workflow
type RecordService interface {
	List(code module.Code) ([]any, error)
	Get(code module.Code, id string) (any, error)
	Create(ctx context.Context, code module.Code, raw []byte) (string, any, error)
	Patch(ctx context.Context, code module.Code, id string, raw []byte) (any, error)
	Delete(ctx context.Context, code module.Code, id string) (bool, error)
}

type recordService struct {
	router ModuleRouter
	events dispatcher.Dispatcher
	logger Logger
}

// NewRecordService creates a new RecordService
func NewRecordService(router ModuleRouter, events dispatcher.Dispatcher, logger Logger) RecordService {
	if logger == nil {
		logger = nopLogger{}
	}
	return &recordService{router: router, events: events, logger: logger}
}

func (s *recordService) List(code module.Code) ([]any, error) {
	route, err := s.router.Resolve(code)
	if err != nil {
		return nil, err
	}
	return route.Repository.List(), nil
}

func (s *recordService) Get(code module.Code, id string) (any, error) {
	route, err := s.router.Resolve(code)
	if err != nil {
		return nil, err
	}
	return route.Repository.Get(id)
}

func (s *recordService) Create(ctx context.Context, code module.Code, raw []byte) (string, any, error) {
	route, err := s.router.Resolve(code)
	if err != nil {
		return "", nil, err
	}
	id, record, err := route.Repository.CreateJSON(ctx, raw)
	if err != nil {
		return "", nil, err
	}
	s.publish(ctx, event.TypeRecordCreated, code, id)
	return id, record, nil
}

func (s *recordService) Patch(ctx context.Context, code module.Code, id string, raw []byte) (any, error) {
	route, err := s.router.Resolve(code)
	if err != nil {
		return nil, err
	}
	record, err := route.Repository.PatchJSON(ctx, id, raw)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, event.TypeRecordUpdated, code, id)
	return record, nil
}

func (s *recordService) Delete(ctx context.Context, code module.Code, id string) (bool, error) {
	route, err := s.router.Resolve(code)
	if err != nil {
		return false, err
	}
	removed := route.Repository.Delete(ctx, id)
	if removed {
		s.publish(ctx, event.TypeRecordDeleted, code, id)
	}
	return removed, nil
}

func (s *recordService) publish(ctx context.Context, t event.Type, code module.Code, id string) {
	if s.events == nil {
		return
	}
	if err := s.events.Dispatch(ctx, event.NewEvent(t, code.String(), id, nil)); err != nil {
		s.logger.Warn("Record event handlers failed", "event_type", t, "error", err)
	}
}
