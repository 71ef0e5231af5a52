package mapper

import (
	"ai-llm-demos-be/internal/dto"
	"ai-llm-demos-be/pkg/routing"
)

type RoutingMapper struct{}

func NewRoutingMapper() *RoutingMapper {
	return &RoutingMapper{}
}

func (m *RoutingMapper) ToRouteResponse(r *routing.RouteResponse) *dto.RouteResponse {
	if r == nil {
		return nil
	}
	path := r.SelectedPath
	if path == nil {
		path = []string{}
	}
	return &dto.RouteResponse{
		Motivation:   r.Motivation,
		SelectedPath: path,
	}
}
