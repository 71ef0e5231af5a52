package dto

type RouteRequest struct {
	Request string `json:"request" label:"Request" validate:"required"`
}

type RouteResponse struct {
	Motivation   string   `json:"motivation"`
	SelectedPath []string `json:"selectedPath"`
}
