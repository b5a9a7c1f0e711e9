package models

type PlanRequest struct {
	Query string `json:"query"`
}
