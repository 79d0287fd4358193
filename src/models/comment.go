package models

import "time"

// ChartComment is a free-text annotation attached to one dashboard chart.
type ChartComment struct {
	ChartID   string    `json:"chartId"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updatedAt"`
}
