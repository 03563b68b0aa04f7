package service

import (
	"context"
	"fmt"

	"bhms-backend/internal/model"
	"bhms-backend/internal/repository"
)

// --- DTOs ---

type RevenueDataPoint struct {
	Year        int     `json:"year"`
	Month       int     `json:"month"`
	Collected   float64 `json:"collected"`
	Outstanding float64 `json:"outstanding"`
	Overdue     float64 `json:"overdue"`
	Invoices    int64   `json:"invoices"`
}

type OccupancyResponse struct {
	Total    int64   `json:"total"`
	Occupied int64   `json:"occupied"`
	Empty    int64   `json:"empty"`
	Locked   int64   `json:"locked"`
	Rate     float64 `json:"rate"` // occupied / (total - locked), 0 when nothing rentable
}

// --- Interface ---

// StatsService backs the owner dashboard.
type StatsService interface {
	Revenue(ctx context.Context, fromYear, fromMonth, toYear, toMonth int) ([]RevenueDataPoint, error)
	Occupancy(ctx context.Context) (OccupancyResponse, error)
}

type statsService struct {
	statsRepo repository.StatsRepository
}

func NewStatsService(statsRepo repository.StatsRepository) StatsService {
	return &statsService{statsRepo: statsRepo}
}

// --- Implementation ---

func (s *statsService) Revenue(ctx context.Context, fromYear, fromMonth, toYear, toMonth int) ([]RevenueDataPoint, error) {
	if fromMonth < 1 || fromMonth > 12 || toMonth < 1 || toMonth > 12 {
		return nil, fmt.Errorf("month values must be between 1 and 12")
	}
	if fromYear*100+fromMonth > toYear*100+toMonth {
		return nil, fmt.Errorf("from period must not be after to period")
	}

	rows, err := s.statsRepo.RevenueByPeriod(ctx, fromYear, fromMonth, toYear, toMonth)
	if err != nil {
		return nil, err
	}

	points := make([]RevenueDataPoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, RevenueDataPoint{
			Year:        r.Year,
			Month:       r.Month,
			Collected:   r.Collected,
			Outstanding: r.Outstanding,
			Overdue:     r.Overdue,
			Invoices:    r.Invoices,
		})
	}
	return points, nil
}

func (s *statsService) Occupancy(ctx context.Context) (OccupancyResponse, error) {
	rows, err := s.statsRepo.Occupancy(ctx)
	if err != nil {
		return OccupancyResponse{}, err
	}

	var resp OccupancyResponse
	for _, r := range rows {
		resp.Total += r.Count
		switch r.Status {
		case model.RoomOccupied:
			resp.Occupied = r.Count
		case model.RoomEmpty:
			resp.Empty = r.Count
		case model.RoomLocked:
			resp.Locked = r.Count
		}
	}

	rentable := resp.Total - resp.Locked
	if rentable > 0 {
		resp.Rate = float64(resp.Occupied) / float64(rentable)
	}
	return resp, nil
}
