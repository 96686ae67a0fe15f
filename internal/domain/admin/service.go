package admin

import (
	"context"
	"math"
)

var appointmentStatuses = []string{"booked", "accepted", "completed", "cancelled", "rejected"}

type Service struct {
	stats StatsRepository
}

func NewService(stats StatsRepository) *Service {
	return &Service{stats: stats}
}

// Dashboard aggregates marketplace counts. Every appointment status is
// present in ByStatus, zero when unused.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	users, err := s.stats.UserCounts(ctx)
	if err != nil {
		return nil, err
	}
	appts, err := s.stats.AppointmentCounts(ctx)
	if err != nil {
		return nil, err
	}
	orders, revenue, err := s.stats.OrderTotals(ctx)
	if err != nil {
		return nil, err
	}
	msgs, err := s.stats.MessageCount(ctx)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Patients:     users["patient"],
		Doctors:      users["doctor"],
		Shops:        users["shop"],
		Messages:     msgs,
		ByStatus:     make(map[string]int, len(appointmentStatuses)),
		Orders:       orders,
		OrderRevenue: math.Round(revenue*100) / 100,
	}
	for _, st := range appointmentStatuses {
		d.ByStatus[st] = appts[st]
	}
	for _, n := range appts {
		d.Appointments += n
	}
	return d, nil
}
