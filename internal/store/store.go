package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hvac-dispatch-backend/internal/model"
	"hvac-dispatch-backend/internal/parse"
)

// Store defines the interface for all database operations the scheduling
// core performs. Writes are last-write-wins: there is no version column, so
// two concurrent reschedules of the same order race and the later write
// stands. Clients recover by replacing their snapshot on the next re-fetch.
type Store interface {
	DB() *gorm.DB

	OrderByID(ctx context.Context, id uuid.UUID) (*model.ServiceOrder, error)
	// SchedulableOrders returns orders in a schedulable status with a
	// scheduled date inside [from, to), optionally restricted to orders a
	// technician is assigned to.
	SchedulableOrders(ctx context.Context, from, to time.Time, technicianID *uuid.UUID) ([]model.ServiceOrder, error)
	// BoardOrders returns every order with client and assignments loaded;
	// the kanban board filters by month locally because unscheduled orders
	// stay visible in every month.
	BoardOrders(ctx context.Context) ([]model.ServiceOrder, error)
	// AssignmentsOnDate returns a technician's assignments whose parent
	// order is scheduled on the given calendar day, excluding one order.
	AssignmentsOnDate(ctx context.Context, technicianID uuid.UUID, date time.Time, excludeOrderID uuid.UUID) ([]model.Assignment, error)
	// AssignmentsInRange returns all assignments whose parent order is
	// scheduled inside [from, to), with orders and technicians loaded.
	AssignmentsInRange(ctx context.Context, from, to time.Time) ([]model.Assignment, error)

	UpdateOrderSchedule(ctx context.Context, orderID uuid.UUID, upd ScheduleUpdate) error
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func (s *gormStore) OrderByID(ctx context.Context, id uuid.UUID) (*model.ServiceOrder, error) {
	var order model.ServiceOrder
	err := s.db.WithContext(ctx).
		Preload("Client").
		Preload("Assignments.Technician").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load order %s: %w", id, err)
	}
	return &order, nil
}

var schedulableStatuses = []model.OrderStatus{
	model.StatusScheduled,
	model.StatusInProgress,
	model.StatusPending,
	model.StatusCompleted,
}

func (s *gormStore) SchedulableOrders(ctx context.Context, from, to time.Time, technicianID *uuid.UUID) ([]model.ServiceOrder, error) {
	q := s.db.WithContext(ctx).
		Preload("Client").
		Preload("Assignments.Technician").
		Where("status IN ?", schedulableStatuses).
		Where("scheduled_date IS NOT NULL").
		Where("scheduled_date >= ? AND scheduled_date < ?", from, to)

	if technicianID != nil {
		q = q.Where("id IN (?)", s.db.Model(&model.Assignment{}).
			Select("order_id").
			Where("technician_id = ?", *technicianID))
	}

	var orders []model.ServiceOrder
	if err := q.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to query schedulable orders: %w", err)
	}
	return orders, nil
}

func (s *gormStore) BoardOrders(ctx context.Context) ([]model.ServiceOrder, error) {
	var orders []model.ServiceOrder
	err := s.db.WithContext(ctx).
		Preload("Client").
		Preload("Assignments.Technician").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query board orders: %w", err)
	}
	return orders, nil
}

func (s *gormStore) AssignmentsOnDate(ctx context.Context, technicianID uuid.UUID, date time.Time, excludeOrderID uuid.UUID) ([]model.Assignment, error) {
	day := parse.DayOf(date)
	next := day.AddDate(0, 0, 1)

	var assignments []model.Assignment
	err := s.db.WithContext(ctx).
		Preload("Order").
		Joins("JOIN service_orders ON service_orders.id = assignments.order_id").
		Where("assignments.technician_id = ?", technicianID).
		Where("service_orders.id <> ?", excludeOrderID).
		Where("service_orders.scheduled_date >= ? AND service_orders.scheduled_date < ?", day, next).
		Where("service_orders.status IN ?", schedulableStatuses).
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments for technician %s on %s: %w",
			technicianID, day.Format("2006-01-02"), err)
	}
	return assignments, nil
}

func (s *gormStore) AssignmentsInRange(ctx context.Context, from, to time.Time) ([]model.Assignment, error) {
	var assignments []model.Assignment
	err := s.db.WithContext(ctx).
		Preload("Order").
		Preload("Technician").
		Joins("JOIN service_orders ON service_orders.id = assignments.order_id").
		Where("service_orders.scheduled_date >= ? AND service_orders.scheduled_date < ?", from, to).
		Where("service_orders.status IN ?", schedulableStatuses).
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments in range: %w", err)
	}
	return assignments, nil
}

func (s *gormStore) UpdateOrderSchedule(ctx context.Context, orderID uuid.UUID, upd ScheduleUpdate) error {
	updates := map[string]any{
		"scheduled_date":     upd.ScheduledDate,
		"scheduled_time":     upd.ScheduledTime,
		"estimated_end_date": upd.EstimatedEndDate,
		"estimated_end_time": upd.EstimatedEndTime,
	}

	res := s.db.WithContext(ctx).
		Model(&model.ServiceOrder{}).
		Where("id = ?", orderID).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update schedule for order %s: %w", orderID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %s not found: %w", orderID, gorm.ErrRecordNotFound)
	}
	return nil
}

func (s *gormStore) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid order status %q", status)
	}

	res := s.db.WithContext(ctx).
		Model(&model.ServiceOrder{}).
		Where("id = ?", orderID).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update status for order %s: %w", orderID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %s not found: %w", orderID, gorm.ErrRecordNotFound)
	}
	return nil
}
