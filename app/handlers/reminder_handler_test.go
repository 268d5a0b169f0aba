package handlers

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redelink/redelink/app/dto"
	businessflow "github.com/redelink/redelink/business_flow"
	"github.com/redelink/redelink/models"
	"github.com/redelink/redelink/utils"
)

// fakeReminderFlow captures the pass time handed to RunPass
type fakeReminderFlow struct {
	lastPassTime time.Time
	run          *models.ReminderPassRun
	err          error
}

func (f *fakeReminderFlow) ComputePendingReminders(ctx context.Context, now time.Time) (*businessflow.PassComputation, error) {
	return nil, nil
}

func (f *fakeReminderFlow) RecordSent(ctx context.Context, pending *businessflow.PendingReminder, trackingID string, status models.MessageSendStatus, sentAt time.Time) error {
	return nil
}

func (f *fakeReminderFlow) RunPass(ctx context.Context, now time.Time) (*models.ReminderPassRun, error) {
	f.lastPassTime = now
	if f.err != nil {
		return nil, f.err
	}
	return f.run, nil
}

func (f *fakeReminderFlow) ListPassRuns(ctx context.Context, req *dto.ListPassRunsRequest) (*dto.ListPassRunsResponse, error) {
	return &dto.ListPassRunsResponse{}, nil
}

func newRunPassApp(flow businessflow.ReminderFlow) *fiber.App {
	handler := NewReminderHandler(flow, nil)
	app := fiber.New()
	app.Post("/api/v1/reminders/run", handler.RunPass)
	return app
}

func TestRunPassHandler(t *testing.T) {
	t.Run("empty body runs the pass for today", func(t *testing.T) {
		flow := &fakeReminderFlow{run: &models.ReminderPassRun{ID: 1}}
		app := newRunPassApp(flow)

		req := httptest.NewRequest("POST", "/api/v1/reminders/run", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, utils.DateOnly(utils.UTCNow()), utils.DateOnly(flow.lastPassTime))
	})

	t.Run("explicit date pins the pass", func(t *testing.T) {
		flow := &fakeReminderFlow{run: &models.ReminderPassRun{ID: 1}}
		app := newRunPassApp(flow)

		req := httptest.NewRequest("POST", "/api/v1/reminders/run", strings.NewReader(`{"date":"2025-06-07"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC), flow.lastPassTime)
	})

	t.Run("malformed date is rejected", func(t *testing.T) {
		flow := &fakeReminderFlow{run: &models.ReminderPassRun{ID: 1}}
		app := newRunPassApp(flow)

		req := httptest.NewRequest("POST", "/api/v1/reminders/run", strings.NewReader(`{"date":"07/06/2025"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.True(t, flow.lastPassTime.IsZero())
	})

	t.Run("already ran maps to conflict", func(t *testing.T) {
		flow := &fakeReminderFlow{err: businessflow.ErrPassAlreadyRan}
		app := newRunPassApp(flow)

		req := httptest.NewRequest("POST", "/api/v1/reminders/run", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	})
}
