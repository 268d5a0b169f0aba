package businessflow

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/redelink/redelink/app/dto"
	"github.com/redelink/redelink/models"
	"github.com/redelink/redelink/repository"
	"github.com/redelink/redelink/utils"
)

// SubscriberStatusFlow resolves subscriber connection status from the RADIUS
// accounting log
type SubscriberStatusFlow interface {
	ListStatuses(ctx context.Context, req *dto.SubscriberStatusListRequest) (*dto.SubscriberStatusListResponse, error)
	History(ctx context.Context, req *dto.SessionHistoryRequest) (*dto.SessionHistoryResponse, error)
	// CountOnline counts subscribers whose latest event is open, under the
	// same search and NAS filters as the list.
	CountOnline(ctx context.Context, req *dto.SubscriberStatusListRequest) (int64, error)
	ExportStatuses(ctx context.Context, req *dto.SubscriberStatusListRequest) ([]byte, error)
}

type subscriberStatusFlowImpl struct {
	accountingRepo repository.AccountingRepository
}

// NewSubscriberStatusFlow creates a new subscriber status flow
func NewSubscriberStatusFlow(accountingRepo repository.AccountingRepository) SubscriberStatusFlow {
	return &subscriberStatusFlowImpl{accountingRepo: accountingRepo}
}

func buildAccountingFilter(req *dto.SubscriberStatusListRequest) models.AccountingFilter {
	filter := models.AccountingFilter{Online: models.OnlineStateAny}
	if req.Search != "" {
		filter.Search = utils.ToPtr(req.Search)
	}
	if req.NASIPAddress != "" {
		filter.NASIPAddress = utils.ToPtr(req.NASIPAddress)
	}
	switch req.Online {
	case "online":
		filter.Online = models.OnlineStateOnline
	case "offline":
		filter.Online = models.OnlineStateOffline
	}
	return filter
}

// resolvePage loads one page of latest-per-subscriber events and tags stale
// open sessions for the subscribers on the page.
func (f *subscriberStatusFlowImpl) resolvePage(ctx context.Context, req *dto.SubscriberStatusListRequest) ([]*models.SubscriberStatusView, int64, error) {
	page, pageSize, err := normalizePage(req.Page, req.PageSize)
	if err != nil {
		return nil, 0, err
	}
	filter := buildAccountingFilter(req)

	total, err := f.accountingRepo.CountSubscribers(ctx, filter)
	if err != nil {
		return nil, 0, NewBusinessError("STATUS_COUNT_FAILED", "failed to count subscribers", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}

	latest, err := f.accountingRepo.LatestPerSubscriber(ctx, filter, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, NewBusinessError("STATUS_LIST_FAILED", "failed to load subscriber statuses", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}

	views := ResolveLatestPerSubscriber(latest)

	var onlineUsers []string
	for _, v := range views {
		if v.IsOnline {
			onlineUsers = append(onlineUsers, v.Username)
		}
	}
	if len(onlineUsers) > 0 {
		open, err := f.accountingRepo.OpenSessionsFor(ctx, onlineUsers)
		if err != nil {
			return nil, 0, NewBusinessError("STATUS_STALE_FAILED", "failed to load open sessions", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
		}
		openByUser := make(map[string][]*models.AccountingEvent)
		for _, ev := range open {
			openByUser[ev.Username] = append(openByUser[ev.Username], ev)
		}
		for _, v := range views {
			v.StaleSessions = TagStaleSessions(openByUser[v.Username])
		}
	}

	return views, total, nil
}

func (f *subscriberStatusFlowImpl) ListStatuses(ctx context.Context, req *dto.SubscriberStatusListRequest) (*dto.SubscriberStatusListResponse, error) {
	views, total, err := f.resolvePage(ctx, req)
	if err != nil {
		return nil, err
	}

	onlineCount, err := f.CountOnline(ctx, req)
	if err != nil {
		return nil, err
	}

	page, pageSize, _ := normalizePage(req.Page, req.PageSize)
	items := make([]dto.SubscriberStatusDTO, 0, len(views))
	for _, v := range views {
		items = append(items, ToSubscriberStatusDTO(v))
	}

	return &dto.SubscriberStatusListResponse{
		Items:       items,
		OnlineCount: onlineCount,
		Pagination:  dto.PaginationDTO{Page: page, PageSize: pageSize, Total: total},
	}, nil
}

func (f *subscriberStatusFlowImpl) History(ctx context.Context, req *dto.SessionHistoryRequest) (*dto.SessionHistoryResponse, error) {
	// History defaults to a smaller window than the list endpoints; the
	// dashboard drilldown shows the last handful of sessions.
	requested := req.PageSize
	if requested == 0 {
		requested = utils.DefaultHistoryLimit
	}
	page, pageSize, err := normalizePage(req.Page, requested)
	if err != nil {
		return nil, err
	}
	if req.Username == "" {
		return nil, ErrSubscriberNotFound
	}

	events, err := f.accountingRepo.History(ctx, req.Username, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("HISTORY_FAILED", "failed to load session history", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}

	total, err := f.accountingRepo.CountHistory(ctx, req.Username)
	if err != nil {
		return nil, NewBusinessError("HISTORY_COUNT_FAILED", "failed to count subscriber sessions", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}
	if total == 0 {
		return nil, ErrSubscriberNotFound
	}

	items := make([]dto.AccountingEventDTO, 0, len(events))
	for _, ev := range events {
		items = append(items, ToAccountingEventDTO(ev))
	}

	return &dto.SessionHistoryResponse{
		Username:   req.Username,
		Items:      items,
		Pagination: dto.PaginationDTO{Page: page, PageSize: pageSize, Total: total},
	}, nil
}

// CountOnline applies the request filters with the online state forced, so
// the counter always agrees with the filtered list it accompanies.
func (f *subscriberStatusFlowImpl) CountOnline(ctx context.Context, req *dto.SubscriberStatusListRequest) (int64, error) {
	filter := buildAccountingFilter(req)
	filter.Online = models.OnlineStateOnline
	count, err := f.accountingRepo.CountSubscribers(ctx, filter)
	if err != nil {
		return 0, NewBusinessError("STATUS_ONLINE_COUNT_FAILED", "failed to count online subscribers", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}
	return count, nil
}

// ExportStatuses renders the filtered status list as an XLSX workbook for
// the dashboard's export button. The export ignores pagination and walks the
// full filtered set in fixed-size pages.
func (f *subscriberStatusFlowImpl) ExportStatuses(ctx context.Context, req *dto.SubscriberStatusListRequest) ([]byte, error) {
	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	sheet := "Subscribers"
	file.SetSheetName(file.GetSheetName(0), sheet)

	headers := []string{"Username", "Online", "Last Seen", "NAS IP", "Session ID", "Session Start", "Input Octets", "Output Octets", "Stale Sessions"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := file.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	// Capped by the page window validation; the export walks as many pages
	// as it takes.
	const exportPageSize = 100
	row := 2
	for page := 1; ; page++ {
		pageReq := *req
		pageReq.Page = page
		pageReq.PageSize = exportPageSize

		views, _, err := f.resolvePage(ctx, &pageReq)
		if err != nil {
			return nil, err
		}
		if len(views) == 0 {
			break
		}

		for _, v := range views {
			values := []any{v.Username, v.IsOnline, v.LastSeen.Format("2006-01-02 15:04:05"), "", "", "", int64(0), int64(0), len(v.StaleSessions)}
			if v.CurrentEvent != nil {
				values[3] = v.CurrentEvent.NASIPAddress
				values[4] = v.CurrentEvent.AcctSessionID
				values[5] = v.CurrentEvent.AcctStartTime.Format("2006-01-02 15:04:05")
				values[6] = v.CurrentEvent.AcctInputOctets
				values[7] = v.CurrentEvent.AcctOutputOctets
			}
			for i, val := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				if err := file.SetCellValue(sheet, cell, val); err != nil {
					return nil, err
				}
			}
			row++
		}

		if len(views) < exportPageSize {
			break
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
