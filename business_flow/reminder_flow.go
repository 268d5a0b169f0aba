package businessflow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/redelink/redelink/app/dto"
	"github.com/redelink/redelink/app/services"
	"github.com/redelink/redelink/models"
	"github.com/redelink/redelink/repository"
	"github.com/redelink/redelink/utils"
)

// PendingReminder is one reminder the pass decided to send
type PendingReminder struct {
	Contract     *models.Contract
	Template     *models.MessageTemplate
	Phone        string
	RenderedBody string
	DueDate      time.Time
}

// PassComputation is the outcome of evaluating the full contract base for
// one pass date. Every contract lands in exactly one of the counters so the
// summary always adds up.
type PassComputation struct {
	Pending             []*PendingReminder
	ContractsEvaluated  int
	RemindersComputed   int
	SkippedCooldown     int
	SkippedInvalidPhone int
}

// ReminderFlow computes and dispatches billing reminders
type ReminderFlow interface {
	// ComputePendingReminders evaluates every active contract against the
	// active template catalog for the given date. Pure over store
	// snapshots; no sends happen here.
	ComputePendingReminders(ctx context.Context, now time.Time) (*PassComputation, error)
	// RecordSent appends the send record for a dispatched reminder.
	RecordSent(ctx context.Context, pending *PendingReminder, trackingID string, status models.MessageSendStatus, sentAt time.Time) error
	// RunPass claims the pass for now's date, computes, dispatches, and
	// writes back the summary. ErrPassAlreadyRan when the date was claimed
	// by another process.
	RunPass(ctx context.Context, now time.Time) (*models.ReminderPassRun, error)
	ListPassRuns(ctx context.Context, req *dto.ListPassRunsRequest) (*dto.ListPassRunsResponse, error)
}

type reminderFlowImpl struct {
	contractRepo repository.ContractRepository
	templateRepo repository.MessageTemplateRepository
	sentRepo     repository.SentMessageRepository
	passRunRepo  repository.ReminderPassRunRepository
	transport    services.MessageTransport
	db           *gorm.DB

	cooldownDays   int
	minPhoneDigits int
	sendWorkers    int
}

// NewReminderFlow creates a new reminder flow
func NewReminderFlow(
	contractRepo repository.ContractRepository,
	templateRepo repository.MessageTemplateRepository,
	sentRepo repository.SentMessageRepository,
	passRunRepo repository.ReminderPassRunRepository,
	transport services.MessageTransport,
	db *gorm.DB,
	cooldownDays int,
	minPhoneDigits int,
	sendWorkers int,
) ReminderFlow {
	if cooldownDays <= 0 {
		cooldownDays = utils.DefaultReminderCooldownDays
	}
	if minPhoneDigits <= 0 {
		minPhoneDigits = utils.MinPhoneDigits
	}
	if sendWorkers <= 0 {
		sendWorkers = 4
	}
	return &reminderFlowImpl{
		contractRepo:   contractRepo,
		templateRepo:   templateRepo,
		sentRepo:       sentRepo,
		passRunRepo:    passRunRepo,
		transport:      transport,
		db:             db,
		cooldownDays:   cooldownDays,
		minPhoneDigits: minPhoneDigits,
		sendWorkers:    sendWorkers,
	}
}

// ClampedBillingDay resolves a contractual billing day within a concrete
// month. Day 31 in a 30-day month bills on the 30th; day 29 to 31 in
// February bills on the 28th or 29th.
func ClampedBillingDay(year int, month time.Month, billingDay int) int {
	last := utils.DaysInMonth(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
	if billingDay > last {
		return last
	}
	return billingDay
}

// DueDateFor returns the due date of billingDay in the month of ref,
// clamped to the month's length.
func DueDateFor(ref time.Time, billingDay int) time.Time {
	day := ClampedBillingDay(ref.Year(), ref.Month(), billingDay)
	return time.Date(ref.Year(), ref.Month(), day, 0, 0, 0, 0, time.UTC)
}

// TemplateDueOn reports whether a template with the given day offset fires
// on today for a contract billed on billingDay. The reference date is today
// shifted by the offset: a +3 template fires when the due date is three
// days ahead, a -5 template fires when it is five days past.
func TemplateDueOn(today time.Time, billingDay int, dayOffset int) bool {
	ref := utils.DateOnly(today).AddDate(0, 0, dayOffset)
	return ref.Day() == ClampedBillingDay(ref.Year(), ref.Month(), billingDay)
}

// knownPlaceholders are the substitutions RenderTemplate performs. Anything
// else between braces passes through verbatim.
var knownPlaceholders = []string{"name", "amount", "due_day", "days_until_due", "days_overdue"}

// RenderTemplate substitutes the known placeholders into body. Unknown
// placeholders are left untouched so a typo in a template shows up in the
// delivered message instead of vanishing silently.
func RenderTemplate(body string, values map[string]string) string {
	pairs := make([]string, 0, len(knownPlaceholders)*2)
	for _, key := range knownPlaceholders {
		if v, ok := values[key]; ok {
			pairs = append(pairs, "{{"+key+"}}", v)
		}
	}
	return strings.NewReplacer(pairs...).Replace(body)
}

func (f *reminderFlowImpl) renderFor(contract *models.Contract, template *models.MessageTemplate, today time.Time, dueDate time.Time) string {
	name := contract.SubscriberUsername
	if contract.Customer != nil {
		name = contract.Customer.FullName
	}

	daysDiff := utils.DaysBetweenCeil(utils.DateOnly(today), dueDate)
	daysUntil := 0
	daysOverdue := 0
	if daysDiff > 0 {
		daysUntil = daysDiff
	} else {
		daysOverdue = -daysDiff
	}

	return RenderTemplate(template.Body, map[string]string{
		"name":           name,
		"amount":         strconv.FormatFloat(contract.MonthlyValue, 'f', 2, 64),
		"due_day":        strconv.Itoa(contract.BillingDay),
		"days_until_due": strconv.Itoa(daysUntil),
		"days_overdue":   strconv.Itoa(daysOverdue),
	})
}

type sentKey struct {
	contractID uint
	templateID uint
}

func (f *reminderFlowImpl) ComputePendingReminders(ctx context.Context, now time.Time) (*PassComputation, error) {
	today := utils.DateOnly(now)

	contracts, err := f.contractRepo.ActiveContracts(ctx)
	if err != nil {
		return nil, NewBusinessError("REMINDER_CONTRACTS_FAILED", "failed to load active contracts", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}

	templates, err := f.templateRepo.ActiveTemplates(ctx)
	if err != nil {
		return nil, NewBusinessError("REMINDER_TEMPLATES_FAILED", "failed to load message templates", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}

	contractIDs := make([]uint, 0, len(contracts))
	for _, c := range contracts {
		contractIDs = append(contractIDs, c.ID)
	}
	cooldownStart := today.AddDate(0, 0, -f.cooldownDays)
	recent, err := f.sentRepo.RecentSends(ctx, contractIDs, cooldownStart)
	if err != nil {
		return nil, NewBusinessError("REMINDER_SENDLOG_FAILED", "failed to load recent sends", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}
	recentByKey := make(map[sentKey]bool, len(recent))
	for _, r := range recent {
		recentByKey[sentKey{contractID: r.ContractID, templateID: r.TemplateID}] = true
	}

	comp := &PassComputation{ContractsEvaluated: len(contracts)}
	for _, contract := range contracts {
		for _, template := range templates {
			if !TemplateDueOn(today, contract.BillingDay, template.DayOffset) {
				continue
			}
			comp.RemindersComputed++

			if recentByKey[sentKey{contractID: contract.ID, templateID: template.ID}] {
				comp.SkippedCooldown++
				continue
			}
			if !utils.IsDeliverablePhone(contract.Phone, f.minPhoneDigits) {
				comp.SkippedInvalidPhone++
				continue
			}

			ref := today.AddDate(0, 0, template.DayOffset)
			dueDate := DueDateFor(ref, contract.BillingDay)
			comp.Pending = append(comp.Pending, &PendingReminder{
				Contract:     contract,
				Template:     template,
				Phone:        utils.NormalizePhone(contract.Phone),
				RenderedBody: f.renderFor(contract, template, today, dueDate),
				DueDate:      dueDate,
			})
		}
	}

	return comp, nil
}

func (f *reminderFlowImpl) RecordSent(ctx context.Context, pending *PendingReminder, trackingID string, status models.MessageSendStatus, sentAt time.Time) error {
	record := &models.SentMessage{
		ContractID:   pending.Contract.ID,
		TemplateID:   pending.Template.ID,
		Phone:        pending.Phone,
		RenderedBody: pending.RenderedBody,
		TrackingID:   trackingID,
		Status:       status,
		SentAt:       sentAt,
		SentMinute:   utils.TruncateToMinute(sentAt),
	}
	if err := f.sentRepo.Append(ctx, record); err != nil {
		if errors.Is(err, repository.ErrDuplicateSendRecord) {
			return ErrDuplicateSend
		}
		return NewBusinessError("REMINDER_RECORD_FAILED", "failed to record sent reminder", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}
	return nil
}

func (f *reminderFlowImpl) RunPass(ctx context.Context, now time.Time) (*models.ReminderPassRun, error) {
	run := &models.ReminderPassRun{
		PassDate:  utils.DateOnly(now),
		StartedAt: utils.UTCNow(),
	}
	if err := f.passRunRepo.Begin(ctx, run); err != nil {
		if errors.Is(err, repository.ErrPassRunExists) {
			return nil, ErrPassAlreadyRan
		}
		return nil, NewBusinessError("REMINDER_PASS_CLAIM_FAILED", "failed to claim reminder pass", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}

	comp, err := f.ComputePendingReminders(ctx, now)
	if err != nil {
		// Nothing was dispatched; release the claim so a retry can run the
		// date once the store recovers.
		_ = f.passRunRepo.Abort(context.WithoutCancel(ctx), run)
		return nil, err
	}

	sent, errored := f.dispatch(ctx, comp.Pending)

	run.RemindersSent = sent
	run.Errored = errored
	f.finishRun(ctx, run, comp)
	return run, nil
}

// dispatch sends pending reminders through a bounded worker pool.
// Cancellation stops issuing new sends; sends already in flight finish and
// their records land in the log. The send record is written with a context
// detached from cancellation for the same reason.
func (f *reminderFlowImpl) dispatch(ctx context.Context, pending []*PendingReminder) (sent int, errored int) {
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, f.sendWorkers)

	for _, p := range pending {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(p *PendingReminder) {
			defer wg.Done()
			defer func() { <-sem }()

			ok := f.sendOne(ctx, p)

			mu.Lock()
			if ok {
				sent++
			} else {
				errored++
			}
			mu.Unlock()
		}(p)
	}

	wg.Wait()
	return sent, errored
}

func (f *reminderFlowImpl) sendOne(ctx context.Context, p *PendingReminder) bool {
	sentAt := utils.UTCNow()
	trackingID, err := f.transport.Send(ctx, p.Phone, p.RenderedBody)
	status := models.MessageSendStatusSuccessful
	if err != nil {
		status = models.MessageSendStatusUnsuccessful
		if trackingID == "" {
			trackingID = uuid.New().String()
		}
	}

	recordCtx := context.WithoutCancel(ctx)
	if recErr := f.RecordSent(recordCtx, p, trackingID, status, sentAt); recErr != nil {
		// A duplicate record means a concurrent pass already logged this
		// reminder; the send is accounted for either way.
		if errors.Is(recErr, ErrDuplicateSend) {
			return true
		}
		return false
	}
	return err == nil
}

func (f *reminderFlowImpl) finishRun(ctx context.Context, run *models.ReminderPassRun, comp *PassComputation) {
	if comp != nil {
		run.ContractsEvaluated = comp.ContractsEvaluated
		run.RemindersComputed = comp.RemindersComputed
		run.SkippedCooldown = comp.SkippedCooldown
		run.SkippedInvalidPhone = comp.SkippedInvalidPhone
	}
	run.FinishedAt = utils.ToPtr(utils.UTCNow())
	run.UpdatedAt = utils.UTCNow()
	_ = f.passRunRepo.Finish(context.WithoutCancel(ctx), run)
}

func (f *reminderFlowImpl) ListPassRuns(ctx context.Context, req *dto.ListPassRunsRequest) (*dto.ListPassRunsResponse, error) {
	page, pageSize, err := normalizePage(req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}

	runs, err := f.passRunRepo.ByFilter(ctx, models.ReminderPassRunFilter{}, "pass_date DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("REMINDER_RUNS_FAILED", "failed to load reminder pass runs", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}

	total, err := f.passRunRepo.Count(ctx, models.ReminderPassRunFilter{})
	if err != nil {
		return nil, NewBusinessError("REMINDER_RUNS_COUNT_FAILED", "failed to count reminder pass runs", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}

	items := make([]dto.ReminderPassRunDTO, 0, len(runs))
	for _, r := range runs {
		items = append(items, ToReminderPassRunDTO(r))
	}

	return &dto.ListPassRunsResponse{
		Items:      items,
		Pagination: dto.PaginationDTO{Page: page, PageSize: pageSize, Total: total},
	}, nil
}
