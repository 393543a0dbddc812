package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"alfredoptarigan/cv-project/internal/models"
	"alfredoptarigan/cv-project/internal/repositories"
)

const (
	JobSendEmail          = "send-email"
	JobSendCVNotification = "send-cv-notification"
	JobGeneratePDF        = "generate-pdf"
	JobCleanupOldLogs     = "cleanup-old-logs"
	JobSendDailyReport    = "send-daily-report"
	JobLongRunningDemo    = "long-running-demo"
	JobTest               = "test-task"

	// JobIndexCV is dispatched internally after CV writes and is not user-triggerable.
	JobIndexCV = "index-cv"
)

// LogRetentionLimit is how many request logs cleanup keeps.
const LogRetentionLimit = 1000

// PublicJobs lists the job types that may be triggered over HTTP.
var PublicJobs = []string{
	JobSendEmail,
	JobSendCVNotification,
	JobGeneratePDF,
	JobCleanupOldLogs,
	JobSendDailyReport,
	JobLongRunningDemo,
	JobTest,
}

func IsPublicJob(jobType string) bool {
	for _, j := range PublicJobs {
		if j == jobType {
			return true
		}
	}
	return false
}

type EmailPayload struct {
	Subject    string   `json:"subject"`
	Message    string   `json:"message"`
	Recipients []string `json:"recipients"`
}

type CVNotificationPayload struct {
	CVID           uint   `json:"cv_id"`
	RecipientEmail string `json:"recipient_email"`
}

type CVPayload struct {
	CVID uint `json:"cv_id"`
}

type TaskSettings struct {
	SiteURL          string
	ReportRecipient  string
	LongTaskDuration time.Duration
}

// TaskRunner holds the job implementations and what they depend on.
type TaskRunner struct {
	cvRepo   repositories.CVRepository
	logRepo  repositories.RequestLogRepository
	mailer   Mailer
	renderer PDFRenderer
	parser   PDFParserService
	storage  StorageService
	index    CVIndex
	queue    JobQueue
	settings TaskSettings
	now      func() time.Time
	log      *zap.Logger
}

// NewTaskRunner accepts a nil index; index-cv then becomes a no-op.
func NewTaskRunner(
	cvRepo repositories.CVRepository,
	logRepo repositories.RequestLogRepository,
	mailer Mailer,
	renderer PDFRenderer,
	parser PDFParserService,
	storage StorageService,
	index CVIndex,
	settings TaskSettings,
	log *zap.Logger,
) *TaskRunner {
	return &TaskRunner{
		cvRepo:   cvRepo,
		logRepo:  logRepo,
		mailer:   mailer,
		renderer: renderer,
		parser:   parser,
		storage:  storage,
		index:    index,
		settings: settings,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log,
	}
}

// RegisterAll binds every job to queue. Jobs that dispatch follow-up jobs use the same queue.
func (r *TaskRunner) RegisterAll(queue JobQueue) {
	r.queue = queue

	queue.Register(JobSendEmail, r.SendEmail)
	queue.Register(JobSendCVNotification, r.SendCVNotification)
	queue.Register(JobGeneratePDF, r.GeneratePDF)
	queue.Register(JobCleanupOldLogs, r.CleanupOldLogs)
	queue.Register(JobSendDailyReport, r.SendDailyReport)
	queue.Register(JobLongRunningDemo, r.LongRunningDemo)
	queue.Register(JobTest, r.TestTask)
	queue.Register(JobIndexCV, r.IndexCV)
}

// SendEmail never fails the task: transport errors become the result text.
func (r *TaskRunner) SendEmail(ctx context.Context, payload json.RawMessage) (string, error) {
	var p EmailPayload
	if err := decodePayload(payload, &p); err != nil {
		return fmt.Sprintf("Failed to send email: %v", err), nil
	}

	if err := r.mailer.Send(ctx, p.Subject, p.Message, p.Recipients); err != nil {
		r.log.Warn("email delivery failed", zap.Strings("recipients", p.Recipients), zap.Error(err))
		return fmt.Sprintf("Failed to send email: %v", err), nil
	}
	return fmt.Sprintf("Email sent successfully to %s", strings.Join(p.Recipients, ", ")), nil
}

func (r *TaskRunner) SendCVNotification(ctx context.Context, payload json.RawMessage) (string, error) {
	var p CVNotificationPayload
	if err := decodePayload(payload, &p); err != nil {
		return "", err
	}

	cv, err := r.findCV(p.CVID)
	if err != nil {
		return "", err
	}

	subject := fmt.Sprintf("New CV Added: %s", cv.FullName())
	message := fmt.Sprintf(`A new CV has been added to the system:

Name: %s
Skills: %s
Bio: %s...

You can view the full CV at: %s/cv/%d/
`, cv.FullName(), cv.Skills, truncateRunes(cv.Bio, 100), r.settings.SiteURL, cv.ID)

	handle, err := r.enqueueEmail(ctx, subject, message, []string{p.RecipientEmail})
	if err != nil {
		return "", fmt.Errorf("failed to send CV notification: %w", err)
	}
	return fmt.Sprintf("Email task queued: %s", handle), nil
}

// GeneratePDF renders the CV, stores the file and re-reads it to confirm it is a valid PDF.
func (r *TaskRunner) GeneratePDF(_ context.Context, payload json.RawMessage) (string, error) {
	var p CVPayload
	if err := decodePayload(payload, &p); err != nil {
		return "", err
	}

	cv, err := r.findCV(p.CVID)
	if err != nil {
		return "", err
	}

	data, err := r.renderer.Render(cv)
	if err != nil {
		return "", fmt.Errorf("failed to generate PDF: %w", err)
	}

	prefix := fmt.Sprintf("cv_%d_", cv.ID)
	filename := prefix + r.now().Format("20060102T150405") + ".pdf"
	path, err := r.storage.Save(filename, data)
	if err != nil {
		return "", fmt.Errorf("failed to generate PDF: %w", err)
	}

	content, err := r.parser.InspectFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to generate PDF: %w", err)
	}
	r.pruneArtifacts(prefix, filename)

	return fmt.Sprintf("PDF generated successfully for %s (%d page(s), %s)",
		cv.FullName(), content.PageCount, filename), nil
}

// pruneArtifacts deletes every artifact under prefix except keep. Failures
// are logged; the new PDF is already stored.
func (r *TaskRunner) pruneArtifacts(prefix, keep string) {
	names, err := r.storage.List(prefix)
	if err != nil {
		r.log.Warn("failed to list old PDF artifacts", zap.String("prefix", prefix), zap.Error(err))
		return
	}
	for _, name := range names {
		if name == keep {
			continue
		}
		if err := r.storage.DeleteFile(name); err != nil {
			r.log.Warn("failed to delete old PDF artifact", zap.String("file", name), zap.Error(err))
		}
	}
}

// CleanupOldLogs trims request logs down to LogRetentionLimit, oldest first.
func (r *TaskRunner) CleanupOldLogs(_ context.Context, _ json.RawMessage) (string, error) {
	total, err := r.logRepo.Count()
	if err != nil {
		return "", fmt.Errorf("failed to cleanup logs: %w", err)
	}
	if total <= LogRetentionLimit {
		return fmt.Sprintf("No cleanup needed. Total logs: %d", total), nil
	}

	deleted, err := r.logRepo.DeleteOldest(total - LogRetentionLimit)
	if err != nil {
		return "", fmt.Errorf("failed to cleanup logs: %w", err)
	}

	remaining, err := r.logRepo.Count()
	if err != nil {
		return "", fmt.Errorf("failed to cleanup logs: %w", err)
	}
	return fmt.Sprintf("Cleaned up %d old logs. Total logs: %d", deleted, remaining), nil
}

func (r *TaskRunner) SendDailyReport(ctx context.Context, _ json.RawMessage) (string, error) {
	totalCVs, err := r.cvRepo.Count()
	if err != nil {
		return "", fmt.Errorf("failed to send daily report: %w", err)
	}
	totalLogs, err := r.logRepo.Count()
	if err != nil {
		return "", fmt.Errorf("failed to send daily report: %w", err)
	}

	now := r.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	todayLogs, err := r.logRepo.CountBetween(dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return "", fmt.Errorf("failed to send daily report: %w", err)
	}

	message := fmt.Sprintf(`Daily Report for %s:

Total CVs: %d
Total Request Logs: %d
Today's Requests: %d

This is an automated daily report from the CV Project system.
`, dayStart.Format("2006-01-02"), totalCVs, totalLogs, todayLogs)

	handle, err := r.enqueueEmail(ctx, "Daily CV Project Report", message, []string{r.settings.ReportRecipient})
	if err != nil {
		return "", fmt.Errorf("failed to send daily report: %w", err)
	}
	return fmt.Sprintf("Daily report queued: %s", handle), nil
}

func (r *TaskRunner) LongRunningDemo(ctx context.Context, _ json.RawMessage) (string, error) {
	select {
	case <-time.After(r.settings.LongTaskDuration):
		return "Long running task completed!", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (r *TaskRunner) TestTask(context.Context, json.RawMessage) (string, error) {
	return "Test task completed successfully!", nil
}

func (r *TaskRunner) IndexCV(ctx context.Context, payload json.RawMessage) (string, error) {
	if r.index == nil {
		return "Search index disabled, skipped", nil
	}

	var p CVPayload
	if err := decodePayload(payload, &p); err != nil {
		return "", err
	}

	cv, err := r.findCV(p.CVID)
	if err != nil {
		return "", err
	}
	if err := r.index.IndexCV(ctx, cv); err != nil {
		return "", fmt.Errorf("failed to index CV: %w", err)
	}
	return fmt.Sprintf("Indexed CV %d", cv.ID), nil
}

func (r *TaskRunner) findCV(id uint) (*models.CV, error) {
	cv, err := r.cvRepo.FindByID(id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("CV with ID %d not found", id)
	}
	return cv, err
}

func (r *TaskRunner) enqueueEmail(ctx context.Context, subject, message string, recipients []string) (JobHandle, error) {
	if r.queue == nil {
		return JobHandle{}, ErrQueueUnavailable
	}
	return r.queue.Enqueue(ctx, JobSendEmail, EmailPayload{
		Subject:    subject,
		Message:    message,
		Recipients: recipients,
	})
}

func decodePayload(payload json.RawMessage, v interface{}) error {
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("invalid job payload: %w", err)
	}
	return nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
