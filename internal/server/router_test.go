package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"alfredoptarigan/cv-project/internal/config"
	"alfredoptarigan/cv-project/internal/models"
	"alfredoptarigan/cv-project/internal/repositories"
	"alfredoptarigan/cv-project/internal/services"
	"alfredoptarigan/cv-project/internal/testutil"
)

type countingGenerator struct {
	mu    sync.Mutex
	calls int
	reply string
}

func (g *countingGenerator) GenerateJSON(context.Context, string, string, float32) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return g.reply, nil
}

func (g *countingGenerator) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type testEnv struct {
	app      *fiber.App
	db       *gorm.DB
	cvRepo   repositories.CVRepository
	logRepo  repositories.RequestLogRepository
	taskRepo repositories.TaskRepository
	userRepo repositories.UserRepository
	queue    services.JobQueue
	gen      *countingGenerator
}

func newTestEnv(t *testing.T, startQueue bool) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)
	log := zap.NewNop()

	env := &testEnv{
		db:       db,
		cvRepo:   repositories.NewCVRepository(db),
		logRepo:  repositories.NewRequestLogRepository(db),
		taskRepo: repositories.NewTaskRepository(db),
		userRepo: repositories.NewUserRepository(db),
		gen: &countingGenerator{
			reply: `{"name":"Jean Dupont","bio":"Ingénieur","skills":"Go","projects":"Plateforme","contacts":"jean@example.com"}`,
		},
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Env: "development", SecretKey: "test-secret"},
		Report: config.ReportConfig{Recipient: "admin@cvproject.com", SiteURL: "http://localhost:8000"},
	}

	env.queue = services.NewWorker(env.taskRepo, services.WorkerOptions{
		Concurrency:  1,
		PollInterval: 50 * time.Millisecond,
	}, log)
	runner := services.NewTaskRunner(
		env.cvRepo,
		env.logRepo,
		services.NewMailer(config.MailConfig{From: "noreply@cvproject.com"}, log),
		services.NewPDFRenderer(),
		services.NewPDFParserService(),
		services.NewStorageService(t.TempDir()),
		nil,
		services.TaskSettings{
			SiteURL:          cfg.Report.SiteURL,
			ReportRecipient:  cfg.Report.Recipient,
			LongTaskDuration: 10 * time.Millisecond,
		},
		log,
	)
	runner.RegisterAll(env.queue)
	if startQueue {
		env.queue.Start(context.Background())
		t.Cleanup(env.queue.Stop)
	}

	env.app = NewRouter(Dependencies{
		Config:       cfg,
		Logger:       log,
		CVRepo:       env.cvRepo,
		LogRepo:      env.logRepo,
		UserRepo:     env.userRepo,
		TaskRepo:     env.taskRepo,
		Queue:        env.queue,
		Translations: services.NewTranslationService(env.gen, services.NewTranslationCache(time.Hour), log),
		Renderer:     services.NewPDFRenderer(),
	})
	return env
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func (e *testEnv) doJSON(t *testing.T, method, path string, payload interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")

	resp, raw := e.do(t, req)
	var decoded map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp, decoded
}

func (e *testEnv) createCV(t *testing.T, first, last string) *models.CV {
	t.Helper()
	cv := testutil.NewCV(first, last)
	require.NoError(t, e.cvRepo.Create(cv))
	return cv
}

func validCVBody() map[string]string {
	return map[string]string{
		"firstname": "Ada",
		"lastname":  "Lovelace",
		"skills":    "Mathematics, Analytical Engine, Writing",
		"projects":  "Notes on the Analytical Engine",
		"bio":       "First programmer in recorded history.",
		"contacts":  "ada@example.com",
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, false)

	resp, body := env.doJSON(t, "GET", "/health", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["message"])
}

func TestCreateCV_ValidationErrors(t *testing.T) {
	env := newTestEnv(t, false)

	resp, body := env.doJSON(t, "POST", "/api/cvs/", map[string]string{
		"firstname": "Jane",
		"lastname":  "Smith",
		"bio":       "Short",
		"contacts":  "",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	fields, ok := body["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, fields, "bio")
	assert.Contains(t, fields, "contacts")
	assert.Equal(t, []interface{}{"Bio must be at least 10 characters long."}, fields["bio"])
	assert.Equal(t, []interface{}{"Contact information cannot be empty."}, fields["contacts"])

	count, err := env.cvRepo.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCVAPI_ClassBasedLifecycle(t *testing.T) {
	env := newTestEnv(t, false)

	resp, created := env.doJSON(t, "POST", "/api/cvs/", validCVBody())
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	id := uint(created["id"].(float64))
	assert.Equal(t, "Ada", created["firstname"])

	resp, got := env.doJSON(t, "GET", fmt.Sprintf("/api/cvs/%d/", id), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Lovelace", got["lastname"])

	update := validCVBody()
	update["bio"] = "Mathematician and writer, worked with Babbage."
	resp, updated := env.doJSON(t, "PUT", fmt.Sprintf("/api/cvs/%d/", id), update)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, update["bio"], updated["bio"])

	resp, patched := env.doJSON(t, "PATCH", fmt.Sprintf("/api/cvs/%d/", id), map[string]string{"firstname": "Augusta"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Augusta", patched["firstname"])
	assert.Equal(t, update["bio"], patched["bio"])

	resp, _ = env.doJSON(t, "PATCH", fmt.Sprintf("/api/cvs/%d/", id), map[string]string{"bio": "tiny"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	stored, err := env.cvRepo.FindByID(id)
	require.NoError(t, err)
	assert.False(t, stored.UpdatedAt.Before(stored.CreatedAt))

	resp, _ = env.doJSON(t, "DELETE", fmt.Sprintf("/api/cvs/%d/", id), nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, _ = env.doJSON(t, "GET", fmt.Sprintf("/api/cvs/%d/", id), nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCVAPI_ListNewestFirst(t *testing.T) {
	env := newTestEnv(t, false)
	env.createCV(t, "First", "Created")
	time.Sleep(5 * time.Millisecond)
	env.createCV(t, "Second", "Created")

	resp, body := env.doJSON(t, "GET", "/api/cvs/?page_size=1", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, body["count"])
	assert.EqualValues(t, 1, body["page_size"])

	results := body["results"].([]interface{})
	require.Len(t, results, 1)
	first := results[0].(map[string]interface{})
	assert.Equal(t, "Second Created", first["full_name"])
	assert.Contains(t, first, "skills")
	assert.NotContains(t, first, "bio")
}

func TestCVAPI_FunctionBasedVariant(t *testing.T) {
	env := newTestEnv(t, false)

	resp, created := env.doJSON(t, "POST", "/api/v1/cvs/", validCVBody())
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	id := uint(created["id"].(float64))

	resp, body := env.doJSON(t, "GET", "/api/v1/cvs/", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["count"])

	resp, _ = env.doJSON(t, "PATCH", fmt.Sprintf("/api/v1/cvs/%d/", id), map[string]string{"firstname": "X"})
	assert.Equal(t, fiber.StatusMethodNotAllowed, resp.StatusCode)

	resp, _ = env.doJSON(t, "DELETE", fmt.Sprintf("/api/v1/cvs/%d/", id), nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp, _ = env.doJSON(t, "GET", "/api/v1/cvs/abc/", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestPDFDownload(t *testing.T) {
	env := newTestEnv(t, false)
	cv := env.createCV(t, "John", "Doe")

	resp, body := env.do(t, httptest.NewRequest("GET", fmt.Sprintf("/cv/%d/pdf/", cv.ID), nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="John Doe_CV.pdf"`, resp.Header.Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF-")))

	resp, _ = env.do(t, httptest.NewRequest("GET", "/cv/9999/pdf/", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestPDFDownload_FilenameCannotInjectParameters(t *testing.T) {
	env := newTestEnv(t, false)
	cv := env.createCV(t, `Evil"; filename="x.exe`, "Doe")

	resp, _ := env.do(t, httptest.NewRequest("GET", fmt.Sprintf("/cv/%d/pdf/", cv.ID), nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	disposition, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "attachment", disposition)
	assert.Equal(t, map[string]string{"filename": `Evil"; filename="x.exe Doe_CV.pdf`}, params)
}

func TestPages(t *testing.T) {
	env := newTestEnv(t, false)
	cv := env.createCV(t, "Grace", "Hopper")

	resp, body := env.do(t, httptest.NewRequest("GET", "/", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Grace Hopper")
	assert.Contains(t, string(body), "PostgreSQL")
	assert.NotContains(t, string(body), "Kubernetes", "only three skills are previewed")

	resp, body = env.do(t, httptest.NewRequest("GET", fmt.Sprintf("/cv/%d/", cv.ID), nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Northern Sami")

	resp, _ = env.do(t, httptest.NewRequest("GET", "/cv/424242/", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, body = env.do(t, httptest.NewRequest("GET", "/logs/", nil))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "/cv/424242/")

	resp, _ = env.do(t, httptest.NewRequest("GET", "/logs/all/?page=1", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequestsAreAudited(t *testing.T) {
	env := newTestEnv(t, false)

	req := httptest.NewRequest("GET", "/api/cvs/777/?lang=en", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	req.Header.Set("User-Agent", "router-test")
	resp, _ := env.do(t, req)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	env.do(t, httptest.NewRequest("GET", "/does/not/exist", nil))

	logs, err := env.logRepo.ListRecent(10)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	assert.Equal(t, "/does/not/exist", logs[0].Path)
	assert.Equal(t, fiber.StatusNotFound, logs[0].ResponseStatus)

	entry := logs[1]
	assert.Equal(t, "/api/cvs/777/", entry.Path)
	assert.Equal(t, "lang=en", entry.QueryString)
	assert.Equal(t, "203.0.113.9", entry.RemoteIP)
	assert.Equal(t, "router-test", entry.UserAgent)
	assert.Equal(t, fiber.StatusNotFound, entry.ResponseStatus)
	assert.GreaterOrEqual(t, entry.ResponseTime, 0.0)
	assert.False(t, entry.IsAuthenticated)

	resp, body := env.doJSON(t, "GET", "/api/logs/", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, body["count"])
	assert.EqualValues(t, 20, body["page_size"])
}

func TestTaskTrigger_DegradesWhenQueueUnavailable(t *testing.T) {
	env := newTestEnv(t, false)
	env.createCV(t, "John", "Doe")

	for _, task := range services.PublicJobs {
		t.Run(task, func(t *testing.T) {
			resp, body := env.doJSON(t, "GET", "/api/tasks/trigger/?task="+task, nil)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.Equal(t, "success", body["status"])
			assert.Equal(t, "unavailable", body["task_id"])
			assert.Contains(t, body["message"], task)
		})
	}
}

func TestTaskTrigger_DispatchesAndReportsStatus(t *testing.T) {
	env := newTestEnv(t, true)

	resp, body := env.doJSON(t, "GET", "/api/tasks/trigger/", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", body["status"])

	taskID, ok := body["task_id"].(string)
	require.True(t, ok)
	_, err := uuid.Parse(taskID)
	require.NoError(t, err)

	id := uuid.MustParse(taskID)
	require.Eventually(t, func() bool {
		task, err := env.taskRepo.FindByID(id)
		return err == nil && task.Status == models.TaskCompleted
	}, 5*time.Second, 25*time.Millisecond)

	_, status := env.doJSON(t, "GET", "/api/tasks/"+taskID, nil)
	assert.Equal(t, "test-task", status["type"])
	assert.Equal(t, "Test task completed successfully!", status["result"])

	resp, _ = env.doJSON(t, "GET", "/api/tasks/not-a-uuid", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp, _ = env.doJSON(t, "GET", "/api/tasks/"+uuid.NewString(), nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestTaskTrigger_InputErrors(t *testing.T) {
	env := newTestEnv(t, true)

	resp, body := env.doJSON(t, "GET", "/api/tasks/trigger/?task=format-disk", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "error", body["status"])
	assert.Nil(t, body["task_id"])

	resp, body = env.doJSON(t, "GET", "/api/tasks/trigger/?task=generate-pdf", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "error", body["status"])
	assert.Contains(t, body["message"], "No CV found")

	resp, body = env.doJSON(t, "GET", "/api/tasks/trigger/?task=send-cv-notification&cv_id=55", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "CV with ID 55 not found", body["message"])
}

func TestTranslate_CachesPerCVAndLanguage(t *testing.T) {
	env := newTestEnv(t, false)
	cv := env.createCV(t, "John", "Doe")

	payload := map[string]interface{}{"cv_id": cv.ID, "language": "french"}
	resp, first := env.doJSON(t, "POST", "/api/translate/", payload)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", first["status"])

	resp, second := env.doJSON(t, "POST", "/api/translate/", map[string]interface{}{
		"cv_id":    fmt.Sprint(cv.ID),
		"language": "french",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, first["translation"], second["translation"])
	assert.Equal(t, 1, env.gen.count())

	translation := first["translation"].(map[string]interface{})
	assert.Equal(t, true, translation["translated"])
	assert.Equal(t, "French", translation["language"])
	assert.Equal(t, "English", translation["original_language"])
}

func TestTranslate_UpdateInvalidatesCache(t *testing.T) {
	env := newTestEnv(t, false)
	cv := env.createCV(t, "John", "Doe")

	payload := map[string]interface{}{"cv_id": cv.ID, "language": "german"}
	env.doJSON(t, "POST", "/api/translate/", payload)

	update := validCVBody()
	resp, _ := env.doJSON(t, "PUT", fmt.Sprintf("/api/cvs/%d/", cv.ID), update)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	env.doJSON(t, "POST", "/api/translate/", payload)
	assert.Equal(t, 2, env.gen.count())
}

func TestTranslate_Errors(t *testing.T) {
	env := newTestEnv(t, false)
	cv := env.createCV(t, "John", "Doe")

	resp, body := env.doJSON(t, "POST", "/api/translate/", map[string]interface{}{"cv_id": cv.ID, "language": "elvish"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "error", body["status"])
	assert.Contains(t, body["message"], "not supported")
	translation := body["translation"].(map[string]interface{})
	assert.Equal(t, false, translation["translated"])

	resp, body = env.doJSON(t, "POST", "/api/translate/", map[string]interface{}{"language": "french"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "error", body["status"])

	resp, body = env.doJSON(t, "POST", "/api/translate/", map[string]interface{}{"cv_id": 9999, "language": "french"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "CV not found", body["message"])

	req := httptest.NewRequest("POST", "/api/translate/", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	resp, raw := env.do(t, req)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(raw), "Invalid JSON")

	assert.Zero(t, env.gen.count())
}

func TestTranslateLanguages(t *testing.T) {
	env := newTestEnv(t, false)

	resp, body := env.doJSON(t, "GET", "/api/translate/languages", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, body["required"], 17)
	assert.Len(t, body["popular"], 10)
	assert.Len(t, body["all"], 27)
}

func TestSearchDisabled(t *testing.T) {
	env := newTestEnv(t, false)

	resp, _ := env.doJSON(t, "GET", "/api/cvs/search?q=golang", nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestLoginMarksRequestsAuthenticated(t *testing.T) {
	env := newTestEnv(t, false)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret!"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{Username: "admin", PasswordHash: string(hash), IsAdmin: true}
	require.NoError(t, env.userRepo.Create(user))

	resp, _ := env.doJSON(t, "POST", "/auth/login", map[string]string{"username": "admin", "password": "wrong"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.doJSON(t, "GET", "/auth/me", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.doJSON(t, "POST", "/auth/login", map[string]string{"username": "admin", "password": "s3cret!"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest("GET", "/auth/me", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, raw := env.do(t, req)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	assert.Contains(t, string(raw), `"username":"admin"`)
	assert.NotContains(t, string(raw), "password")

	logs, err := env.logRepo.ListRecent(1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.True(t, logs[0].IsAuthenticated)
	require.NotNil(t, logs[0].UserID)
	assert.Equal(t, user.ID, *logs[0].UserID)
}

func (e *testEnv) createUser(t *testing.T, username, password string, admin bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{Username: username, PasswordHash: string(hash), IsAdmin: admin}
	require.NoError(t, e.userRepo.Create(user))
	return user
}

func (e *testEnv) login(t *testing.T, username, password string) []*http.Cookie {
	t.Helper()
	resp, _ := e.doJSON(t, "POST", "/auth/login", map[string]string{"username": username, "password": password})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	return resp.Cookies()
}

func (e *testEnv) doAs(t *testing.T, cookies []*http.Cookie, method, path string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, _ := e.do(t, req)
	return resp
}

func TestDeleteUser_AdminOnlyAndKeepsRequestLogs(t *testing.T) {
	env := newTestEnv(t, false)
	env.createUser(t, "admin", "s3cret!", true)
	alice := env.createUser(t, "alice", "wonderland", false)

	aliceCookies := env.login(t, "alice", "wonderland")
	resp := env.doAs(t, aliceCookies, "GET", "/health")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.doAs(t, aliceCookies, "DELETE", fmt.Sprintf("/auth/users/%d", alice.ID))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = env.doAs(t, nil, "DELETE", fmt.Sprintf("/auth/users/%d", alice.ID))
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	var aliceLogs int64
	require.NoError(t, env.db.Model(&models.RequestLog{}).Where("user_id = ?", alice.ID).Count(&aliceLogs).Error)
	require.NotZero(t, aliceLogs)

	adminCookies := env.login(t, "admin", "s3cret!")
	resp = env.doAs(t, adminCookies, "DELETE", fmt.Sprintf("/auth/users/%d", alice.ID))
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	_, err := env.userRepo.FindByID(alice.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	var stillLinked, detached int64
	require.NoError(t, env.db.Model(&models.RequestLog{}).Where("user_id = ?", alice.ID).Count(&stillLinked).Error)
	assert.Zero(t, stillLinked)
	require.NoError(t, env.db.Model(&models.RequestLog{}).
		Where("user_id IS NULL AND is_authenticated = ?", true).
		Count(&detached).Error)
	assert.Equal(t, aliceLogs, detached)

	resp = env.doAs(t, adminCookies, "DELETE", fmt.Sprintf("/auth/users/%d", alice.ID))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDeleteUser_CannotDeleteSelf(t *testing.T) {
	env := newTestEnv(t, false)
	admin := env.createUser(t, "admin", "s3cret!", true)

	cookies := env.login(t, "admin", "s3cret!")
	resp := env.doAs(t, cookies, "DELETE", fmt.Sprintf("/auth/users/%d", admin.ID))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	_, err := env.userRepo.FindByID(admin.ID)
	assert.NoError(t, err)
}
