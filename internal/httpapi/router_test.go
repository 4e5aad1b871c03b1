package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/export"
	"github.com/alexanderramin/studyplan/internal/metrics"
	"github.com/alexanderramin/studyplan/internal/service"
)

type fakePlans struct {
	created   service.CreatePlanRequest
	createErr error
	plans     map[string]*domain.LearningPlan
	listOwner string
	listStud  string
	exportErr error
}

func (f *fakePlans) CreateProfileBasedPlan(_ context.Context, _ string, req service.CreatePlanRequest) (string, error) {
	f.created = req
	if f.createErr != nil {
		return "", f.createErr
	}
	return "task-1", nil
}

func (f *fakePlans) BuildPlan(context.Context, string, string, service.CreatePlanRequest) (*domain.LearningPlan, error) {
	return nil, errors.New("not used")
}

func (f *fakePlans) Get(_ context.Context, id, owner string) (*domain.LearningPlan, error) {
	p, ok := f.plans[id]
	if !ok || p.OwnerID != owner {
		return nil, domain.NewNotFoundError("get plan", "plan "+id)
	}
	return p, nil
}

func (f *fakePlans) List(_ context.Context, owner, student string) ([]*domain.LearningPlan, error) {
	f.listOwner, f.listStud = owner, student
	var out []*domain.LearningPlan
	for _, p := range f.plans {
		if p.OwnerID == owner {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePlans) Delete(ctx context.Context, id, owner string) error {
	if _, err := f.Get(ctx, id, owner); err != nil {
		return err
	}
	delete(f.plans, id)
	return nil
}

func (f *fakePlans) Export(ctx context.Context, id, owner string, format export.Format) (*export.Artifact, error) {
	if f.exportErr != nil {
		return nil, f.exportErr
	}
	p, err := f.Get(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	return export.Render(p, format)
}

type fakeActivities struct {
	gotStatus      domain.ActivityStatus
	gotCompletedAt *time.Time
	err            error
}

func (f *fakeActivities) UpdateStatus(_ context.Context, _, _, _ string, status domain.ActivityStatus, completedAt *time.Time) (*domain.StatusResult, error) {
	f.gotStatus, f.gotCompletedAt = status, completedAt
	if f.err != nil {
		return nil, f.err
	}
	return &domain.StatusResult{ProgressPercentage: 50, PlanStatus: domain.StatusInProgress}, nil
}

type fakeTasks struct {
	tasks map[string]*domain.ProgressTask
}

func (f *fakeTasks) Get(_ context.Context, id, user string) (*domain.ProgressTask, error) {
	t, ok := f.tasks[id]
	if !ok || t.UserID != user {
		return nil, domain.NewNotFoundError("get task", "task "+id)
	}
	return t, nil
}

func (f *fakeTasks) List(_ context.Context, user string) ([]*domain.ProgressTask, error) {
	var out []*domain.ProgressTask
	for _, t := range f.tasks {
		if t.UserID == user {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeStudents struct {
	byID map[string]*domain.StudentProfile
}

func (f *fakeStudents) Create(_ context.Context, s *domain.StudentProfile) error {
	if strings.TrimSpace(s.FullName) == "" {
		return domain.NewValidationError("create student", "full name is required")
	}
	s.ID = "stu-new"
	f.byID[s.ID] = s
	return nil
}

func (f *fakeStudents) Get(_ context.Context, id, owner string) (*domain.StudentProfile, error) {
	s, ok := f.byID[id]
	if !ok || s.OwnerID != owner {
		return nil, domain.NewNotFoundError("get student", id)
	}
	return s, nil
}

func (f *fakeStudents) List(_ context.Context, owner string) ([]*domain.StudentProfile, error) {
	var out []*domain.StudentProfile
	for _, s := range f.byID {
		if s.OwnerID == owner {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStudents) Update(_ context.Context, s *domain.StudentProfile) error {
	f.byID[s.ID] = s
	return nil
}

func (f *fakeStudents) Delete(ctx context.Context, id, owner string) error {
	if _, err := f.Get(ctx, id, owner); err != nil {
		return err
	}
	delete(f.byID, id)
	return nil
}

type fakeContent struct {
	imported []domain.ContentItem
}

func (f *fakeContent) FetchForSubject(context.Context, string, *int, int) (service.SubjectContent, error) {
	return service.SubjectContent{}, nil
}

func (f *fakeContent) FetchAll(context.Context, []string, *int, int, service.FetchProgress) (map[string]service.SubjectContent, error) {
	return nil, nil
}

func (f *fakeContent) Import(_ context.Context, items []domain.ContentItem) (int, error) {
	for _, it := range items {
		if it.Title == "" {
			return 0, domain.NewValidationError("import content", "title is required")
		}
	}
	f.imported = append(f.imported, items...)
	return len(items), nil
}

func (f *fakeContent) List(_ context.Context, subject string) ([]domain.ContentItem, error) {
	var out []domain.ContentItem
	for _, it := range f.imported {
		if subject == "" || it.Subject == subject {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeContent) Counts(context.Context) (map[string]int, error) {
	counts := map[string]int{}
	for _, it := range f.imported {
		counts[it.Subject]++
	}
	return counts, nil
}

type apiFixture struct {
	router     *gin.Engine
	plans      *fakePlans
	activities *fakeActivities
	tasks      *fakeTasks
	students   *fakeStudents
	content    *fakeContent
	metrics    *metrics.Metrics
}

func newFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	f := &apiFixture{
		plans: &fakePlans{plans: map[string]*domain.LearningPlan{
			"plan-1": {
				ID: "plan-1", OwnerID: "owner-1", StudentID: "stu-1",
				Title: "Balanced Learning Plan for One Week", StartDate: now, EndDate: now.AddDate(0, 0, 7),
				Metadata: domain.PlanMetadata{LearningPeriod: domain.PeriodOneWeek},
				Activities: []domain.Activity{
					{ID: "a1", Title: "Fractions", Day: 1, Order: 1, DurationMinutes: 30, Status: domain.StatusCompleted},
					{ID: "a2", Title: "Cells", Day: 2, Order: 1, DurationMinutes: 30, Status: domain.StatusNotStarted},
				},
			},
		}},
		activities: &fakeActivities{},
		tasks: &fakeTasks{tasks: map[string]*domain.ProgressTask{
			"task-ok": domain.NewProgressTask("task-ok", "owner-1", service.TaskTypeProfilePlan, nil, now),
			"task-failed": {
				ID: "task-failed", UserID: "owner-1", Status: domain.TaskFailed,
				Message: "Plan generation failed", Error: "generator unavailable",
			},
		}},
		students: &fakeStudents{byID: map[string]*domain.StudentProfile{
			"stu-1": {ID: "stu-1", OwnerID: "owner-1", FullName: "Ada", LearningStyle: domain.StyleVisual},
		}},
		content: &fakeContent{},
		metrics: metrics.New(prometheus.NewRegistry()),
	}
	f.router = NewRouter(RouterConfig{
		PlanHandler:    NewPlanHandler(f.plans, f.activities),
		TaskHandler:    NewTaskHandler(f.tasks),
		StudentHandler: NewStudentHandler(f.students),
		ContentHandler: NewContentHandler(f.content),
		Metrics:        f.metrics,
	})
	return f
}

func (f *apiFixture) do(method, path, owner, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if owner != "" {
		req.Header.Set(OwnerHeader, owner)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env.Error.Code
}

func TestCreateProfileBasedPlanAccepted(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/learning-plans/profile-based", "owner-1",
		`{"student_profile_id":"stu-1","learning_period":"two_weeks","daily_minutes":90,"plan_type":"focused","subject":"Mathematics"}`)

	require.Equal(t, http.StatusAccepted, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "task-1", body["task_id"])
	assert.Equal(t, "pending", body["status"])
	assert.Equal(t, service.CreatePlanRequest{
		StudentProfileID: "stu-1", LearningPeriod: "two_weeks", DailyMinutes: 90, PlanType: "focused", Subject: "Mathematics",
	}, f.plans.created)
}

func TestCreateProfileBasedPlanErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"malformed json", `{"student_profile_id":`, nil, http.StatusBadRequest, "invalid_body"},
		{"validation", `{}`, domain.NewValidationError("create plan", "student_profile_id is required"), http.StatusBadRequest, "validation_error"},
		{"unknown student", `{"student_profile_id":"x"}`, domain.NewNotFoundError("create plan", "student x"), http.StatusNotFound, "not_found"},
		{"queue full", `{"student_profile_id":"stu-1"}`, domain.NewCollaboratorError("create plan", errors.New("queue full")), http.StatusServiceUnavailable, "collaborator_unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.plans.createErr = tt.err
			rec := f.do(http.MethodPost, "/api/learning-plans/profile-based", "owner-1", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantErr, errorCode(t, rec))
		})
	}
}

func TestMissingOwnerHeaderIsUnauthorized(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/api/learning-plans", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", errorCode(t, rec))
}

func TestGetPlanScopedToOwner(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/learning-plans/plan-1", "owner-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "plan-1", decode(t, rec)["id"])

	rec = f.do(http.MethodGet, "/api/learning-plans/plan-1", "owner-2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListPlansPassesStudentFilter(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/learning-plans?student_id=stu-1", "owner-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["plans"], 1)
	assert.Equal(t, "owner-1", f.plans.listOwner)
	assert.Equal(t, "stu-1", f.plans.listStud)

	rec = f.do(http.MethodGet, "/api/learning-plans", "owner-2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"plans":[]}`, rec.Body.String())
}

func TestDeletePlan(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/api/learning-plans/plan-1", "owner-1", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, "/api/learning-plans/plan-1", "owner-1", "").Code)
}

func TestUpdateActivity(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPut, "/api/learning-plans/plan-1/activities/a2", "owner-1",
		`{"status":"COMPLETED","completed_at":"2026-03-03T10:00:00Z"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"success": true,
		"plan_id": "plan-1",
		"activity_id": "a2",
		"status": "completed",
		"progress_percentage": 50,
		"plan_status": "in_progress"
	}`, rec.Body.String())
	assert.Equal(t, domain.StatusCompleted, f.activities.gotStatus)
	require.NotNil(t, f.activities.gotCompletedAt)
	assert.Equal(t, time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC), f.activities.gotCompletedAt.UTC())
}

func TestUpdateActivityErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		err      error
		wantCode int
	}{
		{"missing status", `{}`, nil, http.StatusBadRequest},
		{"bad status", `{"status":"done"}`, nil, http.StatusBadRequest},
		{"unknown activity", `{"status":"completed"}`, domain.NewNotFoundError("update activity status", "a9"), http.StatusNotFound},
		{"save failed", `{"status":"completed"}`, domain.NewPersistenceError("update activity status", errors.New("disk full")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.activities.err = tt.err
			rec := f.do(http.MethodPut, "/api/learning-plans/plan-1/activities/a9", "owner-1", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestPersistenceErrorHidesDetail(t *testing.T) {
	f := newFixture(t)
	f.activities.err = domain.NewPersistenceError("update activity status", errors.New("sqlite: disk I/O error"))

	rec := f.do(http.MethodPut, "/api/learning-plans/plan-1/activities/a1", "owner-1", `{"status":"completed"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "sqlite")
}

func TestExportFormats(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/learning-plans/plan-1/export", "owner-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "learning-plan-plan-1.json")
	assert.Equal(t, "plan-1", decode(t, rec)["id"])

	rec = f.do(http.MethodGet, "/api/learning-plans/plan-1/export?format=html", "owner-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "html", body["format"])
	assert.Contains(t, body["content"], "<h2>Day 1</h2>")
	assert.NotContains(t, body, "message")

	rec = f.do(http.MethodGet, "/api/learning-plans/plan-1/export?format=pdf", "owner-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, "html", body["format"])
	assert.Equal(t, export.PDFNotice, body["message"])

	rec = f.do(http.MethodGet, "/api/learning-plans/plan-1/export?format=docx", "owner-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTask(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/tasks/task-ok", "owner-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "task-ok", body["task_id"])
	assert.Equal(t, "pending", body["status"])

	rec = f.do(http.MethodGet, "/api/tasks/task-failed", "owner-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, "failed", body["status"])
	assert.Equal(t, "generator unavailable", body["error"])

	rec = f.do(http.MethodGet, "/api/tasks/task-ok", "owner-2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodGet, "/api/tasks", "owner-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["tasks"], 2)
}

func TestStudentEndpoints(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/students", "owner-1", `{"full_name":"Grace","grade_level":8,"learning_style":"hands-on"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "stu-new", body["id"])
	assert.Equal(t, "kinesthetic", body["learning_style"])
	assert.Equal(t, []any{}, body["interests"])

	rec = f.do(http.MethodPost, "/api/students", "owner-1", `{"grade_level":8}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPut, "/api/students/stu-1", "owner-1", `{"full_name":"Ada L."}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ada L.", f.students.byID["stu-1"].FullName)

	rec = f.do(http.MethodGet, "/api/students/stu-1", "owner-2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodGet, "/api/students", "owner-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["students"], 2)

	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/api/students/stu-1", "owner-1", "").Code)
}

func TestContentEndpoints(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/content", "owner-1",
		`[{"title":"Fractions","subject":"Mathematics"},{"title":"Cells","subject":"Science"}]`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"imported":2}`, rec.Body.String())

	rec = f.do(http.MethodPost, "/api/content", "owner-1", `[{"subject":"Art"}]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/api/content?subject=Science", "owner-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["items"], 1)

	rec = f.do(http.MethodGet, "/api/content/counts", "owner-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"subjects":{"Mathematics":1,"Science":1}}`, rec.Body.String())
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	f.do(http.MethodGet, "/api/learning-plans/plan-1", "owner-1", "")
	assert.Equal(t, 1.0, testutil.ToFloat64(
		f.metrics.RequestCounter.WithLabelValues("GET", "/api/learning-plans/:id", "200")))

	rec = f.do(http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "studyplan_http_requests_total")
}

func TestHealthReportsFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(RouterConfig{Health: func(context.Context) error { return errors.New("database is closed") }})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "database is closed")
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(RouterConfig{AllowedOrigins: []string{"http://localhost:5173"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/learning-plans", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	req.Header.Set("Access-Control-Request-Headers", OwnerHeader)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServerRunStopsOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := NewServer("127.0.0.1:0", NewRouter(RouterConfig{}), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
