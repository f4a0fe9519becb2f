package handlers_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"photocritic/application/serviceimpl"
	"photocritic/domain/critique"
	"photocritic/domain/models"
	"photocritic/infrastructure/postgres"
	"photocritic/interfaces/api/handlers"
	"photocritic/interfaces/api/middleware"
	"photocritic/interfaces/api/routes"
	"photocritic/pkg/config"
	"photocritic/pkg/inflight"
	"photocritic/pkg/utils"
)

const testSecret = "handler-test-secret"

const cannedReply = `{
  "detectedGenre": "landscape",
  "summary": "Calm lake at dawn.",
  "overallScore": 81,
  "categoryScores": {"composition": 80, "lighting": 85, "color": 78, "focus": 82, "creativity": 79},
  "tags": ["lake"],
  "analysis": {
    "composition": "Horizon on the lower third.",
    "lighting": "Soft side light.",
    "color": "Muted blues.",
    "focus": "Sharp throughout.",
    "creativity": "Classic framing.",
    "overall": {"strengths": ["mood"], "improvements": ["foreground"], "modifications": []}
  }
}`

// gatedCritic answers with cannedReply. When gate is set it signals entered
// and blocks until the gate closes.
type gatedCritic struct {
	gate    chan struct{}
	entered chan struct{}
}

func (g *gatedCritic) Analyze(ctx context.Context, req critique.AnalyzeRequest) (critique.Result, error) {
	if _, ok := critique.LookupPersona(req.Persona); !ok {
		return critique.Result{}, critique.ErrUnknownPersona
	}
	if g.gate != nil {
		g.entered <- struct{}{}
		<-g.gate
	}
	res := critique.ParseResult(cannedReply)
	res.Persona, res.Language = req.Persona, "en"
	return res, nil
}

func (g *gatedCritic) DetectGenre(context.Context, critique.ImageInput) critique.GenreGuess {
	return critique.GenreGuess{Genre: critique.GenreGeneral}
}

type memStore struct{}

func (memStore) Save(_ context.Context, key string, _ []byte, _ string) models.ImageLocation {
	return models.ImageLocation{Backend: models.StorageLocal, URL: "/uploads/" + key, StorageKey: key}
}

func (memStore) Load(context.Context, models.ImageLocation) ([]byte, error) {
	return []byte{0xff, 0xd8, 0xff}, nil
}

type envelope struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message"`
	Data       json.RawMessage  `json:"data"`
	Pagination utils.Pagination `json:"pagination"`
}

type testServer struct {
	t      *testing.T
	app    *fiber.App
	db     *gorm.DB
	critic *gatedCritic
	owner  *models.User
	other  *models.User
}

func newTestServer(t *testing.T, critic *gatedCritic) *testServer {
	t.Helper()
	db, err := postgres.NewDatabase(postgres.DatabaseConfig{
		Driver:     postgres.DriverSQLite,
		SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := postgres.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	photoRepo := postgres.NewPhotoRepository(db)
	analysisRepo := postgres.NewAnalysisRepository(db)
	cameraRepo := postgres.NewCameraModelRepository(db)
	activity := serviceimpl.NewActivityLogService(postgres.NewActivityLogRepository(db))

	svcs := &handlers.Services{
		UserService: serviceimpl.NewUserService(postgres.NewUserRepository(db)),
		PhotoService: serviceimpl.NewPhotoService(photoRepo, cameraRepo, memStore{}, critic, activity,
			serviceimpl.PhotoServiceConfig{MaxUploadBytes: 1 << 20, MaxImageDimension: 64}),
		AnalysisService: serviceimpl.NewAnalysisService(analysisRepo, photoRepo, inflight.NewMemoryGuard(),
			critic, memStore{}, nil, activity),
		OpinionService:     serviceimpl.NewOpinionService(postgres.NewOpinionRepository(db), analysisRepo),
		CameraModelService: serviceimpl.NewCameraModelService(cameraRepo),
		ActivityLogService: activity,
	}
	cfg := &config.Config{
		App:      config.AppConfig{Name: "test", FrontendURL: "http://localhost:5173"},
		JWT:      config.JWTConfig{Secret: testSecret},
		Analysis: config.AnalysisConfig{CleanupKeep: 1},
	}

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	routes.SetupRoutes(app, handlers.NewHandlers(svcs, nil, cfg), nil, cfg)

	s := &testServer{t: t, app: app, db: db, critic: critic}
	s.owner = s.user("owner")
	s.other = s.user("other")
	return s
}

func (s *testServer) user(name string) *models.User {
	s.t.Helper()
	u := &models.User{ExternalID: "sub-" + name, Email: name + "@example.com", DisplayName: name}
	if err := s.db.Create(u).Error; err != nil {
		s.t.Fatalf("create user: %v", err)
	}
	return u
}

func (s *testServer) token(u *models.User) string {
	s.t.Helper()
	tok, err := utils.GenerateToken(utils.UserContext{ID: u.ID, DisplayName: u.DisplayName, Email: u.Email}, testSecret)
	if err != nil {
		s.t.Fatal(err)
	}
	return tok
}

func (s *testServer) photo(owner *models.User) *models.Photo {
	s.t.Helper()
	p := &models.Photo{
		UserID:      &owner.ID,
		MimeType:    "image/jpeg",
		Location:    models.ImageLocation{Backend: models.StorageLocal, URL: "/uploads/x.jpg", StorageKey: "x.jpg"},
		CameraModel: "X100V",
	}
	if err := s.db.Create(p).Error; err != nil {
		s.t.Fatal(err)
	}
	return p
}

func (s *testServer) analysis(p *models.Photo, at time.Time) *models.Analysis {
	s.t.Helper()
	a := &models.Analysis{PhotoID: p.ID, UserID: p.UserID, Summary: "stored", OverallScore: 60, CameraModel: p.CameraModel, CreatedAt: at}
	if err := s.db.Create(a).Error; err != nil {
		s.t.Fatal(err)
	}
	return a
}

// do sends a request and decodes the envelope. token may be empty.
func (s *testServer) do(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			s.t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		s.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		s.t.Fatalf("%s %s: decode body: %v", method, path, err)
	}
	return resp.StatusCode, env
}

func (s *testServer) upload(token string) uuid.UUID {
	s.t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 256, 128))); err != nil {
		s.t.Fatal(err)
	}
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	status, env := s.do(http.MethodPost, "/api/v1/photos/upload", token, map[string]string{"image": dataURL, "filename": "lake.png"})
	if status != fiber.StatusCreated || !env.Success {
		s.t.Fatalf("upload: status %d: %s", status, env.Message)
	}
	var got struct {
		Photo struct {
			ID uuid.UUID `json:"id"`
		} `json:"photo"`
	}
	if err := json.Unmarshal(env.Data, &got); err != nil {
		s.t.Fatal(err)
	}
	return got.Photo.ID
}

func TestAnalyzeConcurrentRequestGetsConflict(t *testing.T) {
	critic := &gatedCritic{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	s := newTestServer(t, critic)
	photoID := s.upload(s.token(s.owner))
	body := map[string]string{"photoId": photoID.String(), "persona": "tech-nerd", "language": "en"}

	type reply struct {
		status int
		env    envelope
		err    error
	}
	raw := mustJSON(t, body)
	first := make(chan reply, 1)
	go func() {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		resp, err := s.app.Test(req, -1)
		if err != nil {
			first <- reply{err: err}
			return
		}
		defer resp.Body.Close()
		var env envelope
		err = json.NewDecoder(resp.Body).Decode(&env)
		first <- reply{status: resp.StatusCode, env: env, err: err}
	}()

	select {
	case <-critic.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first analysis never reached the model")
	}

	status, env := s.do(http.MethodPost, "/api/v1/analyses", "", body)
	if status != fiber.StatusConflict || env.Success {
		t.Errorf("second request: status %d, success %v", status, env.Success)
	}

	close(critic.gate)
	var r reply
	select {
	case r = <-first:
	case <-time.After(5 * time.Second):
		t.Fatal("first analysis never finished")
	}
	if r.err != nil || r.status != fiber.StatusOK {
		t.Fatalf("first request: status %d, err %v", r.status, r.err)
	}
	var got struct {
		OverallScore   int            `json:"overallScore"`
		CategoryScores map[string]int `json:"categoryScores"`
	}
	if err := json.Unmarshal(r.env.Data, &got); err != nil {
		t.Fatal(err)
	}
	if got.OverallScore < 0 || got.OverallScore > 100 {
		t.Errorf("overallScore = %d", got.OverallScore)
	}
	if len(got.CategoryScores) != 5 {
		t.Errorf("categoryScores = %v", got.CategoryScores)
	}
	for _, k := range []string{"composition", "lighting", "color", "focus", "creativity"} {
		if _, ok := got.CategoryScores[k]; !ok {
			t.Errorf("categoryScores missing %q", k)
		}
	}

	var n int64
	s.db.Model(&models.Analysis{}).Count(&n)
	if n != 1 {
		t.Errorf("stored %d analyses, want 1", n)
	}
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestAnalyzeValidation(t *testing.T) {
	s := newTestServer(t, &gatedCritic{})
	p := s.photo(s.owner)

	cases := []struct {
		name string
		body map[string]string
		want int
	}{
		{"malformed photo id", map[string]string{"photoId": "nope", "persona": "art-critic"}, fiber.StatusBadRequest},
		{"missing persona", map[string]string{"photoId": p.ID.String()}, fiber.StatusBadRequest},
		{"unknown persona", map[string]string{"photoId": p.ID.String(), "persona": "poet"}, fiber.StatusBadRequest},
		{"unknown photo", map[string]string{"photoId": uuid.NewString(), "persona": "art-critic"}, fiber.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, env := s.do(http.MethodPost, "/api/v1/analyses", "", tc.body)
			if status != tc.want || env.Success {
				t.Errorf("status = %d, success = %v; want %d", status, env.Success, tc.want)
			}
		})
	}
}

func TestAnalyzeReturnsStoredCritique(t *testing.T) {
	s := newTestServer(t, &gatedCritic{})
	p := s.photo(s.owner)

	status, env := s.do(http.MethodPost, "/api/v1/analyses", s.token(s.owner),
		map[string]string{"photoId": p.ID.String(), "persona": "art-critic"})
	if status != fiber.StatusOK || !env.Success {
		t.Fatalf("status %d: %s", status, env.Message)
	}
	var got struct {
		ID           *uuid.UUID `json:"id"`
		OverallScore int        `json:"overallScore"`
		Persisted    bool       `json:"persisted"`
		CameraModel  string     `json:"cameraModel"`
	}
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatal(err)
	}
	if got.ID == nil || !got.Persisted || got.OverallScore != 81 || got.CameraModel != "X100V" {
		t.Errorf("data = %s", env.Data)
	}
}

func TestListWithPhotosPagination(t *testing.T) {
	s := newTestServer(t, &gatedCritic{})
	t1 := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	older := s.analysis(s.photo(s.owner), t1)
	newer := s.analysis(s.photo(s.owner), t1.Add(time.Minute))

	pages := []struct {
		page int
		want uuid.UUID
		more bool
	}{
		{1, newer.ID, true},
		{2, older.ID, false},
	}
	for _, pg := range pages {
		status, env := s.do(http.MethodGet, fmt.Sprintf("/api/v1/analyses/with-photos?page=%d&limit=1", pg.page), "", nil)
		if status != fiber.StatusOK {
			t.Fatalf("page %d: status %d", pg.page, status)
		}
		var cards []struct {
			AnalysisID uuid.UUID `json:"analysisId"`
		}
		if err := json.Unmarshal(env.Data, &cards); err != nil {
			t.Fatal(err)
		}
		if len(cards) != 1 || cards[0].AnalysisID != pg.want {
			t.Errorf("page %d: cards = %s", pg.page, env.Data)
		}
		if env.Pagination.TotalItems != 2 || env.Pagination.TotalPages != 2 || env.Pagination.HasMore != pg.more {
			t.Errorf("page %d: pagination = %+v", pg.page, env.Pagination)
		}
	}

	status, env := s.do(http.MethodGet, "/api/v1/analyses/with-photos?page=9&limit=1", "", nil)
	if status != fiber.StatusOK || string(env.Data) != "[]" || env.Pagination.TotalItems != 2 {
		t.Errorf("past last page: status %d, data %s, pagination %+v", status, env.Data, env.Pagination)
	}
}

func TestListByCameraDecodesModel(t *testing.T) {
	s := newTestServer(t, &gatedCritic{})
	p := s.photo(s.owner)
	s.db.Model(p).Update("camera_model", "EOS R5")
	a := &models.Analysis{PhotoID: p.ID, UserID: p.UserID, Summary: "x", CameraModel: "EOS R5"}
	if err := s.db.Create(a).Error; err != nil {
		t.Fatal(err)
	}

	status, env := s.do(http.MethodGet, "/api/v1/analyses/by-camera/EOS%20R5", "", nil)
	if status != fiber.StatusOK || env.Pagination.TotalItems != 1 {
		t.Errorf("status %d, pagination %+v", status, env.Pagination)
	}
}

func TestOwnerOnlyMutations(t *testing.T) {
	s := newTestServer(t, &gatedCritic{})
	a := s.analysis(s.photo(s.owner), time.Now().UTC())
	path := "/api/v1/analyses/" + a.ID.String()
	hide := map[string]bool{"isHidden": true}

	if status, _ := s.do(http.MethodPatch, path+"/visibility", "", hide); status != fiber.StatusUnauthorized {
		t.Errorf("anonymous visibility: status %d", status)
	}
	if status, _ := s.do(http.MethodPatch, path+"/visibility", s.token(s.other), hide); status != fiber.StatusForbidden {
		t.Errorf("stranger visibility: status %d", status)
	}
	if status, _ := s.do(http.MethodDelete, path, s.token(s.other), nil); status != fiber.StatusForbidden {
		t.Errorf("stranger delete: status %d", status)
	}
	if status, _ := s.do(http.MethodPatch, path+"/visibility", s.token(s.owner), map[string]string{}); status != fiber.StatusBadRequest {
		t.Errorf("missing isHidden: status %d", status)
	}

	if status, env := s.do(http.MethodPatch, path+"/visibility", s.token(s.owner), hide); status != fiber.StatusOK {
		t.Fatalf("owner visibility: status %d (%s)", status, env.Message)
	}
	if status, _ := s.do(http.MethodGet, path, s.token(s.other), nil); status != fiber.StatusNotFound {
		t.Errorf("hidden analysis visible to stranger: status %d", status)
	}
	if status, _ := s.do(http.MethodGet, path, s.token(s.owner), nil); status != fiber.StatusOK {
		t.Errorf("hidden analysis invisible to owner: status %d", status)
	}

	if status, _ := s.do(http.MethodDelete, path, s.token(s.owner), nil); status != fiber.StatusOK {
		t.Errorf("owner delete: status %d", status)
	}
	if status, _ := s.do(http.MethodDelete, path, s.token(s.owner), nil); status != fiber.StatusNotFound {
		t.Errorf("second delete: status %d", status)
	}
}

func TestUploadAcceptsDataURL(t *testing.T) {
	s := newTestServer(t, &gatedCritic{})
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 256, 128))); err != nil {
		t.Fatal(err)
	}
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	status, env := s.do(http.MethodPost, "/api/v1/photos/upload", s.token(s.owner),
		map[string]string{"image": dataURL, "filename": "lake.png"})
	if status != fiber.StatusCreated || !env.Success {
		t.Fatalf("status %d: %s", status, env.Message)
	}
	var got struct {
		Photo struct {
			ID       uuid.UUID  `json:"id"`
			UserID   *uuid.UUID `json:"userId"`
			MimeType string     `json:"mimeType"`
			Width    int        `json:"width"`
			Height   int        `json:"height"`
			ImageURL string     `json:"imageUrl"`
		} `json:"photo"`
	}
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatal(err)
	}
	ph := got.Photo
	if ph.MimeType != "image/png" || ph.Width != 64 || ph.Height != 32 || ph.ImageURL == "" {
		t.Errorf("photo = %+v", ph)
	}
	if ph.UserID == nil || *ph.UserID != s.owner.ID {
		t.Errorf("upload not attributed to the caller")
	}

	if status, _ := s.do(http.MethodPost, "/api/v1/photos/upload", "", map[string]string{"image": "data:image/png;base64,%%%"}); status != fiber.StatusBadRequest {
		t.Errorf("garbage payload: status %d", status)
	}
	if status, _ := s.do(http.MethodPost, "/api/v1/photos/upload", "", map[string]string{}); status != fiber.StatusBadRequest {
		t.Errorf("empty payload: status %d", status)
	}
}

func TestCameraModelAdminGuard(t *testing.T) {
	s := newTestServer(t, &gatedCritic{})
	body := map[string]string{"make": "Nikon", "model": "Z8"}

	if status, _ := s.do(http.MethodPost, "/api/v1/camera-models", s.token(s.owner), body); status != fiber.StatusForbidden {
		t.Errorf("non-admin create: status %d", status)
	}
	if status, _ := s.do(http.MethodGet, "/api/v1/camera-models", "", nil); status != fiber.StatusOK {
		t.Errorf("public list: status %d", status)
	}
}

func TestPersonasArePublic(t *testing.T) {
	s := newTestServer(t, &gatedCritic{})
	status, env := s.do(http.MethodGet, "/api/v1/analyses/personas", "", nil)
	if status != fiber.StatusOK {
		t.Fatalf("status %d", status)
	}
	var personas []struct {
		Key string `json:"key"`
	}
	if err := json.Unmarshal(env.Data, &personas); err != nil {
		t.Fatal(err)
	}
	if len(personas) != len(critique.Personas()) {
		t.Errorf("got %d personas", len(personas))
	}
}
