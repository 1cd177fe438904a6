package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/metinatakli/movie-booking/internal/booking"
	"github.com/metinatakli/movie-booking/internal/domain"
	"github.com/metinatakli/movie-booking/internal/events"
	"github.com/metinatakli/movie-booking/internal/mailer"
	"github.com/metinatakli/movie-booking/internal/mocks"
	"github.com/metinatakli/movie-booking/internal/orchestrator"
	"github.com/metinatakli/movie-booking/internal/validator"
)

var testNow = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

func newTestApplication(opts ...func(*Application)) *Application {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gateway := &mocks.MockCatalogGateway{}
	userRepo := &mocks.MockUserRepo{
		GetByIDFunc: func(ctx context.Context, id int) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	sessions := orchestrator.NewRegistry(time.Hour, logger)

	app := &Application{
		config:         Config{Env: "test"},
		logger:         logger,
		validator:      validator.NewValidator(),
		mailer:         mailer.NewMockMailer(),
		sessionManager: scs.New(),
		publisher:      events.NewMockPublisher(),
		metrics:        newMetrics(sessions),
		userRepo:       userRepo,
		gateway:        gateway,
		sessions:       sessions,
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.submitter == nil {
		app.submitter = booking.NewSubmitter(
			app.gateway,
			NewUserProvider(app.userRepo),
			logger,
			booking.WithClock(func() time.Time { return testNow }),
			booking.WithLocation(time.UTC),
		)
	}

	return app
}

// authenticate stores userId in a new session and attaches its cookie to r.
func authenticate(t *testing.T, app *Application, r *http.Request, userId int) *http.Request {
	t.Helper()

	ctx, err := app.sessionManager.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}

	app.sessionManager.Put(ctx, SessionKeyUserId.String(), userId)

	token, _, err := app.sessionManager.Commit(ctx)
	if err != nil {
		t.Fatalf("Failed to commit session: %v", err)
	}

	r.AddCookie(&http.Cookie{Name: app.sessionManager.Cookie.Name, Value: token})

	return r
}

func executeRequest(t *testing.T, method, url string, body any) (*httptest.ResponseRecorder, *http.Request) {
	var reader io.Reader = http.NoBody

	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(jsonData)
	}

	r := httptest.NewRequest(method, url, reader)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	return w, r
}

func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, tt struct {
	wantStatus     int
	wantErrMessage string
}) {
	if tt.wantStatus >= 200 && tt.wantStatus < 300 {
		return
	}

	if tt.wantStatus == http.StatusUnprocessableEntity && tt.wantErrMessage != "" {
		var validationResp ValidationErrorResponse
		if err := json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&validationResp); err != nil {
			t.Fatalf("Failed to decode validation error response: %v", err)
		}

		if len(validationResp.ValidationErrors) > 0 {
			errorSet := make(map[string]bool)
			for _, vErr := range validationResp.ValidationErrors {
				errorSet[vErr.Issue] = true
			}

			if !errorSet[tt.wantErrMessage] {
				t.Errorf("Expected validation error message '%s' not found in response", tt.wantErrMessage)
			}

			return
		}
	}

	var errorResp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&errorResp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}

	if tt.wantErrMessage != "" && errorResp.Message != tt.wantErrMessage {
		t.Errorf("Error message = %v, want %v", errorResp.Message, tt.wantErrMessage)
	}
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}

	t.Fatal("condition not met before deadline")
}
