package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/movie-booking/internal/app"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var keysToIgnore = map[string]struct{}{
	"timestamp": {},
	"requestId": {},
	"id":        {},
}

func prepareRequest(method, path string, body io.Reader, headers map[string]string, cookies []http.Cookie) (*http.Request, error) {
	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	for i := range cookies {
		req.AddCookie(&cookies[i])
	}

	return req, nil
}

func compareResponse(t *testing.T, body io.Reader, expectedResponse string) {
	var actual map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	cleanMap(actual)

	var expected map[string]any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	// ignore indetermistic fields while comparing
	opts := cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
		_, ok := keysToIgnore[k]
		return ok
	})

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func cleanMap(m map[string]any) {
	for k := range m {
		if _, ok := keysToIgnore[k]; ok {
			delete(m, k)
			continue
		}
		if nested, ok := m[k].(map[string]any); ok {
			cleanMap(nested)
		}
	}
}

func executeSQLFile(t testing.TB, db *pgxpool.Pool, path string) {
	t.Helper()

	query, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = db.Exec(context.Background(), string(query))
	require.NoError(t, err)
}

func flushAllCache(t testing.TB, client *redis.Client) {
	t.Helper()

	require.NoError(t, client.FlushAll(context.Background()).Err())
}

// sessionCookie stores userId in a new server-side session and returns the
// cookie that selects it.
func sessionCookie(t testing.TB, testApp *TestApp, userId int) http.Cookie {
	t.Helper()

	sm := testApp.SessionManager

	ctx, err := sm.Load(context.Background(), "")
	require.NoError(t, err)

	sm.Put(ctx, app.SessionKeyUserId.String(), userId)

	token, _, err := sm.Commit(ctx)
	require.NoError(t, err)

	return http.Cookie{Name: sm.Cookie.Name, Value: token}
}

// resetState empties every table and seeds the catalog with schedules on the
// given day.
func resetState(t testing.TB, testApp *TestApp, day string) {
	t.Helper()

	testApp.Sessions.Close()
	testApp.Mailer.Reset()

	executeSQLFile(t, testApp.DB, "testdata/catalog_down.sql")
	flushAllCache(t, testApp.RedisClient)

	executeSQLFile(t, testApp.DB, "testdata/catalog_up.sql")

	_, err := testApp.DB.Exec(context.Background(), `
		INSERT INTO schedules (movie_id, theater_id, show_date, show_time, price) VALUES
		(1, 1, $1, '18:00', 12.50),
		(1, 1, $1, '21:00', 15.00),
		(1, 2, $1, '18:00', 10.00)`, day)
	require.NoError(t, err)
}

func waitForRefresh(t testing.TB, testApp *TestApp, sessionID string) map[string]any {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)

	for {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/booking-sessions/"+sessionID, nil)
		testApp.App.Routes().ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

		if refreshing, _ := body["refreshing"].(bool); !refreshing {
			return body
		}

		if time.Now().After(deadline) {
			t.Fatalf("session %s still refreshing", sessionID)
		}

		time.Sleep(20 * time.Millisecond)
	}
}
