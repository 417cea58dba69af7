package question_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/saulo-duarte/mathbank-lambda/internal/access"
	"github.com/saulo-duarte/mathbank-lambda/internal/auth"
	"github.com/saulo-duarte/mathbank-lambda/internal/question"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	os.Setenv("JWT_SECRET", "question-handler-test-secret")
	auth.Init()
	return question.Routes(question.NewHandler(newService(access.DefaultPolicy())))
}

func get(t *testing.T, h http.Handler, target, role string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if role != "" {
		token, err := auth.GenerateJWT("u-1", "student@example.com", role, time.Minute)
		if err != nil {
			t.Fatalf("GenerateJWT failed: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
}

// An unauthenticated caller is told to log in; a free caller browses with
// restrictions. The two states never collapse into one.
func TestUnauthenticatedIsNotFree(t *testing.T) {
	h := newTestRouter(t)
	target := "/?year=year11&level=advanced&module=functions"

	anon := get(t, h, target, "")
	if anon.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous caller, got %d", anon.Code)
	}
	var errBody struct {
		Code string `json:"code"`
	}
	decode(t, anon, &errBody)
	if errBody.Code != "login_required" {
		t.Errorf("expected login_required, got %q", errBody.Code)
	}

	free := get(t, h, target, "free")
	if free.Code != http.StatusOK {
		t.Fatalf("expected 200 for free caller, got %d", free.Code)
	}
	var body struct {
		Items   []question.Record `json:"items"`
		Clipped bool              `json:"clipped"`
		Tier    string            `json:"tier"`
	}
	decode(t, free, &body)
	if len(body.Items) != 3 || !body.Clipped || body.Tier != "free" {
		t.Errorf("unexpected free page: items=%d clipped=%v tier=%s", len(body.Items), body.Clipped, body.Tier)
	}
}

func TestHandlerStatusCodes(t *testing.T) {
	h := newTestRouter(t)

	cases := []struct {
		name   string
		target string
		role   string
		want   int
	}{
		{"LockedModule", "/?year=year11&level=advanced&module=vectors", "free", http.StatusForbidden},
		{"ProOpensLockedModule", "/?year=year11&level=advanced&module=vectors", "pro", http.StatusOK},
		{"UnknownModule", "/?year=year11&level=advanced&module=nope", "pro", http.StatusNotFound},
		{"BadPage", "/?page=abc", "pro", http.StatusBadRequest},
		{"OutOfRangePageIsClamped", "/?page=-5", "pro", http.StatusOK},
		{"Years", "/years", "free", http.StatusOK},
		{"Levels", "/years/year11/levels", "free", http.StatusOK},
		{"Modules", "/years/year11/levels/advanced/modules", "free", http.StatusOK},
		{"UnknownYear", "/years/year99/levels", "free", http.StatusNotFound},
		{"Sample", "/sample?n=2", "pro", http.StatusOK},
		{"BadSampleSize", "/sample?n=two", "pro", http.StatusBadRequest},
		{"Warnings", "/warnings", "pro", http.StatusOK},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if rec := get(t, h, c.target, c.role); rec.Code != c.want {
				t.Errorf("expected %d, got %d: %s", c.want, rec.Code, rec.Body.String())
			}
		})
	}
}
