package billing_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/saulo-duarte/mathbank-lambda/internal/auth"
	"github.com/saulo-duarte/mathbank-lambda/internal/billing"
)

func TestBillingRoutes(t *testing.T) {
	os.Setenv("JWT_SECRET", "billing-handler-test-secret")
	auth.Init()

	roles := &fakeRoles{}
	svc := billing.NewService(&fakeProvider{}, newMemEvents(), roles, testWebhookSecret)
	h := billing.Routes(billing.NewHandler(svc))

	token, err := auth.GenerateJWT("u-1", "buyer@example.com", "free", time.Minute)
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}

	payload := checkoutEvent("evt_http", "paid")

	tests := []struct {
		name   string
		method string
		target string
		body   string
		header map[string]string
		want   int
	}{
		{"CheckoutAnonymous", http.MethodPost, "/checkout", `{"plan":"monthly"}`, nil, http.StatusUnauthorized},
		{"CheckoutMonthly", http.MethodPost, "/checkout", `{"plan":"monthly"}`, map[string]string{"Authorization": "Bearer " + token}, http.StatusOK},
		{"CheckoutUnknownPlan", http.MethodPost, "/checkout", `{"plan":"weekly"}`, map[string]string{"Authorization": "Bearer " + token}, http.StatusBadRequest},
		{"ReturnSuccess", http.MethodGet, "/return?payment=success", "", nil, http.StatusOK},
		{"ReturnUnknown", http.MethodGet, "/return?payment=maybe", "", nil, http.StatusBadRequest},
		{"WebhookUnsigned", http.MethodPost, "/webhook", payload, nil, http.StatusBadRequest},
		{"WebhookSigned", http.MethodPost, "/webhook", payload, map[string]string{"Stripe-Signature": sign(payload, testWebhookSecret)}, http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.target, bytes.NewBufferString(tc.body))
			for k, v := range tc.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Errorf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}

	if len(roles.calls) != 1 {
		t.Errorf("expected exactly one upgrade from the signed webhook, got %d", len(roles.calls))
	}
}
