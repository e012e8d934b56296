package verification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJudgment(t *testing.T) {
	testCases := []struct {
		name    string
		body    string
		wantErr bool
		want    *Judgment
	}{
		{
			name: "Approved",
			body: `{"status":"approved","confidence":0.82,"reasoning":"watch visible","flags":["blurry"]}`,
			want: &Judgment{Status: VerdictApproved, Confidence: 0.82, Reasoning: "watch visible", Flags: []string{"blurry"}},
		},
		{
			name: "Missing Flags",
			body: `{"status":"REJECTED","confidence":0.1,"reasoning":"no watch"}`,
			want: &Judgment{Status: VerdictRejected, Confidence: 0.1, Reasoning: "no watch", Flags: []string{}},
		},
		{name: "Unknown Status", body: `{"status":"maybe","confidence":0.5}`, wantErr: true},
		{name: "Missing Status", body: `{"confidence":0.5}`, wantErr: true},
		{name: "Missing Confidence", body: `{"status":"approved"}`, wantErr: true},
		{name: "Confidence Out Of Range", body: `{"status":"approved","confidence":1.4}`, wantErr: true},
		{name: "Confidence As String", body: `{"status":"approved","confidence":"0.9"}`, wantErr: true},
		{name: "Not JSON", body: `<html>bad gateway</html>`, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseJudgment([]byte(tc.body))
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrMalformedResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClientVerify(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/verify", r.URL.Path)
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

			var req Request
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "proof1", req.ProofId)
			assert.Equal(t, "Photo of a book", req.ProofRequirementText)

			_, _ = w.Write([]byte(`{"status":"approved","confidence":0.9,"reasoning":"ok","flags":[]}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL+"/", "secret")
		got, err := client.Verify(context.Background(), Request{ProofId: "proof1", Image: "s3://bucket/p1.jpg", ProofRequirementText: "Photo of a book"})

		require.NoError(t, err)
		assert.Equal(t, VerdictApproved, got.Status)
	})

	t.Run("Server Error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, "").Verify(context.Background(), Request{ProofId: "proof1"})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("Timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := NewClient(srv.URL, "").Verify(ctx, Request{ProofId: "proof1"})

		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
