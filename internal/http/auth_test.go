package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apihttp "github.com/MrJamesThe3rd/ledgerimport/internal/http"
)

func sign(t *testing.T, secret string, exp time.Time) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "importer",
		"exp": exp.Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	return token
}

func TestRequireToken(t *testing.T) {
	type args struct {
		secret string
		header string
	}

	type testCase struct {
		name     string
		args     args
		wantCode int
	}

	tests := []testCase{
		{
			name:     "Disabled",
			args:     args{},
			wantCode: http.StatusOK,
		},
		{
			name:     "Valid",
			args:     args{secret: "s3cret", header: "Bearer " + sign(t, "s3cret", time.Now().Add(time.Hour))},
			wantCode: http.StatusOK,
		},
		{
			name:     "Missing",
			args:     args{secret: "s3cret"},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "WrongSecret",
			args:     args{secret: "s3cret", header: "Bearer " + sign(t, "other", time.Now().Add(time.Hour))},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "Expired",
			args:     args{secret: "s3cret", header: "Bearer " + sign(t, "s3cret", time.Now().Add(-time.Hour))},
			wantCode: http.StatusUnauthorized,
		},
	}

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.args.header != "" {
				req.Header.Set("Authorization", tt.args.header)
			}

			rec := httptest.NewRecorder()
			apihttp.RequireToken(tt.args.secret)(ok).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
