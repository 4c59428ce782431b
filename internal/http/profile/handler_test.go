package profile_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	httpprofile "github.com/MrJamesThe3rd/ledgerimport/internal/http/profile"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/mapping"
	"github.com/MrJamesThe3rd/ledgerimport/internal/profile"
)

func TestHandler(t *testing.T) {
	id := uuid.New()

	type testCase struct {
		name      string
		method    string
		path      string
		body      string
		setupMock func(m *profile.MockRepository)
		wantCode  int
	}

	tests := []testCase{
		{
			name:   "Create",
			method: http.MethodPost,
			path:   "/profiles",
			body:   `{"name":"Bank","headers":["Date","Amount"],"mapping":{"date":["Date"],"amount":["Amount"]},"format":{"date_format":"DD/MM/YYYY","decimal_separator":",","thousands_separator":"."}}`,
			setupMock: func(m *profile.MockRepository) {
				m.EXPECT().Save(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p *profile.Profile) error {
						assert.Equal(t, "date|amount", p.HeaderFingerprint)
						assert.Equal(t, "Date", p.Mapping.Column(mapping.FieldDate))
						return nil
					})
			},
			wantCode: http.StatusCreated,
		},
		{
			name:   "Overwrite",
			method: http.MethodPut,
			path:   "/profiles/" + id.String(),
			body:   `{"name":"Bank","headers":["Date"]}`,
			setupMock: func(m *profile.MockRepository) {
				m.EXPECT().Save(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p *profile.Profile) error {
						assert.Equal(t, id, p.ID)
						return nil
					})
			},
			wantCode: http.StatusOK,
		},
		{
			name:     "CreateInvalid",
			method:   http.MethodPost,
			path:     "/profiles",
			body:     `{"headers":["Date"]}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:   "DeleteMissing",
			method: http.MethodDelete,
			path:   "/profiles/" + id.String(),
			setupMock: func(m *profile.MockRepository) {
				m.EXPECT().Delete(gomock.Any(), id).Return(profile.ErrNotFound)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name:     "BadID",
			method:   http.MethodGet,
			path:     "/profiles/nope",
			wantCode: http.StatusBadRequest,
		},
		{
			name:   "DetectNone",
			method: http.MethodPost,
			path:   "/profiles/detect",
			body:   `{"headers":["Date"]}`,
			setupMock: func(m *profile.MockRepository) {
				m.EXPECT().FindByFingerprint(gomock.Any(), "date").Return(nil, profile.ErrNotFound)
			},
			wantCode: http.StatusNoContent,
		},
		{
			name:   "ListEmpty",
			method: http.MethodGet,
			path:   "/profiles",
			setupMock: func(m *profile.MockRepository) {
				m.EXPECT().List(gomock.Any()).Return(nil, nil)
			},
			wantCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := profile.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			router := chi.NewRouter()
			router.Route("/profiles", httpprofile.NewHandler(profile.NewService(repo)).Routes)

			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())

			if tt.name == "ListEmpty" {
				var got []any
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
				assert.Empty(t, got)
			}
		})
	}
}
