package statement_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/ledgerimport/internal/http/statement"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer"
	"github.com/MrJamesThe3rd/ledgerimport/internal/ledger"
	"github.com/MrJamesThe3rd/ledgerimport/internal/ledger/memstore"
	"github.com/MrJamesThe3rd/ledgerimport/internal/matching"
	"github.com/MrJamesThe3rd/ledgerimport/internal/metrics"
	"github.com/MrJamesThe3rd/ledgerimport/internal/profile"
	"github.com/MrJamesThe3rd/ledgerimport/internal/reference"
)

func newServer(t *testing.T) (*httptest.Server, *memstore.Store, uuid.UUID) {
	t.Helper()

	ctrl := gomock.NewController(t)
	account := uuid.New()

	profiles := profile.NewMockRepository(ctrl)
	profiles.EXPECT().FindByFingerprint(gomock.Any(), gomock.Any()).Return(nil, profile.ErrNotFound).AnyTimes()

	rules := matching.NewMockRepository(ctrl)
	rules.EXPECT().ListRules(gomock.Any()).Return(nil, nil).AnyTimes()

	store := memstore.New(map[uuid.UUID]decimal.Decimal{account: decimal.NewFromInt(100)})

	svc := importer.NewService(
		ledger.NewService(store),
		reference.NewStatic(reference.Snapshot{
			Accounts: []reference.Account{{ID: account, Name: "Checking", Currency: "EUR"}},
		}),
		profile.NewService(profiles),
		matching.NewService(rules),
		metrics.New(prometheus.NewRegistry()),
		importer.Options{},
	)

	router := chi.NewRouter()
	router.Route("/import", statement.NewHandler(svc, 1<<20).Routes)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv, store, account
}

func upload(t *testing.T, url, name, content string) *http.Response {
	t.Helper()

	var body bytes.Buffer

	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(url+"/import/upload", mw.FormDataContentType(), &body)
	require.NoError(t, err)

	return resp
}

func postJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()

	raw, err := json.Marshal(v)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)

	return resp
}

func TestHandler_ImportFlow(t *testing.T) {
	srv, store, account := newServer(t)

	resp := upload(t, srv.URL, "statement.csv", "Date,Description,Amount\n30/04/2024,Coffee Shop,-3.50\n30/04/2024,Coffee Shop,-3.50\n")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var up map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&up))
	assert.Equal(t, "csv", up["format"])
	assert.Equal(t, "date|description|amount", up["header_fingerprint"])

	req := map[string]any{
		"rows":           up["rows"],
		"mapping":        up["mapping"],
		"format_options": up["format_options"],
		"transforms":     up["transforms"],
		"fx":             map[string]string{"mode": "skip"},
		"account_id":     account,
	}

	previewResp := postJSON(t, srv.URL+"/import/preview", req)
	defer previewResp.Body.Close()
	require.Equal(t, http.StatusOK, previewResp.StatusCode)

	var pv struct {
		Rows []struct {
			Status string `json:"status"`
			Amount string `json:"amount"`
			Date   string `json:"date"`
		} `json:"rows"`
		Counts     map[string]int `json:"counts"`
		Importable int            `json:"importable"`
	}
	require.NoError(t, json.NewDecoder(previewResp.Body).Decode(&pv))
	require.Len(t, pv.Rows, 2)
	assert.Equal(t, "duplicate", pv.Rows[1].Status)
	assert.Equal(t, "-3.5", pv.Rows[0].Amount)
	assert.Equal(t, "2024-04-30", pv.Rows[0].Date)
	assert.Equal(t, 1, pv.Counts["duplicate"])
	assert.Equal(t, 1, pv.Importable)

	req["file_name"] = "statement.csv"
	req["format"] = "csv"

	commitResp := postJSON(t, srv.URL+"/import/commit", req)
	defer commitResp.Body.Close()
	require.Equal(t, http.StatusCreated, commitResp.StatusCode)

	var batch struct {
		ID             uuid.UUID   `json:"id"`
		TransactionIDs []uuid.UUID `json:"transaction_ids"`
		Summary        struct {
			Imported  int `json:"imported"`
			Duplicate int `json:"duplicate"`
		} `json:"summary"`
	}
	require.NoError(t, json.NewDecoder(commitResp.Body).Decode(&batch))
	assert.Len(t, batch.TransactionIDs, 1)
	assert.Equal(t, 1, batch.Summary.Imported)
	assert.Equal(t, 1, batch.Summary.Duplicate)
	assert.Equal(t, "96.5", store.Balance(account).String())

	latest, err := http.Get(srv.URL + "/import/batches/latest")
	require.NoError(t, err)
	defer latest.Body.Close()
	assert.Equal(t, http.StatusOK, latest.StatusCode)

	undo := postJSON(t, srv.URL+"/import/undo", nil)
	defer undo.Body.Close()
	assert.Equal(t, http.StatusOK, undo.StatusCode)
	assert.Equal(t, "100", store.Balance(account).String())

	again := postJSON(t, srv.URL+"/import/undo", nil)
	defer again.Body.Close()
	assert.Equal(t, http.StatusNoContent, again.StatusCode)

	missing, err := http.Get(srv.URL + "/import/batches/latest")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestHandler_Errors(t *testing.T) {
	srv, _, account := newServer(t)

	type testCase struct {
		name     string
		do       func() *http.Response
		wantCode int
	}

	tests := []testCase{
		{
			name: "UnparseableUpload",
			do: func() *http.Response {
				return upload(t, srv.URL, "empty.csv", "Date,Amount\n")
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "IncompleteMapping",
			do: func() *http.Response {
				return postJSON(t, srv.URL+"/import/preview", map[string]any{
					"rows":    []map[string]string{{"Date": "2024-01-01"}},
					"mapping": map[string][]string{"date": {"Date"}},
				})
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "UnknownFXMode",
			do: func() *http.Response {
				return postJSON(t, srv.URL+"/import/preview", map[string]any{
					"fx": map[string]string{"mode": "guess"},
				})
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "NothingToImport",
			do: func() *http.Response {
				return postJSON(t, srv.URL+"/import/commit", map[string]any{
					"rows":       []map[string]string{{"Date": "nope", "Description": "x", "Amount": "1"}},
					"mapping":    map[string][]string{"date": {"Date"}, "description": {"Description"}, "amount": {"Amount"}},
					"account_id": account,
				})
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "MalformedBody",
			do: func() *http.Response {
				resp, err := http.Post(srv.URL+"/import/preview", "application/json", bytes.NewReader([]byte("{")))
				require.NoError(t, err)

				return resp
			},
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := tt.do()
			defer resp.Body.Close()

			assert.Equal(t, tt.wantCode, resp.StatusCode)
		})
	}
}

func TestHandler_Overrides(t *testing.T) {
	srv, _, account := newServer(t)

	base := map[string]any{
		"rows": []map[string]string{
			{"Date": "2024-01-01", "Description": "a", "Payee": "Market", "Amount": "-1"},
			{"Date": "2024-01-02", "Description": "b", "Payee": "", "Amount": "-2"},
			{"Date": "2024-01-03", "Description": "c", "Payee": "", "Amount": "-3"},
		},
		"mapping": map[string][]string{
			"date": {"Date"}, "description": {"Description"}, "payee": {"Payee"}, "amount": {"Amount"},
		},
		"account_id": account,
	}

	withExtra := func(extra map[string]any) map[string]any {
		out := map[string]any{}
		for k, v := range base {
			out[k] = v
		}

		for k, v := range extra {
			out[k] = v
		}

		return out
	}

	t.Run("FillDownPayee", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/import/overrides/fill-down", withExtra(map[string]any{"from": 0, "field": "payee"}))
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got struct {
			Overrides map[string]struct {
				PayeeName *string `json:"payee_name"`
			} `json:"overrides"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		require.Len(t, got.Overrides, 2)
		require.NotNil(t, got.Overrides["2"].PayeeName)
		assert.Equal(t, "Market", *got.Overrides["2"].PayeeName)
	})

	t.Run("FillDownBadField", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/import/overrides/fill-down", withExtra(map[string]any{"field": "notes"}))
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("DefaultCategory", func(t *testing.T) {
		category := uuid.New()

		resp := postJSON(t, srv.URL+"/import/overrides/default-category", withExtra(map[string]any{"category_id": category}))
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got struct {
			Overrides map[string]struct {
				CategoryID *uuid.UUID `json:"category_id"`
			} `json:"overrides"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		require.Len(t, got.Overrides, 3)
		assert.Equal(t, category, *got.Overrides["0"].CategoryID)
	})

	t.Run("DefaultCategoryMissing", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/import/overrides/default-category", base)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestHandler_Accounts(t *testing.T) {
	srv, _, account := newServer(t)

	resp, err := http.Get(srv.URL + "/import/accounts")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))

	require.Len(t, got, 1)
	assert.Equal(t, account.String(), got[0]["id"])
	assert.Equal(t, "Checking", got[0]["name"])
	assert.Equal(t, "EUR", got[0]["currency"])
	assert.NotContains(t, got[0], "number")
}

func TestHandler_PreviewRowFlags(t *testing.T) {
	srv, _, account := newServer(t)

	resp := upload(t, srv.URL, "statement.csv", "Date,Description,Amount,Currency,Counterparty,Balance\n"+
		"30/04/2024,Hotel,-100.00,USD,US64SVBKUS6S3300958879,900.00\n"+
		"30/04/2024,Coffee Shop,-3.50,EUR,,896.50\n"+
		"30/04/2024,Coffee Shop,-3.50,EUR,,893.00\n")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var up map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&up))

	previewResp := postJSON(t, srv.URL+"/import/preview", map[string]any{
		"rows": up["rows"],
		"mapping": map[string][]string{
			"date":         {"Date"},
			"description":  {"Description"},
			"amount":       {"Amount"},
			"currency":     {"Currency"},
			"counterparty": {"Counterparty"},
			"balance":      {"Balance"},
		},
		"format_options": up["format_options"],
		"fx":             map[string]string{"mode": "skip"},
		"account_id":     account,
	})
	defer previewResp.Body.Close()
	require.Equal(t, http.StatusOK, previewResp.StatusCode)

	var pv struct {
		Rows []struct {
			Status       string  `json:"status"`
			Counterparty string  `json:"counterparty"`
			Balance      *string `json:"balance"`
			NeedsFx      bool    `json:"needs_fx"`
			Duplicate    bool    `json:"duplicate"`
		} `json:"rows"`
	}
	require.NoError(t, json.NewDecoder(previewResp.Body).Decode(&pv))
	require.Len(t, pv.Rows, 3)

	hotel := pv.Rows[0]
	assert.Equal(t, "needs-fx", hotel.Status)
	assert.True(t, hotel.NeedsFx)
	assert.False(t, hotel.Duplicate)
	assert.Equal(t, "US64SVBKUS6S3300958879", hotel.Counterparty)
	require.NotNil(t, hotel.Balance)
	assert.Equal(t, "900", *hotel.Balance)

	assert.False(t, pv.Rows[1].NeedsFx)
	assert.False(t, pv.Rows[1].Duplicate)
	assert.Empty(t, pv.Rows[1].Counterparty)

	assert.True(t, pv.Rows[2].Duplicate)
	assert.Equal(t, "duplicate", pv.Rows[2].Status)
}
