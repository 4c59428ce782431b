package matching_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/ledgerimport/internal/matching"
)

func TestDescribe(t *testing.T) {
	now := time.Now()
	rules := []matching.Rule{
		{RawPattern: "CONTINENTE", PreferredDescription: "Continente", CreatedAt: now},
		{RawPattern: "continente bom dia", PreferredDescription: "Continente Bom Dia", CreatedAt: now},
		{RawPattern: "uber", PreferredDescription: "Uber (old)", CreatedAt: now.Add(-time.Hour)},
		{RawPattern: "UBER", PreferredDescription: "Uber", CreatedAt: now},
		{RawPattern: "", PreferredDescription: "Everything", CreatedAt: now},
	}

	type args struct {
		raw string
	}

	type testCase struct {
		name string
		args args
		want string
	}

	tests := []testCase{
		{name: "CaseInsensitive", args: args{raw: "COMPRA continente lisboa"}, want: "Continente"},
		{name: "LongestWins", args: args{raw: "CONTINENTE BOM DIA ALVALADE"}, want: "Continente Bom Dia"},
		{name: "NewestBreaksTie", args: args{raw: "Uber *trip"}, want: "Uber"},
		{name: "NoMatch", args: args{raw: "Pingo Doce"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matching.Describe(rules, tt.args.raw))
		})
	}
}

func TestService_Learn(t *testing.T) {
	type args struct {
		pattern, preferred string
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *matching.MockRepository)
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{pattern: "  netflix ", preferred: "Netflix"},
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().CreateMapping(gomock.Any(), "netflix", "Netflix").
					Return(&matching.Rule{ID: uuid.New(), RawPattern: "netflix", PreferredDescription: "Netflix"}, nil)
			},
		},
		{
			name:    "EmptyPattern",
			args:    args{pattern: " ", preferred: "Netflix"},
			wantErr: true,
		},
		{
			name: "RepoError",
			args: args{pattern: "a", preferred: "b"},
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().CreateMapping(gomock.Any(), "a", "b").Return(nil, errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := matching.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := matching.NewService(repo).Learn(context.Background(), tt.args.pattern, tt.args.preferred)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "netflix", got.RawPattern)
		})
	}
}

func TestService_Describer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := matching.NewMockRepository(ctrl)
	repo.EXPECT().ListRules(gomock.Any()).Return([]matching.Rule{
		{RawPattern: "spotify", PreferredDescription: "Spotify"},
	}, nil).Times(1)

	describe, err := matching.NewService(repo).Describer(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Spotify", describe("SPOTIFY P1234"))
	assert.Equal(t, "", describe("Netflix"))
}
