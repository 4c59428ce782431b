package profile_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/mapping"
	"github.com/MrJamesThe3rd/ledgerimport/internal/profile"
)

func TestService_Save(t *testing.T) {
	cm := mapping.ColumnMapping{}
	require.NoError(t, cm.Set(mapping.FieldDate, "Date"))
	require.NoError(t, cm.Set(mapping.FieldAmount, "Amount"))

	existing := uuid.New()

	type args struct {
		params profile.SaveParams
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *profile.MockRepository)
		wantErr   error
		check     func(t *testing.T, p *profile.Profile)
	}

	tests := []testCase{
		{
			name: "New",
			args: args{params: profile.SaveParams{
				Name:    " My Bank ",
				Headers: []string{" Date", "Amount "},
				Mapping: cm,
				Format:  mapping.DefaultFormat(),
			}},
			setupMock: func(m *profile.MockRepository) {
				m.EXPECT().Save(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p *profile.Profile) error {
						assert.Equal(t, uuid.Nil, p.ID)
						p.ID = uuid.New()
						return nil
					})
			},
			check: func(t *testing.T, p *profile.Profile) {
				assert.Equal(t, "My Bank", p.Name)
				assert.Equal(t, "date|amount", p.HeaderFingerprint)
				assert.Equal(t, "Date", p.Mapping.Column(mapping.FieldDate))
				assert.NotEqual(t, uuid.Nil, p.ID)
			},
		},
		{
			name: "OverwriteByID",
			args: args{params: profile.SaveParams{
				ID:      &existing,
				Name:    "Renamed",
				Headers: []string{"Date"},
				Format:  mapping.DefaultFormat(),
			}},
			setupMock: func(m *profile.MockRepository) {
				m.EXPECT().Save(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p *profile.Profile) error {
						assert.Equal(t, existing, p.ID)
						return nil
					})
			},
			check: func(t *testing.T, p *profile.Profile) {
				assert.Equal(t, existing, p.ID)
			},
		},
		{
			name:    "MissingName",
			args:    args{params: profile.SaveParams{Headers: []string{"Date"}}},
			wantErr: profile.ErrInvalid,
		},
		{
			name:    "MissingHeaders",
			args:    args{params: profile.SaveParams{Name: "x"}},
			wantErr: profile.ErrInvalid,
		},
		{
			name: "SameSeparators",
			args: args{params: profile.SaveParams{
				Name:    "x",
				Headers: []string{"Date"},
				Format:  mapping.FormatOptions{DecimalSeparator: ",", ThousandsSeparator: ","},
			}},
			wantErr: profile.ErrInvalid,
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

			got, err := profile.NewService(repo).Save(context.Background(), tt.args.params)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestService_Detect(t *testing.T) {
	stored := &profile.Profile{ID: uuid.New(), Name: "CGD", HeaderFingerprint: "data mov.|descrição|montante"}

	type testCase struct {
		name      string
		headers   []string
		setupMock func(m *profile.MockRepository)
		want      *profile.Profile
		wantErr   bool
	}

	tests := []testCase{
		{
			name:    "Match",
			headers: []string{"Data Mov.", "Descrição", " Montante"},
			setupMock: func(m *profile.MockRepository) {
				m.EXPECT().FindByFingerprint(gomock.Any(), "data mov.|descrição|montante").Return(stored, nil)
			},
			want: stored,
		},
		{
			name:    "NoMatch",
			headers: []string{"Date"},
			setupMock: func(m *profile.MockRepository) {
				m.EXPECT().FindByFingerprint(gomock.Any(), "date").Return(nil, profile.ErrNotFound)
			},
		},
		{
			name:    "BuiltinFallback",
			headers: []string{"Data mov.", "Descrição", "Movimento"},
			setupMock: func(m *profile.MockRepository) {
				m.EXPECT().FindByFingerprint(gomock.Any(), gomock.Any()).Return(nil, profile.ErrNotFound)
			},
			want: profile.Builtin([]string{"Data mov.", "Descrição", "Movimento"}),
		},
		{
			name: "NoHeaders",
		},
		{
			name:    "RepoError",
			headers: []string{"Date"},
			setupMock: func(m *profile.MockRepository) {
				m.EXPECT().FindByFingerprint(gomock.Any(), "date").Return(nil, errors.New("db down"))
			},
			wantErr: true,
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

			got, err := profile.NewService(repo).Detect(context.Background(), tt.headers)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuiltin(t *testing.T) {
	type testCase struct {
		name     string
		headers  []string
		wantName string
		check    func(t *testing.T, p *profile.Profile)
	}

	tests := []testCase{
		{
			name:     "Card",
			headers:  []string{"Data", "Descrição", "Débito", "Crédito", "Saldo"},
			wantName: "CGD cartão",
			check: func(t *testing.T, p *profile.Profile) {
				assert.Equal(t, mapping.SignDebitCredit, p.Format.SignConvention)
				assert.Equal(t, "Débito", p.Mapping.Column(mapping.FieldDebit))
			},
		},
		{
			name:     "AccountCaseInsensitive",
			headers:  []string{"DATA MOV.", "Data valor", "DESCRIÇÃO", "Montante"},
			wantName: "CGD conta",
			check: func(t *testing.T, p *profile.Profile) {
				assert.Equal(t, "DATA MOV.", p.Mapping.Column(mapping.FieldDate))
				assert.Equal(t, "DESCRIÇÃO", p.Mapping.Column(mapping.FieldDescription))
				assert.Equal(t, mapping.DateDMYDash, p.Format.DateFormat)
				assert.Equal(t, ",", p.Format.DecimalSeparator)
				assert.True(t, p.Builtin)
			},
		},
		{
			name:    "Unknown",
			headers: []string{"Date", "Amount"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := profile.Builtin(tt.headers)
			if tt.wantName == "" {
				assert.Nil(t, got)
				return
			}

			require.NotNil(t, got)
			assert.Equal(t, tt.wantName, got.Name)
			tt.check(t, got)
		})
	}
}
