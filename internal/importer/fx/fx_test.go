package fx_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/fx"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/mapping"
)

func TestConvert(t *testing.T) {
	type args struct {
		native   string
		from, to string
		mode     fx.Mode
		row      map[string]string
	}

	type testCase struct {
		name      string
		args      args
		want      string
		wantRate  string
		wantNeeds bool
	}

	tests := []testCase{
		{
			name: "SameCurrency",
			args: args{native: "-3.50", from: "eur", to: "EUR", mode: fx.Skip{}},
			want: "-3.5",
		},
		{
			name:     "SingleRate",
			args:     args{native: "100.00", from: "USD", to: "EUR", mode: fx.SingleRate{Rate: decimal.RequireFromString("1.25")}},
			want:     "125",
			wantRate: "1.25",
		},
		{
			name:     "SingleRateRounds",
			args:     args{native: "10.00", from: "USD", to: "EUR", mode: fx.SingleRate{Rate: decimal.RequireFromString("0.33333")}},
			want:     "3.33",
			wantRate: "0.33333",
		},
		{
			name:      "SingleRateZero",
			args:      args{native: "10", from: "USD", to: "EUR", mode: fx.SingleRate{}},
			wantNeeds: true,
		},
		{
			name:     "RateColumn",
			args:     args{native: "-20", from: "GBP", to: "EUR", mode: fx.RateColumn{Column: "Rate"}, row: map[string]string{"Rate": "1.17"}},
			want:     "-23.4",
			wantRate: "1.17",
		},
		{
			name:      "RateColumnEmpty",
			args:      args{native: "-20", from: "GBP", to: "EUR", mode: fx.RateColumn{Column: "Rate"}, row: map[string]string{"Rate": ""}},
			wantNeeds: true,
		},
		{
			name:      "RateColumnNegative",
			args:      args{native: "-20", from: "GBP", to: "EUR", mode: fx.RateColumn{Column: "Rate"}, row: map[string]string{"Rate": "-1"}},
			wantNeeds: true,
		},
		{
			name:      "Skip",
			args:      args{native: "100", from: "USD", to: "EUR", mode: fx.Skip{}},
			wantNeeds: true,
		},
		{
			name:      "NilMode",
			args:      args{native: "100", from: "USD", to: "EUR"},
			wantNeeds: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fx.Convert(decimal.RequireFromString(tt.args.native), tt.args.from, tt.args.to, tt.args.mode, tt.args.row, mapping.DefaultFormat())

			assert.Equal(t, tt.wantNeeds, got.NeedsFx)

			if tt.wantNeeds {
				assert.False(t, got.Amount.Valid)
				assert.NotEmpty(t, got.Warning)

				return
			}

			require.True(t, got.Amount.Valid)
			assert.Equal(t, tt.want, got.Amount.Decimal.String())
			assert.Empty(t, got.Warning)

			if tt.wantRate == "" {
				assert.False(t, got.Rate.Valid)
			} else {
				assert.Equal(t, tt.wantRate, got.Rate.Decimal.String())
			}
		})
	}
}

func TestDecode(t *testing.T) {
	m, err := fx.Decode("single-rate", "1.25", "")
	require.NoError(t, err)
	assert.Equal(t, fx.SingleRate{Rate: decimal.RequireFromString("1.25")}.Rate.String(), m.(fx.SingleRate).Rate.String())

	m, err = fx.Decode("rate-column", "", " Rate ")
	require.NoError(t, err)
	assert.Equal(t, fx.RateColumn{Column: "Rate"}, m)

	m, err = fx.Decode("", "", "")
	require.NoError(t, err)
	assert.Equal(t, fx.Skip{}, m)

	_, err = fx.Decode("guess", "", "")
	require.ErrorIs(t, err, fx.ErrUnknownMode)
}
