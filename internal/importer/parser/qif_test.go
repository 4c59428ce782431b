package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/mapping"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/parser"
)

const qifStatement = `!Account
NChecking
TBank
^
!Type:Bank
D1/31'24
T-1,234.50
PGrocer
MWeekly shop
N1001
L[Food:Groceries]
CX
A1 Main St
ACity
^
D13/02/24
U50.00
PRefund
SFood
EReturn
$30.00
SMisc
$20.00
`

func TestParse_QIF(t *testing.T) {
	res, err := parser.Parse(parser.FormatQIF, qifStatement)
	require.NoError(t, err)

	assert.Equal(t, []string{"Checking"}, res.AccountHints.Names)
	assert.Contains(t, res.Headers, parser.QIFAccount)
	require.Len(t, res.Rows, 2)

	first := res.Rows[0]
	assert.Equal(t, "2024-01-31", first.Get(parser.QIFDate))
	assert.Equal(t, "-1,234.50", first.Get(parser.QIFAmount))
	assert.Equal(t, "Grocer", first.Get(parser.QIFPayee))
	assert.Equal(t, "Weekly shop", first.Get(parser.QIFMemo))
	assert.Equal(t, "1001", first.Get(parser.QIFNumber))
	assert.Equal(t, "Food:Groceries", first.Get(parser.QIFCategory))
	assert.Equal(t, "X", first.Get(parser.QIFCleared))
	assert.Equal(t, "1 Main St, City", first.Get(parser.QIFAddress))
	assert.Equal(t, "Checking", first.Get(parser.QIFAccount))

	second := res.Rows[1]
	assert.Equal(t, "2024-02-13", second.Get(parser.QIFDate))
	assert.Equal(t, "50.00", second.Get(parser.QIFAmount))
	assert.Equal(t, "Food:Return:30.00; Misc:20.00", second.Get(parser.QIFSplits))

	assert.Equal(t, parser.QIFAccount, res.SuggestedMapping.Column(mapping.FieldAccount))
	assert.Equal(t, parser.QIFPayee, res.SuggestedMapping.Column(mapping.FieldDescription))
}

func TestParse_QIFDates(t *testing.T) {
	type testCase struct {
		name string
		in   string
		want string
	}

	tests := []testCase{
		{name: "FourDigitYear", in: "12/25/1999", want: "1999-12-25"},
		{name: "Apostrophe", in: "3/ 7'05", want: "2005-03-07"},
		{name: "WindowedOld", in: "03/07/85", want: "1985-03-07"},
		{name: "ISO", in: "2024-02-29", want: "2024-02-29"},
		{name: "DayFirstSwapped", in: "25/12/2023", want: "2023-12-25"},
		{name: "Unreadable", in: "yesterday", want: "yesterday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := parser.Parse(parser.FormatQIF, "!Type:Bank\nD"+tt.in+"\nT1\n^\n")
			require.NoError(t, err)
			require.Len(t, res.Rows, 1)
			assert.Equal(t, tt.want, res.Rows[0].Get(parser.QIFDate))
		})
	}
}

func TestParse_QIFSkipsListSections(t *testing.T) {
	text := "!Type:Cat\nNFood\nE\n^\n!Type:Bank\nD01/02/2024\nT5\n^\n"

	res, err := parser.Parse(parser.FormatQIF, text)
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.False(t, res.SuggestedMapping.Has(mapping.FieldAccount))
}

func TestParse_QIFEmpty(t *testing.T) {
	_, err := parser.Parse(parser.FormatQIF, "!Type:Bank\n^\n")
	require.ErrorIs(t, err, parser.ErrNoTransactions)
}
