package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/mapping"
	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/parser"
)

const sgmlStatement = `<OFX>
<SIGNONMSGSRSV1><SONRS><FI><ORG>MyBank</ORG></FI></SONRS></SIGNONMSGSRSV1>
<BANKMSGSRSV1><STMTTRNRS><STMTRS>
<CURDEF>eur
<BANKACCTFROM>
<BANKID>0035
<ACCTID>PT500001
</BANKACCTFROM>
<BANKTRANLIST>
<STMTTRN>
<TRNTYPE>debit
<DTPOSTED>20240430120000[0:GMT]
<TRNAMT>-3.50
<FITID>A1
<NAME>Coffee Shop
<MEMO>Card 1234
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240501
<TRNAMT>100.00
<FITID>A2
<MEMO>Salary
<CURRENCY><CURRATE>1.1<CURSYM>usd</CURRENCY>
</STMTTRN>
</BANKTRANLIST>
</STMTRS></STMTTRNRS></BANKMSGSRSV1>
</OFX>`

func TestParse_OFXTagSoup(t *testing.T) {
	res, err := parser.Parse(parser.FormatOFX, sgmlStatement)
	require.NoError(t, err)

	assert.Equal(t, "MyBank", res.ProviderHint)
	assert.Equal(t, parser.AccountHints{Number: "PT500001", BankID: "0035", Currency: "EUR"}, res.AccountHints)

	require.Len(t, res.Rows, 2)

	first := res.Rows[0]
	assert.Equal(t, "2024-04-30", first.Get(parser.OFXDate))
	assert.Equal(t, "-3.50", first.Get(parser.OFXAmount))
	assert.Equal(t, "Coffee Shop", first.Get(parser.OFXName))
	assert.Equal(t, "Card 1234", first.Get(parser.OFXMemo))
	assert.Equal(t, "A1", first.Get(parser.OFXFITID))
	assert.Equal(t, "DEBIT", first.Get(parser.OFXType))
	assert.Equal(t, "EUR", first.Get(parser.OFXCurrency))

	second := res.Rows[1]
	assert.Equal(t, "2024-05-01", second.Get(parser.OFXDate))
	assert.Equal(t, "", second.Get(parser.OFXName))
	assert.Equal(t, "USD", second.Get(parser.OFXCurrency))

	m := res.SuggestedMapping
	assert.Equal(t, []string{parser.OFXName}, m.Columns(mapping.FieldDescription))
	assert.Equal(t, []string{parser.OFXName}, m.Columns(mapping.FieldPayee))
	assert.Equal(t, []string{parser.OFXMemo}, m.Columns(mapping.FieldNotes))
	assert.Equal(t, parser.OFXFITID, m.Column(mapping.FieldExternalID))
	assert.Equal(t, mapping.DateISO, res.SuggestedFormat.DateFormat)
}

func TestParse_OFXCreditCard(t *testing.T) {
	text := `<OFX><CREDITCARDMSGSRSV1><CCSTMTTRNRS><CCSTMTRS><CURDEF>GBP
<CCACCTFROM><ACCTID>4111</CCACCTFROM>
<BANKTRANLIST>
<STMTTRN><DTPOSTED>20240102<TRNAMT>-20<FITID>X<MEMO>Fuel</STMTTRN>
</BANKTRANLIST></CCSTMTRS></CCSTMTTRNRS></CREDITCARDMSGSRSV1></OFX>`

	res, err := parser.Parse(parser.FormatOFX, text)
	require.NoError(t, err)

	assert.Equal(t, "4111", res.AccountHints.Number)
	assert.Equal(t, "GBP", res.AccountHints.Currency)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, []string{parser.OFXMemo}, res.SuggestedMapping.Columns(mapping.FieldDescription))
	assert.False(t, res.SuggestedMapping.Has(mapping.FieldPayee))
}

func TestParse_OFXNoTransactions(t *testing.T) {
	_, err := parser.Parse(parser.FormatOFX, "<OFX><BANKTRANLIST></BANKTRANLIST></OFX>")
	require.ErrorIs(t, err, parser.ErrNoTransactions)
}

const ofxV1Statement = `OFXHEADER:100
DATA:OFXSGML
VERSION:103
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1><SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240502001840.607[0:GMT]
<LANGUAGE>ENG
<FI>
<ORG>MyBank
<FID>3534
</FI>
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>e1707dfd-695d-4451-8d9c-0e142fdc456a
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>EUR
<BANKACCTFROM>
<BANKID>0035
<ACCTID>PT500001
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240401000000.000[0:GMT]
<DTEND>20240502000000.000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240430120000.000[0:GMT]
<TRNAMT>-3.505
<FITID>A1
<NAME>Coffee Shop
<MEMO>Card 1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240501120000.000[0:GMT]
<TRNAMT>100.00
<FITID>A2
<NAME>Salary
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1096.495
<DTASOF>20240502001841.262[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>
`

const ofxV2Statement = `<?xml version="1.0" encoding="utf-8"?>
<?OFX OFXHEADER="200" VERSION="203" SECURITY="NONE" OLDFILEUID="NONE" NEWFILEUID="NONE"?>
<OFX>
  <SIGNONMSGSRSV1><SONRS>
    <STATUS>
      <CODE>0</CODE>
      <SEVERITY>INFO</SEVERITY>
    </STATUS>
    <DTSERVER>20240502001504.765[0:GMT]</DTSERVER>
    <LANGUAGE>ENG</LANGUAGE>
    <FI>
      <ORG>MyBank</ORG>
      <FID>4881</FID>
    </FI>
  </SONRS></SIGNONMSGSRSV1>
  <BANKMSGSRSV1>
    <STMTTRNRS>
      <TRNUID>262e39f1-e698-48cb-b2a2-b2f8ac2478fa</TRNUID>
      <STATUS>
        <CODE>0</CODE>
        <SEVERITY>INFO</SEVERITY>
      </STATUS>
      <STMTRS>
        <CURDEF>EUR</CURDEF>
        <BANKACCTFROM>
          <BANKID>0035</BANKID>
          <ACCTID>PT500001</ACCTID>
          <ACCTTYPE>CHECKING</ACCTTYPE>
        </BANKACCTFROM>
        <BANKTRANLIST>
          <DTSTART>20240401000000.000[0:GMT]</DTSTART>
          <DTEND>20240502000000.000[0:GMT]</DTEND>
          <STMTTRN>
            <TRNTYPE>DEBIT</TRNTYPE>
            <DTPOSTED>20240430120000.000[0:GMT]</DTPOSTED>
            <TRNAMT>-3.505</TRNAMT>
            <FITID>A1</FITID>
            <NAME>Coffee Shop</NAME>
            <MEMO>Card 1234</MEMO>
          </STMTTRN>
          <STMTTRN>
            <TRNTYPE>CREDIT</TRNTYPE>
            <DTPOSTED>20240501120000.000[0:GMT]</DTPOSTED>
            <TRNAMT>100.00</TRNAMT>
            <FITID>A2</FITID>
            <NAME>Salary</NAME>
          </STMTTRN>
        </BANKTRANLIST>
        <LEDGERBAL>
          <BALAMT>1096.495</BALAMT>
          <DTASOF>20240502001505.296[0:GMT]</DTASOF>
        </LEDGERBAL>
      </STMTRS>
    </STMTTRNRS>
  </BANKMSGSRSV1>
</OFX>
`

func TestParse_OFXWithHeaders(t *testing.T) {
	type testCase struct {
		name string
		text string
	}

	tests := []testCase{
		{name: "SGML", text: ofxV1Statement},
		{name: "XML", text: ofxV2Statement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, parser.FormatOFX, parser.Detect("statement.txt", tt.text))

			res, err := parser.Parse(parser.FormatOFX, tt.text)
			require.NoError(t, err)

			assert.Equal(t, "MyBank", res.ProviderHint)
			assert.Equal(t, parser.AccountHints{Number: "PT500001", BankID: "0035", Currency: "EUR"}, res.AccountHints)

			require.Len(t, res.Rows, 2)

			debit := res.Rows[0]
			assert.Equal(t, "2024-04-30", debit.Get(parser.OFXDate))
			assert.Equal(t, "-3.505", debit.Get(parser.OFXAmount))
			assert.Equal(t, "Coffee Shop", debit.Get(parser.OFXName))
			assert.Equal(t, "Card 1234", debit.Get(parser.OFXMemo))
			assert.Equal(t, "A1", debit.Get(parser.OFXFITID))
			assert.Equal(t, "DEBIT", debit.Get(parser.OFXType))
			assert.Equal(t, "EUR", debit.Get(parser.OFXCurrency))

			// Decoded amounts lose the source's trailing zeros.
			credit := res.Rows[1]
			assert.Equal(t, "100", credit.Get(parser.OFXAmount))
			assert.Equal(t, "CREDIT", credit.Get(parser.OFXType))
			assert.Equal(t, "A2", credit.Get(parser.OFXFITID))
		})
	}
}
