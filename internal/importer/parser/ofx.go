package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/MrJamesThe3rd/ledgerimport/internal/importer/mapping"
)

// OFX row columns, named after the tags they come from.
const (
	OFXDate     = "DTPOSTED"
	OFXAmount   = "TRNAMT"
	OFXName     = "NAME"
	OFXMemo     = "MEMO"
	OFXFITID    = "FITID"
	OFXType     = "TRNTYPE"
	OFXCheckNum = "CHECKNUM"
	OFXRefNum   = "REFNUM"
	OFXSIC      = "SIC"
	OFXPayeeID  = "PAYEEID"
	OFXCurrency = "CURRENCY"
)

var ofxHeaders = []string{
	OFXDate, OFXAmount, OFXName, OFXMemo, OFXFITID, OFXType,
	OFXCheckNum, OFXRefNum, OFXSIC, OFXPayeeID, OFXCurrency,
}

type ofxParser struct{}

func (ofxParser) Parse(text string) (*Result, error) {
	res, ok := parseOFXStrict(text)
	if !ok {
		res = parseOFXLoose(text)
	}

	if len(res.Rows) == 0 {
		return nil, &FormatError{Format: FormatOFX, Err: ErrNoTransactions}
	}

	res.Headers = ofxHeaders
	res.SuggestedMapping = ofxMapping(res.Rows)
	res.SuggestedFormat = mapping.FormatOptions{
		DateFormat:       mapping.DateISO,
		DecimalSeparator: ".",
		SignConvention:   mapping.SignSingle,
	}

	return res, nil
}

// parseOFXStrict reads well-formed files with headers through ofxgo.
func parseOFXStrict(text string) (*Result, bool) {
	resp, err := ofxgo.ParseResponse(strings.NewReader(text))
	if err != nil {
		return nil, false
	}

	res := &Result{ProviderHint: resp.Signon.Org.String()}

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}

		currency := stmt.CurDef.String()
		setAccountHints(&res.AccountHints, stmt.BankAcctFrom.AcctID.String(), stmt.BankAcctFrom.BankID.String(), currency)

		if stmt.BankTranList != nil {
			res.Rows = append(res.Rows, ofxgoRows(stmt.BankTranList.Transactions, currency)...)
		}
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			continue
		}

		currency := stmt.CurDef.String()
		setAccountHints(&res.AccountHints, stmt.CCAcctFrom.AcctID.String(), "", currency)

		if stmt.BankTranList != nil {
			res.Rows = append(res.Rows, ofxgoRows(stmt.BankTranList.Transactions, currency)...)
		}
	}

	return res, len(res.Rows) > 0
}

func ofxgoRows(txs []ofxgo.Transaction, currency string) []RawRow {
	rows := make([]RawRow, 0, len(txs))

	for _, tx := range txs {
		date := tx.DtPosted.Time
		if date.IsZero() && tx.DtUser != nil {
			date = tx.DtUser.Time
		}

		rowCurrency := currency
		if tx.Currency != nil {
			rowCurrency = tx.Currency.CurSym.String()
		}

		sic := ""
		if tx.SIC != 0 {
			sic = fmt.Sprint(int64(tx.SIC))
		}

		rows = append(rows, RawRow{
			OFXDate:     date.Format("2006-01-02"),
			OFXAmount:   tx.TrnAmt.String(),
			OFXName:     strings.TrimSpace(tx.Name.String()),
			OFXMemo:     strings.TrimSpace(tx.Memo.String()),
			OFXFITID:    strings.TrimSpace(tx.FiTID.String()),
			OFXType:     tx.TrnType.String(),
			OFXCheckNum: strings.TrimSpace(tx.CheckNum.String()),
			OFXRefNum:   strings.TrimSpace(tx.RefNum.String()),
			OFXSIC:      sic,
			OFXPayeeID:  strings.TrimSpace(tx.PayeeID.String()),
			OFXCurrency: rowCurrency,
		})
	}

	return rows
}

var ofxTagPatterns = map[string]*regexp.Regexp{}

func init() {
	for _, tag := range []string{
		OFXDate, OFXAmount, OFXName, OFXMemo, OFXFITID, OFXType, OFXCheckNum,
		OFXRefNum, OFXSIC, OFXPayeeID, "CURDEF", "CURSYM", "ACCTID", "BANKID", "ORG",
	} {
		ofxTagPatterns[tag] = regexp.MustCompile(`(?i)<` + tag + `>\s*([^<\r\n]*)`)
	}
}

// ofxTag returns the first value of tag in s. Closing tags are optional.
func ofxTag(s, tag string) string {
	m := ofxTagPatterns[tag].FindStringSubmatch(s)
	if m == nil {
		return ""
	}

	return strings.TrimSpace(m[1])
}

// parseOFXLoose scans SGML tag soup for STMTTRN blocks.
func parseOFXLoose(text string) *Result {
	upper := asciiUpper(text)
	res := &Result{ProviderHint: ofxTag(text, "ORG")}

	currency := strings.ToUpper(ofxTag(text, "CURDEF"))

	for _, aggregate := range []string{"<BANKACCTFROM>", "<CCACCTFROM>"} {
		if i := strings.Index(upper, aggregate); i >= 0 {
			section := text[i:]
			setAccountHints(&res.AccountHints, ofxTag(section, "ACCTID"), ofxTag(section, "BANKID"), currency)

			break
		}
	}

	if res.AccountHints.Currency == "" {
		res.AccountHints.Currency = currency
	}

	for _, block := range stmttrnBlocks(text, upper) {
		rowCurrency := currency
		if c := ofxTag(block, "CURSYM"); c != "" {
			rowCurrency = strings.ToUpper(c)
		}

		res.Rows = append(res.Rows, RawRow{
			OFXDate:     ofxDate(ofxTag(block, OFXDate)),
			OFXAmount:   ofxTag(block, OFXAmount),
			OFXName:     ofxTag(block, OFXName),
			OFXMemo:     ofxTag(block, OFXMemo),
			OFXFITID:    ofxTag(block, OFXFITID),
			OFXType:     strings.ToUpper(ofxTag(block, OFXType)),
			OFXCheckNum: ofxTag(block, OFXCheckNum),
			OFXRefNum:   ofxTag(block, OFXRefNum),
			OFXSIC:      ofxTag(block, OFXSIC),
			OFXPayeeID:  ofxTag(block, OFXPayeeID),
			OFXCurrency: rowCurrency,
		})
	}

	return res
}

// stmttrnBlocks cuts the text between each <STMTTRN> and its close, the next
// <STMTTRN> or the end of the transaction list, whichever comes first.
func stmttrnBlocks(text, upper string) []string {
	const open = "<STMTTRN>"

	var blocks []string

	pos := 0
	for {
		i := strings.Index(upper[pos:], open)
		if i < 0 {
			return blocks
		}

		start := pos + i + len(open)
		end := len(text)

		for _, stop := range []string{"</STMTTRN>", open, "</BANKTRANLIST>"} {
			if j := strings.Index(upper[start:], stop); j >= 0 && start+j < end {
				end = start + j
			}
		}

		blocks = append(blocks, text[start:end])
		pos = end
	}
}

// asciiUpper upper-cases ASCII letters only so byte offsets match the input.
func asciiUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}

	return string(b)
}

// ofxDate keeps the leading YYYYMMDD of an OFX datetime and renders it as ISO.
func ofxDate(s string) string {
	digits := 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		digits++
	}

	if digits < 8 {
		return s
	}

	return s[0:4] + "-" + s[4:6] + "-" + s[6:8]
}

func setAccountHints(h *AccountHints, number, bankID, currency string) {
	if h.Number == "" {
		h.Number = strings.TrimSpace(number)
	}

	if h.BankID == "" {
		h.BankID = strings.TrimSpace(bankID)
	}

	if h.Currency == "" {
		h.Currency = strings.ToUpper(strings.TrimSpace(currency))
	}
}

func ofxMapping(rows []RawRow) mapping.ColumnMapping {
	m := mapping.ColumnMapping{
		mapping.FieldDate:       {OFXDate},
		mapping.FieldAmount:     {OFXAmount},
		mapping.FieldExternalID: {OFXFITID},
	}

	hasName, hasMemo, hasCurrency := false, false, false
	for _, r := range rows {
		hasName = hasName || r.Get(OFXName) != ""
		hasMemo = hasMemo || r.Get(OFXMemo) != ""
		hasCurrency = hasCurrency || r.Get(OFXCurrency) != ""
	}

	switch {
	case hasName:
		m[mapping.FieldDescription] = []string{OFXName}
		m[mapping.FieldPayee] = []string{OFXName}
	case hasMemo:
		m[mapping.FieldDescription] = []string{OFXMemo}
	}

	if hasName && hasMemo {
		m[mapping.FieldNotes] = []string{OFXMemo}
	}

	if hasCurrency {
		m[mapping.FieldCurrency] = []string{OFXCurrency}
	}

	return m
}
