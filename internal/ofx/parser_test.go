package ofx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohamed-apdi/expenditure-core/internal/model"
)

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20260815120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20260801120000[0:GMT]
<DTEND>20260831120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20260815120000[0:GMT]
<TRNAMT>-25.50
<FITID>2026081501
<NAME>POS PURCHASE STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20260820120000[0:GMT]
<TRNAMT>1000.00
<FITID>2026082001
<NAME>PAYROLL DEPOSIT
</STMTTRN>
<STMTTRN>
<TRNTYPE>INT
<DTPOSTED>20260831120000[0:GMT]
<TRNAMT>1.23
<FITID>2026083101
<NAME>INTEREST PAYMENT
</STMTTRN>
<STMTTRN>
<TRNTYPE>FEE
<DTPOSTED>20260831120000[0:GMT]
<TRNAMT>-5.00
<FITID>2026083102
<NAME>MONTHLY SERVICE FEE
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20260831120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20260815120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20260801120000[0:GMT]
<DTEND>20260831120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20260810120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2026081001
<NAME>AMAZON.COM*RT4Y7HG2
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20260815120000[0:GMT]
<TRNAMT>-15.00
<FITID>CC2026081501
<NAME>NETFLIX.COM
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20260831120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParseFile(t *testing.T) {
	tests := []struct {
		name          string
		ofxData       string
		expectedCount int
		expectedError bool
	}{
		{
			name:          "valid bank statement",
			ofxData:       sampleBankOFX,
			expectedCount: 4,
			expectedError: false,
		},
		{
			name:          "valid credit card statement",
			ofxData:       sampleCreditCardOFX,
			expectedCount: 2,
			expectedError: false,
		},
		{
			name:          "invalid OFX data",
			ofxData:       "not valid OFX",
			expectedCount: 0,
			expectedError: true,
		},
		{
			name:          "empty OFX",
			ofxData:       "",
			expectedCount: 0,
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewParser()
			reader := strings.NewReader(tt.ofxData)

			records, err := parser.ParseFile(context.Background(), reader, "acc-1")

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Len(t, records, tt.expectedCount)
			}
		})
	}
}

func TestParseBankStatement(t *testing.T) {
	parser := NewParser()
	reader := strings.NewReader(sampleBankOFX)

	records, err := parser.ParseFile(context.Background(), reader, "acc-1")
	require.NoError(t, err)
	require.Len(t, records, 4)

	// Debit card purchase becomes an expense with the POS prefix stripped.
	purchase := records[0]
	assert.Equal(t, "ofx-acc-1-2026081501", purchase.ID)
	assert.Equal(t, model.RecordTypeExpense, purchase.Type)
	assert.True(t, purchase.Amount.Equal(decimal.RequireFromString("25.50")),
		"amount: %s", purchase.Amount)
	assert.Equal(t, "STARBUCKS STORE #1234", purchase.Description)
	assert.Equal(t, "Imported", purchase.Category)
	assert.Equal(t, "acc-1", purchase.AccountID)
	// Compare just the date components, ignoring timezone
	assert.Equal(t, 2026, purchase.Date.Year())
	assert.Equal(t, time.August, purchase.Date.Month())
	assert.Equal(t, 15, purchase.Date.Day())

	// Positive deposit becomes an income.
	deposit := records[1]
	assert.Equal(t, "ofx-acc-1-2026082001", deposit.ID)
	assert.Equal(t, model.RecordTypeIncome, deposit.Type)
	assert.True(t, deposit.Amount.Equal(decimal.RequireFromString("1000")))
	assert.Equal(t, "Income", deposit.Category)

	// Interest and fee rows get their dedicated categories.
	interest := records[2]
	assert.Equal(t, model.RecordTypeIncome, interest.Type)
	assert.Equal(t, "Interest", interest.Category)

	fee := records[3]
	assert.Equal(t, model.RecordTypeExpense, fee.Type)
	assert.Equal(t, "Bank Fees", fee.Category)
	assert.True(t, fee.Amount.Equal(decimal.RequireFromString("5")))
}

func TestParseCreditCardStatement(t *testing.T) {
	parser := NewParser()
	reader := strings.NewReader(sampleCreditCardOFX)

	records, err := parser.ParseFile(context.Background(), reader, "card-1")
	require.NoError(t, err)
	require.Len(t, records, 2)

	amazon := records[0]
	assert.Equal(t, "ofx-card-1-CC2026081001", amazon.ID)
	assert.Equal(t, model.RecordTypeExpense, amazon.Type)
	assert.True(t, amazon.Amount.Equal(decimal.RequireFromString("45.99")))
	assert.Equal(t, "AMAZON.COM*RT4Y7HG2", amazon.Description)
	assert.Equal(t, "card-1", amazon.AccountID)

	netflix := records[1]
	assert.Equal(t, "ofx-card-1-CC2026081501", netflix.ID)
	assert.True(t, netflix.Amount.Equal(decimal.RequireFromString("15")))
}

func TestParseFileIDsAreStable(t *testing.T) {
	parser := NewParser()

	first, err := parser.ParseFile(context.Background(), strings.NewReader(sampleBankOFX), "acc-1")
	require.NoError(t, err)
	second, err := parser.ParseFile(context.Background(), strings.NewReader(sampleBankOFX), "acc-1")
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID, "re-import must produce the same IDs")
	}
}

func TestExtractDescription(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "strips POS prefix",
			input:    "POS PURCHASE TRADER JOES #42",
			expected: "TRADER JOES #42",
		},
		{
			name:     "strips check card prefix",
			input:    "CHECK CARD GROCERY OUTLET",
			expected: "GROCERY OUTLET",
		},
		{
			name:     "plain name untouched",
			input:    "NETFLIX.COM",
			expected: "NETFLIX.COM",
		},
		{
			name:     "whitespace trimmed",
			input:    "  COFFEE SHOP  ",
			expected: "COFFEE SHOP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := ofxgo.Transaction{
				Name: ofxgo.String(tt.input),
			}
			assert.Equal(t, tt.expected, parser.extractDescription(tx))
		})
	}
}
