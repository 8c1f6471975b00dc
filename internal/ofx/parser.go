// Package ofx imports OFX/QFX bank statements as ledger records.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/Mohamed-apdi/expenditure-core/internal/model"
)

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	// Trim any leading whitespace or blank lines before the header
	content = strings.TrimLeft(content, " \t\r\n")

	// Fix mixed-case SEVERITY values (should be INFO, WARN, or ERROR)
	severityRegex := regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	content = severityRegex.ReplaceAllStringFunc(content, func(match string) string {
		return strings.ToUpper(match)
	})

	// Fix missing closing angle brackets in SGML-style OFX files
	tagFixRegex := regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// ParseFile parses an OFX/QFX file and returns ledger records targeting the
// given account: statement rows with negative amounts become expenses,
// positive ones become incomes. Record IDs are derived from the statement's
// FITID so re-importing the same file yields the same IDs.
func (p *Parser) ParseFile(_ context.Context, reader io.Reader, accountID string) ([]*model.LedgerRecord, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	processedContent := p.preprocessOFX(string(content))

	resp, err := ofxgo.ParseResponse(strings.NewReader(processedContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var records []*model.LedgerRecord
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			records = append(records, p.processTransactions(stmt.BankTranList, accountID)...)
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			records = append(records, p.processTransactions(stmt.BankTranList, accountID)...)
		}
	}

	slog.Info("Parsed OFX file",
		"records", len(records),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return records, nil
}

func (p *Parser) processTransactions(list *ofxgo.TransactionList, accountID string) []*model.LedgerRecord {
	if list == nil {
		return nil
	}

	var records []*model.LedgerRecord
	for _, ofxTx := range list.Transactions {
		rec, err := p.convertTransaction(ofxTx, accountID)
		if err != nil {
			slog.Warn("Skipping statement row",
				"fitid", string(ofxTx.FiTID),
				"error", err)
			continue
		}
		records = append(records, rec)
	}
	return records
}

// convertTransaction converts one OFX statement row. OFX uses negative
// amounts for debits.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, accountID string) (*model.LedgerRecord, error) {
	amount := decimal.NewFromBigRat(&ofxTx.TrnAmt.Rat, 2)
	if amount.IsZero() {
		return nil, fmt.Errorf("zero amount")
	}

	trnType := fmt.Sprintf("%v", ofxTx.TrnType)
	description := p.extractDescription(ofxTx)
	date := ofxTx.DtPosted.Time
	if date.IsZero() {
		date = time.Now().UTC()
	}

	var rec *model.LedgerRecord
	if amount.IsNegative() {
		rec = model.NewExpense(accountID, expenseCategory(trnType), amount.Neg(), date, description)
	} else {
		rec = model.NewIncome(accountID, incomeCategory(trnType), amount, date, description)
	}

	// Stable ID so a re-import of the same statement is recognized as a
	// duplicate rather than applied twice.
	if ofxTx.FiTID != "" {
		rec.ID = fmt.Sprintf("ofx-%s-%s", accountID, string(ofxTx.FiTID))
	}

	return rec, nil
}

// extractDescription tries to get a clean description from OFX data.
func (p *Parser) extractDescription(tx ofxgo.Transaction) string {
	// Prefer PAYEE if available (cleaner merchant name)
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := strings.TrimSpace(string(tx.Name))
	if name == "" {
		name = strings.TrimSpace(string(tx.Memo))
	}

	// Remove common prefixes
	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}
	upper := strings.ToUpper(name)
	for _, prefix := range prefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	return strings.TrimSpace(name)
}

func expenseCategory(trnType string) string {
	switch trnType {
	case "FEE", "SRVCHG":
		return "Bank Fees"
	case "ATM", "CASH":
		return "Cash & ATM"
	case "CHECK":
		return "Checks"
	default:
		return "Imported"
	}
}

func incomeCategory(trnType string) string {
	switch trnType {
	case "INT":
		return "Interest"
	case "DIV":
		return "Dividends"
	default:
		return "Income"
	}
}
