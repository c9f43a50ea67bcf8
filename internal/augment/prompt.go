package augment

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/insight"
)

const instructionPrompt = "You are a personal finance advisor reviewing one month of a user's transactions.\n\n" +
	"Task:\n" +
	"- Read the summary and the most recent transactions in the JSON document.\n" +
	"- Score the user's financial health from 0 (critical) to 100 (excellent).\n" +
	"- Write a short analysis and a forecast for the end of the month.\n" +
	"- Give exactly three specific, actionable recommendations.\n" +
	"- Estimate how much money the user could save per month.\n\n" +
	"Rules:\n" +
	"- Base every statement on the data provided. Do not invent transactions.\n" +
	"- Amounts are in the user's currency; use the symbol %q.\n" +
	"- Return ONLY a raw JSON object with the fields described below.\n" +
	"- Do NOT wrap the response in code fences or add any other text.\n"

type shapedTransaction struct {
	Date     string `json:"date"`
	Kind     string `json:"kind"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

type shapedCategory struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

type shapedSummary struct {
	TotalIncome    string           `json:"totalIncome"`
	TotalExpense   string           `json:"totalExpense"`
	NetBalance     string           `json:"netBalance"`
	SavingsRate    string           `json:"savingsRate"`
	CategoryTotals []shapedCategory `json:"categoryTotals"`
	PeriodStart    string           `json:"periodStart,omitempty"`
	AsOf           string           `json:"asOf,omitempty"`
}

type promptData struct {
	Summary      shapedSummary       `json:"summary"`
	Transactions []shapedTransaction `json:"transactions"`
}

// shapeTransactions keeps the n most recent valid records, newest first with
// ties broken by ID, and drops every field the provider does not need.
func shapeTransactions(txs []domain.TransactionRecord, n int) []shapedTransaction {
	valid := make([]domain.TransactionRecord, 0, len(txs))
	for _, tx := range txs {
		if tx.Validate() == nil {
			valid = append(valid, tx)
		}
	}
	sort.SliceStable(valid, func(i, j int) bool {
		if valid[i].OccurredOn != valid[j].OccurredOn {
			return valid[j].OccurredOn.Before(valid[i].OccurredOn)
		}
		return valid[i].ID < valid[j].ID
	})
	if len(valid) > n {
		valid = valid[:n]
	}

	out := make([]shapedTransaction, 0, len(valid))
	for _, tx := range valid {
		out = append(out, shapedTransaction{
			Date:     tx.OccurredOn.String(),
			Kind:     string(tx.Kind),
			Category: string(tx.Category),
			Amount:   tx.Amount.StringFixed(2),
		})
	}
	return out
}

func shapeSummary(s insight.MetricsSummary) shapedSummary {
	out := shapedSummary{
		TotalIncome:    s.TotalIncome.StringFixed(2),
		TotalExpense:   s.TotalExpense.StringFixed(2),
		NetBalance:     s.NetBalance.StringFixed(2),
		SavingsRate:    insight.FormatPercent(s.SavingsRate),
		CategoryTotals: make([]shapedCategory, 0, len(s.CategoryTotals)),
	}
	for _, ct := range s.CategoryTotals {
		out.CategoryTotals = append(out.CategoryTotals, shapedCategory{
			Category: string(ct.Category),
			Amount:   ct.Amount.StringFixed(2),
		})
	}
	if s.PeriodDays > 0 {
		out.PeriodStart = s.PeriodStart.String()
		out.AsOf = s.AsOf.String()
	}
	return out
}

func (c *Client) buildRequest(txs []domain.TransactionRecord, summary insight.MetricsSummary) (Request, error) {
	data, err := json.Marshal(promptData{
		Summary:      shapeSummary(summary),
		Transactions: shapeTransactions(txs, c.maxTransactions),
	})
	if err != nil {
		return Request{}, err
	}
	return Request{
		Instruction: fmt.Sprintf(instructionPrompt, c.currencySymbol),
		Data:        data,
		Schema:      InsightSchema,
	}, nil
}
