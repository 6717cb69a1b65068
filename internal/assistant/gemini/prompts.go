package gemini

import (
	"fmt"
	"strings"

	"milkround/internal/assistant"
	"milkround/internal/core"
)

func messagePrompt(req assistant.MessageRequest) string {
	return fmt.Sprintf(`Write a polite, short and professional WhatsApp message from a milk delivery service to a customer named %s.

Details:
- Month: %s
- Total bill amount: %s
- Due date: %s
- Payment method: UPI or Cash

Keep the tone friendly but professional. Include a placeholder for the UPI ID. Do not include a subject line.`,
		req.Customer.Name, req.Month, req.TotalDue.String(), req.DueDate)
}

func routePrompt(customers []core.Customer) string {
	var b strings.Builder
	b.WriteString("I deliver milk to the addresses below. Reorder them into an efficient visiting sequence that groups nearby addresses.\n\nAddresses:\n")
	for _, c := range customers {
		fmt.Fprintf(&b, "%s: %s\n", c.Name, c.Address)
	}
	b.WriteString("\nReturn ONLY a JSON array of the customer names in the suggested order, for example [\"Name 1\", \"Name 2\"].")
	return b.String()
}

func insightPrompt(req assistant.InsightRequest) string {
	return fmt.Sprintf(`As a business analyst for a local milk delivery business, give 3 short bulleted tips to improve profitability based on today's figures:
- Milk delivered: %s litres
- Estimated revenue: %s
- Active customers: %d

Keep each bullet under 50 words.`,
		req.TotalQuantity.String(), req.TotalRevenue.String(), req.CustomerCount)
}
