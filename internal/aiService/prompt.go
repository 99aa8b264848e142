package ai

import (
	"fmt"
	"strings"
)

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// sellerPrompt describes the listing and how the seller should reply
func sellerPrompt(a AuctionSnapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, selling an item on an online auction marketplace in New Zealand.\n\n", orDefault(a.SellerName, "the seller"))

	b.WriteString("Listing:\n")
	fmt.Fprintf(&b, "- Title: %s\n", a.Title)
	fmt.Fprintf(&b, "- Description: %s\n", a.Description)
	fmt.Fprintf(&b, "- Category: %s\n", a.Category)
	fmt.Fprintf(&b, "- Condition: %s\n", orDefault(a.Condition, "Not specified"))
	fmt.Fprintf(&b, "- Colour: %s\n", orDefault(a.Colour, "Not specified"))
	fmt.Fprintf(&b, "- Location: %s\n", a.Location)

	b.WriteString("\nPricing:\n")
	fmt.Fprintf(&b, "- Starting price: %s\n", money(a.StartPrice))
	if a.BuyNowPrice > 0 {
		fmt.Fprintf(&b, "- Buy now: %s\n", money(a.BuyNowPrice))
	}
	if a.CurrentBid > 0 {
		fmt.Fprintf(&b, "- Current bid: %s (%d bids)\n", money(a.CurrentBid), a.BidCount)
	} else {
		b.WriteString("- Current bid: no bids yet\n")
	}
	switch {
	case !a.HasReserve:
		b.WriteString("- Reserve: none\n")
	case a.ReserveMet:
		b.WriteString("- Reserve: met\n")
	default:
		b.WriteString("- Reserve: not yet met\n")
	}

	b.WriteString("\nAuction:\n")
	closing := "Not specified"
	if a.EndDate != nil {
		closing = a.EndDate.UTC().Format("Monday 2 January 2006, 15:04 MST")
	}
	fmt.Fprintf(&b, "- Closes: %s\n", closing)
	fmt.Fprintf(&b, "- Watchers: %d\n", a.WatchersCount)
	fmt.Fprintf(&b, "- Status: %s\n", orDefault(a.Status, "active"))

	shipping := "Contact seller"
	if len(a.ShippingOptions) > 0 {
		parts := make([]string, 0, len(a.ShippingOptions))
		for _, s := range a.ShippingOptions {
			parts = append(parts, fmt.Sprintf("%s: %s", s.Method, money(s.Price)))
		}
		shipping = strings.Join(parts, ", ")
	}
	payment := "Contact seller"
	if len(a.PaymentMethods) > 0 {
		payment = strings.Join(a.PaymentMethods, ", ")
	}
	fmt.Fprintf(&b, "- Shipping: %s\n", shipping)
	fmt.Fprintf(&b, "- Payment: %s\n", payment)

	b.WriteString("\nReply as the seller in one to three friendly, professional sentences. ")
	b.WriteString("Only use the details above and say so politely when something is unknown. ")
	b.WriteString("Never state a reserve amount.")
	return b.String()
}

// conversation renders earlier exchanges oldest first
func conversation(history []QA) string {
	if len(history) == 0 {
		return ""
	}
	entries := make([]string, 0, len(history))
	for _, qa := range history {
		entry := "Buyer: " + qa.Question
		if qa.Answer != "" {
			entry += "\nSeller: " + qa.Answer
		}
		entries = append(entries, entry)
	}
	return "\n\nPrevious conversation:\n" + strings.Join(entries, "\n\n") + "\n"
}

func buildPrompt(a AuctionSnapshot, question string, history []QA) string {
	return sellerPrompt(a) + conversation(history) + "\n\nBuyer's new question: " + question
}
