package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

const currency = "DKK"

// Print writes the human readable summary.
func Print(w io.Writer, s *Summary, store string) {
	r := lipgloss.NewRenderer(w)
	titleStyle := r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")) // blue
	valueStyle := r.NewStyle().Bold(true).Foreground(lipgloss.Color("10")) // green
	productStyle := r.NewStyle().Foreground(lipgloss.Color("11"))          // yellow
	mutedStyle := r.NewStyle().Foreground(lipgloss.Color("8"))             // gray

	fmt.Fprintln(w, titleStyle.Render("------ Welcome to nettou ------"))
	fmt.Fprintf(w, "Processed %d emails from %s\n\n", s.Trips, store)

	fmt.Fprintf(w, "You have in total (%s) spent,\n", currency)
	fmt.Fprintln(w, valueStyle.Render(s.Total.StringFixed(2)))

	fmt.Fprintf(w, "\nOn average you spend %s %s per shopping trip %s\n",
		valueStyle.Render(fmt.Sprintf("%.2f", s.TripMean)),
		currency,
		mutedStyle.Render(fmt.Sprintf("(std. dev. %.2f)", s.TripStdDev)))

	fmt.Fprintln(w, "\nYour most purchased product is,")
	fmt.Fprintln(w, productLine(productStyle, s.MostPurchased))

	fmt.Fprintln(w, "\nYour most expensive product is,")
	fmt.Fprintln(w, productLine(productStyle, s.MostExpensive))
}

// PrintProducts writes one line per product with its cumulative amount and spend.
func PrintProducts(w io.Writer, s *Summary) {
	r := lipgloss.NewRenderer(w)
	productStyle := r.NewStyle().Foreground(lipgloss.Color("11"))
	for _, p := range s.Products {
		fmt.Fprintln(w, productLine(productStyle, p))
	}
}

func productLine(style lipgloss.Style, p ProductTotal) string {
	return fmt.Sprintf("%s | %4d stk | %10s %s", style.Render(fmt.Sprintf("%-30s", p.Product)), p.Amount, p.Price.StringFixed(2), currency)
}

// WriteYAML writes the summary in machine readable form.
func WriteYAML(w io.Writer, s *Summary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	return enc.Close()
}
