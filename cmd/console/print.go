package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/heartmarshall/solarsite/internal/domain"
	"github.com/heartmarshall/solarsite/internal/service/calculator"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func printProjects(w io.Writer, ps []domain.Project) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTITLE\tKW\tCITY\tSTATUS\tTAGS")
	for _, p := range ps {
		fmt.Fprintf(tw, "%s\t%s\t%g\t%s\t%s\t%s\n",
			p.ID, p.Title, p.CapacityKW, p.City, p.Status, strings.Join(p.Tags, ","))
	}
	tw.Flush()
}

func printReviews(w io.Writer, rs []domain.Review) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tREVIEWER\tRATING\tAPPROVED\tPROJECT\tCOMMENT")
	for _, r := range rs {
		project := ""
		if r.Project != nil {
			project = r.Project.Title
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%t\t%s\t%s\n",
			r.ID, r.ReviewerName, r.Rating, r.IsApproved, project, truncate(r.Comment, 40))
	}
	tw.Flush()
}

func printInquiries(w io.Writer, is []domain.Inquiry) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tSTATUS\tPROJECT\tRECEIVED")
	for _, i := range is {
		project := ""
		if i.Project != nil {
			project = i.Project.Title
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			i.ID, i.Name, i.Email, i.Status, project, i.CreatedAt.Format("2006-01-02 15:04"))
	}
	tw.Flush()
}

func printSettings(w io.Writer, s domain.Settings) {
	tw := newTable(w)
	rows := [][2]string{
		{"company", s.CompanyName},
		{"email", s.Email},
		{"phone", s.Phone},
		{"address", s.Address},
		{"whatsapp", s.WhatsApp},
		{"kwh per kW per month", formatFloat(s.KWhPerKWPerMonth)},
		{"tariff per kWh", formatFloat(s.TariffPerKWh)},
		{"system cost per kW", formatFloat(s.SystemCostPerKW)},
		{"subsidy %", formatFloat(s.SubsidyPercentage)},
		{"maintenance per kW/year", formatFloat(s.MaintenanceCostPerKWYear)},
		{"updated", s.UpdatedAt.Format("2006-01-02 15:04:05")},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r[0], r[1])
	}
	tw.Flush()
}

func printStats(w io.Writer, s domain.DashboardStats) {
	tw := newTable(w)
	fmt.Fprintf(tw, "projects\t%d\n", s.TotalProjects)
	fmt.Fprintf(tw, "total capacity (kW)\t%s\n", formatFloat(s.TotalCapacity))
	fmt.Fprintf(tw, "inquiries\t%d\n", s.TotalInquiries)
	fmt.Fprintf(tw, "pending inquiries\t%d\n", s.PendingInquiries)
	fmt.Fprintf(tw, "approved reviews\t%d\n", s.ApprovedReviews)
	fmt.Fprintf(tw, "pending reviews\t%d\n", s.PendingReviews)
	tw.Flush()
}

func printResults(w io.Writer, r calculator.Results) {
	payback := "never"
	if r.PaybackReachable && !math.IsInf(r.PaybackPeriodYears, 0) {
		payback = fmt.Sprintf("%.1f years", r.PaybackPeriodYears)
	}

	tw := newTable(w)
	fmt.Fprintf(tw, "monthly energy (kWh)\t%.1f\n", r.MonthlyEnergyKWh)
	fmt.Fprintf(tw, "monthly cost\t%.2f\n", r.MonthlyCost)
	fmt.Fprintf(tw, "recommended system (kW)\t%g\n", r.RecommendedSystemKW)
	fmt.Fprintf(tw, "system cost\t%.2f\n", r.SystemCost)
	fmt.Fprintf(tw, "subsidy\t%.2f\n", r.Subsidy)
	fmt.Fprintf(tw, "net cost\t%.2f\n", r.NetCost)
	fmt.Fprintf(tw, "monthly savings\t%.2f\n", r.MonthlySavings)
	fmt.Fprintf(tw, "savings share\t%.0f%%\n", r.SavingsPercentage)
	fmt.Fprintf(tw, "payback\t%s\n", payback)
	fmt.Fprintf(tw, "net savings over %d years\t%.2f\n", calculator.LifetimeYears, r.NetLifetimeSavings)
	fmt.Fprintf(tw, "CO2 avoided (kg)\t%.0f\n", r.CO2ReductionKg)
	tw.Flush()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// optString registers a flag that sets *dst only when given.
func optString(fs *flag.FlagSet, dst **string, name, usage string) {
	fs.Func(name, usage, func(v string) error {
		*dst = &v
		return nil
	})
}

func optFloat(fs *flag.FlagSet, dst **float64, name, usage string) {
	fs.Func(name, usage, func(v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*dst = &f
		return nil
	})
}
