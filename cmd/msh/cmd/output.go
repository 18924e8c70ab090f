package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/vieirasantos/meli-seller-hub/pkg/format"
	domain "github.com/vieirasantos/meli-seller-hub/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printAccountTable(accounts []domain.Account) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID\tNICKNAME\tSTATUS\tREPUTATION\tSALES\tPRODUCTS\tAUTO-SYNC\tLAST SYNC\n")
	for i := range accounts {
		a := &accounts[i]
		lastSync := a.LastSync
		if lastSync == "" {
			lastSync = "-"
		}
		tw.writef("%s\t%s\t%s\t%d\t%s\t%s\t%v\t%s\n",
			a.ID,
			a.Nickname,
			format.StatusText(string(a.Status)),
			a.Reputation,
			format.Number(a.Sales),
			format.Number(a.Products),
			a.AutoSync,
			lastSync,
		)
	}
	return tw.finish()
}

func printAccountDetail(a *domain.Account) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID:\t%s\n", a.ID)
	tw.writef("Nickname:\t%s\n", a.Nickname)
	tw.writef("Email:\t%s\n", a.Email)
	tw.writef("Status:\t%s\n", format.StatusText(string(a.Status)))
	tw.writef("Reputation:\t%d\n", a.Reputation)
	tw.writef("Sales:\t%s\n", format.Number(a.Sales))
	tw.writef("Products:\t%s\n", format.Number(a.Products))
	tw.writef("Auto-sync:\t%v\n", a.AutoSync)
	if a.LastSync != "" {
		tw.writef("Last Sync:\t%s\n", a.LastSync)
	}
	tw.writef("Linked:\t%s\n", a.CreatedAt.Format("2006-01-02 15:04:05"))
	return tw.finish()
}

func printProductTable(products []domain.Product, total int) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ITEM\tTITLE\tPRICE\tSTOCK\tSTATUS\tSALES\tACCOUNT\n")
	for i := range products {
		p := &products[i]
		tw.writef("%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			p.ID,
			truncate(p.Title, 40),
			format.Currency(p.Price),
			p.Stock,
			format.StatusText(string(p.Status)),
			format.Number(p.Sales),
			p.Account,
		)
	}
	if err := tw.finish(); err != nil {
		return err
	}
	if total > len(products) {
		fmt.Printf("Showing %d of %s products.\n", len(products), format.Number(total))
	}
	return nil
}

func printProductDetail(p *domain.Product) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("Item:\t%s\n", p.ID)
	tw.writef("Title:\t%s\n", p.Title)
	tw.writef("Price:\t%s\n", format.Currency(p.Price))
	tw.writef("Stock:\t%d\n", p.Stock)
	tw.writef("Status:\t%s\n", format.StatusText(string(p.Status)))
	tw.writef("Sales:\t%s\n", format.Number(p.Sales))
	tw.writef("Views:\t%s\n", format.Number(p.Views))
	tw.writef("Account:\t%s\n", p.Account)
	if p.Category != "" {
		tw.writef("Category:\t%s\n", p.Category)
	}
	return tw.finish()
}

func printRunTable(runs []domain.SyncRun) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("RUN\tACCOUNT\tTRIGGER\tPROFILE\tPRODUCTS\tSTATS\tSTARTED\tFINISHED\n")
	for i := range runs {
		r := &runs[i]
		finished := "-"
		if r.FinishedAt != nil {
			finished = r.FinishedAt.Format("2006-01-02 15:04:05")
		}
		tw.writef("%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.AccountID,
			r.Trigger,
			r.Profile,
			r.ProductsPart,
			r.StatsPart,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			finished,
		)
	}
	return tw.finish()
}

func printRunDetail(r *domain.SyncRun) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("Run:\t%s\n", r.ID)
	tw.writef("Account:\t%s\n", r.AccountID)
	tw.writef("Trigger:\t%s\n", r.Trigger)
	tw.writef("Profile:\t%s\n", r.Profile)
	tw.writef("Products:\t%s\n", r.ProductsPart)
	if r.ProductsReason != "" {
		tw.writef("Products Reason:\t%s\n", r.ProductsReason)
	}
	tw.writef("Stats:\t%s\n", r.StatsPart)
	if r.StatsReason != "" {
		tw.writef("Stats Reason:\t%s\n", r.StatsReason)
	}
	if r.Error != "" {
		tw.writef("Error:\t%s\n", r.Error)
	}
	tw.writef("Started:\t%s\n", r.StartedAt.Format("2006-01-02 15:04:05"))
	if r.FinishedAt != nil {
		tw.writef("Finished:\t%s\n", r.FinishedAt.Format("2006-01-02 15:04:05"))
	}
	return tw.finish()
}

func printUserTable(users []domain.User) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID\tUSERNAME\tROLE\tCREATED\n")
	for i := range users {
		u := &users[i]
		tw.writef("%s\t%s\t%s\t%s\n",
			u.ID,
			u.Username,
			u.Role,
			u.CreatedAt.Format("2006-01-02"),
		)
	}
	return tw.finish()
}

func printUserDetail(u *domain.User) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID:\t%s\n", u.ID)
	tw.writef("Username:\t%s\n", u.Username)
	tw.writef("Role:\t%s\n", u.Role)
	tw.writef("Dashboard:\t%v\n", u.Permissions.ViewDashboard)
	tw.writef("Accounts:\t%v\n", u.Permissions.ManageAccounts)
	tw.writef("Products:\t%v\n", u.Permissions.ManageProducts)
	tw.writef("Sync:\t%v\n", u.Permissions.ManageSync)
	tw.writef("Analytics:\t%v\n", u.Permissions.ViewAnalytics)
	tw.writef("Users:\t%v\n", u.Permissions.ManageUsers)
	tw.writef("Created:\t%s\n", u.CreatedAt.Format("2006-01-02 15:04:05"))
	return tw.finish()
}

func printSystemState(s *domain.SystemState) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("Accounts:\t%d (%d active)\n", s.Accounts, s.ActiveAccounts)
	tw.writef("Products:\t%s\n", format.Number(s.Products))
	tw.writef("Users:\t%d\n", s.Users)
	tw.writef("Sync Runs:\t%s\n", format.Number(s.SyncRuns))
	if s.LastSyncAt != nil {
		tw.writef("Last Sync:\t%s\n", s.LastSyncAt.Format("2006-01-02 15:04:05"))
	}
	return tw.finish()
}

func printDashboardMetrics(m *domain.DashboardMetrics) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("Total Sales:\t%s\n", format.Number(m.TotalSales))
	tw.writef("Total Products:\t%s\n", format.Number(m.TotalProducts))
	tw.writef("Total Views:\t%s\n", format.Number(m.TotalViews))
	tw.writef("Total Revenue:\t%s\n", format.Currency(m.TotalRevenue))
	tw.writef("Average Ticket:\t%s\n", format.Currency(m.AverageTicket))
	tw.writef("Conversion Rate:\t%.2f%%\n", m.ConversionRate)
	return tw.finish()
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
