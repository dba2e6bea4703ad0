package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"fintrack/internal/aggregate"
	"fintrack/internal/budget"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/log"
	"fintrack/internal/monthkey"
	"fintrack/internal/shell"
)

type app struct {
	cfg     *config.Config
	logger  *log.Logger
	shell   *shell.Shell
	budgets *budget.Store
	in      *bufio.Scanner
	out     io.Writer
}

// authScreen handles login and registration until a session exists.
func (a *app) authScreen(ctx context.Context) error {
	fmt.Fprintln(a.out, "\nPersonal Finance Tracker")
	fmt.Fprintln(a.out, "  login     sign in to an existing account")
	fmt.Fprintln(a.out, "  register  create a new account")
	fmt.Fprintln(a.out, "  quit      exit")

	cmd, err := a.readLine("> ")
	if err != nil {
		return mapEOF(err)
	}

	switch cmd {
	case "login":
		return a.login(ctx)
	case "register":
		return a.register(ctx)
	case "quit", "exit":
		return errQuit
	case "":
		return nil
	default:
		fmt.Fprintf(a.out, "unknown command %q\n", cmd)
		return nil
	}
}

func (a *app) login(ctx context.Context) error {
	email, err := a.readLine("email: ")
	if err != nil {
		return mapEOF(err)
	}
	password, err := a.readPassword("password: ")
	if err != nil {
		return mapEOF(err)
	}
	if err := a.shell.Login(ctx, email, password); err != nil {
		fmt.Fprintf(a.out, "login failed: %v\n", err)
		return nil
	}
	fmt.Fprintf(a.out, "welcome back, %s\n", a.shell.User().FirstName)
	return nil
}

func (a *app) register(ctx context.Context) error {
	var reg core.Registration
	var err error
	if reg.Email, err = a.readLine("email: "); err != nil {
		return mapEOF(err)
	}
	if reg.FirstName, err = a.readLine("first name: "); err != nil {
		return mapEOF(err)
	}
	if reg.LastName, err = a.readLine("last name: "); err != nil {
		return mapEOF(err)
	}
	if reg.Password, err = a.readPassword("password: "); err != nil {
		return mapEOF(err)
	}
	if reg.ConfirmPassword, err = a.readPassword("confirm password: "); err != nil {
		return mapEOF(err)
	}
	if err := a.shell.Register(ctx, reg); err != nil {
		fmt.Fprintf(a.out, "registration failed: %v\n", err)
		return nil
	}
	fmt.Fprintf(a.out, "account created for %s\n", a.shell.User().Email)
	return nil
}

// dashboard is the authenticated command loop. It returns when the user
// quits or logs out.
func (a *app) dashboard(ctx context.Context) error {
	for a.shell.CurrentState() == shell.StateAuthenticated {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if msg := a.shell.LastError(); msg != "" {
			fmt.Fprintf(a.out, "! %s (dismissed)\n", msg)
			a.shell.DismissError()
		}

		line, err := a.readLine(fmt.Sprintf("[%s] > ", a.shell.Month().Label()))
		if err != nil {
			return mapEOF(err)
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "help":
			a.printHelp()
		case "list":
			a.printTransactions()
		case "add":
			a.addTransaction(ctx, fields[1:])
		case "del":
			if len(fields) != 2 {
				fmt.Fprintln(a.out, "usage: del <id>")
				continue
			}
			if err := a.shell.DeleteTransaction(ctx, fields[1]); err != nil {
				fmt.Fprintf(a.out, "delete failed: %v\n", err)
			}
		case "summary":
			a.printSummary()
		case "chart":
			a.printChart()
		case "months":
			a.printMonths()
		case "month":
			if len(fields) != 2 {
				fmt.Fprintln(a.out, "usage: month <YYYY-MM>")
				continue
			}
			key, err := monthkey.Parse(fields[1])
			if err != nil {
				fmt.Fprintf(a.out, "bad month: %v\n", err)
				continue
			}
			a.shell.SelectMonth(ctx, key)
		case "today":
			a.shell.JumpToCurrentMonth(ctx)
		case "refresh":
			a.shell.Refresh(ctx)
		case "budget":
			a.budgetScreen(fields[1:])
		case "export":
			a.exportData(ctx, fields[1:])
		case "logout":
			if err := a.shell.Logout(); err != nil {
				fmt.Fprintf(a.out, "logout failed: %v\n", err)
			}
			return nil
		case "quit", "exit":
			return errQuit
		default:
			fmt.Fprintf(a.out, "unknown command %q (try help)\n", fields[0])
		}
	}
	return nil
}

func (a *app) printHelp() {
	fmt.Fprint(a.out, `commands:
  list                     transactions for the selected month
  add <amount> <income|expense> <category> [description]
  del <id>                 delete a transaction
  summary                  month income/expenses/balance
  chart                    12-month overview and category breakdowns
  months                   months with data, newest first
  month <YYYY-MM>          switch to a month
  today                    jump back to the current month
  refresh                  re-fetch from the server
  budget [edit]            view or edit monthly budgets
  export json|csv [file]   export data (csv covers the selected month)
  export sheets            append the selected month to Google Sheets
  logout                   sign out
  quit                     exit
`)
}

func (a *app) printTransactions() {
	txs := a.shell.Transactions()
	if len(txs) == 0 {
		fmt.Fprintln(a.out, "no transactions yet, add your first one")
		return
	}
	sorted := make([]core.Transaction, len(txs))
	copy(sorted, txs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].TransactionDate.After(sorted[j].TransactionDate)
	})
	for _, tx := range sorted {
		sign := "-"
		if tx.Type.IsIncome() {
			sign = "+"
		}
		fmt.Fprintf(a.out, "  %-12s %s%-10s %-14s %-10s %s\n",
			tx.ID, sign, tx.Amount, tx.NormalizedCategory(),
			tx.TransactionDate.Format("Jan 02 15:04"), tx.Description)
	}
}

func (a *app) addTransaction(ctx context.Context, args []string) {
	if len(args) < 3 {
		fmt.Fprintln(a.out, "usage: add <amount> <income|expense> <category> [description]")
		return
	}
	// Zero fallback on a bad amount is rejected below by validation.
	amount := core.ParseAmount(args[0])
	input := core.Transaction{
		Amount:      amount,
		Type:        core.TransactionType(args[1]),
		Category:    strings.ToLower(args[2]),
		Description: strings.Join(args[3:], " "),
	}
	created, err := a.shell.AddTransaction(ctx, input)
	if err != nil {
		fmt.Fprintf(a.out, "add failed: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "added %s (%s %s)\n", created.ID, created.Type, created.Amount)
}

func (a *app) printSummary() {
	s := aggregate.Summarize(a.shell.Transactions())
	fmt.Fprintf(a.out, "  income   %10s\n", s.Income)
	fmt.Fprintf(a.out, "  expenses %10s\n", s.Expenses)
	fmt.Fprintf(a.out, "  balance  %10s\n", s.Balance)
	fmt.Fprintf(a.out, "  count    %10d\n", s.Count)
}

func (a *app) printChart() {
	txs := a.shell.Transactions()
	year := time.Now().Year()

	fmt.Fprintf(a.out, "%d monthly overview\n", year)
	for _, p := range aggregate.YearlySeries(txs, year) {
		fmt.Fprintf(a.out, "  %-4s income %10s  expenses %10s  balance %10s\n",
			p.Name, p.Income, p.Expenses, p.Balance)
	}

	for _, typ := range []core.TransactionType{core.Expense, core.Income} {
		breakdown := aggregate.CategoryBreakdown(txs, typ)
		if len(breakdown) == 0 {
			continue
		}
		fmt.Fprintf(a.out, "%s by category (%s)\n", typ, a.shell.Month().Label())
		for _, c := range breakdown {
			fmt.Fprintf(a.out, "  %-16s %10s\n", c.Name, c.Value)
		}
	}

	totals := aggregate.YearlyTotals(txs, year)
	fmt.Fprintf(a.out, "%d totals: income %s, expenses %s, balance %s\n",
		year, totals.TotalIncome, totals.TotalExpenses, totals.Balance)
}

func (a *app) printMonths() {
	months := aggregate.DistinctMonths(a.shell.Transactions())
	if len(months) == 0 {
		fmt.Fprintln(a.out, "no months with data")
		return
	}
	for _, m := range months {
		fmt.Fprintf(a.out, "  %s  %s\n", m, m.Label())
	}
}

func mapEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return errQuit
	}
	return err
}

func (a *app) exportData(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "usage: export json|csv [file] | export sheets")
		return
	}
	txs := a.shell.Transactions()

	switch args[0] {
	case "json":
		w, closeFn, err := a.exportTarget(args, fmt.Sprintf("finance-data-%s-%s.json",
			a.shell.User().UserID, time.Now().Format("2006-01-02")))
		if err != nil {
			fmt.Fprintf(a.out, "export failed: %v\n", err)
			return
		}
		defer closeFn()
		if err := export.JSON(w, txs); err != nil {
			fmt.Fprintf(a.out, "export failed: %v\n", err)
		}
	case "csv":
		w, closeFn, err := a.exportTarget(args, fmt.Sprintf("transactions-%s.csv", a.shell.Month()))
		if err != nil {
			fmt.Fprintf(a.out, "export failed: %v\n", err)
			return
		}
		defer closeFn()
		if err := export.CSV(w, txs); err != nil {
			fmt.Fprintf(a.out, "export failed: %v\n", err)
		}
	case "sheets":
		if !a.cfg.SheetsConfigured() {
			fmt.Fprintln(a.out, "sheets export not configured (set GOOGLE_SPREADSHEET_ID)")
			return
		}
		exporter, err := export.NewSheets(ctx, a.cfg, a.logger)
		if err != nil {
			fmt.Fprintf(a.out, "sheets export failed: %v\n", err)
			return
		}
		if err := exporter.Append(ctx, txs); err != nil {
			fmt.Fprintf(a.out, "sheets export failed: %v\n", err)
			return
		}
		fmt.Fprintf(a.out, "appended %d transactions to %s\n", len(txs), a.cfg.GoogleSheetName)
	default:
		fmt.Fprintln(a.out, "usage: export json|csv [file] | export sheets")
	}
}

// exportTarget opens the output file, defaulting to a generated name in
// the working directory.
func (a *app) exportTarget(args []string, defaultName string) (io.Writer, func(), error) {
	name := defaultName
	if len(args) > 1 {
		name = args[1]
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, nil, err
	}
	return f, func() {
		f.Close()
		fmt.Fprintf(a.out, "wrote %s\n", name)
	}, nil
}
