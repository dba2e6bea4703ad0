package main

import (
	"fmt"

	"fintrack/internal/budget"
	"fintrack/internal/core"
)

// budgetScreen shows the persisted snapshot or runs a draft edit session.
// During an edit, only the scratch copy changes; the stored snapshot is
// replaced on save and untouched on cancel.
func (a *app) budgetScreen(args []string) {
	userID := a.shell.User().UserID

	snap, err := a.budgets.Load(userID)
	if err != nil {
		fmt.Fprintf(a.out, "load budgets failed: %v\n", err)
		return
	}

	if len(args) == 0 {
		a.printBudgets(snap)
		return
	}
	if args[0] != "edit" {
		fmt.Fprintln(a.out, "usage: budget [edit]")
		return
	}

	draft := budget.Begin(snap)
	fmt.Fprintln(a.out, "editing budgets: set <category> <amount>, bump <category> <amount>, save, cancel")
	for {
		line, err := a.readLine("budget> ")
		if err != nil {
			fmt.Fprintln(a.out, "edit cancelled")
			return
		}
		var cmd, cat, amt string
		n, _ := fmt.Sscan(line, &cmd, &cat, &amt)
		switch {
		case cmd == "save" && n == 1:
			if err := a.budgets.Save(userID, draft.Commit()); err != nil {
				fmt.Fprintf(a.out, "save failed: %v\n", err)
				return
			}
			fmt.Fprintln(a.out, "budgets saved")
			return
		case cmd == "cancel" && n == 1:
			fmt.Fprintln(a.out, "edit cancelled")
			return
		case cmd == "set" && n == 3:
			// An unparseable amount becomes zero, deactivating the category.
			draft.Set(cat, core.ParseAmount(amt))
			fmt.Fprintf(a.out, "  %s -> %s\n", cat, draft.Limit(cat))
		case cmd == "bump" && n == 3:
			draft.Increment(cat, core.ParseAmount(amt))
			fmt.Fprintf(a.out, "  %s -> %s\n", cat, draft.Limit(cat))
		default:
			fmt.Fprintln(a.out, "set <category> <amount> | bump <category> <amount> | save | cancel")
		}
	}
}

func (a *app) printBudgets(snap budget.Snapshot) {
	fmt.Fprintf(a.out, "monthly budget (total %s)\n", snap.Total())
	for _, c := range budget.Categories {
		fmt.Fprintf(a.out, "  %-12s %-18s %10s\n", c.ID, c.Name, snap.Limit(c.ID))
	}
}
