// Package task holds the commands that manage the stored backlog.
package task

import (
	"github.com/spf13/cobra"
)

// Cmd is the task command group
var Cmd = &cobra.Command{
	Use:   "task",
	Short: "Manage the stored backlog",
	Long: `Add, list, remove and import the tasks kept in the local store.
Analyze them with "taskrank analyze --stored".`,
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(removeCmd)
	Cmd.AddCommand(importCmd)
}
