package commands

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func NewShellCommand(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session sharing one connection across commands",
		Long: `Start an interactive session. A connection opened with 'connect'
stays current for every following 'status' and 'invoke' until the
session ends or a later connect replaces it.

Type 'exit' or press Ctrl-D to leave.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			scanner := bufio.NewScanner(cmd.InOrStdin())

			fmt.Fprintln(out, "sitectl shell - 'exit' to leave")
			for {
				fmt.Fprint(out, "sitectl> ")
				if !scanner.Scan() {
					fmt.Fprintln(out)
					return scanner.Err()
				}

				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					return nil
				}

				shellCmd := newShellRoot(rt)
				shellCmd.SetArgs(strings.Fields(line))
				shellCmd.SetOut(out)
				shellCmd.SetErr(cmd.ErrOrStderr())
				shellCmd.SetContext(cmd.Context())
				if err := shellCmd.Execute(); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				}
			}
		},
	}
}

// newShellRoot builds the command set available inside a shell session.
// The commands share the runtime, so the connection slot carries over
// between lines.
func newShellRoot(rt *Runtime) *cobra.Command {
	root := &cobra.Command{
		Use:           "sitectl",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		NewConnectCommand(rt),
		NewStatusCommand(rt),
		NewInvokeCommand(rt),
		NewSitesCommand(rt),
	)
	return root
}
