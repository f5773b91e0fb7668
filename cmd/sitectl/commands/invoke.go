package commands

import (
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	scerrors "github.com/systmms/sitectl/internal/errors"
)

func NewInvokeCommand(rt *Runtime) *cobra.Command {
	var method string

	cmd := &cobra.Command{
		Use:   "invoke <relative-path>",
		Short: "Issue a request through the current connection",
		Long: `Send an authenticated request for a path relative to the connected
site and print the response body to stdout. The request inherits the
connection's retry policy and health gating.

Examples:
  sitectl invoke /_api/web
  sitectl invoke /_api/web/lists --method HEAD`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, ok := rt.Slot.Current()
			if !ok {
				return scerrors.UserError{
					Message:    "Not connected",
					Suggestion: "Run 'sitectl connect <url>' first, or use 'sitectl shell' to keep a connection across commands",
				}
			}

			resp, err := conn.Execute(cmd.Context(), method, args[0])
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode >= http.StatusBadRequest {
				return scerrors.UserError{
					Message:    fmt.Sprintf("Server returned %s for %s", resp.Status, args[0]),
					Suggestion: "Check the path and that your strategy has access to it",
				}
			}

			if _, err := io.Copy(cmd.OutOrStdout(), resp.Body); err != nil {
				return fmt.Errorf("failed to read response body: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&method, "method", "X", http.MethodGet, "HTTP method to use")

	return cmd
}
