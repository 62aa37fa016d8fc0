package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/wagiedev/wstools-go/internal/tool"
)

// DefaultHTTPURL is the HTTP base URL of a local server with default settings.
const DefaultHTTPURL = "http://localhost:8765"

// NewToolsCommand builds "wstools tools".
func NewToolsCommand() *cobra.Command {
	var (
		url     string
		asJSON  bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools of a running server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			infos, err := fetchTools(ctx, url)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")

				return enc.Encode(infos)
			}

			return printTools(cmd, infos)
		},
	}

	cmd.Flags().StringVar(&url, "url", DefaultHTTPURL, "HTTP base URL of the server")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw listing as JSON")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Give up after this long")

	return cmd
}

func fetchTools(ctx context.Context, baseURL string) ([]tool.Info, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(baseURL, "/")+"/tools", nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list tools: server returned %s", resp.Status)
	}

	var infos []tool.Info
	if err := json.NewDecoder(resp.Body).Decode(&infos); err != nil {
		return nil, fmt.Errorf("decode tool listing: %w", err)
	}

	return infos, nil
}

func printTools(cmd *cobra.Command, infos []tool.Info) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "NAME\tPARAMETERS\tDESCRIPTION")

	for _, info := range infos {
		params := make([]string, len(info.Parameters))

		for i, p := range info.Parameters {
			params[i] = fmt.Sprintf("%s:%s", p.Name, p.Type)

			switch {
			case p.Required:
			case p.HasDefault:
				def, _ := json.Marshal(p.Default)
				params[i] += "=" + string(def)
			default:
				params[i] += "?"
			}
		}

		fmt.Fprintf(w, "%s\t%s\t%s\n", info.Name, strings.Join(params, " "), info.Description)
	}

	return w.Flush()
}
