package status

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"media-transcriber/cmd/transcriber/cmd/shared"
	"media-transcriber/internal/api/v1/dto"
	"media-transcriber/internal/api/v1/services"
)

var (
	initialize bool
	asJSON     bool
)

func init() {
	Cmd.Flags().BoolVar(&initialize, "init", false, "initialize every registered provider before reporting")
	Cmd.Flags().BoolVar(&asJSON, "json", false, "print the full status maps as JSON")
}

// Cmd represents the status command
var Cmd = &cobra.Command{
	Use:   "status",
	Short: "Show the registered providers and the fallback chain",
	Long: `Show the registered providers and the fallback chain

- Providers are listed in registration order with their chain role
- --init runs each provider's initialization, which may load models or contact remote servers`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := shared.LoadApplication()
		if err != nil {
			return err
		}
		defer shared.CloseApplication(a)

		ctx, cancel := shared.SignalContext()
		defer cancel()
		return Run(ctx, shared.Services(a).ProviderService, initialize, asJSON, cmd.OutOrStdout())
	},
}

// Run prints the provider list, initializing every provider first when initAll
// is set.
func Run(ctx context.Context, svc services.ProviderService, initAll bool, asJSON bool, out io.Writer) error {
	list, err := svc.ListProviders(ctx)
	if err != nil {
		return err
	}

	if initAll {
		for _, p := range list.Providers {
			if _, err := svc.InitializeProvider(ctx, p.Name); err != nil {
				return err
			}
		}
		if list, err = svc.ListProviders(ctx); err != nil {
			return err
		}
	}

	if asJSON {
		return shared.PrintJSON(out, list)
	}
	return printTable(out, list)
}

func printTable(out io.Writer, list *dto.ProviderListResponse) error {
	routing := list.Routing
	fmt.Fprintf(out, "Chain:     %s\n", strings.Join(routing.Chain(), " -> "))
	fmt.Fprintf(out, "Threshold: %.2f\n\n", routing.ConfidenceThreshold)

	if len(list.Providers) == 0 {
		fmt.Fprintln(out, "No providers registered.")
		return nil
	}

	rows := make([][]string, 0, len(list.Providers))
	for _, p := range list.Providers {
		rows = append(rows, []string{p.Name, p.Type, p.Role, strconv.FormatBool(p.Initialized), strconv.Itoa(p.CacheSize)})
	}
	_, err := fmt.Fprintln(out, shared.RenderTable(
		[]string{"Name", "Type", "Role", "Initialized", "Cached"},
		rows,
		[]shared.ColumnAlignment{shared.AlignLeft, shared.AlignLeft, shared.AlignLeft, shared.AlignLeft, shared.AlignRight}))
	return err
}
