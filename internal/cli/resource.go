package cli

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/eh7/edx-enterprise/degreed"
)

func newResourceCmd(a *app, kind degreed.ResourceKind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(kind),
		Short: fmt.Sprintf("Create or delete %s records on Degreed", kind),
	}
	cmd.AddCommand(
		newResourceActionCmd(a, kind, http.MethodPost, "create"),
		newResourceActionCmd(a, kind, http.MethodDelete, "delete"),
	)
	return cmd
}

func newResourceActionCmd(a *app, kind degreed.ResourceKind, method, use string) *cobra.Command {
	var customer, file, user string

	cmd := &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Send a %s %s payload", method, kind),
		Args:  cobra.NoArgs,
		RunE: a.runE(func(cmd *cobra.Command, _ []string) error {
			payload, err := readPayload(cmd, file)
			if err != nil {
				return err
			}

			cfg, err := a.store.DegreedConfiguration(customer)
			if err != nil {
				return err
			}
			client, err := cfg.NewClient(cmd.Context())
			if err != nil {
				return err
			}

			result, err := send(cmd, client, kind, method, user, payload)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d %s\n", result.StatusCode, result.Body)
			if !result.OK() {
				return fmt.Errorf("degreed answered %s %s with status %d", method, kind, result.StatusCode)
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&customer, "customer", "", "Enterprise customer UUID")
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON payload file, - for stdin")
	_ = cmd.MarkFlagRequired("customer")
	_ = cmd.MarkFlagRequired("file")
	if kind == degreed.KindCompletion {
		cmd.Flags().StringVar(&user, "user", "", "Learner the completion belongs to")
	}

	return cmd
}

func send(cmd *cobra.Command, client *degreed.Client, kind degreed.ResourceKind, method, user string, payload []byte) (degreed.Result, error) {
	ctx := cmd.Context()
	switch {
	case kind == degreed.KindCompletion && method == http.MethodPost:
		return client.CreateCourseCompletion(ctx, user, payload)
	case kind == degreed.KindCompletion:
		return client.DeleteCourseCompletion(ctx, user, payload)
	case method == http.MethodPost:
		return client.CreateCourseContent(ctx, payload)
	default:
		return client.DeleteCourseContent(ctx, payload)
	}
}

func readPayload(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading payload from stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading payload: %w", err)
	}
	return data, nil
}
