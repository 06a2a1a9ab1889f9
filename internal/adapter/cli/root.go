package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"payment_installments/internal/adapter/cli/dto/response"
	"payment_installments/internal/usecase"

	"github.com/spf13/cobra"
)

const defaultTimeout = 30 * time.Second

// App is what a command needs once the backends are up.
type App struct {
	UseCase usecase.IPaymentUseCase
	// Migrate is nil when the storage backend manages its own schema.
	Migrate func(ctx context.Context) error
	Close   func() error
}

// AppFactory builds the App lazily so that `--help` never touches a backend.
type AppFactory func(ctx context.Context) (*App, error)

type runner struct {
	factory AppFactory
	timeout time.Duration
}

// Execute runs paymentctl against the environment-configured backends and
// returns the process exit code.
func Execute() int {
	return Run(context.Background(), os.Args[1:], BuildApp, os.Stdout, os.Stderr)
}

func Run(ctx context.Context, args []string, factory AppFactory, stdout, stderr io.Writer) int {
	root := NewRootCommand(factory)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		log.Printf("[payment][cli] command failed kind=%s err=%v", usecase.KindOf(err), err)
		writeError(stderr, err)
		return 1
	}
	return 0
}

func NewRootCommand(factory AppFactory) *cobra.Command {
	r := &runner{factory: factory}

	root := &cobra.Command{
		Use:           "paymentctl",
		Short:         "Manage payments and their installments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().DurationVar(&r.timeout, "timeout", defaultTimeout, "Deadline for the whole command")

	root.AddCommand(
		r.createCmd(),
		r.getCmd(),
		r.listCmd(),
		r.updateCmd(),
		r.statusCmd(),
		r.installmentCmd(),
		r.deleteCmd(),
		r.cacheCmd(),
		r.migrateCmd(),
	)
	return root
}

// withApp builds the App, runs fn under the command deadline and releases
// the backends afterwards.
func (r *runner) withApp(cmd *cobra.Command, fn func(ctx context.Context, app *App) error) error {
	ctx := cmd.Context()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	app, err := r.factory(ctx)
	if err != nil {
		return fmt.Errorf("initialize backends: %w", err)
	}
	if app.Close != nil {
		defer func() {
			if cerr := app.Close(); cerr != nil {
				log.Printf("[payment][cli] close failed err=%v", cerr)
			}
		}()
	}
	return fn(ctx, app)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func errorResponse(err error) response.ErrorResponse {
	kind := string(usecase.KindOf(err))
	if kind == "" {
		kind = "ERROR"
	}
	res := response.ErrorResponse{Kind: kind, Message: err.Error()}
	var ve *usecase.ValidationError
	if errors.As(err, &ve) {
		res.Details = ve.Messages
	}
	return res
}

func writeError(w io.Writer, err error) {
	raw, mErr := json.Marshal(errorResponse(err))
	if mErr != nil {
		fmt.Fprintf(w, "error: %v\n", err)
		return
	}
	fmt.Fprintln(w, string(raw))
}
