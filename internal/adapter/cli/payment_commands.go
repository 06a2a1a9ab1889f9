package cli

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"payment_installments/internal/adapter/cli/dto/request"
	"payment_installments/internal/adapter/cli/dto/response"
	"payment_installments/internal/domain/entities"
	"payment_installments/internal/usecase"
	"payment_installments/internal/usecase/interfaces"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// paymentFlags are shared by create and update.
type paymentFlags struct {
	file          string
	id            string
	transactionID string
	amount        float64
	method        string
	status        string
	date          string
	dueDate       string
	installments  []float64
}

func (f *paymentFlags) register(fs *pflag.FlagSet, withInstallments bool) {
	fs.StringVarP(&f.file, "file", "f", "", "Read the payment from a JSON file ('-' for stdin)")
	fs.StringVar(&f.transactionID, "transaction-id", "", "Gateway transaction reference")
	fs.Float64Var(&f.amount, "amount", 0, "Payment amount")
	fs.StringVar(&f.method, "method", "", "Payment method: "+methodCodes())
	fs.StringVar(&f.status, "status", "", "LUNAS (paid) or CICILAN (installment)")
	fs.StringVar(&f.date, "date", "", "Payment date, RFC 3339 or YYYY-MM-DD (default now)")
	fs.StringVar(&f.dueDate, "due-date", "", "Due date, RFC 3339 or YYYY-MM-DD")
	if withInstallments {
		fs.StringVar(&f.id, "id", "", "Payment id (default a generated PMT- id)")
		fs.Float64SliceVar(&f.installments, "installment", nil, "Installment amount; repeat for several")
	}
}

// overlay copies every flag the user set onto req.
func (f *paymentFlags) overlay(fs *pflag.FlagSet, req *request.PaymentRequest) {
	if fs.Changed("id") {
		req.ID = f.id
	}
	if fs.Changed("transaction-id") {
		req.TransactionID = f.transactionID
	}
	if fs.Changed("amount") {
		req.Amount = f.amount
	}
	if fs.Changed("method") {
		req.PaymentMethod = f.method
	}
	if fs.Changed("status") {
		req.PaymentStatus = f.status
	}
	if fs.Changed("date") {
		req.PaymentDate = f.date
	}
	if fs.Changed("due-date") {
		req.DueDate = f.dueDate
	}
	if fs.Changed("installment") {
		req.Installments = req.Installments[:0]
		for _, amount := range f.installments {
			req.Installments = append(req.Installments, request.InstallmentRequest{Amount: amount})
		}
	}
}

func (f *paymentFlags) load(cmd *cobra.Command) (request.PaymentRequest, error) {
	var req request.PaymentRequest
	if f.file != "" {
		var in io.Reader = cmd.InOrStdin()
		if f.file != "-" {
			fh, err := os.Open(f.file)
			if err != nil {
				return req, &usecase.InvalidInputError{Field: "file", Message: err.Error()}
			}
			defer fh.Close()
			in = fh
		}
		decoded, err := request.DecodePaymentRequest(in)
		if err != nil {
			return req, &usecase.InvalidInputError{Field: "file", Message: err.Error()}
		}
		req = decoded
	}
	f.overlay(cmd.Flags(), &req)
	return req, nil
}

// methodCodes lists the accepted method codes for flag help.
func methodCodes() string {
	methods := entities.PaymentMethods()
	codes := make([]string, 0, len(methods))
	for _, m := range methods {
		codes = append(codes, string(m))
	}
	return strings.Join(codes, ", ")
}

// toEntity resolves codes leniently: unknown method or status values are
// passed through upper-cased so the usecase reports them with every other
// violation.
func toEntity(req request.PaymentRequest, id string) (entities.Payment, error) {
	method := entities.PaymentMethod(strings.ToUpper(strings.TrimSpace(req.PaymentMethod)))
	if m, err := usecase.ParsePaymentMethod(req.PaymentMethod); err == nil {
		method = m
	}

	status := entities.PaymentStatus(strings.ToUpper(strings.TrimSpace(req.PaymentStatus)))
	switch {
	case status == "" && len(req.Installments) > 0:
		status = entities.PaymentStatusInstallment
	case status == "":
		status = entities.PaymentStatusPaid
	default:
		if s, err := usecase.ParsePaymentStatus(req.PaymentStatus); err == nil {
			status = s
		}
	}

	p, err := req.ToEntity(id, method, status)
	if errors.Is(err, request.ErrInvalidDate) {
		return entities.Payment{}, &usecase.InvalidInputError{Field: "date", Message: err.Error()}
	}
	return p, err
}

func (r *runner) createCmd() *cobra.Command {
	var flags paymentFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a payment, optionally with installments",
		Example: `  paymentctl create --transaction-id TXN-1 --amount 1000 --method CASH
  paymentctl create --transaction-id TXN-2 --amount 1000 --method BANK_TRANSFER --installment 300 --installment 700
  paymentctl create --file payment.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := flags.load(cmd)
			if err != nil {
				return err
			}
			p, err := toEntity(req, req.ResolveID())
			if err != nil {
				return err
			}
			return r.withApp(cmd, func(ctx context.Context, app *App) error {
				created, err := app.UseCase.CreatePayment(ctx, p)
				if err != nil {
					return err
				}
				log.Printf("[payment][cli] created payment_id=%s", created.ID)
				return writeJSON(cmd.OutOrStdout(), response.FromPayment(created))
			})
		},
	}
	flags.register(cmd.Flags(), true)
	return cmd
}

func (r *runner) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one payment with its installments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(ctx context.Context, app *App) error {
				p, err := app.UseCase.GetPaymentByID(ctx, args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), response.FromPayment(p))
			})
		},
	}
}

func (r *runner) listCmd() *cobra.Command {
	var status, method, transactionID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List payments ordered by payment date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filters := map[string]string{}
			fs := cmd.Flags()
			if fs.Changed("status") {
				filters[interfaces.FilterStatus] = status
			}
			if fs.Changed("method") {
				filters[interfaces.FilterMethod] = method
			}
			if fs.Changed("transaction-id") {
				filters[interfaces.FilterTransactionID] = transactionID
			}
			return r.withApp(cmd, func(ctx context.Context, app *App) error {
				payments, err := app.UseCase.GetAllPayments(ctx, filters)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), response.FromPayments(payments))
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Only payments with this status")
	cmd.Flags().StringVar(&method, "method", "", "Only payments with this method ("+methodCodes()+")")
	cmd.Flags().StringVar(&transactionID, "transaction-id", "", "Only payments with this transaction id")
	return cmd
}

func (r *runner) updateCmd() *cobra.Command {
	var flags paymentFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update the scalar fields of a payment",
		Long: `Update transaction id, amount, method, status or dates of a payment.
Unset flags keep the stored values. Installments are not rewritten; use
"installment" or "status --amount" to record more.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return r.withApp(cmd, func(ctx context.Context, app *App) error {
				current, err := app.UseCase.GetPaymentByID(ctx, id)
				if err != nil {
					return err
				}
				req := requestFromPayment(current)
				if flags.file != "" {
					loaded, err := flags.load(cmd)
					if err != nil {
						return err
					}
					if len(loaded.Installments) == 0 {
						loaded.Installments = req.Installments
					}
					req = loaded
				} else {
					flags.overlay(cmd.Flags(), &req)
				}

				p, err := toEntity(req, id)
				if err != nil {
					return err
				}
				updated, err := app.UseCase.UpdatePayment(ctx, p)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), response.FromPayment(updated))
			})
		},
	}
	flags.register(cmd.Flags(), false)
	return cmd
}

func (r *runner) statusCmd() *cobra.Command {
	var status string
	var amount float64
	cmd := &cobra.Command{
		Use:   "status <id>",
		Short: "Change the status of a payment, optionally recording one more installment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := usecase.ParsePaymentStatus(status)
			if err != nil {
				return err
			}
			var additional *float64
			if cmd.Flags().Changed("amount") {
				additional = &amount
			}
			return r.withApp(cmd, func(ctx context.Context, app *App) error {
				p, err := app.UseCase.UpdatePaymentStatus(ctx, args[0], st, additional)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), response.FromPayment(p))
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "LUNAS (paid) or CICILAN (installment)")
	cmd.Flags().Float64Var(&amount, "amount", 0, "Record an installment of this amount in the same write")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}

func (r *runner) installmentCmd() *cobra.Command {
	var amount float64
	cmd := &cobra.Command{
		Use:   "installment <id>",
		Short: "Record an installment on a payment in CICILAN status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(ctx context.Context, app *App) error {
				p, err := app.UseCase.AddInstallment(ctx, args[0], amount)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), response.FromPayment(p))
			})
		},
	}
	cmd.Flags().Float64Var(&amount, "amount", 0, "Installment amount")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func (r *runner) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a payment and all of its installments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withApp(cmd, func(ctx context.Context, app *App) error {
				if err := app.UseCase.DeletePayment(ctx, args[0]); err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), map[string]string{"deleted": strings.TrimSpace(args[0])})
			})
		},
	}
}

func requestFromPayment(p entities.Payment) request.PaymentRequest {
	req := request.PaymentRequest{
		ID:            p.ID,
		TransactionID: p.TransactionID,
		Amount:        p.Amount,
		PaymentMethod: string(p.Method),
		PaymentStatus: string(p.Status),
		PaymentDate:   p.PaymentDate.Format(time.RFC3339Nano),
		Installments:  make([]request.InstallmentRequest, 0, len(p.Installments)),
	}
	if p.DueDate != nil {
		req.DueDate = p.DueDate.Format(time.RFC3339Nano)
	}
	for _, inst := range p.Installments {
		req.Installments = append(req.Installments, request.InstallmentRequest{
			ID:          inst.ID,
			Amount:      inst.Amount,
			PaymentDate: inst.PaymentDate.Format(time.RFC3339Nano),
		})
	}
	return req
}
