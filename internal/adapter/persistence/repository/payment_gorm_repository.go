package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"payment_installments/internal/domain/entities"
	"payment_installments/internal/usecase/interfaces"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	paymentsTableName     = "payments"
	installmentsTableName = "installments"

	// Upper bound of ids bound into one IN (...) list.
	maxIDsPerJoin = 1000
)

type paymentRecord struct {
	ID            string     `gorm:"primaryKey;size:64"`
	TransactionID string     `gorm:"size:128;not null;index:idx_payments_transaction_id"`
	Amount        float64    `gorm:"not null"`
	Method        string     `gorm:"size:32;not null;index:idx_payments_method"`
	Status        string     `gorm:"size:16;not null;index:idx_payments_status"`
	PaymentDate   time.Time  `gorm:"not null"`
	DueDate       *time.Time `gorm:""`

	Installments []installmentRecord `gorm:"foreignKey:PaymentID;references:ID;constraint:OnDelete:CASCADE"`
}

func (paymentRecord) TableName() string { return paymentsTableName }

type installmentRecord struct {
	ID          string    `gorm:"primaryKey;size:64"`
	PaymentID   string    `gorm:"size:64;not null;index:idx_installments_payment_id"`
	Amount      float64   `gorm:"not null"`
	PaymentDate time.Time `gorm:"not null"`
}

func (installmentRecord) TableName() string { return installmentsTableName }

// Models returns the gorm models backing the SQL store, for AutoMigrate.
func Models() []any {
	return []any{&paymentRecord{}, &installmentRecord{}}
}

const joinSelect = `SELECT p.id, p.transaction_id, p.amount, p.method, p.status, p.payment_date, p.due_date,
	i.id AS inst_id, i.payment_id AS inst_payment_id, i.amount AS inst_amount, i.payment_date AS inst_date
FROM payments p
LEFT JOIN installments i ON i.payment_id = p.id`

// PaymentGormRepository persists payments in a SQL database through gorm.
//
// Every call checks out one pooled connection and holds it until return;
// multi-statement writes run in a transaction on that connection.

type PaymentGormRepository struct {
	db *gorm.DB
}

var _ interfaces.IPaymentRepository = (*PaymentGormRepository)(nil)

func NewPaymentGormRepository(db *gorm.DB) *PaymentGormRepository {
	return &PaymentGormRepository{db: db}
}

func (r *PaymentGormRepository) Create(ctx context.Context, p entities.Payment) (entities.Payment, error) {
	var created entities.Payment
	err := r.withConn(ctx, "create", func(conn *gorm.DB) error {
		rec := toPaymentRecord(p)
		insts := toInstallmentRecords(p.Installments)

		err := conn.Transaction(func(tx *gorm.DB) error {
			if err := tx.Omit(clause.Associations).Create(&rec).Error; err != nil {
				return err
			}
			if len(insts) > 0 {
				if err := tx.Create(&insts).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}

		created, err = r.findByID(conn, p.ID)
		return err
	})
	return created, err
}

func (r *PaymentGormRepository) FindByID(ctx context.Context, id string) (entities.Payment, error) {
	var found entities.Payment
	err := r.withConn(ctx, "find-by-id", func(conn *gorm.DB) error {
		var err error
		found, err = r.findByID(conn, id)
		return err
	})
	return found, err
}

func (r *PaymentGormRepository) FindAll(ctx context.Context, filters map[string]string) ([]entities.Payment, error) {
	var out []entities.Payment
	err := r.withConn(ctx, "find-all", func(conn *gorm.DB) error {
		q := conn.Model(&paymentRecord{})
		if v, ok := filters[interfaces.FilterStatus]; ok {
			q = q.Where("status = ?", v)
		}
		if v, ok := filters[interfaces.FilterMethod]; ok {
			q = q.Where("method = ?", v)
		}
		if v, ok := filters[interfaces.FilterTransactionID]; ok {
			q = q.Where("transaction_id = ?", v)
		}

		var ids []string
		if err := q.Order("payment_date, id").Pluck("id", &ids).Error; err != nil {
			return err
		}

		out = make([]entities.Payment, 0, len(ids))
		for start := 0; start < len(ids); start += maxIDsPerJoin {
			end := min(start+maxIDsPerJoin, len(ids))
			rows, err := r.joinRows(conn, joinSelect+" WHERE p.id IN ? ORDER BY p.payment_date, p.id, i.payment_date, i.id", ids[start:end])
			if err != nil {
				return err
			}
			batch, err := aggregatePayments(rows)
			if err != nil {
				return err
			}
			out = append(out, batch...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[payment][repository] find-all filters=%v count=%d", filters, len(out))
	return out, nil
}

func (r *PaymentGormRepository) Update(ctx context.Context, p entities.Payment) (entities.Payment, error) {
	var updated entities.Payment
	err := r.withConn(ctx, "update", func(conn *gorm.DB) error {
		res := conn.Model(&paymentRecord{}).Where("id = ?", p.ID).Updates(map[string]any{
			"transaction_id": p.TransactionID,
			"amount":         p.Amount,
			"method":         string(p.Method),
			"status":         string(p.Status),
			"payment_date":   p.PaymentDate.UTC(),
			"due_date":       utcPtr(p.DueDate),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return interfaces.ErrPaymentNotFound
		}

		var err error
		updated, err = r.findByID(conn, p.ID)
		return err
	})
	return updated, err
}

func (r *PaymentGormRepository) UpdateStatus(ctx context.Context, id string, status entities.PaymentStatus, additionalAmount *float64) (entities.Payment, error) {
	var updated entities.Payment
	err := r.withConn(ctx, "update-status", func(conn *gorm.DB) error {
		err := conn.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&paymentRecord{}).Where("id = ?", id).Update("status", string(status))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return interfaces.ErrPaymentNotFound
			}
			if additionalAmount == nil {
				return nil
			}
			inst := installmentRecord{
				ID:          entities.NewInstallmentID(),
				PaymentID:   id,
				Amount:      *additionalAmount,
				PaymentDate: time.Now().UTC().Truncate(time.Microsecond),
			}
			return tx.Create(&inst).Error
		})
		if err != nil {
			return err
		}

		updated, err = r.findByID(conn, id)
		return err
	})
	return updated, err
}

func (r *PaymentGormRepository) Delete(ctx context.Context, id string) error {
	return r.withConn(ctx, "delete", func(conn *gorm.DB) error {
		return conn.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("payment_id = ?", id).Delete(&installmentRecord{}).Error; err != nil {
				return err
			}
			res := tx.Where("id = ?", id).Delete(&paymentRecord{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return interfaces.ErrPaymentNotFound
			}
			return nil
		})
	})
}

func (r *PaymentGormRepository) AddInstallment(ctx context.Context, paymentID string, inst entities.Installment) error {
	return r.withConn(ctx, "add-installment", func(conn *gorm.DB) error {
		return conn.Transaction(func(tx *gorm.DB) error {
			var n int64
			if err := tx.Model(&paymentRecord{}).Where("id = ?", paymentID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return interfaces.ErrPaymentNotFound
			}
			inst.PaymentID = paymentID
			rec := toInstallmentRecords([]entities.Installment{inst})
			return tx.Create(&rec).Error
		})
	})
}

// withConn pins one pooled connection for fn. Failing to obtain it is a
// connection error; anything fn returns is classified as a query error
// unless the driver says otherwise.
func (r *PaymentGormRepository) withConn(ctx context.Context, op string, fn func(conn *gorm.DB) error) error {
	entered := false
	err := r.db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		entered = true
		return fn(conn)
	})
	if err == nil {
		return nil
	}
	if !entered {
		log.Printf("[payment][repository] %s connection unavailable err=%v", op, err)
		return &interfaces.StoreError{Kind: interfaces.StoreErrorConnection, Err: err}
	}
	classified := classifySQLError(err)
	if !errors.Is(classified, interfaces.ErrPaymentNotFound) {
		log.Printf("[payment][repository] %s failed err=%v", op, classified)
	}
	return classified
}

func (r *PaymentGormRepository) findByID(conn *gorm.DB, id string) (entities.Payment, error) {
	rows, err := r.joinRows(conn, joinSelect+" WHERE p.id = ? ORDER BY i.payment_date, i.id", id)
	if err != nil {
		return entities.Payment{}, err
	}
	payments, err := aggregatePayments(rows)
	if err != nil {
		return entities.Payment{}, err
	}
	if len(payments) == 0 {
		return entities.Payment{}, interfaces.ErrPaymentNotFound
	}
	return payments[0], nil
}

// joinRows drains the result set before returning so the pinned
// connection is free for the next statement.
func (r *PaymentGormRepository) joinRows(conn *gorm.DB, query string, args ...any) ([]paymentRow, error) {
	rows, err := conn.Raw(query, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []paymentRow
	for rows.Next() {
		var row paymentRow
		if err := rows.Scan(
			&row.ID, &row.TransactionID, &row.Amount, &row.Method, &row.Status, &row.PaymentDate, &row.DueDate,
			&row.InstID, &row.InstPaymentID, &row.InstAmount, &row.InstDate,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func classifySQLError(err error) error {
	if err == nil || errors.Is(err, interfaces.ErrPaymentNotFound) {
		return err
	}
	var storeErr *interfaces.StoreError
	if errors.As(err, &storeErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return interfaces.ErrPaymentNotFound
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &interfaces.StoreError{Kind: interfaces.StoreErrorConnection, Err: err}
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return &interfaces.StoreError{Kind: interfaces.StoreErrorConnection, Err: err}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		kind := interfaces.StoreErrorQuery
		// Class 08 is connection exception; 53300 too_many_connections; 57P01 admin_shutdown.
		if len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08" || pgErr.Code == "53300" || pgErr.Code == "57P01" {
			kind = interfaces.StoreErrorConnection
		}
		return &interfaces.StoreError{Kind: kind, Code: pgErr.Code, Err: err}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		kind := interfaces.StoreErrorQuery
		switch liteErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrCantOpen, sqlite3.ErrIoErr:
			kind = interfaces.StoreErrorConnection
		}
		return &interfaces.StoreError{Kind: kind, Code: strconv.Itoa(int(liteErr.ExtendedCode)), Err: err}
	}

	return &interfaces.StoreError{Kind: interfaces.StoreErrorQuery, Err: fmt.Errorf("sql: %w", err)}
}

func toPaymentRecord(p entities.Payment) paymentRecord {
	return paymentRecord{
		ID:            p.ID,
		TransactionID: p.TransactionID,
		Amount:        p.Amount,
		Method:        string(p.Method),
		Status:        string(p.Status),
		PaymentDate:   p.PaymentDate.UTC(),
		DueDate:       utcPtr(p.DueDate),
	}
}

func toInstallmentRecords(items []entities.Installment) []installmentRecord {
	out := make([]installmentRecord, 0, len(items))
	for _, inst := range items {
		out = append(out, installmentRecord{
			ID:          inst.ID,
			PaymentID:   inst.PaymentID,
			Amount:      inst.Amount,
			PaymentDate: inst.PaymentDate.UTC(),
		})
	}
	return out
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
