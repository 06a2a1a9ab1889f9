package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"payment_installments/internal/domain/entities"
	"payment_installments/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

const (
	defaultPaymentsTableName     = "payments"
	defaultInstallmentsTableName = "installments"
	installmentsPaymentIDIndex   = "payment_id-index"

	// DynamoDB caps a transaction at 100 actions and an IN list at 100 operands.
	maxTransactItems = 100
	maxInOperands    = 100
)

type dynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

type paymentItem struct {
	ID            string  `dynamodbav:"id"`
	TransactionID string  `dynamodbav:"transaction_id"`
	Amount        float64 `dynamodbav:"amount"`
	Method        string  `dynamodbav:"method"`
	Status        string  `dynamodbav:"status"`
	PaymentDate   string  `dynamodbav:"payment_date"`
	DueDate       string  `dynamodbav:"due_date,omitempty"`
}

type installmentItem struct {
	ID          string  `dynamodbav:"id"`
	PaymentID   string  `dynamodbav:"payment_id"`
	Amount      float64 `dynamodbav:"amount"`
	PaymentDate string  `dynamodbav:"payment_date"`
}

// PaymentDynamoRepository persists payments in DynamoDB.
//
// Table requirements:
//   - payments: PK id (string)
//   - installments: PK id (string), GSI payment_id-index (PK: payment_id)
//
// Installments for a page of payments are fetched with one Scan per 100
// payment ids rather than one Query per payment.

type PaymentDynamoRepository struct {
	ddb               dynamoAPI
	paymentsTable     string
	installmentsTable string
}

var _ interfaces.IPaymentRepository = (*PaymentDynamoRepository)(nil)

func NewPaymentDynamoRepository(ddb dynamoAPI) *PaymentDynamoRepository {
	return &PaymentDynamoRepository{
		ddb:               ddb,
		paymentsTable:     getenvDefault("PAYMENTS_TABLE", defaultPaymentsTableName),
		installmentsTable: getenvDefault("INSTALLMENTS_TABLE", defaultInstallmentsTableName),
	}
}

func (r *PaymentDynamoRepository) Create(ctx context.Context, p entities.Payment) (entities.Payment, error) {
	if len(p.Installments)+1 > maxTransactItems {
		return entities.Payment{}, &interfaces.StoreError{
			Kind: interfaces.StoreErrorQuery,
			Code: "TooManyInstallments",
			Err:  fmt.Errorf("payment %s has %d installments; at most %d fit in one create", p.ID, len(p.Installments), maxTransactItems-1),
		}
	}

	if err := r.sweepOrphans(ctx, p.ID); err != nil {
		return entities.Payment{}, err
	}

	av, err := attributevalue.MarshalMap(toPaymentItem(p))
	if err != nil {
		return entities.Payment{}, err
	}
	items := []types.TransactWriteItem{{
		Put: &types.Put{
			TableName:                aws.String(r.paymentsTable),
			Item:                     av,
			ConditionExpression:      aws.String("attribute_not_exists(#id)"),
			ExpressionAttributeNames: map[string]string{"#id": "id"},
		},
	}}
	for _, inst := range p.Installments {
		iav, err := attributevalue.MarshalMap(toInstallmentItem(inst))
		if err != nil {
			return entities.Payment{}, err
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{TableName: aws.String(r.installmentsTable), Item: iav},
		})
	}

	if _, err := r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items}); err != nil {
		if conditionFailed(err) {
			return entities.Payment{}, &interfaces.StoreError{Kind: interfaces.StoreErrorQuery, Code: "DuplicatePaymentID", Err: err}
		}
		return entities.Payment{}, r.fail("create", err)
	}
	return r.FindByID(ctx, p.ID)
}

func (r *PaymentDynamoRepository) FindByID(ctx context.Context, id string) (entities.Payment, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.paymentsTable),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Payment{}, r.fail("find-by-id", err)
	}
	if len(out.Item) == 0 {
		return entities.Payment{}, interfaces.ErrPaymentNotFound
	}

	var it paymentItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Payment{}, interfaces.NewDecodeError("payment %s: %v", id, err)
	}
	insts, err := r.installmentsOf(ctx, id)
	if err != nil {
		return entities.Payment{}, err
	}

	payments, err := aggregatePayments(leftJoinRows([]paymentItem{it}, insts))
	if err != nil {
		return entities.Payment{}, err
	}
	orderInstallments(payments)
	return payments[0], nil
}

func (r *PaymentDynamoRepository) FindAll(ctx context.Context, filters map[string]string) ([]entities.Payment, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(r.paymentsTable)}
	if expr, names, values := filterExpression(filters); expr != "" {
		input.FilterExpression = aws.String(expr)
		input.ExpressionAttributeNames = names
		input.ExpressionAttributeValues = values
	}

	var parents []paymentItem
	p := dynamodb.NewScanPaginator(r.ddb, input)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, r.fail("find-all", err)
		}
		for _, raw := range page.Items {
			var it paymentItem
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				return nil, interfaces.NewDecodeError("payment item: %v", err)
			}
			parents = append(parents, it)
		}
	}
	if err := sortPaymentItems(parents); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(parents))
	for _, it := range parents {
		ids = append(ids, it.ID)
	}
	insts, err := r.installmentsIn(ctx, ids)
	if err != nil {
		return nil, err
	}

	out, err := aggregatePayments(leftJoinRows(parents, insts))
	if err != nil {
		return nil, err
	}
	orderInstallments(out)
	log.Printf("[payment][repository] find-all backend=dynamodb filters=%v count=%d", filters, len(out))
	return out, nil
}

func (r *PaymentDynamoRepository) Update(ctx context.Context, p entities.Payment) (entities.Payment, error) {
	av, err := attributevalue.MarshalMap(toPaymentItem(p))
	if err != nil {
		return entities.Payment{}, err
	}
	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.paymentsTable),
		Item:                     av,
		ConditionExpression:      aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": "id"},
	})
	if err != nil {
		if conditionFailed(err) {
			return entities.Payment{}, interfaces.ErrPaymentNotFound
		}
		return entities.Payment{}, r.fail("update", err)
	}
	return r.FindByID(ctx, p.ID)
}

func (r *PaymentDynamoRepository) UpdateStatus(ctx context.Context, id string, status entities.PaymentStatus, additionalAmount *float64) (entities.Payment, error) {
	names := map[string]string{"#status": "status"}
	items := []types.TransactWriteItem{{
		Update: &types.Update{
			TableName: aws.String(r.paymentsTable),
			Key: map[string]types.AttributeValue{
				"id": &types.AttributeValueMemberS{Value: id},
			},
			UpdateExpression:         aws.String("SET #status = :status"),
			ConditionExpression:      aws.String("attribute_exists(#id)"),
			ExpressionAttributeNames: mergeNames(names, map[string]string{"#id": "id"}),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":status": &types.AttributeValueMemberS{Value: string(status)},
			},
		},
	}}
	if additionalAmount != nil {
		inst := entities.Installment{
			ID:          entities.NewInstallmentID(),
			PaymentID:   id,
			Amount:      *additionalAmount,
			PaymentDate: time.Now().UTC().Truncate(time.Microsecond),
		}
		iav, err := attributevalue.MarshalMap(toInstallmentItem(inst))
		if err != nil {
			return entities.Payment{}, err
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{TableName: aws.String(r.installmentsTable), Item: iav},
		})
	}

	if _, err := r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items}); err != nil {
		if conditionFailed(err) {
			return entities.Payment{}, interfaces.ErrPaymentNotFound
		}
		return entities.Payment{}, r.fail("update-status", err)
	}
	return r.FindByID(ctx, id)
}

// Delete removes the payment together with up to 99 of its installments in
// one transaction, so no reader sees a payment with part of its installments
// gone. Installments beyond that are swept in later transactions. A failed
// sweep leaves orphans that no read reaches; the next Delete or Create for
// the same id removes them.
func (r *PaymentDynamoRepository) Delete(ctx context.Context, id string) error {
	insts, err := r.installmentsOf(ctx, id)
	if err != nil {
		return err
	}

	head := min(len(insts), maxTransactItems-1)
	items := make([]types.TransactWriteItem, 0, head+1)
	items = append(items, types.TransactWriteItem{
		Delete: &types.Delete{
			TableName: aws.String(r.paymentsTable),
			Key: map[string]types.AttributeValue{
				"id": &types.AttributeValueMemberS{Value: id},
			},
			ConditionExpression:      aws.String("attribute_exists(#id)"),
			ExpressionAttributeNames: map[string]string{"#id": "id"},
		},
	})
	items = append(items, r.installmentDeletes(insts[:head])...)

	if _, err := r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items}); err != nil {
		if !conditionFailed(err) {
			return r.fail("delete", err)
		}
		if len(insts) > 0 {
			log.Printf("[payment][repository] delete found orphaned installments payment_id=%s count=%d", id, len(insts))
			if err := r.sweepInstallments(ctx, insts); err != nil {
				return err
			}
		}
		return interfaces.ErrPaymentNotFound
	}

	if err := r.sweepInstallments(ctx, insts[head:]); err != nil {
		log.Printf("[payment][repository] delete left orphaned installments payment_id=%s err=%v", id, err)
		return err
	}
	return nil
}

func (r *PaymentDynamoRepository) installmentDeletes(insts []installmentItem) []types.TransactWriteItem {
	out := make([]types.TransactWriteItem, 0, len(insts))
	for _, inst := range insts {
		out = append(out, types.TransactWriteItem{
			Delete: &types.Delete{
				TableName: aws.String(r.installmentsTable),
				Key: map[string]types.AttributeValue{
					"id": &types.AttributeValueMemberS{Value: inst.ID},
				},
			},
		})
	}
	return out
}

// sweepInstallments deletes installments in transactions of at most 100.
func (r *PaymentDynamoRepository) sweepInstallments(ctx context.Context, insts []installmentItem) error {
	for start := 0; start < len(insts); start += maxTransactItems {
		chunk := insts[start:min(start+maxTransactItems, len(insts))]
		if _, err := r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: r.installmentDeletes(chunk)}); err != nil {
			return r.fail("sweep-installments", err)
		}
	}
	return nil
}

// sweepOrphans removes installments left under id by a failed delete sweep
// so a new payment with that id does not inherit them.
func (r *PaymentDynamoRepository) sweepOrphans(ctx context.Context, id string) error {
	orphans, err := r.installmentsOf(ctx, id)
	if err != nil || len(orphans) == 0 {
		return err
	}
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.paymentsTable),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return r.fail("create", err)
	}
	if len(out.Item) > 0 {
		// Live payment; the create fails on its own condition.
		return nil
	}
	log.Printf("[payment][repository] create sweeping orphaned installments payment_id=%s count=%d", id, len(orphans))
	return r.sweepInstallments(ctx, orphans)
}

func (r *PaymentDynamoRepository) AddInstallment(ctx context.Context, paymentID string, inst entities.Installment) error {
	inst.PaymentID = paymentID
	iav, err := attributevalue.MarshalMap(toInstallmentItem(inst))
	if err != nil {
		return err
	}
	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				ConditionCheck: &types.ConditionCheck{
					TableName: aws.String(r.paymentsTable),
					Key: map[string]types.AttributeValue{
						"id": &types.AttributeValueMemberS{Value: paymentID},
					},
					ConditionExpression:      aws.String("attribute_exists(#id)"),
					ExpressionAttributeNames: map[string]string{"#id": "id"},
				},
			},
			{Put: &types.Put{TableName: aws.String(r.installmentsTable), Item: iav}},
		},
	})
	if err != nil {
		if conditionFailed(err) {
			return interfaces.ErrPaymentNotFound
		}
		return r.fail("add-installment", err)
	}
	return nil
}

func (r *PaymentDynamoRepository) installmentsOf(ctx context.Context, paymentID string) ([]installmentItem, error) {
	p := dynamodb.NewQueryPaginator(r.ddb, &dynamodb.QueryInput{
		TableName:              aws.String(r.installmentsTable),
		IndexName:              aws.String(installmentsPaymentIDIndex),
		KeyConditionExpression: aws.String("#pid = :pid"),
		ExpressionAttributeNames: map[string]string{
			"#pid": "payment_id",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pid": &types.AttributeValueMemberS{Value: paymentID},
		},
	})

	var out []installmentItem
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, r.fail("query-installments", err)
		}
		for _, raw := range page.Items {
			var it installmentItem
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				return nil, interfaces.NewDecodeError("installment item: %v", err)
			}
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *PaymentDynamoRepository) installmentsIn(ctx context.Context, paymentIDs []string) ([]installmentItem, error) {
	var out []installmentItem
	for start := 0; start < len(paymentIDs); start += maxInOperands {
		chunk := paymentIDs[start:min(start+maxInOperands, len(paymentIDs))]

		placeholders := make([]string, 0, len(chunk))
		values := make(map[string]types.AttributeValue, len(chunk))
		for i, id := range chunk {
			key := fmt.Sprintf(":p%d", i)
			placeholders = append(placeholders, key)
			values[key] = &types.AttributeValueMemberS{Value: id}
		}

		p := dynamodb.NewScanPaginator(r.ddb, &dynamodb.ScanInput{
			TableName:                 aws.String(r.installmentsTable),
			FilterExpression:          aws.String("#pid IN (" + strings.Join(placeholders, ", ") + ")"),
			ExpressionAttributeNames:  map[string]string{"#pid": "payment_id"},
			ExpressionAttributeValues: values,
		})
		for p.HasMorePages() {
			page, err := p.NextPage(ctx)
			if err != nil {
				return nil, r.fail("scan-installments", err)
			}
			for _, raw := range page.Items {
				var it installmentItem
				if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
					return nil, interfaces.NewDecodeError("installment item: %v", err)
				}
				out = append(out, it)
			}
		}
	}
	return out, nil
}

func (r *PaymentDynamoRepository) fail(op string, err error) error {
	classified := classifyDynamoError(err)
	log.Printf("[payment][repository] %s failed backend=dynamodb err=%v", op, classified)
	return classified
}

// leftJoinRows produces the same row shape the SQL join yields: one row per
// installment, or a single row with empty installment columns. Parent order
// is kept; installments come out in scan order.
func leftJoinRows(parents []paymentItem, insts []installmentItem) []paymentRow {
	byPayment := make(map[string][]installmentItem)
	for _, it := range insts {
		byPayment[it.PaymentID] = append(byPayment[it.PaymentID], it)
	}

	rows := make([]paymentRow, 0, len(parents)+len(insts))
	for _, parent := range parents {
		base := paymentRow{
			ID:            parent.ID,
			TransactionID: parent.TransactionID,
			Amount:        parent.Amount,
			Method:        parent.Method,
			Status:        parent.Status,
			PaymentDate:   parent.PaymentDate,
		}
		if parent.DueDate != "" {
			base.DueDate = parent.DueDate
		}

		children := byPayment[parent.ID]
		if len(children) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, child := range children {
			row := base
			row.InstID.String, row.InstID.Valid = child.ID, true
			row.InstPaymentID.String, row.InstPaymentID.Valid = child.PaymentID, true
			row.InstAmount = child.Amount
			row.InstDate = child.PaymentDate
			rows = append(rows, row)
		}
	}
	return rows
}

// orderInstallments gives scanned installments the order the SQL join
// produces.
func orderInstallments(payments []entities.Payment) {
	for i := range payments {
		entities.SortInstallments(payments[i].Installments)
	}
}

func sortPaymentItems(items []paymentItem) error {
	dates := make(map[string]time.Time, len(items))
	for _, it := range items {
		ts, err := decodeTimestamp(it.PaymentDate)
		if err != nil {
			return fmt.Errorf("payment %s payment_date: %w", it.ID, err)
		}
		dates[it.ID] = ts
	}
	sort.SliceStable(items, func(i, j int) bool {
		di, dj := dates[items[i].ID], dates[items[j].ID]
		if di.Equal(dj) {
			return items[i].ID < items[j].ID
		}
		return di.Before(dj)
	})
	return nil
}

// filterExpression renders the validated filters in a fixed key order.
func filterExpression(filters map[string]string) (string, map[string]string, map[string]types.AttributeValue) {
	var clauses []string
	names := map[string]string{}
	values := map[string]types.AttributeValue{}
	for i, key := range []string{interfaces.FilterStatus, interfaces.FilterMethod, interfaces.FilterTransactionID} {
		v, ok := filters[key]
		if !ok {
			continue
		}
		n, val := fmt.Sprintf("#f%d", i), fmt.Sprintf(":f%d", i)
		names[n] = key
		values[val] = &types.AttributeValueMemberS{Value: v}
		clauses = append(clauses, n+" = "+val)
	}
	return strings.Join(clauses, " AND "), names, values
}

func conditionFailed(err error) bool {
	var cfe *types.ConditionalCheckFailedException
	if errors.As(err, &cfe) {
		return true
	}
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		for _, reason := range tce.CancellationReasons {
			if aws.ToString(reason.Code) == "ConditionalCheckFailed" {
				return true
			}
		}
	}
	return false
}

func classifyDynamoError(err error) error {
	if err == nil || errors.Is(err, interfaces.ErrPaymentNotFound) {
		return err
	}
	var storeErr *interfaces.StoreError
	if errors.As(err, &storeErr) {
		return err
	}

	var sendErr *smithyhttp.RequestSendError
	if errors.As(err, &sendErr) {
		return &interfaces.StoreError{Kind: interfaces.StoreErrorConnection, Err: err}
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		kind := interfaces.StoreErrorQuery
		switch apiErr.ErrorCode() {
		case "ProvisionedThroughputExceededException", "RequestLimitExceeded", "ThrottlingException", "ServiceUnavailable":
			kind = interfaces.StoreErrorConnection
		}
		return &interfaces.StoreError{Kind: kind, Code: apiErr.ErrorCode(), Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &interfaces.StoreError{Kind: interfaces.StoreErrorConnection, Err: err}
	}
	return &interfaces.StoreError{Kind: interfaces.StoreErrorQuery, Err: err}
}

func toPaymentItem(p entities.Payment) paymentItem {
	it := paymentItem{
		ID:            p.ID,
		TransactionID: p.TransactionID,
		Amount:        p.Amount,
		Method:        string(p.Method),
		Status:        string(p.Status),
		PaymentDate:   p.PaymentDate.UTC().Format(time.RFC3339Nano),
	}
	if p.DueDate != nil {
		it.DueDate = p.DueDate.UTC().Format(time.RFC3339Nano)
	}
	return it
}

func toInstallmentItem(inst entities.Installment) installmentItem {
	return installmentItem{
		ID:          inst.ID,
		PaymentID:   inst.PaymentID,
		Amount:      inst.Amount,
		PaymentDate: inst.PaymentDate.UTC().Format(time.RFC3339Nano),
	}
}
