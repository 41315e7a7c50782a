package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

// maxSaleIDAttempts ограничивает сдвиг секунды при коллизии идентификаторов
// вида VEN-<unix> внутри одной секунды.
const maxSaleIDAttempts = 10

type salesRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSalesRepository создаёт PostgreSQL-реализацию SalesLedger. Запись
// продажи и постановка события в outbox выполняются одной транзакцией.
func NewSalesRepository(store *Store) *salesRepository {
	return &salesRepository{
		db:  store.DB(),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// SetClock подменяет источник времени (для тестов идентификаторов продаж).
func (r *salesRepository) SetClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

// Record записывает снимок продажи и возвращает итоговую запись.
// Повторный вызов с тем же SubmissionID возвращает уже существующую запись.
func (r *salesRepository) Record(ctx context.Context, submission domain.SaleSubmission) (domain.SaleRecord, error) {
	if submission.SubmissionID == "" {
		return domain.SaleRecord{}, domain.ErrIdempotencyKeyRequired
	}
	if errs := submission.ValidateInvariants(); len(errs) > 0 {
		return domain.SaleRecord{}, fmt.Errorf("%w: %v", domain.ErrSaleRejected, errs[0])
	}

	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	recordedAt := r.now()
	record := domain.SaleRecord{
		RecordedAt:    recordedAt,
		Client:        submission.Customer.FullName,
		Cedula:        submission.Customer.Cedula,
		ItemsSummary:  submission.ItemsSummary(),
		TotalUSD:      submission.TotalUSD,
		TotalBs:       submission.TotalBs(),
		PaymentMethod: string(submission.Financing),
		Financed:      submission.Financing.Financed(),
	}

	submissionJSON, err := json.Marshal(submission)
	if err != nil {
		return domain.SaleRecord{}, fmt.Errorf("marshal sale submission: %w", err)
	}

	stamp := recordedAt.Unix()
	for attempt := 0; attempt < maxSaleIDAttempts; attempt++ {
		record.SaleID = fmt.Sprintf("VEN-%d", stamp)
		record.ReceiptURL = "/api/receipts/" + record.SaleID

		inserted, err := r.tryInsert(queryCtx, record, submission, submissionJSON)
		if err == nil {
			if inserted {
				return record, nil
			}
			// Дубликат SubmissionID: возвращаем запись первой попытки.
			return r.recordBySubmissionID(queryCtx, submission.SubmissionID)
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "sales_pkey" {
			// Две продажи в одну секунду: сдвигаем секунду вперёд.
			stamp++
			continue
		}
		return domain.SaleRecord{}, err
	}

	return domain.SaleRecord{}, fmt.Errorf("exhausted sale id attempts for submission %s", submission.SubmissionID)
}

// tryInsert вставляет продажу и событие outbox одной транзакцией.
// Возвращает inserted=false, если SubmissionID уже записан.
func (r *salesRepository) tryInsert(
	ctx context.Context,
	record domain.SaleRecord,
	submission domain.SaleSubmission,
	submissionJSON []byte,
) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var res sql.Result
	res, err = tx.ExecContext(ctx, `
		INSERT INTO sales (
			sale_id, submission_id, recorded_at, client, cedula, items_summary,
			total_usd, total_bs, payment_method, financed, receipt_url, submission
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT ON CONSTRAINT sales_submission_id_key DO NOTHING
	`,
		record.SaleID, submission.SubmissionID, record.RecordedAt,
		record.Client, record.Cedula, record.ItemsSummary,
		record.TotalUSD, record.TotalBs, record.PaymentMethod,
		record.Financed, record.ReceiptURL, submissionJSON,
	)
	if err != nil {
		return false, fmt.Errorf("insert sale: %w", err)
	}

	var affected int64
	affected, err = res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sale rows affected: %w", err)
	}
	if affected == 0 {
		_ = tx.Rollback()
		return false, nil
	}

	var payload []byte
	payload, err = json.Marshal(map[string]interface{}{
		"sale_id":       record.SaleID,
		"submission_id": submission.SubmissionID,
		"client":        record.Client,
		"total_usd":     record.TotalUSD,
		"total_bs":      record.TotalBs,
		"financed":      record.Financed,
		"recorded_at":   record.RecordedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return false, fmt.Errorf("marshal sale event: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO outbox_messages (
			id, aggregate_type, aggregate_id, event_type, payload,
			status, attempt_count, created_at, updated_at
		) VALUES ($1,'sale',$2,'SaleRecorded',$3,'pending',0,NOW(),NOW())
	`, uuid.NewString(), record.SaleID, payload)
	if err != nil {
		return false, fmt.Errorf("enqueue sale event: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit sale: %w", err)
	}
	return true, nil
}

// History возвращает продажи от новых к старым.
func (r *salesRepository) History(ctx context.Context) ([]domain.SaleRecord, error) {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(queryCtx, `
		SELECT sale_id, recorded_at, client, cedula, items_summary,
		       total_usd, total_bs, payment_method, financed, receipt_url
		FROM sales
		ORDER BY recorded_at DESC, sale_id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	result := make([]domain.SaleRecord, 0)
	for rows.Next() {
		record, err := scanSaleRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales: %w", err)
	}
	return result, nil
}

// Receipt возвращает запись вместе с исходным снимком для рендера чека.
func (r *salesRepository) Receipt(ctx context.Context, saleID string) (domain.SaleReceipt, error) {
	queryCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var (
		record         domain.SaleRecord
		submissionJSON []byte
	)
	err := r.db.QueryRowContext(queryCtx, `
		SELECT sale_id, recorded_at, client, cedula, items_summary,
		       total_usd, total_bs, payment_method, financed, receipt_url, submission
		FROM sales
		WHERE sale_id = $1
	`, saleID).Scan(
		&record.SaleID, &record.RecordedAt, &record.Client, &record.Cedula,
		&record.ItemsSummary, &record.TotalUSD, &record.TotalBs,
		&record.PaymentMethod, &record.Financed, &record.ReceiptURL,
		&submissionJSON,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.SaleReceipt{}, domain.ErrSaleNotFound
		}
		return domain.SaleReceipt{}, fmt.Errorf("select sale: %w", err)
	}

	var submission domain.SaleSubmission
	if err := json.Unmarshal(submissionJSON, &submission); err != nil {
		return domain.SaleReceipt{}, fmt.Errorf("unmarshal sale submission %s: %w", saleID, err)
	}

	return domain.SaleReceipt{Record: record, Submission: submission}, nil
}

func (r *salesRepository) recordBySubmissionID(ctx context.Context, submissionID string) (domain.SaleRecord, error) {
	var record domain.SaleRecord
	err := r.db.QueryRowContext(ctx, `
		SELECT sale_id, recorded_at, client, cedula, items_summary,
		       total_usd, total_bs, payment_method, financed, receipt_url
		FROM sales
		WHERE submission_id = $1
	`, submissionID).Scan(
		&record.SaleID, &record.RecordedAt, &record.Client, &record.Cedula,
		&record.ItemsSummary, &record.TotalUSD, &record.TotalBs,
		&record.PaymentMethod, &record.Financed, &record.ReceiptURL,
	)
	if err != nil {
		return domain.SaleRecord{}, fmt.Errorf("select sale by submission: %w", err)
	}
	return record, nil
}

func scanSaleRecord(rows *sql.Rows) (domain.SaleRecord, error) {
	var record domain.SaleRecord
	if err := rows.Scan(
		&record.SaleID, &record.RecordedAt, &record.Client, &record.Cedula,
		&record.ItemsSummary, &record.TotalUSD, &record.TotalBs,
		&record.PaymentMethod, &record.Financed, &record.ReceiptURL,
	); err != nil {
		return domain.SaleRecord{}, fmt.Errorf("scan sale row: %w", err)
	}
	return record, nil
}

var _ domain.SalesLedger = (*salesRepository)(nil)
