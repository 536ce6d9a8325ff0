package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mpvestiario/backend/internal/domain/article"
	"github.com/mpvestiario/backend/internal/domain/ledger"
	"github.com/mpvestiario/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Operation names used for metrics and logs
const (
	OperationAssign = "assign"
	OperationEdit   = "edit"
	OperationDelete = "delete"
	OperationAdjust = "adjust"
)

// MetricsRecorder receives ledger outcomes
type MetricsRecorder interface {
	// RecordCommit records a successful operation moving quantity units
	RecordCommit(ctx context.Context, operation string, quantity int)
	// RecordRejection records an operation refused with the given error code
	RecordRejection(ctx context.Context, operation, code string)
	// RecordDrift records the number of articles found inconsistent by reconciliation
	RecordDrift(ctx context.Context, articles int)
}

type noopMetrics struct{}

func (noopMetrics) RecordCommit(context.Context, string, int) {}

func (noopMetrics) RecordRejection(context.Context, string, string) {}

func (noopMetrics) RecordDrift(context.Context, int) {}

// StockLedger keeps article stock consistent with the set of active assignments.
//
// Every operation reads the current stock inside its transaction, validates,
// and applies the assignment write and the stock write together. Stock is
// only ever decremented through the conditional StockWriter.DecrementQuantity,
// so two concurrent requests can never over-issue an article.
type StockLedger struct {
	txScope           TransactionScope
	assignments       ledger.AssignmentRepository
	movements         ledger.StockMovementRepository
	eventPublisher    shared.EventPublisher
	metrics           MetricsRecorder
	criticalThreshold int
	resolvePhoto      func(ctx context.Context, ref string) string
}

// NewStockLedger creates a new StockLedger
func NewStockLedger(
	txScope TransactionScope,
	assignments ledger.AssignmentRepository,
	movements ledger.StockMovementRepository,
) *StockLedger {
	return &StockLedger{
		txScope:           txScope,
		assignments:       assignments,
		movements:         movements,
		metrics:           noopMetrics{},
		criticalThreshold: article.DefaultCriticalThreshold,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *StockLedger) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the metrics recorder
func (s *StockLedger) SetMetrics(metrics MetricsRecorder) {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	s.metrics = metrics
}

// SetCriticalThreshold sets the stock level that raises StockCritical events
func (s *StockLedger) SetCriticalThreshold(threshold int) {
	s.criticalThreshold = threshold
}

// SetPhotoResolver sets the function that turns stored photo references in
// history entries into URLs a client can load
func (s *StockLedger) SetPhotoResolver(resolve func(ctx context.Context, ref string) string) {
	s.resolvePhoto = resolve
}

// CommitAssign issues req.Quantity units of an article to a person and
// decrements the article stock by the same amount.
func (s *StockLedger) CommitAssign(ctx context.Context, req CommitAssignRequest) (*CommitResponse, error) {
	var (
		assignment *ledger.Assignment
		balance    int
	)

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if req.PersonID == uuid.Nil {
			return shared.NewValidationError("Person is required")
		}
		if req.ArticleID == uuid.Nil {
			return shared.NewValidationError("Article is required")
		}
		if err := ledger.ValidateQuantity(req.Quantity); err != nil {
			return err
		}

		person, err := repos.People().FindByID(ctx, req.PersonID)
		if err != nil {
			return lookupError("Person", err)
		}
		if err := person.CanReceive(); err != nil {
			return err
		}

		art, err := repos.Articles().FindByID(ctx, req.ArticleID)
		if err != nil {
			return lookupError("Article", err)
		}
		if err := ledger.CheckIssue(art.Quantity, req.Quantity); err != nil {
			return err
		}

		var deliveryDate time.Time
		if req.DeliveryDate != nil {
			deliveryDate = *req.DeliveryDate
		}
		assignment, err = ledger.NewAssignment(person.ID, art.ID, req.Quantity, deliveryDate, priceSnapshot(art.UnitPrice))
		if err != nil {
			return err
		}

		// The conditional decrement runs first so the article row is locked
		// before the assignment is written.
		if err := repos.Articles().DecrementQuantity(ctx, art.ID, req.Quantity); err != nil {
			return stockWriteError("decrement stock", err, req.Quantity, art.Quantity)
		}
		if err := repos.Assignments().Insert(ctx, assignment); err != nil {
			return storageError("insert assignment", err)
		}

		balance, err = currentStock(ctx, repos, art.ID)
		if err != nil {
			return err
		}
		return appendMovement(ctx, repos, art.ID, ledger.MovementAssign, -req.Quantity, balance, &assignment.ID, "")
	})
	if err != nil {
		s.reject(ctx, OperationAssign, err)
		return nil, err
	}

	s.metrics.RecordCommit(ctx, OperationAssign, assignment.Quantity)
	s.publish(ctx, assignment, assignment.ArticleID, balance)

	return &CommitResponse{
		Assignment:   ToAssignmentResponse(assignment),
		ArticleStock: balance,
	}, nil
}

// CommitEdit changes the quantity of an assignment and moves the difference
// between stock and the assignment. A smaller quantity returns units to stock.
func (s *StockLedger) CommitEdit(ctx context.Context, assignmentID uuid.UUID, req CommitEditRequest) (*CommitResponse, error) {
	var (
		assignment *ledger.Assignment
		balance    int
		delta      int
	)

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		assignment, err = repos.Assignments().FindByID(ctx, assignmentID)
		if err != nil {
			return lookupError("Assignment", err)
		}
		art, err := repos.Articles().FindByID(ctx, assignment.ArticleID)
		if err != nil {
			return lookupError("Article", err)
		}

		oldQuantity := assignment.Quantity
		delta, _, err = ledger.ProjectEdit(art.Quantity, oldQuantity, req.Quantity)
		if err != nil {
			return err
		}
		if delta == 0 {
			balance = art.Quantity
			return nil
		}
		if _, err := assignment.ChangeQuantity(req.Quantity); err != nil {
			return err
		}

		if err := repos.Assignments().UpdateQuantity(ctx, assignment.ID, oldQuantity, req.Quantity); err != nil {
			return storageError("update assignment", err)
		}
		if delta > 0 {
			err = repos.Articles().DecrementQuantity(ctx, art.ID, delta)
		} else {
			err = repos.Articles().IncrementQuantity(ctx, art.ID, -delta)
		}
		if err != nil {
			return stockWriteError("adjust stock", err, delta, art.Quantity)
		}

		balance, err = currentStock(ctx, repos, art.ID)
		if err != nil {
			return err
		}
		return appendMovement(ctx, repos, art.ID, ledger.MovementEdit, -delta, balance, &assignment.ID, "")
	})
	if err != nil {
		s.reject(ctx, OperationEdit, err)
		return nil, err
	}

	s.metrics.RecordCommit(ctx, OperationEdit, abs(delta))
	if delta != 0 {
		s.publish(ctx, assignment, assignment.ArticleID, balance)
	}

	return &CommitResponse{
		Assignment:   ToAssignmentResponse(assignment),
		ArticleStock: balance,
	}, nil
}

// CommitDelete removes an assignment and restores its units to stock.
// The record is deleted before stock is restored, so a second delete of the
// same assignment fails with NotFound instead of restoring twice.
func (s *StockLedger) CommitDelete(ctx context.Context, assignmentID uuid.UUID) (*DeleteResponse, error) {
	var (
		assignment *ledger.Assignment
		balance    int
	)

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		assignment, err = repos.Assignments().FindByID(ctx, assignmentID)
		if err != nil {
			return lookupError("Assignment", err)
		}

		if err := repos.Assignments().Delete(ctx, assignment.ID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewNotFoundError("Assignment")
			}
			return storageError("delete assignment", err)
		}
		if err := repos.Articles().IncrementQuantity(ctx, assignment.ArticleID, assignment.Quantity); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewNotFoundError("Article")
			}
			return storageError("restore stock", err)
		}

		balance, err = currentStock(ctx, repos, assignment.ArticleID)
		if err != nil {
			return err
		}
		assignment.MarkDeleted()
		return appendMovement(ctx, repos, assignment.ArticleID, ledger.MovementReturn, assignment.Quantity, balance, &assignment.ID, "")
	})
	if err != nil {
		s.reject(ctx, OperationDelete, err)
		return nil, err
	}

	s.metrics.RecordCommit(ctx, OperationDelete, assignment.Quantity)
	s.publish(ctx, assignment, assignment.ArticleID, balance)

	return &DeleteResponse{
		AssignmentID:     assignment.ID,
		ArticleID:        assignment.ArticleID,
		RestoredQuantity: assignment.Quantity,
		ArticleStock:     balance,
	}, nil
}

// AdjustStock applies a manual restock (positive delta) or write-off
// (negative delta) outside the assignment lifecycle.
func (s *StockLedger) AdjustStock(ctx context.Context, articleID uuid.UUID, req AdjustStockRequest) (*AdjustStockResponse, error) {
	var balance int

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if req.Delta == 0 {
			return shared.NewValidationError("Adjustment must not be zero")
		}
		art, err := repos.Articles().FindByID(ctx, articleID)
		if err != nil {
			return lookupError("Article", err)
		}
		if req.Delta < 0 {
			if err := ledger.CheckIssue(art.Quantity, -req.Delta); err != nil {
				return err
			}
			err = repos.Articles().DecrementQuantity(ctx, art.ID, -req.Delta)
		} else {
			err = repos.Articles().IncrementQuantity(ctx, art.ID, req.Delta)
		}
		if err != nil {
			return stockWriteError("adjust stock", err, -req.Delta, art.Quantity)
		}

		balance, err = currentStock(ctx, repos, art.ID)
		if err != nil {
			return err
		}
		return appendMovement(ctx, repos, art.ID, ledger.MovementAdjust, req.Delta, balance, nil, strings.TrimSpace(req.Note))
	})
	if err != nil {
		s.reject(ctx, OperationAdjust, err)
		return nil, err
	}

	s.metrics.RecordCommit(ctx, OperationAdjust, abs(req.Delta))
	s.publishStock(ctx, []shared.DomainEvent{ledger.NewStockAdjustedEvent(articleID, req.Delta, balance)}, articleID, balance)

	return &AdjustStockResponse{
		ArticleID:    articleID,
		Delta:        req.Delta,
		ArticleStock: balance,
	}, nil
}

// GetAssignment retrieves an assignment by ID
func (s *StockLedger) GetAssignment(ctx context.Context, id uuid.UUID) (*AssignmentResponse, error) {
	a, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError("Assignment", err)
	}
	response := ToAssignmentResponse(a)
	return &response, nil
}

// ListHistory lists delivered assignments, newest first
func (s *StockLedger) ListHistory(ctx context.Context, query HistoryQuery) ([]HistoryEntryResponse, int64, error) {
	filter := ledger.HistoryFilter{
		Filter:    shared.DefaultFilter(),
		PersonID:  query.PersonID,
		ArticleID: query.ArticleID,
		From:      query.From,
		To:        query.To,
	}
	if query.Page > 0 {
		filter.Page = query.Page
	}
	if query.PageSize > 0 {
		filter.PageSize = query.PageSize
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, 0, shared.NewValidationError("Date range end is before its start")
	}

	entries, total, err := s.assignments.ListHistory(ctx, filter)
	if err != nil {
		return nil, 0, storageError("list history", err)
	}
	responses := make([]HistoryEntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = ToHistoryEntryResponse(e)
		if s.resolvePhoto != nil && e.PhotoURL != "" {
			responses[i].PhotoURL = s.resolvePhoto(ctx, e.PhotoURL)
		}
	}
	return responses, total, nil
}

// ListMovements lists the stock journal of an article, newest first
func (s *StockLedger) ListMovements(ctx context.Context, articleID uuid.UUID, filter shared.Filter) ([]StockMovementResponse, int64, error) {
	movements, total, err := s.movements.FindByArticle(ctx, articleID, filter)
	if err != nil {
		return nil, 0, storageError("list movements", err)
	}
	responses := make([]StockMovementResponse, len(movements))
	for i, m := range movements {
		responses[i] = ToStockMovementResponse(m)
	}
	return responses, total, nil
}

// publish publishes the assignment's domain events plus a critical stock
// event when the article dropped to the threshold
func (s *StockLedger) publish(ctx context.Context, assignment *ledger.Assignment, articleID uuid.UUID, balance int) {
	s.publishStock(ctx, assignment.PullEvents(), articleID, balance)
}

func (s *StockLedger) publishStock(ctx context.Context, events []shared.DomainEvent, articleID uuid.UUID, balance int) {
	if s.eventPublisher == nil {
		return
	}
	if balance <= s.criticalThreshold {
		events = append(events, ledger.NewStockCriticalEvent(articleID, balance, s.criticalThreshold))
	}
	if len(events) == 0 {
		return
	}
	// Publish errors are logged by the event bus, not propagated
	_ = s.eventPublisher.Publish(ctx, events...)
}

func (s *StockLedger) reject(ctx context.Context, operation string, err error) {
	code := shared.CodeStorage
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code = domainErr.Code
	}
	s.metrics.RecordRejection(ctx, operation, code)
}

// currentStock re-reads the article inside the transaction after a write
func currentStock(ctx context.Context, repos TransactionalRepositories, articleID uuid.UUID) (int, error) {
	art, err := repos.Articles().FindByID(ctx, articleID)
	if err != nil {
		return 0, lookupError("Article", err)
	}
	return art.Quantity, nil
}

func appendMovement(
	ctx context.Context,
	repos TransactionalRepositories,
	articleID uuid.UUID,
	movementType ledger.MovementType,
	delta, balance int,
	assignmentID *uuid.UUID,
	note string,
) error {
	m, err := ledger.NewStockMovement(articleID, movementType, delta, balance)
	if err != nil {
		return err
	}
	if assignmentID != nil {
		m.ForAssignment(*assignmentID)
	}
	if note != "" {
		m.WithNote(note)
	}
	if err := repos.Movements().Append(ctx, m); err != nil {
		return storageError("record stock movement", err)
	}
	return nil
}

// lookupError turns a repository miss into a NotFound naming the resource
func lookupError(resource string, err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewNotFoundError(resource)
	}
	return storageError("load "+strings.ToLower(resource), err)
}

// stockWriteError keeps the guard failures of a conditional stock write and
// wraps everything else as a storage failure
func stockWriteError(op string, err error, requested, available int) error {
	switch {
	case errors.Is(err, shared.ErrInsufficientStock):
		// The row changed between the read and the guarded write
		return shared.NewInsufficientStockError(requested, available)
	case errors.Is(err, shared.ErrNotFound):
		return shared.NewNotFoundError("Article")
	}
	return storageError(op, err)
}

// storageError passes domain errors through and wraps anything else
func storageError(op string, err error) error {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return shared.NewStorageError(op, err)
}

func priceSnapshot(price decimal.Decimal) *decimal.Decimal {
	if price.IsZero() {
		return nil
	}
	p := price
	return &p
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
