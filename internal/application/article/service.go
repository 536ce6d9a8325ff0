package article

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	ledgerapp "github.com/mpvestiario/backend/internal/application/ledger"
	"github.com/mpvestiario/backend/internal/domain/article"
	"github.com/mpvestiario/backend/internal/domain/ledger"
	"github.com/mpvestiario/backend/internal/domain/shared"
)

// PhotoKeyPrefix marks photo references that live in object storage
const PhotoKeyPrefix = "articles/"

// MaxPhotoSize is the largest accepted photo upload in bytes
const MaxPhotoSize = 5 << 20

// AllowedPhotoTypes lists accepted photo content types.
// SVG is excluded because it can carry scripts.
var AllowedPhotoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// PhotoStorage stores article photos.
// Implemented by the infrastructure layer (S3 or in-memory).
type PhotoStorage interface {
	// Upload stores data under storageKey
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error

	// GenerateDownloadURL returns a presigned URL for reading the object
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject removes an object
	DeleteObject(ctx context.Context, storageKey string) error
}

// ArticleService handles article management
type ArticleService struct {
	articleRepo       article.Repository
	txScope           ledgerapp.TransactionScope
	photos            PhotoStorage
	eventPublisher    shared.EventPublisher
	criticalThreshold int
	photoURLExpiry    time.Duration
}

// NewArticleService creates a new ArticleService
func NewArticleService(articleRepo article.Repository, txScope ledgerapp.TransactionScope) *ArticleService {
	return &ArticleService{
		articleRepo:       articleRepo,
		txScope:           txScope,
		criticalThreshold: article.DefaultCriticalThreshold,
		photoURLExpiry:    time.Hour,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ArticleService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetPhotoStorage enables photo uploads
func (s *ArticleService) SetPhotoStorage(photos PhotoStorage, urlExpiry time.Duration) {
	s.photos = photos
	if urlExpiry > 0 {
		s.photoURLExpiry = urlExpiry
	}
}

// SetCriticalThreshold sets the stock level at or below which articles are critical
func (s *ArticleService) SetCriticalThreshold(threshold int) {
	s.criticalThreshold = threshold
}

// CriticalThreshold returns the configured critical stock level
func (s *ArticleService) CriticalThreshold() int {
	return s.criticalThreshold
}

// Create creates an article and records its opening stock in the journal
func (s *ArticleService) Create(ctx context.Context, req CreateArticleRequest) (*ArticleResponse, error) {
	a, err := article.NewArticle(req.details(), req.Quantity)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos ledgerapp.TransactionalRepositories) error {
		if err := ensureUniqueCode(ctx, repos.Articles(), a.SupplierCode, uuid.Nil); err != nil {
			return err
		}
		if err := repos.Articles().Create(ctx, a); err != nil {
			return err
		}
		if a.Quantity == 0 {
			return nil
		}
		m, err := ledger.NewStockMovement(a.ID, ledger.MovementReceipt, a.Quantity, a.Quantity)
		if err != nil {
			return err
		}
		return repos.Movements().Append(ctx, m.WithNote("opening stock"))
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, a)
	response := s.toResponse(ctx, a)
	return &response, nil
}

// GetByID retrieves an article by ID
func (s *ArticleService) GetByID(ctx context.Context, id uuid.UUID) (*ArticleResponse, error) {
	a, err := s.articleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := s.toResponse(ctx, a)
	return &response, nil
}

// LookupByCode finds an article by supplier code, as read by the barcode scanner
func (s *ArticleService) LookupByCode(ctx context.Context, code string) (*ArticleResponse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewValidationError("Code is required")
	}
	a, err := s.articleRepo.FindBySupplierCode(ctx, code)
	if err != nil {
		return nil, err
	}
	response := s.toResponse(ctx, a)
	return &response, nil
}

// List retrieves articles with filtering and pagination
func (s *ArticleService) List(ctx context.Context, filter ArticleListFilter) ([]ArticleResponse, int64, error) {
	domainFilter := s.domainFilter(filter)

	articles, err := s.articleRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.articleRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ArticleResponse, len(articles))
	for i := range articles {
		responses[i] = s.toResponse(ctx, &articles[i])
	}
	return responses, total, nil
}

// Groups returns articles grouped by their group key (the name when no
// group is set). Groups are ordered by name, variants by size.
func (s *ArticleService) Groups(ctx context.Context, filter ArticleListFilter) ([]ArticleGroupResponse, error) {
	domainFilter := s.domainFilter(filter)
	domainFilter.Page = 1
	domainFilter.PageSize = 0

	articles, err := s.articleRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]*ArticleGroupResponse)
	keys := make([]string, 0)
	for i := range articles {
		a := &articles[i]
		key := a.GroupKey()
		g, ok := byKey[key]
		if !ok {
			g = &ArticleGroupResponse{Key: key, Type: string(a.Type), Season: string(a.Season)}
			byKey[key] = g
			keys = append(keys, key)
		}
		g.TotalQuantity += a.Quantity
		g.Variants = append(g.Variants, s.toResponse(ctx, a))
	}

	shared.SortNames(keys)
	groups := make([]ArticleGroupResponse, 0, len(keys))
	for _, key := range keys {
		g := byKey[key]
		sort.SliceStable(g.Variants, func(i, j int) bool {
			return CompareSizes(g.Variants[i].Size, g.Variants[j].Size) < 0
		})
		groups = append(groups, *g)
	}
	return groups, nil
}

// Update updates the descriptive fields of an article
func (s *ArticleService) Update(ctx context.Context, id uuid.UUID, req UpdateArticleRequest) (*ArticleResponse, error) {
	a, err := s.articleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ensureUniqueCode(ctx, s.articleRepo, strings.TrimSpace(req.SupplierCode), a.ID); err != nil {
		return nil, err
	}
	details := req.details()
	previous := a.PhotoURL
	if details.PhotoURL == "" {
		details.PhotoURL = previous
	}
	if err := a.Update(details); err != nil {
		return nil, err
	}
	if err := s.articleRepo.Update(ctx, a); err != nil {
		return nil, err
	}
	if a.PhotoURL != previous {
		s.removePhoto(ctx, previous)
	}

	s.publishDomainEvents(ctx, a)
	response := s.toResponse(ctx, a)
	return &response, nil
}

// Delete deletes an article. Articles still held by someone cannot be
// deleted, otherwise their assignments would lose the stock they came from.
func (s *ArticleService) Delete(ctx context.Context, id uuid.UUID) error {
	var photo string
	err := s.txScope.Execute(ctx, func(repos ledgerapp.TransactionalRepositories) error {
		a, err := repos.Articles().FindByID(ctx, id)
		if err != nil {
			return err
		}
		held, err := repos.Assignments().CountByArticle(ctx, id)
		if err != nil {
			return err
		}
		if held > 0 {
			return shared.NewDomainError(shared.CodeInvalidState,
				fmt.Sprintf("Article has %d active assignments; delete them first", held))
		}
		photo = a.PhotoURL
		return repos.Articles().Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.removePhoto(ctx, photo)
	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(ctx, article.NewArticleDeletedEvent(id))
	}
	return nil
}

// UploadPhoto stores a new photo for an article and replaces the old one
func (s *ArticleService) UploadPhoto(ctx context.Context, id uuid.UUID, contentType string, data []byte) (*PhotoUploadResponse, error) {
	if s.photos == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Photo storage is not configured")
	}
	ext, ok := AllowedPhotoTypes[contentType]
	if !ok {
		return nil, shared.NewValidationError(fmt.Sprintf("Content type '%s' is not allowed for photos", contentType))
	}
	if len(data) == 0 {
		return nil, shared.NewValidationError("Photo is empty")
	}
	if len(data) > MaxPhotoSize {
		return nil, shared.NewValidationError(fmt.Sprintf("Photo exceeds %d bytes", MaxPhotoSize))
	}

	a, err := s.articleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s%s/%s%s", PhotoKeyPrefix, a.ID, uuid.New(), ext)
	if err := s.photos.Upload(ctx, key, data, contentType); err != nil {
		return nil, shared.NewStorageError("upload photo", err)
	}

	previous := a.PhotoURL
	a.SetPhoto(key)
	if err := s.articleRepo.Update(ctx, a); err != nil {
		_ = s.photos.DeleteObject(ctx, key)
		return nil, err
	}
	s.removePhoto(ctx, previous)
	s.publishDomainEvents(ctx, a)

	url, expiresAt, err := s.photos.GenerateDownloadURL(ctx, key, s.photoURLExpiry)
	if err != nil {
		return nil, shared.NewStorageError("sign photo url", err)
	}
	return &PhotoUploadResponse{ArticleID: a.ID, PhotoURL: url, ExpiresAt: expiresAt}, nil
}

func (s *ArticleService) domainFilter(filter ArticleListFilter) article.Filter {
	base := shared.DefaultFilter()
	base.Search = strings.TrimSpace(filter.Search)
	if filter.Page > 0 {
		base.Page = filter.Page
	}
	if filter.PageSize > 0 {
		base.PageSize = filter.PageSize
	}
	base.OrderBy = "name"
	if filter.OrderBy != "" {
		base.OrderBy = filter.OrderBy
	}
	base.OrderDir = "asc"
	if filter.OrderDir != "" {
		base.OrderDir = filter.OrderDir
	}
	return article.Filter{
		Filter:       base,
		Type:         article.Type(filter.Type),
		Season:       article.Season(filter.Season),
		Group:        strings.TrimSpace(filter.Group),
		CriticalOnly: filter.CriticalOnly,
		Threshold:    s.criticalThreshold,
	}
}

// ResolvePhotoURL turns a stored photo key into a signed URL. External URLs
// and keys that cannot be signed are returned unchanged.
func (s *ArticleService) ResolvePhotoURL(ctx context.Context, ref string) string {
	if s.photos == nil || !strings.HasPrefix(ref, PhotoKeyPrefix) {
		return ref
	}
	url, _, err := s.photos.GenerateDownloadURL(ctx, ref, s.photoURLExpiry)
	if err != nil {
		return ref
	}
	return url
}

func (s *ArticleService) toResponse(ctx context.Context, a *article.Article) ArticleResponse {
	response := ToArticleResponse(a, s.criticalThreshold)
	response.PhotoURL = s.ResolvePhotoURL(ctx, a.PhotoURL)
	return response
}

func (s *ArticleService) removePhoto(ctx context.Context, ref string) {
	if s.photos == nil || !strings.HasPrefix(ref, PhotoKeyPrefix) {
		return
	}
	_ = s.photos.DeleteObject(ctx, ref)
}

func (s *ArticleService) publishDomainEvents(ctx context.Context, a *article.Article) {
	if s.eventPublisher == nil {
		return
	}
	if events := a.PullEvents(); len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
	}
}

func ensureUniqueCode(ctx context.Context, repo article.Repository, code string, self uuid.UUID) error {
	if code == "" {
		return nil
	}
	existing, err := repo.FindBySupplierCode(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != self {
		return shared.NewDomainError(shared.CodeAlreadyExists, "An article with this supplier code already exists")
	}
	return nil
}
