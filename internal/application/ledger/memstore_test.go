package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/mpvestiario/backend/internal/domain/article"
	"github.com/mpvestiario/backend/internal/domain/ledger"
	"github.com/mpvestiario/backend/internal/domain/personnel"
	"github.com/mpvestiario/backend/internal/domain/shared"
)

// memStore is an in-memory store with the same conditional write semantics
// as the SQL repositories. Its transaction scope snapshots the state and
// restores it when the function fails.
type memStore struct {
	mu          sync.Mutex
	articles    map[uuid.UUID]article.Article
	people      map[uuid.UUID]personnel.Person
	assignments map[uuid.UUID]ledger.Assignment
	movements   []ledger.StockMovement

	// failures injects errors keyed by operation name
	failures map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		articles:    make(map[uuid.UUID]article.Article),
		people:      make(map[uuid.UUID]personnel.Person),
		assignments: make(map[uuid.UUID]ledger.Assignment),
		failures:    make(map[string]error),
	}
}

func (s *memStore) failOn(op string, err error) {
	s.failures[op] = err
}

func (s *memStore) fail(op string) error {
	return s.failures[op]
}

func (s *memStore) addArticle(quantity int) *article.Article {
	a, err := article.NewArticle(article.Details{
		Name:   "Polo",
		Size:   "M",
		Season: article.SeasonSummer,
		Type:   article.TypeShirt,
	}, quantity)
	if err != nil {
		panic(err)
	}
	s.articles[a.ID] = *a
	m, _ := ledger.NewStockMovement(a.ID, ledger.MovementReceipt, quantity, quantity)
	s.movements = append(s.movements, *m)
	return a
}

func (s *memStore) addPerson(name string) *personnel.Person {
	p, err := personnel.NewPerson(personnel.Profile{Name: name})
	if err != nil {
		panic(err)
	}
	s.people[p.ID] = *p
	return p
}

func (s *memStore) stock(id uuid.UUID) int {
	return s.articles[id].Quantity
}

func (s *memStore) issued(articleID uuid.UUID) int {
	total := 0
	for _, a := range s.assignments {
		if a.ArticleID == articleID {
			total += a.Quantity
		}
	}
	return total
}

func (s *memStore) snapshot() func() {
	articles := make(map[uuid.UUID]article.Article, len(s.articles))
	for k, v := range s.articles {
		articles[k] = v
	}
	people := make(map[uuid.UUID]personnel.Person, len(s.people))
	for k, v := range s.people {
		people[k] = v
	}
	assignments := make(map[uuid.UUID]ledger.Assignment, len(s.assignments))
	for k, v := range s.assignments {
		assignments[k] = v
	}
	movements := append([]ledger.StockMovement(nil), s.movements...)
	return func() {
		s.articles = articles
		s.people = people
		s.assignments = assignments
		s.movements = movements
	}
}

// memTxScope runs fn under the store lock and rolls back on error
type memTxScope struct {
	store *memStore
}

func (t *memTxScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	restore := t.store.snapshot()
	if err := fn(memRepos{t.store}); err != nil {
		restore()
		return err
	}
	return nil
}

type memRepos struct {
	store *memStore
}

func (r memRepos) Articles() article.Repository {
	return memArticles(r)
}

func (r memRepos) People() personnel.Repository {
	return memPeople(r)
}

func (r memRepos) Assignments() ledger.AssignmentRepository {
	return memAssignments(r)
}

func (r memRepos) Movements() ledger.StockMovementRepository {
	return memMovements(r)
}

type memArticles struct{ store *memStore }

func (r memArticles) FindByID(_ context.Context, id uuid.UUID) (*article.Article, error) {
	if err := r.store.fail("article.find"); err != nil {
		return nil, err
	}
	a, ok := r.store.articles[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &a, nil
}

func (r memArticles) FindBySupplierCode(_ context.Context, code string) (*article.Article, error) {
	for _, a := range r.store.articles {
		if a.SupplierCode == code {
			return &a, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r memArticles) FindAll(_ context.Context, _ article.Filter) ([]article.Article, error) {
	out := make([]article.Article, 0, len(r.store.articles))
	for _, a := range r.store.articles {
		out = append(out, a)
	}
	return out, nil
}

func (r memArticles) Count(_ context.Context, _ article.Filter) (int64, error) {
	return int64(len(r.store.articles)), nil
}

func (r memArticles) Quantities(_ context.Context) (map[uuid.UUID]int, error) {
	out := make(map[uuid.UUID]int, len(r.store.articles))
	for id, a := range r.store.articles {
		out[id] = a.Quantity
	}
	return out, nil
}

func (r memArticles) Create(_ context.Context, a *article.Article) error {
	r.store.articles[a.ID] = *a
	return nil
}

func (r memArticles) Update(_ context.Context, a *article.Article) error {
	if _, ok := r.store.articles[a.ID]; !ok {
		return shared.ErrNotFound
	}
	r.store.articles[a.ID] = *a
	return nil
}

func (r memArticles) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.store.articles[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.store.articles, id)
	return nil
}

func (r memArticles) DecrementQuantity(_ context.Context, id uuid.UUID, qty int) error {
	if err := r.store.fail("article.decrement"); err != nil {
		return err
	}
	a, ok := r.store.articles[id]
	if !ok {
		return shared.ErrNotFound
	}
	if a.Quantity < qty {
		return shared.ErrInsufficientStock
	}
	a.Quantity -= qty
	r.store.articles[id] = a
	return nil
}

func (r memArticles) IncrementQuantity(_ context.Context, id uuid.UUID, qty int) error {
	if err := r.store.fail("article.increment"); err != nil {
		return err
	}
	a, ok := r.store.articles[id]
	if !ok {
		return shared.ErrNotFound
	}
	a.Quantity += qty
	r.store.articles[id] = a
	return nil
}

func (r memArticles) SetQuantity(_ context.Context, id uuid.UUID, expected, quantity int) error {
	a, ok := r.store.articles[id]
	if !ok {
		return shared.ErrNotFound
	}
	if a.Quantity != expected {
		return shared.ErrConcurrencyConflict
	}
	a.Quantity = quantity
	r.store.articles[id] = a
	return nil
}

type memPeople struct{ store *memStore }

func (r memPeople) FindByID(_ context.Context, id uuid.UUID) (*personnel.Person, error) {
	p, ok := r.store.people[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &p, nil
}

func (r memPeople) FindAll(_ context.Context, _ personnel.Filter) ([]personnel.Person, error) {
	out := make([]personnel.Person, 0, len(r.store.people))
	for _, p := range r.store.people {
		out = append(out, p)
	}
	return out, nil
}

func (r memPeople) Count(_ context.Context, _ personnel.Filter) (int64, error) {
	return int64(len(r.store.people)), nil
}

func (r memPeople) Create(_ context.Context, p *personnel.Person) error {
	r.store.people[p.ID] = *p
	return nil
}

func (r memPeople) Update(_ context.Context, p *personnel.Person) error {
	if _, ok := r.store.people[p.ID]; !ok {
		return shared.ErrNotFound
	}
	r.store.people[p.ID] = *p
	return nil
}

func (r memPeople) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.store.people, id)
	return nil
}

type memAssignments struct{ store *memStore }

func (r memAssignments) FindByID(_ context.Context, id uuid.UUID) (*ledger.Assignment, error) {
	a, ok := r.store.assignments[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &a, nil
}

func (r memAssignments) Insert(_ context.Context, a *ledger.Assignment) error {
	if err := r.store.fail("assignment.insert"); err != nil {
		return err
	}
	stored := *a
	stored.PullEvents()
	r.store.assignments[a.ID] = stored
	return nil
}

func (r memAssignments) UpdateQuantity(_ context.Context, id uuid.UUID, expected, quantity int) error {
	if err := r.store.fail("assignment.update"); err != nil {
		return err
	}
	a, ok := r.store.assignments[id]
	if !ok {
		return shared.ErrNotFound
	}
	if a.Quantity != expected {
		return shared.ErrConcurrencyConflict
	}
	a.Quantity = quantity
	r.store.assignments[id] = a
	return nil
}

func (r memAssignments) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.store.assignments[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.store.assignments, id)
	return nil
}

func (r memAssignments) CountByArticle(_ context.Context, articleID uuid.UUID) (int64, error) {
	var n int64
	for _, a := range r.store.assignments {
		if a.ArticleID == articleID {
			n++
		}
	}
	return n, nil
}

func (r memAssignments) CountByPerson(_ context.Context, personID uuid.UUID) (int64, error) {
	var n int64
	for _, a := range r.store.assignments {
		if a.PersonID == personID {
			n++
		}
	}
	return n, nil
}

func (r memAssignments) SumQuantityByArticle(_ context.Context) (map[uuid.UUID]int, error) {
	out := make(map[uuid.UUID]int)
	for _, a := range r.store.assignments {
		out[a.ArticleID] += a.Quantity
	}
	return out, nil
}

func (r memAssignments) ListHistory(_ context.Context, filter ledger.HistoryFilter) ([]ledger.HistoryEntry, int64, error) {
	out := make([]ledger.HistoryEntry, 0)
	for _, a := range r.store.assignments {
		if filter.PersonID != nil && a.PersonID != *filter.PersonID {
			continue
		}
		out = append(out, ledger.HistoryEntry{
			ID:           a.ID,
			PersonID:     a.PersonID,
			PersonName:   r.store.people[a.PersonID].Name,
			ArticleID:    a.ArticleID,
			ArticleName:  r.store.articles[a.ArticleID].Name,
			Quantity:     a.Quantity,
			DeliveryDate: a.DeliveryDate,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeliveryDate.After(out[j].DeliveryDate) })
	return out, int64(len(out)), nil
}

type memMovements struct{ store *memStore }

func (r memMovements) Append(_ context.Context, m *ledger.StockMovement) error {
	if err := r.store.fail("movement.append"); err != nil {
		return err
	}
	r.store.movements = append(r.store.movements, *m)
	return nil
}

func (r memMovements) FindByArticle(_ context.Context, articleID uuid.UUID, _ shared.Filter) ([]ledger.StockMovement, int64, error) {
	out := make([]ledger.StockMovement, 0)
	for i := len(r.store.movements) - 1; i >= 0; i-- {
		if r.store.movements[i].ArticleID == articleID {
			out = append(out, r.store.movements[i])
		}
	}
	return out, int64(len(out)), nil
}

func (r memMovements) Totals(_ context.Context) ([]ledger.MovementTotals, error) {
	byArticle := make(map[uuid.UUID]*ledger.MovementTotals)
	for _, m := range r.store.movements {
		t, ok := byArticle[m.ArticleID]
		if !ok {
			t = &ledger.MovementTotals{ArticleID: m.ArticleID}
			byArticle[m.ArticleID] = t
		}
		t.Net += m.Delta
		if m.Type.AffectsAssignments() {
			t.AssignmentNet += m.Delta
		}
	}
	out := make([]ledger.MovementTotals, 0, len(byArticle))
	for _, t := range byArticle {
		out = append(out, *t)
	}
	return out, nil
}

// newTestLedger builds a ledger over a fresh in-memory store
func newTestLedger() (*StockLedger, *memStore) {
	store := newMemStore()
	repos := memRepos{store}
	l := NewStockLedger(&memTxScope{store: store}, memAssignments(repos), memMovements(repos))
	return l, store
}
