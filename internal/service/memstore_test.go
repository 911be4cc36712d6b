package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/mailer"
	"github.com/spec-kit/helpdesk/internal/repository"
)

var errUnique = &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}

// memStore backs every fake repository so services see one consistent state.
type memStore struct {
	mu sync.Mutex

	base  time.Time
	ticks int

	users         []domain.User
	categories    []domain.Category
	customers     []domain.Customer
	tickets       []domain.Ticket
	sequences     map[string]int
	assignments   []domain.Assignment
	links         []domain.DependentTicket
	comments      []domain.TicketComment
	files         []domain.TicketFile
	history       []domain.TicketHistory
	requests      []domain.RequestPermission
	pairings      []domain.SupervisorAgent
	notifications []domain.Notification
}

func newMemStore() *memStore {
	return &memStore{
		base:      time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		sequences: map[string]int{},
	}
}

// tick returns a strictly increasing timestamp. Callers hold mu.
func (m *memStore) tick() time.Time {
	m.ticks++
	return m.base.Add(time.Duration(m.ticks) * time.Second)
}

func (m *memStore) clock() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tick()
}

func (m *memStore) addUser(name string, role domain.Role, categoryID *string) domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	user := domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@helpdesk.test",
		PasswordHash: "x",
		Role:         role,
		CategoryID:   categoryID,
		CreatedAt:    m.tick(),
	}
	m.users = append(m.users, user)
	return user
}

func (m *memStore) addCategory(name string) domain.Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	category := domain.Category{ID: uuid.NewString(), Name: name, CreatedAt: m.tick()}
	m.categories = append(m.categories, category)
	return category
}

func (m *memStore) addCustomer(name string) domain.Customer {
	m.mu.Lock()
	defer m.mu.Unlock()
	customer := domain.Customer{ID: uuid.NewString(), Name: name, Email: strings.ToLower(name) + "@customer.test", CreatedAt: m.tick()}
	m.customers = append(m.customers, customer)
	return customer
}

func (m *memStore) ticketByCustomID(customID string) (domain.Ticket, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tickets {
		if t.CustomTicketID == customID {
			return t, true
		}
	}
	return domain.Ticket{}, false
}

func (m *memStore) assignmentsFor(ticketID string) []domain.Assignment {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Assignment
	for _, a := range m.assignments {
		if a.TicketID == ticketID {
			out = append(out, a)
		}
	}
	return out
}

func (m *memStore) requestByID(id string) (domain.RequestPermission, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.requests {
		if r.ID == id {
			return r, true
		}
	}
	return domain.RequestPermission{}, false
}

func (m *memStore) userByID(id string) (domain.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, true
		}
	}
	return domain.User{}, false
}

// users

type fakeUsers struct{ *memStore }

func (f fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := f.userByID(id); ok {
		return &u, nil
	}
	return nil, pgx.ErrNoRows
}

func (f fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f fakeUsers) ListByIDs(_ context.Context, ids []string) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []domain.User
	for _, u := range f.users {
		if want[u.ID] {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f fakeUsers) ListEngineersByCategory(_ context.Context, categoryID string) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.User
	for _, u := range f.users {
		if u.Role == domain.RoleEngineer && u.CategoryID != nil && *u.CategoryID == categoryID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f fakeUsers) ListByRoles(_ context.Context, roles []domain.Role) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.User
	for _, u := range f.users {
		if len(roles) == 0 {
			out = append(out, u)
			continue
		}
		for _, role := range roles {
			if u.Role == role {
				out = append(out, u)
				break
			}
		}
	}
	return out, nil
}

func (f fakeUsers) UpdateProfile(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID != user.ID && strings.EqualFold(u.Email, user.Email) {
			return errUnique
		}
	}
	for i := range f.users {
		if f.users[i].ID == user.ID {
			user.UpdatedAt = f.tick()
			f.users[i] = *user
			return nil
		}
	}
	return pgx.ErrNoRows
}

// categories and customers

type fakeCategories struct{ *memStore }

func (f fakeCategories) GetByID(_ context.Context, id string) (*domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.categories {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f fakeCategories) GetByName(_ context.Context, name string) (*domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.categories {
		if c.Name == name {
			c := c
			return &c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeCustomers struct{ *memStore }

func (f fakeCustomers) GetByName(_ context.Context, name string) (*domain.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.customers {
		if c.Name == name {
			c := c
			return &c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// tickets

type fakeTickets struct{ *memStore }

func (f fakeTickets) Create(_ context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tickets {
		if t.CustomTicketID == ticket.CustomTicketID {
			return errUnique
		}
	}
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = f.tick()
	ticket.UpdatedAt = ticket.CreatedAt
	f.tickets = append(f.tickets, *ticket)
	return nil
}

func (f fakeTickets) Update(_ context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tickets {
		if f.tickets[i].ID == ticket.ID {
			ticket.UpdatedAt = f.tick()
			f.tickets[i] = *ticket
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f fakeTickets) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tickets {
		if f.tickets[i].ID == id {
			f.tickets = append(f.tickets[:i], f.tickets[i+1:]...)
			kept := f.assignments[:0]
			for _, a := range f.assignments {
				if a.TicketID != id {
					kept = append(kept, a)
				}
			}
			f.assignments = kept
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f fakeTickets) GetByCustomID(_ context.Context, customTicketID string) (*domain.Ticket, error) {
	if t, ok := f.ticketByCustomID(customTicketID); ok {
		return &t, nil
	}
	return nil, pgx.ErrNoRows
}

func (f fakeTickets) ListActive(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Ticket
	for _, t := range f.tickets {
		if t.IsCancelled() {
			continue
		}
		if filter.CategoryID != nil && t.CategoryID != *filter.CategoryID {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f fakeTickets) NextSequence(_ context.Context, prefix string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, seeded := f.sequences[prefix]; !seeded {
		highest := 0
		for _, t := range f.tickets {
			if !strings.HasPrefix(t.CustomTicketID, prefix) {
				continue
			}
			if n, err := strconv.Atoi(strings.TrimPrefix(t.CustomTicketID, prefix)); err == nil && n > highest {
				highest = n
			}
		}
		f.sequences[prefix] = highest
	}
	f.sequences[prefix]++
	return f.sequences[prefix], nil
}

// addTicket stores a ticket row directly, bypassing id generation.
func (m *memStore) addTicket(category domain.Category, customTicketID string) domain.Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	ticket := domain.Ticket{
		ID:             uuid.NewString(),
		CustomTicketID: customTicketID,
		CategoryID:     category.ID,
		Issue:          "imported",
		Priority:       domain.TicketPriorityLow,
		Status:         domain.TicketStatusPending,
		CreatedAt:      m.tick(),
	}
	ticket.UpdatedAt = ticket.CreatedAt
	m.tickets = append(m.tickets, ticket)
	return ticket
}

func (f fakeTickets) Stats(_ context.Context) (repository.TicketStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := repository.TicketStats{ByStatus: map[domain.TicketStatus]int{}}
	var (
		hours    float64
		resolved int
	)
	for _, t := range f.tickets {
		if t.IsCancelled() {
			continue
		}
		stats.Volume++
		stats.ByStatus[t.Status]++
		if t.Status == domain.TicketStatusResolved {
			resolved++
			hours += t.UpdatedAt.Sub(t.CreatedAt).Hours()
		}
	}
	if resolved > 0 {
		stats.AvgResolutionHours = hours / float64(resolved)
	}
	return stats, nil
}

// assignments

type fakeAssignments struct{ *memStore }

func (f fakeAssignments) Assign(_ context.Context, ticketID, engineerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.assignments {
		if a.TicketID == ticketID && a.EngineerID == engineerID {
			return errUnique
		}
	}
	f.assignments = append(f.assignments, domain.Assignment{TicketID: ticketID, EngineerID: engineerID, CreatedAt: f.tick()})
	for i := range f.tickets {
		if f.tickets[i].ID == ticketID && f.tickets[i].Status == domain.TicketStatusPending {
			f.tickets[i].Status = domain.TicketStatusInProgress
		}
	}
	return nil
}

func (f fakeAssignments) ListByTicket(_ context.Context, ticketID string) ([]domain.Assignment, error) {
	return f.assignmentsFor(ticketID), nil
}

func (f fakeAssignments) ListByEngineers(_ context.Context, engineerIDs []string) ([]domain.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := map[string]bool{}
	for _, id := range engineerIDs {
		want[id] = true
	}
	var out []domain.Assignment
	for _, a := range f.assignments {
		if want[a.EngineerID] {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f fakeAssignments) Unassign(_ context.Context, ticketID string, engineerIDs []string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := map[string]bool{}
	for _, id := range engineerIDs {
		want[id] = true
	}
	var (
		removed []string
		kept    []domain.Assignment
	)
	for _, a := range f.assignments {
		if a.TicketID == ticketID && want[a.EngineerID] {
			removed = append(removed, a.EngineerID)
			continue
		}
		kept = append(kept, a)
	}
	f.assignments = kept
	return removed, nil
}

// dependent tickets

type fakeLinks struct{ *memStore }

func (f fakeLinks) Create(_ context.Context, link *domain.DependentTicket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	link.ID = uuid.NewString()
	link.CreatedAt = f.tick()
	f.links = append(f.links, *link)
	return nil
}

func (f fakeLinks) ListParents(_ context.Context, childCustomID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, l := range f.links {
		if l.ChildCustomID == childCustomID {
			out = append(out, l.ParentCustomID)
		}
	}
	return out, nil
}

func (f fakeLinks) ListChildren(_ context.Context, parentCustomID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, l := range f.links {
		if l.ParentCustomID == parentCustomID {
			out = append(out, l.ChildCustomID)
		}
	}
	return out, nil
}

// comments, files and history

type fakeComments struct{ *memStore }

func (f fakeComments) Upsert(_ context.Context, comment *domain.TicketComment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if comment.ID == "" {
		comment.ID = uuid.NewString()
		comment.CreatedAt = f.tick()
		comment.UpdatedAt = comment.CreatedAt
		f.comments = append(f.comments, *comment)
		return nil
	}
	for i := range f.comments {
		if f.comments[i].ID == comment.ID && f.comments[i].TicketID == comment.TicketID && f.comments[i].AuthorID == comment.AuthorID {
			f.comments[i].Content = comment.Content
			f.comments[i].UpdatedAt = f.tick()
			*comment = f.comments[i]
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f fakeComments) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketComment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.TicketComment
	for _, c := range f.comments {
		if c.TicketID == ticketID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeFiles struct{ *memStore }

func (f fakeFiles) Attach(_ context.Context, file *domain.TicketFile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	file.ID = uuid.NewString()
	file.CreatedAt = f.tick()
	f.files = append(f.files, *file)
	return nil
}

func (f fakeFiles) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.TicketFile
	for _, file := range f.files {
		if file.TicketID == ticketID {
			out = append(out, file)
		}
	}
	return out, nil
}

type fakeHistory struct{ *memStore }

func (f fakeHistory) Create(_ context.Context, entry *domain.TicketHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry.ID = uuid.NewString()
	entry.CreatedAt = f.tick()
	f.history = append(f.history, *entry)
	return nil
}

func (f fakeHistory) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.TicketHistory
	for _, h := range f.history {
		if h.TicketID == ticketID {
			out = append(out, h)
		}
	}
	return out, nil
}

// requests and supervisors

type fakeRequests struct{ *memStore }

func (f fakeRequests) Create(_ context.Context, req *domain.RequestPermission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	req.ID = uuid.NewString()
	req.IssuedAt = f.tick()
	f.requests = append(f.requests, *req)
	return nil
}

func (f fakeRequests) GetByID(_ context.Context, id string) (*domain.RequestPermission, error) {
	if r, ok := f.requestByID(id); ok {
		return &r, nil
	}
	return nil, pgx.ErrNoRows
}

func (f fakeRequests) Resolve(_ context.Context, req *domain.RequestPermission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.requests {
		if f.requests[i].ID != req.ID {
			continue
		}
		if f.requests[i].Status != domain.RequestStatusPending {
			return repository.ErrRequestNotPending
		}
		stored := &f.requests[i]
		stored.Status = req.Status
		stored.ApprovedBy, stored.ApprovedAt = req.ApprovedBy, req.ApprovedAt
		stored.RejectedBy, stored.RejectedAt = req.RejectedBy, req.RejectedAt
		return nil
	}
	return repository.ErrRequestNotPending
}

func (f fakeRequests) FindProcessed(_ context.Context, requesterID, requestID string) (*domain.RequestPermission, error) {
	r, ok := f.requestByID(requestID)
	if !ok || r.RequesterID != requesterID || r.Status == domain.RequestStatusPending {
		return nil, pgx.ErrNoRows
	}
	return &r, nil
}

func (f fakeRequests) ListPending(_ context.Context) ([]domain.RequestPermission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.RequestPermission
	for _, r := range f.requests {
		if r.Status == domain.RequestStatusPending {
			out = append(out, r)
		}
	}
	return out, nil
}

func isResolved(r domain.RequestPermission) bool {
	return (r.ApprovedBy == nil) != (r.RejectedBy == nil)
}

func (f fakeRequests) CountResolved(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, r := range f.requests {
		if isResolved(r) {
			count++
		}
	}
	return count, nil
}

func (f fakeRequests) DeleteOldestResolved(_ context.Context, limit int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sort.SliceStable(f.requests, func(i, j int) bool { return f.requests[i].IssuedAt.Before(f.requests[j].IssuedAt) })
	var (
		kept    []domain.RequestPermission
		deleted int64
	)
	for _, r := range f.requests {
		if isResolved(r) && deleted < int64(limit) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	f.requests = kept
	return deleted, nil
}

func (f fakeRequests) MarkApplied(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.requests {
		if f.requests[i].ID == id {
			if f.requests[i].AppliedAt != nil {
				return repository.ErrRequestAlreadyApplied
			}
			f.requests[i].AppliedAt = &at
			return nil
		}
	}
	return repository.ErrRequestAlreadyApplied
}

func (f fakeRequests) CountByStatus(_ context.Context) (map[domain.RequestStatus]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[domain.RequestStatus]int{}
	for _, r := range f.requests {
		counts[r.Status]++
	}
	return counts, nil
}

type fakeSupervisors struct{ *memStore }

func (f fakeSupervisors) Pair(_ context.Context, pairing *domain.SupervisorAgent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pairings {
		if p.AgentID == pairing.AgentID {
			return errUnique
		}
	}
	pairing.CreatedAt = f.tick()
	f.pairings = append(f.pairings, *pairing)
	return nil
}

func (f fakeSupervisors) GetSupervisorID(_ context.Context, agentID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pairings {
		if p.AgentID == agentID {
			return p.SupervisorID, nil
		}
	}
	return "", pgx.ErrNoRows
}

// notifications

type fakeNotifications struct{ *memStore }

func (f fakeNotifications) CreateBatch(_ context.Context, notifications []domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range notifications {
		notifications[i].ID = uuid.NewString()
		notifications[i].CreatedAt = f.tick()
		f.notifications = append(f.notifications, notifications[i])
	}
	return nil
}

func (f fakeNotifications) ListByUser(_ context.Context, userID string, limit int) ([]domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Notification
	for i := len(f.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		if f.notifications[i].UserID == userID {
			out = append(out, f.notifications[i])
		}
	}
	return out, nil
}

// collaborators

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) byKind(kind mailer.Kind) []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []mailer.Message
	for _, msg := range m.sent {
		if msg.Kind == kind {
			out = append(out, msg)
		}
	}
	return out
}

type fakePublisher struct {
	mu        sync.Mutex
	published []domain.Notification
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, n domain.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, n)
	return p.err
}

var errBoom = errors.New("boom")

// fixture wires every service against one memStore.
type fixture struct {
	store         *memStore
	mail          *fakeMailer
	publisher     *fakePublisher
	dispatcher    events.Dispatcher
	tickets       *TicketService
	requests      *RequestPermissionService
	agents        *AgentService
	notifications *NotificationService
	metrics       *MetricsService
	auto          *AutoAssignmentPolicy
	resolver      *AvailabilityResolver
	ids           *TicketIDGenerator
	linker        *DependentTicketLinker

	billing   domain.Category
	technical domain.Category
	customer  domain.Customer
	admin     domain.User
	agent     domain.User
	sup       domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()
	f := &fixture{
		store:      store,
		mail:       &fakeMailer{},
		publisher:  &fakePublisher{},
		dispatcher: events.NewInMemoryDispatcher(),
	}
	f.billing = store.addCategory("billing")
	f.technical = store.addCategory("technical_issue")
	f.customer = store.addCustomer("Acme")
	f.admin = store.addUser("Ada Admin", domain.RoleAdmin, nil)
	f.agent = store.addUser("Alan Agent", domain.RoleAgent, nil)
	f.sup = store.addUser("Sam Supervisor", domain.RoleSupervisor, nil)

	users := fakeUsers{store}
	categories := fakeCategories{store}
	tickets := fakeTickets{store}
	assignments := fakeAssignments{store}

	f.ids = NewTicketIDGenerator(categories, tickets)
	f.resolver = NewAvailabilityResolver(categories, users, assignments)
	f.auto = NewAutoAssignmentPolicy(DefaultHeadcountTable(), categories, f.resolver, nil)
	f.linker = NewDependentTicketLinker(fakeLinks{store})

	f.tickets = NewTicketService(TicketDependencies{
		TicketRepo:     tickets,
		UserRepo:       users,
		CustomerRepo:   fakeCustomers{store},
		CategoryRepo:   categories,
		AssignmentRepo: assignments,
		CommentRepo:    fakeComments{store},
		FileRepo:       fakeFiles{store},
		HistoryRepo:    fakeHistory{store},
		IDGenerator:    f.ids,
		AutoAssigner:   f.auto,
		Linker:         f.linker,
		Mailer:         f.mail,
		Dispatcher:     f.dispatcher,
		Clock:          store.clock,
	})
	f.requests = NewRequestPermissionService(RequestPermissionDependencies{
		RequestRepo:    fakeRequests{store},
		UserRepo:       users,
		SupervisorRepo: fakeSupervisors{store},
		Mailer:         f.mail,
		BcryptCost:     bcrypt.MinCost,
		Clock:          store.clock,
	})
	f.agents = NewAgentService(AgentDependencies{
		UserRepo:       users,
		SupervisorRepo: fakeSupervisors{store},
		RequestRepo:    fakeRequests{store},
		Requests:       f.requests,
		Clock:          store.clock,
	})
	f.notifications = NewNotificationService(NotificationDependencies{
		NotificationRepo: fakeNotifications{store},
		UserRepo:         users,
		Publisher:        f.publisher,
		Dispatcher:       f.dispatcher,
	})
	f.notifications.RegisterHandlers()
	f.metrics = NewMetricsService(tickets, fakeRequests{store}, users)
	return f
}

func (f *fixture) engineer(name string, category domain.Category) domain.User {
	id := category.ID
	return f.store.addUser(name, domain.RoleEngineer, &id)
}

func (f *fixture) pairAgent(t *testing.T) {
	t.Helper()
	_, err := f.agents.AssignSupervisor(context.Background(), f.admin.ID, f.sup.ID, f.agent.ID)
	require.NoError(t, err)
}

func (f *fixture) createTicket(t *testing.T, category domain.Category, priority domain.TicketPriority, engineerIDs []string) *TicketDetail {
	t.Helper()
	detail, err := f.tickets.CreateTicket(context.Background(), f.agent.ID, CreateTicketInput{
		CustomerName: f.customer.Name,
		CategoryName: category.Name,
		Issue:        "printer on fire",
		Priority:     priority,
		EngineerIDs:  engineerIDs,
	})
	require.NoError(t, err)
	return detail
}
