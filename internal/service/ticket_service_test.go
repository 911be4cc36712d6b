package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/mailer"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

func statusPtr(s domain.TicketStatus) *domain.TicketStatus { return &s }

func TestCreateHighPriorityAssignsOneEngineer(t *testing.T) {
	f := newFixture(t)
	f.engineer("Eve", f.billing)
	f.engineer("Finn", f.billing)
	f.engineer("Gus", f.billing)

	detail := f.createTicket(t, f.billing, domain.TicketPriorityHigh, nil)

	assert.Equal(t, "BI-000001", detail.Ticket.CustomTicketID)
	assert.Equal(t, domain.TicketStatusInProgress, detail.Ticket.Status)
	require.Len(t, detail.Engineers, 1)
	assert.Equal(t, "Eve", detail.Engineers[0].Name)

	stored, ok := f.store.ticketByCustomID("BI-000001")
	require.True(t, ok)
	assert.Equal(t, domain.TicketStatusInProgress, stored.Status)

	mails := f.mail.byKind(mailer.KindTicketAssigned)
	require.Len(t, mails, 1)
	assert.Equal(t, detail.Engineers[0].Email, mails[0].To)
	assert.Equal(t, "BI-000001", mails[0].Data["ticket_id"])
}

func TestCreateUrgentWithBusyEngineerStaysPending(t *testing.T) {
	f := newFixture(t)
	f.engineer("Eve", f.billing)
	f.createTicket(t, f.billing, domain.TicketPriorityHigh, nil)
	require.Len(t, f.store.assignmentsFor(mustTicket(t, f, "BI-000001").ID), 1)

	detail := f.createTicket(t, f.billing, domain.TicketPriorityUrgent, nil)

	assert.Equal(t, "BI-000002", detail.Ticket.CustomTicketID)
	assert.Equal(t, domain.TicketStatusPending, detail.Ticket.Status)
	assert.Empty(t, detail.Engineers)
	assert.Empty(t, f.store.assignmentsFor(detail.Ticket.ID))
}

func TestCreateLowPriorityLeavesTicketUnassigned(t *testing.T) {
	f := newFixture(t)
	f.engineer("Eve", f.technical)

	detail := f.createTicket(t, f.technical, domain.TicketPriorityLow, nil)

	assert.Equal(t, "TI-000001", detail.Ticket.CustomTicketID)
	assert.Equal(t, domain.TicketStatusPending, detail.Ticket.Status)
	assert.Empty(t, detail.Engineers)
}

func TestCreateWithDependencyAndFile(t *testing.T) {
	f := newFixture(t)
	f.createTicket(t, f.billing, domain.TicketPriorityLow, nil)

	parent := "BI-000001"
	url := "https://files.example.com/invoice.pdf"
	detail, err := f.tickets.CreateTicket(context.Background(), f.agent.ID, CreateTicketInput{
		CustomerName: "Acme",
		CategoryName: "billing",
		Issue:        "refund stuck",
		Priority:     domain.TicketPriorityMedium,
		DependsOn:    &parent,
		FileURL:      &url,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"BI-000001"}, detail.DependsOn)
	require.Len(t, detail.Files, 1)
	assert.Equal(t, url, detail.Files[0].URL)

	parentDetail, err := f.tickets.GetTicket(context.Background(), "BI-000001", f.agent.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"BI-000002"}, parentDetail.Dependents)
}

func TestCreateDeletesTicketWhenAssemblyFails(t *testing.T) {
	cases := []struct {
		name  string
		input func(f *fixture) CreateTicketInput
		code  string
	}{
		{
			name: "missing dependency",
			input: func(f *fixture) CreateTicketInput {
				parent := "BI-000999"
				return CreateTicketInput{CustomerName: "Acme", CategoryName: "billing", Issue: "x", Priority: domain.TicketPriorityLow, DependsOn: &parent}
			},
			code: apperrors.CodeNotFound,
		},
		{
			name: "self dependency",
			input: func(f *fixture) CreateTicketInput {
				parent := "BI-000001"
				return CreateTicketInput{CustomerName: "Acme", CategoryName: "billing", Issue: "x", Priority: domain.TicketPriorityLow, DependsOn: &parent}
			},
			code: apperrors.CodeBadRequest,
		},
		{
			name: "unknown engineer",
			input: func(f *fixture) CreateTicketInput {
				return CreateTicketInput{CustomerName: "Acme", CategoryName: "billing", Issue: "x", Priority: domain.TicketPriorityLow,
					EngineerIDs: []string{"6a1f4f0e-8d5e-4a43-9d39-35a7d6f0b9a1"}}
			},
			code: apperrors.CodeBadRequest,
		},
		{
			name: "malformed engineer id",
			input: func(f *fixture) CreateTicketInput {
				return CreateTicketInput{CustomerName: "Acme", CategoryName: "billing", Issue: "x", Priority: domain.TicketPriorityLow,
					EngineerIDs: []string{"not-a-uuid"}}
			},
			code: apperrors.CodeBadRequest,
		},
		{
			name: "no engineers qualified for auto assignment",
			input: func(f *fixture) CreateTicketInput {
				return CreateTicketInput{CustomerName: "Acme", CategoryName: "billing", Issue: "x", Priority: domain.TicketPriorityHigh}
			},
			code: apperrors.CodeNotFound,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.tickets.CreateTicket(context.Background(), f.agent.ID, tc.input(f))
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, tc.code), err.Error())
			assert.Empty(t, f.store.tickets)
			assert.Empty(t, f.store.links)
		})
	}
}

func TestCreateValidatesInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.tickets.CreateTicket(ctx, f.agent.ID, CreateTicketInput{CategoryName: "billing", Priority: domain.TicketPriorityLow})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = f.tickets.CreateTicket(ctx, f.agent.ID, CreateTicketInput{CustomerName: "Acme", CategoryName: "billing", Issue: "x", Priority: "critical"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeBadRequest))

	_, err = f.tickets.CreateTicket(ctx, f.agent.ID, CreateTicketInput{CustomerName: "Nobody", CategoryName: "billing", Issue: "x", Priority: domain.TicketPriorityLow})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = f.tickets.CreateTicket(ctx, f.agent.ID, CreateTicketInput{CustomerName: "Acme", CategoryName: "plumbing", Issue: "x", Priority: domain.TicketPriorityLow})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = f.tickets.CreateTicket(ctx, "6a1f4f0e-8d5e-4a43-9d39-35a7d6f0b9a1", CreateTicketInput{CustomerName: "Acme", CategoryName: "billing", Issue: "x", Priority: domain.TicketPriorityLow})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	assert.Empty(t, f.store.tickets)
}

func TestAssignSameEngineerTwiceConflicts(t *testing.T) {
	f := newFixture(t)
	x := f.engineer("Xavier", f.billing)
	ticket := f.createTicket(t, f.billing, domain.TicketPriorityLow, nil)
	require.Equal(t, "BI-000001", ticket.Ticket.CustomTicketID)

	require.NoError(t, f.tickets.AssignTicketToEngineers(context.Background(), "BI-000001", []string{x.ID}, f.admin.ID))
	assert.Equal(t, domain.TicketStatusInProgress, mustTicket(t, f, "BI-000001").Status)

	err := f.tickets.AssignTicketToEngineers(context.Background(), "BI-000001", []string{x.ID}, f.admin.ID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
	assert.Contains(t, err.Error(), "Xavier")
	assert.Len(t, f.store.assignmentsFor(ticket.Ticket.ID), 1)
}

func TestAssignRejectsWholeBatchOnConflict(t *testing.T) {
	f := newFixture(t)
	x := f.engineer("Xavier", f.billing)
	y := f.engineer("Yara", f.billing)
	ticket := f.createTicket(t, f.billing, domain.TicketPriorityLow, []string{x.ID})

	err := f.tickets.AssignTicketToEngineers(context.Background(), ticket.Ticket.CustomTicketID, []string{y.ID, x.ID}, f.admin.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
	assert.Len(t, f.store.assignmentsFor(ticket.Ticket.ID), 1)
}

func TestAssignValidation(t *testing.T) {
	f := newFixture(t)
	ticket := f.createTicket(t, f.billing, domain.TicketPriorityLow, nil)
	ctx := context.Background()

	err := f.tickets.AssignTicketToEngineers(ctx, ticket.Ticket.CustomTicketID, nil, f.admin.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeBadRequest))

	err = f.tickets.AssignTicketToEngineers(ctx, ticket.Ticket.CustomTicketID, []string{f.agent.ID}, f.admin.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeBadRequest))

	err = f.tickets.AssignTicketToEngineers(ctx, "BI-000404", []string{f.agent.ID}, f.admin.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestAssignmentSurvivesMailFailure(t *testing.T) {
	f := newFixture(t)
	x := f.engineer("Xavier", f.billing)
	ticket := f.createTicket(t, f.billing, domain.TicketPriorityLow, nil)
	f.mail.err = errBoom

	require.NoError(t, f.tickets.AssignTicketToEngineers(context.Background(), ticket.Ticket.CustomTicketID, []string{x.ID}, f.admin.ID))
	assert.Len(t, f.store.assignmentsFor(ticket.Ticket.ID), 1)
}

func TestUnassignSummarisesRemovedEngineers(t *testing.T) {
	f := newFixture(t)
	x := f.engineer("Xavier", f.billing)
	y := f.engineer("Yara", f.billing)
	ticket := f.createTicket(t, f.billing, domain.TicketPriorityLow, []string{x.ID, y.ID})

	summary, err := f.tickets.UnassignTicketFromEngineers(context.Background(), ticket.Ticket.CustomTicketID, []string{x.ID, y.ID}, f.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "You have unassigned the following engineer/s: Xavier, Yara from ticket BI-000001", summary)
	assert.Empty(t, f.store.assignmentsFor(ticket.Ticket.ID))
	assert.Equal(t, domain.TicketStatusInProgress, mustTicket(t, f, "BI-000001").Status)

	_, err = f.tickets.UnassignTicketFromEngineers(context.Background(), ticket.Ticket.CustomTicketID, []string{x.ID}, f.admin.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestUpdateStatusPriorityAndComments(t *testing.T) {
	f := newFixture(t)
	ticket := f.createTicket(t, f.billing, domain.TicketPriorityLow, nil)
	urgent := domain.TicketPriorityUrgent
	due := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

	updated, err := f.tickets.UpdateTicketStatusPriority(context.Background(), f.admin.ID, UpdateTicketInput{
		CustomTicketID: ticket.Ticket.CustomTicketID,
		Status:         statusPtr(domain.TicketStatusResolved),
		Priority:       &urgent,
		DueDate:        &due,
		Comments:       []CommentInput{{Content: "fixed the toner"}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, updated.Status)
	assert.Equal(t, domain.TicketPriorityUrgent, updated.Priority)
	require.NotNil(t, updated.DueDate)
	assert.True(t, due.Equal(*updated.DueDate))
	assert.True(t, updated.UpdatedAt.After(ticket.Ticket.UpdatedAt))

	detail, err := f.tickets.GetTicket(context.Background(), ticket.Ticket.CustomTicketID, f.admin.ID)
	require.NoError(t, err)
	require.Len(t, detail.Comments, 1)
	commentID := detail.Comments[0].ID

	_, err = f.tickets.UpdateTicketStatusPriority(context.Background(), f.admin.ID, UpdateTicketInput{
		CustomTicketID: ticket.Ticket.CustomTicketID,
		Comments:       []CommentInput{{ID: commentID, Content: "fixed the toner, twice"}},
	})
	require.NoError(t, err)
	detail, err = f.tickets.GetTicket(context.Background(), ticket.Ticket.CustomTicketID, f.admin.ID)
	require.NoError(t, err)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "fixed the toner, twice", detail.Comments[0].Content)

	history, err := f.tickets.ListTicketHistory(context.Background(), ticket.Ticket.CustomTicketID, f.admin.ID)
	require.NoError(t, err)
	var changes []domain.TicketChangeType
	for _, h := range history {
		changes = append(changes, h.ChangeType)
	}
	assert.Contains(t, changes, domain.ChangeTypeStatus)
	assert.Contains(t, changes, domain.ChangeTypePriority)
	assert.Contains(t, changes, domain.ChangeTypeDueDate)
}

func TestUpdateRejectsInvalidStatus(t *testing.T) {
	f := newFixture(t)
	ticket := f.createTicket(t, f.billing, domain.TicketPriorityLow, nil)

	_, err := f.tickets.UpdateTicketStatusPriority(context.Background(), f.admin.ID, UpdateTicketInput{
		CustomTicketID: ticket.Ticket.CustomTicketID,
		Status:         statusPtr("closed"),
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeBadRequest))
	assert.Equal(t, domain.TicketStatusPending, mustTicket(t, f, "BI-000001").Status)

	_, err = f.tickets.UpdateTicketStatusPriority(context.Background(), f.admin.ID, UpdateTicketInput{
		CustomTicketID: "BI-000404",
		Status:         statusPtr(domain.TicketStatusResolved),
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestUpdateWithUnknownCommentChangesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t, f.billing, domain.TicketPriorityLow, nil)
	id := ticket.Ticket.CustomTicketID
	high := domain.TicketPriorityHigh

	_, err := f.tickets.UpdateTicketStatusPriority(ctx, f.admin.ID, UpdateTicketInput{
		CustomTicketID: id,
		Status:         statusPtr(domain.TicketStatusResolved),
		Priority:       &high,
		Comments: []CommentInput{
			{Content: "new note"},
			{ID: uuid.NewString(), Content: "edit of a comment that never existed"},
		},
	})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	stored := mustTicket(t, f, id)
	assert.Equal(t, domain.TicketStatusPending, stored.Status)
	assert.Equal(t, domain.TicketPriorityLow, stored.Priority)

	detail, err := f.tickets.GetTicket(ctx, id, f.admin.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Comments)

	history, err := f.tickets.ListTicketHistory(ctx, id, f.admin.ID)
	require.NoError(t, err)
	for _, h := range history {
		assert.NotEqual(t, domain.ChangeTypeStatus, h.ChangeType)
		assert.NotEqual(t, domain.ChangeTypePriority, h.ChangeType)
	}
}

func TestOnlyTheAuthorEditsAComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	eve := f.engineer("Eve", f.billing)
	ticket := f.createTicket(t, f.billing, domain.TicketPriorityLow, nil)
	id := ticket.Ticket.CustomTicketID

	comment, err := f.tickets.AddComment(ctx, id, "customer called back", f.admin.ID)
	require.NoError(t, err)

	_, err = f.tickets.UpdateTicketStatusPriority(ctx, eve.ID, UpdateTicketInput{
		CustomTicketID: id,
		Status:         statusPtr(domain.TicketStatusInProgress),
		Comments:       []CommentInput{{ID: comment.ID, Content: "rewritten by someone else"}},
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	assert.Equal(t, domain.TicketStatusPending, mustTicket(t, f, id).Status)

	detail, err := f.tickets.GetTicket(ctx, id, f.admin.ID)
	require.NoError(t, err)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "customer called back", detail.Comments[0].Content)
}

func TestStatusMayMoveBackwards(t *testing.T) {
	f := newFixture(t)
	ticket := f.createTicket(t, f.billing, domain.TicketPriorityLow, nil)
	ctx := context.Background()

	_, err := f.tickets.UpdateTicketStatusPriority(ctx, f.admin.ID, UpdateTicketInput{CustomTicketID: ticket.Ticket.CustomTicketID, Status: statusPtr(domain.TicketStatusResolved)})
	require.NoError(t, err)
	updated, err := f.tickets.UpdateTicketStatusPriority(ctx, f.admin.ID, UpdateTicketInput{CustomTicketID: ticket.Ticket.CustomTicketID, Status: statusPtr(domain.TicketStatusPending)})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusPending, updated.Status)
}

func TestCancelAndReopen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t, f.billing, domain.TicketPriorityLow, nil)
	id := ticket.Ticket.CustomTicketID

	_, err := f.tickets.ReopenTicket(ctx, id, f.admin.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	result, err := f.tickets.CancelTicket(ctx, id, f.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, id, result.CustomTicketID)
	assert.False(t, result.CancelledDate.IsZero())

	list, err := f.tickets.ListTickets(ctx, f.admin.ID, TicketSort{})
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.tickets.GetTicket(ctx, id, f.admin.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = f.tickets.CancelTicket(ctx, id, f.admin.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	reopened, err := f.tickets.ReopenTicket(ctx, id, f.admin.ID)
	require.NoError(t, err)
	assert.Nil(t, reopened.CancelledDate)
	require.NotNil(t, reopened.ReOpenedDate)

	list, err = f.tickets.ListTickets(ctx, f.admin.ID, TicketSort{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].CustomTicketID)
}

func TestListTicketsScopesEngineersToTheirCategory(t *testing.T) {
	f := newFixture(t)
	eve := f.engineer("Eve", f.technical)
	f.createTicket(t, f.billing, domain.TicketPriorityLow, nil)
	f.createTicket(t, f.technical, domain.TicketPriorityLow, nil)

	all, err := f.tickets.ListTickets(context.Background(), f.agent.ID, TicketSort{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := f.tickets.ListTickets(context.Background(), eve.ID, TicketSort{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "TI-000001", own[0].CustomTicketID)

	_, err = f.tickets.GetTicket(context.Background(), "BI-000001", eve.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}

func TestSortTickets(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	due := base.Add(48 * time.Hour)
	tickets := func() []domain.Ticket {
		return []domain.Ticket{
			{CustomTicketID: "BI-000002", Priority: domain.TicketPriorityUrgent, Status: domain.TicketStatusPending, CreatedAt: base.Add(2 * time.Hour)},
			{CustomTicketID: "BI-000001", Priority: domain.TicketPriorityLow, Status: domain.TicketStatusResolved, CreatedAt: base, DueDate: &due},
			{CustomTicketID: "BI-000003", Priority: domain.TicketPriorityHigh, Status: domain.TicketStatusInProgress, CreatedAt: base.Add(time.Hour)},
		}
	}
	ids := func(list []domain.Ticket) []string {
		out := make([]string, len(list))
		for i, t := range list {
			out[i] = t.CustomTicketID
		}
		return out
	}

	cases := []struct {
		sort TicketSort
		want []string
	}{
		{TicketSort{}, []string{"BI-000002", "BI-000003", "BI-000001"}},
		{TicketSort{Field: "bogus", Order: "ASC"}, []string{"BI-000002", "BI-000003", "BI-000001"}},
		{TicketSort{Field: "created_at", Order: "asc"}, []string{"BI-000001", "BI-000003", "BI-000002"}},
		{TicketSort{Field: "priority", Order: "ASC"}, []string{"BI-000001", "BI-000003", "BI-000002"}},
		{TicketSort{Field: "priority", Order: "DESC"}, []string{"BI-000002", "BI-000003", "BI-000001"}},
		{TicketSort{Field: "status", Order: "ASC"}, []string{"BI-000002", "BI-000003", "BI-000001"}},
		{TicketSort{Field: "custom_ticket_id", Order: "ASC"}, []string{"BI-000001", "BI-000002", "BI-000003"}},
		{TicketSort{Field: "due_date", Order: "ASC"}, []string{"BI-000001", "BI-000002", "BI-000003"}},
	}
	for _, tc := range cases {
		list := tickets()
		SortTickets(list, tc.sort)
		assert.Equal(t, tc.want, ids(list), "%+v", tc.sort)
	}
}

func TestGetTicketIsStable(t *testing.T) {
	f := newFixture(t)
	x := f.engineer("Xavier", f.billing)
	f.createTicket(t, f.billing, domain.TicketPriorityLow, []string{x.ID})

	first, err := f.tickets.GetTicket(context.Background(), "BI-000001", f.agent.ID)
	require.NoError(t, err)
	second, err := f.tickets.GetTicket(context.Background(), "BI-000001", f.agent.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTicketEventsReachNotifications(t *testing.T) {
	f := newFixture(t)
	f.createTicket(t, f.billing, domain.TicketPriorityLow, nil)

	own, err := f.notifications.List(context.Background(), f.agent.ID, 10)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.True(t, own[0].Own)
	assert.Equal(t, "You created a ticket BI-000001", own[0].Message)

	others, err := f.notifications.List(context.Background(), f.sup.ID, 10)
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, "Alan Agent created a ticket BI-000001", others[0].Message)
}

func mustTicket(t *testing.T, f *fixture, customID string) domain.Ticket {
	t.Helper()
	ticket, ok := f.store.ticketByCustomID(customID)
	require.True(t, ok, customID)
	return ticket
}
