package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmorante/poaplan/internal/domain"
	"github.com/cmorante/poaplan/internal/planservice"
	"github.com/cmorante/poaplan/internal/repository"
	"github.com/cmorante/poaplan/internal/testutil"
)

func newPlanFixture(t *testing.T) (PlanService, *repository.SQLitePlanRepo, *testutil.FakeRemote) {
	t.Helper()
	database := testutil.NewTestDB(t)
	repo := repository.NewSQLitePlanRepo(database)
	fake := testutil.NewFakeRemote()
	fake.Projects = []planservice.ProjectRecord{testutil.SampleProjectRecord()}
	return NewPlanService(repo, testutil.NewTestUoW(database), fake), repo, fake
}

func validRequest() CreatePlanRequest {
	return CreatePlanRequest{
		Name:        "infra plan",
		ProjectCode: "INFR-024",
		POAs: []POAInput{{
			Year:   2025,
			Type:   domain.POAOperational,
			Budget: "5000.00",
			Activities: []ActivityInput{{
				Ordinal: 1,
				Tasks: []TaskInput{{
					DetailID:  "det-1",
					Name:      "Office supplies",
					Quantity:  10,
					UnitPrice: "25.00",
					Months:    map[int]string{3: "250.00"},
				}},
			}},
		}},
	}
}

func TestPlanService_Create(t *testing.T) {
	svc, repo, _ := newPlanFixture(t)
	ctx := context.Background()

	plan, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	assert.Equal(t, "proj-1", plan.ProjectID)
	assert.Equal(t, domain.PlanDraft, plan.Status)
	require.Len(t, plan.Periods, 1)
	assert.Equal(t, 2025, plan.Periods[0].Year)

	require.Len(t, plan.POAs, 1)
	poa := plan.POAs[0]
	assert.Equal(t, "POA-INFR-024-2025", poa.Code)
	assert.Equal(t, plan.Periods[0].TempID, poa.PeriodTempID)
	assert.True(t, poa.Budget.Equal(testutil.Dec("5000.00")))

	require.Len(t, poa.Activities, 1)
	assert.Equal(t, "Administrative and financial management", poa.Activities[0].Description,
		"empty description takes the catalog entry for the ordinal")

	task := poa.Activities[0].Tasks[0]
	assert.True(t, task.Months[2].Equal(testutil.Dec("250.00")))

	stored, err := repo.GetByID(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.Name, stored.Name)
}

func TestPlanService_Create_CustomDescriptionKept(t *testing.T) {
	svc, _, _ := newPlanFixture(t)

	req := validRequest()
	req.POAs[0].Activities[0].Description = "Custom wording"
	plan, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Custom wording", plan.POAs[0].Activities[0].Description)
}

func TestPlanService_Create_RejectsUnknownProject(t *testing.T) {
	svc, _, _ := newPlanFixture(t)

	req := validRequest()
	req.ProjectCode = "MISS-001"
	_, err := svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, planservice.ErrNotFound)
}

func TestPlanService_Create_RejectsMalformedProjectCode(t *testing.T) {
	svc, _, fake := newPlanFixture(t)

	req := validRequest()
	req.ProjectCode = "bad code"
	_, err := svc.Create(context.Background(), req)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Empty(t, fake.Calls, "malformed codes never reach the remote service")
}

func TestPlanService_Create_RejectsYearOutsideProject(t *testing.T) {
	svc, _, _ := newPlanFixture(t)

	req := validRequest()
	req.POAs[0].Year = 2030
	_, err := svc.Create(context.Background(), req)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Error(), "2030")
}

func TestPlanService_Create_CollectsAllAmountIssues(t *testing.T) {
	svc, _, _ := newPlanFixture(t)

	req := validRequest()
	req.POAs[0].Budget = "abc"
	req.POAs[0].Activities[0].Tasks[0].UnitPrice = "-3"
	req.POAs[0].Activities[0].Tasks[0].Months[3] = "10.999"
	_, err := svc.Create(context.Background(), req)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.GreaterOrEqual(t, len(vErr.Issues), 3, "every bad amount is reported, not just the first")
}

func TestPlanService_Create_CountsExistingRemotePOAs(t *testing.T) {
	svc, _, fake := newPlanFixture(t)

	// 18000 of the 20000 approved budget is already committed remotely.
	fake.POAs = []planservice.POARecord{{
		ID: "poa-existing", ProjectID: "proj-1", Code: "POA-INFR-024-2024",
		Budget: testutil.Dec("18000.00"),
	}}

	_, err := svc.Create(context.Background(), validRequest())
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Error(), "remaining approved budget")
}

func TestPlanService_GetByRef(t *testing.T) {
	svc, _, _ := newPlanFixture(t)
	ctx := context.Background()

	plan, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	byID, err := svc.GetByRef(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, byID.ID)

	byName, err := svc.GetByRef(ctx, "infra plan")
	require.NoError(t, err)
	assert.Equal(t, plan.ID, byName.ID)

	_, err = svc.GetByRef(ctx, "missing")
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestPlanService_Delete(t *testing.T) {
	svc, _, _ := newPlanFixture(t)
	ctx := context.Background()

	plan, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, plan.Name))
	_, err = svc.GetByRef(ctx, plan.ID)
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestPlanService_Validate_MonthsOverTaskTotal(t *testing.T) {
	svc, repo, _ := newPlanFixture(t)
	ctx := context.Background()

	plan := testutil.SamplePlan()
	plan.POAs[0].Activities[0].Tasks[0].Months[5] = testutil.Dec("9999.00")
	require.NoError(t, repo.Save(ctx, plan))

	issues, err := svc.Validate(ctx, plan)
	require.NoError(t, err)
	require.NotEmpty(t, issues)
	assert.Contains(t, issues[0].String(), "exceeds the task total")
}
