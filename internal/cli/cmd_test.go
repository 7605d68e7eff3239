package cli

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmorante/poaplan/internal/catalog"
	"github.com/cmorante/poaplan/internal/orchestrator"
	"github.com/cmorante/poaplan/internal/planservice"
	"github.com/cmorante/poaplan/internal/repository"
	"github.com/cmorante/poaplan/internal/service"
	"github.com/cmorante/poaplan/internal/testutil"
)

// testApp wires a full App over an in-memory database and a fake remote.
func testApp(t *testing.T) (*App, *testutil.FakeRemote) {
	t.Helper()
	database := testutil.NewTestDB(t)
	planRepo := repository.NewSQLitePlanRepo(database)
	subRepo := repository.NewSQLiteSubmissionRepo(database)

	fake := testutil.NewFakeRemote()
	fake.Projects = []planservice.ProjectRecord{testutil.SampleProjectRecord()}
	fake.ProjectTypes = []planservice.ProjectTypeRecord{{ID: "pt-1", Name: "Infrastructure"}}
	fake.BudgetLines["bl-1"] = planservice.BudgetLineRecord{ID: "bl-1", Name: "Supplies", Classifier: "1.1; 0; 0"}
	fake.TaskDetails["operational"] = []planservice.TaskDetailRecord{
		{ID: "det-1", Name: "Office materials", BudgetLineID: "bl-1"},
	}

	cache := catalog.NewLineCache()
	filter := catalog.NewFilter(cache, catalog.RemoteResolver(fake), nil)

	sink := &ProgressSink{}
	orch := orchestrator.New(fake,
		orchestrator.WithProgress(sink.Emit),
		orchestrator.WithProgrammingYear(2025))

	uow := testutil.NewTestUoW(database)
	plans := service.NewPlanService(planRepo, uow, fake)
	return &App{
		Plans:         plans,
		Submits:       service.NewSubmitService(plans, subRepo, uow, orch),
		RefData:       service.NewRefDataService(fake, cache, filter),
		Progress:      sink,
		IsInteractive: func() bool { return false },
	}, fake
}

// runCmd executes the root command and captures everything the handlers
// print, including direct fmt.Print output.
func runCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	pr, pw, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = pw

	var buf strings.Builder
	done := make(chan struct{})
	go func() {
		io.Copy(&buf, pr)
		close(done)
	}()

	root := NewRootCmd(app)
	root.SetOut(pw)
	root.SetErr(pw)
	root.SetArgs(args)
	root.SilenceUsage = true
	root.SilenceErrors = true
	execErr := root.Execute()

	pw.Close()
	os.Stdout = origStdout
	<-done
	return buf.String(), execErr
}

// writePlanFile marshals a plan request into a temp JSON file.
func writePlanFile(t *testing.T, req service.CreatePlanRequest) string {
	t.Helper()
	data, err := json.Marshal(req)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func samplePlanRequest() service.CreatePlanRequest {
	return service.CreatePlanRequest{
		Name:        "infra 2025",
		ProjectCode: "INFR-024",
		POAs: []service.POAInput{{
			Year:   2025,
			Type:   "operational",
			Budget: "5000.00",
			Activities: []service.ActivityInput{{
				Ordinal: 1,
				Tasks: []service.TaskInput{{
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

func TestPlanImportAndListCommands(t *testing.T) {
	app, _ := testApp(t)

	out, err := runCmd(t, app, "plan", "import", writePlanFile(t, samplePlanRequest()))
	require.NoError(t, err)
	assert.Contains(t, out, "Created plan infra 2025")

	out, err = runCmd(t, app, "plan", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "infra 2025")
	assert.Contains(t, out, "INFR-024")
}

func TestPlanImportReportsIssues(t *testing.T) {
	app, _ := testApp(t)

	req := samplePlanRequest()
	req.POAs[0].Budget = "99999.00"
	out, err := runCmd(t, app, "plan", "import", writePlanFile(t, req))
	require.Error(t, err)
	assert.Contains(t, out, "remaining approved budget")
}

func TestPlanShowCommand(t *testing.T) {
	app, _ := testApp(t)

	_, err := runCmd(t, app, "plan", "import", writePlanFile(t, samplePlanRequest()))
	require.NoError(t, err)

	out, err := runCmd(t, app, "plan", "show", "infra 2025")
	require.NoError(t, err)
	assert.Contains(t, out, "POA-INFR-024-2025")
	assert.Contains(t, out, "Office supplies")
	assert.Contains(t, out, "PER-2025")
}

func TestPlanValidateCommand(t *testing.T) {
	app, _ := testApp(t)

	_, err := runCmd(t, app, "plan", "import", writePlanFile(t, samplePlanRequest()))
	require.NoError(t, err)

	out, err := runCmd(t, app, "plan", "validate", "infra 2025")
	require.NoError(t, err)
	assert.Contains(t, out, "ready to submit")
}

func TestSubmitCommandPlain(t *testing.T) {
	app, fake := testApp(t)

	_, err := runCmd(t, app, "plan", "import", writePlanFile(t, samplePlanRequest()))
	require.NoError(t, err)

	out, err := runCmd(t, app, "submit", "infra 2025")
	require.NoError(t, err)
	assert.Contains(t, out, "Submission complete")
	assert.Contains(t, out, "periods PER-2025: ok", "plain mode streams per-entity progress")
	assert.Len(t, fake.Tasks, 1)

	out, err = runCmd(t, app, "plan", "history", "infra 2025")
	require.NoError(t, err)
	assert.Contains(t, out, "complete")
}

func TestPlanDeleteCommand(t *testing.T) {
	app, _ := testApp(t)

	_, err := runCmd(t, app, "plan", "import", writePlanFile(t, samplePlanRequest()))
	require.NoError(t, err)

	out, err := runCmd(t, app, "plan", "delete", "infra 2025")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted plan")

	_, err = runCmd(t, app, "plan", "show", "infra 2025")
	require.Error(t, err)
}

func TestProjectsCommands(t *testing.T) {
	app, _ := testApp(t)

	out, err := runCmd(t, app, "projects", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "INFR-024")
	assert.Contains(t, out, "20,000.00")

	out, err = runCmd(t, app, "projects", "periods", "INFR-024")
	require.NoError(t, err)
	assert.Contains(t, out, "PER-2025")
}

func TestCatalogCommands(t *testing.T) {
	app, _ := testApp(t)

	out, err := runCmd(t, app, "catalog", "activities", "operational")
	require.NoError(t, err)
	assert.Contains(t, out, "Administrative and financial management")

	out, err = runCmd(t, app, "catalog", "details", "operational", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Office materials")

	_, err = runCmd(t, app, "catalog", "activities", "bogus")
	require.Error(t, err)
}
