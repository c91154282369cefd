package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/raaihank/compliance-sentinel/internal/assessment"
	"github.com/raaihank/compliance-sentinel/internal/jurisdiction"
	"github.com/raaihank/compliance-sentinel/internal/regulation"
	"github.com/raaihank/compliance-sentinel/internal/report"
)

type memorySaver struct {
	mu      sync.Mutex
	saved   []report.Report
	failFor string
}

func (m *memorySaver) Save(_ context.Context, r *report.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ProjectID == m.failFor {
		return errors.New("insert failed")
	}
	r.ID = fmt.Sprintf("r-%s", r.ProjectID)
	m.saved = append(m.saved, *r)
	return nil
}

func newTestPipeline(saver ReportSaver, cfg Config) *Pipeline {
	opts := assessment.DefaultOptions()
	opts.Now = func() time.Time { return time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC) }
	assessor := assessment.NewAssessor(regulation.Default(), opts, zap.NewNop())
	return NewPipeline(assessor, report.NewAggregator(0), jurisdiction.NewDetector(), saver, cfg, zap.NewNop())
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const projectsCSV = `project_id,regulations,locations,encryption,consent_management,audit_logging,access_controls,data_subject_rights,breach_response
p1,gdpr,,true,true,true,true,true,true
p2,gdpr;hipaa,,false,false,false,false,false,false
,gdpr,,true,true,true,true,true,true
p4,,Brazil,yes,no,,,,
`

func TestProcessCSV(t *testing.T) {
	saver := &memorySaver{}
	p := newTestPipeline(saver, Config{BatchSize: 2, WorkerCount: 2, ValidateData: true, KeepOutcomes: true})

	result, err := p.ProcessFile(context.Background(), writeFile(t, "projects.csv", projectsCSV))
	require.NoError(t, err)

	assert.Equal(t, int64(4), result.TotalRecords)
	assert.Equal(t, int64(3), result.ProcessedOK)
	assert.Equal(t, int64(1), result.Invalid)
	assert.Equal(t, int64(3), result.Persisted)
	assert.Equal(t, int64(0), result.ProcessedFailed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "project_id")

	require.Len(t, result.Outcomes, 3)
	assert.Equal(t, "p1", result.Outcomes[0].ProjectID)
	assert.Equal(t, 100, result.Outcomes[0].OverallScore)
	assert.Equal(t, "r-p1", result.Outcomes[0].ReportID)

	assert.Equal(t, "p2", result.Outcomes[1].ProjectID)
	assert.Equal(t, []string{"gdpr", "hipaa"}, result.Outcomes[1].Regulations)
	assert.Equal(t, 0, result.Outcomes[1].OverallScore)
	assert.Equal(t, 4, result.Outcomes[1].CriticalGaps)

	// encryption only: 100 - 25 - 15*4
	assert.Equal(t, "p4", result.Outcomes[2].ProjectID)
	assert.Equal(t, []string{"lgpd"}, result.Outcomes[2].Regulations)
	assert.Equal(t, 15, result.Outcomes[2].OverallScore)

	assert.InDelta(t, float64(100+0+15)/3, result.AverageScore, 0.001)
	assert.Equal(t, int64(2), result.NonCompliant)
	assert.Len(t, saver.saved, 3)
}

func TestProcessCSVRejectsBadFlags(t *testing.T) {
	p := newTestPipeline(nil, Config{ValidateData: true, KeepOutcomes: true})

	csv := "project_id,regulations,encryption\np1,gdpr,maybe\np2,gdpr,1\n"
	result, err := p.ProcessReader(context.Background(), FormatCSV, strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, int64(2), result.TotalRecords)
	assert.Equal(t, int64(1), result.Invalid)
	assert.Equal(t, int64(1), result.ProcessedOK)
	assert.Equal(t, int64(0), result.Persisted)
	assert.Contains(t, result.Errors[0], "encryption")
}

func TestProcessCSVRequiresProjectColumn(t *testing.T) {
	p := newTestPipeline(nil, Config{})

	_, err := p.ProcessReader(context.Background(), FormatCSV, strings.NewReader("name,regulations\nx,gdpr\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project_id")
}

func TestProcessJSONLines(t *testing.T) {
	p := newTestPipeline(nil, Config{ValidateData: true, KeepOutcomes: true, WorkerCount: 4})

	lines := `{"project_id":"a","regulations":"CCPA","encryption":true,"consent_management":true,"audit_logging":true,"access_controls":true,"data_subject_rights":true,"breach_response":false}
{"project_id":"b","regulations":"ccpa","encryption":"yes"}
{"project_id":"c","regulations":"pipeda"}
`
	result, err := p.ProcessFile(context.Background(), writeFile(t, "projects.jsonl", lines))
	require.NoError(t, err)

	assert.Equal(t, int64(3), result.TotalRecords)
	assert.Equal(t, int64(2), result.ProcessedOK)
	assert.Equal(t, int64(1), result.Invalid)
	require.Len(t, result.Outcomes, 2)
	assert.Equal(t, 85, result.Outcomes[0].OverallScore)
	assert.Equal(t, []string{"ccpa"}, result.Outcomes[0].Regulations)
	assert.Equal(t, "c", result.Outcomes[1].ProjectID)
}

func TestProcessParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.parquet")
	rows := []ProjectRecord{
		{ProjectID: "pq-1", Regulations: "gdpr", Encryption: true, ConsentManagement: true, AuditLogging: true, AccessControls: true, DataSubjectRights: true, BreachResponse: true},
		{ProjectID: "pq-2", Locations: "India", AuditLogging: true},
	}
	require.NoError(t, parquet.WriteFile(path, rows))

	p := newTestPipeline(nil, Config{ValidateData: true, KeepOutcomes: true})
	result, err := p.ProcessFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, int64(2), result.ProcessedOK)
	require.Len(t, result.Outcomes, 2)
	assert.Equal(t, 100, result.Outcomes[0].OverallScore)
	assert.Equal(t, []string{"dpdp"}, result.Outcomes[1].Regulations)
}

func TestSaverFailuresAreCounted(t *testing.T) {
	saver := &memorySaver{failFor: "p2"}
	p := newTestPipeline(saver, Config{ValidateData: true})

	result, err := p.ProcessFile(context.Background(), writeFile(t, "projects.csv", projectsCSV))
	require.NoError(t, err)

	assert.Equal(t, int64(2), result.ProcessedOK)
	assert.Equal(t, int64(1), result.ProcessedFailed)
	assert.Equal(t, int64(2), result.Persisted)
	assert.Contains(t, strings.Join(result.Errors, "\n"), "insert failed")
}

func TestWithoutValidationUnresolvedProjectsHaveNoData(t *testing.T) {
	p := newTestPipeline(nil, Config{ValidateData: false, KeepOutcomes: true})

	result, err := p.ProcessReader(context.Background(), FormatCSV, strings.NewReader("project_id,locations\nlost,Atlantis\n"))
	require.NoError(t, err)

	require.Len(t, result.Outcomes, 1)
	assert.True(t, result.Outcomes[0].NoData)
	assert.Zero(t, result.AverageScore)
}

func TestDefaultRegulationsApply(t *testing.T) {
	p := newTestPipeline(nil, Config{ValidateData: true, KeepOutcomes: true, DefaultRegulations: []string{"popia"}})

	result, err := p.ProcessReader(context.Background(), FormatCSV, strings.NewReader("project_id\nza-1\n"))
	require.NoError(t, err)

	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, []string{"popia"}, result.Outcomes[0].Regulations)
}

func TestCanceledContextStops(t *testing.T) {
	p := newTestPipeline(nil, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.ProcessReader(ctx, FormatCSV, strings.NewReader(projectsCSV))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDetectFileFormat(t *testing.T) {
	assert.Equal(t, FormatCSV, DetectFileFormat("projects.csv"))
	assert.Equal(t, FormatParquet, DetectFileFormat("/data/Projects.PARQUET"))
	assert.Equal(t, FormatJSON, DetectFileFormat("projects.json"))
	assert.Equal(t, FormatJSON, DetectFileFormat("projects.ndjson"))
	assert.Equal(t, FormatCSV, DetectFileFormat("projects"))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"gdpr", "hipaa", "ccpa"}, splitList(" gdpr, hipaa;;ccpa "))
	assert.Empty(t, splitList(" ; , "))
}
