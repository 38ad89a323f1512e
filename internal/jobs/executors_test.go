package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/witsml-explorer/backend/internal/catalog"
	"github.com/witsml-explorer/backend/internal/logindex"
	"github.com/witsml-explorer/backend/internal/models"
	"github.com/witsml-explorer/backend/internal/patch"
	"github.com/witsml-explorer/backend/internal/testutil"
)

type fixture struct {
	manager *Manager
	catalog *testutil.MockCatalog
	files   *testutil.MockStorage
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		manager: newTestManager(t, Options{Workers: 1}),
		catalog: testutil.NewMockCatalog(),
		files:   testutil.NewMockStorage(),
	}
	NewService(f.catalog, f.files).Register(f.manager)
	return f
}

func (f *fixture) run(t *testing.T, jobType models.JobType, payload any) models.JobInfo {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	info, err := f.manager.Submit(context.Background(), jobType, data)
	require.NoError(t, err)
	return waitFor(t, f.manager, info.ID)
}

func (f *fixture) submit(jobType models.JobType, payload any) error {
	data, _ := json.Marshal(payload)
	_, err := f.manager.Submit(context.Background(), jobType, data)
	return err
}

func (f *fixture) curves(t *testing.T, ref models.LogRef) map[string]models.LogCurveInfo {
	t.Helper()
	list, err := f.catalog.GetCurves(context.Background(), ref)
	require.NoError(t, err)
	out := make(map[string]models.LogCurveInfo, len(list))
	for _, c := range list {
		out[c.Mnemonic] = c
	}
	return out
}

func (f *fixture) log(t *testing.T, ref models.LogRef) models.LogObject {
	t.Helper()
	lg, err := f.catalog.GetLog(context.Background(), ref)
	require.NoError(t, err)
	return *lg
}

func depthLog(uid, start, end string) models.LogObject {
	return models.LogObject{
		WellUID: "W", WellboreUID: "B", UID: uid, Name: uid,
		IndexType: "depth", IndexCurve: "DEPTH", StartIndex: start, EndIndex: end, IndexUnit: "m",
	}
}

func depthCurve(mnemonic, min, max string) models.LogCurveInfo {
	return models.LogCurveInfo{UID: mnemonic, Mnemonic: mnemonic, Unit: "m", MinIndex: min, MaxIndex: max}
}

func timeLog(uid string) models.LogObject {
	return models.LogObject{
		WellUID: "W", WellboreUID: "B", UID: uid, IndexType: "date time", IndexCurve: "TIME",
		StartIndex: "2024-01-01T00:00:00.000Z", EndIndex: "2024-01-01T06:00:00.000Z",
	}
}

func isValidation(err error) bool {
	var v *logindex.ValidationError
	return errors.As(err, &v)
}

func TestCopyLogData(t *testing.T) {
	f := newFixture(t)
	source := depthLog("SRC", "100", "300")
	target := depthLog("TGT", "250", "400")
	f.catalog.AddLog(source,
		depthCurve("DEPTH", "100", "300"),
		depthCurve("GR", "120", "280"),
		depthCurve("ROP", "100", "150"),
	)
	f.catalog.AddLog(target,
		depthCurve("DEPTH", "250", "400"),
		depthCurve("GR", "250", "400"),
	)

	info := f.run(t, models.JobTypeCopyLogData, models.CopyLogDataJob{
		Source:     source.Ref(),
		Target:     target.Ref(),
		Mnemonics:  []string{"GR"},
		StartIndex: "200",
		EndIndex:   "500",
	})
	require.Equal(t, models.JobStatusFinished, info.Status, info.FailedReason)

	curves := f.curves(t, target.Ref())
	// index curve is always copied along
	assert.Equal(t, "200", curves["DEPTH"].MinIndex)
	assert.Equal(t, "400", curves["DEPTH"].MaxIndex)
	assert.Equal(t, "200", curves["GR"].MinIndex)
	assert.Equal(t, "400", curves["GR"].MaxIndex)
	assert.NotContains(t, curves, "ROP")

	lg := f.log(t, target.Ref())
	assert.Equal(t, "200", lg.StartIndex)
	assert.Equal(t, "400", lg.EndIndex)
	require.Len(t, info.Report.Items, 2)
	assert.Equal(t, "300", info.Report.Items[0]["endIndex"])
}

func TestCopyLogData_AllCurvesIntoEmptyLog(t *testing.T) {
	f := newFixture(t)
	source := depthLog("SRC", "100", "300")
	target := depthLog("TGT", "", "")
	f.catalog.AddLog(source, depthCurve("DEPTH", "100", "300"), depthCurve("GR", "120", "280"))
	f.catalog.AddLog(target)

	info := f.run(t, models.JobTypeCopyLogData, models.CopyLogDataJob{Source: source.Ref(), Target: target.Ref()})
	require.Equal(t, models.JobStatusFinished, info.Status, info.FailedReason)

	curves := f.curves(t, target.Ref())
	require.Len(t, curves, 2)
	assert.Equal(t, "120", curves["GR"].MinIndex)
	assert.Equal(t, "m", curves["GR"].Unit)
	lg := f.log(t, target.Ref())
	assert.Equal(t, "100", lg.StartIndex)
	assert.Equal(t, "300", lg.EndIndex)
}

func TestCopyLogData_Rejected(t *testing.T) {
	f := newFixture(t)
	source := depthLog("SRC", "100", "300")
	f.catalog.AddLog(source)
	f.catalog.AddLog(timeLog("TIME"))
	f.catalog.AddLog(depthLog("TGT", "", ""))

	err := f.submit(models.JobTypeCopyLogData, models.CopyLogDataJob{Source: source.Ref(), Target: timeLog("TIME").Ref()})
	var km *logindex.KindMismatchError
	assert.True(t, errors.As(err, &km))

	err = f.submit(models.JobTypeCopyLogData, models.CopyLogDataJob{
		Source: source.Ref(), Target: depthLog("TGT", "", "").Ref(), StartIndex: "400", EndIndex: "500",
	})
	assert.True(t, isValidation(err))

	err = f.submit(models.JobTypeCopyLogData, models.CopyLogDataJob{
		Source: source.Ref(), Target: models.LogRef{WellUID: "W", WellboreUID: "B", LogUID: "nope"},
	})
	assert.True(t, errors.Is(err, catalog.ErrLogNotFound))

	err = f.submit(models.JobTypeCopyLogData, models.CopyLogDataJob{Source: source.Ref()})
	assert.True(t, isValidation(err))
}

func TestOffsetLogCurves_Depth(t *testing.T) {
	f := newFixture(t)
	lg := depthLog("L", "100", "300")
	f.catalog.AddLog(lg, depthCurve("DEPTH", "100", "300"), depthCurve("GR", "120", "280"))

	info := f.run(t, models.JobTypeOffsetLogCurves, models.OffsetLogCurvesJob{Log: lg.Ref(), Offset: "-20.5"})
	require.Equal(t, models.JobStatusFinished, info.Status, info.FailedReason)

	curves := f.curves(t, lg.Ref())
	assert.Equal(t, "99.5", curves["GR"].MinIndex)
	assert.Equal(t, "259.5", curves["GR"].MaxIndex)
	stored := f.log(t, lg.Ref())
	assert.Equal(t, "79.5", stored.StartIndex)
	assert.Equal(t, "279.5", stored.EndIndex)
	assert.Len(t, info.Report.Items, 2)
}

func TestOffsetLogCurves_SelectedTimeCurve(t *testing.T) {
	f := newFixture(t)
	lg := timeLog("T")
	f.catalog.AddLog(lg,
		models.LogCurveInfo{Mnemonic: "TIME", MinDateTimeIndex: "2024-01-01T00:00:00.000Z", MaxDateTimeIndex: "2024-01-01T06:00:00.000Z"},
		models.LogCurveInfo{Mnemonic: "GR", MinDateTimeIndex: "2024-01-01T01:00:00.000Z", MaxDateTimeIndex: "2024-01-01T02:00:00.000Z"},
	)

	info := f.run(t, models.JobTypeOffsetLogCurves, models.OffsetLogCurvesJob{
		Log: lg.Ref(), Offset: "+01:30:00", Mnemonics: []string{"GR"},
	})
	require.Equal(t, models.JobStatusFinished, info.Status, info.FailedReason)

	curves := f.curves(t, lg.Ref())
	assert.Equal(t, "2024-01-01T02:30:00.000Z", curves["GR"].MinDateTimeIndex)
	assert.Equal(t, "2024-01-01T03:30:00.000Z", curves["GR"].MaxDateTimeIndex)
	assert.Equal(t, "2024-01-01T00:00:00.000Z", curves["TIME"].MinDateTimeIndex)
}

func TestOffsetLogCurves_InvalidOffset(t *testing.T) {
	f := newFixture(t)
	f.catalog.AddLog(depthLog("L", "100", "300"))
	f.catalog.AddLog(timeLog("T"))

	for _, tc := range []struct {
		log    models.LogRef
		offset string
	}{
		{depthLog("L", "", "").Ref(), "0"},
		{depthLog("L", "", "").Ref(), "abc"},
		{timeLog("T").Ref(), "10"},
		{timeLog("T").Ref(), "-00:00:00"},
	} {
		err := f.submit(models.JobTypeOffsetLogCurves, models.OffsetLogCurvesJob{Log: tc.log, Offset: tc.offset})
		assert.True(t, isValidation(err), tc.offset)
	}
}

func TestSpliceLogs(t *testing.T) {
	f := newFixture(t)
	first := depthLog("A", "100", "200")
	second := depthLog("B", "150", "300")
	f.catalog.AddLog(first, depthCurve("DEPTH", "100", "200"), depthCurve("GR", "100", "200"))
	f.catalog.AddLog(second, depthCurve("DEPTH", "150", "300"), depthCurve("GR", "150", "300"), depthCurve("RES", "250", "300"))

	info := f.run(t, models.JobTypeSpliceLogs, models.SpliceLogsJob{
		Logs:       []models.LogRef{first.Ref(), second.Ref()},
		NewLogUID:  "SPLICED",
		NewLogName: "Spliced",
	})
	require.Equal(t, models.JobStatusFinished, info.Status, info.FailedReason)

	ref := models.LogRef{WellUID: "W", WellboreUID: "B", LogUID: "SPLICED"}
	lg := f.log(t, ref)
	assert.Equal(t, "Spliced", lg.Name)
	assert.Equal(t, "100", lg.StartIndex)
	assert.Equal(t, "300", lg.EndIndex)

	curves := f.curves(t, ref)
	assert.Equal(t, "100", curves["GR"].MinIndex)
	assert.Equal(t, "300", curves["GR"].MaxIndex)
	assert.Equal(t, "250", curves["RES"].MinIndex)

	require.Len(t, info.Report.Items, 2)
	assert.Equal(t, map[string]string{"logUid": "A", "startIndex": "100", "endIndex": "200"}, info.Report.Items[0])
	assert.Equal(t, "B", info.Report.Items[1]["logUid"])
	assert.Equal(t, "200", info.Report.Items[1]["startIndex"])
}

func TestSpliceLogs_Rejected(t *testing.T) {
	f := newFixture(t)
	f.catalog.AddLog(depthLog("A", "100", "200"))
	f.catalog.AddLog(timeLog("T"))
	other := depthLog("X", "1", "2")
	other.WellboreUID = "OTHER"
	f.catalog.AddLog(other)

	err := f.submit(models.JobTypeSpliceLogs, models.SpliceLogsJob{Logs: []models.LogRef{depthLog("A", "", "").Ref()}})
	assert.True(t, isValidation(err))

	err = f.submit(models.JobTypeSpliceLogs, models.SpliceLogsJob{Logs: []models.LogRef{depthLog("A", "", "").Ref(), timeLog("T").Ref()}})
	var km *logindex.KindMismatchError
	assert.True(t, errors.As(err, &km))

	err = f.submit(models.JobTypeSpliceLogs, models.SpliceLogsJob{Logs: []models.LogRef{depthLog("A", "", "").Ref(), other.Ref()}})
	assert.True(t, isValidation(err))
}

func TestImportLogData(t *testing.T) {
	f := newFixture(t)
	lg := depthLog("L", "100", "200")
	f.catalog.AddLog(lg, depthCurve("DEPTH", "100", "200"), depthCurve("GR", "100", "200"))
	f.files.AddFile("file-1", "import.csv", []byte("DEPTH[m],GR[gAPI],RES[ohm.m]\n300,1,\n310,2,5\n320,,6\n"))

	info := f.run(t, models.JobTypeImportLogData, models.ImportLogDataJob{Target: lg.Ref(), FileID: "file-1"})
	require.Equal(t, models.JobStatusFinished, info.Status, info.FailedReason)

	curves := f.curves(t, lg.Ref())
	assert.Equal(t, "100", curves["GR"].MinIndex)
	assert.Equal(t, "310", curves["GR"].MaxIndex)
	assert.Equal(t, "310", curves["RES"].MinIndex)
	assert.Equal(t, "320", curves["RES"].MaxIndex)
	assert.Equal(t, "ohm.m", curves["RES"].Unit)
	assert.Equal(t, "320", curves["DEPTH"].MaxIndex)
	assert.Equal(t, "320", f.log(t, lg.Ref()).EndIndex)

	file, err := f.files.Get("file-1")
	require.NoError(t, err)
	assert.Equal(t, models.FileStatusImported, file.Status)
}

func TestImportLogData_Overlap(t *testing.T) {
	f := newFixture(t)
	lg := depthLog("L", "100", "200")
	f.catalog.AddLog(lg, depthCurve("DEPTH", "100", "200"), depthCurve("GR", "100", "200"))
	f.files.AddFile("file-1", "import.csv", []byte("DEPTH[m],GR\n150,1\n250,2\n"))

	err := f.submit(models.JobTypeImportLogData, models.ImportLogDataJob{Target: lg.Ref(), FileID: "file-1"})
	require.True(t, isValidation(err))

	info := f.run(t, models.JobTypeImportLogData, models.ImportLogDataJob{Target: lg.Ref(), FileID: "file-1", Overwrite: true})
	require.Equal(t, models.JobStatusFinished, info.Status, info.FailedReason)
	assert.Equal(t, "250", f.curves(t, lg.Ref())["GR"].MaxIndex)
}

func TestImportLogData_BadFile(t *testing.T) {
	f := newFixture(t)
	lg := depthLog("L", "100", "200")
	f.catalog.AddLog(lg)
	f.files.AddFile("empty", "empty.csv", nil)

	err := f.submit(models.JobTypeImportLogData, models.ImportLogDataJob{Target: lg.Ref(), FileID: "empty"})
	assert.True(t, isValidation(err))

	err = f.submit(models.JobTypeImportLogData, models.ImportLogDataJob{Target: lg.Ref(), FileID: "missing"})
	assert.Error(t, err)
}

func TestModifyLogCurveInfo(t *testing.T) {
	f := newFixture(t)
	lg := depthLog("L", "100", "200")
	gr := depthCurve("GR", "100", "200")
	gr.CurveDescription = "gamma"
	gr.NullValue = "-999.25"
	f.catalog.AddLog(lg, gr)

	info := f.run(t, models.JobTypeModifyLogCurveInfo, models.ModifyLogCurveInfoJob{
		Log:      lg.Ref(),
		Mnemonic: "GR",
		Patch:    patch.Patch{"unit": patch.Set("gAPI"), "nullValue": patch.Clear()},
	})
	require.Equal(t, models.JobStatusFinished, info.Status, info.FailedReason)

	curve := f.curves(t, lg.Ref())["GR"]
	assert.Equal(t, "gAPI", curve.Unit)
	assert.Equal(t, "", curve.NullValue)
	assert.Equal(t, "gamma", curve.CurveDescription)
	assert.Equal(t, "100", curve.MinIndex)
	assert.Len(t, info.Report.Items, 2)
}

func TestModifyLogCurveInfo_Rejected(t *testing.T) {
	f := newFixture(t)
	lg := depthLog("L", "100", "200")
	f.catalog.AddLog(lg, depthCurve("GR", "100", "200"))

	tests := []struct {
		name string
		job  models.ModifyLogCurveInfoJob
	}{
		{"empty patch", models.ModifyLogCurveInfoJob{Log: lg.Ref(), Mnemonic: "GR", Patch: patch.Patch{}}},
		{"index not editable", models.ModifyLogCurveInfoJob{Log: lg.Ref(), Mnemonic: "GR", Patch: patch.Patch{"minIndex": patch.Set("0")}}},
		{"unknown curve", models.ModifyLogCurveInfoJob{Log: lg.Ref(), Mnemonic: "XX", Patch: patch.Patch{"unit": patch.Set("m")}}},
		{"no mnemonic", models.ModifyLogCurveInfoJob{Log: lg.Ref(), Patch: patch.Patch{"unit": patch.Set("m")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, isValidation(f.submit(models.JobTypeModifyLogCurveInfo, tt.job)))
		})
	}
}

func TestDecodeRejectsBadPayload(t *testing.T) {
	f := newFixture(t)
	_, err := f.manager.Submit(context.Background(), models.JobTypeCopyLogData, []byte("{"))
	assert.True(t, isValidation(err))
}
