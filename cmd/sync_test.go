package cmd

import (
	"testing"
	"time"

	"cvsync/core/reconcile"
	cvsync "cvsync/feature/sync"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func dryRunReport() *cvsync.Report {
	results := make([]reconcile.Result, 0, 7)
	for _, key := range []reconcile.Key{"sw1", "sw2", "sw3", "sw4", "sw5", "sw6"} {
		results = append(results, reconcile.Result{
			Change: reconcile.Change{Type: "device", Key: key, Op: reconcile.OpCreate},
			State:  reconcile.StatePending,
		})
	}
	results = append(results, reconcile.Result{
		Change: reconcile.Change{Type: "cf", Key: "arista_mpls__sw1", Op: reconcile.OpUpdate},
		State:  reconcile.StatePending,
	})

	start := time.Now()
	return &cvsync.Report{
		ID:         "r1",
		Direction:  cvsync.FromCloudVision,
		DryRun:     true,
		StartedAt:  start,
		FinishedAt: start,
		Summary: &reconcile.Summary{
			Current: "nautobot",
			Desired: "cloudvision",
			DryRun:  true,
			Results: results,
			Totals:  reconcile.Tally{Pending: len(results)},
		},
	}
}

func TestPrintSyncReport_DryRunShowsDiff(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	printSyncReport(zap.New(core), dryRunReport())

	assert.Equal(t, 1, logs.FilterMessage("Sync report").Len())
	assert.Equal(t, 2, logs.FilterMessage("Pending changes").Len())
	assert.Equal(t, 5, logs.FilterMessage("Sample change").Len())

	more := logs.FilterMessage("Additional changes not shown").All()
	if assert.Len(t, more, 1) {
		assert.Equal(t, int64(2), more[0].ContextMap()["count"])
	}
}

func TestPrintSyncReport_AppliedRunOmitsDiff(t *testing.T) {
	report := dryRunReport()
	report.DryRun = false

	core, logs := observer.New(zapcore.InfoLevel)
	printSyncReport(zap.New(core), report)

	assert.Equal(t, 1, logs.FilterMessage("Sync report").Len())
	assert.Zero(t, logs.FilterMessage("Sample change").Len())
}
