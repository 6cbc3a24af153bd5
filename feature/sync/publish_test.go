package sync_test

import (
	"context"
	"encoding/json"
	"testing"

	"cvsync/core/messaging"
	"cvsync/core/reconcile"
	cvsync "cvsync/feature/sync"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type natsRecorder struct {
	subjects []string
	payloads [][]byte
}

func (r *natsRecorder) Publish(subj string, data []byte) error {
	r.subjects = append(r.subjects, subj)
	r.payloads = append(r.payloads, data)
	return nil
}

func (r *natsRecorder) FlushWithContext(ctx context.Context) error { return ctx.Err() }

func (r *natsRecorder) Close() {}

func TestAnnouncer_Handle(t *testing.T) {
	rec := &natsRecorder{}
	sink := cvsync.NewAnnouncer(messaging.NewPublisher(rec, "cvsync.reports", nil))

	report := sampleReport("r1")
	report.Direction = cvsync.ToCloudVision
	report.Summary.Totals = reconcile.Tally{Applied: 1, Failed: 1}
	report.Objects = []cvsync.ObjectRef{{Type: "tag_assignment", Key: "team__red__leaf1", Side: cvsync.SideNautobot}}

	require.NoError(t, sink.Handle(context.Background(), report))
	assert.Equal(t, []string{"cvsync.reports.to-cloudvision"}, rec.subjects)

	var event cvsync.ReportEvent
	require.NoError(t, json.Unmarshal(rec.payloads[0], &event))
	assert.Equal(t, "r1", event.ID)
	assert.Equal(t, 1, event.Totals.Failed)
	require.Len(t, event.Failures, 1)
	assert.Equal(t, reconcile.Key("team__red__leaf1"), event.Failures[0].Key)
}
