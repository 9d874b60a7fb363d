package campaigner

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lattiq/campaigner/internal/store"
	"github.com/lattiq/campaigner/internal/transport/mock"
)

func testRunner(t *testing.T, transport Transport) (*Runner, store.Store) {
	t.Helper()

	st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "campaigns.db"))
	if err != nil {
		t.Fatalf("OpenSQLite returned error: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	client := testClient(t, transport)
	t.Cleanup(func() { client.Close() })

	return NewRunner(client, st, zerolog.Nop()), st
}

func TestRunnerStartValidation(t *testing.T) {
	runner, _ := testRunner(t, mock.NewTransport())
	ctx := context.Background()

	var vErr *ValidationError
	cases := []StartRequest{
		{Subject: "s", Body: "b", Recipients: testRecipients(1)},
		{Name: "n", Body: "b", Recipients: testRecipients(1)},
		{Name: "n", Subject: "s", Recipients: testRecipients(1)},
	}
	for i, req := range cases {
		if _, err := runner.Start(ctx, req); !errors.As(err, &vErr) {
			t.Errorf("case %d: expected validation error, got %v", i, err)
		}
	}

	req := StartRequest{Name: "n", Subject: "s", Body: "b"}
	if _, err := runner.Start(ctx, req); !errors.Is(err, ErrNoRecipients) {
		t.Errorf("expected ErrNoRecipients, got %v", err)
	}
}

func TestRunnerLifecycle(t *testing.T) {
	transport := mock.NewTransport()
	runner, st := testRunner(t, transport)
	ctx := context.Background()

	recipients := testRecipients(4)
	transport.FailAlways(recipients[0].Email())

	var snaps int
	handle, err := runner.Start(ctx, StartRequest{
		Name:       "launch",
		Subject:    "Hi {{Name}}",
		Body:       "Hello {{Name}}",
		Recipients: recipients,
		RetryCount: 2,
		Sink:       func(Snapshot) { snaps++ },
	})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if handle.CampaignID == "" {
		t.Fatalf("expected campaign ID immediately")
	}

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	summary, err := handle.Wait(waitCtx)
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if summary.Total != 4 || summary.Sent != 3 || summary.Failed != 1 {
		t.Fatalf("expected 4/3/1, got %d/%d/%d", summary.Total, summary.Sent, summary.Failed)
	}

	campaign, err := st.Campaign(ctx, handle.CampaignID)
	if err != nil {
		t.Fatalf("Campaign returned error: %v", err)
	}
	if campaign.Status != store.StatusCompleted {
		t.Errorf("expected completed status, got %q", campaign.Status)
	}
	if campaign.SentCount != summary.Sent || campaign.FailedCount != summary.Failed {
		t.Errorf("store counters must match the summary: %+v vs %+v", campaign, summary)
	}
	if campaign.TotalEmails != 4 || campaign.StartedAt == nil || campaign.CompletedAt == nil {
		t.Errorf("lifecycle fields missing: %+v", campaign)
	}

	logs, err := st.Logs(ctx, handle.CampaignID)
	if err != nil {
		t.Fatalf("Logs returned error: %v", err)
	}
	if len(logs) != 4 {
		t.Fatalf("expected a log entry per recipient, got %d", len(logs))
	}
	var failed int
	for _, e := range logs {
		if e.Status == store.LogStatusFailed {
			failed++
			if e.Error == "" || e.Attempts != 2 {
				t.Errorf("failed log entry must carry error and attempts: %+v", e)
			}
		}
	}
	if failed != 1 {
		t.Errorf("expected 1 failed log entry, got %d", failed)
	}

	if snaps == 0 {
		t.Errorf("expected at least one progress snapshot")
	}
}

func TestRunnerMarksFailedOnDispatchError(t *testing.T) {
	st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "campaigns.db"))
	if err != nil {
		t.Fatalf("OpenSQLite returned error: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	client := testClient(t, mock.NewTransport())
	if err := client.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	runner := NewRunner(client, st, zerolog.Nop())
	ctx := context.Background()

	handle, err := runner.Start(ctx, StartRequest{
		Name:       "doomed",
		Subject:    "s",
		Body:       "b",
		Recipients: testRecipients(2),
	})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := handle.Wait(waitCtx); !errors.Is(err, ErrClientClosed) {
		t.Fatalf("expected ErrClientClosed from the run, got %v", err)
	}

	campaign, err := st.Campaign(ctx, handle.CampaignID)
	if err != nil {
		t.Fatalf("Campaign returned error: %v", err)
	}
	if campaign.Status != store.StatusFailed {
		t.Errorf("expected failed status, got %q", campaign.Status)
	}
}

func TestHandleSummaryBeforeDone(t *testing.T) {
	transport := mock.NewTransport()
	transport.SetLatency(50 * time.Millisecond)
	runner, _ := testRunner(t, transport)

	handle, err := runner.Start(context.Background(), StartRequest{
		Name:       "slow",
		Subject:    "s",
		Body:       "b",
		Recipients: testRecipients(1),
	})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	if summary, err := handle.Summary(); summary != nil || err != nil {
		t.Errorf("expected nil summary before completion, got %v, %v", summary, err)
	}

	<-handle.Done()
	summary, err := handle.Summary()
	if err != nil || summary == nil || summary.Sent != 1 {
		t.Fatalf("expected final summary after Done, got %v, %v", summary, err)
	}
}
