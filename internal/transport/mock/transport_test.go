package mock

import (
	"context"
	"testing"

	"github.com/lattiq/campaigner/internal/core"
)

func message(to string) *core.Message {
	return &core.Message{
		From:     core.Address{Email: "from@example.com"},
		To:       to,
		Subject:  "hi",
		TextBody: "hello",
	}
}

func TestSendSuccess(t *testing.T) {
	tr := NewTransport()
	defer tr.Close()

	receipt, err := tr.Send(context.Background(), message("ann@example.com"))
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if receipt.MessageID == "" || receipt.Transport != "mock" {
		t.Fatalf("unexpected receipt %+v", receipt)
	}
	if tr.SentCount() != 1 || tr.Attempts("ann@example.com") != 1 {
		t.Fatalf("bookkeeping wrong: sent=%d attempts=%d", tr.SentCount(), tr.Attempts("ann@example.com"))
	}
}

func TestScriptedFailures(t *testing.T) {
	tr := NewTransport()
	defer tr.Close()
	ctx := context.Background()

	tr.Fail("flaky@example.com", 2)
	for i := 0; i < 2; i++ {
		if _, err := tr.Send(ctx, message("flaky@example.com")); err == nil {
			t.Fatalf("attempt %d should fail", i+1)
		} else if !core.IsRetryable(err) {
			t.Fatalf("scripted failures must be retryable, got %v", err)
		}
	}
	if _, err := tr.Send(ctx, message("flaky@example.com")); err != nil {
		t.Fatalf("attempt 3 should succeed, got %v", err)
	}
	if tr.Attempts("flaky@example.com") != 3 {
		t.Fatalf("expected 3 attempts, got %d", tr.Attempts("flaky@example.com"))
	}

	tr.FailAlways("dead@example.com")
	for i := 0; i < 5; i++ {
		if _, err := tr.Send(ctx, message("dead@example.com")); err == nil {
			t.Fatalf("always-fail address must never succeed")
		}
	}
	if tr.SentCount() != 1 {
		t.Fatalf("only the flaky address should have been delivered, got %d", tr.SentCount())
	}
}

func TestSendAfterClose(t *testing.T) {
	tr := NewTransport()
	if err := tr.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if _, err := tr.Send(context.Background(), message("ann@example.com")); err == nil {
		t.Fatalf("expected error after Close")
	}
}
