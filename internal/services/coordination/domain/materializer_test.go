package domain

import (
	"testing"
	"time"
)

func TestBuildTaskPayloads_PreservesOrderAndCopiesFields(t *testing.T) {
	t.Parallel()

	txn := Transaction{ID: "txn-9", ContractDate: datePtr(2024, time.June, 10)}
	defs := []TaskDefinition{
		{Title: "Open escrow", Description: "with the title company", Priority: PriorityHigh, DueDateRule: &DueDateRule{Days: 1}, AgentVisible: true},
		{Title: "Send intro email", Priority: PriorityLow},
		{Title: "Confirm earnest money", Priority: PriorityMedium, DueDateRule: &DueDateRule{Days: 3}},
	}

	payloads := BuildTaskPayloads(defs, txn)
	if len(payloads) != len(defs) {
		t.Fatalf("payload count = %d, want %d", len(payloads), len(defs))
	}
	for i, payload := range payloads {
		if payload.Title != defs[i].Title {
			t.Fatalf("payload %d out of order: got %q want %q", i, payload.Title, defs[i].Title)
		}
		if payload.TransactionID != "txn-9" {
			t.Fatalf("payload %d transaction id = %q", i, payload.TransactionID)
		}
		if payload.Completed {
			t.Fatalf("payload %d must start incomplete", i)
		}
		if payload.Priority != defs[i].Priority || payload.Description != defs[i].Description {
			t.Fatalf("payload %d did not copy fields: %+v", i, payload)
		}
		if payload.AgentVisible != defs[i].AgentVisible {
			t.Fatalf("payload %d visibility flag mismatch", i)
		}
	}

	if payloads[1].DueDate != nil {
		t.Fatalf("expected open due date for ruleless definition, got %v", payloads[1].DueDate)
	}
	want := time.Date(2024, time.June, 11, 0, 0, 0, 0, time.UTC)
	if payloads[0].DueDate == nil || !payloads[0].DueDate.Equal(want) {
		t.Fatalf("payload 0 due date = %v, want %v", payloads[0].DueDate, want)
	}
}

func TestBuildTaskPayloads_EmptyDefinitions(t *testing.T) {
	t.Parallel()

	payloads := BuildTaskPayloads(nil, Transaction{ID: "txn-1"})
	if len(payloads) != 0 {
		t.Fatalf("expected no payloads, got %d", len(payloads))
	}
}
